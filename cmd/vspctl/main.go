// Command vspctl is a thin CLI wrapper around the vsp client library: it
// connects to a simulator and exposes dump/read/exec/scan as one-shot
// shell commands talking straight to the simulator's TCP socket.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/machineware-gmbh/vsp"
	"github.com/machineware-gmbh/vsp/internal/vspconfig"
	"github.com/machineware-gmbh/vsp/internal/vsplog"
)

var (
	hostFlag     string
	portFlag     uint16
	logLevelFlag string
)

func main() {
	root := &cobra.Command{
		Use:   "vspctl",
		Short: "Inspect and control a VSP-speaking simulator",
	}
	root.PersistentFlags().StringVar(&hostFlag, "host", "localhost", "simulator host")
	root.PersistentFlags().Uint16Var(&portFlag, "port", 0, "simulator port")
	root.PersistentFlags().StringVar(&logLevelFlag, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(dumpCmd(), readCmd(), execCmd(), scanCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func connectSession() (*vsp.Session, error) {
	if portFlag == 0 {
		return nil, fmt.Errorf("--port is required")
	}

	cfg, err := vspconfig.Load(vspconfig.DefaultPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := vsplog.New(logLevelFlag, "")
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	s := vsp.NewSession(cfg, logger)
	if err := s.Connect(hostFlag, portFlag); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return s, nil
}

func dumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the module hierarchy",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := connectSession()
			if err != nil {
				return err
			}
			defer s.Disconnect()
			fmt.Print(s.Dump())
			return nil
		},
	}
}

func readCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read [attribute-path]",
		Short: "Read an attribute's current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := connectSession()
			if err != nil {
				return err
			}
			defer s.Disconnect()

			attr := s.FindAttribute(args[0])
			if attr == nil {
				return fmt.Errorf("no such attribute: %s", args[0])
			}
			fmt.Println(attr.GetString())
			return nil
		},
	}
}

func execCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec [command-path] [args...]",
		Short: "Execute a named command on the simulator",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := connectSession()
			if err != nil {
				return err
			}
			defer s.Disconnect()

			c := s.FindCommand(args[0])
			if c == nil {
				return fmt.Errorf("no such command: %s", args[0])
			}
			out, err := c.Execute(args[1:])
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
}

func scanCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List simulators advertising rendezvous files in a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := vsp.NewRegistry()
			found, err := reg.Scan(dir)
			if err != nil {
				return err
			}
			for _, rv := range found {
				fmt.Printf("%s:%d\t%s\n", rv.Host, rv.Port, rv.Path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "/tmp", "directory to scan for rendezvous files")
	return cmd
}
