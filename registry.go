package vsp

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/machineware-gmbh/vsp/internal/vspconfig"
)

// Rendezvous is one discovered simulator: the host/port pair read from a
// vcml_session_* file plus a process-local handle id, assigned when the
// host/port pair is first discovered and kept across rescans.
type Rendezvous struct {
	ID   string
	Host string
	Port uint16
	Path string
}

// Connect builds a Session for the discovered simulator and dials it.
func (rv *Rendezvous) Connect(cfg vspconfig.Config, logger *slog.Logger) (*Session, error) {
	s := NewSession(cfg, logger)
	if err := s.Connect(rv.Host, rv.Port); err != nil {
		return nil, err
	}
	return s, nil
}

// Registry discovers running simulators by scanning a directory for
// vcml_session_* rendezvous files. Scan is a one-shot synchronous poll;
// Watch layers fsnotify-driven re-scans on top for long-running clients
// that want to pick up simulators as they start.
type Registry struct {
	mu    sync.Mutex
	byKey map[string]*Rendezvous // "host:port" -> Rendezvous
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]*Rendezvous)}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide Registry singleton for
// callers that want an ambient discovery list; embedders that prefer
// explicit ownership construct their own with NewRegistry.
func DefaultRegistry() *Registry { return defaultRegistry }

// Scan reads every vcml_session_* file in dir and returns one Rendezvous
// per well-formed file. The registry keeps a single entry per (host,
// port): a file naming an already-known pair yields that existing
// Rendezvous, so the result can hold the same entry twice. A file with
// other than exactly four lines is skipped rather than treated as a
// fatal error, since a rendezvous file can be observed mid-write.
func (r *Registry) Scan(dir string) ([]*Rendezvous, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, newErr("scan", KindTransportClosed, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var found []*Rendezvous
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "vcml_session_") {
			continue
		}
		rv, err := parseRendezvousFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}

		key := rv.Host + ":" + strconv.Itoa(int(rv.Port))
		if existing, ok := r.byKey[key]; ok {
			found = append(found, existing)
			continue
		}
		r.byKey[key] = rv
		found = append(found, rv)
	}
	return found, nil
}

// parseRendezvousFile reads a single rendezvous file, which always has
// exactly four lines: host, port, and two further lines whose content is
// opaque to the client.
func parseRendezvousFile(path string) (*Rendezvous, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(lines) != 4 {
		return nil, newErr("scan", KindProtocolShape, nil)
	}

	port, err := strconv.ParseUint(strings.TrimSpace(lines[1]), 10, 16)
	if err != nil {
		return nil, err
	}

	return &Rendezvous{
		ID:   uuid.New().String(),
		Host: strings.TrimSpace(lines[0]),
		Port: uint16(port),
		Path: path,
	}, nil
}

// Watch scans dir once and calls onChange with every Rendezvous the
// registry knows, then watches dir with fsnotify and rescans and calls
// onChange again after any event on a vcml_session_* file, until ctx is
// cancelled. The registry only grows, so an entry stays in the list
// passed to onChange after its file is removed. It is an additive
// convenience over Scan for long-running clients that want to pick up
// simulators as they start rather than polling.
func (r *Registry) Watch(ctx context.Context, dir string, onChange func([]*Rendezvous)) error {
	if _, err := r.Scan(dir); err != nil {
		return err
	}
	onChange(r.snapshot())

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return newErr("watch", KindTransportClosed, err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return newErr("watch", KindTransportClosed, err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !strings.HasPrefix(filepath.Base(ev.Name), "vcml_session_") {
					continue
				}
				if _, err := r.Scan(dir); err != nil {
					continue
				}
				onChange(r.snapshot())
			case <-w.Errors:
				continue
			}
		}
	}()
	return nil
}

func (r *Registry) snapshot() []*Rendezvous {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Rendezvous, 0, len(r.byKey))
	for _, rv := range r.byKey {
		out = append(out, rv)
	}
	return out
}

// registryDump is the YAML-serializable shape of Registry.Dump's output.
type registryDump struct {
	Sessions []Rendezvous `yaml:"sessions"`
}

// Dump renders the Registry's currently known sessions as YAML, a
// diagnostic snapshot useful for logging.
func (r *Registry) Dump() (string, error) {
	snap := r.snapshot()
	d := registryDump{Sessions: make([]Rendezvous, 0, len(snap))}
	for _, rv := range snap {
		d.Sessions = append(d.Sessions, *rv)
	}

	out, err := yaml.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
