// Package vspconfig loads client-side tunables: dial/command timeouts
// and the framing retry/overflow limits. JSON on disk, with a missing
// file tolerated as "use defaults" — a debug-protocol client has exactly
// one place settings come from, the operator's home directory.
package vspconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config holds the client's tunable limits. The zero value is invalid;
// use Default() or Load().
type Config struct {
	// DialTimeout bounds Connection.Connect's TCP dial. Zero means no
	// timeout (net.Dial). Encoded on disk as nanoseconds, matching
	// time.Duration's default JSON representation.
	DialTimeout time.Duration `json:"dial_timeout_ns"`

	// CommandTimeout bounds a single Connection.Command round trip when
	// non-zero. There is no timeout by default.
	CommandTimeout time.Duration `json:"command_timeout_ns"`

	// MaxNACKRetries is the ACK/NACK retry limit (default 5).
	MaxNACKRetries int `json:"max_nack_retries"`

	// MaxFrameBytes is the payload safety cap (default 10MB).
	MaxFrameBytes int `json:"max_frame_bytes"`
}

// Default returns the protocol defaults with no timeouts.
func Default() Config {
	return Config{
		MaxNACKRetries: 5,
		MaxFrameBytes:  10 << 20,
	}
}

// Load reads path (typically "~/.config/vsp/client.json") and overlays
// it on Default(). A missing file is not an error — it simply yields the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var onDisk Config
	if err := json.Unmarshal(data, &onDisk); err != nil {
		return cfg, err
	}

	if onDisk.DialTimeout > 0 {
		cfg.DialTimeout = onDisk.DialTimeout
	}
	if onDisk.CommandTimeout > 0 {
		cfg.CommandTimeout = onDisk.CommandTimeout
	}
	if onDisk.MaxNACKRetries > 0 {
		cfg.MaxNACKRetries = onDisk.MaxNACKRetries
	}
	if onDisk.MaxFrameBytes > 0 {
		cfg.MaxFrameBytes = onDisk.MaxFrameBytes
	}
	return cfg, nil
}

// DefaultPath returns "~/.config/vsp/client.json", falling back to
// "./.vsp/client.json" if the user's home directory can't be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".vsp", "client.json")
	}
	return filepath.Join(home, ".config", "vsp", "client.json")
}
