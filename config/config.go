// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

// Package config is hotload's typed configuration, loaded from hotload.toml
// (via viper) with command-line flags layered on top as overrides (via
// cobra/pflag).
package config

import (
	"github.com/jetsetilly/hotload/elf"
	"github.com/jetsetilly/hotload/herrors"
	"github.com/spf13/viper"
)

// Config is the full set of options the supervisor consumes.
type Config struct {
	// Build is the shell command executed to (re)build the project.
	Build string

	// ELF is the path to the build's ELF output.
	ELF string

	// Src is one or more paths recursively watched for changes.
	Src []string

	// Emulator is the shell command that launches the target process.
	Emulator string

	// GDBAddr is the remote debug endpoint, "[::1]:9123" by default.
	GDBAddr string

	// Checkpoints names functions that are safe points for a reload.
	// Carried over from the original implementation's config surface;
	// enforcement (holding a patch until a checkpoint is reached) is out
	// of scope, as named in the glossary — the Supervisor checks the names
	// against the loaded Program at startup and otherwise only uses this
	// list to decide whether a patched-outside-checkpoint log line is
	// INFO or WARN.
	Checkpoints []string

	// DashboardAddr, when non-empty, enables the live stats dashboard at
	// this address.
	DashboardAddr string

	// Verbose enables goroutine-tagged logging and gdb wire tracing.
	Verbose bool
}

const (
	defaultGDBAddr = "[::1]:9123"
)

// Load builds a Config from the values already held by v (the config file
// and flags, read in by the caller), applying defaults for any option left
// unset, and returns the resulting Config.
func Load(v *viper.Viper) (*Config, error) {
	v.SetDefault("gdbaddr", defaultGDBAddr)

	cfg := &Config{
		Build:         v.GetString("build"),
		ELF:           v.GetString("elf"),
		Src:           v.GetStringSlice("src"),
		Emulator:      v.GetString("emulator"),
		GDBAddr:       v.GetString("gdbaddr"),
		Checkpoints:   v.GetStringSlice("checkpoints"),
		DashboardAddr: v.GetString("dashboardaddr"),
		Verbose:       v.GetBool("verbose"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Build == "" {
		return herrors.Errorf(herrors.ParseError, "config: build command is required")
	}
	if c.ELF == "" {
		return herrors.Errorf(herrors.ParseError, "config: elf path is required")
	}
	if len(c.Src) == 0 {
		return herrors.Errorf(herrors.ParseError, "config: at least one src path is required")
	}
	if c.Emulator == "" {
		return herrors.Errorf(herrors.ParseError, "config: emulator command is required")
	}
	if c.GDBAddr == "" {
		c.GDBAddr = defaultGDBAddr
	}
	return nil
}

// ValidateCheckpoints logs (via the supervisor's logger, passed as warn) any
// configured checkpoint name that does not appear in prog. It does not
// error: an unresolved checkpoint name is a configuration smell, not a
// startup failure.
func (c *Config) ValidateCheckpoints(prog *elf.Program, warn func(string)) {
	for _, name := range c.Checkpoints {
		if _, ok := prog.Items[name]; !ok {
			warn(name)
		}
	}
}

// IsCheckpoint reports whether name was configured as a checkpoint.
func (c *Config) IsCheckpoint(name string) bool {
	for _, cp := range c.Checkpoints {
		if cp == name {
			return true
		}
	}
	return false
}
