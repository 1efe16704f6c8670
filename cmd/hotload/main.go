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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jetsetilly/hotload/config"
	"github.com/jetsetilly/hotload/logger"
	"github.com/jetsetilly/hotload/supervisor"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "hotload",
		Short: "Hot code loading for a cross-compiled MIPS target",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(v, cmd)
		},
	}

	flags := cmd.Flags()
	flags.String("build", "", "shell command to (re)build the project")
	flags.String("elf", "", "path to the build's ELF output")
	flags.StringSlice("src", nil, "source path(s) to watch recursively")
	flags.String("emulator", "", "shell command that launches the target process")
	flags.String("gdb-addr", "", "remote debug endpoint (default [::1]:9123)")
	flags.StringSlice("checkpoints", nil, "function names safe to reload at")
	flags.String("dashboard-addr", "", "address to serve the live stats dashboard on, disabled if empty")
	flags.Bool("verbose", false, "enable verbose logging and gdb wire tracing")
	flags.String("config", "hotload.toml", "path to the config file")

	v.BindPFlag("build", flags.Lookup("build"))
	v.BindPFlag("elf", flags.Lookup("elf"))
	v.BindPFlag("src", flags.Lookup("src"))
	v.BindPFlag("emulator", flags.Lookup("emulator"))
	v.BindPFlag("gdbaddr", flags.Lookup("gdb-addr"))
	v.BindPFlag("checkpoints", flags.Lookup("checkpoints"))
	v.BindPFlag("dashboardaddr", flags.Lookup("dashboard-addr"))
	v.BindPFlag("verbose", flags.Lookup("verbose"))

	return cmd
}

func run(v *viper.Viper, cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("reading %s: %w", configPath, err)
		}
		logger.Logf("cmd", "no config file at %s, relying on flags", configPath)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	sup := supervisor.New(cfg)

	defer func() {
		if r := recover(); r != nil {
			sup.KillFunc()()
			panic(r)
		}
	}()

	return sup.Run()
}
