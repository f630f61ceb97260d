// Package main is callsched's single entry point: a cobra command tree
// over the Week Splitter, Shift Deriver, Schedule Model, Requirements
// Loader, optimization core, reporting, SQLite warehouse export, history
// graph, and read-only HTTP API. Grounded on claude-monitor's single
// unified-binary cobra layout (cmd/claude-monitor/cli_commands.go),
// scoped to this scheduler's subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anescall/callsched/internal/config"
	"github.com/anescall/callsched/internal/scheduleerr"
)

var (
	cfgPath string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "callsched",
	Short: "callsched - weekly anesthesiologist call scheduling",
	Long:  `callsched derives, schedules, and solves weekly anesthesiologist call rosters.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a JSON configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		exitFor(err)
	}
}

// exitFor maps a scheduler error to the process's exit status: every
// scheduleerr.Error is a hard failure except UnknownPhysician, which is
// reported but does not change the exit code away from what the command
// already decided.
func exitFor(err error) {
	fmt.Fprintln(os.Stderr, "callsched:", err)
	var serr *scheduleerr.Error
	if ok := scheduleerrAs(err, &serr); ok && !serr.Fatal() {
		os.Exit(0)
	}
	os.Exit(1)
}

func scheduleerrAs(err error, target **scheduleerr.Error) bool {
	for err != nil {
		if e, ok := err.(*scheduleerr.Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
