package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zeusync/lander/internal/core/lander"
	"github.com/zeusync/lander/internal/core/observability/log"
	"github.com/zeusync/lander/internal/core/scenario"
)

// app carries the persistent flags and the state built from them.
type app struct {
	configPath string
	task       string
	logLevel   string

	logger *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "lander",
		Short: "Discrete-time 2D lunar lander simulator",
		Long: `lander simulates a thrust-and-rotate lander over flat ground with rectangular
obstacles and landing pads.

Explore it from the terminal, serve sessions over websocket and QUIC, or run
batches of policy rollouts.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(a.logLevel)
			if err != nil {
				return err
			}
			a.logger = log.New(level)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Scenario file (.yaml, .yml or .json)")
	root.PersistentFlags().StringVarP(&a.task, "task", "t", "", fmt.Sprintf("Built-in task %v, overrides the scenario task", lander.TaskNames()))
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level (debug, info, warn, error, fatal)")

	root.AddCommand(newExploreCmd(a))
	root.AddCommand(newVisualCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newRolloutCmd(a))
	return root
}

// world loads the scenario file, if any, applies the task flag and builds
// the configuration and starting layout.
func (a *app) world() (lander.Config, *lander.Snapshot, *scenario.Scenario, error) {
	s := &scenario.Scenario{}
	if a.configPath != "" {
		var err error
		if s, err = scenario.LoadFile(a.configPath); err != nil {
			return lander.Config{}, nil, nil, err
		}
	}
	if a.task != "" {
		s.Task = a.task
	}
	cfg, layout, err := s.Build()
	if err != nil {
		return lander.Config{}, nil, nil, err
	}
	return cfg, layout, s, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
