package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/zeusync/lander/internal/core/episode"
	"github.com/zeusync/lander/internal/explorer"
)

func (a *app) episode() (*episode.Episode, error) {
	cfg, layout, s, err := a.world()
	if err != nil {
		return nil, err
	}
	return episode.New(cfg, layout,
		episode.WithLogger(a.logger),
		episode.WithStepLimit(s.StepLimit),
		episode.WithSource("explorer"))
}

func newExploreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "explore",
		Short: "Step the lander from a line-based terminal prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ep, err := a.episode()
			if err != nil {
				return err
			}
			return explorer.NewTerminal(ep, cmd.InOrStdin(), cmd.OutOrStdout(), a.logger).Run(cmd.Context())
		},
	}
}

func newVisualCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "visual",
		Short: "Fly the lander in a full-screen terminal view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ep, err := a.episode()
			if err != nil {
				return err
			}
			screen, err := tcell.NewScreen()
			if err != nil {
				return errors.Wrap(err, "open terminal")
			}
			return explorer.NewVisual(screen, ep, a.logger).Run(cmd.Context())
		},
	}
}
