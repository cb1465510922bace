package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/zeusync/lander/internal/core/episode"
	"github.com/zeusync/lander/internal/core/lander"
	"github.com/zeusync/lander/internal/core/observability/metrics"
	"github.com/zeusync/lander/internal/core/rollout"
)

func newRolloutCmd(a *app) *cobra.Command {
	var (
		episodes int
		seed     uint64
		policy   string
		conf     = rollout.RunnerConfig{Steps: 500, Workers: runtime.GOMAXPROCS(0)}
	)

	cmd := &cobra.Command{
		Use:   "rollout",
		Short: "Run independent policy episodes in parallel and summarise them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, layout, _, err := a.world()
			if err != nil {
				return err
			}
			factory, err := rollout.NewFactory(policy, lander.NewCatalog(cfg), seed)
			if err != nil {
				return err
			}
			runner, err := rollout.NewRunner(cfg, layout, factory, conf,
				rollout.WithLogger(a.logger),
				rollout.WithRecorder(metrics.Nop{}))
			if err != nil {
				return err
			}

			results, err := runner.Run(cmd.Context(), episodes)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			landed := 0
			for _, r := range results {
				if r.Outcome == episode.Landed {
					landed++
				}
				fmt.Fprintf(out, "%4d %-8s steps=%-5d x=%7.3f y=%7.3f fingerprint=%016x\n",
					r.Index, r.Outcome, r.Steps, r.Agent.X, r.Agent.Y, r.Fingerprint)
			}
			fmt.Fprintf(out, "landed %d/%d\n", landed, len(results))
			return nil
		},
	}

	cmd.Flags().IntVarP(&episodes, "episodes", "n", 10, "Number of episodes")
	cmd.Flags().IntVar(&conf.Steps, "steps", conf.Steps, "Step limit per episode")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Seed for the random policy")
	cmd.Flags().IntVar(&conf.Workers, "workers", conf.Workers, "Episodes played concurrently")
	cmd.Flags().StringVar(&policy, "policy", rollout.PolicyRandom, "Policy: random, hover or idle")
	return cmd
}
