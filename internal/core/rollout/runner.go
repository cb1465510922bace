package rollout

import (
	"context"

	"github.com/pkg/errors"

	"github.com/zeusync/lander/internal/core/episode"
	"github.com/zeusync/lander/internal/core/lander"
	"github.com/zeusync/lander/internal/core/observability/log"
	"github.com/zeusync/lander/internal/core/observability/metrics"
	"github.com/zeusync/lander/pkg/concurrent"
)

var (
	ErrUnknownPolicy = errors.New("unknown policy")
	ErrNoStepLimit   = errors.New("rollouts need a positive step limit")
)

// Result summarises one finished episode.
type Result struct {
	Index       int             `json:"index"`
	Episode     string          `json:"episode"`
	Steps       int             `json:"steps"`
	Outcome     episode.Outcome `json:"outcome"`
	Agent       lander.Agent    `json:"agent"`
	Fingerprint uint64          `json:"fingerprint"`
}

type RunnerConfig struct {
	Steps   int `yaml:"steps" json:"steps"`
	Workers int `yaml:"workers" json:"workers"`
}

// Runner plays independent episodes of one world in parallel.
type Runner struct {
	cfg      lander.Config
	layout   *lander.Snapshot
	policy   Factory
	conf     RunnerConfig
	logger   log.Log
	recorder metrics.Recorder
}

type RunnerOption func(*Runner)

func WithLogger(l log.Log) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

func WithRecorder(rec metrics.Recorder) RunnerOption {
	return func(r *Runner) { r.recorder = rec }
}

func NewRunner(cfg lander.Config, layout *lander.Snapshot, policy Factory, conf RunnerConfig, opts ...RunnerOption) (*Runner, error) {
	if conf.Steps <= 0 {
		return nil, ErrNoStepLimit
	}
	if policy == nil {
		return nil, errors.Wrap(ErrUnknownPolicy, "nil factory")
	}
	if layout == nil || len(layout.Pads) == 0 {
		return nil, episode.ErrNoLayout
	}
	r := &Runner{
		cfg:      cfg,
		layout:   layout.Clone(),
		policy:   policy,
		conf:     conf,
		logger:   log.Provide(),
		recorder: metrics.Nop{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run plays n episodes and returns their results in index order.
func (r *Runner) Run(ctx context.Context, n int) ([]Result, error) {
	if n < 0 {
		return nil, errors.Wrapf(lander.ErrInvalidArgument, "episode count %d", n)
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	r.logger.Info("rollout started",
		log.Int("episodes", n),
		log.Int("steps", r.conf.Steps),
		log.Int("workers", r.conf.Workers))

	results, err := concurrent.Map(ctx, idx, r.conf.Workers, r.play)
	if err != nil {
		return nil, errors.Wrap(err, "rollout")
	}

	landed := 0
	for _, res := range results {
		if res.Outcome == episode.Landed {
			landed++
		}
	}
	r.logger.Info("rollout finished", log.Int("episodes", n), log.Int("landed", landed))
	return results, nil
}

func (r *Runner) play(ctx context.Context, _ int, i int) (Result, error) {
	ep, err := episode.New(r.cfg, r.layout,
		episode.WithStepLimit(r.conf.Steps),
		episode.WithLogger(r.logger),
		episode.WithRecorder(r.recorder),
		episode.WithSource("rollout"))
	if err != nil {
		return Result{}, err
	}
	policy := r.policy(i)

	for !ep.Done() {
		if err = ctx.Err(); err != nil {
			return Result{}, err
		}
		if _, err = ep.Step(policy.Act(ep.Snapshot())); err != nil {
			return Result{}, errors.Wrapf(err, "episode %d", i)
		}
	}

	final := ep.Snapshot()
	return Result{
		Index:       i,
		Episode:     ep.ID(),
		Steps:       ep.Steps(),
		Outcome:     ep.Outcome(),
		Agent:       final.Agent,
		Fingerprint: final.Fingerprint(),
	}, nil
}
