package rollout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/lander/internal/core/episode"
	"github.com/zeusync/lander/internal/core/lander"
	"github.com/zeusync/lander/internal/core/observability/log"
)

func standardTask(t *testing.T) *lander.Snapshot {
	t.Helper()
	s, err := lander.Task(lander.TaskStandard)
	require.NoError(t, err)
	return s
}

func TestRandomRolloutsAreDeterministic(t *testing.T) {
	cfg := lander.Standard()
	factory, err := NewFactory(PolicyRandom, lander.NewCatalog(cfg), 42)
	require.NoError(t, err)

	run := func(workers int) []Result {
		r, err := NewRunner(cfg, standardTask(t), factory, RunnerConfig{Steps: 200, Workers: workers}, WithLogger(log.NewNop()))
		require.NoError(t, err)
		res, err := r.Run(context.Background(), 8)
		require.NoError(t, err)
		return res
	}

	a, b := run(1), run(4)
	require.Len(t, a, 8)
	for i := range a {
		assert.Equal(t, i, a[i].Index)
		assert.Equal(t, a[i].Fingerprint, b[i].Fingerprint, "episode %d", i)
		assert.Equal(t, a[i].Steps, b[i].Steps)
		assert.True(t, a[i].Agent.InBounds(cfg))
		assert.NotEqual(t, episode.Running, a[i].Outcome)
	}
	assert.NotEqual(t, a[0].Fingerprint, a[1].Fingerprint)
}

func TestHoverTimesOut(t *testing.T) {
	cfg := lander.Standard()
	factory, err := NewFactory(PolicyHover, lander.NewCatalog(cfg), 0)
	require.NoError(t, err)

	layout := standardTask(t)
	layout.SetAgent(0, 60, 30)
	r, err := NewRunner(cfg, layout, factory, RunnerConfig{Steps: 25}, WithLogger(log.NewNop()))
	require.NoError(t, err)

	res, err := r.Run(context.Background(), 3)
	require.NoError(t, err)
	for _, x := range res {
		assert.Equal(t, episode.Timeout, x.Outcome)
		assert.Equal(t, 25, x.Steps)
		assert.Equal(t, lander.Agent{X: 60, Y: 30}, x.Agent)
	}
	assert.NotEqual(t, res[0].Episode, res[1].Episode)
}

func TestScriptPolicyRepeatsLast(t *testing.T) {
	p := NewScriptPolicy(lander.TurnLeft(), lander.Thrust(0))
	assert.Equal(t, lander.TurnLeft(), p.Act(nil))
	assert.Equal(t, lander.Thrust(0), p.Act(nil))
	assert.Equal(t, lander.Thrust(0), p.Act(nil))

	assert.Equal(t, lander.Idle(), NewScriptPolicy().Act(nil))
}

func TestScriptedLanding(t *testing.T) {
	cfg := lander.Standard()
	layout := standardTask(t)
	layout.SetAgent(0, 85, 10.5)

	factory := func(int) Policy { return NewScriptPolicy(lander.Idle()) }
	r, err := NewRunner(cfg, layout, factory, RunnerConfig{Steps: 10}, WithLogger(log.NewNop()))
	require.NoError(t, err)

	res, err := r.Run(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, episode.Landed, res[0].Outcome)
	assert.Equal(t, 3, res[0].Steps)
}

func TestPolicyFuncSeesState(t *testing.T) {
	cfg := lander.Standard()
	layout := standardTask(t)
	layout.SetAgent(0, 85, 10.5)

	var heights []float64
	factory := func(int) Policy {
		return PolicyFunc(func(s *lander.Snapshot) lander.Action {
			heights = append(heights, s.Agent.Y)
			return lander.Idle()
		})
	}
	r, err := NewRunner(cfg, layout, factory, RunnerConfig{Steps: 10, Workers: 1}, WithLogger(log.NewNop()))
	require.NoError(t, err)

	res, err := r.Run(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, episode.Landed, res[0].Outcome)
	require.Len(t, heights, 3)
	assert.Equal(t, 10.5, heights[0])
	assert.Greater(t, heights[0], heights[2])

	idle, err := NewFactory(PolicyIdle, lander.NewCatalog(cfg), 0)
	require.NoError(t, err)
	assert.Equal(t, lander.Idle(), idle(0).Act(layout))
}

func TestRunnerMisuse(t *testing.T) {
	cfg := lander.Standard()
	c := lander.NewCatalog(cfg)

	_, err := NewFactory("greedy", c, 0)
	assert.ErrorIs(t, err, ErrUnknownPolicy)
	_, err = NewFactory(PolicyHover, lander.NewCatalog(lander.NewConfig(lander.WithThrusts(0.5))), 0)
	assert.ErrorIs(t, err, ErrUnknownPolicy)

	factory, err := NewFactory(PolicyIdle, c, 0)
	require.NoError(t, err)
	_, err = NewRunner(cfg, standardTask(t), factory, RunnerConfig{})
	assert.ErrorIs(t, err, ErrNoStepLimit)
	_, err = NewRunner(cfg, nil, factory, RunnerConfig{Steps: 1})
	assert.ErrorIs(t, err, episode.ErrNoLayout)
}

func TestRunCancelled(t *testing.T) {
	cfg := lander.Standard()
	factory, err := NewFactory(PolicyRandom, lander.NewCatalog(cfg), 1)
	require.NoError(t, err)
	r, err := NewRunner(cfg, standardTask(t), factory, RunnerConfig{Steps: 1000}, WithLogger(log.NewNop()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx, 4)
	assert.ErrorIs(t, err, context.Canceled)
}
