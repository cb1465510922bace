package episode

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/lander/internal/core/events/bus"
	"github.com/zeusync/lander/internal/core/lander"
	"github.com/zeusync/lander/internal/core/observability/log"
	"github.com/zeusync/lander/internal/core/observability/metrics"
)

// abovePad starts the lander falling onto the standard pad.
func abovePad(t *testing.T) *lander.Snapshot {
	t.Helper()
	s, err := lander.Task(lander.TaskStandard)
	require.NoError(t, err)
	s.SetAgent(0, 85, 10.5)
	return s
}

func TestLandingEndsEpisode(t *testing.T) {
	b := bus.New()
	counts := map[string]int{}
	_, err := b.Subscribe(bus.Wildcard, func(e bus.Event) error {
		counts[e.Type()]++
		return nil
	})
	require.NoError(t, err)

	rec := metrics.New()
	ep, err := New(lander.Standard(), abovePad(t), WithBus(b), WithRecorder(rec), WithLogger(log.NewNop()))
	require.NoError(t, err)
	assert.Equal(t, 1, counts[EventReset])

	var tr Transition
	for i := 0; i < 3; i++ {
		tr, err = ep.Step(lander.Idle())
		require.NoError(t, err)
	}

	assert.Equal(t, Landed, tr.Outcome)
	assert.Equal(t, 3, tr.Step)
	assert.Equal(t, 10., tr.Agent.Y)
	assert.True(t, tr.Readings.OnPad)
	assert.Equal(t, []string{"pad"}, tr.Contacts)
	assert.True(t, ep.Done())

	assert.Equal(t, 3, counts[EventStep])
	assert.Equal(t, 1, counts[EventContact])
	assert.Equal(t, 1, counts[EventLanded])
	assert.Equal(t, 1, counts[EventEnded])

	assert.Equal(t, 3., counterSum(t, rec, "lander_steps_total"))
	assert.Equal(t, 1., counterSum(t, rec, "lander_episodes_total"))

	_, err = ep.Step(lander.Idle())
	assert.ErrorIs(t, err, ErrEpisodeOver)
}

func counterSum(t *testing.T, rec *metrics.Prometheus, name string) float64 {
	t.Helper()
	families, err := rec.Registry().Gather()
	require.NoError(t, err)
	var sum float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}

func TestTimeout(t *testing.T) {
	s := abovePad(t)
	s.SetAgent(0, 50, 30)
	ep, err := New(lander.Standard(), s, WithStepLimit(5))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		tr, err := ep.Step(lander.Thrust(1))
		require.NoError(t, err)
		if i < 4 {
			assert.Equal(t, Running, tr.Outcome)
		}
	}
	assert.Equal(t, Timeout, ep.Outcome())
	assert.Equal(t, 5, ep.Steps())
}

func TestResetRestoresLayoutWithNewID(t *testing.T) {
	layout := abovePad(t)
	ep, err := New(lander.Standard(), layout)
	require.NoError(t, err)
	first := ep.ID()

	_, err = ep.StepNamed("thrust0")
	require.NoError(t, err)
	assert.NotEqual(t, layout.Agent, ep.Snapshot().Agent)

	ep.Reset()
	assert.NotEqual(t, first, ep.ID())
	assert.Equal(t, layout.Agent, ep.Snapshot().Agent)
	assert.Equal(t, 0, ep.Steps())
	assert.Equal(t, Running, ep.Outcome())
}

func TestLayoutIsCopied(t *testing.T) {
	layout := abovePad(t)
	ep, err := New(lander.Standard(), layout)
	require.NoError(t, err)

	layout.Pads[0].Left = 0
	snap := ep.Snapshot()
	assert.Equal(t, 80., snap.Pads[0].Left)

	snap.Agent.X = -1
	assert.Equal(t, 85., ep.Snapshot().Agent.X)
}

func TestInvalidInput(t *testing.T) {
	_, err := New(lander.Standard(), nil)
	assert.ErrorIs(t, err, ErrNoLayout)
	_, err = New(lander.Standard(), &lander.Snapshot{})
	assert.ErrorIs(t, err, ErrNoLayout)

	ep, err := New(lander.Standard(), abovePad(t))
	require.NoError(t, err)

	_, err = ep.StepNamed("warp")
	assert.ErrorIs(t, err, lander.ErrUnknownAction)
	_, err = ep.Step(lander.Thrust(9))
	assert.ErrorIs(t, err, lander.ErrInvalidArgument)
	assert.Equal(t, 0, ep.Steps())
}

func TestFailingHandlerIsLoggedNotReturned(t *testing.T) {
	b := bus.New()
	_, _ = b.Subscribe(EventStep, func(bus.Event) error { return assert.AnError })

	var buf bytes.Buffer
	ep, err := New(lander.Standard(), abovePad(t), WithBus(b), WithLogger(log.NewWriter(&buf, log.LevelWarn)))
	require.NoError(t, err)

	_, err = ep.Step(lander.Idle())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "event handler failed")
}

func TestOutcomeText(t *testing.T) {
	b, err := Landed.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "landed", string(b))
	assert.Equal(t, "timeout", Timeout.String())
}
