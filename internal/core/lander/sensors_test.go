package lander

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredicateIntervals(t *testing.T) {
	r := Rect{Left: 80, Right: 95, Bottom: 0, Top: 10}
	pad, obstacle := Pad(r), Obstacle(r)

	cases := []struct {
		name                          string
		x, y                          float64
		onPad, touchPad, touchSurface bool
	}{
		{"centre of top", 85, 10, true, true, true},
		{"left edge on top", 80, 10, false, true, true},
		{"right edge on top", 95, 10, false, false, true},
		{"inside", 85, 5, false, true, true},
		{"bottom edge", 85, 0, false, true, true},
		{"right edge inside", 95, 5, false, false, true},
		{"just above", 85, 10.0001, false, false, false},
		{"left of pad", 79.9, 5, false, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := Agent{X: tc.x, Y: tc.y}
			assert.Equal(t, tc.onPad, OnPad(a, pad), "OnPad")
			assert.Equal(t, tc.touchPad, TouchingPad(a, pad), "TouchingPad")
			assert.Equal(t, tc.touchSurface, TouchingSurface(a, obstacle), "TouchingSurface")
		})
	}
}

func TestOnGroundIsExact(t *testing.T) {
	cfg := NewConfig(WithBounds(0, 100, 2, 50))
	assert.True(t, OnGround(Agent{Y: 2}, cfg))
	assert.False(t, OnGround(Agent{Y: 2.0000001}, cfg))
	assert.False(t, OnGround(Agent{Y: 0}, cfg))
}

func TestIndexedPredicatesFailFast(t *testing.T) {
	s, err := Task(TaskStandard)
	require.NoError(t, err)

	_, err = s.OnPadAt(1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = s.TouchingPadAt(-1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = s.TouchingSurfaceAt(3)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	ok, err := s.TouchingSurfaceAt(0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSense(t *testing.T) {
	cfg := Standard()
	s, err := Task(TaskStandard)
	require.NoError(t, err)

	r := Sense(s, cfg)
	assert.True(t, r.OnGround)
	assert.False(t, r.OnPad)
	assert.Equal(t, []bool{false}, r.TouchingSurface)
	assert.Equal(t, []string{PredOnGround}, r.Active())

	s.Agent = Agent{X: 50, Y: 20}
	r = Sense(s, cfg)
	assert.True(t, r.AnySurface())
	assert.Equal(t, []string{"touchingSurface(obstacle0)"}, r.Active())

	s.Agent = Agent{X: 90, Y: 10}
	r = Sense(s, cfg)
	assert.Equal(t, []string{PredOnPad, PredTouchingPad}, r.Active())
}
