package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/lander/internal/core/lander"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--log-level", "error"))
	err := root.Execute()
	return out.String(), err
}

func TestRolloutCommand(t *testing.T) {
	out, err := run(t, "", "rollout", "--policy", "hover", "--steps", "5", "-n", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "timeout")
	assert.Contains(t, lines[0], "steps=5")
	assert.Equal(t, "landed 0/2", lines[2])
}

func TestRolloutIsReproducible(t *testing.T) {
	args := []string{"rollout", "--seed", "7", "--steps", "50", "-n", "4", "--workers", "3", "--task", lander.TaskNarrow}
	first, err := run(t, "", args...)
	require.NoError(t, err)
	second, err := run(t, "", args...)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExploreCommand(t *testing.T) {
	out, err := run(t, "w\nquit\n", "explore")
	require.NoError(t, err)
	assert.Contains(t, out, "agent x=5.000 y=0.000")
	assert.Contains(t, out, "step 1 thrust0")
}

func TestScenarioFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hover.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agent: {x: 60, y: 30}\nstep_limit: 3\n"), 0o600))

	out, err := run(t, "s\ns\ns\ns\nq\n", "explore", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "agent x=60.000 y=30.000")
	assert.Contains(t, out, "episode timeout after 3 steps")
	assert.Contains(t, out, "episode timeout, reset to continue")
}

func TestCommandErrors(t *testing.T) {
	_, err := run(t, "", "rollout", "--task", "moon")
	assert.ErrorIs(t, err, lander.ErrUnknownTask)

	_, err = run(t, "", "rollout", "--policy", "greedy")
	assert.Error(t, err)

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"explore", "--log-level", "loud"})
	assert.Error(t, root.Execute())
}
