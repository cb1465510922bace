package explorer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/zeusync/lander/internal/core/episode"
	"github.com/zeusync/lander/internal/core/lander"
	"github.com/zeusync/lander/internal/core/observability/log"
)

// Terminal is a line-oriented explorer: every input line is one command.
type Terminal struct {
	ep     *episode.Episode
	in     io.Reader
	out    io.Writer
	logger log.Log
}

func NewTerminal(ep *episode.Episode, in io.Reader, out io.Writer, logger log.Log) *Terminal {
	return &Terminal{ep: ep, in: in, out: out, logger: logger}
}

// Run reads commands until quit, end of input or ctx is done.
func (t *Terminal) Run(ctx context.Context) error {
	sc := bufio.NewScanner(t.in)
	t.printState()
	t.prompt()

	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			t.prompt()
			continue
		}

		cmd, a, err := resolve(line, t.ep.Catalog())
		if err != nil {
			t.logger.Debug("rejected input", log.String("input", line), log.Error(err))
			fmt.Fprintf(t.out, "unknown command %q, ? for help\n", line)
			t.prompt()
			continue
		}

		switch cmd {
		case cmdQuit:
			return nil
		case cmdHelp:
			fmt.Fprintln(t.out, helpText)
		case cmdReset:
			t.ep.Reset()
			t.printState()
		case cmdStep:
			tr, err := t.ep.Step(a)
			if errors.Is(err, episode.ErrEpisodeOver) {
				fmt.Fprintf(t.out, "episode %s, reset to continue\n", t.ep.Outcome())
				break
			}
			if err != nil {
				return err
			}
			t.printTransition(tr)
		}
		t.prompt()
	}
	return errors.Wrap(sc.Err(), "read input")
}

func (t *Terminal) prompt() { fmt.Fprint(t.out, "> ") }

func (t *Terminal) printState() {
	fmt.Fprintf(t.out, "episode %s\n", t.ep.ID())
	t.printAgent(t.ep.Snapshot().Agent)
	t.printReadings(t.ep.Readings())
}

func (t *Terminal) printTransition(tr episode.Transition) {
	fmt.Fprintf(t.out, "step %d %s\n", tr.Step, tr.Action)
	t.printAgent(tr.Agent)
	t.printReadings(tr.Readings)
	if tr.Outcome != episode.Running {
		fmt.Fprintf(t.out, "episode %s after %d steps\n", tr.Outcome, tr.Step)
	}
}

func (t *Terminal) printAgent(a lander.Agent) {
	fmt.Fprintf(t.out, "agent x=%.3f y=%.3f vx=%.3f vy=%.3f angle=%.3f\n", a.X, a.Y, a.VX, a.VY, a.Angle)
}

func (t *Terminal) printReadings(r lander.Readings) {
	active := r.Active()
	if len(active) == 0 {
		fmt.Fprintln(t.out, "true: none")
		return
	}
	fmt.Fprintf(t.out, "true: %s\n", strings.Join(active, " "))
}
