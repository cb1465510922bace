package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/zeusync/lander/internal/core/episode"
	"github.com/zeusync/lander/internal/core/lander"
	"github.com/zeusync/lander/internal/core/observability/log"
	"github.com/zeusync/lander/pkg/generic"
)

// Request is a client frame. Exactly one of Action or Reset is expected.
type Request struct {
	Action string `json:"action,omitempty"`
	Reset  bool   `json:"reset,omitempty"`
}

// Frame is the server reply. Error frames carry only the session, the step
// count and the error text.
type Frame struct {
	Session  string           `json:"session"`
	Episode  string           `json:"episode,omitempty"`
	Step     int              `json:"step"`
	Agent    *lander.Agent    `json:"agent,omitempty"`
	Readings *lander.Readings `json:"readings,omitempty"`
	Contacts []string         `json:"contacts,omitempty"`
	Outcome  string           `json:"outcome,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Session binds one client connection or stream to one episode.
type Session struct {
	id        string
	transport string
	ep        *episode.Episode
	logger    log.Log
}

func (s *Session) ID() string { return s.id }

// State reports the current episode state without stepping.
func (s *Session) State() Frame {
	agent := s.ep.Snapshot().Agent
	readings := s.ep.Readings()
	return Frame{
		Session:  s.id,
		Episode:  s.ep.ID(),
		Step:     s.ep.Steps(),
		Agent:    &agent,
		Readings: &readings,
		Outcome:  s.ep.Outcome().String(),
	}
}

// Handle decodes and applies one request. Failures become error frames;
// the session stays usable.
func (s *Session) Handle(data []byte) Frame {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return s.fail(errors.Wrap(ErrInvalidMessage, err.Error()))
	}

	switch {
	case req.Reset && req.Action == "":
		s.ep.Reset()
		return s.State()
	case req.Action != "" && !req.Reset:
		tr, err := s.ep.StepNamed(req.Action)
		if err != nil {
			return s.fail(err)
		}
		return Frame{
			Session:  s.id,
			Episode:  tr.Episode,
			Step:     tr.Step,
			Agent:    &tr.Agent,
			Readings: &tr.Readings,
			Contacts: tr.Contacts,
			Outcome:  tr.Outcome.String(),
		}
	default:
		return s.fail(errors.Wrap(ErrInvalidMessage, "expected one of action or reset"))
	}
}

func (s *Session) fail(err error) Frame {
	s.logger.Debug("request rejected", log.String("session", s.id), log.Error(err))
	return Frame{Session: s.id, Step: s.ep.Steps(), Error: err.Error()}
}

var framePool = generic.NewHotPool(func() *bytes.Buffer { return new(bytes.Buffer) }, (*bytes.Buffer).Reset, 16)

// writeFrame writes f as a single newline-terminated JSON line.
func writeFrame(w io.Writer, f Frame) error {
	buf := framePool.Get()
	defer framePool.Put(buf)

	if err := json.NewEncoder(buf).Encode(f); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// serveStream speaks newline-delimited JSON: the current state is written
// first, then one reply per non-empty request line. When idle is positive
// and rw supports read deadlines, a client silent for longer than idle ends
// the stream.
func serveStream(rw io.ReadWriter, sess *Session, maxLine int, idle time.Duration) error {
	if err := writeFrame(rw, sess.State()); err != nil {
		return errors.Wrap(err, "write state")
	}

	rd, _ := rw.(readDeadliner)
	if idle <= 0 {
		rd = nil
	}
	sc := bufio.NewScanner(rw)
	sc.Buffer(make([]byte, 0, min(1024, maxLine)), maxLine)
	for {
		if rd != nil {
			_ = rd.SetReadDeadline(time.Now().Add(idle))
		}
		if !sc.Scan() {
			break
		}
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := writeFrame(rw, sess.Handle(line)); err != nil {
			return errors.Wrap(err, "write frame")
		}
	}
	return sc.Err()
}
