package server

import (
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"

	"github.com/zeusync/lander/internal/core/episode"
	"github.com/zeusync/lander/internal/core/events/bus"
	"github.com/zeusync/lander/internal/core/lander"
	"github.com/zeusync/lander/internal/core/observability/log"
	"github.com/zeusync/lander/internal/core/observability/metrics"
)

// World is the configuration and starting layout every session plays.
type World struct {
	Config lander.Config
	Layout *lander.Snapshot
}

// Metrics is what the server needs from a metrics backend: a recorder and
// an exposition handler.
type Metrics interface {
	metrics.Recorder
	Handler() http.Handler
}

// Server serves lander sessions over websocket and QUIC.
type Server struct {
	config  Config
	world   World
	logger  log.Log
	metrics Metrics
	bus     bus.EventBus

	httpServer *http.Server
	httpLn     net.Listener
	quicLn     *quic.Listener

	sessions     sync.Map // map[string]*Session
	sessionCount atomic.Int64

	running atomic.Bool
	closed  atomic.Bool

	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	stopping bool
	workers  sync.WaitGroup
}

type Option func(*Server)

// WithBus publishes the episode events of every session on b.
func WithBus(b bus.EventBus) Option {
	return func(s *Server) { s.bus = b }
}

// NewServer creates a new lander server
func NewServer(config Config, world World, logger log.Log, m Metrics, opts ...Option) *Server {
	s := &Server{
		config:  config,
		world:   world,
		logger:  logger.With(log.String("component", "server")),
		metrics: m,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Start opens the listeners and returns once they accept connections.
func (s *Server) Start(ctx context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.world.Layout == nil || len(s.world.Layout.Pads) == 0 {
		return errors.Wrap(ErrInvalidConfig, "world needs a layout with a pad")
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		s.running.Store(false)
		s.logger.Error("Failed to create listener", log.Error(err))
		return errors.Wrap(ErrListenerFailed, err.Error())
	}
	s.httpLn = ln
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.IdleTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	if s.config.QUICAddr != "" {
		if err = s.listenQUIC(); err != nil {
			_ = ln.Close()
			s.running.Store(false)
			return err
		}
	}

	s.workers.Add(1)
	go func() {
		defer s.workers.Done()
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", log.Error(err))
		}
	}()

	s.logger.Info("Server started",
		log.String("addr", ln.Addr().String()),
		log.String("quic_addr", s.config.QUICAddr),
		log.Int("max_sessions", s.config.MaxSessions))
	return nil
}

// Stop closes listeners and live sessions, then waits for the workers or
// for ctx to expire.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.Load() {
		return ErrServerNotRunning
	}
	if !s.closed.CompareAndSwap(false, true) {
		return ErrServerClosed
	}

	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()

	s.logger.Info("Stopping server", log.Int64("sessions", s.sessionCount.Load()))
	s.cancel()

	err := s.httpServer.Shutdown(ctx)
	if s.quicLn != nil {
		if cerr := s.quicLn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}

	done := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.running.Store(false)
	s.logger.Info("Server stopped")
	return err
}

// Addr is the bound HTTP address, useful when Config.Addr asks for port 0.
func (s *Server) Addr() net.Addr {
	if s.httpLn == nil {
		return nil
	}
	return s.httpLn.Addr()
}

// QUICAddr is the bound QUIC address or nil when QUIC is disabled.
func (s *Server) QUICAddr() net.Addr {
	if s.quicLn == nil {
		return nil
	}
	return s.quicLn.Addr()
}

func (s *Server) Sessions() int64 { return s.sessionCount.Load() }

// track registers a worker unless the server is stopping.
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopping {
		return false
	}
	s.workers.Add(1)
	return true
}

func (s *Server) openSession(transport string) (*Session, error) {
	if n := s.sessionCount.Add(1); n > int64(s.config.MaxSessions) {
		s.sessionCount.Add(-1)
		return nil, ErrMaxSessionsReached
	}

	id := uuid.NewString()
	opts := []episode.Option{
		episode.WithLogger(s.logger),
		episode.WithRecorder(s.metrics),
		episode.WithStepLimit(s.config.StepLimit),
		episode.WithSource(id),
	}
	if s.bus != nil {
		opts = append(opts, episode.WithBus(s.bus))
	}
	ep, err := episode.New(s.world.Config, s.world.Layout, opts...)
	if err != nil {
		s.sessionCount.Add(-1)
		return nil, err
	}

	sess := &Session{id: id, transport: transport, ep: ep, logger: s.logger}
	s.sessions.Store(id, sess)
	s.metrics.SessionOpened(transport)
	s.logger.Info("Session opened", log.String("session", id), log.String("transport", transport))
	return sess, nil
}

func (s *Server) closeSession(sess *Session) {
	if _, ok := s.sessions.LoadAndDelete(sess.id); !ok {
		return
	}
	s.sessionCount.Add(-1)
	s.metrics.SessionClosed(sess.transport)
	s.logger.Info("Session closed",
		log.String("session", sess.id),
		log.String("transport", sess.transport),
		log.Int("steps", sess.ep.Steps()))
}
