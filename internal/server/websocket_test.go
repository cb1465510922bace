package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/lander/internal/core/lander"
	"github.com/zeusync/lander/internal/core/observability/log"
	"github.com/zeusync/lander/internal/core/observability/metrics"
)

// testWorld drops the lander half a unit above the standard pad, so three
// idle steps land it.
func testWorld(t *testing.T) World {
	t.Helper()
	layout, err := lander.Task(lander.TaskStandard)
	require.NoError(t, err)
	layout.SetAgent(0, 85, 10.5)
	return World{Config: lander.Standard(), Layout: layout}
}

func startServer(t *testing.T, mutate func(*Config)) *Server {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	if mutate != nil {
		mutate(&cfg)
	}
	s := NewServer(cfg, testWorld(t), log.NewNop(), metrics.New())
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return s
}

func dial(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+s.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func exchange(t *testing.T, conn *websocket.Conn, req any) Frame {
	t.Helper()
	require.NoError(t, conn.WriteJSON(req))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestWebSocketSession(t *testing.T) {
	s := startServer(t, nil)
	conn := dial(t, s)

	var hello Frame
	require.NoError(t, conn.ReadJSON(&hello))
	assert.NotEmpty(t, hello.Session)
	assert.Equal(t, 0, hello.Step)
	assert.Equal(t, "running", hello.Outcome)
	require.NotNil(t, hello.Agent)
	assert.Equal(t, 10.5, hello.Agent.Y)

	var f Frame
	for i := 0; i < 3; i++ {
		f = exchange(t, conn, Request{Action: "idle"})
		require.Empty(t, f.Error)
	}
	assert.Equal(t, hello.Session, f.Session)
	assert.Equal(t, hello.Episode, f.Episode)
	assert.Equal(t, 3, f.Step)
	assert.Equal(t, "landed", f.Outcome)
	assert.Equal(t, []string{"pad"}, f.Contacts)
	require.NotNil(t, f.Readings)
	assert.True(t, f.Readings.OnPad)

	f = exchange(t, conn, Request{Action: "idle"})
	assert.Contains(t, f.Error, "episode is over")

	f = exchange(t, conn, Request{Reset: true})
	assert.Empty(t, f.Error)
	assert.Equal(t, 0, f.Step)
	assert.NotEqual(t, hello.Episode, f.Episode)

	f = exchange(t, conn, Request{Action: "warp"})
	assert.Contains(t, f.Error, "unknown action")
	assert.Nil(t, f.Agent)

	f = exchange(t, conn, Request{Action: "idle", Reset: true})
	assert.Contains(t, f.Error, ErrInvalidMessage.Error())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	require.NoError(t, conn.ReadJSON(&f))
	assert.Contains(t, f.Error, ErrInvalidMessage.Error())

	f = exchange(t, conn, Request{Action: "thrust0"})
	assert.Empty(t, f.Error)
	assert.Equal(t, 1, f.Step)
}

func TestErrorFrameShape(t *testing.T) {
	s := startServer(t, nil)
	conn := dial(t, s)

	var hello Frame
	require.NoError(t, conn.ReadJSON(&hello))

	require.NoError(t, conn.WriteJSON(Request{}))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.ElementsMatch(t, []string{"session", "step", "error"}, keys(fields))
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestMaxSessions(t *testing.T) {
	s := startServer(t, func(c *Config) { c.MaxSessions = 1 })

	first := dial(t, s)
	var hello Frame
	require.NoError(t, first.ReadJSON(&hello))
	assert.Equal(t, int64(1), s.Sessions())

	second := dial(t, s)
	_, _, err := second.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseTryAgainLater), "got %v", err)

	require.NoError(t, first.Close())
	assert.Eventually(t, func() bool { return s.Sessions() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHealthAndMetrics(t *testing.T) {
	s := startServer(t, nil)
	conn := dial(t, s)
	var hello Frame
	require.NoError(t, conn.ReadJSON(&hello))
	exchange(t, conn, Request{Action: "idle"})

	base := "http://" + s.Addr().String()
	resp, err := http.Get(base + "/healthz")
	require.NoError(t, err)
	var h health
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&h))
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, health{Status: "ok", Sessions: 1}, h)

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `lander_active_sessions{transport="websocket"} 1`)
	assert.Contains(t, string(body), `lander_steps_total{action="idle"} 1`)
}

func TestStopClosesSessions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	s := NewServer(cfg, testWorld(t), log.NewNop(), metrics.New())
	require.NoError(t, s.Start(context.Background()))

	conn := dial(t, s)
	var hello Frame
	require.NoError(t, conn.ReadJSON(&hello))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, int64(0), s.Sessions())
}

func TestLifecycleErrors(t *testing.T) {
	s := NewServer(DefaultConfig(), testWorld(t), log.NewNop(), metrics.New())
	assert.ErrorIs(t, s.Stop(context.Background()), ErrServerNotRunning)

	cfg := DefaultConfig()
	cfg.MaxSessions = 0
	bad := NewServer(cfg, testWorld(t), log.NewNop(), metrics.New())
	assert.ErrorIs(t, bad.Start(context.Background()), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	noPad := NewServer(cfg, World{Config: lander.Standard(), Layout: &lander.Snapshot{}}, log.NewNop(), metrics.New())
	assert.ErrorIs(t, noPad.Start(context.Background()), ErrInvalidConfig)

	s = startServer(t, nil)
	assert.ErrorIs(t, s.Start(context.Background()), ErrServerAlreadyRunning)
	require.NoError(t, s.Stop(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrServerClosed)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cases := map[string]func(*Config){
		"addr":     func(c *Config) { c.Addr = "" },
		"sessions": func(c *Config) { c.MaxSessions = -1 },
		"message":  func(c *Config) { c.MaxMessageSize = 0 },
		"steps":    func(c *Config) { c.StepLimit = -1 },
		"idle":     func(c *Config) { c.IdleTimeout = 0 },
		"write":    func(c *Config) { c.WriteTimeout = -time.Second },
	}
	for name, mutate := range cases {
		c := DefaultConfig()
		mutate(&c)
		assert.ErrorIs(t, c.Validate(), ErrInvalidConfig, name)
	}
}

func TestRoutesRejectWrongMethod(t *testing.T) {
	s := startServer(t, nil)
	resp, err := http.Post("http://"+s.Addr().String()+"/healthz", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
