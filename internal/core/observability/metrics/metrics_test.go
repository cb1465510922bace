package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	p := New()

	p.Step("thrust0", nil)
	p.Step("idle", []string{"ground"})
	p.Step("idle", []string{"obstacle", "pad"})
	p.EpisodeEnded("landed", 42)
	p.SessionOpened("websocket")
	p.SessionOpened("websocket")
	p.SessionClosed("websocket")

	assert.Equal(t, 2., testutil.ToFloat64(p.stepsTotal.WithLabelValues("idle")))
	assert.Equal(t, 1., testutil.ToFloat64(p.stepsTotal.WithLabelValues("thrust0")))
	assert.Equal(t, 1., testutil.ToFloat64(p.contactsTotal.WithLabelValues("pad")))
	assert.Equal(t, 1., testutil.ToFloat64(p.episodesTotal.WithLabelValues("landed")))
	assert.Equal(t, 1., testutil.ToFloat64(p.activeSessions.WithLabelValues("websocket")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	p := New()
	p.Step("idle", nil)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `lander_steps_total{action="idle"} 1`)
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.EpisodeEnded("timeout", 10)
	assert.Equal(t, 0., testutil.ToFloat64(b.episodesTotal.WithLabelValues("timeout")))
}
