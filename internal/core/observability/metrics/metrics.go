package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives simulator activity. Episodes and servers depend on this
// interface so they can run without a metrics backend.
type Recorder interface {
	Step(action string, contacts []string)
	EpisodeEnded(outcome string, steps int)
	SessionOpened(transport string)
	SessionClosed(transport string)
}

var _ Recorder = (*Prometheus)(nil)

// Prometheus is a Recorder backed by its own registry, so several instances
// (tests, embedded servers) never collide on metric names.
type Prometheus struct {
	registry *prometheus.Registry

	stepsTotal     *prometheus.CounterVec
	contactsTotal  *prometheus.CounterVec
	episodesTotal  *prometheus.CounterVec
	episodeLength  prometheus.Histogram
	activeSessions *prometheus.GaugeVec
}

func New() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		stepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lander_steps_total",
				Help: "Total number of simulation steps by action.",
			},
			[]string{"action"},
		),
		contactsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lander_contacts_total",
				Help: "Boundary and collision rules fired during steps.",
			},
			[]string{"kind"},
		),
		episodesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lander_episodes_total",
				Help: "Finished episodes by outcome.",
			},
			[]string{"outcome"},
		),
		episodeLength: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lander_episode_steps",
				Help:    "Number of steps taken by finished episodes.",
				Buckets: prometheus.ExponentialBuckets(8, 2, 10),
			},
		),
		activeSessions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lander_active_sessions",
				Help: "Remote control sessions currently open.",
			},
			[]string{"transport"},
		),
	}
	p.registry.MustRegister(
		p.stepsTotal,
		p.contactsTotal,
		p.episodesTotal,
		p.episodeLength,
		p.activeSessions,
	)
	return p
}

// Registry exposes the underlying registry for tests and extra collectors.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler returns the Prometheus metrics HTTP handler.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *Prometheus) Step(action string, contacts []string) {
	p.stepsTotal.WithLabelValues(action).Inc()
	for _, kind := range contacts {
		p.contactsTotal.WithLabelValues(kind).Inc()
	}
}

func (p *Prometheus) EpisodeEnded(outcome string, steps int) {
	p.episodesTotal.WithLabelValues(outcome).Inc()
	p.episodeLength.Observe(float64(steps))
}

func (p *Prometheus) SessionOpened(transport string) {
	p.activeSessions.WithLabelValues(transport).Inc()
}

func (p *Prometheus) SessionClosed(transport string) {
	p.activeSessions.WithLabelValues(transport).Dec()
}

// Nop discards everything.
type Nop struct{}

func (Nop) Step(string, []string)    {}
func (Nop) EpisodeEnded(string, int) {}
func (Nop) SessionOpened(string)     {}
func (Nop) SessionClosed(string)     {}
