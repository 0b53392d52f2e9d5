// Package metrics counts what a scoring session did, in Prometheus form.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/roach88/rally/internal/engine"
	"github.com/roach88/rally/internal/ir"
)

// Recorder holds one registry of rally counters. It implements
// engine.Observer.
type Recorder struct {
	registry *prometheus.Registry

	accepted        *prometheus.CounterVec
	rejected        *prometheus.CounterVec
	sets            *prometheus.CounterVec
	matches         *prometheus.CounterVec
	actions         *prometheus.CounterVec
	actionsPerRally prometheus.Histogram
}

// NewRecorder creates a Recorder with a private registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		accepted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rally_accepted_total",
			Help: "Rallies accepted, by the side that won the point",
		}, []string{"winner"}),
		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rally_rejected_total",
			Help: "Rallies refused, by reason key",
		}, []string{"reason"}),
		sets: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rally_sets_won_total",
			Help: "Sets decided, by winning side",
		}, []string{"winner"}),
		matches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rally_matches_won_total",
			Help: "Matches decided, by winning side",
		}, []string{"winner"}),
		actions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rally_actions_total",
			Help: "Actions recorded in accepted rallies, by category and outcome",
		}, []string{"category", "outcome"}),
		actionsPerRally: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rally_actions_per_rally",
			Help:    "Number of actions recorded per accepted rally",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16},
		}),
	}
}

// RallyAccepted implements engine.Observer.
func (r *Recorder) RallyAccepted(res engine.Result) {
	winner := string(res.Point.Winner)
	r.accepted.WithLabelValues(winner).Inc()
	if res.Change.SetWon {
		r.sets.WithLabelValues(winner).Inc()
	}
	if res.Change.MatchWon {
		r.matches.WithLabelValues(winner).Inc()
	}
	for _, a := range res.Point.Actions {
		r.actions.WithLabelValues(string(a.Category), a.Outcome.String()).Inc()
	}
	r.actionsPerRally.Observe(float64(len(res.Point.Actions)))
}

// RallyRejected implements engine.Observer.
func (r *Recorder) RallyRejected(reason *ir.Reason) {
	r.rejected.WithLabelValues(string(reason.Key)).Inc()
}

// Registry returns the registry the counters live in.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteText writes every metric in the Prometheus text exposition format.
func (r *Recorder) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
