// SPDX-License-Identifier: MPL-2.0

// Package metrics counts intent dispatches, result polls and chain failures with
// Prometheus collectors. Collector implements intent.Observer.
package metrics

import (
	"fmt"
	"io"

	"github.com/invowk/intentkit/pkg/intent"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "intentkit"

// Dispatch outcomes used as the "outcome" label.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

type (
	// Collector holds the counters. The zero value is not usable; call New.
	Collector struct {
		dispatches  *prometheus.CounterVec
		polls       *prometheus.CounterVec
		chainErrors *prometheus.CounterVec
	}
)

// New creates a Collector and registers its counters with reg. A nil reg
// registers nothing, which is useful for throwaway collectors.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Intents handed to the root activity, by action, tracking and outcome.",
		}, []string{"action", "tracked", "outcome"}),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_polls_total",
			Help:      "Polls of the completion queue, by outcome.",
		}, []string{"outcome"}),
		chainErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chain_errors_total",
			Help:      "Builder chains that failed, by error kind.",
		}, []string{"kind"}),
	}
	if reg == nil {
		return c, nil
	}
	for _, col := range []prometheus.Collector{c.dispatches, c.polls, c.chainErrors} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return c, nil
}

// ChainFailed counts a failed chain under the kind of err.
func (c *Collector) ChainFailed(err error) {
	c.chainErrors.WithLabelValues(kindLabel(err)).Inc()
}

// Dispatched counts a StartActivity or StartActivityForResult call.
func (c *Collector) Dispatched(action intent.Action, tracked bool, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeFailed
	}
	c.dispatches.WithLabelValues(actionLabel(action), fmt.Sprint(tracked), outcome).Inc()
}

// ResultPolled counts one poll of the completion queue.
func (c *Collector) ResultPolled(outcome intent.PollOutcome) {
	c.polls.WithLabelValues(outcome.String()).Inc()
}

// Dispatches returns the dispatch counter for the given labels.
func (c *Collector) Dispatches(action intent.Action, tracked bool, outcome string) prometheus.Counter {
	return c.dispatches.WithLabelValues(actionLabel(action), fmt.Sprint(tracked), outcome)
}

// Polls returns the poll counter for outcome.
func (c *Collector) Polls(outcome intent.PollOutcome) prometheus.Counter {
	return c.polls.WithLabelValues(outcome.String())
}

// ChainErrors returns the chain error counter for kind.
func (c *Collector) ChainErrors(kind intent.Kind) prometheus.Counter {
	return c.chainErrors.WithLabelValues(kind.String())
}

// WriteText writes every metric family gathered from g in the Prometheus text format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

func actionLabel(a intent.Action) string {
	if a == "" {
		return "unknown"
	}
	return a.String()
}

func kindLabel(err error) string {
	if k := intent.KindOf(err); k != 0 {
		return k.String()
	}
	return "other"
}
