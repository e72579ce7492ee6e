/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/suparena/entityregistry/errors"
)

// Failure reasons used as the "reason" label.
const (
	ReasonAuthentication = "authentication"
	ReasonOverflow       = "overflow"
	ReasonDuplicate      = "duplicate"
	ReasonConflict       = "conflict"
	ReasonValidation     = "validation"
	ReasonInternal       = "internal"
)

// Metrics provides observability for entity creation.
type Metrics struct {
	EntitiesCreated prometheus.Counter
	CreateFailures  *prometheus.CounterVec
	CreateDuration  prometheus.Histogram
	EntityCount     prometheus.Gauge
	PublishFailures prometheus.Counter
}

// New registers all metrics with reg. Pass prometheus.DefaultRegisterer in production.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EntitiesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "entityregistry_entities_created_total",
			Help: "Total number of entities created",
		}),
		CreateFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "entityregistry_create_failures_total",
			Help: "Total number of rejected create requests by reason",
		}, []string{"reason"}),
		CreateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "entityregistry_create_duration_seconds",
			Help:    "Duration of create requests including authentication and commit",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		EntityCount: factory.NewGauge(prometheus.GaugeOpts{
			Name: "entityregistry_entity_count",
			Help: "Number of entities in the enumeration index",
		}),
		PublishFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "entityregistry_event_publish_failures_total",
			Help: "Total number of creation events that could not be published",
		}),
	}
}

// ObserveCreated records a successful creation and the resulting count.
func (m *Metrics) ObserveCreated(count uint64) {
	m.EntitiesCreated.Inc()
	m.EntityCount.Set(float64(count))
}

// ObserveFailure counts a failed create under its reason.
func (m *Metrics) ObserveFailure(err error) {
	m.CreateFailures.WithLabelValues(Reason(err)).Inc()
}

// ObserveCreateDuration records the duration of a create request.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCreateDuration(start time.Time) {
	m.CreateDuration.Observe(time.Since(start).Seconds())
}

// IncrementPublishFailures records an event that was not delivered.
func (m *Metrics) IncrementPublishFailures() {
	m.PublishFailures.Inc()
}

// Reason classifies err into one of the Reason* labels.
func Reason(err error) string {
	switch {
	case errors.IsAuthenticationFailure(err):
		return ReasonAuthentication
	case errors.IsCounterOverflow(err):
		return ReasonOverflow
	case errors.IsDuplicateIdentifier(err):
		return ReasonDuplicate
	case errors.IsConditionFailed(err):
		return ReasonConflict
	case errors.IsValidationError(err):
		return ReasonValidation
	default:
		return ReasonInternal
	}
}
