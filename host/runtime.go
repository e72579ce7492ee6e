/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package host

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/suparena/entityregistry"
	"github.com/suparena/entityregistry/auth"
	"github.com/suparena/entityregistry/events"
	"github.com/suparena/entityregistry/logging"
	"github.com/suparena/entityregistry/metrics"
	"github.com/suparena/entityregistry/storagemodels"
)

const tracerName = "github.com/suparena/entityregistry/host"

// Registrar is the registry operation the runtime drives.
type Registrar interface {
	Register(ctx context.Context, caller storagemodels.Identity, seed []byte) (entityregistry.Registration, error)
}

// Runtime authenticates callers, supplies seeds, runs the creation and
// announces it. It owns all logging, metrics and tracing around a create.
type Runtime struct {
	registry  Registrar
	auth      auth.Authenticator
	seeds     SeedSource
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithSeedSource replaces the crypto/rand seed source.
func WithSeedSource(s SeedSource) Option {
	return func(r *Runtime) { r.seeds = s }
}

// WithPublisher sets where creation events go. Defaults to events.Nop.
func WithPublisher(p events.Publisher) Option {
	return func(r *Runtime) { r.publisher = p }
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runtime) { r.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) { r.logger = l }
}

// WithTracerProvider sets the provider spans are started from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Runtime) { r.tracer = tp.Tracer(tracerName) }
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Runtime) { r.now = now }
}

// New constructs a runtime with its dependencies.
func New(registry Registrar, authenticator auth.Authenticator, opts ...Option) *Runtime {
	r := &Runtime{
		registry:  registry,
		auth:      authenticator,
		seeds:     RandomSeed{},
		publisher: events.Nop{},
		logger:    logging.Discard(),
		tracer:    noop.NewTracerProvider().Tracer(tracerName),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Submit runs one creation on behalf of the holder of credential.
//
// Authentication failures never reach the registry. A committed creation is
// returned even if its event cannot be published.
func (r *Runtime) Submit(ctx context.Context, credential string) (entityregistry.Registration, error) {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "entityregistry.create")
	defer span.End()
	if r.metrics != nil {
		defer r.metrics.ObserveCreateDuration(start)
	}

	caller, err := r.auth.Authenticate(ctx, credential)
	if err != nil {
		r.fail(ctx, span, "authentication failed", "", err)
		return entityregistry.Registration{}, err
	}
	span.SetAttributes(attribute.String("entityregistry.caller", string(caller)))

	seed, err := r.seeds.Seed(ctx)
	if err != nil {
		r.fail(ctx, span, "seed unavailable", caller, err)
		return entityregistry.Registration{}, err
	}

	reg, err := r.registry.Register(ctx, caller, seed)
	if err != nil {
		r.fail(ctx, span, "create rejected", caller, err)
		return entityregistry.Registration{}, err
	}
	span.SetAttributes(
		attribute.String("entityregistry.id", reg.ID.String()),
		attribute.Int64("entityregistry.index", int64(reg.Index)),
	)
	span.SetStatus(codes.Ok, "")
	if r.metrics != nil {
		r.metrics.ObserveCreated(reg.Count)
	}

	event := events.NewCreatedEvent(caller, reg.ID, reg.Index, r.now())
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.WarnContext(ctx, "event publish failed",
			"event_id", event.EventID,
			"id", reg.ID.String(),
			"error", err,
		)
		if r.metrics != nil {
			r.metrics.IncrementPublishFailures()
		}
	}

	r.logger.InfoContext(ctx, "entity created",
		"caller", string(caller),
		"id", reg.ID.String(),
		"index", reg.Index,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return reg, nil
}

func (r *Runtime) fail(ctx context.Context, span trace.Span, msg string, caller storagemodels.Identity, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	if r.metrics != nil {
		r.metrics.ObserveFailure(err)
	}
	reason := metrics.Reason(err)
	if reason == metrics.ReasonInternal {
		r.logger.ErrorContext(ctx, msg, "caller", string(caller), "error", err)
		return
	}
	r.logger.WarnContext(ctx, msg, "caller", string(caller), "reason", reason, "error", err)
}
