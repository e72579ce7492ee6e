/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/suparena/entityregistry"
	"github.com/suparena/entityregistry/auth"
	"github.com/suparena/entityregistry/config"
	"github.com/suparena/entityregistry/events"
	"github.com/suparena/entityregistry/events/kafka"
	eventsmemory "github.com/suparena/entityregistry/events/memory"
	"github.com/suparena/entityregistry/host"
	"github.com/suparena/entityregistry/identifier"
	"github.com/suparena/entityregistry/logging"
	"github.com/suparena/entityregistry/metrics"
	"github.com/suparena/entityregistry/registry"
	"github.com/suparena/entityregistry/storagemodels"
	"github.com/suparena/entityregistry/tracing"
	"github.com/suparena/entityregistry/transport/httpapi"

	// State backends register themselves with the registry package.
	_ "github.com/suparena/entityregistry/datastore/ddb"
	_ "github.com/suparena/entityregistry/datastore/memory"
	_ "github.com/suparena/entityregistry/datastore/postgres"
	_ "github.com/suparena/entityregistry/datastore/redisstore"
	_ "github.com/suparena/entityregistry/datastore/sqlite"
)

var (
	versionFlag    = flag.Bool("version", false, "Show version information")
	vFlag          = flag.Bool("v", false, "Show version information (short)")
	configFlag     = flag.String("config", "", "Path to a YAML configuration file")
	issueTokenFlag = flag.String("issue-token", "", "Print a bearer token for the given identity and exit")
)

func main() {
	flag.Parse()

	if *versionFlag || *vFlag {
		info := entityregistry.GetVersionInfo()
		fmt.Printf("EntityRegistry entityregistryd version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "entityregistryd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	authn := auth.NewJWTAuthenticator(cfg.Auth)

	if *issueTokenFlag != "" {
		token, err := authn.IssueToken(storagemodels.Identity(*issueTokenFlag))
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, shutdownTracing, err := tracing.Init(cfg.Tracing, entityregistry.Version)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	store, err := registry.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("store close failed", "error", err)
		}
	}()

	gen, err := identifier.New(cfg.Identifier.Algorithm)
	if err != nil {
		return err
	}
	reg := entityregistry.New(store, entityregistry.WithGenerator(gen))

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(promReg)
	if count, err := reg.Count(ctx); err == nil {
		m.EntityCount.Set(float64(count))
	} else {
		logger.Warn("initial count unavailable", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	publisher, err := openPublisher(gctx, g, cfg.Events, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("publisher close failed", "error", err)
		}
	}()

	runtime := host.New(reg, authn,
		host.WithPublisher(publisher),
		host.WithMetrics(m),
		host.WithLogger(logger),
		host.WithTracerProvider(tp),
	)
	handler := httpapi.New(runtime, reg, logger, promReg)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler.Router(cfg.Server.MetricsPath),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g.Go(func() error {
		logger.Info("starting entityregistryd",
			"addr", cfg.Server.Addr,
			"backend", cfg.Store.Backend,
			"algorithm", gen.Algorithm(),
			"events", cfg.Events.Backend,
			"version", entityregistry.Version,
		)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// openPublisher selects the configured event channel. The memory queue is
// drained by a goroutine in g that logs each event.
func openPublisher(ctx context.Context, g *errgroup.Group, cfg config.EventsConfig, logger *slog.Logger) (events.Publisher, error) {
	switch cfg.Backend {
	case "kafka":
		return kafka.New(cfg.Kafka)
	case "memory":
		q := eventsmemory.NewQueue(cfg.Buffer)
		g.Go(func() error {
			drainEvents(ctx, q, logger)
			return nil
		})
		return q, nil
	default:
		return events.Nop{}, nil
	}
}

func drainEvents(ctx context.Context, q *eventsmemory.Queue, logger *slog.Logger) {
	for {
		e, err := q.Consume(ctx)
		if err != nil {
			return
		}
		logger.Debug("event delivered",
			"event_id", e.EventID,
			"type", e.Type,
			"caller", string(e.Caller),
			"id", e.ID.String(),
			"index", e.Index,
		)
	}
}
