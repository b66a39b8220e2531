// Package bootstrap wires a mediator, its default pipeline and the persistence layer from config.
package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/next-trace/scg-mediator/behaviors"
	"github.com/next-trace/scg-mediator/config"
	"github.com/next-trace/scg-mediator/domain"
	"github.com/next-trace/scg-mediator/mediator"
	"github.com/next-trace/scg-mediator/persistence"
	"github.com/next-trace/scg-mediator/validation"
)

// App holds the wired components. Handlers and validators are bound by the caller.
type App struct {
	Config     config.Config
	Logger     *slog.Logger
	Mediator   *mediator.Mediator
	Validators *validation.Registry
	DB         *gorm.DB
	UnitOfWork *persistence.UnitOfWork
}

type options struct {
	out        io.Writer
	registerer prometheus.Registerer
	tracer     trace.TracerProvider
}

// Option configures New.
type Option func(*options)

// WithLogOutput sets where logs are written. Defaults to stderr.
func WithLogOutput(w io.Writer) Option { return func(o *options) { o.out = w } }

// WithRegisterer sets the prometheus registerer for mediator metrics.
func WithRegisterer(r prometheus.Registerer) Option { return func(o *options) { o.registerer = r } }

// WithTracerProvider sets the tracer provider for request spans.
func WithTracerProvider(tp trace.TracerProvider) Option { return func(o *options) { o.tracer = tp } }

// New builds an App from cfg and returns it with a cleanup function that closes the database.
//
// The pipeline, outermost first, is recovery, tracing, metrics, logging, rate limiting and
// validation.
func New(cfg config.Config, opts ...Option) (*App, func(), error) {
	o := options{out: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := NewLogger(cfg, o.out)
	if err != nil {
		return nil, nil, err
	}

	phase, err := persistence.ParsePhase(cfg.EventsPhase)
	if err != nil {
		return nil, nil, err
	}

	db, err := persistence.Open(cfg.DBDriver, cfg.DBDSN, logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	// collectors are registered last so a failed New leaves the registerer untouched
	metrics, err := behaviors.NewMetrics(o.registerer, cfg.MetricsNamespace)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	validators := validation.NewRegistry()

	m := mediator.New(logger, mediator.WithBehaviors(
		behaviors.Recovery(logger),
		behaviors.Tracing(o.tracer),
		metrics,
		behaviors.Logging(logger, behaviors.LogPayloads(cfg.LogPayloads)),
		behaviors.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		validation.Behavior(validators),
	))

	uow := persistence.NewUnitOfWork(db, domain.NewEventDispatcher(m, logger),
		persistence.WithPhase(phase),
		persistence.WithLogger(logger),
	)

	logger.Info("mediator ready",
		"events_phase", phase.String(),
		"db_driver", cfg.DBDriver,
	)

	return &App{
		Config:     cfg,
		Logger:     logger,
		Mediator:   m,
		Validators: validators,
		DB:         db,
		UnitOfWork: uow,
	}, cleanup, nil
}

// NewLogger builds a text or JSON slog logger at the configured level.
func NewLogger(cfg config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	hopts := &slog.HandlerOptions{Level: level}

	switch cfg.LogFormat {
	case "json":
		return slog.New(slog.NewJSONHandler(w, hopts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, hopts)), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown log format %q", cfg.LogFormat)
	}
}
