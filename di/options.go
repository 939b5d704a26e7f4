package di

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/weld/config"
	"github.com/kbukum/weld/errors"
	"github.com/kbukum/weld/logger"
)

// Option configures a Container.
type Option func(*options)

type options struct {
	logger         *logger.Logger
	naming         NamingStrategy
	override       OverrideStrategy
	matching       NameMatching
	lazySingletons bool
	noDefaults     bool
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	err            error
}

func defaultOptions() *options {
	return &options{
		naming:   DefaultNaming,
		override: OverrideAllowed,
		matching: NameMatchingSensitive,
	}
}

// WithLogger sets the logger. The default is the "di" logger from the
// logger registry.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithNamingStrategy sets how default names are derived from types.
func WithNamingStrategy(ns NamingStrategy) Option {
	return func(o *options) {
		if ns != nil {
			o.naming = ns
		}
	}
}

// WithOverrideStrategy sets the initial override strategy.
func WithOverrideStrategy(s OverrideStrategy) Option {
	return func(o *options) { o.override = s }
}

// WithNameMatching sets how names are compared.
func WithNameMatching(m NameMatching) Option {
	return func(o *options) { o.matching = m }
}

// WithLazySingletons defers singleton construction from Register to the
// first lookup.
func WithLazySingletons() Option {
	return func(o *options) { o.lazySingletons = true }
}

// WithoutDefaultInterceptors skips installing the PostConstruct and field
// injection interceptors.
func WithoutDefaultInterceptors() Option {
	return func(o *options) { o.noDefaults = true }
}

// WithTracerProvider sets the provider used for container spans. The
// default is the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithMeterProvider sets the provider used for container metrics. The
// default is the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// FromConfig applies a loaded configuration.
func FromConfig(cfg *config.Config) Option {
	return func(o *options) {
		if cfg == nil {
			return
		}
		switch cfg.OverrideStrategy {
		case config.OverrideAllowed, "":
			o.override = OverrideAllowed
		case config.OverrideNotAllowed:
			o.override = OverrideNotAllowed
		default:
			o.err = errors.InvalidConfig(fmt.Errorf("unknown override strategy %q", cfg.OverrideStrategy))
		}
		switch cfg.NameMatching {
		case config.NameMatchingSensitive, "":
			o.matching = NameMatchingSensitive
		case config.NameMatchingInsensitive:
			o.matching = NameMatchingInsensitive
		default:
			o.err = errors.InvalidConfig(fmt.Errorf("unknown name matching %q", cfg.NameMatching))
		}
		switch cfg.Singletons {
		case config.SingletonsEager, "":
			o.lazySingletons = false
		case config.SingletonsLazy:
			o.lazySingletons = true
		default:
			o.err = errors.InvalidConfig(fmt.Errorf("unknown singletons mode %q", cfg.Singletons))
		}
		o.noDefaults = cfg.DisableDefaultInterceptors
		o.logger = logger.New(&cfg.Logging, cfg.Name)
	}
}
