package config

import (
	"fmt"

	"github.com/kbukum/weld/logger"
	"github.com/kbukum/weld/observability"
	"github.com/kbukum/weld/validation"
)

// Override strategies.
const (
	OverrideAllowed    = "allowed"
	OverrideNotAllowed = "not_allowed"
)

// Name matching modes.
const (
	NameMatchingSensitive   = "sensitive"
	NameMatchingInsensitive = "insensitive"
)

// Singleton instantiation modes.
const (
	SingletonsEager = "eager"
	SingletonsLazy  = "lazy"
)

// Config contains the container settings.
//
// Example config.yml:
//
//	name: billing
//	override_strategy: not_allowed
//	name_matching: insensitive
//	singletons: lazy
//	logging:
//	  level: debug
//	tracing:
//	  enabled: true
//	  endpoint: otel-collector:4318
type Config struct {
	Name                       string                     `yaml:"name" mapstructure:"name" validate:"required"`
	OverrideStrategy           string                     `yaml:"override_strategy" mapstructure:"override_strategy" validate:"oneof=allowed not_allowed"`
	NameMatching               string                     `yaml:"name_matching" mapstructure:"name_matching" validate:"oneof=sensitive insensitive"`
	Singletons                 string                     `yaml:"singletons" mapstructure:"singletons" validate:"oneof=eager lazy"`
	DisableDefaultInterceptors bool                       `yaml:"disable_default_interceptors" mapstructure:"disable_default_interceptors"`
	Logging                    logger.Config              `yaml:"logging" mapstructure:"logging"`
	Tracing                    observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics                    observability.MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
}

// ApplyDefaults fills unset fields. Tracing and metrics inherit the
// container name as their service name.
func (c *Config) ApplyDefaults() {
	if c.OverrideStrategy == "" {
		c.OverrideStrategy = OverrideAllowed
	}
	if c.NameMatching == "" {
		c.NameMatching = NameMatchingSensitive
	}
	if c.Singletons == "" {
		c.Singletons = SingletonsEager
	}
	c.Logging.ApplyDefaults()

	tracing := observability.DefaultTracerConfig(c.Name)
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = tracing.ServiceName
	}
	if c.Tracing.ServiceVersion == "" {
		c.Tracing.ServiceVersion = tracing.ServiceVersion
	}
	if c.Tracing.Environment == "" {
		c.Tracing.Environment = tracing.Environment
	}
	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = tracing.Endpoint
	}
	if c.Tracing.SampleRate == 0 && c.Tracing.Enabled {
		c.Tracing.SampleRate = tracing.SampleRate
	}

	metrics := observability.DefaultMeterConfig(c.Name)
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = metrics.ServiceName
	}
	if c.Metrics.ServiceVersion == "" {
		c.Metrics.ServiceVersion = metrics.ServiceVersion
	}
	if c.Metrics.Environment == "" {
		c.Metrics.Environment = metrics.Environment
	}
	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = metrics.Endpoint
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = metrics.Interval
	}
}

// Validate checks the struct tags, then the nested logging section.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
