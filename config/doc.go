// Package config loads container configuration.
//
// Values come from a config.yml found in the usual locations, then from a
// .env file, then from environment variables. Nested keys map to
// underscore-separated variables, so WELD_OVERRIDE_STRATEGY and
// LOGGING_LEVEL both bind.
//
// # Usage
//
//	cfg, err := config.Load("billing")
//	c, err := di.New(di.FromConfig(cfg))
//
// Services embedding container settings in a larger struct use LoadConfig
// directly and call ApplyDefaults and Validate themselves.
package config
