// Package logger provides structured logging for weld using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. The container logs
// through a "di" component logger tagged with its container_id.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("di")
//	log.Info("provider registered", logger.Fields("type", "*app.Engine"))
package logger
