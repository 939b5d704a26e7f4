// Package observability provides OpenTelemetry tracing and metrics for the
// container.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("billing"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("billing"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewContainerMetrics(mp.Meter(observability.InstrumentationName))
//	metrics.RecordConstruct(ctx, "*app.Engine", "singleton", nil, elapsed)
//
// Setup wires both from configuration and returns a single shutdown func:
//
//	shutdown, err := observability.Setup(ctx, cfg.Tracing, cfg.Metrics)
//	defer shutdown(ctx)
package observability
