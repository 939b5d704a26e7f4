package observability

import (
	"context"
	stderrors "errors"
)

// ShutdownFunc flushes and stops the providers created by Setup.
type ShutdownFunc func(ctx context.Context) error

// Setup initializes the tracer and meter providers that are enabled in the
// given configs. The returned ShutdownFunc is never nil.
func Setup(ctx context.Context, tracing TracerConfig, metrics MeterConfig) (ShutdownFunc, error) {
	var shutdowns []ShutdownFunc
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return stderrors.Join(errs...)
	}

	if tracing.Enabled {
		tp, err := InitTracer(ctx, tracing)
		if err != nil {
			return shutdown, err
		}
		shutdowns = append(shutdowns, tp.Shutdown)
	}

	if metrics.Enabled {
		mp, err := InitMeter(ctx, metrics)
		if err != nil {
			return shutdown, stderrors.Join(err, shutdown(ctx))
		}
		shutdowns = append(shutdowns, mp.Shutdown)
	}

	return shutdown, nil
}
