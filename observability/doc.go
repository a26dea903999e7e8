// Package observability provides OpenTelemetry tracing and metrics for
// registryd. It is optional: when disabled, the registry runs with a nil
// *Metrics handle and recording is a no-op.
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, cfg)
//	defer mp.Shutdown(ctx)
//	metrics, err := observability.NewMetrics(observability.Meter("registryd"))
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, cfg)
//	defer tp.Shutdown(ctx)
package observability
