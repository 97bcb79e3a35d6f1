// Package observability wires OpenTelemetry tracing and metrics into
// HTTP exchanges.
//
// Providers:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("orders"))
//	defer tp.Shutdown(ctx)
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("orders"))
//	defer mp.Shutdown(ctx)
//
// Per-exchange instrumentation:
//
//	inst, err := observability.NewInstrumentation()
//	ctx, call := inst.Start(ctx, observability.CallInfo{Method: "GET", Path: "/users"})
//	call.End(200, "", nil)
//
// Each exchange produces one client span named httpservice.send and
// updates the httpservice.exchange.* and httpservice.error.total
// instruments.
package observability
