// Package telemetry provides observability instrumentation for ForgeCAD.
//
// The package integrates structured logging (zerolog), build tracing
// (OpenTelemetry), metrics (Prometheus), and event publishing into a
// unified system for monitoring and debugging builds.
//
// # Usage
//
// Initialize telemetry at application startup:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceName = "forgecad"
//	cfg.ServiceVersion = "1.0.0"
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
// Add telemetry to context so the pipeline picks it up:
//
//	ctx = tel.WithContext(ctx)
//
// # Structured Logging
//
// The logger provides component-specific logging with build context:
//
//	logger := tel.Logger.NewComponentLogger("pipeline")
//	logger = logger.WithBuildID("build-123").WithEngine("solid")
//	logger.Info("Starting build")
//	logger.WithError(err).Error("Build failed")
//
// Log levels: trace, debug, info, warn, error, fatal.
//
// # Tracing
//
// Builds become one span with a child span per operation and per export:
//
//	ctx, span := tel.Tracer.StartBuildSpan(ctx, buildID, engine)
//	defer span.End()
//
// # Metrics
//
// Prometheus metrics cover build lifecycle, per-operation execution,
// engine selection and fallback, export output, and errors by class.
// Expose them with StartMetricsServer or mount Handler on an existing
// mux.
//
// # Events
//
// The event publisher emits build lifecycle events (started, completed,
// failed), per-operation results, engine switches, and export writes.
// Subscribers attach with optional filters:
//
//	tel.Events.Subscribe(func(e telemetry.Event) {
//	    fmt.Println(e.Message)
//	}, telemetry.FilterByLevel(telemetry.EventLevelWarning))
package telemetry
