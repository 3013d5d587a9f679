package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/forgecad/forgecad/pkg/export"
	"github.com/forgecad/forgecad/pkg/kernel"
	"github.com/forgecad/forgecad/pkg/telemetry"
)

// Request describes one build: the operation sequence plus routing and
// export settings.
type Request struct {
	// BuildID keys the build; a fresh UUID is assigned when empty.
	BuildID string

	// Engine is an explicit engine name; empty triggers auto-selection
	// from the hints.
	Engine string

	// Hints steer auto-selection.
	Hints kernel.JobHints

	// Units is the input measurement unit; empty means millimeters.
	Units kernel.Unit

	// Operations is the pipeline to execute, in order.
	Operations []kernel.Operation

	// Formats are the export formats; nil exports every supported format.
	Formats []export.Format

	// SkipExport runs the pipeline without writing artifact files.
	SkipExport bool
}

// Executor runs builds. Safe for concurrent use; every build gets its
// own engine session and working shape.
type Executor struct {
	router    *kernel.Router
	tel       *telemetry.Telemetry
	log       *telemetry.Logger
	outputDir string
}

// Option configures an Executor.
type Option func(*Executor)

// WithOutputDir sets the directory exported artifacts are written to.
func WithOutputDir(dir string) Option {
	return func(e *Executor) { e.outputDir = dir }
}

// WithTelemetry sets the telemetry sink.
func WithTelemetry(tel *telemetry.Telemetry) Option {
	return func(e *Executor) { e.tel = tel }
}

// New creates an Executor over the given router.
func New(router *kernel.Router, opts ...Option) *Executor {
	e := &Executor{
		router:    router,
		tel:       telemetry.NewNop(),
		outputDir: "output",
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.tel.Logger.NewComponentLogger("pipeline")
	return e
}

// Execute runs one build. Operation and export failures are reported in
// the Result, never as a partial success; the returned error is non-nil
// only when the request itself is invalid (no operations, unknown
// engine) and no build was started.
func (e *Executor) Execute(ctx context.Context, req Request) (*Result, error) {
	if len(req.Operations) == 0 {
		return nil, kernel.NewValidationError("no operations to execute", nil)
	}
	units := req.Units
	if units == "" {
		units = kernel.UnitMM
	}

	buildID := req.BuildID
	if buildID == "" {
		buildID = uuid.New().String()
	}

	engine, err := e.router.Select(req.Engine, req.Hints)
	if err != nil {
		return nil, err
	}
	reason := "hints"
	if req.Engine != "" {
		reason = "explicit"
	}
	e.tel.Metrics.RecordEngineSelection(engine.Name(), reason)

	start := time.Now()
	log := e.log.WithBuildID(buildID).WithEngine(engine.Name())
	log.Infof("starting build with %d operations", len(req.Operations))

	e.tel.Metrics.RecordBuildStarted(engine.Name())
	_ = e.tel.Events.PublishBuildStarted(buildID, engine.Name())
	ctx, buildSpan := e.tel.Tracer.StartBuildSpan(ctx, buildID, engine.Name())

	res := &Result{
		BuildID:     buildID,
		Files:       []string{},
		FailedIndex: -1,
		FinalState:  StateEmpty,
	}

	session, err := engine.NewSession(buildID, units)
	if err != nil {
		res.Engine = engine.Name()
		res.Error = err.Error()
		res.FinalState = StateFailed
		e.finishBuild(res, buildSpan, start, err)
		return res, nil
	}
	defer func() { session.Close() }()

	state := StateEmpty
	var shape kernel.Shape

	for i, op := range req.Operations {
		opStart := time.Now()
		opCtx, opSpan := e.tel.Tracer.StartOperationSpan(ctx, buildID, string(op.Kind), i)

		var out kernel.Shape
		var opErr error
		if !allowed(state, op.Kind) {
			opErr = kernel.NewPreconditionError(preconditionMessage(state, op.Kind), nil).
				WithOp(op.Kind).WithEngine(engine.Name())
		} else {
			out, opErr = session.Apply(opCtx, op, shape)

			// An unsupported kind re-routes the whole remaining pipeline
			// to the fallback engine; only if the fallback cannot perform
			// it either does the error surface.
			if kernel.IsUnsupported(opErr) && engine.Name() != e.router.Fallback().Name() {
				var switched kernel.Session
				switched, engine, shape, opErr = e.switchEngine(session, buildID, units, shape, res, i, op, engine)
				if opErr == nil {
					session = switched
					log = e.log.WithBuildID(buildID).WithEngine(engine.Name())
					out, opErr = session.Apply(opCtx, op, shape)
				}
			}
		}
		dur := time.Since(opStart)

		if opErr != nil {
			res.Operations = append(res.Operations, LogEntry{
				Index:    i,
				Kind:     op.Kind,
				Status:   OpStatusFailed,
				Engine:   engine.Name(),
				Duration: dur,
				Error:    opErr.Error(),
			})
			e.tel.Metrics.RecordOperation(string(op.Kind), string(OpStatusFailed), engine.Name(), dur)
			e.tel.Metrics.RecordError(string(kernel.ClassOf(opErr)))
			_ = e.tel.Events.PublishOperationFailed(buildID, string(op.Kind), engine.Name(), i, opErr.Error())
			telemetry.RecordError(opSpan, opErr)
			opSpan.End()

			log.WithOperation(string(op.Kind), i).WithError(opErr).Error("operation failed, aborting build")
			res.Error = opErr.Error()
			res.FailedIndex = i
			state = StateFailed
			break
		}

		shape = out
		state = next(op.Kind)
		res.Operations = append(res.Operations, LogEntry{
			Index:    i,
			Kind:     op.Kind,
			Status:   OpStatusSuccess,
			Engine:   engine.Name(),
			Duration: dur,
		})
		e.tel.Metrics.RecordOperation(string(op.Kind), string(OpStatusSuccess), engine.Name(), dur)
		_ = e.tel.Events.PublishOperationCompleted(buildID, string(op.Kind), engine.Name(), i, dur)
		telemetry.RecordSuccess(opSpan)
		opSpan.End()
	}

	res.OperationsCount = len(res.Operations)
	res.FinalState = state
	res.Engine = engine.Name()

	if state != StateFailed && !req.SkipExport {
		if err := e.exportAll(ctx, session, shape, buildID, req.Formats, res); err != nil {
			res.Error = err.Error()
		}
	}

	var buildErr error
	if res.Error != "" {
		buildErr = fmt.Errorf("%s", res.Error)
		if state != StateFailed {
			res.FinalState = StateFailed
		}
	}
	e.finishBuild(res, buildSpan, start, buildErr)
	return res, nil
}

// switchEngine moves the build to the fallback engine, carrying the
// working shape across via a snapshot round trip. The old session is
// closed on success.
func (e *Executor) switchEngine(
	old kernel.Session,
	buildID string,
	units kernel.Unit,
	shape kernel.Shape,
	res *Result,
	index int,
	op kernel.Operation,
	from kernel.Kernel,
) (kernel.Session, kernel.Kernel, kernel.Shape, error) {
	fallback := e.router.Fallback()
	replacement, err := fallback.NewSession(buildID, units)
	if err != nil {
		return nil, from, shape, err
	}

	restored := shape
	if shape != nil {
		data, err := old.Snapshot(shape)
		if err != nil {
			replacement.Close()
			return nil, from, shape, err
		}
		restored, err = replacement.Restore(data)
		if err != nil {
			replacement.Close()
			return nil, from, shape, err
		}
	}
	old.Close()

	res.EngineSwitches = append(res.EngineSwitches, EngineSwitch{
		Index: index,
		Kind:  op.Kind,
		From:  from.Name(),
		To:    fallback.Name(),
	})
	e.tel.Metrics.RecordEngineFallback(from.Name(), fallback.Name(), string(op.Kind))
	_ = e.tel.Events.PublishEngineSwitched(buildID, from.Name(), fallback.Name(), string(op.Kind), index)
	e.log.WithBuildID(buildID).WithOperation(string(op.Kind), index).
		Warnf("engine %s does not support %s, switching remaining pipeline to %s",
			from.Name(), op.Kind, fallback.Name())

	return replacement, fallback, restored, nil
}

// exportAll writes the final shape in every requested format.
func (e *Executor) exportAll(
	ctx context.Context,
	session kernel.Session,
	shape kernel.Shape,
	buildID string,
	formats []export.Format,
	res *Result,
) error {
	if len(formats) == 0 {
		formats = export.SupportedFormats
	}
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return kernel.NewKernelError("cannot create output directory", err)
	}

	for _, f := range formats {
		path := filepath.Join(e.outputDir, buildID+"."+f.Ext())
		timer := telemetry.NewTimer()
		_, span := e.tel.Tracer.StartExportSpan(ctx, buildID, string(f))

		err := e.writeExport(ctx, session, shape, f, path)
		if err != nil {
			telemetry.RecordError(span, err)
			span.End()
			return err
		}

		res.Files = append(res.Files, path)
		e.tel.Metrics.RecordExport(string(f), timer.Duration())
		_ = e.tel.Events.PublishExportWritten(buildID, string(f), path)
		telemetry.RecordSuccess(span)
		span.End()
	}
	return nil
}

func (e *Executor) writeExport(ctx context.Context, session kernel.Session, shape kernel.Shape, f export.Format, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return kernel.NewKernelError("cannot create export file", err)
	}
	defer file.Close()
	return session.Export(ctx, shape, f, file)
}

// finishBuild records terminal metrics, events, and the build span.
func (e *Executor) finishBuild(res *Result, span trace.Span, start time.Time, err error) {
	res.Duration = time.Since(start)
	res.Success = err == nil

	log := e.log.WithBuildID(res.BuildID).WithEngine(res.Engine)
	if err != nil {
		e.tel.Metrics.RecordBuildCompleted(string(OpStatusFailed), res.Duration)
		_ = e.tel.Events.PublishBuildFailed(res.BuildID, err.Error(), res.FailedIndex)
		telemetry.RecordError(span, err)
		log.WithError(err).Error("build failed")
	} else {
		e.tel.Metrics.RecordBuildCompleted(string(OpStatusSuccess), res.Duration)
		_ = e.tel.Events.PublishBuildCompleted(res.BuildID, res.OperationsCount, res.Duration)
		telemetry.RecordSuccess(span)
		log.Infof("build completed in %s, %d files written", res.Duration, len(res.Files))
	}
	span.End()
}
