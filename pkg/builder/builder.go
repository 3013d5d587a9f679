// Package builder resolves design documents into builds. It is the
// layer between the outer surfaces (CLI, serve mode, watch mode) and
// the execution machinery: a document either carries an explicit
// operation pipeline, names a product template to expand, or selects
// the bicycle frame generator.
package builder

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forgecad/forgecad/pkg/design"
	"github.com/forgecad/forgecad/pkg/export"
	"github.com/forgecad/forgecad/pkg/frame"
	"github.com/forgecad/forgecad/pkg/kernel"
	"github.com/forgecad/forgecad/pkg/pipeline"
	"github.com/forgecad/forgecad/pkg/stores"
	"github.com/forgecad/forgecad/pkg/telemetry"
	"github.com/forgecad/forgecad/pkg/templates"
)

// Request describes one build of a design document.
type Request struct {
	// Design is the decoded document; it must already be validated or
	// come from design.Decode.
	Design *design.Design

	// BuildID keys the build; a fresh UUID is assigned when empty.
	BuildID string

	// Formats are the export formats; nil exports every supported format.
	Formats []export.Format

	// SkipExport runs the build without writing artifact files.
	SkipExport bool
}

// Outcome is the result of a build: exactly one of Pipeline or Frame
// is set, depending on which path the document resolved to.
type Outcome struct {
	ProductType string
	Pipeline    *pipeline.Result
	Frame       *frame.Result
}

// Success reports whether the build completed without failure.
func (o *Outcome) Success() bool {
	if o.Pipeline != nil {
		return o.Pipeline.Success
	}
	if o.Frame != nil {
		return o.Frame.Success
	}
	return false
}

// BuildID returns the build identifier of whichever result is set.
func (o *Outcome) BuildID() string {
	if o.Pipeline != nil {
		return o.Pipeline.BuildID
	}
	if o.Frame != nil {
		return o.Frame.BuildID
	}
	return ""
}

// Result returns the inner result for serialization.
func (o *Outcome) Result() interface{} {
	if o.Pipeline != nil {
		return o.Pipeline
	}
	return o.Frame
}

// Builder turns design documents into finished builds.
type Builder struct {
	exec      *pipeline.Executor
	registry  *templates.Registry
	store     stores.Store
	tel       *telemetry.Telemetry
	log       *telemetry.Logger
	outputDir string
}

// Option configures a Builder.
type Option func(*Builder)

// WithOutputDir sets the artifact directory for both pipeline and
// frame exports.
func WithOutputDir(dir string) Option {
	return func(b *Builder) { b.outputDir = dir }
}

// WithTelemetry wires logging, metrics, and tracing.
func WithTelemetry(tel *telemetry.Telemetry) Option {
	return func(b *Builder) { b.tel = tel }
}

// WithStore records finished builds in the given history store.
func WithStore(s stores.Store) Option {
	return func(b *Builder) { b.store = s }
}

// WithRegistry replaces the built-in template registry.
func WithRegistry(r *templates.Registry) Option {
	return func(b *Builder) { b.registry = r }
}

// New creates a Builder over the given engine router.
func New(router *kernel.Router, opts ...Option) *Builder {
	b := &Builder{
		registry:  templates.NewRegistry(),
		tel:       telemetry.NewNop(),
		outputDir: "output",
	}
	for _, opt := range opts {
		opt(b)
	}
	b.exec = pipeline.New(router,
		pipeline.WithOutputDir(b.outputDir),
		pipeline.WithTelemetry(b.tel))
	b.log = b.tel.Logger.NewComponentLogger("builder")
	return b
}

// Registry exposes the template registry, for surfaces that list or
// expand templates directly.
func (b *Builder) Registry() *templates.Registry { return b.registry }

// Build resolves and executes one design document. The returned error
// covers request-level failures only; operation failures are reported
// inside the Outcome.
func (b *Builder) Build(ctx context.Context, req Request) (*Outcome, error) {
	d := req.Design
	if d == nil {
		return nil, kernel.NewValidationError("design document is required", nil)
	}

	if d.UseDesignLanguage && len(d.Operations) > 0 {
		return b.buildPipeline(ctx, d, d.Operations, d.Units, req)
	}

	if isFrameProduct(d.ProductType) {
		return b.buildFrame(ctx, d, req)
	}

	expanded, err := b.expandTemplate(d)
	if err != nil {
		return nil, err
	}
	if isFrameProduct(expanded.ProductType) {
		return b.buildFrame(ctx, expanded, req)
	}
	return b.buildPipeline(ctx, d, expanded.Operations, expanded.Units, req)
}

// BuildDocument decodes, validates, and builds a raw design document.
func (b *Builder) BuildDocument(ctx context.Context, data []byte, req Request) (*Outcome, error) {
	d, err := design.Decode(data)
	if err != nil {
		return nil, err
	}
	req.Design = d
	return b.Build(ctx, req)
}

func (b *Builder) buildPipeline(ctx context.Context, d *design.Design, ops []kernel.Operation, units string, req Request) (*Outcome, error) {
	u, err := kernel.ParseUnit(units)
	if err != nil {
		return nil, err
	}

	res, err := b.exec.Execute(ctx, pipeline.Request{
		BuildID:    req.BuildID,
		Engine:     d.Engine,
		Hints:      d.JobHints,
		Units:      u,
		Operations: ops,
		Formats:    req.Formats,
		SkipExport: req.SkipExport,
	})
	if err != nil {
		return nil, err
	}

	if b.store != nil {
		if err := stores.SaveResult(ctx, b.store, d.ProductType, string(u), res); err != nil {
			b.log.WithBuildID(res.BuildID).WithError(err).Warnf("failed to record build history")
		}
	}
	return &Outcome{ProductType: d.ProductType, Pipeline: res}, nil
}

func (b *Builder) buildFrame(ctx context.Context, d *design.Design, req Request) (*Outcome, error) {
	buildID := req.BuildID
	if buildID == "" {
		buildID = uuid.NewString()
	}

	start := time.Now()
	f, err := frame.Generate(frame.Params{
		RiderHeight: d.RiderHeight,
		Units:       kernel.Unit(d.Units),
		Material:    frame.Material(d.Material),
	})
	if err != nil {
		return nil, err
	}

	var res *frame.Result
	if req.SkipExport {
		res = &frame.Result{
			Success:     true,
			BuildID:     buildID,
			ProductType: "bicycle_frame",
			RiderHeight: f.RiderHeight,
			Material:    f.Material,
			Dimensions:  f.Dimensions,
			Files:       []string{},
		}
	} else {
		res, err = frame.Export(f, buildID, b.outputDir, req.Formats)
		if err != nil {
			return nil, err
		}
	}

	if b.store != nil {
		if err := b.saveFrameHistory(ctx, d, res, time.Since(start)); err != nil {
			b.log.WithBuildID(buildID).WithError(err).Warnf("failed to record build history")
		}
	}
	return &Outcome{ProductType: d.ProductType, Frame: res}, nil
}

// expandTemplate maps a dimension-style document onto the product
// template named by its product type.
func (b *Builder) expandTemplate(d *design.Design) (*design.Design, error) {
	tpl, ok := b.registry.Get(d.ProductType)
	if !ok {
		return nil, kernel.NewValidationError(
			fmt.Sprintf("unknown product type %q, known products: %v", d.ProductType, b.registry.Names()), nil)
	}
	return tpl.Generate(templateParams(d))
}

func templateParams(d *design.Design) map[string]interface{} {
	params := map[string]interface{}{}
	if d.Length > 0 {
		params["length"] = d.Length
	}
	if d.Width > 0 {
		params["width"] = d.Width
	}
	if d.Height > 0 {
		params["height"] = d.Height
	}
	if d.WallThickness > 0 {
		params["wall_thickness"] = d.WallThickness
	}
	if d.Units != "" {
		params["units"] = d.Units
	}
	if d.RiderHeight > 0 {
		params["rider_height"] = d.RiderHeight
	}
	if d.Material != "" {
		params["material"] = d.Material
	}
	if d.HasFeature("open_top") {
		params["open_top"] = true
	}
	return params
}

func (b *Builder) saveFrameHistory(ctx context.Context, d *design.Design, res *frame.Result, dur time.Duration) error {
	now := time.Now()
	completedAt := now
	build := &stores.Build{
		ID:          res.BuildID,
		ProductType: res.ProductType,
		Engine:      "frame",
		Units:       d.Units,
		Status:      stores.BuildStatusCompleted,
		Duration:    dur.Nanoseconds(),
		StartedAt:   now.Add(-dur),
		CompletedAt: &completedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := b.store.CreateBuild(ctx, build); err != nil {
		return err
	}
	for _, path := range res.Files {
		file := &stores.ExportFile{
			BuildID:   res.BuildID,
			Format:    strings.TrimPrefix(filepath.Ext(path), "."),
			Path:      path,
			CreatedAt: now,
		}
		if err := b.store.AddExportFile(ctx, file); err != nil {
			return err
		}
	}
	return nil
}

func isFrameProduct(productType string) bool {
	return productType == "bicycle" || productType == "bicycle_frame"
}
