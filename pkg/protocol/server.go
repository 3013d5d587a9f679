package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/forgecad/forgecad/pkg/builder"
	"github.com/forgecad/forgecad/pkg/design"
	"github.com/forgecad/forgecad/pkg/export"
	"github.com/forgecad/forgecad/pkg/kernel"
	"github.com/forgecad/forgecad/pkg/telemetry"
)

// ServerConfig configures a protocol server.
type ServerConfig struct {
	Version string
	Engines []string
}

// Server answers protocol commands on an input/output stream pair,
// usually stdin and stdout.
type Server struct {
	encoder      *Encoder
	decoder      *Decoder
	builder      *builder.Builder
	config       ServerConfig
	log          *telemetry.Logger
	commandCount int
}

// NewServer creates a protocol server over the given streams.
func NewServer(in io.Reader, out io.Writer, b *builder.Builder, cfg ServerConfig, tel *telemetry.Telemetry) *Server {
	if tel == nil {
		tel = telemetry.NewNop()
	}
	return &Server{
		encoder: NewEncoder(out),
		decoder: NewDecoder(in),
		builder: b,
		config:  cfg,
		log:     tel.Logger.NewComponentLogger("serve"),
	}
}

// Run announces readiness, then answers commands until the input
// stream closes or the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	ready := &ReadyMessage{
		Version:   s.config.Version,
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
		PID:       os.Getpid(),
		Engines:   s.config.Engines,
		Templates: s.builder.Registry().Names(),
	}
	if err := s.encoder.EncodeReady(ready); err != nil {
		return fmt.Errorf("failed to send ready: %w", err)
	}

	reason := "stdin_closed"
	exitCode := 0

	for {
		if ctx.Err() != nil {
			reason = "canceled"
			break
		}

		cmd, err := s.decoder.DecodeCommand()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			s.log.WithError(err).Warnf("rejected message")
			s.sendError("", kernel.ErrorClassConfiguration, err.Error())
			continue
		}

		s.commandCount++
		s.handleCommand(ctx, cmd)
	}

	return s.encoder.EncodeExit(&ExitMessage{
		Reason:        reason,
		ExitCode:      exitCode,
		CommandsTotal: s.commandCount,
	})
}

func (s *Server) handleCommand(ctx context.Context, cmd *CommandMessage) {
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cmd.Timeout)*time.Second)
		defer cancel()
	}

	start := time.Now()
	var result interface{}
	var err error

	switch cmd.Type {
	case CommandTypeBuild:
		result, err = s.handleBuild(ctx, cmd)
	case CommandTypeValidate:
		result, err = s.handleValidate(cmd)
	case CommandTypeFrame:
		result, err = s.handleFrame(ctx, cmd)
	case CommandTypeTemplate:
		result, err = s.handleTemplate(ctx, cmd)
	default:
		err = kernel.NewConfigurationError(fmt.Sprintf("unknown command type %q", cmd.Type), nil)
	}

	if err != nil {
		s.log.WithError(err).Warnf("command %s failed", cmd.ID)
		s.sendError(cmd.ID, kernel.ClassOf(err), err.Error())
		return
	}

	resultBytes, err := json.Marshal(result)
	if err != nil {
		s.sendError(cmd.ID, kernel.ErrorClassKernel, fmt.Sprintf("failed to marshal result: %v", err))
		return
	}
	s.send(func() error {
		return s.encoder.EncodeDone(&DoneMessage{
			CommandID: cmd.ID,
			Result:    resultBytes,
			Duration:  time.Since(start).Seconds(),
		})
	})
}

func (s *Server) handleBuild(ctx context.Context, cmd *CommandMessage) (interface{}, error) {
	var params BuildParams
	if err := ParseParams(cmd.Params, &params); err != nil {
		return nil, kernel.NewValidationError(err.Error(), nil)
	}
	if len(params.Design) == 0 {
		return nil, kernel.NewValidationError("design document is required", nil)
	}

	formats, err := parseFormats(params.Formats)
	if err != nil {
		return nil, err
	}

	s.sendEvent(cmd.ID, "build started")
	out, err := s.builder.BuildDocument(ctx, params.Design, builder.Request{
		BuildID:    params.BuildID,
		Formats:    formats,
		SkipExport: params.SkipExport,
	})
	if err != nil {
		return nil, err
	}
	return out.Result(), nil
}

func (s *Server) handleValidate(cmd *CommandMessage) (interface{}, error) {
	var params ValidateParams
	if err := ParseParams(cmd.Params, &params); err != nil {
		return nil, kernel.NewValidationError(err.Error(), nil)
	}

	d, err := design.Decode(params.Design)
	if err != nil {
		return nil, err
	}
	return &ValidateResult{
		Valid:       true,
		ProductType: d.ProductType,
		Operations:  len(d.Operations),
	}, nil
}

func (s *Server) handleFrame(ctx context.Context, cmd *CommandMessage) (interface{}, error) {
	var params FrameParams
	if err := ParseParams(cmd.Params, &params); err != nil {
		return nil, kernel.NewValidationError(err.Error(), nil)
	}

	formats, err := parseFormats(params.Formats)
	if err != nil {
		return nil, err
	}

	d := &design.Design{
		ProductType: "bicycle_frame",
		Units:       params.Units,
		RiderHeight: params.RiderHeight,
		Material:    params.Material,
	}
	out, err := s.builder.Build(ctx, builder.Request{
		Design:  d,
		BuildID: params.BuildID,
		Formats: formats,
	})
	if err != nil {
		return nil, err
	}
	return out.Result(), nil
}

func (s *Server) handleTemplate(ctx context.Context, cmd *CommandMessage) (interface{}, error) {
	var params TemplateParams
	if err := ParseParams(cmd.Params, &params); err != nil {
		return nil, kernel.NewValidationError(err.Error(), nil)
	}
	if params.Template == "" {
		return nil, kernel.NewValidationError("template name is required", nil)
	}

	formats, err := parseFormats(params.Formats)
	if err != nil {
		return nil, err
	}

	d, err := s.builder.Registry().Generate(params.Template, params.Params)
	if err != nil {
		return nil, err
	}

	s.sendEvent(cmd.ID, fmt.Sprintf("template %s expanded", params.Template))
	out, err := s.builder.Build(ctx, builder.Request{
		Design:     d,
		BuildID:    params.BuildID,
		Formats:    formats,
		SkipExport: params.SkipExport,
	})
	if err != nil {
		return nil, err
	}
	return out.Result(), nil
}

func (s *Server) sendEvent(commandID, message string) {
	s.send(func() error {
		return s.encoder.EncodeEvent(&EventMessage{
			CommandID: commandID,
			Level:     "info",
			Message:   message,
		})
	})
}

func (s *Server) sendError(commandID string, class kernel.ErrorClass, message string) {
	s.send(func() error {
		return s.encoder.EncodeError(&ErrorMessage{
			CommandID: commandID,
			Code:      string(class),
			Message:   message,
		})
	})
}

func (s *Server) send(f func() error) {
	if err := f(); err != nil {
		s.log.WithError(err).Error("failed to write protocol message")
	}
}

func parseFormats(names []string) ([]export.Format, error) {
	if len(names) == 0 {
		return nil, nil
	}
	formats := make([]export.Format, 0, len(names))
	for _, name := range names {
		f, err := export.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}
