package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/forgecad/forgecad/pkg/builder"
	"github.com/forgecad/forgecad/pkg/config"
	"github.com/forgecad/forgecad/pkg/design"
	"github.com/forgecad/forgecad/pkg/kernel"
	"github.com/forgecad/forgecad/pkg/kernels"
	"github.com/forgecad/forgecad/pkg/stores"
	"github.com/forgecad/forgecad/pkg/telemetry"
)

// runtime holds everything a command needs: loaded config, telemetry,
// the engine router, the builder, and optionally the history store.
type runtime struct {
	cfg     *config.Config
	tel     *telemetry.Telemetry
	router  *kernel.Router
	builder *builder.Builder
	store   stores.Store
	log     *telemetry.Logger
}

// newRuntime loads the config file and wires the command runtime.
// withStore controls whether the history store is opened; read-only
// commands like validate skip it.
func newRuntime(ctx context.Context, version string, withStore bool) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	tel, err := telemetry.NewTelemetry(cfg.Telemetry(version))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	log := tel.Logger.NewComponentLogger("cli")

	if cfg.Metrics.Enabled {
		if err := tel.StartMetricsServer(); err != nil {
			log.WithError(err).Warn("failed to start metrics server")
		}
	}

	router, err := kernels.NewRouter()
	if err != nil {
		return nil, err
	}

	opts := []builder.Option{
		builder.WithOutputDir(cfg.OutputDir),
		builder.WithTelemetry(tel),
	}

	var store stores.Store
	if withStore && cfg.Store.Enabled {
		s, err := stores.NewSQLiteStore(stores.Config{Path: cfg.Store.Path})
		if err != nil {
			return nil, fmt.Errorf("failed to open build history: %w", err)
		}
		if err := s.Init(ctx); err != nil {
			return nil, fmt.Errorf("failed to open build history: %w", err)
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to migrate build history: %w", err)
		}
		store = s
		opts = append(opts, builder.WithStore(s))
	}

	return &runtime{
		cfg:     cfg,
		tel:     tel,
		router:  router,
		builder: builder.New(router, opts...),
		store:   store,
		log:     log,
	}, nil
}

func (r *runtime) close(ctx context.Context) {
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.log.WithError(err).Warn("failed to close build history")
		}
	}
	if err := r.tel.Shutdown(ctx); err != nil {
		r.log.WithError(err).Warn("failed to shut down telemetry")
	}
}

// readDesign reads a design document from the given path, or from
// stdin when the path is empty or "-".
func readDesign(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read design from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read design file: %w", err)
	}
	return data, nil
}

// loadDesign reads and decodes a design document. Files ending in
// .star are evaluated as Starlark design scripts first.
func loadDesign(ctx context.Context, path string) (*design.Design, error) {
	data, err := readDesign(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".star") {
		eval := design.NewStarlarkEvaluator(0)
		return eval.EvaluateDesign(ctx, string(data), nil)
	}
	return design.Decode(data)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
