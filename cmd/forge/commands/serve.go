package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/forgecad/forgecad/pkg/kernels"
	"github.com/forgecad/forgecad/pkg/protocol"
)

func newServeCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Answer build commands over stdin/stdout",
		Long: `Speak the JSON-line protocol on stdin and stdout: one message per
line, commands in, results out. External tools launch forge once and
drive builds through the stream instead of re-launching per build.

The server announces READY with its engines and templates, answers
build, validate, frame, and template commands, and sends EXIT when
stdin closes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx, version, true)
			if err != nil {
				return err
			}
			defer rt.close(context.Background())

			srv := protocol.NewServer(os.Stdin, os.Stdout, rt.builder, protocol.ServerConfig{
				Version: version,
				Engines: []string{kernels.EngineSolid, kernels.EngineWorkplane, kernels.EngineMeshkit},
			}, rt.tel)
			return srv.Run(ctx)
		},
	}
}
