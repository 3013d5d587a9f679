package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgecad/forgecad/pkg/builder"
	"github.com/forgecad/forgecad/pkg/watch"
)

func newDevCommand(version string) *cobra.Command {
	var (
		engine     string
		formats    []string
		skipExport bool
	)

	cmd := &cobra.Command{
		Use:   "dev <design.json>",
		Short: "Rebuild a design on every change",
		Long: `Watch a design document and rebuild it whenever the file changes.
The first build runs immediately; later builds are debounced so one
save triggers one build.`,
		Example: `  # Rebuild on save
  forge dev bracket.json

  # Iterate on geometry without writing files
  forge dev bracket.json --skip-export`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx, version, true)
			if err != nil {
				return err
			}
			defer rt.close(context.Background())

			exportFormats, err := parseFormats(formats)
			if err != nil {
				return err
			}

			path := args[0]
			w := watch.New(rt.tel)
			err = w.Run(ctx, path, func(ctx context.Context) error {
				d, err := loadDesign(ctx, path)
				if err != nil {
					return err
				}
				if d.Engine == "" {
					d.Engine = engine
				}
				out, err := rt.builder.Build(ctx, builder.Request{
					Design:     d,
					Formats:    exportFormats,
					SkipExport: skipExport,
				})
				if err != nil {
					return err
				}
				printOutcome(out)
				if !out.Success() {
					return fmt.Errorf("build %s failed", out.BuildID())
				}
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&engine, "engine", "", "engine name; empty selects automatically")
	cmd.Flags().StringArrayVar(&formats, "format", nil, "export format (step, stl, obj); repeatable, default all")
	cmd.Flags().BoolVar(&skipExport, "skip-export", false, "run the pipeline without writing artifact files")

	return cmd
}
