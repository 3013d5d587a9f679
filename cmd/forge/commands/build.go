package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/forgecad/forgecad/pkg/builder"
	"github.com/forgecad/forgecad/pkg/design"
	"github.com/forgecad/forgecad/pkg/export"
	"github.com/forgecad/forgecad/pkg/templates"
)

func newBuildCommand(version string) *cobra.Command {
	var (
		prompt     string
		engine     string
		buildID    string
		formats    []string
		skipExport bool
	)

	cmd := &cobra.Command{
		Use:   "build [design.json]",
		Short: "Build a design document",
		Long: `Build a design document into a solid model and export it.

The document is read from the given file, or from stdin when no file
is given. Alternatively --prompt matches a plain-text description
against the product templates.`,
		Example: `  # Build a design file
  forge build bracket.json

  # Build from stdin with explicit engine and formats
  cat bracket.json | forge build --engine solid --format stl --format obj

  # Build from a description
  forge build --prompt "a box 100x60x40 mm with rounded corners"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx, version, true)
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			var d *design.Design
			if prompt != "" {
				if len(args) > 0 {
					return fmt.Errorf("cannot combine --prompt with a design file")
				}
				rules := templates.NewRuleEngine(rt.builder.Registry())
				matched, match, err := rules.Process(prompt)
				if err != nil {
					return err
				}
				rt.log.WithProduct(match.Template).Infof("matched template %s (confidence %.2f)", match.Template, match.Confidence)
				d = matched
			} else {
				path := ""
				if len(args) > 0 {
					path = args[0]
				}
				if d, err = loadDesign(ctx, path); err != nil {
					return err
				}
			}

			if d.Engine == "" {
				d.Engine = engine
			}
			if d.Engine == "" {
				d.Engine = rt.cfg.Engine
			}

			exportFormats, err := parseFormats(formats)
			if err != nil {
				return err
			}

			out, err := rt.builder.Build(ctx, builder.Request{
				Design:     d,
				BuildID:    buildID,
				Formats:    exportFormats,
				SkipExport: skipExport,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				if err := printJSON(out.Result()); err != nil {
					return err
				}
			} else {
				printOutcome(out)
			}

			if !out.Success() {
				return fmt.Errorf("build %s failed", out.BuildID())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "", "plain-text product description instead of a design file")
	cmd.Flags().StringVar(&engine, "engine", "", "engine name (solid, workplane, meshkit); empty selects automatically")
	cmd.Flags().StringVar(&buildID, "build-id", "", "explicit build identifier")
	cmd.Flags().StringArrayVar(&formats, "format", nil, "export format (step, stl, obj); repeatable, default all")
	cmd.Flags().BoolVar(&skipExport, "skip-export", false, "run the pipeline without writing artifact files")

	return cmd
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

func printOutcome(out *builder.Outcome) {
	if out.Frame != nil {
		res := out.Frame
		fmt.Printf("Build %s: bicycle frame, %s, seat tube %.0fmm, top tube %.0fmm\n",
			res.BuildID, res.Material, res.Dimensions.SeatTube, res.Dimensions.TopTube)
		for _, f := range res.Files {
			fmt.Printf("  wrote %s\n", f)
		}
		return
	}

	res := out.Pipeline
	if res.Success {
		fmt.Printf("Build %s: %d operations on %s in %s\n",
			res.BuildID, res.OperationsCount, res.Engine, res.Duration.Round(time.Millisecond))
	} else {
		fmt.Printf("Build %s failed at operation %d: %s\n",
			res.BuildID, res.FailedIndex, res.Error)
	}
	for _, sw := range res.EngineSwitches {
		fmt.Printf("  switched %s -> %s for %s\n", sw.From, sw.To, sw.Kind)
	}
	for _, f := range res.Files {
		fmt.Printf("  wrote %s\n", f)
	}
}
