package commands

import (
	"github.com/spf13/cobra"

	"github.com/forgecad/forgecad/pkg/builder"
	"github.com/forgecad/forgecad/pkg/design"
)

func newFrameCommand(version string) *cobra.Command {
	var (
		height   float64
		units    string
		material string
		buildID  string
		formats  []string
	)

	cmd := &cobra.Command{
		Use:   "frame",
		Short: "Generate a bicycle frame",
		Long: `Generate a parametric bicycle frame sized for a rider and export
it. Frame geometry is derived from the rider height; the material
selects tube diameters.`,
		Example: `  # Frame for a 180cm rider in steel
  forge frame --height 180 --units cm --material steel

  # Export STL only
  forge frame --height 1750 --format stl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx, version, true)
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			exportFormats, err := parseFormats(formats)
			if err != nil {
				return err
			}

			out, err := rt.builder.Build(ctx, builder.Request{
				Design: &design.Design{
					ProductType: "bicycle_frame",
					Units:       units,
					RiderHeight: height,
					Material:    material,
				},
				BuildID: buildID,
				Formats: exportFormats,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(out.Result())
			}
			printOutcome(out)
			return nil
		},
	}

	cmd.Flags().Float64Var(&height, "height", 0, "rider height in the given units")
	cmd.Flags().StringVar(&units, "units", "cm", "units of the rider height (mm, cm, inches)")
	cmd.Flags().StringVar(&material, "material", "aluminum", "frame material (aluminum, steel, carbon)")
	cmd.Flags().StringVar(&buildID, "build-id", "", "explicit build identifier")
	cmd.Flags().StringArrayVar(&formats, "format", nil, "export format (step, stl, obj); repeatable, default all")
	_ = cmd.MarkFlagRequired("height")

	return cmd
}
