package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forgecad/forgecad/pkg/design"
)

func newValidateCommand(version string) *cobra.Command {
	var schemaOnly bool

	cmd := &cobra.Command{
		Use:   "validate [design.json]",
		Short: "Validate a design document",
		Long: `Validate a design document without building it.

JSON documents pass a CUE schema check first, then the full typed
validation. Starlark scripts (.star) are evaluated and the resulting
document validated.`,
		Example: `  # Validate a design file
  forge validate bracket.json

  # Validate from stdin
  cat bracket.json | forge validate

  # Structural schema check only
  forge validate --schema-only bracket.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			path := ""
			if len(args) > 0 {
				path = args[0]
			}

			if strings.HasSuffix(path, ".star") {
				d, err := loadDesign(ctx, path)
				if err != nil {
					return err
				}
				return reportValid(d)
			}

			data, err := readDesign(path)
			if err != nil {
				return err
			}

			schemas := design.NewSchemaRegistry()
			if err := schemas.ValidateDesignDocument(data); err != nil {
				return err
			}
			if schemaOnly {
				fmt.Println("Schema check passed")
				return nil
			}

			d, err := design.Decode(data)
			if err != nil {
				return err
			}
			return reportValid(d)
		},
	}

	cmd.Flags().BoolVar(&schemaOnly, "schema-only", false, "stop after the CUE schema check")

	return cmd
}

func reportValid(d *design.Design) error {
	if jsonOutput {
		return printJSON(map[string]interface{}{
			"valid":        true,
			"product_type": d.ProductType,
			"operations":   len(d.Operations),
		})
	}
	if d.UseDesignLanguage {
		fmt.Printf("Valid: %s with %d operations\n", d.ProductType, len(d.Operations))
	} else {
		fmt.Printf("Valid: %s\n", d.ProductType)
	}
	return nil
}
