package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forgecad/forgecad/pkg/kernel"
	"github.com/forgecad/forgecad/pkg/kernels"
)

func newEnginesCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List geometry engines and their capabilities",
		Long: `List the registered geometry engines and the operations each
one supports. Operations an engine cannot perform fall back to the
full-capability engine during a build.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			router, err := kernels.NewRouter()
			if err != nil {
				return err
			}

			engines := router.Registry().All()
			sort.Slice(engines, func(i, j int) bool {
				return engines[i].Name() < engines[j].Name()
			})

			if jsonOutput {
				out := make(map[string][]kernel.OpKind, len(engines))
				for _, eng := range engines {
					out[eng.Name()] = eng.Capabilities().Kinds()
				}
				return printJSON(out)
			}

			fallback := router.Fallback().Name()
			for _, eng := range engines {
				name := eng.Name()
				if name == fallback {
					name += " (fallback)"
				}
				fmt.Printf("%s\n", name)

				var supported, unsupported []string
				for _, kind := range kernel.AllOpKinds {
					if eng.Supports(kind) {
						supported = append(supported, string(kind))
					} else {
						unsupported = append(unsupported, string(kind))
					}
				}
				fmt.Printf("  supports: %s\n", strings.Join(supported, ", "))
				if len(unsupported) > 0 {
					fmt.Printf("  falls back for: %s\n", strings.Join(unsupported, ", "))
				}
			}
			return nil
		},
	}
}
