package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCommand(version string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [build-id]",
		Short: "Show build history",
		Long: `List recent builds from the history store, or show one build in
detail: its operation log, exported files, and engine switches.`,
		Example: `  # List the last 20 builds
  forge history

  # Show one build
  forge history 1d2c3b4a-5e6f-7a8b-9c0d-e1f2a3b4c5d6`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx, version, true)
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			if rt.store == nil {
				return fmt.Errorf("build history is disabled in the configuration")
			}

			if len(args) == 1 {
				return showBuild(cmd, rt, args[0])
			}

			builds, err := rt.store.ListBuilds(ctx, limit, 0)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(builds)
			}
			if len(builds) == 0 {
				fmt.Println("No builds recorded")
				return nil
			}
			for _, b := range builds {
				dur := time.Duration(b.Duration).Round(time.Millisecond)
				fmt.Printf("%s  %-10s %-9s %-10s %2d ops  %s\n",
					b.CreatedAt.Format("2006-01-02 15:04:05"),
					b.ProductType, b.Status, b.Engine, b.OperationsCount, dur)
				fmt.Printf("  %s\n", b.ID)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of builds to list")

	return cmd
}

func showBuild(cmd *cobra.Command, rt *runtime, buildID string) error {
	ctx := cmd.Context()

	build, err := rt.store.GetBuild(ctx, buildID)
	if err != nil {
		return err
	}
	ops, err := rt.store.ListOperationsByBuild(ctx, buildID)
	if err != nil {
		return err
	}
	files, err := rt.store.ListFilesByBuild(ctx, buildID)
	if err != nil {
		return err
	}
	switches, err := rt.store.ListSwitchesByBuild(ctx, buildID)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(map[string]interface{}{
			"build":      build,
			"operations": ops,
			"files":      files,
			"switches":   switches,
		})
	}

	fmt.Printf("Build %s\n", build.ID)
	fmt.Printf("  product: %s  engine: %s  status: %s\n", build.ProductType, build.Engine, build.Status)
	fmt.Printf("  started: %s  duration: %s\n",
		build.StartedAt.Format(time.RFC3339), time.Duration(build.Duration).Round(time.Millisecond))
	if build.Error != nil {
		fmt.Printf("  error: %s\n", *build.Error)
	}

	if len(ops) > 0 {
		fmt.Println("  operations:")
		for _, op := range ops {
			line := fmt.Sprintf("    %2d %-18s %-7s %s", op.OpIndex, op.Kind, op.Status, op.Engine)
			if op.Error != nil {
				line += "  " + *op.Error
			}
			fmt.Println(line)
		}
	}
	if len(switches) > 0 {
		fmt.Println("  engine switches:")
		for _, sw := range switches {
			fmt.Printf("    %2d %s: %s -> %s\n", sw.OpIndex, sw.Kind, sw.FromEngine, sw.ToEngine)
		}
	}
	if len(files) > 0 {
		fmt.Println("  files:")
		for _, f := range files {
			fmt.Printf("    %s\n", f.Path)
		}
	}
	return nil
}
