package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/forgecad/forgecad/pkg/templates"
)

func newTemplatesCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "templates [name]",
		Short: "List product templates",
		Long: `List the built-in product templates, or show the parameters of
one template.`,
		Example: `  # List all templates
  forge templates

  # Show the parameters of the box template
  forge templates box`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := templates.NewRegistry()

			if len(args) == 1 {
				return showTemplate(registry, args[0])
			}

			if jsonOutput {
				return printJSON(registry.Names())
			}
			for _, name := range registry.Names() {
				tpl, _ := registry.Get(name)
				fmt.Printf("%-12s %s\n", name, tpl.Category)
			}
			return nil
		},
	}
}

func showTemplate(registry *templates.Registry, name string) error {
	tpl, ok := registry.Get(name)
	if !ok {
		return fmt.Errorf("unknown template %q, known templates: %v", name, registry.Names())
	}

	if jsonOutput {
		return printJSON(map[string]interface{}{
			"name":       tpl.Name,
			"category":   tpl.Category,
			"parameters": tpl.Parameters,
			"defaults":   tpl.Defaults,
		})
	}

	fmt.Printf("%s (%s)\n", tpl.Name, tpl.Category)

	params := make([]string, 0, len(tpl.Parameters))
	for pname := range tpl.Parameters {
		params = append(params, pname)
	}
	sort.Strings(params)

	for _, pname := range params {
		p := tpl.Parameters[pname]
		line := fmt.Sprintf("  %-16s %s", pname, p.Description)
		if p.Min != nil && p.Max != nil {
			line += fmt.Sprintf(" [%g-%g%s]", *p.Min, *p.Max, p.Unit)
		}
		if p.Required {
			line += " (required)"
		} else if def, ok := tpl.Defaults[pname]; ok {
			line += fmt.Sprintf(" (default %v)", def)
		}
		fmt.Println(line)
	}
	return nil
}
