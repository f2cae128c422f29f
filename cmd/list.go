package cmd

import (
	"fmt"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
)

var listJSONOut bool

// listCmd is the list subcommand.
var listCmd = &cobra.Command{
	Use:   "list <actions.yaml>",
	Short: "List the actions declared in an action file",
	Args:  cobra.ExactArgs(1),
	RunE:  listActions,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listJSONOut, "out-json", false, "print the action list as JSON")
}

func listActions(cmd *cobra.Command, args []string) error {
	iv, err := loadInvoker(args[0])
	if err != nil {
		return err
	}

	actions := iv.Catalog().List()

	if listJSONOut {
		out := make([]map[string]any, 0, len(actions))
		for _, a := range actions {
			props := make([]map[string]any, 0, len(a.Props()))
			for _, p := range a.Props() {
				prop := map[string]any{
					"name":     p.Name,
					"type":     string(p.Kind),
					"required": !p.HasDefault,
				}
				if p.HasDefault {
					prop["default"] = p.DefaultValue
				}
				if p.IsPositional {
					prop["positional"] = true
				}
				props = append(props, prop)
			}
			out = append(out, map[string]any{
				"name":        a.Name(),
				"description": a.Description(),
				"props":       props,
			})
		}
		fmt.Println(oj.JSON(out, 2))
		return nil
	}

	for _, a := range actions {
		if desc := a.Description(); desc != "" {
			fmt.Printf("%s - %s\n", a.Name(), desc)
		} else {
			fmt.Println(a.Name())
		}
		for _, p := range a.Props() {
			line := fmt.Sprintf("  %s (%s)", p.Name, p.Kind)
			if p.HasDefault {
				line += fmt.Sprintf(" [default: %v]", p.DefaultValue)
			} else {
				line += " [required]"
			}
			if p.IsPositional {
				line += " [positional]"
			}
			fmt.Println(line)
		}
	}
	return nil
}
