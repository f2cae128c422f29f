package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/budu/mu-action/internal/catalog"
	"github.com/budu/mu-action/internal/scriptaction"
	"github.com/budu/mu-action/pkg/action"
)

var (
	runArgs     []string
	runArgsJSON string
	runExtract  string
	runJSONOut  string
)

// runCmd is the run subcommand.
var runCmd = &cobra.Command{
	Use:   "run <actions.yaml> <action> [value...]",
	Short: "Run one action from an action file",
	Long: `Run one action declared in a YAML action file. Extra positional
values bind to the action's positional properties in declaration order;
named arguments are supplied with --arg or --args-json.`,
	Example: `  # Positional arguments
  mu-action run actions.yaml greet Alice

  # Named arguments; values are parsed as YAML scalars
  mu-action run actions.yaml resize --arg width=800 --arg height=600

  # Arguments as a JSON object
  mu-action run actions.yaml resize --args-json '{"width": 800, "height": 600}'

  # Extract part of the result value with a JSONPath expression
  mu-action run actions.yaml fetch --arg url=... --extract '$.items[0].id'`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAction,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringArrayVarP(&runArgs, "arg", "a", nil, "named argument, format: name=value (repeatable)")
	runCmd.Flags().StringVar(&runArgsJSON, "args-json", "", "arguments as a JSON object")
	runCmd.Flags().StringVarP(&runExtract, "extract", "e", "", "JSONPath expression applied to the result value")
	runCmd.Flags().StringVar(&runJSONOut, "out-json", "", "write the full invocation result as JSON to a file")
}

func runAction(cmd *cobra.Command, args []string) error {
	path, name := args[0], args[1]

	iv, err := loadInvoker(path)
	if err != nil {
		return err
	}

	a, err := iv.Catalog().Get(name)
	if err != nil {
		return err
	}

	callArgs, err := collectArgs(a, args[2:])
	if err != nil {
		return err
	}

	inv, err := iv.Invoke(name, callArgs)
	if err != nil {
		return err
	}

	if runJSONOut != "" {
		if err := writeInvocationJSON(runJSONOut, inv); err != nil {
			return fmt.Errorf("failed to write JSON output: %w", err)
		}
	}

	if !inv.Outcome.OK {
		fmt.Fprintf(os.Stderr, "failed: %v\n", inv.Outcome.Err)
		if reason, ok := inv.Outcome.Meta["reason"]; ok {
			fmt.Fprintf(os.Stderr, "reason: %v\n", reason)
		}
		os.Exit(1)
	}

	value := inv.Outcome.Value
	if runExtract != "" {
		value, err = extractValue(value, runExtract)
		if err != nil {
			return err
		}
	}
	fmt.Println(oj.JSON(value, 2))
	return nil
}

// loadInvoker builds a catalog invoker from one action file.
func loadInvoker(path string) (*catalog.Invoker, error) {
	file, err := scriptaction.Load(path)
	if err != nil {
		return nil, err
	}
	actions, err := scriptaction.BuildAll(file)
	if err != nil {
		return nil, err
	}

	c := catalog.New()
	for _, a := range actions {
		if err := c.Register(a); err != nil {
			return nil, err
		}
	}
	return catalog.NewInvoker(c, nil), nil
}

// collectArgs merges --args-json, --arg pairs and positional values into
// one argument mapping, later sources overriding earlier ones.
func collectArgs(a action.Runnable, positional []string) (map[string]any, error) {
	out := map[string]any{}

	if runArgsJSON != "" {
		if err := json.Unmarshal([]byte(runArgsJSON), &out); err != nil {
			return nil, fmt.Errorf("invalid --args-json: %w", err)
		}
	}

	for _, pair := range runArgs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid --arg %q, expected name=value", pair)
		}
		out[parts[0]] = parseArgValue(parts[1])
	}

	if len(positional) > 0 {
		var names []string
		for _, p := range a.Props() {
			if p.IsPositional {
				names = append(names, p.Name)
			}
		}
		if len(positional) > len(names) {
			return nil, fmt.Errorf("too many positional values: got %d, action %q declares %d", len(positional), a.Name(), len(names))
		}
		for i, v := range positional {
			out[names[i]] = parseArgValue(v)
		}
	}

	return out, nil
}

// parseArgValue parses one command-line value as a YAML scalar, so "8"
// arrives as an int and "true" as a bool while unquoted text stays a
// string.
func parseArgValue(s string) any {
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	if v == nil {
		return s
	}
	return v
}

// extractValue applies a JSONPath expression to the result value.
func extractValue(value any, expr string) (any, error) {
	path, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONPath expression %q: %w", expr, err)
	}
	results := path.Get(value)
	switch len(results) {
	case 0:
		return nil, fmt.Errorf("JSONPath %q matched nothing", expr)
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// writeInvocationJSON writes the full invocation record to a file as
// indented JSON.
func writeInvocationJSON(path string, inv *catalog.Invocation) error {
	meta := inv.Outcome.Meta.Clone()
	if sig, ok := meta[action.MetaSignal].(*action.Signal); ok {
		meta[action.MetaSignal] = sig.Payload.Error()
	}

	out := map[string]any{
		"invocation_id": inv.ID,
		"action":        inv.Action,
		"ok":            inv.Outcome.OK,
		"meta":          map[string]any(meta),
		"duration_ms":   float64(inv.Duration) / float64(time.Millisecond),
	}
	if inv.Outcome.OK {
		out["value"] = inv.Outcome.Value
	} else {
		out["error"] = inv.Outcome.Err.Error()
	}
	return os.WriteFile(path, []byte(oj.JSON(out, 2)+"\n"), 0644)
}
