// Package scriptaction builds runnable actions from YAML declarations
// whose hooks and core body are JavaScript snippets executed on the Goja
// engine.
package scriptaction

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/budu/mu-action/pkg/action"
)

// PropSpec declares one typed property of a scripted action.
type PropSpec struct {
	Name       string `yaml:"name" json:"name"`
	Type       string `yaml:"type,omitempty" json:"type,omitempty"` // defaults to any
	Default    any    `yaml:"default,omitempty" json:"default,omitempty"`
	Positional bool   `yaml:"positional,omitempty" json:"positional,omitempty"`
}

// Spec declares one scripted action: typed props, JS hook snippets and the
// JS core body. The body's completion value becomes the success value.
type Spec struct {
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Props       []PropSpec `yaml:"props,omitempty" json:"props,omitempty"`
	Before      []string   `yaml:"before,omitempty" json:"before,omitempty"`
	Around      []string   `yaml:"around,omitempty" json:"around,omitempty"`
	After       []string   `yaml:"after,omitempty" json:"after,omitempty"`
	Body        string     `yaml:"body" json:"body"`
}

// File is a YAML document declaring a set of scripted actions.
type File struct {
	Actions []Spec `yaml:"actions" json:"actions"`
}

// Parse parses a YAML document of scripted action declarations.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse action file: %w", err)
	}
	if len(f.Actions) == 0 {
		return nil, fmt.Errorf("action file declares no actions")
	}
	return &f, nil
}

// Load reads and parses a YAML action file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read action file: %w", err)
	}
	return Parse(data)
}

// kindOf maps a declared type string to a schema kind.
func kindOf(t string) (action.Kind, error) {
	switch t {
	case "", "any":
		return action.KindAny, nil
	case "string":
		return action.KindString, nil
	case "int", "integer":
		return action.KindInt, nil
	case "float", "number":
		return action.KindFloat, nil
	case "bool", "boolean":
		return action.KindBool, nil
	case "map", "object":
		return action.KindMap, nil
	case "slice", "array":
		return action.KindSlice, nil
	case "duration":
		return action.KindDuration, nil
	default:
		return "", fmt.Errorf("unknown property type %q", t)
	}
}

// propOptions builds the declaration options for one prop spec.
func propOptions(p PropSpec) []action.PropOption {
	var opts []action.PropOption
	if p.Default != nil {
		opts = append(opts, action.Default(p.Default))
	}
	if p.Positional {
		opts = append(opts, action.Positional())
	}
	return opts
}
