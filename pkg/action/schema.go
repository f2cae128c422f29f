package action

import (
	"errors"
	"fmt"
	"time"
)

// Kind is the type constraint of a declared property.
type Kind string

const (
	KindString   Kind = "string"
	KindInt      Kind = "int"
	KindFloat    Kind = "float"
	KindBool     Kind = "bool"
	KindMap      Kind = "map"
	KindSlice    Kind = "slice"
	KindDuration Kind = "duration"
	KindAny      Kind = "any"
)

// Prop is one declared property: a name, a type constraint, an optional
// default and an optional positional marker.
type Prop struct {
	Name         string
	Kind         Kind
	DefaultValue any
	HasDefault   bool
	IsPositional bool
}

// PropOption configures a property declaration.
type PropOption func(*Prop)

// Default declares a default value used when the argument is not supplied.
// The default is validated against the property kind at declaration time.
func Default(v any) PropOption {
	return func(p *Prop) {
		p.DefaultValue = v
		p.HasDefault = true
	}
}

// Positional marks the property as bindable by position via NewPositional.
// Positional order follows declaration order.
func Positional() PropOption {
	return func(p *Prop) {
		p.IsPositional = true
	}
}

// ValidationError reports a construction-time input error. It is fatal:
// validation runs before any hook and before metadata population, so a
// failed validation means the instance is never created.
type ValidationError struct {
	Prop   string
	Kind   Kind
	Reason string // "missing", "unknown" or "type"
	Got    any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch e.Reason {
	case "missing":
		return fmt.Sprintf("property %q is required", e.Prop)
	case "unknown":
		return fmt.Sprintf("unknown property %q", e.Prop)
	default:
		return fmt.Sprintf("property %q has invalid type: expected %s, got %T", e.Prop, e.Kind, e.Got)
	}
}

// IsValidationError reports whether err is (or wraps) a *ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Schema declares the named, typed inputs of an action and validates
// supplied arguments at construction time.
type Schema struct {
	props  []Prop
	byName map[string]int
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{byName: make(map[string]int)}
}

// Declare adds a property to the schema. It returns an error for an empty
// name, a duplicate name, an unknown kind, or a default that does not
// satisfy the declared kind.
func (s *Schema) Declare(name string, kind Kind, opts ...PropOption) error {
	if name == "" {
		return fmt.Errorf("property name cannot be empty")
	}
	if _, exists := s.byName[name]; exists {
		return fmt.Errorf("property %q is already declared", name)
	}
	switch kind {
	case KindString, KindInt, KindFloat, KindBool, KindMap, KindSlice, KindDuration, KindAny:
	default:
		return fmt.Errorf("property %q has unknown kind %q", name, kind)
	}

	p := Prop{Name: name, Kind: kind}
	for _, opt := range opts {
		opt(&p)
	}
	if p.HasDefault {
		coerced, err := coerce(kind, p.DefaultValue)
		if err != nil {
			return fmt.Errorf("default for property %q does not satisfy kind %s: %w", name, kind, err)
		}
		p.DefaultValue = coerced
	}

	s.byName[name] = len(s.props)
	s.props = append(s.props, p)
	return nil
}

// MustDeclare adds a property and panics on error.
func (s *Schema) MustDeclare(name string, kind Kind, opts ...PropOption) {
	if err := s.Declare(name, kind, opts...); err != nil {
		panic(err)
	}
}

// Props returns a copy of the declared properties in declaration order.
func (s *Schema) Props() []Prop {
	out := make([]Prop, len(s.props))
	copy(out, s.props)
	return out
}

// Len returns the number of declared properties.
func (s *Schema) Len() int {
	return len(s.props)
}

// Clone returns an independent copy of the schema.
func (s *Schema) Clone() *Schema {
	c := &Schema{
		props:  make([]Prop, len(s.props)),
		byName: make(map[string]int, len(s.byName)),
	}
	copy(c.props, s.props)
	for k, v := range s.byName {
		c.byName[k] = v
	}
	return c
}

// Validate checks the supplied arguments against the schema, coerces them
// and applies defaults. Unknown keys and missing required properties are
// rejected with a *ValidationError.
func (s *Schema) Validate(args map[string]any) (map[string]any, error) {
	for k := range args {
		if _, known := s.byName[k]; !known {
			return nil, &ValidationError{Prop: k, Reason: "unknown"}
		}
	}

	out := make(map[string]any, len(s.props))
	for _, p := range s.props {
		v, supplied := args[p.Name]
		if !supplied {
			if !p.HasDefault {
				return nil, &ValidationError{Prop: p.Name, Kind: p.Kind, Reason: "missing"}
			}
			out[p.Name] = p.DefaultValue
			continue
		}
		coerced, err := coerce(p.Kind, v)
		if err != nil {
			return nil, &ValidationError{Prop: p.Name, Kind: p.Kind, Reason: "type", Got: v}
		}
		out[p.Name] = coerced
	}
	return out, nil
}

// BindPositional maps positional values onto the positional properties in
// declaration order, producing an arguments mapping for Validate.
func (s *Schema) BindPositional(vals []any) (map[string]any, error) {
	var names []string
	for _, p := range s.props {
		if p.IsPositional {
			names = append(names, p.Name)
		}
	}
	if len(vals) > len(names) {
		return nil, fmt.Errorf("too many positional arguments: got %d, schema declares %d", len(vals), len(names))
	}
	args := make(map[string]any, len(vals))
	for i, v := range vals {
		args[names[i]] = v
	}
	return args, nil
}

// coerce validates v against the kind, widening numeric types where that
// loses no information.
func coerce(kind Kind, v any) (any, error) {
	switch kind {
	case KindAny:
		return v, nil
	case KindString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case KindInt:
		switch n := v.(type) {
		case int:
			return n, nil
		case int8:
			return int(n), nil
		case int16:
			return int(n), nil
		case int32:
			return int(n), nil
		case int64:
			return int(n), nil
		case uint:
			return int(n), nil
		case uint8:
			return int(n), nil
		case uint16:
			return int(n), nil
		case uint32:
			return int(n), nil
		case float64:
			// JSON numbers arrive as float64; accept integral values.
			if n == float64(int(n)) {
				return int(n), nil
			}
		case float32:
			if n == float32(int(n)) {
				return int(n), nil
			}
		}
	case KindFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case int:
			return float64(n), nil
		case int8:
			return float64(n), nil
		case int16:
			return float64(n), nil
		case int32:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case uint:
			return float64(n), nil
		case uint8:
			return float64(n), nil
		case uint16:
			return float64(n), nil
		case uint32:
			return float64(n), nil
		}
	case KindMap:
		if m, ok := v.(map[string]any); ok {
			return m, nil
		}
	case KindSlice:
		switch v.(type) {
		case []any, []string, []int, []float64, []map[string]any:
			return v, nil
		}
	case KindDuration:
		switch d := v.(type) {
		case time.Duration:
			return d, nil
		case string:
			parsed, err := time.ParseDuration(d)
			if err != nil {
				return nil, err
			}
			return parsed, nil
		}
	}
	return nil, fmt.Errorf("value %v (%T) does not satisfy kind %s", v, v, kind)
}
