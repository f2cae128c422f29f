package rest

import (
	"github.com/budu/mu-action/pkg/action"
)

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// PropInfo describes one declared property of an action.
type PropInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Required   bool   `json:"required"`
	Default    any    `json:"default,omitempty"`
	Positional bool   `json:"positional,omitempty"`
}

// ActionSummary describes one registered action.
type ActionSummary struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Props       []PropInfo `json:"props"`
}

// RunResponse is returned by POST /api/v1/actions/:name/run.
type RunResponse struct {
	InvocationID string      `json:"invocation_id"`
	Action       string      `json:"action"`
	OK           bool        `json:"ok"`
	Value        any         `json:"value,omitempty"`
	Error        string      `json:"error,omitempty"`
	Meta         action.Meta `json:"meta"`
	DurationMs   float64     `json:"duration_ms"`
}

// summarize builds the wire description of a runnable action.
func summarize(a action.Runnable) ActionSummary {
	props := a.Props()
	infos := make([]PropInfo, 0, len(props))
	for _, p := range props {
		info := PropInfo{
			Name:       p.Name,
			Type:       string(p.Kind),
			Required:   !p.HasDefault,
			Positional: p.IsPositional,
		}
		if p.HasDefault {
			info.Default = p.DefaultValue
		}
		infos = append(infos, info)
	}
	return ActionSummary{
		Name:        a.Name(),
		Description: a.Description(),
		Props:       infos,
	}
}

// wireMeta prepares result metadata for JSON: the retained signal is
// replaced by its payload message, since the signal value itself does not
// serialize meaningfully.
func wireMeta(m action.Meta) action.Meta {
	out := m.Clone()
	if sig, ok := out[action.MetaSignal].(*action.Signal); ok {
		out[action.MetaSignal] = sig.Payload.Error()
	}
	return out
}
