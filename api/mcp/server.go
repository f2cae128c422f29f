// Package mcp exposes the action catalog as MCP tools over stdio, so MCP
// clients can discover and invoke registered actions.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/budu/mu-action/internal/catalog"
	"github.com/budu/mu-action/pkg/action"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "mu-action"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// Server hosts the MCP server over an action invoker.
type Server struct {
	mcpServer *server.MCPServer
	invoker   *catalog.Invoker
}

// toolResult is the structured payload returned for every completed
// invocation, successes and domain failures alike.
type toolResult struct {
	InvocationID string      `json:"invocation_id"`
	Action       string      `json:"action"`
	OK           bool        `json:"ok"`
	Value        any         `json:"value,omitempty"`
	Error        string      `json:"error,omitempty"`
	Meta         action.Meta `json:"meta"`
	DurationMs   float64     `json:"duration_ms"`
}

// New creates an MCP server exposing every action registered in the
// invoker's catalog as a tool.
func New(invoker *catalog.Invoker) *Server {
	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s := &Server{mcpServer: mcpServer, invoker: invoker}
	for _, a := range invoker.Catalog().List() {
		mcpServer.AddTool(toolOf(a), s.handlerFor(a.Name()))
	}
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// toolOf builds the MCP tool schema for one action.
func toolOf(a action.Runnable) mcp.Tool {
	opts := []mcp.ToolOption{}
	if desc := a.Description(); desc != "" {
		opts = append(opts, mcp.WithDescription(desc))
	}
	for _, p := range a.Props() {
		opts = append(opts, propOption(p))
	}
	return mcp.NewTool(a.Name(), opts...)
}

// propOption maps one declared property to an MCP tool parameter. Numeric
// kinds share the JSON number type; durations travel as strings in Go
// duration syntax.
func propOption(p action.Prop) mcp.ToolOption {
	switch p.Kind {
	case action.KindInt, action.KindFloat:
		opts := []mcp.PropertyOption{mcp.Description(string(p.Kind))}
		if !p.HasDefault {
			opts = append(opts, mcp.Required())
		}
		return mcp.WithNumber(p.Name, opts...)
	case action.KindBool:
		opts := []mcp.PropertyOption{mcp.Description(string(p.Kind))}
		if !p.HasDefault {
			opts = append(opts, mcp.Required())
		}
		return mcp.WithBoolean(p.Name, opts...)
	case action.KindMap:
		opts := []mcp.PropertyOption{mcp.Description(string(p.Kind))}
		if !p.HasDefault {
			opts = append(opts, mcp.Required())
		}
		return mcp.WithObject(p.Name, opts...)
	case action.KindSlice:
		opts := []mcp.PropertyOption{mcp.Description(string(p.Kind))}
		if !p.HasDefault {
			opts = append(opts, mcp.Required())
		}
		return mcp.WithArray(p.Name, opts...)
	default:
		desc := string(p.Kind)
		if p.Kind == action.KindDuration {
			desc = "duration string, e.g. \"1m30s\""
		}
		opts := []mcp.PropertyOption{mcp.Description(desc)}
		if !p.HasDefault {
			opts = append(opts, mcp.Required())
		}
		return mcp.WithString(p.Name, opts...)
	}
}

// handlerFor builds the tool handler invoking the named action. Domain
// failures come back as ordinary structured results with ok false; only
// validation errors and programming defects become error results.
func (s *Server) handlerFor(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		inv, err := s.invoker.Invoke(name, request.GetArguments())
		if err != nil {
			if action.IsValidationError(err) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultErrorFromErr("action invocation failed", err), nil
		}

		out := toolResult{
			InvocationID: inv.ID,
			Action:       inv.Action,
			OK:           inv.Outcome.OK,
			Meta:         wireMeta(inv.Outcome.Meta),
			DurationMs:   float64(inv.Duration) / float64(time.Millisecond),
		}
		if inv.Outcome.OK {
			out.Value = inv.Outcome.Value
		} else {
			out.Error = inv.Outcome.Err.Error()
		}

		encoded, err := json.Marshal(out)
		if err != nil {
			return mcp.NewToolResultErrorFromErr("encode result", err), nil
		}
		return mcp.NewToolResultText(string(encoded)), nil
	}
}

// wireMeta prepares result metadata for JSON. The retained signal under
// the signal key does not serialize meaningfully, so it is replaced by its
// payload message.
func wireMeta(m action.Meta) action.Meta {
	out := m.Clone()
	if sig, ok := out[action.MetaSignal].(*action.Signal); ok {
		out[action.MetaSignal] = sig.Payload.Error()
	}
	return out
}
