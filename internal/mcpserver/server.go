// Package mcpserver exposes the component store to LLM clients over the
// Model Context Protocol (stdio transport).
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pthm/wcx"
	"github.com/pthm/wcx/internal/storage"
)

// Server wraps the MCP server with component tools.
type Server struct {
	mcp  *server.MCPServer
	repo storage.Repository
}

// New creates an MCP server with all tools registered.
func New(repo storage.Repository, version string) *Server {
	s := &Server{repo: repo}

	s.mcp = server.NewMCPServer(
		"wcx",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_components",
		mcp.WithDescription("List stored web components with their version and revision id."),
	), s.listComponents)

	s.mcp.AddTool(mcp.NewTool("get_component",
		mcp.WithDescription("Read a stored component record as JSON."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Custom element name, e.g. data-table")),
	), s.getComponent)

	s.mcp.AddTool(mcp.NewTool("export_component",
		mcp.WithDescription("Export a stored component as a self-registering script or a JSON document with usage notes."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Custom element name")),
		mcp.WithString("format", mcp.Enum("script", "json"), mcp.Description("Artifact format (default script)")),
	), s.exportComponent)

	s.mcp.AddTool(mcp.NewTool("save_component",
		mcp.WithDescription("Validate and store a component record. "+
			"Read the record format first via the wcx://record-format resource."),
		mcp.WithString("record", mcp.Required(), mcp.Description("Component record as JSON")),
	), s.saveComponent)

	s.mcp.AddResource(
		mcp.NewResource("wcx://record-format", "Component Record Format",
			mcp.WithResourceDescription("Fields and behavior language of a component record."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRecordFormat,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listComponents(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("no components stored"), nil
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rec, res := s.load(ctx, req)
	if res != nil {
		return res, nil
	}
	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) exportComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format, err := wcx.ParseFormat(req.GetString("format", string(wcx.FormatScript)))
	if err != nil || format == wcx.FormatCloud {
		return mcp.NewToolResultError("format must be script or json"), nil
	}
	rec, res := s.load(ctx, req)
	if res != nil {
		return res, nil
	}

	art := &wcx.Artifact{Format: format, Record: rec}
	if format == wcx.FormatScript {
		if art.Script, err = wcx.GenerateScript(rec); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	} else {
		art.Document = wcx.GenerateDocument(rec)
	}
	body, err := art.Bytes()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

func (s *Server) saveComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("record")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := wcx.ParseRecord([]byte(text))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := wcx.Check(rec); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry, err := s.repo.Save(ctx, rec)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s@%s (%s)", entry.Name, entry.Version, entry.ID)), nil
}

func (s *Server) readRecordFormat(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "wcx://record-format",
			MIMEType: "text/markdown",
			Text:     RecordFormat,
		},
	}, nil
}

func (s *Server) load(ctx context.Context, req mcp.CallToolRequest) (*wcx.Record, *mcp.CallToolResult) {
	name, err := req.RequireString("name")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	rec, _, err := s.repo.Get(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, mcp.NewToolResultError(fmt.Sprintf("not found: %s", name))
	}
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	return rec, nil
}
