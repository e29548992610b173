package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/meishi/internal/profile"
	"github.com/kalambet/meishi/internal/render"
	"github.com/kalambet/meishi/internal/theme"
)

// PublicPages reads published profiles by slug.
type PublicPages interface {
	PublicPage(ctx context.Context, slug string) (profile.Profile, error)
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Pages         PublicPages
	PublicBaseURL string
}

func (d MCPDeps) httpDeps() Deps {
	return Deps{PublicBaseURL: d.PublicBaseURL}
}

// NewMCPServer creates an MCP server exposing the template catalog and
// published pages.
func NewMCPServer(deps MCPDeps, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"meishi",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("meishi: introduction pages. List layouts and themes, read and render published pages."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("list_layouts",
			mcp.WithDescription("List the ten page layouts with the sections each one renders."),
		),
		mcpListLayouts,
	)

	s.AddTool(
		mcp.NewTool("list_themes",
			mcp.WithDescription("List the ten style presets."),
		),
		mcpListThemes,
	)

	s.AddTool(
		mcp.NewTool("get_public_profile",
			mcp.WithDescription("Return a published page as JSON."),
			mcp.WithString("slug", mcp.Description("Public page slug"), mcp.Required()),
		),
		mcpGetPublicProfile(deps),
	)

	s.AddTool(
		mcp.NewTool("render_public_page",
			mcp.WithDescription("Render a published page to HTML, optionally with another layout or theme."),
			mcp.WithString("slug", mcp.Description("Public page slug"), mcp.Required()),
			mcp.WithString("layout", mcp.Description("Layout id L01..L10 (default: the page's own)")),
			mcp.WithString("theme", mcp.Description("Theme id T01..T10 (default: the page's own)")),
		),
		mcpRenderPublicPage(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"meishi://layouts",
			"Layouts",
			mcp.WithResourceDescription("Layout catalog as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceLayouts,
	)

	return s
}

func mcpListLayouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcpJSON(layoutCatalog()), nil
}

func mcpListThemes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcpJSON(theme.All()), nil
}

func mcpGetPublicProfile(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		slug, err := req.RequireString("slug")
		if err != nil {
			return mcpError("slug is required"), nil
		}
		p, err := deps.Pages.PublicPage(ctx, slug)
		if errors.Is(err, profile.ErrNotFound) {
			return mcpError(fmt.Sprintf("page %q not found", slug)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load page: %v", err)), nil
		}
		return mcpJSON(deps.httpDeps().publicPage(p)), nil
	}
}

func mcpRenderPublicPage(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		slug, err := req.RequireString("slug")
		if err != nil {
			return mcpError("slug is required"), nil
		}
		p, err := deps.Pages.PublicPage(ctx, slug)
		if errors.Is(err, profile.ErrNotFound) {
			return mcpError(fmt.Sprintf("page %q not found", slug)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load page: %v", err)), nil
		}

		var buf bytes.Buffer
		in := render.Input{
			Profile:  p,
			Document: p.Document,
			LayoutID: req.GetString("layout", ""),
			ThemeID:  req.GetString("theme", ""),
			ShareURL: deps.httpDeps().shareURL(p.Slug),
		}
		if err := render.Write(&buf, in); err != nil {
			return mcpError(fmt.Sprintf("render failed: %v", err)), nil
		}
		return mcpText(buf.String()), nil
	}
}

func mcpResourceLayouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	b, err := json.Marshal(layoutCatalog())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal layouts: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}

func mcpJSON(v any) *mcp.CallToolResult {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err))
	}
	return mcpText(string(b))
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
