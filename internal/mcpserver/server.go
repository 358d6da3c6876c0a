// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes scrap graph tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/scraps/internal/model"
	"github.com/starford/scraps/internal/scrapservice"
	"github.com/starford/scraps/internal/search"
)

const formatURI = "scraps://scrap-format"

// Server wraps the MCP server with scrap tools.
type Server struct {
	mcp *server.MCPServer
	svc *scrapservice.Service
}

// New creates a new MCP server with all scrap tools registered.
func New(svc *scrapservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Scraps",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("This is a Scraps MCP server. Scraps are Markdown notes connected by [[wiki links]]."),
	)

	keyArgs := []mcp.ToolOption{
		mcp.WithString("title", mcp.Required(), mcp.Description("Scrap title")),
		mcp.WithString("ctx", mcp.Description("Optional context (directory) of the scrap")),
	}

	s.mcp.AddTool(mcp.NewTool("get_scrap",
		append([]mcp.ToolOption{mcp.WithDescription("Get the Markdown text of a scrap by title and optional context.")}, keyArgs...)...,
	), s.getScrap)

	s.mcp.AddTool(mcp.NewTool("search_scraps",
		mcp.WithDescription("Fuzzy search scraps by title and content. Returns at most num results, best first."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Whitespace separated keywords")),
		mcp.WithString("logic", mcp.Description("How keywords combine"), mcp.Enum("or", "and")),
		mcp.WithNumber("num", mcp.Description("Maximum number of results (default 100)")),
	), s.searchScraps)

	s.mcp.AddTool(mcp.NewTool("lookup_scrap_links",
		append([]mcp.ToolOption{mcp.WithDescription("List the existing scraps a scrap links to.")}, keyArgs...)...,
	), s.lookupScrapLinks)

	s.mcp.AddTool(mcp.NewTool("lookup_scrap_backlinks",
		append([]mcp.ToolOption{mcp.WithDescription("List the scraps that link to a scrap.")}, keyArgs...)...,
	), s.lookupScrapBacklinks)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List all tags with their backlink counts, most referenced first."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("lookup_tag_backlinks",
		mcp.WithDescription("List the scraps that refer to a tag."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag key, e.g. go or ctx/go")),
	), s.lookupTagBacklinks)

	s.mcp.AddTool(mcp.NewTool("get_scrap_format",
		mcp.WithDescription("Returns the Markdown dialect of scraps: keys, links and tags."),
	), s.getScrapFormat)

	// Resource: scrap format.
	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Scrap Format",
			mcp.WithResourceDescription("Markdown dialect of scraps."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readScrapFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func requireKey(req mcp.CallToolRequest) (model.ScrapKey, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return model.ScrapKey{}, err
	}
	return model.NewKeyWithCtx(model.Title(title), model.Ctx(req.GetString("ctx", ""))), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getScrap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := requireKey(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.GetScrap(ctx, key)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(scrapservice.ScrapJSON{Title: d.Title, Ctx: d.Ctx, MDText: d.MDText})
}

func (s *Server) searchScraps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	logic, err := search.ParseLogic(req.GetString("logic", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	list, err := s.svc.Search(ctx, query, logic, req.GetInt("num", scrapservice.DefaultSearchLimit))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(list)
}

func (s *Server) lookupScrapLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := requireKey(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	list, err := s.svc.Links(ctx, key)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(list)
}

func (s *Server) lookupScrapBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := requireKey(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	list, err := s.svc.Backlinks(ctx, key)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(list)
}

func (s *Server) listTags(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.svc.ListTags(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tags)
}

func (s *Server) lookupTagBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	keys, err := s.svc.TagBacklinks(ctx, model.ParseScrapKey(tag))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(struct {
		Results []scrapservice.KeyJSON `json:"results"`
		Count   int                    `json:"count"`
	}{Results: keys, Count: len(keys)})
}

func (s *Server) getScrapFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ScrapFormat), nil
}

func (s *Server) readScrapFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     ScrapFormat,
		},
	}, nil
}
