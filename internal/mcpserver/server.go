// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes read-only Folio tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/noteservice"
)

// NoteFormatURI identifies the note format resource.
const NoteFormatURI = "folio://note-format"

const defaultSearchLimit = 20

// Server wraps the MCP server with Folio tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all Folio tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Folio",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes in display order (metadata only). "+
			"Optionally filter by tag or by the featured flag."),
		mcp.WithString("tag", mcp.Description("Only notes carrying this exact tag")),
		mcp.WithBoolean("featured", mcp.Description("true for featured notes, false for recent ones")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note's metadata and Markdown body by slug."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Note slug, e.g. training-learning")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through note titles, bodies and tags. Returns snippets."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20, at most 100)")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List every tag with the number of notes carrying it."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("notes_by_tag",
		mcp.WithDescription("List notes carrying the given tag."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Exact tag, e.g. LLM")),
	), s.notesByTag)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the category of every content file."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("get_note_format",
		mcp.WithDescription("Returns the Folio note file format: accepted front-matter "+
			"keys and how missing values are derived."),
	), s.getNoteFormat)

	s.mcp.AddResource(
		mcp.NewResource(NoteFormatURI, "Note Format",
			mcp.WithResourceDescription("Markdown note file format and metadata derivation rules."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := noteservice.ListFilter{Tag: req.GetString("tag", "")}
	if v, ok := req.GetArguments()["featured"].(bool); ok {
		filter.Featured = &v
	}
	items, err := s.svc.ListNotes(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(items)
}

// readNoteResult omits rendered HTML; models read the Markdown.
type readNoteResult struct {
	Metadata models.NoteMetadata `json:"metadata"`
	Content  string              `json:"content"`
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.GetNote(ctx, slug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(readNoteResult{Metadata: note.NoteMetadata, Content: note.Content})
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", defaultSearchLimit)
	results, err := s.svc.FullText(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) listTags(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.svc.Tags(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tags)
}

func (s *Server) notesByTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, err := s.svc.ListNotes(ctx, noteservice.ListFilter{Tag: tag})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(items)
}

func (s *Server) listCategories(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cats, err := s.svc.Categories(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(cats)
}

func (s *Server) getNoteFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormat), nil
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      NoteFormatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormat,
		},
	}, nil
}
