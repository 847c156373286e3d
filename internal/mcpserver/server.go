// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the dashboard for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/corner/internal/apperr"
	"github.com/starford/corner/internal/dashboard"
	"github.com/starford/corner/internal/models"
)

const dashboardURI = "corner://dashboard"

// Server wraps the MCP server with dashboard tools.
type Server struct {
	mcp *server.MCPServer
	svc *dashboard.Service
}

// New creates a new MCP server with all dashboard tools registered.
func New(svc *dashboard.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Corner",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_clock",
		mcp.WithDescription("Current time in the dashboard's civil timezone."),
	), s.getClock)

	s.mcp.AddTool(mcp.NewTool("get_countdown",
		mcp.WithDescription("Days, hours, minutes and seconds until the next yearly anniversary."),
	), s.getCountdown)

	s.mcp.AddTool(mcp.NewTool("list_countdowns",
		mcp.WithDescription("List saved countdowns with their remaining time."),
	), s.listCountdowns)

	s.mcp.AddTool(mcp.NewTool("add_countdown",
		mcp.WithDescription("Add a countdown to a calendar date. The target is midnight of that date in the civil timezone."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Event name")),
		mcp.WithString("date", mcp.Required(), mcp.Description("Target date as YYYY-MM-DD")),
	), s.addCountdown)

	s.mcp.AddTool(mcp.NewTool("delete_countdown",
		mcp.WithDescription("Delete a saved countdown."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Countdown id from list_countdowns")),
	), s.deleteCountdown)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List the note log, newest first, with both authors' panels."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Add a note with an optional reply from the other party."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Note text")),
		mcp.WithString("reply", mcp.Description("Optional reply")),
		mcp.WithString("author", mcp.Description(`Author: "kunjus" or "me" (defaults to the session author)`)),
	), s.addNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id from list_notes")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("get_quote",
		mcp.WithDescription("Fetch a motivational quote. Falls back to a bundled set when offline."),
	), s.getQuote)

	// Resource: whole dashboard snapshot.
	s.mcp.AddResource(
		mcp.NewResource(dashboardURI, "Dashboard",
			mcp.WithResourceDescription("Snapshot of the clock, countdowns, notes and playlist."),
			mcp.WithMIMEType("application/json"),
		),
		s.readDashboardResource,
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

// optionalString returns the string argument key, or "" when absent.
func optionalString(req mcp.CallToolRequest, key string) string {
	v, err := req.RequireString(key)
	if err != nil {
		return ""
	}
	return v
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func errorResult(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrValidation) {
		return mcp.NewToolResultError(apperr.Notice(err))
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) getClock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Clock(s.svc.Now()))
}

func (s *Server) getCountdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Countdown(s.svc.Now()))
}

func (s *Server) listCountdowns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows := s.svc.Countdowns(s.svc.Now())
	if len(rows) == 0 {
		return mcp.NewToolResultText("no countdowns saved"), nil
	}
	return jsonResult(rows)
}

func (s *Server) addCountdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c, err := s.svc.AddCountdown(ctx, optionalString(req, "name"), optionalString(req, "date"))
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %s (%s)", dashboard.NoticeCountdownAdded, c.Name, c.ID)), nil
}

func (s *Server) deleteCountdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteCountdown(ctx, id); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(dashboard.NoticeCountdownDeleted), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v := s.svc.Notes()
	if v.Count == 0 {
		return mcp.NewToolResultText("no notes yet"), nil
	}
	return jsonResult(v)
}

func (s *Server) addNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	author := models.Author(optionalString(req, "author"))
	n, err := s.svc.AddNote(ctx, author, optionalString(req, "text"), optionalString(req, "reply"))
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %s", dashboard.NoticeNoteAdded, n.ID)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteNote(ctx, id); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(dashboard.NoticeNoteDeleted), nil
}

func (s *Server) getQuote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.svc.Quote(ctx).Copy), nil
}

func (s *Server) readDashboardResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out, err := json.MarshalIndent(s.svc.Page(s.svc.Now()), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      dashboardURI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}
