// Package mcptools exposes board operations as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/notexe/taskboard/internal/board"
	"github.com/notexe/taskboard/internal/core"
	"github.com/notexe/taskboard/internal/query"
	"github.com/notexe/taskboard/internal/stats"
)

const (
	serverName    = "taskboard"
	serverVersion = "1.0.0"
)

// Server is the MCP server for the task board.
type Server struct {
	mcpServer *server.MCPServer
	board     *board.Board
}

// NewServer creates a new MCP server over b.
func NewServer(b *board.Board) *Server {
	s := &Server{
		board: b,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	// Tasks
	s.mcpServer.AddTool(
		mcp.NewTool("add_task",
			mcp.WithDescription("Add a new active task"),
			mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
			mcp.WithString("description", mcp.Description("Optional description")),
			mcp.WithString("due_date", mcp.Description("Optional due date, YYYY-MM-DD")),
			mcp.WithString("priority", mcp.Description("Priority: low, medium, high (default: medium)")),
			mcp.WithString("category", mcp.Description("Category (default: General)")),
		),
		s.handleAddTask,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_task_completed",
			mcp.WithDescription("Mark a task completed, or move it back to the active list"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Task ID")),
			mcp.WithBoolean("completed", mcp.Description("true to complete, false to reopen (default: true)")),
		),
		s.handleSetTaskCompleted,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_task",
			mcp.WithDescription("Delete a task permanently"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Task ID")),
		),
		s.handleDeleteTask,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_task",
			mcp.WithDescription("Get one task by ID, active or completed"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Task ID")),
		),
		s.handleGetTask,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_tasks",
			mcp.WithDescription("List active tasks, optionally filtered by text, category and priority"),
			mcp.WithString("search", mcp.Description("Case-insensitive text matched against title and description")),
			mcp.WithString("category", mcp.Description("Exact category, or All")),
			mcp.WithString("priority", mcp.Description("Exact priority, or All")),
		),
		s.handleListTasks,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_completed_tasks",
			mcp.WithDescription("List completed tasks in completion order"),
		),
		s.handleListCompletedTasks,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_categories",
			mcp.WithDescription("List task categories in first-seen order, starting with All"),
		),
		s.handleListCategories,
	)

	// Reminders
	s.mcpServer.AddTool(
		mcp.NewTool("add_reminder",
			mcp.WithDescription("Add a reminder that fires at a date and time"),
			mcp.WithString("title", mcp.Required(), mcp.Description("Reminder title")),
			mcp.WithString("date", mcp.Required(), mcp.Description("Date, YYYY-MM-DD")),
			mcp.WithString("time", mcp.Required(), mcp.Description("Time, HH:MM or HH:MM:SS (local)")),
			mcp.WithString("recurrence", mcp.Description("Optional RFC 5545 RRULE, e.g. FREQ=WEEKLY;BYDAY=MO")),
		),
		s.handleAddReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleDeleteReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List reminders in fire-time order"),
		),
		s.handleListReminders,
	)

	// Stats
	s.mcpServer.AddTool(
		mcp.NewTool("dashboard",
			mcp.WithDescription("Progress summary, weekly and category completion histograms, and reminders per day for the next 7 days"),
		),
		s.handleDashboard,
	)
}

func (s *Server) handleAddTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}

	t, err := s.board.AddTask(ctx, core.NewTask{
		Title:       title,
		Description: req.GetString("description", ""),
		DueDate:     req.GetString("due_date", ""),
		Priority:    req.GetString("priority", ""),
		Category:    req.GetString("category", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add task: %v", err)), nil
	}

	return jsonResult(t)
}

func (s *Server) handleSetTaskCompleted(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireID(req)
	if errResult != nil {
		return errResult, nil
	}

	t, err := s.board.SetCompleted(ctx, id, req.GetBool("completed", true))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update task: %v", err)), nil
	}

	return jsonResult(t)
}

func (s *Server) handleDeleteTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireID(req)
	if errResult != nil {
		return errResult, nil
	}

	if err := s.board.DeleteTask(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete task: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Task %d deleted.", id)), nil
}

func (s *Server) handleGetTask(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireID(req)
	if errResult != nil {
		return errResult, nil
	}

	t, err := s.board.Task(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(t)
}

func (s *Server) handleListTasks(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tasks := s.board.Query(query.Criteria{
		Search:   req.GetString("search", ""),
		Category: req.GetString("category", query.All),
		Priority: req.GetString("priority", query.All),
	})

	if len(tasks) == 0 {
		return mcp.NewToolResultText("No tasks found."), nil
	}

	return jsonResult(tasks)
}

func (s *Server) handleListCompletedTasks(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	completed := s.board.Snapshot().Completed
	if len(completed) == 0 {
		return mcp.NewToolResultText("No completed tasks."), nil
	}

	return jsonResult(completed)
}

func (s *Server) handleListCategories(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.board.Snapshot().Categories)
}

func (s *Server) handleAddReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := core.NewReminder{
		Title:      req.GetString("title", ""),
		Date:       req.GetString("date", ""),
		Time:       req.GetString("time", ""),
		Recurrence: req.GetString("recurrence", ""),
	}
	if in.Title == "" || in.Date == "" || in.Time == "" {
		return mcp.NewToolResultError("title, date and time are required"), nil
	}

	r, err := s.board.AddReminder(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add reminder: %v", err)), nil
	}

	return jsonResult(r)
}

func (s *Server) handleDeleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireID(req)
	if errResult != nil {
		return errResult, nil
	}

	if err := s.board.DeleteReminder(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete reminder: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reminder %d deleted.", id)), nil
}

func (s *Server) handleListReminders(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reminders := s.board.Snapshot().Reminders
	if len(reminders) == 0 {
		return mcp.NewToolResultText("No upcoming reminders."), nil
	}

	return jsonResult(reminders)
}

// Dashboard is the dashboard tool's JSON payload.
type Dashboard struct {
	Progress   stats.Progress `json:"progress"`
	Weekly     stats.Series   `json:"weekly"`
	ByCategory stats.Series   `json:"byCategory"`
	Upcoming   stats.Series   `json:"upcoming"`
	Overdue    []int64        `json:"overdue"`
}

func (s *Server) handleDashboard(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := s.board.Refresh()

	return jsonResult(Dashboard{
		Progress:   snap.Progress,
		Weekly:     snap.Weekly,
		ByCategory: snap.ByCategory,
		Upcoming:   snap.Upcoming,
		Overdue:    snap.Overdue,
	})
}

func requireID(req mcp.CallToolRequest) (int64, *mcp.CallToolResult) {
	idFloat := req.GetFloat("id", -1)
	if idFloat < 0 {
		return 0, mcp.NewToolResultError("id is required and must be a positive number")
	}
	return int64(idFloat), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(output)), nil
}
