// Command mcp-taskboard provides an MCP server for the task board.
//
// It shares the board's store with the interactive taskboard command and runs
// the reminder loop while serving, so reminders fire while an MCP client is
// connected.
//
// Usage:
//
//	./mcp-taskboard          # Start MCP server (stdio)
//	./mcp-taskboard --help   # Show help
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/notexe/taskboard/internal/board"
	"github.com/notexe/taskboard/internal/config"
	"github.com/notexe/taskboard/internal/kvstore"
	"github.com/notexe/taskboard/internal/mcptools"
	"github.com/notexe/taskboard/internal/reminder"
	"github.com/notexe/taskboard/internal/scheduler"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}

	configPath := os.Getenv(config.EnvPrefix + "CONFIG")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Store.Driver == kvstore.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create data directory: %v\n", err)
			os.Exit(1)
		}
	}

	store, err := kvstore.Open(ctx, cfg.Store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	b, err := board.Open(ctx, store,
		board.WithLogger(logger),
		board.WithPolicy(reminder.Policy{
			GraceWindow: cfg.Scheduler.GraceWindow,
			CatchUp:     cfg.Scheduler.CatchUp,
		}),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load board: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol.
	notifiers := scheduler.MultiNotifier{scheduler.NewWriterNotifier(os.Stderr)}
	if cfg.Telegram.Enabled {
		tg, err := scheduler.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			logger.Warn("telegram notifier disabled", "error", err)
		} else {
			notifiers = append(notifiers, tg)
		}
	}

	stopLoop := scheduler.New(b, notifiers, cfg.Scheduler.Interval, logger).Start(ctx)
	defer stopLoop()

	s := mcptools.NewServer(b)

	if err := server.ServeStdio(s.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`MCP Taskboard Server - Tasks and reminders via MCP protocol

USAGE:
    mcp-taskboard          Start MCP server (communicates via stdio)
    mcp-taskboard --help   Show this help

ENVIRONMENT:
    TASKBOARD_CONFIG        Path to configuration file
                            Default: ~/.taskboard/config.yaml
    TASKBOARD_STORE__PATH   SQLite database file
                            Default: ~/.taskboard/taskboard.db
    TELEGRAM_BOT_TOKEN      Also deliver reminders to Telegram
    TELEGRAM_CHAT_ID        Telegram chat to deliver to

TOOLS:
    add_task              Add a task (title, description, due_date, priority, category)
    set_task_completed    Complete or reopen a task
    delete_task           Delete a task permanently
    get_task              Get a task by ID
    list_tasks            List active tasks (search, category, priority filters)
    list_completed_tasks  List completed tasks
    list_categories       List categories
    add_reminder          Add a reminder (title, date, time, recurrence)
    delete_reminder       Delete a reminder
    list_reminders        List reminders in fire-time order
    dashboard             Progress and chart data

CONFIGURATION:
    Add to your MCP client configuration:
    {
      "mcpServers": {
        "taskboard": {
          "command": "/path/to/mcp-taskboard",
          "args": []
        }
      }
    }`)
}
