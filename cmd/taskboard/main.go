// Command taskboard is an interactive terminal task board with reminders.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/notexe/taskboard/internal/board"
	"github.com/notexe/taskboard/internal/config"
	"github.com/notexe/taskboard/internal/kvstore"
	"github.com/notexe/taskboard/internal/reminder"
	"github.com/notexe/taskboard/internal/repl"
	"github.com/notexe/taskboard/internal/scheduler"
	"github.com/notexe/taskboard/internal/ui"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Apply CLI flag overrides
	if *dbPath != "" {
		cfg.Store.Driver = kvstore.DriverSQLite
		cfg.Store.Path = *dbPath
	}
	if *noColor {
		cfg.UI.ColoredOutput = false
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	spinner := ui.NewSpinner(os.Stderr, cfg.UI.ColoredOutput)
	spinner.Start(fmt.Sprintf("Opening %s store...", cfg.Store.Driver))

	if cfg.Store.Driver == kvstore.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
			spinner.StopWithError("Failed to create data directory")
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	store, err := kvstore.Open(ctx, cfg.Store)
	if err != nil {
		spinner.StopWithError("Failed to open store")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()
	spinner.Stop()

	b, err := board.Open(ctx, store,
		board.WithLogger(logger),
		board.WithPolicy(reminder.Policy{
			GraceWindow: cfg.Scheduler.GraceWindow,
			CatchUp:     cfg.Scheduler.CatchUp,
		}),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading board: %v\n", err)
		os.Exit(1)
	}

	formatter := ui.NewFormatter(cfg.UI.ColoredOutput, cfg.UI.ChartWidth, cfg.UI.WordWrap)

	replInstance, err := repl.NewREPL(b, formatter, cfg.UI.ColoredOutput, storeName(cfg.Store))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating REPL: %v\n", err)
		os.Exit(1)
	}

	terminal := scheduler.NewWriterNotifier(replInstance.Stdout())
	terminal.Render = formatter.FormatReminderAlert
	notifiers := scheduler.MultiNotifier{terminal}

	if cfg.Telegram.Enabled {
		tg, err := scheduler.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			// Terminal alerts still work without Telegram.
			logger.Warn("telegram notifier disabled", "error", err)
		} else {
			notifiers = append(notifiers, tg)
		}
	}

	stopLoop := scheduler.New(b, notifiers, cfg.Scheduler.Interval, logger).Start(ctx)
	defer stopLoop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
		replInstance.Stop()
	}()

	if err := replInstance.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func storeName(cfg config.StoreConfig) string {
	switch cfg.Driver {
	case kvstore.DriverSQLite:
		return "sqlite: " + cfg.Path
	default:
		return cfg.Driver
	}
}
