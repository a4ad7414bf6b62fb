package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/teamsync/internal/config"
	"github.com/tgienger/teamsync/internal/db"
	"github.com/tgienger/teamsync/internal/logger"
	"github.com/tgienger/teamsync/internal/models"
	"github.com/tgienger/teamsync/internal/state"
	"github.com/tgienger/teamsync/internal/store"
	"github.com/tgienger/teamsync/internal/summary"
	"github.com/tgienger/teamsync/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cfg := config.Load()

	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.BoolVar(versionFlag, "v", false, "Print version and exit (shorthand)")
	dbFlag := flag.String("db", cfg.DBPath, "Path to sqlite database file (default: XDG data dir)")
	modelFlag := flag.String("model", cfg.Model, "Gemini model used for summaries")
	timeoutFlag := flag.Duration("summary-timeout", cfg.SummaryTimeout, "Timeout for one summary request")
	levelFlag := flag.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	filterFlag := flag.String("filter", string(cfg.Filter), "Initial task filter: ALL, MY_TASKS, COMPLETED, PENDING")
	ephemeralFlag := flag.Bool("ephemeral", false, "Keep state in memory only")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("teamsync %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	logPath, err := logFilePath(cfg.LogFile, *dbFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving log file: %v\n", err)
		os.Exit(1)
	}
	logFile, err := tea.LogToFile(logPath, "teamsync")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log := logger.New(logFile, *levelFlag)
	slog.SetDefault(log)

	var kv store.KV
	if *ephemeralFlag {
		kv = store.NewMemoryKV()
	} else {
		database, err := db.New(*dbFlag)
		if err != nil {
			log.Error("unable to open database", slog.String("error", err.Error()))
			fmt.Fprintf(os.Stderr, "Error initializing database: %v\n", err)
			os.Exit(1)
		}
		defer database.Close()
		kv = database
	}

	manager := state.Open(store.New(kv, log), state.WithLogger(log))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	requester := summary.NewRequester(newSummarizer(ctx, cfg.GeminiAPIKey, *modelFlag, log), summary.Config{
		Timeout: *timeoutFlag,
		Logger:  log,
	})

	log.Info("starting teamsync", slog.String("version", version), slog.Bool("ephemeral", *ephemeralFlag))

	// Create and run the application
	app := ui.NewApp(ctx, manager, requester, log, time.Now)
	app.SetFilter(models.ParseFilter(*filterFlag))
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		log.Error("program stopped", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

// newSummarizer returns the Gemini summarizer, or a disabled one when it
// cannot be created.
func newSummarizer(ctx context.Context, apiKey, model string, log *slog.Logger) summary.Summarizer {
	g, err := summary.NewGemini(ctx, apiKey, model)
	if err != nil {
		if errors.Is(err, summary.ErrMissingAPIKey) {
			log.Warn("GEMINI_API_KEY is not set; summaries are disabled")
		} else {
			log.Error("unable to create gemini client", slog.String("error", err.Error()))
		}
		return summary.Disabled{Err: err}
	}
	return g
}

// logFilePath picks the configured log file, or one next to the database
func logFilePath(configured, dbPath string) (string, error) {
	if configured != "" {
		return configured, os.MkdirAll(filepath.Dir(configured), 0755)
	}
	if dbPath != "" {
		dir := filepath.Dir(dbPath)
		return filepath.Join(dir, "teamsync.log"), os.MkdirAll(dir, 0755)
	}
	dir, err := db.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "teamsync.log"), nil
}
