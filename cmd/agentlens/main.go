// Package main is the entry point for the agentlens TUI.
// It initializes configuration, services, and runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/agentlens-tui/internal/app"
	"github.com/j-veylop/agentlens-tui/internal/config"
	"github.com/j-veylop/agentlens-tui/internal/logger"
	"github.com/j-veylop/agentlens-tui/internal/models"
	"github.com/j-veylop/agentlens-tui/internal/services"
	"github.com/j-veylop/agentlens-tui/internal/ui/tiers/detail"
	"github.com/j-veylop/agentlens-tui/internal/ui/tiers/overview"
	"github.com/j-veylop/agentlens-tui/internal/ui/tiers/patterns"
	"github.com/j-veylop/agentlens-tui/internal/version"
)

func main() {
	var link string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-v", "--version":
			fmt.Println(version.Info())
			os.Exit(0)
		case "-h", "--help":
			printUsage()
			os.Exit(0)
		case "--link":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "Error: --link requires a value")
				os.Exit(1)
			}
			i++
			link = args[i]
		default:
			fmt.Fprintf(os.Stderr, "Error: unknown flag %q\n\n", args[i])
			printUsage()
			os.Exit(1)
		}
	}

	if err := run(link); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run(link string) error {
	// 1. Load configuration from .env files and environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 1b. Send logs to a file; stderr would bleed into the alt screen
	if err := logger.Init(cfg.LogPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}
	defer logger.Close()

	// 2. Initialize the service manager: telemetry client, snapshot cache
	// and the thresholds hot-reload watcher
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	// 3. Build the shared state from the configured scope
	scope := models.Scope{
		Window:  models.TimeRangeFromDays(cfg.DefaultWindow),
		Project: cfg.Project,
	}
	state := app.NewState(scope, svcManager.Thresholds())

	// 4. Create the root model and wire the three drill-down tiers
	model := app.NewModel(svcManager, state)
	commands := model.GetCommands()
	model.SetTiers([]app.Tier{
		overview.New(state, commands),
		patterns.New(state, commands),
		detail.New(state, commands),
	})

	// 5. Restore a shared view link, if one was given
	if link != "" {
		if err := model.OpenLink(link); err != nil {
			return fmt.Errorf("invalid --link value: %w", err)
		}
	}

	// 6. Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`agentlens - call-level observability for LLM agent telemetry

Usage:
  agentlens [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information
  --link <state>  Open a shared view link

Keyboard Shortcuts:
  1-7             Switch story (Latency, Cost, Cache, Routing, Quality, Tokens, Prompt)
  Enter           Drill down into the selection
  Esc             Drill back up
  t               Cycle time window (24h / 7d / 30d / 90d)
  p               Toggle the configured project filter
  /               Filter the pattern table
  s               Cycle sort column
  r               Refresh, bypassing the snapshot cache
  L               Print a shareable link for the current view
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  AGENTLENS_API_URL          Telemetry API base URL (default http://localhost:8787)
  AGENTLENS_THRESHOLDS_PATH  JSON thresholds file, hot-reloaded on change
  AGENTLENS_CACHE_PATH       SQLite snapshot cache path (default in-memory)
  AGENTLENS_LOG_PATH         Log file path (default ~/.config/agentlens/agentlens.log)
  AGENTLENS_PROJECT          Initial project filter
  AGENTLENS_WINDOW_DAYS      Initial window in days: 1, 7, 30 or 90
  AGENTLENS_DESKTOP_NOTIFY   Desktop alert when a story goes critical (default true)

Configuration:
  The application looks for .env files in the current directory and
  ~/.config/agentlens/.env.`)
}
