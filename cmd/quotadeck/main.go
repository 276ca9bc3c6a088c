// Package main is the entry point for the quotadeck TUI.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/quotadeck/quotadeck/internal/app"
	"github.com/quotadeck/quotadeck/internal/config"
	"github.com/quotadeck/quotadeck/internal/models"
	"github.com/quotadeck/quotadeck/internal/services"
	"github.com/quotadeck/quotadeck/internal/ui/section"
	"github.com/quotadeck/quotadeck/internal/ui/tabs/history"
	"github.com/quotadeck/quotadeck/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "quotadeck",
		Short: "Terminal dashboard for provider quota usage",
		Long: `quotadeck is a terminal dashboard that tracks quota usage across
Copilot and Kiro credentials, with paged card grids and a snapshot
history chart.

Configuration comes from the environment or a .env file:

  QUOTADECK_API_URL           Base URL of the quota lookup service (required)
  QUOTADECK_CREDENTIALS_PATH  Credentials JSON file path
  QUOTADECK_DATABASE_PATH     SQLite history database path
  QUOTADECK_REFRESH_INTERVAL  Background refresh interval (default: 5m)`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.Info())
		},
	})

	return root
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(svcManager)

	state := model.GetState()
	tabs := []app.Tab{
		section.New(state, svcManager, models.ProviderCopilot),
		section.New(state, svcManager, models.ProviderKiro),
		history.New(state, svcManager),
	}
	model.SetTabs(tabs)

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
