package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gravitrone/tagdex/internal/api"
	"github.com/gravitrone/tagdex/internal/cmd"
	"github.com/gravitrone/tagdex/internal/config"
	"github.com/gravitrone/tagdex/internal/ui"
)

func main() {
	var verbose bool
	root := &cobra.Command{
		Use:   "tagdex",
		Short: "Tagdex - image tagging workbench",
		Long:  "Tagdex CLI: search, browse, tag and upload images against a tagger backend.",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
		RunE: func(c *cobra.Command, _ []string) error {
			server, _ := c.Flags().GetString("server")
			return runTUI(server)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("server", "", "backend base URL (overrides config and TAGDEX_SERVER)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(cmd.ExportCmd())
	root.AddCommand(cmd.ImportCmd())
	root.AddCommand(cmd.ConfigCmd())

	if err := root.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func init() {
	// Force truecolor so hex colors render correctly
	// Must be set before any lipgloss style initialization
	os.Setenv("COLORTERM", "truecolor")
}

func runTUI(serverFlag string) error {
	cfg, err := config.Load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		cfg = config.Default()
	}

	client := api.NewClient(cmd.ResolveServer(serverFlag))
	app := ui.NewApp(client, cfg)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
