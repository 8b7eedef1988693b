package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/gravitrone/tagdex/internal/api"
	"github.com/gravitrone/tagdex/internal/config"
)

// ResolveServer picks the backend base URL. The --server flag wins, then the
// TAGDEX_SERVER environment variable, then the config file, then the
// compiled-in default.
func ResolveServer(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("TAGDEX_SERVER"); env != "" {
		return env
	}
	if cfg, err := config.Load(); err == nil && cfg.Server != "" {
		return cfg.Server
	}
	return api.DefaultBaseURL
}

// serverFlag reads the root's persistent --server flag if it is wired in.
// Subcommands run standalone in tests, where the flag does not exist.
func serverFlag(c *cobra.Command) string {
	if f := c.Flags().Lookup("server"); f != nil {
		return f.Value.String()
	}
	return ""
}

func newClient(c *cobra.Command) *api.Client {
	return api.NewClient(ResolveServer(serverFlag(c)))
}

// loadOrDefault reads the config file, treating a missing file as defaults.
func loadOrDefault() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}
