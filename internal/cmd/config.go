package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gravitrone/tagdex/internal/api"
	"github.com/gravitrone/tagdex/internal/config"
)

// ConfigCmd returns the `tagdex config` command.
func ConfigCmd() *cobra.Command {
	var server string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the saved configuration",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := loadOrDefault()
			if err != nil {
				return err
			}

			if server != "" {
				cfg.Server = server
				if err := cfg.Save(); err != nil {
					return fmt.Errorf("save config: %w", err)
				}
				fmt.Fprintf(c.OutOrStdout(), "server set to %s\n", server)
				fmt.Fprintf(c.OutOrStdout(), "config saved to %s\n", config.Path())
				return nil
			}

			out := c.OutOrStdout()
			fmt.Fprintf(out, "config file:  %s\n", config.Path())
			fmt.Fprintf(out, "server:       %s\n", serverOrDefault(cfg))
			fmt.Fprintf(out, "quiet period: %s\n", cfg.QuietPeriod())
			fmt.Fprintf(out, "page size:    %d\n", cfg.Page())
			return nil
		},
	}
	// Shadows the root's persistent --server on purpose: here the URL is the
	// value to persist, not a per-invocation override.
	cmd.Flags().StringVar(&server, "server", "", "set the backend base URL")
	return cmd
}

func serverOrDefault(cfg *config.Config) string {
	if cfg.Server != "" {
		return cfg.Server
	}
	return api.DefaultBaseURL
}
