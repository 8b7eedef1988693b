package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// ExportCmd returns the `tagdex export` command.
func ExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump the library as JSON",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			client := newClient(c)
			log.Debug("exporting library", "server", client.BaseURL())

			data, err := client.ExportLibraryRaw()
			if err != nil {
				return fmt.Errorf("export library: %w", err)
			}

			if out == "" {
				_, err := c.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write dump: %w", err)
			}
			fmt.Fprintf(c.OutOrStdout(), "exported library to %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the dump to a file instead of stdout")
	return cmd
}

// ImportCmd returns the `tagdex import` command.
func ImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Upload a library dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			client := newClient(c)
			log.Debug("importing library", "file", args[0], "server", client.BaseURL())

			result, err := client.ImportLibraryFile(args[0])
			if err != nil {
				return fmt.Errorf("import library: %w", err)
			}

			message := result.Message
			if message == "" {
				message = "library imported"
			}
			fmt.Fprintln(c.OutOrStdout(), message)
			return nil
		},
	}
}
