package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akashicode/aprovados/internal/config"
	"github.com/akashicode/aprovados/internal/extract"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the supported list formats and the institution names routed to them",
	Long: `Prints every institution alias the extract command accepts, grouped by list
format. Names are matched case-insensitively after whitespace is collapsed, and
accents are ignored when no exact alias matches. Aliases from the --aliases
file are included.`,
	Args: cobra.NoArgs,
	RunE: runFormats,
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}

func runFormats(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	d, err := newDispatcher(cfg)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	var current extract.Format
	for _, a := range d.Aliases() {
		if a.Format != current {
			if current != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%s\n", a.Format)
			current = a.Format
		}
		fmt.Fprintf(w, "  %s\n", a.Name)
	}
	return nil
}
