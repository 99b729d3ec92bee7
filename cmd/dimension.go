package cmd

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/akashicode/aprovados/internal/config"
	"github.com/akashicode/aprovados/internal/dimension"
	"github.com/akashicode/aprovados/internal/display"
)

var dimensionRows bool

var dimensionCmd = &cobra.Command{
	Use:   "dimension",
	Short: "Validate and print the Fuvest course code table",
	Long: `Loads the code table used to resolve Fuvest carreira-curso codes, either the
embedded one or the CSV given by --dimension, and reports how many codes it
holds. With --rows every code is printed with its course, degree type and
period.`,
	Args: cobra.NoArgs,
	RunE: runDimension,
}

func init() {
	dimensionCmd.Flags().BoolVar(&dimensionRows, "rows", false, "print every code")
	rootCmd.AddCommand(dimensionCmd)
}

func runDimension(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	source := cfg.Dimension.Path
	if source == "" {
		source = dimension.EmbeddedName
	}
	table, err := newResolver(cfg).Load()
	if err != nil {
		var loadErr *dimension.LoadError
		if errors.As(err, &loadErr) {
			switch {
			case errors.Is(err, dimension.ErrResourceMissing):
				display.ErrorMsg(fmt.Sprintf("code table %s not found", loadErr.Source))
			case loadErr.Line > 0:
				display.ErrorMsg(fmt.Sprintf("code table %s is malformed at line %d", loadErr.Source, loadErr.Line))
			default:
				display.ErrorMsg(fmt.Sprintf("code table %s is malformed", loadErr.Source))
			}
		}
		return err
	}

	display.Header("Fuvest Code Table")
	display.KeyValue("Source", source, display.White)
	display.KeyValue("Codes", len(table), display.BrightGreen)
	display.Success("code table is valid")

	if !dimensionRows {
		return nil
	}
	codes := make([]string, 0, len(table))
	for code := range table {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	w := cmd.OutOrStdout()
	for _, code := range codes {
		row := table[code]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", code, row.Curso, row.Tipo, row.Periodo)
	}
	return nil
}
