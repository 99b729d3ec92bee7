package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/akashicode/aprovados/internal/config"
	"github.com/akashicode/aprovados/internal/dimension"
	"github.com/akashicode/aprovados/internal/display"
	"github.com/akashicode/aprovados/internal/extract"
	"github.com/akashicode/aprovados/internal/reader"
	"github.com/akashicode/aprovados/internal/record"
	"github.com/akashicode/aprovados/internal/store"
)

// Output encodings accepted by --format.
const (
	outputJSON = "json"
	outputCSV  = "csv"
	outputYAML = "yaml"
)

// ErrNoDocuments is returned when no argument could be loaded as a document.
var ErrNoDocuments = errors.New("no document could be loaded")

var extractCmd = &cobra.Command{
	Use:   "extract --institution <name> <file|dir>...",
	Short: "Extract candidate records from admission lists",
	Long: `Reads each PDF or text file (directories are expanded to the .pdf and .txt
files they contain), routes it to the extractor of --institution and prints
the deduplicated records of the configured campus.

Files are processed concurrently, up to --workers at a time, and records are
written in argument order. An unknown institution is reported and yields no
records. A Fuvest code table that cannot be loaded fails the command.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

var (
	extractInstitution string
	extractYear        int
	extractFormat      string
	extractOut         string
)

func init() {
	f := extractCmd.Flags()
	f.StringVarP(&extractInstitution, "institution", "i", "", "institution that published the lists (e.g. UFSCar, Fuvest)")
	f.IntVarP(&extractYear, "year", "y", 0, "admission year recorded with the import")
	f.StringVarP(&extractFormat, "format", "f", outputJSON, "output format: json, csv or yaml")
	f.StringVarP(&extractOut, "out", "o", "", "write records to this file instead of stdout")
	f.String("sqlite", "", "also store records in this SQLite database")
	f.IntP("workers", "w", 0, "documents processed concurrently (default 4)")
	f.String("backend", "", "PDF text backend: auto, geometry or pdfcpu")
	f.Float64("row-tolerance", 0, "vertical distance in points that groups glyphs into one row")
	_ = extractCmd.MarkFlagRequired("institution")

	bindFlag("store.sqlite_path", f.Lookup("sqlite"))
	bindFlag("workers", f.Lookup("workers"))
	bindFlag("reader.backend", f.Lookup("backend"))
	bindFlag("reader.row_tolerance", f.Lookup("row-tolerance"))

	rootCmd.AddCommand(extractCmd)
}

// docResult is the outcome of one input file.
type docResult struct {
	path    string
	records []record.Record
	// loadErr is set when the file could not be read; the run goes on.
	loadErr error
	// unknown is set when the institution has no extractor.
	unknown bool
}

func runExtract(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	outFormat := strings.ToLower(strings.TrimSpace(extractFormat))
	if err := checkOutputFormat(outFormat); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	d, err := newDispatcher(cfg)
	if err != nil {
		return err
	}

	display.Header("Aprovados Extract")
	display.Step(1, 3, "Collecting documents...")
	paths, err := expandPaths(args)
	if err != nil {
		return err
	}
	display.StepResult("Documents:", len(paths))

	format, known := d.Lookup(extractInstitution)
	if known {
		display.StepDetail(fmt.Sprintf("institution %q uses the %s format", extractInstitution, format))
	} else {
		display.StepWarn(fmt.Sprintf("institution %q has no extractor; no records will be produced", extractInstitution))
	}

	display.Step(2, 3, fmt.Sprintf("Extracting (%d workers)...", cfg.Workers))
	results, err := extractAll(ctx, d, paths, extractInstitution, cfg.ReaderOptions(), cfg.Workers)
	if err != nil {
		return err
	}

	summary := display.RunSummary{
		Institution: extractInstitution,
		Year:        extractYear,
		Location:    cfg.Location,
		Output:      extractOut,
		SQLitePath:  cfg.Store.SQLitePath,
	}
	var all []record.Record
	loaded := 0
	for _, r := range results {
		ds := display.DocumentSummary{Name: filepath.Base(r.path), Format: string(format), Records: len(r.records), Err: r.loadErr}
		if r.loadErr != nil {
			display.StepWarn(fmt.Sprintf("%s: %v", r.path, r.loadErr))
		} else {
			loaded++
		}
		all = append(all, r.records...)
		summary.Documents = append(summary.Documents, ds)
	}
	if loaded == 0 {
		return ErrNoDocuments
	}

	display.Step(3, 3, "Writing records...")
	if err := emit(outFormat, extractOut, all); err != nil {
		return err
	}
	if extractOut != "" {
		display.FileCreated(extractOut)
	}

	if cfg.Store.SQLitePath != "" && known {
		imp := store.Import{Faculdade: extractInstitution, Ano: extractYear}
		if err := saveResults(ctx, cfg.Store.SQLitePath, imp, results, summary.Documents); err != nil {
			return err
		}
	}

	summary.Elapsed = time.Since(start)
	display.PrintSummary(summary)
	return nil
}

// extractAll loads and extracts every path with at most workers files in
// flight. Results keep the order of paths. Unreadable files and an unknown
// institution are recorded per file; any other extractor failure, such as a
// missing code table, aborts the run.
func extractAll(ctx context.Context, d *extract.Dispatcher, paths []string, institution string, opts reader.Options, workers int) ([]docResult, error) {
	results := make([]docResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := docResult{path: path}
			doc, err := reader.LoadFile(path, opts)
			if err != nil {
				res.loadErr = err
				results[i] = res
				return nil
			}

			recs, err := d.Extract(doc, institution)
			switch {
			case errors.Is(err, extract.ErrUnknownInstitution):
				res.unknown = true
			case err != nil:
				var loadErr *dimension.LoadError
				if errors.As(err, &loadErr) {
					return fmt.Errorf("dimension table: %w", err)
				}
				return fmt.Errorf("extract %s: %w", path, err)
			}
			res.records = recs
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// expandPaths replaces directories by the supported files they contain.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			// unreadable files are reported per document later
			paths = append(paths, arg)
			continue
		}
		files, err := reader.ListDirectory(arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, files...)
	}
	return paths, nil
}

func checkOutputFormat(f string) error {
	switch f {
	case outputJSON, outputCSV, outputYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want json, csv or yaml)", f)
	}
}

func emit(format, path string, records []record.Record) error {
	if path == "" {
		return writeRecords(os.Stdout, format, records)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := writeRecords(f, format, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeRecords encodes records in the given output format.
func writeRecords(w io.Writer, format string, records []record.Record) error {
	if records == nil {
		records = []record.Record{}
	}
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	case outputCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(record.Header); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		for _, r := range records {
			if err := cw.Write(r.Fields()); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	default:
		return checkOutputFormat(format)
	}
	return nil
}

// saveResults stores one import per loaded document and fills in the import
// ids on the matching summaries.
func saveResults(ctx context.Context, path string, imp store.Import, results []docResult, summaries []display.DocumentSummary) error {
	st, err := store.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	for i, r := range results {
		if r.loadErr != nil || r.unknown {
			continue
		}
		imp.Source = r.path
		id, err := st.SaveImport(ctx, imp, r.records)
		if err != nil {
			return fmt.Errorf("save %s: %w", r.path, err)
		}
		summaries[i].ImportID = id
		display.StepDetail(fmt.Sprintf("%s → import %s (%d leads)", filepath.Base(r.path), id, len(r.records)))
	}
	total, err := st.CountLeads(ctx, "")
	if err != nil {
		return err
	}
	display.Info(fmt.Sprintf("%s now holds %d lead(s)", path, total))
	return nil
}
