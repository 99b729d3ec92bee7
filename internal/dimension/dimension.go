// Package dimension resolves Fuvest carreira-curso codes ("DDD-DD") into the
// course, degree type and period of a single campus.
//
// The table is read once per Resolver and shared read-only afterwards. A
// failed load is not cached, so the next call reads the resource again.
package dimension

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/akashicode/aprovados/internal/textnorm"
)

//go:embed codigo-dimension.csv
var embeddedCSV []byte

// EmbeddedName is the source name reported for the built-in table.
const EmbeddedName = "embedded:codigo-dimension.csv"

var (
	// ErrResourceMissing is returned when the table resource cannot be opened.
	ErrResourceMissing = errors.New("dimension resource missing")
	// ErrMalformed is returned when the resource is not a valid code table.
	ErrMalformed = errors.New("dimension resource malformed")
)

// LoadError describes a failure to load the dimension table. It is never
// produced by line parsing, so callers can tell misconfiguration apart from
// a document with no candidates.
type LoadError struct {
	Source string
	Line   int
	Err    error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load dimension table %s (line %d): %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("load dimension table %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Row is the course triple a code resolves to.
type Row struct {
	Curso   string `json:"curso" yaml:"curso"`
	Tipo    string `json:"tipo" yaml:"tipo"`
	Periodo string `json:"periodo" yaml:"periodo"`
}

// Table maps normalized codes to rows. It must not be mutated after load.
type Table map[string]Row

// Lookup returns the row for a code, normalizing the code first.
func (t Table) Lookup(code string) (Row, bool) {
	norm, ok := NormalizeCode(code)
	if !ok {
		return Row{}, false
	}
	row, ok := t[norm]
	return row, ok
}

var codeRe = regexp.MustCompile(`^\d{3}-\d{2}$`)

// NormalizeCode turns a raw code token into "DDD-DD". Unicode minus signs are
// rewritten to ASCII and trailing punctuation is dropped. It reports false
// when the result does not have the code shape.
func NormalizeCode(raw string) (string, bool) {
	code := textnorm.NormalizeDashes(raw)
	code = strings.Trim(strings.TrimSpace(code), ".,; ")
	if !codeRe.MatchString(code) {
		return "", false
	}
	return code, true
}

var requiredColumns = []string{"CODIGO", "CURSO", "TIPO", "PERIODO"}

// Parse reads a CSV table with a CODIGO,CURSO,TIPO,PERIODO header. Column
// order is free. Rows with an empty code are skipped; a duplicate code
// replaces the earlier row.
func Parse(r io.Reader, source string) (Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Source: source, Err: fmt.Errorf("%w: empty resource", ErrMalformed)}
		}
		return nil, &LoadError{Source: source, Line: 1, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		cols[h] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, &LoadError{Source: source, Line: 1, Err: fmt.Errorf("%w: missing column %s", ErrMalformed, c)}
		}
	}

	field := func(rec []string, name string) string {
		i := cols[name]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	table := make(Table)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.Line
			}
			return nil, &LoadError{Source: source, Line: line, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
		}
		line, _ := cr.FieldPos(0)

		raw := field(rec, "CODIGO")
		if raw == "" {
			continue
		}
		code, ok := NormalizeCode(raw)
		if !ok {
			return nil, &LoadError{Source: source, Line: line, Err: fmt.Errorf("%w: invalid code %q", ErrMalformed, raw)}
		}
		table[code] = Row{
			Curso:   field(rec, "CURSO"),
			Tipo:    field(rec, "TIPO"),
			Periodo: field(rec, "PERIODO"),
		}
	}
	return table, nil
}

// OpenFunc opens the table resource and names it for error messages.
type OpenFunc func() (io.ReadCloser, string, error)

// EmbeddedSource opens the table compiled into the binary.
func EmbeddedSource() OpenFunc {
	return func() (io.ReadCloser, string, error) {
		return io.NopCloser(bytes.NewReader(embeddedCSV)), EmbeddedName, nil
	}
}

// FileSource opens the table at path.
func FileSource(path string) OpenFunc {
	return func() (io.ReadCloser, string, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, path, err
		}
		return f, path, nil
	}
}

// ReaderSource serves a table from memory, mostly for tests.
func ReaderSource(name string, data []byte) OpenFunc {
	return func() (io.ReadCloser, string, error) {
		return io.NopCloser(bytes.NewReader(data)), name, nil
	}
}

// Resolver lazily loads a Table once and hands the same table to every caller.
type Resolver struct {
	open OpenFunc

	mu    sync.RWMutex
	table Table
	loads int
}

// NewResolver returns a Resolver reading from open. A nil open uses the embedded table.
func NewResolver(open OpenFunc) *Resolver {
	if open == nil {
		open = EmbeddedSource()
	}
	return &Resolver{open: open}
}

// Load returns the cached table, reading the resource on first use.
// Concurrent first callers block until a single load completes.
func (r *Resolver) Load() (Table, error) {
	r.mu.RLock()
	t := r.table
	r.mu.RUnlock()
	if t != nil {
		return t, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.table != nil {
		return r.table, nil
	}

	rc, source, err := r.open()
	if err != nil {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("%w: %w", ErrResourceMissing, err)}
	}
	defer rc.Close()

	table, err := Parse(rc, source)
	if err != nil {
		return nil, err
	}
	r.loads++
	r.table = table
	return table, nil
}

// Loads reports how many times the resource was successfully read.
func (r *Resolver) Loads() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loads
}

// Reset drops the cached table so the next Load reads the resource again.
func (r *Resolver) Reset() {
	r.mu.Lock()
	r.table = nil
	r.mu.Unlock()
}

var defaultResolver = NewResolver(nil)

// Default returns the process-wide resolver backed by the embedded table.
func Default() *Resolver { return defaultResolver }
