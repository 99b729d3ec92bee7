// Package extract recovers candidate records from the text of admission-result
// lists. Each institution publishes its own layout, so every format has its
// own line scanner with an isolated grammar; a Dispatcher picks the scanner
// from the institution name.
//
// Scanners never fail on a line they do not understand: unmatched or
// malformed lines are skipped, which lowers recall but never aborts the
// document. The only error an extractor returns is a failure to load a
// resource it depends on.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/akashicode/aprovados/internal/reader"
	"github.com/akashicode/aprovados/internal/record"
	"github.com/akashicode/aprovados/internal/textnorm"
)

// Extractor turns a document into deduplicated records in first-seen order.
type Extractor interface {
	Extract(doc reader.Document) ([]record.Record, error)
}

// Format names one of the supported list layouts.
type Format string

const (
	FormatUFSCar  Format = "ufscar"
	FormatFuvest  Format = "fuvest"
	FormatProvao  Format = "provao"
	FormatIFSP    Format = "ifsp"
	FormatEnemUSP Format = "enem-usp"
)

// Formats lists every supported format.
var Formats = []Format{FormatUFSCar, FormatFuvest, FormatProvao, FormatIFSP, FormatEnemUSP}

// ErrUnknownFormat is returned when a format name is not one of Formats.
var ErrUnknownFormat = errors.New("unknown format")

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// lineKind classifies a cleaned line for a format's scanner.
type lineKind int

const (
	lineOther lineKind = iota
	lineSkip
	lineHeader
	lineCandidate
	lineName
	lineLocation
)

// cleanLines returns the document lines cleaned by textnorm.Clean, with empty
// lines dropped.
func cleanLines(doc reader.Document) []string {
	raw := doc.Lines()
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if c := textnorm.Clean(l); c != "" {
			lines = append(lines, c)
		}
	}
	return lines
}

// courseContext is the course announced by the most recent header line.
type courseContext struct {
	curso   string
	tipo    string
	periodo string
}

func (c courseContext) withName(nome string) record.Record {
	return record.Record{Nome: nome, Curso: c.curso, Tipo: c.tipo, Periodo: c.periodo}
}

// group returns the cleaned named submatch of re in m.
func group(re *regexp.Regexp, m []string, name string) string {
	i := re.SubexpIndex(name)
	if i < 0 || i >= len(m) {
		return ""
	}
	return textnorm.Clean(m[i])
}
