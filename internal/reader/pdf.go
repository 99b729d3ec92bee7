package reader

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Backend selects how PDF text is recovered.
type Backend string

const (
	// BackendAuto tries glyph geometry first and falls back to content streams.
	BackendAuto Backend = "auto"
	// BackendGeometry rebuilds rows from positioned glyphs (ledongthuc/pdf).
	BackendGeometry Backend = "geometry"
	// BackendPDFCPU decodes text operators from page content streams (pdfcpu).
	BackendPDFCPU Backend = "pdfcpu"
)

// ParseBackend validates a backend name. An empty name means BackendAuto.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BackendAuto, nil
	case BackendAuto, BackendGeometry, BackendPDFCPU:
		return b, nil
	default:
		return "", fmt.Errorf("unknown reader backend %q", s)
	}
}

// Options configures PDF text recovery.
type Options struct {
	Backend      Backend
	RowTolerance float64
}

// DefaultOptions returns sensible defaults for PDF reading.
func DefaultOptions() Options {
	return Options{
		Backend:      BackendAuto,
		RowTolerance: DefaultRowTolerance,
	}
}

// LoadBytes extracts page text from raw PDF bytes.
func LoadBytes(name string, data []byte, opts Options) (Document, error) {
	if len(data) == 0 {
		return Document{}, ErrEmptyInput
	}
	if opts.RowTolerance <= 0 {
		opts.RowTolerance = DefaultRowTolerance
	}

	var (
		pages []Page
		err   error
	)
	switch opts.Backend {
	case BackendGeometry:
		pages, err = geometryPages(data, opts.RowTolerance)
	case BackendPDFCPU:
		pages, err = contentStreamPages(data)
	default:
		pages, err = geometryPages(data, opts.RowTolerance)
		if err != nil || !hasText(pages) {
			pages, err = contentStreamPages(data)
		}
	}
	if err != nil {
		return Document{}, err
	}
	if !hasText(pages) {
		return Document{}, ErrNoText
	}
	return Document{Path: name, Name: filepath.Base(name), Pages: pages}, nil
}

func hasText(pages []Page) bool {
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			return true
		}
	}
	return false
}

// geometryPages reads positioned glyphs per page and rebuilds visual rows.
func geometryPages(data []byte, tolerance float64) (pages []Page, err error) {
	// ledongthuc/pdf panics on some malformed inputs instead of returning errors
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("read pdf geometry: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content := p.Content()
		glyphs := make([]Word, 0, len(content.Text))
		for _, t := range content.Text {
			glyphs = append(glyphs, Word{Text: t.S, X: t.X, Y: t.Y, W: t.W, Size: t.FontSize})
		}

		var words []Word
		rows := GroupRows(glyphs, tolerance)
		for j, row := range rows {
			rows[j] = MergeGlyphs(row)
			words = append(words, rows[j]...)
		}
		pages = append(pages, Page{Number: i, Text: RowsText(rows), Words: words})
	}
	return pages, nil
}

// contentStreamPages decodes text-showing operators from each page's content
// stream using pdfcpu.
func contentStreamPages(data []byte) ([]Page, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	var pages []Page
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil || r == nil {
			continue
		}
		stream, err := io.ReadAll(r)
		if err != nil || len(stream) == 0 {
			continue
		}
		pages = append(pages, Page{Number: pageNr, Text: textFromStream(stream)})
	}
	return pages, nil
}

var (
	pdfStringRe = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)
	tdRe        = regexp.MustCompile(`(-?[\d.]+)\s+(-?[\d.]+)\s+T[dD]$`)
)

// textFromStream walks content stream lines. Tj/TJ show text; T*, ' and a
// vertical Td/TD move start a new line.
func textFromStream(data []byte) string {
	var sb strings.Builder
	newline := func() {
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteByte('\n')
		}
	}

	for _, raw := range bytes.Split(data, []byte{'\n'}) {
		line := string(bytes.TrimSpace(raw))
		switch {
		case line == "":
			continue
		case line == "T*":
			newline()
		case strings.HasSuffix(line, "'") && strings.Contains(line, "("):
			newline()
			writeStrings(&sb, line)
		case strings.HasSuffix(line, "Tj"), strings.HasSuffix(line, "TJ"):
			writeStrings(&sb, line)
		case tdRe.MatchString(line):
			m := tdRe.FindStringSubmatch(line)
			if ty, err := strconv.ParseFloat(m[2], 64); err == nil && ty != 0 {
				newline()
			} else if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		case line == "ET":
			newline()
		}
	}
	return strings.TrimSpace(sb.String())
}

func writeStrings(sb *strings.Builder, line string) {
	for _, m := range pdfStringRe.FindAllStringSubmatch(line, -1) {
		sb.WriteString(decodePDFString(m[1]))
	}
}

// decodePDFString resolves backslash escapes in a literal string. Every byte,
// raw or octal-escaped, is one character of the single-byte PDFDocEncoding,
// which matches Latin-1 for the accented letters these lists use.
func decodePDFString(s string) string {
	if !strings.Contains(s, `\`) && isASCII(s) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			sb.WriteRune(rune(c))
			continue
		}
		i++
		switch e := s[i]; e {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b', 'f':
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			v, _ := strconv.ParseUint(s[i:j], 8, 8)
			sb.WriteRune(rune(v))
			i = j - 1
		default:
			sb.WriteRune(rune(e))
		}
	}
	return sb.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
