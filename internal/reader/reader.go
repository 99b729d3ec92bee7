package reader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned when a file format is not supported.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmptyInput is returned when a source has no bytes at all.
	ErrEmptyInput = errors.New("empty input")
	// ErrNoText is returned when a PDF yields no text on any page.
	ErrNoText = errors.New("no text extracted")
)

// Word is a positioned token. X grows to the right and Y grows upwards, as in
// PDF user space.
type Word struct {
	Text string
	X    float64
	Y    float64
	W    float64
	Size float64
}

// Page is the text of one page. Text holds newline-separated lines; Words,
// when present, carries the geometry the lines were built from.
type Page struct {
	Number int
	Text   string
	Words  []Word
}

// Document is a loaded admission list.
type Document struct {
	// Path is the source file path
	Path string
	// Name is the base filename
	Name string
	// Pages in document order
	Pages []Page
}

// Lines returns every line of every page in page/line order. Pages without
// text but with words are rebuilt into rows first.
func (d Document) Lines() []string {
	var lines []string
	for _, p := range d.Pages {
		text := p.Text
		if text == "" && len(p.Words) > 0 {
			text = RowsText(GroupRows(p.Words, DefaultRowTolerance))
		}
		if text == "" {
			continue
		}
		text = strings.ReplaceAll(text, "\r\n", "\n")
		lines = append(lines, strings.Split(text, "\n")...)
	}
	return lines
}

// Tokens flattens the document into whitespace-separated tokens, dropping
// lines for which skip returns true. A nil skip keeps every line.
func (d Document) Tokens(skip func(line string) bool) []string {
	var tokens []string
	for _, line := range d.Lines() {
		if skip != nil && skip(line) {
			continue
		}
		tokens = append(tokens, strings.Fields(line)...)
	}
	return tokens
}

// LoadText builds a document from already extracted text. Form feeds split pages.
func LoadText(name, text string) Document {
	doc := Document{Path: name, Name: filepath.Base(name)}
	for i, chunk := range strings.Split(text, "\f") {
		doc.Pages = append(doc.Pages, Page{Number: i + 1, Text: chunk})
	}
	return doc
}

// ListDirectory returns the supported files of a directory, sorted by name.
func ListDirectory(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %q: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !Supported(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}

// Supported reports whether LoadFile can read the file at path.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".pdf":
		return true
	default:
		return false
	}
}

// LoadFile reads a single document from the given path.
func LoadFile(path string, opts Options) (Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt":
		return loadTextFile(path)
	case ".pdf":
		data, err := os.ReadFile(path)
		if err != nil {
			return Document{}, fmt.Errorf("read file %q: %w", path, err)
		}
		doc, err := LoadBytes(path, data, opts)
		if err != nil {
			return Document{}, fmt.Errorf("extract PDF text from %q: %w", path, err)
		}
		return doc, nil
	default:
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func loadTextFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read file %q: %w", path, err)
	}
	return LoadText(path, string(data)), nil
}
