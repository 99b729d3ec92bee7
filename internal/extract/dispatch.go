package extract

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/akashicode/aprovados/internal/dimension"
	"github.com/akashicode/aprovados/internal/reader"
	"github.com/akashicode/aprovados/internal/record"
	"github.com/akashicode/aprovados/internal/textnorm"
)

// ErrUnknownInstitution is returned, together with no records, when an
// institution name matches no alias. No format is guessed.
var ErrUnknownInstitution = errors.New("unknown institution")

// builtinAliases maps normalized institution names to formats.
var builtinAliases = map[string]Format{
	"ufscar":                             FormatUFSCar,
	"universidade federal de são carlos": FormatUFSCar,
	"universidade federal de sao carlos": FormatUFSCar,
	"fuvest":                             FormatFuvest,
	"fuvest lista de espera":             FormatFuvest,
	"usp fuvest":                         FormatFuvest,
	"provão paulista":                    FormatProvao,
	"provao paulista":                    FormatProvao,
	"provão paulista (fuvest)":           FormatProvao,
	"provao paulista (fuvest)":           FormatProvao,
	"provão paulista lista de espera":    FormatProvao,
	"provao paulista lista de espera":    FormatProvao,
	"ifsp":                               FormatIFSP,
	"ifsp são carlos":                    FormatIFSP,
	"ifsp sao carlos":                    FormatIFSP,
	"instituto federal de são paulo":     FormatIFSP,
	"instituto federal de sao paulo":     FormatIFSP,
	"enem usp":                           FormatEnemUSP,
	"enem-usp":                           FormatEnemUSP,
	"usp enem":                           FormatEnemUSP,
}

// NormalizeInstitution trims, lowercases and collapses internal whitespace.
func NormalizeInstitution(s string) string {
	return strings.ToLower(textnorm.Clean(s))
}

// Options configures a Dispatcher.
type Options struct {
	// Location is the campus every extractor keeps. Empty means textnorm.DefaultLocation.
	Location string
	// Resolver backs the Fuvest extractor. Nil means dimension.Default().
	Resolver *dimension.Resolver
	// Aliases are merged over the built-in table.
	Aliases map[string]Format
}

// Dispatcher routes a document to the extractor of its institution.
type Dispatcher struct {
	aliases    map[string]Format
	folded     map[string]Format
	extractors map[Format]Extractor
}

// NewDispatcher builds the alias table and one extractor per format.
func NewDispatcher(opts Options) (*Dispatcher, error) {
	d := &Dispatcher{
		aliases: make(map[string]Format, len(builtinAliases)+len(opts.Aliases)),
		folded:  make(map[string]Format, len(builtinAliases)+len(opts.Aliases)),
		extractors: map[Format]Extractor{
			FormatUFSCar:  &UFSCar{Location: opts.Location},
			FormatFuvest:  &Fuvest{Resolver: opts.Resolver},
			FormatProvao:  &Provao{Location: opts.Location},
			FormatIFSP:    &IFSP{Location: opts.Location},
			FormatEnemUSP: &EnemUSP{Location: opts.Location},
		},
	}
	for alias, f := range builtinAliases {
		d.add(alias, f)
	}
	for alias, f := range opts.Aliases {
		if _, err := ParseFormat(string(f)); err != nil {
			return nil, fmt.Errorf("alias %q: %w", alias, err)
		}
		d.add(alias, f)
	}
	return d, nil
}

func (d *Dispatcher) add(alias string, f Format) {
	key := NormalizeInstitution(alias)
	if key == "" {
		return
	}
	d.aliases[key] = f
	d.folded[textnorm.Fold(key)] = f
}

// Lookup returns the format for an institution name. An exact alias wins;
// otherwise the accent-folded name is tried.
func (d *Dispatcher) Lookup(institution string) (Format, bool) {
	key := NormalizeInstitution(institution)
	if f, ok := d.aliases[key]; ok {
		return f, true
	}
	f, ok := d.folded[textnorm.Fold(key)]
	return f, ok
}

// Extractor returns the extractor registered for f.
func (d *Dispatcher) Extractor(f Format) (Extractor, bool) {
	e, ok := d.extractors[f]
	return e, ok
}

// Extract selects the extractor for institution and runs it on doc.
func (d *Dispatcher) Extract(doc reader.Document, institution string) ([]record.Record, error) {
	f, ok := d.Lookup(institution)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInstitution, NormalizeInstitution(institution))
	}
	e, ok := d.Extractor(f)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
	return e.Extract(doc)
}

// Alias is one entry of the alias table.
type Alias struct {
	Name   string
	Format Format
}

// Aliases returns the alias table sorted by format, then name.
func (d *Dispatcher) Aliases() []Alias {
	out := make([]Alias, 0, len(d.aliases))
	for name, f := range d.aliases {
		out = append(out, Alias{Name: name, Format: f})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Format != out[j].Format {
			return out[i].Format < out[j].Format
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// aliasFile is the YAML layout accepted by LoadAliases.
type aliasFile struct {
	Aliases map[string]string `yaml:"aliases"`
}

// LoadAliases reads extra aliases from YAML:
//
//	aliases:
//	  ufscar sorocaba: ufscar
//	  fuvest 2a chamada: fuvest
func LoadAliases(r io.Reader) (map[string]Format, error) {
	var file aliasFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]Format{}, nil
		}
		return nil, fmt.Errorf("parse aliases: %w", err)
	}
	out := make(map[string]Format, len(file.Aliases))
	for alias, name := range file.Aliases {
		f, err := ParseFormat(name)
		if err != nil {
			return nil, fmt.Errorf("alias %q: %w", alias, err)
		}
		out[alias] = f
	}
	return out, nil
}
