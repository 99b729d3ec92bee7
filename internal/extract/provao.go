package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/akashicode/aprovados/internal/reader"
	"github.com/akashicode/aprovados/internal/record"
	"github.com/akashicode/aprovados/internal/textnorm"
)

// Provão Paulista lists come in two layouts.
//
// Legacy: a "1.234 NAME" line, a "12/A Course (Degree) - Period" line and a
// "Campus ..." line that closes the entry.
//
// Current: one table row per candidate, "NAME ***1.234** A <blob>", where the
// blob is "Institution - Code - Course (Degree) - Period - Location". Rows wrap
// across lines, both in the name and in the blob.
var (
	provaoPositionRe   = regexp.MustCompile(`^\d+/\d+$`)
	provaoLegacyNameRe = regexp.MustCompile(`^\d{1,3}\.\d{3}\s+(?P<nome>.+)$`)
	provaoLegacyCourse = regexp.MustCompile(
		`^\d+(?:/[\dA-Za-z]+)?\s+(?P<curso>.+?)\s*\((?P<tipo>[^)]+)\)\s*-\s*(?P<periodo>.+)$`)

	provaoMaskRe = regexp.MustCompile(`\*{3}\d{1,3}[.,]\d{3}\*{2}`)
	provaoRowRe  = regexp.MustCompile(
		`^(?P<nome>.+?)\s+\*{3}\d{1,3}[.,]\d{3}\*{2}\s+(?P<grupo>[A-Z])\s+(?P<curso>.+)$`)
	provaoColumnsRe = regexp.MustCompile(`(?i)^nome\b`)
	provaoSegmentRe = regexp.MustCompile(`\s+-\s*|\s*-\s+`)
	provaoDegreeRe  = regexp.MustCompile(`^(?P<curso>.*?)\s*\((?P<tipo>[^)]+)\)\s*$`)
)

const (
	// provaoBlobSegments is the segment count of a fully assembled blob.
	provaoBlobSegments = 5
	// provaoMaxNameLines bounds how many wrapped name fragments precede a row.
	provaoMaxNameLines = 3
	// provaoMaxWrapLines bounds how many continuation lines a row absorbs.
	provaoMaxWrapLines = 3
	provaoInstitution  = "USP"
)

// Provao extracts records from Provão Paulista lists. The current layout is
// tried first; when it yields nothing the legacy layout is scanned instead.
type Provao struct {
	// Location is the campus kept. Empty means textnorm.DefaultLocation.
	Location string
}

// Extract implements Extractor.
func (e *Provao) Extract(doc reader.Document) ([]record.Record, error) {
	lines := cleanLines(doc)
	if recs := e.scanCurrent(lines); len(recs) > 0 {
		return recs, nil
	}
	return e.scanLegacy(lines), nil
}

// ExtractCurrent scans only the current table layout.
func (e *Provao) ExtractCurrent(doc reader.Document) []record.Record {
	return e.scanCurrent(cleanLines(doc))
}

// ExtractLegacy scans only the legacy three-line layout.
func (e *Provao) ExtractLegacy(doc reader.Document) []record.Record {
	return e.scanLegacy(cleanLines(doc))
}

func isProvaoNoise(line string) bool {
	return provaoPositionRe.MatchString(line) ||
		strings.HasPrefix(line, "Provão Paulista") ||
		strings.Contains(line, "Lista de Espera") ||
		strings.HasPrefix(line, "Processamento")
}

func classifyProvaoLegacy(line string) (lineKind, []string) {
	if isProvaoNoise(line) {
		return lineSkip, nil
	}
	if m := provaoLegacyNameRe.FindStringSubmatch(line); m != nil {
		return lineName, m
	}
	if m := provaoLegacyCourse.FindStringSubmatch(line); m != nil {
		return lineHeader, m
	}
	if strings.HasPrefix(strings.ToLower(line), "campus") {
		return lineLocation, nil
	}
	return lineOther, nil
}

// scanLegacy pairs a pending name and course and emits them on the campus
// line that follows. The campus line clears both, kept or not.
func (e *Provao) scanLegacy(lines []string) []record.Record {
	var (
		name   string
		course *courseContext
		out    []record.Record
	)
	for _, line := range lines {
		kind, m := classifyProvaoLegacy(line)
		switch kind {
		case lineName:
			name = group(provaoLegacyNameRe, m, "nome")
		case lineHeader:
			course = &courseContext{
				curso:   group(provaoLegacyCourse, m, "curso"),
				tipo:    group(provaoLegacyCourse, m, "tipo"),
				periodo: group(provaoLegacyCourse, m, "periodo"),
			}
		case lineLocation:
			if name != "" && course != nil && textnorm.MentionsLocation(line, e.Location) {
				out = append(out, course.withName(name))
			}
			name, course = "", nil
		}
	}
	return record.Dedup(out)
}

// provaoPending is a row whose mask has been seen. It stays open until the
// next mask line, a noise line or the end of input.
type provaoPending struct {
	head  string // name text before the mask
	body  string // mask, group and blob
	wraps int
}

func newProvaoPending(nameBuf []string, line string) *provaoPending {
	idx := provaoMaskRe.FindStringIndex(line)[0]
	parts := append(append([]string(nil), nameBuf...), line[:idx])
	return &provaoPending{
		head: textnorm.Clean(strings.Join(parts, " ")),
		body: line[idx:],
	}
}

func (p *provaoPending) match() []string {
	return provaoRowRe.FindStringSubmatch(p.head + " " + p.body)
}

// blobComplete reports whether the row parsed and its blob has every segment.
func (p *provaoPending) blobComplete() bool {
	m := p.match()
	if m == nil {
		return false
	}
	blob := group(provaoRowRe, m, "curso")
	return !strings.HasSuffix(blob, "-") && len(splitBlob(blob)) >= provaoBlobSegments
}

// absorb appends a continuation line. Once the blob is complete an uppercase
// name fragment belongs to the end of the name; anything else continues the
// blob, such as a location cut after "Campus de São".
func (p *provaoPending) absorb(line string) {
	p.wraps++
	if p.blobComplete() && isNameTail(line) {
		p.head += " " + line
		return
	}
	p.body += " " + line
}

// looksLikeNameFragment accepts a line that can be the wrapped start of a
// candidate name.
func looksLikeNameFragment(line string) bool {
	return !hasDigit(line) && !strings.ContainsAny(line, "*-:()") && !provaoColumnsRe.MatchString(line)
}

// isNameTail accepts an all-caps fragment; names are printed in capitals
// while locations and courses are not.
func isNameTail(line string) bool {
	return looksLikeNameFragment(line) &&
		line == strings.ToUpper(line) &&
		strings.IndexFunc(line, unicode.IsLetter) >= 0
}

// scanCurrent reassembles wrapped rows. Name fragments seen while no row is
// open are buffered until a line carrying the masked inscription arrives.
// Lines after a row always belong to that row, never to the next one.
func (e *Provao) scanCurrent(lines []string) []record.Record {
	var (
		nameBuf []string
		pending *provaoPending
		out     []record.Record
	)
	flush := func() {
		if pending == nil {
			return
		}
		if m := pending.match(); m != nil {
			if r, ok := e.currentRecord(m); ok {
				out = append(out, r)
			}
		}
		pending = nil
	}

	for _, line := range lines {
		switch {
		case isProvaoNoise(line) || provaoColumnsRe.MatchString(line):
			flush()
			nameBuf = nil
		case provaoMaskRe.MatchString(line):
			flush()
			pending = newProvaoPending(nameBuf, line)
			nameBuf = nil
		case pending != nil:
			if pending.wraps < provaoMaxWrapLines {
				pending.absorb(line)
			}
		case looksLikeNameFragment(line):
			nameBuf = append(nameBuf, line)
			if len(nameBuf) > provaoMaxNameLines {
				nameBuf = nameBuf[1:]
			}
		default:
			nameBuf = nil
		}
	}
	flush()
	return record.Dedup(out)
}

// currentRecord applies the institution and location filters to a parsed row.
func (e *Provao) currentRecord(m []string) (record.Record, bool) {
	blob := textnorm.NormalizeDashes(group(provaoRowRe, m, "curso"))
	inst, curso, tipo, periodo := splitProvaoBlob(blob)
	if inst != provaoInstitution || !textnorm.MentionsLocation(blob, e.Location) {
		return record.Record{}, false
	}
	nome := group(provaoRowRe, m, "nome")
	if nome == "" || curso == "" {
		return record.Record{}, false
	}
	return record.Record{Nome: nome, Curso: curso, Tipo: tipo, Periodo: periodo}, true
}

func splitBlob(blob string) []string {
	parts := provaoSegmentRe.Split(textnorm.NormalizeDashes(blob), -1)
	out := parts[:0]
	for _, p := range parts {
		if p = textnorm.Clean(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitProvaoBlob splits "Institution - Code - Course (Degree) - Period - Location".
// With four or more segments the period is the second to last and the course
// spans everything between the code and the period; with three the course and
// period are the last two.
func splitProvaoBlob(blob string) (inst, curso, tipo, periodo string) {
	parts := splitBlob(blob)
	n := len(parts)
	if n == 0 {
		return "", "", "", ""
	}
	inst = parts[0]

	var course string
	switch {
	case n >= 4:
		periodo = parts[n-2]
		course = strings.Join(parts[2:n-2], " - ")
		if course == "" {
			course = parts[1]
		}
	case n == 3:
		course, periodo = parts[1], parts[2]
	case n == 2:
		course = parts[1]
	default:
		course = parts[0]
	}

	curso, tipo = stripDegree(course)
	return inst, curso, tipo, periodo
}

// stripDegree splits a trailing "(Degree)" off a course name.
func stripDegree(course string) (string, string) {
	if m := provaoDegreeRe.FindStringSubmatch(course); m != nil {
		return group(provaoDegreeRe, m, "curso"), group(provaoDegreeRe, m, "tipo")
	}
	return textnorm.Clean(course), ""
}
