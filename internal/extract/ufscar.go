package extract

import (
	"regexp"
	"strings"

	"github.com/akashicode/aprovados/internal/reader"
	"github.com/akashicode/aprovados/internal/record"
	"github.com/akashicode/aprovados/internal/textnorm"
)

// UFSCar call lists announce each course with a dash-separated header
// ("Direito - Bacharelado - Integral[ - Campus ...]") followed by one line per
// candidate: masked ENEM inscription, name, quota group and score.
var (
	ufscarHeaderRe = regexp.MustCompile(
		`(?i)^.+\s-\s(?:Bacharelado|Licenciatura|Tecn[oó]logo|Engenharia|Medicina|Administra[cç][aã]o|[\p{L}\p{N}_]+)\s-\s.+$`)
	ufscarRowRe = regexp.MustCompile(
		`^\s*\d{2}\*{2,}\d+\s+` +
			`(?P<nome>.+?)\s+` +
			`(?P<grupo>[A-Z]{1,3}(?:_[A-Z]{2,5})*)\s+` +
			`(?P<nota>\d{1,3}(?:[.,]\d{2})?)\s*$`)
	ufscarFooterRe = regexp.MustCompile(`(?i)^Emitido em:|^P[áa]gina\s+\d+\s+de\s+\d+`)
	ufscarSkipRe   = regexp.MustCompile(
		`(?i)^(Convoca[cç][aã]o|Processo Seletivo|UFSCar|\d+ª\s+Chamada|Insc\.\s+Enem\s+Nome\s+do\s+Candidato)`)
)

// UFSCar extracts records from Universidade Federal de São Carlos call lists.
type UFSCar struct {
	// Location filters headers that carry a campus segment. Empty means textnorm.DefaultLocation.
	Location string
}

// ufscarHeader is a split course header. campus is empty when the header had
// only three segments.
type ufscarHeader struct {
	courseContext
	campus string
}

func classifyUFSCar(line string) (lineKind, []string) {
	switch {
	case ufscarFooterRe.MatchString(line), ufscarSkipRe.MatchString(line):
		return lineSkip, nil
	case ufscarHeaderRe.MatchString(line) && !strings.Contains(line, "Nome do Candidato"):
		return lineHeader, nil
	}
	if m := ufscarRowRe.FindStringSubmatch(line); m != nil {
		return lineCandidate, m
	}
	return lineOther, nil
}

// splitUFSCarHeader splits a header into course, degree type, period and an
// optional campus made of every segment past the third.
func splitUFSCarHeader(line string) ufscarHeader {
	parts := strings.Split(line, " - ")
	for i := range parts {
		parts[i] = textnorm.Clean(parts[i])
	}
	switch {
	case len(parts) >= 4:
		return ufscarHeader{
			courseContext: courseContext{curso: parts[0], tipo: parts[1], periodo: parts[2]},
			campus:        strings.Join(parts[3:], " - "),
		}
	case len(parts) == 3:
		return ufscarHeader{courseContext: courseContext{curso: parts[0], tipo: parts[1], periodo: parts[2]}}
	default:
		return ufscarHeader{courseContext: courseContext{curso: textnorm.Clean(line)}}
	}
}

// Extract implements Extractor.
func (e *UFSCar) Extract(doc reader.Document) ([]record.Record, error) {
	var (
		header *ufscarHeader
		out    []record.Record
	)
	for _, line := range cleanLines(doc) {
		kind, m := classifyUFSCar(line)
		switch kind {
		case lineHeader:
			h := splitUFSCarHeader(line)
			header = &h
		case lineCandidate:
			if header == nil {
				continue
			}
			if header.campus != "" && !textnorm.MentionsLocation(header.campus, e.Location) {
				continue
			}
			out = append(out, header.withName(group(ufscarRowRe, m, "nome")))
		}
	}
	return record.Dedup(out), nil
}
