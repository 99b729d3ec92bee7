package extract

import (
	"regexp"

	"github.com/akashicode/aprovados/internal/reader"
	"github.com/akashicode/aprovados/internal/record"
	"github.com/akashicode/aprovados/internal/textnorm"
)

var (
	ifspHeaderRe = regexp.MustCompile(
		`(?i)Campus\s+(?P<campus>.+?)\s+-\s+(?P<tipo>[^-]+?)\s+em\s+(?P<curso>.+?)\s+-\s+(?P<periodo>.+)$`)
	ifspCandidateRe = regexp.MustCompile(`^\d{12}\s+(?P<nome>.+?)\s+\d{2}/\d{2}/\d{4}\s+\d`)
)

// IFSP extracts records from Instituto Federal de São Paulo SISU results.
// A section header "Campus São Carlos - Bacharelado em Course - Period" stays
// in effect until the next header. A header naming another campus suspends
// emission until a matching one appears.
type IFSP struct {
	// Location is the campus kept. Empty means textnorm.DefaultLocation.
	Location string
}

func classifyIFSP(line string) (lineKind, []string) {
	if m := ifspHeaderRe.FindStringSubmatch(line); m != nil {
		return lineHeader, m
	}
	if m := ifspCandidateRe.FindStringSubmatch(line); m != nil {
		return lineCandidate, m
	}
	return lineOther, nil
}

// Extract implements Extractor.
func (e *IFSP) Extract(doc reader.Document) ([]record.Record, error) {
	var (
		course *courseContext
		out    []record.Record
	)
	for _, line := range cleanLines(doc) {
		kind, m := classifyIFSP(line)
		switch kind {
		case lineHeader:
			if !textnorm.MentionsLocation(group(ifspHeaderRe, m, "campus"), e.Location) {
				course = nil
				continue
			}
			course = &courseContext{
				curso:   group(ifspHeaderRe, m, "curso"),
				tipo:    group(ifspHeaderRe, m, "tipo"),
				periodo: group(ifspHeaderRe, m, "periodo"),
			}
		case lineCandidate:
			if course == nil {
				continue
			}
			out = append(out, course.withName(group(ifspCandidateRe, m, "nome")))
		}
	}
	return record.Dedup(out), nil
}
