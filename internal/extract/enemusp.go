package extract

import (
	"regexp"
	"strings"

	"github.com/akashicode/aprovados/internal/reader"
	"github.com/akashicode/aprovados/internal/record"
	"github.com/akashicode/aprovados/internal/textnorm"
)

var (
	enemUSPCourseRe = regexp.MustCompile(
		`^(?P<curso>.+?)\s+[-\x{2212}]\s+\((?P<tipo>[^)]+)\)\s+[-\x{2212}]\s+(?P<periodo>.+)$`)
	enemUSPCandidateRe = regexp.MustCompile(`^\d+\s+\d{3}\.\d{3}\s+(?P<nome>.+)$`)
	enemUSPSkipRe      = regexp.MustCompile(
		`(?i)^(ENEM\s+USP\s+\d+|CHAMADOS\s+PARA\s+A\s+PRIMEIRA\s+MATR[IÍ]CULA|PROCESSAMENTO\s+REALIZADO)`)
)

// EnemUSP extracts records from the ENEM-USP first enrollment call list.
// Each course header is followed by one or more unit lines naming the USP
// campus; candidates count only under a unit at the configured location.
type EnemUSP struct {
	// Location is the campus kept. Empty means textnorm.DefaultLocation.
	Location string
}

func classifyEnemUSP(line string) (lineKind, []string) {
	if enemUSPSkipRe.MatchString(line) {
		return lineSkip, nil
	}
	if m := enemUSPCourseRe.FindStringSubmatch(line); m != nil {
		return lineHeader, m
	}
	// candidates first: a name may contain "usp" as a substring
	if m := enemUSPCandidateRe.FindStringSubmatch(line); m != nil {
		return lineCandidate, m
	}
	if strings.Contains(strings.ToLower(line), "usp") {
		return lineLocation, nil
	}
	return lineOther, nil
}

// Extract implements Extractor.
func (e *EnemUSP) Extract(doc reader.Document) ([]record.Record, error) {
	var (
		course *courseContext
		unit   string
		out    []record.Record
	)
	for _, line := range cleanLines(doc) {
		kind, m := classifyEnemUSP(line)
		switch kind {
		case lineHeader:
			course = &courseContext{
				curso:   group(enemUSPCourseRe, m, "curso"),
				tipo:    group(enemUSPCourseRe, m, "tipo"),
				periodo: group(enemUSPCourseRe, m, "periodo"),
			}
			unit = ""
		case lineLocation:
			unit = line
		case lineCandidate:
			if course == nil || !textnorm.MentionsLocation(unit, e.Location) {
				continue
			}
			out = append(out, course.withName(group(enemUSPCandidateRe, m, "nome")))
		}
	}
	return record.Dedup(out), nil
}
