package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/akashicode/aprovados/internal/dimension"
	"github.com/akashicode/aprovados/internal/reader"
	"github.com/akashicode/aprovados/internal/record"
	"github.com/akashicode/aprovados/internal/textnorm"
)

// Fuvest lists wrap freely, so they are scanned as one token stream: a name,
// a masked CPF ("123.456") and a carreira-curso code that the PDF text flow
// may split across two tokens.
var (
	fuvestCPFRe      = regexp.MustCompile(`^\d{3}\.\d{3}$`)
	fuvestCodeOneRe  = regexp.MustCompile(`^\d{3}-\d$`)
	fuvestCodeOpenRe = regexp.MustCompile(`^\d{3}-$`)
)

const fuvestHeaderPrefix = "NOME CPF CURSO"

// Fuvest extracts records from Fuvest call lists. Courses come from the
// dimension table, and candidates whose code is not in it are dropped.
type Fuvest struct {
	// Resolver supplies the code table. Nil means dimension.Default().
	Resolver *dimension.Resolver
}

func (e *Fuvest) resolver() *dimension.Resolver {
	if e.Resolver == nil {
		return dimension.Default()
	}
	return e.Resolver
}

func isFuvestHeader(line string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(line)), fuvestHeaderPrefix)
}

// Extract implements Extractor. It fails only when the dimension table cannot be loaded.
func (e *Fuvest) Extract(doc reader.Document) ([]record.Record, error) {
	table, err := e.resolver().Load()
	if err != nil {
		return nil, fmt.Errorf("fuvest: %w", err)
	}

	tokens := doc.Tokens(isFuvestHeader)
	var (
		out  []record.Record
		name []string
	)
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if !fuvestCPFRe.MatchString(tok) {
			name = append(name, tok)
			continue
		}

		nome := fuvestName(name)
		name = name[:0]
		code, consumed, ok := consumeCode(tokens, i+1)
		i += consumed
		if nome == "" || !ok {
			continue
		}
		row, found := table.Lookup(code)
		if !found {
			continue
		}
		out = append(out, record.Record{Nome: nome, Curso: row.Curso, Tipo: row.Tipo, Periodo: row.Periodo})
	}
	return record.Dedup(out), nil
}

// fuvestName keeps the trailing run of digit-free tokens before a CPF, so page
// counters and leftovers from the previous row do not leak into the name.
func fuvestName(tokens []string) string {
	start := len(tokens)
	for start > 0 && !hasDigit(tokens[start-1]) {
		start--
	}
	nome := strings.ReplaceAll(strings.Join(tokens[start:], " "), "...", "")
	return textnorm.Clean(nome)
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// consumeCode rebuilds the code starting at tokens[start]. It returns the
// normalized code, how many tokens it used, and whether the code has the
// "DDD-DD" shape. Handled splits: "109" "-21", "109-2" "1", "109-" "21".
func consumeCode(tokens []string, start int) (string, int, bool) {
	if start >= len(tokens) {
		return "", 0, false
	}
	first := textnorm.NormalizeDashes(tokens[start])
	next := ""
	if start+1 < len(tokens) {
		next = textnorm.NormalizeDashes(tokens[start+1])
	}

	raw, consumed := first, 1
	switch {
	case !strings.Contains(first, "-") && strings.HasPrefix(next, "-"):
		raw, consumed = first+next, 2
	case fuvestCodeOneRe.MatchString(first) && isDigits(next):
		raw, consumed = first+next, 2
	case fuvestCodeOpenRe.MatchString(first) && isDigits(next):
		raw, consumed = first+next, 2
	}

	code, ok := dimension.NormalizeCode(raw)
	return code, consumed, ok
}
