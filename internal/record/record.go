package record

// Record is one candidate extracted from an admission list.
type Record struct {
	Nome    string `json:"nome" yaml:"nome"`
	Curso   string `json:"curso" yaml:"curso"`
	Tipo    string `json:"tipo" yaml:"tipo"`
	Periodo string `json:"periodo" yaml:"periodo"`
}

// Key identifies a record for deduplication. Tipo and Periodo are not part of it.
type Key struct {
	Nome  string
	Curso string
}

// Key returns the (nome, curso) identity of r.
func (r Record) Key() Key {
	return Key{Nome: r.Nome, Curso: r.Curso}
}

// Fields returns the record as the four-column row used by CSV output.
func (r Record) Fields() []string {
	return []string{r.Nome, r.Curso, r.Tipo, r.Periodo}
}

// Header is the column order matching Fields.
var Header = []string{"nome", "curso", "tipo", "periodo"}

// Dedup keeps the first record for each (nome, curso) pair and preserves input order.
func Dedup(records []Record) []Record {
	if len(records) == 0 {
		return []Record{}
	}
	seen := make(map[Key]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		k := r.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
