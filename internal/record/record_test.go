package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedup(t *testing.T) {
	tests := []struct {
		name  string
		input []Record
		want  []Record
	}{
		{
			name:  "empty input",
			input: nil,
			want:  []Record{},
		},
		{
			name: "first occurrence wins",
			input: []Record{
				{Nome: "ANA", Curso: "Física", Tipo: "Bacharelado", Periodo: "Integral"},
				{Nome: "ANA", Curso: "Física", Tipo: "Licenciatura", Periodo: "Noturno"},
			},
			want: []Record{
				{Nome: "ANA", Curso: "Física", Tipo: "Bacharelado", Periodo: "Integral"},
			},
		},
		{
			name: "same name different course kept",
			input: []Record{
				{Nome: "ANA", Curso: "Física"},
				{Nome: "ANA", Curso: "Química"},
				{Nome: "BRUNO", Curso: "Física"},
			},
			want: []Record{
				{Nome: "ANA", Curso: "Física"},
				{Nome: "ANA", Curso: "Química"},
				{Nome: "BRUNO", Curso: "Física"},
			},
		},
		{
			name: "order preserved around duplicates",
			input: []Record{
				{Nome: "C", Curso: "X"},
				{Nome: "A", Curso: "X"},
				{Nome: "C", Curso: "X"},
				{Nome: "B", Curso: "X"},
			},
			want: []Record{
				{Nome: "C", Curso: "X"},
				{Nome: "A", Curso: "X"},
				{Nome: "B", Curso: "X"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Dedup(tt.input))
		})
	}
}

func TestDedup_NoSharedKeys(t *testing.T) {
	in := []Record{
		{Nome: "A", Curso: "1"}, {Nome: "A", Curso: "1"}, {Nome: "A", Curso: "2"},
		{Nome: "B", Curso: "1"}, {Nome: "B", Curso: "1"},
	}
	out := Dedup(in)
	seen := map[Key]bool{}
	for _, r := range out {
		assert.False(t, seen[r.Key()], "duplicate key %v", r.Key())
		seen[r.Key()] = true
	}
	assert.Len(t, out, 3)
}

func TestRecord_Fields(t *testing.T) {
	r := Record{Nome: "N", Curso: "C", Tipo: "T", Periodo: "P"}
	assert.Equal(t, []string{"N", "C", "T", "P"}, r.Fields())
	assert.Len(t, Header, len(r.Fields()))
}
