package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akashicode/aprovados/internal/record"
)

func TestEnemUSP_Extract(t *testing.T) {
	lines := []string{
		"ENEM USP 2025",
		"Chamados para a primeira matrícula",
		"Medicina - (Bacharelado) - Integral",
		"USP - Campus de São Carlos",
		"1 123.456 CARLA USPENSKI",
		"2 234.567 DANIEL FARIA",
		"USP - Campus de Ribeirão Preto",
		"3 345.678 ELISA MOURA",
		"Física \u2212 (Licenciatura) \u2212 Noturno",
		"4 456.789 FABIO TEIXEIRA",
		"USP - Campus de São Carlos",
		"5 567.890 GABRIELA PINTO",
		"Processamento realizado em 10/02/2025",
	}

	e := &EnemUSP{}
	got, err := e.Extract(doc(lines...))
	require.NoError(t, err)
	assert.Equal(t, []record.Record{
		{Nome: "CARLA USPENSKI", Curso: "Medicina", Tipo: "Bacharelado", Periodo: "Integral"},
		{Nome: "DANIEL FARIA", Curso: "Medicina", Tipo: "Bacharelado", Periodo: "Integral"},
		{Nome: "GABRIELA PINTO", Curso: "Física", Tipo: "Licenciatura", Periodo: "Noturno"},
	}, got)
}

func TestClassifyEnemUSP(t *testing.T) {
	tests := []struct {
		line string
		want lineKind
	}{
		{line: "ENEM USP 2025", want: lineSkip},
		{line: "Medicina - (Bacharelado) - Integral", want: lineHeader},
		{line: "1 123.456 JOAO USPIANO", want: lineCandidate},
		{line: "USP - Campus de São Carlos", want: lineLocation},
		{line: "qualquer outra coisa", want: lineOther},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, _ := classifyEnemUSP(tt.line)
			assert.Equal(t, tt.want, got)
		})
	}
}
