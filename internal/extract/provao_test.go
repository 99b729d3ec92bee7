package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akashicode/aprovados/internal/record"
)

func TestProvao_Current(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []record.Record
	}{
		{
			name: "single line row",
			lines: []string{
				"Provão Paulista 2025 - Lista de Espera",
				"Nome Inscrição Grupo Curso",
				"MARIA DE OLIVEIRA ***1.234** A USP - 12 - Medicina (Bacharelado) - Integral - São Carlos",
			},
			want: []record.Record{
				{Nome: "MARIA DE OLIVEIRA", Curso: "Medicina", Tipo: "Bacharelado", Periodo: "Integral"},
			},
		},
		{
			name: "wrapped name and blob",
			lines: []string{
				"ANA PAULA",
				"SANTOS ***2.345** B USP - 13 - Engenharia Civil",
				"(Bacharelado) - Noturno - São Carlos",
				"1/4",
			},
			want: []record.Record{
				{Nome: "ANA PAULA SANTOS", Curso: "Engenharia Civil", Tipo: "Bacharelado", Periodo: "Noturno"},
			},
		},
		{
			name: "course name with a dash",
			lines: []string{
				"PEDRO ALVES ***3,456** C USP - 14 - Engenharia Elétrica - Eletrônica (Bacharelado) - Integral - São Carlos",
			},
			want: []record.Record{
				{Nome: "PEDRO ALVES", Curso: "Engenharia Elétrica - Eletrônica", Tipo: "Bacharelado", Periodo: "Integral"},
			},
		},
		{
			name: "other campus and other institution are filtered",
			lines: []string{
				"LUIZA COSTA ***4.567** A USP - 15 - Direito (Bacharelado) - Matutino - Ribeirão Preto",
				"RAFAEL DIAS ***5.678** A UNESP - 16 - Física (Licenciatura) - Noturno - São Carlos",
				"JULIA ROCHA ***6.789** B USP - 17 - Química (Bacharelado) - Integral - Sao Carlos",
			},
			want: []record.Record{
				{Nome: "JULIA ROCHA", Curso: "Química", Tipo: "Bacharelado", Periodo: "Integral"},
			},
		},
		{
			name: "consecutive rows each flush",
			lines: []string{
				"BRUNO LIMA ***1.111** A USP - 18 - Matemática",
				"(Licenciatura) - Noturno - São Carlos",
				"CAIO REIS ***2.222** A USP - 18 - Matemática (Licenciatura) - Noturno - São Carlos",
			},
			want: []record.Record{
				{Nome: "BRUNO LIMA", Curso: "Matemática", Tipo: "Licenciatura", Periodo: "Noturno"},
				{Nome: "CAIO REIS", Curso: "Matemática", Tipo: "Licenciatura", Periodo: "Noturno"},
			},
		},
		{
			name: "location wrapped after five segments",
			lines: []string{
				"MARIA DE OLIVEIRA ***1.234** A USP - 12 - Medicina (Bacharelado) - Integral - Campus de São",
				"Carlos",
				"CAIO REIS ***2.222** A USP - 18 - Matemática (Licenciatura) - Noturno - São Carlos",
			},
			want: []record.Record{
				{Nome: "MARIA DE OLIVEIRA", Curso: "Medicina", Tipo: "Bacharelado", Periodo: "Integral"},
				{Nome: "CAIO REIS", Curso: "Matemática", Tipo: "Licenciatura", Periodo: "Noturno"},
			},
		},
		{
			name: "trailing name fragment stays with its row",
			lines: []string{
				"ANA PAULA ***2.345** B USP - 13 - Engenharia Civil (Bacharelado) - Noturno - São Carlos",
				"SANTOS",
				"CAIO REIS ***2.222** A USP - 18 - Matemática (Licenciatura) - Noturno - São Carlos",
			},
			want: []record.Record{
				{Nome: "ANA PAULA SANTOS", Curso: "Engenharia Civil", Tipo: "Bacharelado", Periodo: "Noturno"},
				{Nome: "CAIO REIS", Curso: "Matemática", Tipo: "Licenciatura", Periodo: "Noturno"},
			},
		},
		{
			name: "page break closes the row",
			lines: []string{
				"BRUNO LIMA ***1.111** A USP - 18 - Matemática (Licenciatura) - Noturno - São Carlos",
				"2/4",
				"Nome Inscrição Grupo Curso",
				"CAIO",
				"REIS ***2.222** A USP - 18 - Matemática (Licenciatura) - Noturno - São Carlos",
			},
			want: []record.Record{
				{Nome: "BRUNO LIMA", Curso: "Matemática", Tipo: "Licenciatura", Periodo: "Noturno"},
				{Nome: "CAIO REIS", Curso: "Matemática", Tipo: "Licenciatura", Periodo: "Noturno"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Provao{}
			got := e.ExtractCurrent(doc(tt.lines...))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProvao_Idempotent(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{
			name: "current",
			lines: []string{
				"Provão Paulista 2025 - Lista de Espera",
				"ANA PAULA",
				"SANTOS ***2.345** B USP - 13 - Engenharia Civil",
				"(Bacharelado) - Noturno - Campus de São",
				"Carlos",
				"CAIO REIS ***2.222** A USP - 18 - Matemática (Licenciatura) - Noturno - São Carlos",
			},
		},
		{
			name: "legacy",
			lines: []string{
				"1.234 JOSE PEREIRA",
				"12/A Medicina (Bacharelado) - Integral",
				"Campus São Carlos",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := doc(tt.lines...)
			e := &Provao{}

			first, err := e.Extract(d)
			require.NoError(t, err)
			second, err := e.Extract(d)
			require.NoError(t, err)

			require.NotEmpty(t, first)
			assert.Equal(t, first, second)
		})
	}
}

func TestProvao_Legacy(t *testing.T) {
	lines := []string{
		"Provão Paulista 2024",
		"1.234 JOSE PEREIRA",
		"12/A Medicina (Bacharelado) - Integral",
		"Campus São Carlos",
		"2.345 LUCAS MORAES",
		"13 Direito (Bacharelado) - Noturno",
		"Campus Ribeirão Preto",
		"3.456 SOFIA NUNES",
		"Campus São Carlos",
	}

	e := &Provao{}
	got := e.ExtractLegacy(doc(lines...))
	assert.Equal(t, []record.Record{
		{Nome: "JOSE PEREIRA", Curso: "Medicina", Tipo: "Bacharelado", Periodo: "Integral"},
	}, got)
}

func TestProvao_FallsBackToLegacy(t *testing.T) {
	legacy := doc(
		"1.234 JOSE PEREIRA",
		"12/A Medicina (Bacharelado) - Integral",
		"Campus São Carlos",
	)
	e := &Provao{}

	got, err := e.Extract(legacy)
	require.NoError(t, err)
	assert.Equal(t, []record.Record{
		{Nome: "JOSE PEREIRA", Curso: "Medicina", Tipo: "Bacharelado", Periodo: "Integral"},
	}, got)

	current := doc("MARIA DE OLIVEIRA ***1.234** A USP - 12 - Medicina (Bacharelado) - Integral - São Carlos")
	got, err = e.Extract(current)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "MARIA DE OLIVEIRA", got[0].Nome)
}

func TestProvao_Location(t *testing.T) {
	e := &Provao{Location: "Ribeirão Preto"}
	got := e.ExtractCurrent(doc(
		"LUIZA COSTA ***4.567** A USP - 15 - Direito (Bacharelado) - Matutino - Ribeirão Preto",
	))
	assert.Equal(t, []record.Record{
		{Nome: "LUIZA COSTA", Curso: "Direito", Tipo: "Bacharelado", Periodo: "Matutino"},
	}, got)
}

func TestSplitProvaoBlob(t *testing.T) {
	tests := []struct {
		name                       string
		blob                       string
		inst, curso, tipo, periodo string
	}{
		{
			name: "five segments",
			blob: "USP - 12 - Medicina (Bacharelado) - Integral - São Carlos",
			inst: "USP", curso: "Medicina", tipo: "Bacharelado", periodo: "Integral",
		},
		{
			name: "three segments",
			blob: "USP - Medicina (Bacharelado) - Integral",
			inst: "USP", curso: "Medicina", tipo: "Bacharelado", periodo: "Integral",
		},
		{
			name: "two segments",
			blob: "USP - Medicina",
			inst: "USP", curso: "Medicina",
		},
		{
			name: "unicode dashes",
			blob: "USP \u2013 12 \u2212 Física (Licenciatura) - Noturno - São Carlos",
			inst: "USP", curso: "Física", tipo: "Licenciatura", periodo: "Noturno",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, curso, tipo, periodo := splitProvaoBlob(tt.blob)
			assert.Equal(t, tt.inst, inst)
			assert.Equal(t, tt.curso, curso)
			assert.Equal(t, tt.tipo, tipo)
			assert.Equal(t, tt.periodo, periodo)
		})
	}
}
