package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akashicode/aprovados/internal/record"
)

func newTestDispatcher(t *testing.T, aliases map[string]Format) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(Options{Resolver: fuvestResolver(), Aliases: aliases})
	require.NoError(t, err)
	return d
}

func TestDispatcher_Lookup(t *testing.T) {
	d := newTestDispatcher(t, nil)

	tests := []struct {
		institution string
		want        Format
		wantOK      bool
	}{
		{institution: "UFSCar", want: FormatUFSCar, wantOK: true},
		{institution: "  ufscar  ", want: FormatUFSCar, wantOK: true},
		{institution: "UFSCAR", want: FormatUFSCar, wantOK: true},
		{institution: "Universidade Federal de São Carlos", want: FormatUFSCar, wantOK: true},
		{institution: "Fuvest Lista de Espera", want: FormatFuvest, wantOK: true},
		{institution: "Provão  Paulista", want: FormatProvao, wantOK: true},
		{institution: "IFSP", want: FormatIFSP, wantOK: true},
		{institution: "ENEM USP", want: FormatEnemUSP, wantOK: true},
		{institution: "Unicamp", wantOK: false},
		{institution: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.institution, func(t *testing.T) {
			got, ok := d.Lookup(tt.institution)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDispatcher_FoldedLookup(t *testing.T) {
	d := newTestDispatcher(t, map[string]Format{"Fuvest Seleção": FormatFuvest})

	got, ok := d.Lookup("FUVEST SELECAO")
	require.True(t, ok)
	assert.Equal(t, FormatFuvest, got)
}

func TestDispatcher_Extract(t *testing.T) {
	d := newTestDispatcher(t, nil)

	got, err := d.Extract(doc(
		"Direito - Bacharelado - Integral",
		"01**1234567 JOAO DA SILVA AC 750",
	), "UFSCar")
	require.NoError(t, err)
	assert.Equal(t, []record.Record{
		{Nome: "JOAO DA SILVA", Curso: "Direito", Tipo: "Bacharelado", Periodo: "Integral"},
	}, got)

	got, err = d.Extract(doc("MARIA SOUZA 123.456 109 -21"), "fuvest")
	require.NoError(t, err)
	assert.Equal(t, []record.Record{
		{Nome: "MARIA SOUZA", Curso: "Medicina", Tipo: "B", Periodo: "Integral"},
	}, got)
}

func TestDispatcher_Extractor(t *testing.T) {
	d, err := NewDispatcher(Options{Resolver: fuvestResolver(), Location: "Ribeirão Preto"})
	require.NoError(t, err)

	e, ok := d.Extractor(FormatProvao)
	require.True(t, ok)
	p, isProvao := e.(*Provao)
	require.True(t, isProvao)
	assert.Equal(t, "Ribeirão Preto", p.Location)

	for _, f := range Formats {
		_, ok := d.Extractor(f)
		assert.True(t, ok, "format %s has no extractor", f)
	}

	_, ok = d.Extractor(Format("comvest"))
	assert.False(t, ok)
}

func TestDispatcher_UnknownInstitution(t *testing.T) {
	d := newTestDispatcher(t, nil)

	got, err := d.Extract(doc(
		"Direito - Bacharelado - Integral",
		"01**1234567 JOAO DA SILVA AC 750",
	), "Unicamp")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownInstitution))
	assert.Contains(t, err.Error(), `"unicamp"`)
}

func TestDispatcher_Overrides(t *testing.T) {
	d := newTestDispatcher(t, map[string]Format{
		"UFSCar Sorocaba": FormatUFSCar,
		"ifsp":            FormatUFSCar,
	})

	got, ok := d.Lookup("ufscar sorocaba")
	require.True(t, ok)
	assert.Equal(t, FormatUFSCar, got)

	got, ok = d.Lookup("IFSP")
	require.True(t, ok)
	assert.Equal(t, FormatUFSCar, got)
}

func TestNewDispatcher_BadAlias(t *testing.T) {
	_, err := NewDispatcher(Options{Aliases: map[string]Format{"unicamp": "unicamp"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestDispatcher_Aliases(t *testing.T) {
	d := newTestDispatcher(t, nil)
	aliases := d.Aliases()
	require.NotEmpty(t, aliases)

	seen := make(map[Format]bool)
	for i, a := range aliases {
		seen[a.Format] = true
		if i == 0 {
			continue
		}
		prev := aliases[i-1]
		assert.True(t, prev.Format < a.Format || (prev.Format == a.Format && prev.Name < a.Name))
	}
	for _, f := range Formats {
		assert.True(t, seen[f], "format %s has no alias", f)
	}
}

func TestLoadAliases(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]Format
		wantErr error
	}{
		{
			name:  "valid",
			input: "aliases:\n  ufscar sorocaba: ufscar\n  fuvest 2a chamada: FUVEST\n",
			want: map[string]Format{
				"ufscar sorocaba":   FormatUFSCar,
				"fuvest 2a chamada": FormatFuvest,
			},
		},
		{
			name:  "empty",
			input: "",
			want:  map[string]Format{},
		},
		{
			name:    "unknown format",
			input:   "aliases:\n  unicamp: comvest\n",
			wantErr: ErrUnknownFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadAliases(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadAliases_InvalidYAML(t *testing.T) {
	_, err := LoadAliases(strings.NewReader("aliases: [unterminated"))
	require.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" ENEM-USP ")
	require.NoError(t, err)
	assert.Equal(t, FormatEnemUSP, f)

	_, err = ParseFormat("sisu")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}
