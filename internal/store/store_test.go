package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akashicode/aprovados/internal/record"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(context.Background(), filepath.Join(t.TempDir(), "leads.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestSaveImport(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	records := []record.Record{
		{Nome: "JOAO DA SILVA", Curso: "Direito", Tipo: "Bacharelado", Periodo: "Integral"},
		{Nome: "MARIA SOUZA", Curso: "Medicina", Tipo: "B", Periodo: "Integral"},
	}
	id, err := st.SaveImport(ctx, Import{Faculdade: "UFSCar", Ano: 2025, Source: "lista.pdf"}, records)
	require.NoError(t, err)

	_, err = ulid.Parse(id)
	require.NoError(t, err)

	n, err := st.CountLeads(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := st.Leads(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestSaveImport_Separate(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	first, err := st.SaveImport(ctx, Import{Faculdade: "Fuvest", Source: "a.pdf"}, []record.Record{
		{Nome: "ANA LIMA", Curso: "Medicina"},
	})
	require.NoError(t, err)
	second, err := st.SaveImport(ctx, Import{Faculdade: "Fuvest", Source: "b.pdf"}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	n, err := st.CountLeads(ctx, second)
	require.NoError(t, err)
	assert.Zero(t, n)

	total, err := st.CountLeads(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestSaveImport_Concurrent(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	const imports = 8
	ids := make([]string, imports)
	var wg sync.WaitGroup
	errs := make([]error, imports)
	for i := 0; i < imports; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = st.SaveImport(ctx, Import{Faculdade: "IFSP", Source: "x.pdf"}, []record.Record{
				{Nome: "LUCAS ALVES", Curso: "Ciência da Computação"},
			})
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i := range ids {
		require.NoError(t, errs[i])
		assert.False(t, seen[ids[i]], "duplicate id %s", ids[i])
		seen[ids[i]] = true
	}

	total, err := st.CountLeads(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, imports, total)
}
