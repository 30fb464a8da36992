package plancatalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goatlabs/storefront/pkg/plancatalog"
)

type stubSource struct {
	entries map[string]plancatalog.Entry
	err     error
}

func (s *stubSource) Lookup(ctx context.Context, slug string) (plancatalog.Entry, error) {
	if s.err != nil {
		return plancatalog.Entry{}, s.err
	}
	return s.entries[slug], nil
}

func testFallback() map[string]plancatalog.Entry {
	return map[string]plancatalog.Entry{
		"basic": {Slug: "basic", Amount: 20000, OrderName: "Basic monthly"},
		"pro":   {Slug: "pro", Amount: 50000, OrderName: "Pro monthly"},
		"beta":  {Slug: "beta", Amount: 0, OrderName: "Beta"},
	}
}

func TestGate_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("static table serves without a source", func(t *testing.T) {
		t.Parallel()
		gate := plancatalog.NewGate(testFallback())
		entry, err := gate.Resolve(context.Background(), "basic")
		require.NoError(t, err)
		assert.EqualValues(t, 20000, entry.Amount)
		assert.Equal(t, "Basic monthly", entry.OrderName)
	})

	t.Run("backend override with positive amount wins", func(t *testing.T) {
		t.Parallel()
		gate := plancatalog.NewGate(testFallback(), plancatalog.WithSource(&stubSource{
			entries: map[string]plancatalog.Entry{
				"basic": {Amount: 22000},
			},
		}))
		entry, err := gate.Resolve(context.Background(), "basic")
		require.NoError(t, err)
		assert.EqualValues(t, 22000, entry.Amount)
		assert.Equal(t, "Basic monthly", entry.OrderName, "order name falls back to the static table")
	})

	t.Run("empty backend answer falls back", func(t *testing.T) {
		t.Parallel()
		gate := plancatalog.NewGate(testFallback(), plancatalog.WithSource(&stubSource{}))
		entry, err := gate.Resolve(context.Background(), "pro")
		require.NoError(t, err)
		assert.EqualValues(t, 50000, entry.Amount)
	})

	t.Run("backend failure degrades to the static table", func(t *testing.T) {
		t.Parallel()
		gate := plancatalog.NewGate(testFallback(), plancatalog.WithSource(&stubSource{err: errors.New("backend down")}))
		entry, err := gate.Resolve(context.Background(), "pro")
		require.NoError(t, err)
		assert.EqualValues(t, 50000, entry.Amount)
	})

	t.Run("no amount anywhere is a hard failure", func(t *testing.T) {
		t.Parallel()
		gate := plancatalog.NewGate(testFallback())
		_, err := gate.Resolve(context.Background(), "beta")
		assert.ErrorIs(t, err, plancatalog.ErrAmountUnknown)

		_, err = gate.Resolve(context.Background(), "unknown")
		assert.ErrorIs(t, err, plancatalog.ErrAmountUnknown)
	})

	t.Run("slug is normalized", func(t *testing.T) {
		t.Parallel()
		gate := plancatalog.NewGate(testFallback())
		entry, err := gate.Resolve(context.Background(), "  PRO ")
		require.NoError(t, err)
		assert.Equal(t, "pro", entry.Slug)
	})

	t.Run("empty slug is rejected", func(t *testing.T) {
		t.Parallel()
		gate := plancatalog.NewGate(testFallback())
		_, err := gate.Resolve(context.Background(), "   ")
		assert.ErrorIs(t, err, plancatalog.ErrEmptySlug)
	})
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	t.Run("parses a valid document", func(t *testing.T) {
		t.Parallel()
		table, err := plancatalog.LoadYAML([]byte(`
- slug: basic
  amount: 20000
  order_name: "Basic monthly"
- slug: PRO
  amount: 50000
  order_name: "Pro monthly"
`))
		require.NoError(t, err)
		require.Len(t, table, 2)
		assert.EqualValues(t, 50000, table["pro"].Amount)
	})

	t.Run("rejects duplicates and empty slugs", func(t *testing.T) {
		t.Parallel()
		_, err := plancatalog.LoadYAML([]byte("- slug: basic\n  amount: 1\n- slug: basic\n  amount: 2\n"))
		assert.ErrorIs(t, err, plancatalog.ErrInvalidCatalog)

		_, err = plancatalog.LoadYAML([]byte("- slug: \"\"\n  amount: 1\n"))
		assert.ErrorIs(t, err, plancatalog.ErrInvalidCatalog)
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		t.Parallel()
		_, err := plancatalog.LoadYAML([]byte("- slug: basic\n  amount: -5\n"))
		assert.ErrorIs(t, err, plancatalog.ErrInvalidCatalog)
	})
}
