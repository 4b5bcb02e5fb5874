package geocode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	table := NewTable()

	t.Run("known place", func(t *testing.T) {
		p, ok := table.Lookup("Austin")
		require.True(t, ok)
		assert.Equal(t, "Austin", p.Name)
		assert.InDelta(t, 30.2672, p.Lat, 1e-4)
	})

	t.Run("case and whitespace insensitive", func(t *testing.T) {
		p, ok := table.Lookup("  new   ORLEANS ")
		require.True(t, ok)
		assert.Equal(t, "New Orleans", p.Name)
	})

	t.Run("unknown place", func(t *testing.T) {
		_, ok := table.Lookup("Atlantis")
		assert.False(t, ok)
	})
}

func TestNames(t *testing.T) {
	table := NewTable()
	names := table.Names()
	assert.NotEmpty(t, names)
	for _, name := range names {
		_, ok := table.Lookup(name)
		assert.True(t, ok, name)
	}
}
