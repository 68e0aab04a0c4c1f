package idx_test

import (
	"testing"
	"time"

	"github.com/sellersoft/shopauth/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("generates valid ULIDs", func(t *testing.T) {
		id := idx.New()
		require.False(t, id.IsZero())

		parsed, err := idx.Parse(id.String())
		require.NoError(t, err)
		require.Equal(t, id, parsed)
	})

	t.Run("ids generated in sequence sort", func(t *testing.T) {
		a := idx.New()
		b := idx.New()
		require.Less(t, a.String(), b.String())
	})
}

func TestNewAt(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	id := idx.NewAt(at)
	require.Equal(t, at, id.Time())
}

func TestParse(t *testing.T) {
	t.Run("rejects empty strings", func(t *testing.T) {
		_, err := idx.Parse("")
		require.ErrorIs(t, err, idx.ErrInvalid)
	})

	t.Run("rejects junk", func(t *testing.T) {
		_, err := idx.Parse("not-a-ulid")
		require.ErrorIs(t, err, idx.ErrInvalid)
	})

	t.Run("trims whitespace", func(t *testing.T) {
		id := idx.New()
		parsed, err := idx.Parse("  " + id.String() + "  ")
		require.NoError(t, err)
		require.Equal(t, id, parsed)
	})
}
