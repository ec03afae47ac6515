package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dishuflix/internal/config"
)

func openAll(t *testing.T) map[string]Storage {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := NewSQLiteStorage(filepath.Join(dir, "db", "slots.db"))
	require.NoError(t, err)

	bdg, err := NewBadgerStorage(filepath.Join(dir, "badger"))
	require.NoError(t, err)

	stores := map[string]Storage{
		"sqlite": sqlite,
		"badger": bdg,
		"memory": NewMemoryStorage(),
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestStorage_RoundTrip(t *testing.T) {
	for name, s := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get("dishuflix_username")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set("dishuflix_username", "Asha"))
			v, ok, err := s.Get("dishuflix_username")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "Asha", v)

			require.NoError(t, s.Set("dishuflix_username", "Raj"))
			v, _, err = s.Get("dishuflix_username")
			require.NoError(t, err)
			assert.Equal(t, "Raj", v, "set overwrites")

			require.NoError(t, s.Delete("dishuflix_username"))
			_, ok, err = s.Get("dishuflix_username")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSQLiteStorage_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.db")

	s, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("dishuflix_paymentStatus", "success"))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStorage(path)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get("dishuflix_paymentStatus")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "success", v)
}

func TestMemoryStorage_ClosedReturnsError(t *testing.T) {
	s := NewMemoryStorage()
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Set("k", "v"), ErrClosed)
	_, _, err := s.Get("k")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOpen(t *testing.T) {
	s, err := Open(config.StorageConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, s)

	_, err = Open(config.StorageConfig{Driver: "etcd"})
	assert.Error(t, err)
}
