package secrets

import (
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempDataHome(t *testing.T) {
	t.Helper()
	t.Setenv("EXCH_QUIET", "1")
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)
}

func TestFileStoreRoundTrip(t *testing.T) {
	tempDataHome(t)

	s, err := NewFileStore("hunter2")
	require.NoError(t, err)

	_, err = s.Get("password_alice@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set("password_alice@example.com", "secret"))

	got, err := s.Get("password_alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "secret", got)

	keys, err := s.List()
	require.NoError(t, err)
	assert.Contains(t, keys, "password_alice@example.com")

	require.NoError(t, s.Delete("password_alice@example.com"))
	assert.ErrorIs(t, s.Delete("password_alice@example.com"), ErrNotFound)
}

func TestFileStoreWrongPassword(t *testing.T) {
	tempDataHome(t)

	s, err := NewFileStore("hunter2")
	require.NoError(t, err)
	require.NoError(t, s.Set("password_a", "secret"))

	other, err := NewFileStore("not-hunter2")
	require.NoError(t, err)

	_, err = other.Get("password_a")
	assert.Error(t, err)
}
