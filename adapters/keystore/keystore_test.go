package keystore

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	s := New(keyring.NewArrayKeyring(nil))

	_, err := s.Get("gemini")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set("gemini", "g-key"))
	require.NoError(t, s.Set("react", "n-key"))

	got, err := s.Get("gemini")
	require.NoError(t, err)
	assert.Equal(t, "g-key", got)

	require.NoError(t, s.Delete("gemini"))
	_, err = s.Get("gemini")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err = s.Get("react")
	require.NoError(t, err)
	assert.Equal(t, "n-key", got)
}

func TestStore_DeleteMissing(t *testing.T) {
	s := New(keyring.NewArrayKeyring(nil))
	assert.NoError(t, s.Delete("gemini"))
}

func TestStore_SetEmpty(t *testing.T) {
	s := New(keyring.NewArrayKeyring(nil))
	assert.Error(t, s.Set("gemini", ""))
}
