package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	signer := NewSigner("s3cret")

	token, err := signer.GenerateToken("sql-assistant", time.Minute)
	require.NoError(t, err)

	claims, err := signer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, RoleAgent, claims.Role)
	assert.Equal(t, "sql-assistant", claims.Subject)
}

func TestValidateRejectsOtherSecret(t *testing.T) {
	token, err := NewSigner("one").GenerateToken("sql-assistant", time.Minute)
	require.NoError(t, err)

	_, err = NewSigner("two").ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	signer := NewSigner("s3cret")
	token, err := signer.GenerateToken("sql-assistant", -time.Minute)
	require.NoError(t, err)

	_, err = signer.ValidateToken(token)
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	tok, err := BearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	_, err = BearerToken("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = BearerToken("Basic dXNlcjpwYXNz")
	assert.ErrorIs(t, err, ErrMissingToken)
}
