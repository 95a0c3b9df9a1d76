package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildParse(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)

	tokenString, err := tokens.Build("42")
	require.NoError(t, err)

	memberID, err := tokens.GetMemberID(tokenString)
	require.NoError(t, err)
	require.Equal(t, "42", memberID)
}

func TestParseWrongSecret(t *testing.T) {
	tokenString, err := NewTokens("secret", time.Hour).Build("42")
	require.NoError(t, err)

	_, err = NewTokens("other", time.Hour).GetMemberID(tokenString)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseExpired(t *testing.T) {
	tokenString, err := NewTokens("secret", -time.Minute).Build("42")
	require.NoError(t, err)

	_, err = NewTokens("secret", time.Hour).GetMemberID(tokenString)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseGarbage(t *testing.T) {
	_, err := NewTokens("secret", time.Hour).GetMemberID("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
