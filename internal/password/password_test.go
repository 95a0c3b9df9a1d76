package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestEncodeVerify(t *testing.T) {
	enc := NewEncoder(bcrypt.MinCost)

	salt, err := enc.CreateSalt()
	require.NoError(t, err)
	require.Len(t, salt, saltLength*2)

	hash, err := enc.Encode("password123", salt)
	require.NoError(t, err)
	require.NotEqual(t, "password123", hash)

	require.True(t, enc.Verify(hash, "password123", salt))
	require.False(t, enc.Verify(hash, "password124", salt))
	require.False(t, enc.Verify(hash, "password123", "other"))
}

func TestCreateSaltUnique(t *testing.T) {
	enc := NewEncoder(bcrypt.MinCost)
	a, err := enc.CreateSalt()
	require.NoError(t, err)
	b, err := enc.CreateSalt()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestEncodeMultibyte(t *testing.T) {
	enc := NewEncoder(bcrypt.MinCost)
	salt, err := enc.CreateSalt()
	require.NoError(t, err)

	// 32 символа по 3 байта: вместе с солью больше 72 байт
	long := strings.Repeat("パスワード", 6) + "パス"
	require.Len(t, []rune(long), 32)

	for _, pass := range []string{"パスワードパスワードパスワード", long} {
		hash, err := enc.Encode(pass, salt)
		require.NoError(t, err)
		require.True(t, enc.Verify(hash, pass, salt))
		require.False(t, enc.Verify(hash, pass+"x", salt))
	}

	// разные пароли с общим длинным префиксом не совпадают
	hash, err := enc.Encode(long, salt)
	require.NoError(t, err)
	require.False(t, enc.Verify(hash, strings.Repeat("パスワード", 6)+"パワ", salt))
}
