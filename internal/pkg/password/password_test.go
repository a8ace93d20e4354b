package password_test

import (
	"testing"

	"salescore-backend/internal/pkg/password"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := password.Hash("Password1!")
	require.NoError(t, err)
	require.NotEqual(t, "Password1!", hash)

	require.True(t, password.Verify("Password1!", hash))
	require.False(t, password.Verify("password1!", hash))
	require.False(t, password.Verify("", hash))
}

func TestHashIsSalted(t *testing.T) {
	first, err := password.Hash("Password1!")
	require.NoError(t, err)
	second, err := password.Hash("Password1!")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestHashToken(t *testing.T) {
	hash := password.HashToken("reset-token")
	require.Len(t, hash, 64)
	require.Equal(t, hash, password.HashToken("reset-token"))
	require.NotEqual(t, hash, password.HashToken("other-token"))
}

func TestValidateLength(t *testing.T) {
	require.False(t, password.ValidateLength(""))
	require.False(t, password.ValidateLength("1234567"))
	require.True(t, password.ValidateLength("12345678"))
}
