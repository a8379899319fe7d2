package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken("alice", "alice@example.com")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Name)
	require.Equal(t, "alice@example.com", claims.Email)
	require.NotEmpty(t, claims.ID)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken("alice", "alice@example.com")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "other-secret")

	_, err = ValidateToken(token)
	require.Error(t, err)
}

func TestGenerateTokenMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := GenerateToken("alice", "alice@example.com")
	require.Error(t, err)
}
