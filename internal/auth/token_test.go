package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/civigo/citizen-portal/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:          "user-1",
		Name:        "Alem",
		PhoneNumber: "0911111111",
		Role:        domain.RoleCitizen,
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("test-secret", 24)
	token, exp, err := tm.GenerateToken(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(24*time.Hour), exp, time.Minute)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, domain.RoleCitizen, claims.Role)
	require.Equal(t, "Alem", claims.Name)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("test-secret", 24)
	token, _, err := tm.GenerateToken(testUser())
	require.NoError(t, err)

	other := NewTokenManager("other-secret", 24)
	_, err = other.ParseToken(token)
	require.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("test-secret", 24)
	claims := &Claims{
		UserID: "user-1",
		Role:   domain.RoleCitizen,
		Name:   "Alem",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-25 * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = tm.ParseToken(signed)
	require.Error(t, err)
}

func TestParseTokenRejectsWrongMethod(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("test-secret", 24)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tm.ParseToken(unsigned)
	require.Error(t, err)
}
