package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/civigo/citizen-portal/internal/config"
	"github.com/civigo/citizen-portal/internal/domain"
	"github.com/civigo/citizen-portal/internal/repository"
	"github.com/civigo/citizen-portal/internal/repository/memory"
)

func newAuthService() (*AuthService, repository.UserRepository) {
	users := memory.NewUserRepository()
	cfg := config.AuthConfig{
		JWTSecret:     "test-secret",
		TokenTTLHours: 24,
		BcryptCost:    bcrypt.MinCost,
	}
	return NewAuthService(cfg, users), users
}

func strptr(s string) *string { return &s }

func TestRegisterDefaultsToCitizen(t *testing.T) {
	t.Parallel()
	svc, _ := newAuthService()

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:        "Alice",
		PhoneNumber: "+15550001",
		Password:    "hunter2!",
	})
	require.NoError(t, err)
	require.Equal(t, domain.RoleCitizen, user.Role)
	require.NotEmpty(t, user.ID)
	require.NotEqual(t, "hunter2!", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2!")))
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{PhoneNumber: "+15550001", Password: "x"})
	requireDomainCode(t, err, "VALIDATION_FAILED", 400)

	_, err = svc.Register(ctx, RegisterInput{Name: "Alice", Password: "x"})
	requireDomainCode(t, err, "VALIDATION_FAILED", 400)

	_, err = svc.Register(ctx, RegisterInput{Name: "Alice", PhoneNumber: "+15550001"})
	requireDomainCode(t, err, "VALIDATION_FAILED", 400)
}

func TestRegisterDuplicatePhone(t *testing.T) {
	t.Parallel()
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Alice", PhoneNumber: "+15550001", Password: "x"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "Impostor", PhoneNumber: "+15550001", Password: "y"})
	requireDomainCode(t, err, "CONFLICT", 409)
}

func TestRegisterIdentificationNumberUniqueness(t *testing.T) {
	t.Parallel()
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Name: "Alice", PhoneNumber: "+15550001", Password: "x",
		IdentificationNumber: strptr("ID-1234"),
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{
		Name: "Bob", PhoneNumber: "+15550002", Password: "x",
		IdentificationNumber: strptr("ID-1234"),
	})
	requireDomainCode(t, err, "CONFLICT", 409)

	// absent identification numbers never collide
	_, err = svc.Register(ctx, RegisterInput{Name: "Carol", PhoneNumber: "+15550003", Password: "x"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Name: "Dave", PhoneNumber: "+15550004", Password: "x"})
	require.NoError(t, err)

	// blank strings are stored as absent
	user, err := svc.Register(ctx, RegisterInput{
		Name: "Eve", PhoneNumber: "+15550005", Password: "x",
		IdentificationNumber: strptr("   "),
	})
	require.NoError(t, err)
	require.Nil(t, user.IdentificationNumber)
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()
	svc, _ := newAuthService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{
		Name: "Alice", PhoneNumber: "+15550001", Password: "hunter2!",
	})
	require.NoError(t, err)

	user, token, exp, err := svc.Login(ctx, "+15550001", "hunter2!")
	require.NoError(t, err)
	require.Equal(t, registered.ID, user.ID)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(24*time.Hour), exp, time.Minute)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, registered.ID, claims.UserID)
	require.Equal(t, domain.RoleCitizen, claims.Role)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Name: "Alice", PhoneNumber: "+15550001", Password: "hunter2!",
	})
	require.NoError(t, err)

	_, _, _, errUnknown := svc.Login(ctx, "+15559999", "hunter2!")
	requireDomainCode(t, errUnknown, "UNAUTHORIZED", 401)

	_, _, _, errWrongPass := svc.Login(ctx, "+15550001", "wrong")
	requireDomainCode(t, errWrongPass, "UNAUTHORIZED", 401)

	require.Equal(t, errUnknown.Error(), errWrongPass.Error())
}

func TestPublicUserOmitsCredentials(t *testing.T) {
	t.Parallel()
	svc, _ := newAuthService()

	user, err := svc.Register(context.Background(), RegisterInput{
		Name: "Alice", PhoneNumber: "+15550001", Password: "hunter2!",
	})
	require.NoError(t, err)

	raw, err := json.Marshal(user.Public())
	require.NoError(t, err)
	require.NotContains(t, string(raw), "hunter2!")
	require.NotContains(t, string(raw), user.PasswordHash)
	require.NotContains(t, string(raw), "password")
}
