package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gabaylakad/backend/internal/domain"
	"github.com/gabaylakad/backend/internal/repository/memory"
	repoPostgres "github.com/gabaylakad/backend/internal/repository/postgres"
	"github.com/gabaylakad/backend/internal/service"
	"github.com/gabaylakad/backend/internal/testutil"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	svc     *service.AuthService
	db      *testutil.TestDB
	mailer  *testutil.RecordingMailer
	advance func(time.Duration)
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	repos := repoPostgres.NewRepositories(db.DB)
	cfg := testutil.TestConfig()
	mailer := testutil.NewRecordingMailer()

	var mu sync.Mutex
	current := time.Now()
	sessions := memory.NewSessionStoreWithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	})

	return &authFixture{
		svc:    service.NewAuthService(repos.User, repos.Device, sessions, mailer, cfg),
		db:     db,
		mailer: mailer,
		advance: func(d time.Duration) {
			mu.Lock()
			current = current.Add(d)
			mu.Unlock()
		},
	}
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, f.db.DB)

	t.Run("issues session with ten minute access token", func(t *testing.T) {
		result, err := f.svc.Login(ctx, user.Email, password)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.NotEmpty(t, result.AccessToken)
		assert.Len(t, result.RefreshToken, 64) // 32 random bytes, hex encoded

		claims := jwt.MapClaims{}
		_, err = jwt.ParseWithClaims(result.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(testutil.TestConfig().JWTSecret), nil
		})
		require.NoError(t, err)

		assert.Equal(t, user.ID.String(), claims["sub"])
		assert.Equal(t, user.Email, claims["email"])

		iat, _ := claims.GetIssuedAt()
		exp, _ := claims.GetExpirationTime()
		require.NotNil(t, iat)
		require.NotNil(t, exp)
		assert.Equal(t, 10*time.Minute, exp.Sub(iat.Time))
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.svc.Login(ctx, "nobody@example.com", password)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.svc.Login(ctx, user.Email, "not-the-password")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unverified account", func(t *testing.T) {
		pending, pendingPassword := testutil.NewUserBuilder().Unverified().Build(t, f.db.DB)
		_, err := f.svc.Login(ctx, pending.Email, pendingPassword)
		assert.ErrorIs(t, err, domain.ErrNotVerified)
	})
}

func TestAuthService_VerifyAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, f.db.DB)
	result, err := f.svc.Login(ctx, user.Email, password)
	require.NoError(t, err)

	t.Run("valid token returns claims and a renewed token", func(t *testing.T) {
		claims, renewed, err := f.svc.VerifyAccessToken(ctx, result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, user.Email, claims.Email)
		assert.NotEmpty(t, renewed)

		// The renewed token must itself verify.
		_, _, err = f.svc.VerifyAccessToken(ctx, renewed)
		assert.NoError(t, err)
	})

	t.Run("tampered signature", func(t *testing.T) {
		tampered := result.AccessToken[:len(result.AccessToken)-2] + "xx"
		_, _, err := f.svc.VerifyAccessToken(ctx, tampered)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("empty token", func(t *testing.T) {
		_, _, err := f.svc.VerifyAccessToken(ctx, "")
		assert.ErrorIs(t, err, domain.ErrMissingToken)
	})
}

func TestAuthService_RefreshRotation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, f.db.DB)
	first, err := f.svc.Login(ctx, user.Email, password)
	require.NoError(t, err)

	second, err := f.svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEmpty(t, second.AccessToken)

	// The superseded token lingers for one second, then is gone.
	f.advance(2 * time.Second)

	_, err = f.svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrRefreshInvalid)

	// The replacement still works.
	third, err := f.svc.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, second.RefreshToken, third.RefreshToken)
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, f.db.DB)
	result, err := f.svc.Login(ctx, user.Email, password)
	require.NoError(t, err)

	t.Run("revokes access and refresh", func(t *testing.T) {
		_, _, err := f.svc.VerifyAccessToken(ctx, result.AccessToken)
		require.NoError(t, err)

		require.NoError(t, f.svc.Logout(ctx, result.AccessToken, result.RefreshToken))

		_, _, err = f.svc.VerifyAccessToken(ctx, result.AccessToken)
		assert.ErrorIs(t, err, domain.ErrTokenRevoked)

		_, err = f.svc.Refresh(ctx, result.RefreshToken)
		assert.ErrorIs(t, err, domain.ErrRefreshInvalid)
	})

	t.Run("revocation outlives the one second rotation window", func(t *testing.T) {
		f.advance(5 * time.Second)
		_, _, err := f.svc.VerifyAccessToken(ctx, result.AccessToken)
		assert.ErrorIs(t, err, domain.ErrTokenRevoked)
	})

	t.Run("undecodable token is rejected", func(t *testing.T) {
		err := f.svc.Logout(ctx, "not-a-jwt", "")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})
}

func TestAuthService_Register(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	input := service.RegisterInput{
		FirstName:       "Maria",
		LastName:        "Santos",
		Email:           "maria@example.com",
		PhoneNumber:     "+639171234567",
		ImpairmentLevel: "total",
		Password:        "strongpassword1",
		BlindFullName:   "Jose Santos",
		BlindAge:        67,
		SerialNumber:    "GL-0001",
	}

	user, err := f.svc.Register(ctx, input)
	require.NoError(t, err)
	assert.False(t, user.Verified)

	t.Run("sends a six digit verification code", func(t *testing.T) {
		code := f.mailer.CodeFor(input.Email)
		assert.Len(t, code, 6)
	})

	t.Run("bound serial is rejected", func(t *testing.T) {
		other := input
		other.Email = "other@example.com"
		_, err := f.svc.Register(ctx, other)
		assert.ErrorIs(t, err, domain.ErrSerialTaken)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		dup := input
		dup.SerialNumber = "GL-0002"
		_, err := f.svc.Register(ctx, dup)
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
	})

	t.Run("verification unlocks login", func(t *testing.T) {
		_, err := f.svc.Login(ctx, input.Email, input.Password)
		assert.ErrorIs(t, err, domain.ErrNotVerified)

		code := f.mailer.CodeFor(input.Email)
		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		assert.ErrorIs(t, f.svc.VerifyEmail(ctx, input.Email, wrong), domain.ErrCodeInvalid)

		require.NoError(t, f.svc.VerifyEmail(ctx, input.Email, code))

		result, err := f.svc.Login(ctx, input.Email, input.Password)
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
	})
}

func TestAuthService_PasswordReset(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, f.db.DB)

	require.NoError(t, f.svc.ForgotPassword(ctx, user.Email))
	token := f.mailer.ResetTokenFor(user.Email)
	require.NotEmpty(t, token)

	t.Run("unknown address is not an error", func(t *testing.T) {
		assert.NoError(t, f.svc.ForgotPassword(ctx, "nobody@example.com"))
	})

	t.Run("bad token", func(t *testing.T) {
		err := f.svc.ResetPassword(ctx, "bogus-token", "newpassword123")
		assert.ErrorIs(t, err, domain.ErrResetInvalid)
	})

	t.Run("valid token swaps the password", func(t *testing.T) {
		require.NoError(t, f.svc.ResetPassword(ctx, token, "newpassword123"))

		result, err := f.svc.Login(ctx, user.Email, "newpassword123")
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)

		// The token is single use.
		err = f.svc.ResetPassword(ctx, token, "anotherpassword1")
		assert.ErrorIs(t, err, domain.ErrResetInvalid)
	})
}
