package auth

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"cv-builder/internal/domain/user"
	"cv-builder/internal/infrastructure/mailer"
	"cv-builder/internal/pkg/jwt"
	"cv-builder/internal/pkg/logger"
	"cv-builder/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc   *Service
	store *memory.Store
	mail  *mailer.Log
	jwt   *jwt.HMACService
	now   *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	f := &fixture{store: memory.NewStore(), mail: mailer.NewLog(logger.Nop()), now: &now}
	clock := func() time.Time { return *f.now }
	f.jwt = jwt.NewHMACService("access", "refresh", 15*time.Minute, 24*time.Hour).WithClock(clock)
	f.svc = NewService(Deps{
		Users:       f.store.Users(),
		Sessions:    f.store.Sessions(),
		Tokens:      f.store.AuthTokens(),
		JWT:         f.jwt,
		Mailer:      f.mail,
		FrontendURL: "http://app.test",
	}).WithClock(clock)
	return f
}

func (f *fixture) register(t *testing.T, email, password string) Result {
	t.Helper()
	res, err := f.svc.Register(context.Background(), RegisterInput{
		Email: email, Password: password, FirstName: "Ada", LastName: "Lovelace",
	})
	require.NoError(t, err)
	return res
}

// tokenFromMail pulls the token query parameter out of the last email to addr.
func (f *fixture) tokenFromMail(t *testing.T, addr string) string {
	t.Helper()
	msg, ok := f.mail.Last(addr)
	require.True(t, ok, "no mail to %s", addr)
	i := strings.Index(msg.Text, "http://app.test")
	require.GreaterOrEqual(t, i, 0)
	link := strings.Fields(msg.Text[i:])[0]
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestRegister_OpensSessionAndSendsVerification(t *testing.T) {
	f := newFixture(t)
	res := f.register(t, "Ada@Example.com", "password-1")

	assert.Equal(t, "ada@example.com", res.User.Email)
	assert.Empty(t, res.User.PasswordHash)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, int64(900), res.ExpiresIn)

	p, err := f.svc.Authenticate(context.Background(), res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.SessionID, p.Session.ID)

	_, err = f.svc.Register(context.Background(), RegisterInput{Email: "ADA@example.com", Password: "password-2"})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	raw := f.tokenFromMail(t, "ada@example.com")
	u, err := f.svc.VerifyEmail(context.Background(), raw)
	require.NoError(t, err)
	assert.True(t, u.IsVerified)

	_, err = f.svc.VerifyEmail(context.Background(), raw)
	assert.ErrorIs(t, err, ErrInvalidToken, "verification tokens are single use")

	assert.ErrorIs(t, f.svc.ResendVerification(context.Background(), u.ID), ErrAlreadyVerified)
}

func TestLogin_WrongPasswordThenSuccess(t *testing.T) {
	f := newFixture(t)
	f.register(t, "a@example.com", "password-1")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.svc.Login(ctx, LoginInput{Email: "a@example.com", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err := f.svc.Login(ctx, LoginInput{Email: "missing@example.com", Password: "password-1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	res, err := f.svc.Login(ctx, LoginInput{Email: "A@example.com", Password: "password-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	require.NotNil(t, res.User.LastLoginAt)
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	f := newFixture(t)
	res := f.register(t, "a@example.com", "password-1")
	require.NoError(t, f.store.Users().SetActive(res.User.ID, false))

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "password-1"})
	assert.ErrorIs(t, err, ErrAccountDisabled)

	_, err = f.svc.Authenticate(context.Background(), res.AccessToken)
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestRefresh_RotatesAndDetectsReuse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.register(t, "a@example.com", "password-1")

	*f.now = f.now.Add(time.Second)
	second, err := f.svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The old token is now a replay.
	_, err = f.svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenReused)

	_, err = f.svc.Authenticate(ctx, second.AccessToken)
	assert.ErrorIs(t, err, ErrSessionRevoked)

	_, err = f.svc.Refresh(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, ErrSessionRevoked)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	f := newFixture(t)
	res := f.register(t, "a@example.com", "password-1")

	_, err := f.svc.Refresh(context.Background(), res.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	_, err = f.svc.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthenticate_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.register(t, "a@example.com", "password-1")

	cases := []struct {
		name  string
		token string
		want  error
	}{
		{"missing", "", ErrMissingToken},
		{"malformed", "abc", ErrTokenMalformed},
		{"refresh token", res.RefreshToken, ErrTokenInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Authenticate(ctx, tc.token)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	other := jwt.NewHMACService("x", "y", time.Minute, time.Hour)
	forged, err := other.GenerateAccessToken(res.User.ID, res.SessionID, "")
	require.NoError(t, err)
	_, err = f.svc.Authenticate(ctx, forged)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	*f.now = f.now.Add(20 * time.Minute)
	_, err = f.svc.Authenticate(ctx, res.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestAuthenticate_ExpiredSessionIsRevoked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.register(t, "a@example.com", "password-1")

	// A fresh access token for a session that has outlived its refresh window.
	*f.now = f.now.Add(25 * time.Hour)
	access, err := f.jwt.GenerateAccessToken(res.User.ID, res.SessionID, res.User.Email)
	require.NoError(t, err)

	_, err = f.svc.Authenticate(ctx, access)
	assert.ErrorIs(t, err, ErrSessionExpired)

	sess, err := f.store.Sessions().GetByID(ctx, res.SessionID)
	require.NoError(t, err)
	assert.True(t, sess.IsRevoked())

	_, err = f.svc.Authenticate(ctx, access)
	assert.ErrorIs(t, err, ErrSessionRevoked)
}

func TestLogoutAndLogoutAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "a@example.com", "password-1")
	b, err := f.svc.Login(ctx, LoginInput{Email: "a@example.com", Password: "password-1"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, a.SessionID))
	_, err = f.svc.Authenticate(ctx, a.AccessToken)
	assert.ErrorIs(t, err, ErrSessionRevoked)

	_, err = f.svc.Authenticate(ctx, b.AccessToken)
	require.NoError(t, err)

	n, err := f.svc.LogoutAll(ctx, a.User.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = f.svc.Authenticate(ctx, b.AccessToken)
	assert.ErrorIs(t, err, ErrSessionRevoked)
}

func TestForgotAndResetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.register(t, "a@example.com", "password-1")

	require.NoError(t, f.svc.ForgotPassword(ctx, "unknown@example.com"))
	require.NoError(t, f.svc.ForgotPassword(ctx, "A@example.com"))

	msg, ok := f.mail.Last("a@example.com")
	require.True(t, ok)
	assert.Equal(t, "Reset your password", msg.Subject)
	raw := f.tokenFromMail(t, "a@example.com")

	require.NoError(t, f.svc.ResetPassword(ctx, raw, "password-2"))
	assert.True(t, errors.Is(f.svc.ResetPassword(ctx, raw, "password-3"), ErrInvalidToken))

	_, err := f.svc.Authenticate(ctx, res.AccessToken)
	assert.ErrorIs(t, err, ErrSessionRevoked, "reset signs out every session")

	_, err = f.svc.Login(ctx, LoginInput{Email: "a@example.com", Password: "password-1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, LoginInput{Email: "a@example.com", Password: "password-2"})
	assert.NoError(t, err)
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a@example.com", "password-1")
	require.NoError(t, f.svc.ForgotPassword(ctx, "a@example.com"))
	raw := f.tokenFromMail(t, "a@example.com")

	*f.now = f.now.Add(61 * time.Minute)
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, raw, "password-2"), ErrInvalidToken)
}

type countingThrottle struct{ seen map[string]bool }

func (c *countingThrottle) SetIfNotExists(_ context.Context, key, _ string, _ time.Duration) (bool, error) {
	if c.seen[key] {
		return false, nil
	}
	c.seen[key] = true
	return true, nil
}

func TestTouch_Throttled(t *testing.T) {
	f := newFixture(t)
	f.svc.throttle = &countingThrottle{seen: map[string]bool{}}
	ctx := context.Background()
	res := f.register(t, "a@example.com", "password-1")

	*f.now = f.now.Add(30 * time.Second)
	require.NoError(t, f.svc.Touch(ctx, res.SessionID))
	first := *f.now

	*f.now = f.now.Add(10 * time.Second)
	require.NoError(t, f.svc.Touch(ctx, res.SessionID))

	sess, err := f.store.Sessions().GetByID(ctx, res.SessionID)
	require.NoError(t, err)
	assert.True(t, sess.LastActivityAt.Equal(first))
}
