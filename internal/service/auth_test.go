package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupThenLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	token, err := env.auth.Register(ctx, SignupInput{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	res, err := env.auth.Authenticate(ctx, LoginInput{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "a@x.com", res.User.Email)
	assert.False(t, res.User.IsAdmin)

	id, err := env.auth.VerifySession(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id)
}

func TestSignupDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.auth.Register(ctx, SignupInput{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = env.auth.Register(ctx, SignupInput{Email: "a@x.com", Password: "other12"})
	assert.Equal(t, ErrDuplicateEmail, err)
}

func TestSignupValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.auth.Register(ctx, SignupInput{Email: "not-an-email", Password: "123"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Please enter a valid email", verr.Fields["email"])
	assert.Equal(t, "must be at least 6 characters", verr.Fields["password"])
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.signup(t, "a@x.com")

	_, wrongPassword := env.auth.Authenticate(ctx, LoginInput{Email: "a@x.com", Password: "nope123"})
	_, unknownEmail := env.auth.Authenticate(ctx, LoginInput{Email: "b@x.com", Password: "secret1"})

	assert.Equal(t, ErrInvalidCredentials, wrongPassword)
	assert.Equal(t, wrongPassword, unknownEmail)
}

func TestVerifySessionRejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)

	expired, err := env.auth.issueToken("some-id", -time.Minute)
	require.NoError(t, err)

	other := NewAuthService(env.repos.Account, "another-secret", time.Hour, env.log)
	foreign, err := other.issueToken("some-id", time.Hour)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{AccountID: "some-id"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]string{
		"empty":     "",
		"garbage":   "abc.def.ghi",
		"expired":   expired,
		"signature": foreign,
		"alg none":  unsigned,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.auth.VerifySession(token)
			assert.Equal(t, ErrUnauthenticated, err)
		})
	}
}

func TestResolveAccountGone(t *testing.T) {
	env := newTestEnv(t)

	token, err := env.auth.issueToken("deleted-account", time.Hour)
	require.NoError(t, err)

	id, err := env.auth.VerifySession(token)
	require.NoError(t, err)

	_, err = env.auth.ResolveAccount(context.Background(), id)
	assert.Equal(t, ErrAccountGone, err)
}
