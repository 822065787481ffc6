package auth_test

import (
	"testing"
	"time"

	"vinoteca/internal/auth"
	"vinoteca/internal/auth/authtest"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVerifier(t *testing.T, issuer *authtest.Issuer) *auth.Verifier {
	t.Helper()
	v, err := auth.NewVerifier(issuer.PublicPEM(t), issuer.Issuer, issuer.Audience)
	require.NoError(t, err)
	return v
}

func TestVerifyAcceptsValidToken(t *testing.T) {
	issuer := authtest.NewIssuer(t)
	v := newVerifier(t, issuer)

	raw := issuer.Token(t, authtest.TokenOpts{
		Subject: "user-42",
		Email:   "somm@vinoteca.example",
		Name:    "Head Sommelier",
	})

	principal, err := v.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-42", principal.Subject)
	assert.Equal(t, "somm@vinoteca.example", principal.Email)
	assert.Equal(t, "Head Sommelier", principal.Name)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := authtest.NewIssuer(t)
	v := newVerifier(t, issuer)

	raw := issuer.Token(t, authtest.TokenOpts{ExpiresIn: -time.Minute})

	_, err := v.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	issuer := authtest.NewIssuer(t)
	v := newVerifier(t, issuer)

	raw := issuer.Token(t, authtest.TokenOpts{Issuer: "https://evil.test"})

	_, err := v.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsWrongAudience(t *testing.T) {
	issuer := authtest.NewIssuer(t)
	v := newVerifier(t, issuer)

	raw := issuer.Token(t, authtest.TokenOpts{Audience: "other-api"})

	_, err := v.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	issuer := authtest.NewIssuer(t)
	other := authtest.NewIssuer(t)
	v := newVerifier(t, issuer)

	// Same issuer and audience strings, different signing key.
	raw := other.Token(t, authtest.TokenOpts{})

	_, err := v.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsSymmetricAlgorithm(t *testing.T) {
	issuer := authtest.NewIssuer(t)
	v := newVerifier(t, issuer)

	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    issuer.Issuer,
		Audience:  jwt.ClaimStrings{issuer.Audience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("guessable"))
	require.NoError(t, err)

	_, err = v.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	issuer := authtest.NewIssuer(t)
	v := newVerifier(t, issuer)

	claims := jwt.RegisteredClaims{
		Issuer:    issuer.Issuer,
		Audience:  jwt.ClaimStrings{issuer.Audience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(issuer.Key)
	require.NoError(t, err)

	_, err = v.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer := authtest.NewIssuer(t)
	v := newVerifier(t, issuer)

	for _, raw := range []string{"", "not-a-token", "aaa.bbb.ccc"} {
		_, err := v.Verify(raw)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	}
}

func TestNewVerifierRejectsBadPEM(t *testing.T) {
	_, err := auth.NewVerifier([]byte("not pem"), "iss", "aud")
	assert.Error(t, err)
}
