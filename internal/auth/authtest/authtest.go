// Package authtest signs bearer tokens for tests that need to pass
// verification without a real identity provider.
package authtest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer holds a throwaway RSA key pair and the issuer/audience pair a
// test verifier should be configured with.
type Issuer struct {
	Key      *rsa.PrivateKey
	Issuer   string
	Audience string
}

// NewIssuer generates a fresh signing key.
func NewIssuer(t *testing.T) *Issuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	return &Issuer{
		Key:      key,
		Issuer:   "https://idp.test",
		Audience: "vinoteca-api",
	}
}

// PublicPEM returns the verifier-side public key in PEM form.
func (i *Issuer) PublicPEM(t *testing.T) []byte {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(&i.Key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

// TokenOpts tweaks the claims of a signed test token. Zero values fall
// back to a valid token for subject "user-1".
type TokenOpts struct {
	Subject   string
	Email     string
	Name      string
	Issuer    string
	Audience  string
	ExpiresIn time.Duration
}

// Token signs an RS256 token with the given claim overrides.
func (i *Issuer) Token(t *testing.T, opts TokenOpts) string {
	t.Helper()

	if opts.Subject == "" {
		opts.Subject = "user-1"
	}
	if opts.Issuer == "" {
		opts.Issuer = i.Issuer
	}
	if opts.Audience == "" {
		opts.Audience = i.Audience
	}
	if opts.ExpiresIn == 0 {
		opts.ExpiresIn = time.Hour
	}

	now := time.Now()
	claims := struct {
		Email string `json:"email,omitempty"`
		Name  string `json:"name,omitempty"`
		jwt.RegisteredClaims
	}{
		Email: opts.Email,
		Name:  opts.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   opts.Subject,
			Issuer:    opts.Issuer,
			Audience:  jwt.ClaimStrings{opts.Audience},
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(opts.ExpiresIn)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(i.Key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
