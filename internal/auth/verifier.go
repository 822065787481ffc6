package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure. Callers get no detail
// about which check failed; logs do.
var ErrInvalidToken = errors.New("invalid token")

// Principal is the authenticated caller as asserted by the identity
// provider.
type Principal struct {
	Subject string
	Email   string
	Name    string
}

// Claims is the token payload the verifier accepts: the registered claims
// plus the profile claims the identity provider adds.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Verifier checks RS256 bearer tokens minted by an external identity
// provider. The service never issues tokens itself.
type Verifier struct {
	key      *rsa.PublicKey
	issuer   string
	audience string
}

// NewVerifier builds a Verifier from the provider's PEM-encoded RSA public
// key.
func NewVerifier(publicKeyPEM []byte, issuer, audience string) (*Verifier, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse jwt public key: %w", err)
	}
	return &Verifier{
		key:      key,
		issuer:   issuer,
		audience: audience,
	}, nil
}

// Verify parses and validates a raw token and returns the caller it
// asserts. Signature, algorithm, expiry, issuer and audience checks all
// fold into ErrInvalidToken.
func (v *Verifier) Verify(raw string) (*Principal, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) {
			if t.Method.Alg() != jwt.SigningMethodRS256.Alg() {
				return nil, errors.New("unexpected signing method")
			}
			return v.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &Principal{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
	}, nil
}
