package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rotisserie/eris"
)

// Verifier validates bearer tokens issued by the identity provider and
// extracts the stable owner id carried in the subject claim.
type Verifier struct {
	secret []byte
}

// NewVerifier constructs a verifier for HS256-signed tokens.
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, eris.New("jwt secret is required")
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// OwnerID verifies the token and returns its subject claim.
func (v *Verifier) OwnerID(tokenString string) (string, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", eris.New("token is required")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, eris.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil {
		return "", eris.Wrap(err, "parsing token")
	}
	if !token.Valid {
		return "", eris.New("invalid token")
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return "", eris.Wrap(err, "reading subject claim")
	}
	if subject == "" {
		return "", eris.New("token subject is empty")
	}

	return subject, nil
}
