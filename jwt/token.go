package jwt

import (
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/DaihanaA/avanzatech-blog/errors"
)

type Claims struct {
	Username string `json:"username"`
	jwt.StandardClaims
}

// EncodeDecoder issues and verifies the HS256 tokens of the API. The client
// only decodes, the dev server uses both sides.
type EncodeDecoder struct {
	key []byte
}

func NewEncodeDecoder(key []byte) *EncodeDecoder {
	return &EncodeDecoder{
		key: key,
	}
}

func (e *EncodeDecoder) Encode(username string, ttl time.Duration) (string, error) {
	claims := Claims{
		Username: username,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(ttl).Unix(),
			Issuer:    "avanzatech-blog",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(e.key)
}

func (e *EncodeDecoder) Decode(bearer string) (string, error) {
	claims := Claims{}

	token, err := jwt.ParseWithClaims(bearer, &claims, func(token *jwt.Token) (interface{}, error) {
		return e.key, nil
	})
	if err != nil {
		return "", errors.New("invalid token", errors.Unauthorized(), errors.WithCause(err))
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims.Username, nil
	}

	return "", errors.New("could not get claims", errors.Unauthorized())
}

// ExpiresAt extracts the expiry of a token without verifying its signature.
// The client does not hold the signing key, it only needs to know whether a
// refresh is due before spending a round-trip.
func ExpiresAt(bearer string) (time.Time, error) {
	claims := Claims{}

	parser := jwt.Parser{}
	if _, _, err := parser.ParseUnverified(bearer, &claims); err != nil {
		return time.Time{}, errors.New("malformed token", errors.WithCause(err))
	}

	if claims.ExpiresAt == 0 {
		return time.Time{}, nil
	}
	return time.Unix(claims.ExpiresAt, 0), nil
}

// Expired reports whether the token carries an expiry in the past. Tokens
// without an expiry never report expired.
func Expired(bearer string, now time.Time) bool {
	expiresAt, err := ExpiresAt(bearer)
	if err != nil {
		return true
	}
	if expiresAt.IsZero() {
		return false
	}
	return expiresAt.Before(now)
}
