package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMissingSecret = errors.New("tokens: signing secret is empty")

// Claims is the payload of a signed session token. Subject carries the user id.
type Claims struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Encode signs c with HS256. IssuedAt and ExpiresAt are set from ttl.
func Encode(secret string, c *Claims, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	now := time.Now()
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return jt.SignedString([]byte(secret))
}

// Decode verifies the signature and expiry of raw and returns its claims.
// Only HMAC signed tokens are accepted.
func Decode(secret, raw string) (*Claims, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	var c Claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	return &c, nil
}
