package session

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoToken = errors.New("no session token available")

// TokenProvider supplies the bearer token attached to every API call.
// Refresh is owned by whoever issues the token; this layer only reads it.
type TokenProvider interface {
	Token() (string, error)
}

// Static wraps a fixed token string.
type Static string

func (s Static) Token() (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

// File reads the token from a file on every call, so an external login
// flow can rotate it without restarting the process.
type File string

func (f File) Token() (string, error) {
	b, err := os.ReadFile(string(f))
	if err != nil {
		return "", err
	}
	tok := strings.TrimSpace(string(b))
	if tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

// ExpiresWithin reports whether the token's exp claim falls inside d.
// The token is parsed without signature verification: the client never
// validates tokens, it only decides whether a re-login is due. Tokens
// without an exp claim report false.
func ExpiresWithin(tokenStr string, d time.Duration) (bool, error) {
	token, _, err := new(jwt.Parser).ParseUnverified(tokenStr, jwt.MapClaims{})
	if err != nil {
		return false, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false, errors.New("invalid claims")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false, nil
	}
	return time.Until(exp.Time) < d, nil
}

// Subject extracts the sub claim without verifying the signature.
func Subject(tokenStr string) (string, error) {
	token, _, err := new(jwt.Parser).ParseUnverified(tokenStr, jwt.MapClaims{})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return "", err
	}
	return sub, nil
}
