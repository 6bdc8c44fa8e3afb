// Package token issues and verifies the signed bearer tokens used by the
// HTTP API. Tokens are HS256 JWTs valid for 24 hours.
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/carnefacil/carnefacil/internal/clock"
	"github.com/carnefacil/carnefacil/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

const TTL = 24 * time.Hour

type Issuer struct {
	secret []byte
	clock  clock.Clock
}

func NewIssuer(cfg config.Config, clk clock.Clock) (*Issuer, error) {
	if cfg.AuthJWTSecret == "" {
		return nil, errors.New("AUTH_JWT_SECRET is required")
	}
	return &Issuer{
		secret: []byte(cfg.AuthJWTSecret),
		clock:  clk,
	}, nil
}

// Issue signs a token for the account. The subject claim carries the id.
func (i *Issuer) Issue(accountID snowflake.ID) (string, time.Time, error) {
	now := i.clock.Now()
	expiresAt := now.Add(TTL)

	claims := jwt.RegisteredClaims{
		Subject:   accountID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses the token, checks signature and expiry, and returns the
// account id from the subject claim.
func (i *Issuer) Verify(raw string) (snowflake.ID, error) {
	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.clock.Now))
	if err != nil {
		return 0, err
	}
	if !parsed.Valid {
		return 0, errors.New("invalid token")
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return 0, errors.New("missing subject claim")
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ID(id), nil
}
