package fakeapi

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/ledger/pkg/idx"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// claims mirror the SimpleJWT payload of the real backend.
type claims struct {
	jwt.RegisteredClaims

	TokenType string `json:"token_type"`
	UserID    int64  `json:"user_id"`
}

type signer struct {
	key ed25519.PrivateKey
	pub ed25519.PublicKey
}

func newSigner() (*signer, error) {
	pub, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("fakeapi: generate key: %w", err)
	}
	return &signer{key: key, pub: pub}, nil
}

func (s *signer) sign(userID int64, tokenType string, ttl time.Duration, now time.Time) (string, error) {
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        idx.NewAt(now).String(),
		},
		TokenType: tokenType,
		UserID:    userID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodEdDSA, c).SignedString(s.key)
}

func (s *signer) verify(raw, tokenType string, now time.Time) (*claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)

	var c claims
	if _, err := parser.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return s.pub, nil
	}); err != nil {
		return nil, err
	}
	if c.TokenType != tokenType {
		return nil, errors.New("wrong token type")
	}
	return &c, nil
}
