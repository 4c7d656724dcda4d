// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-stake/models"
	"github.com/danielhkuo/quickly-stake/store"
)

// keyRevoked holds signed-out token IDs and their expiry.
const keyRevoked = "revoked"

// RevocationStore persists signed-out token IDs across restarts.
type RevocationStore interface {
	GetJSON(ctx context.Context, key string, v any) (bool, error)
	PutAll(ctx context.Context, records []store.Record) error
}

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrRevokedToken = errors.New("token has been revoked")
	ErrEmptySecret  = errors.New("session secret is empty")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Claims carried by a session token. Subject is the uid.
type Claims struct {
	DisplayName string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 session tokens and remembers which ones
// were signed out.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> expiry
	store   RevocationStore
}

func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Issuer{
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}, nil
}

// WithClock replaces time.Now and returns the issuer.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// UseStore loads persisted revocations from s and writes every later
// sign-out to it.
func (i *Issuer) UseStore(ctx context.Context, s RevocationStore) error {
	loaded := map[string]time.Time{}
	if _, err := s.GetJSON(ctx, keyRevoked, &loaded); err != nil {
		return fmt.Errorf("failed to load revoked sessions: %w", err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	for jti, exp := range loaded {
		if now.Before(exp) {
			i.revoked[jti] = exp
		}
	}
	i.store = s
	return nil
}

// Issue returns a signed token for id.
func (i *Issuer) Issue(id models.Identity) (string, error) {
	now := i.now()
	claims := Claims{
		DisplayName: id.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (i *Issuer) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Verify checks the signature, expiry and revocation of a token.
func (i *Issuer) Verify(tokenString string) (models.Identity, error) {
	claims, err := i.parse(tokenString)
	if err != nil {
		return models.Identity{}, err
	}

	i.mu.Lock()
	_, revoked := i.revoked[claims.ID]
	i.mu.Unlock()
	if revoked {
		return models.Identity{}, ErrRevokedToken
	}

	return models.Identity{UID: claims.Subject, DisplayName: claims.DisplayName}, nil
}

// Revoke signs a token out. Revoking an already revoked token is a no-op.
// With a store attached the revocation is persisted before it applies.
func (i *Issuer) Revoke(ctx context.Context, tokenString string) error {
	claims, err := i.parse(tokenString)
	if err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	next := make(map[string]time.Time, len(i.revoked)+1)
	for jti, exp := range i.revoked {
		if !now.After(exp) {
			next[jti] = exp
		}
	}
	next[claims.ID] = claims.ExpiresAt.Time

	if i.store != nil {
		rec, err := store.JSONRecord(keyRevoked, next)
		if err != nil {
			return err
		}
		if err := i.store.PutAll(ctx, []store.Record{rec}); err != nil {
			return fmt.Errorf("failed to persist revocation: %w", err)
		}
	}
	i.revoked = next
	return nil
}
