// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/danielhkuo/quickly-stake/models"
)

var ErrInvalidAssertion = errors.New("invalid identity assertion")

// IdentityProvider vouches for who a caller is. Sessions are only issued
// for identities a provider has verified.
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, assertion string) (models.Identity, error)
}

// AssertionClaims are the claims of a provider-signed identity assertion.
// Subject is the uid.
type AssertionClaims struct {
	DisplayName string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// HMACProvider accepts HS256 assertions signed by the authentication
// provider with a secret shared with this service.
type HMACProvider struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewHMACProvider returns a provider for secret. A non-empty issuer must match
// the assertion's iss claim.
func NewHMACProvider(secret, issuer string) (*HMACProvider, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &HMACProvider{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// WithClock replaces time.Now and returns the provider.
func (p *HMACProvider) WithClock(now func() time.Time) *HMACProvider {
	p.now = now
	return p
}

func (p *HMACProvider) VerifyIdentity(_ context.Context, assertion string) (models.Identity, error) {
	if assertion == "" {
		return models.Identity{}, ErrInvalidAssertion
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
		jwt.WithExpirationRequired(),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	claims := &AssertionClaims{}
	_, err := jwt.ParseWithClaims(assertion, claims,
		func(t *jwt.Token) (interface{}, error) { return p.secret, nil },
		opts...,
	)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
	}

	uid := strings.TrimSpace(claims.Subject)
	if uid == "" {
		return models.Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidAssertion)
	}
	return models.Identity{UID: uid, DisplayName: claims.DisplayName}, nil
}

// SignAssertion signs an assertion for id the way the provider does. It is
// meant for tests and local tooling that stand in for the provider.
func SignAssertion(secret, issuer string, id models.Identity, expiresAt time.Time) (string, error) {
	claims := AssertionClaims{
		DisplayName: id.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign assertion: %w", err)
	}
	return signed, nil
}
