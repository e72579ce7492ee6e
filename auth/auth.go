/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package auth turns a bearer credential into the identity of the caller.
package auth

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/suparena/entityregistry/config"
	"github.com/suparena/entityregistry/errors"
	"github.com/suparena/entityregistry/storagemodels"
)

// Authenticator resolves a credential to an identity or fails with an
// errors.AuthenticationError. No registry state is touched on failure.
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (storagemodels.Identity, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, credential string) (storagemodels.Identity, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, credential string) (storagemodels.Identity, error) {
	return f(ctx, credential)
}

// Claims are the token claims; the subject is the caller identity.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTAuthenticator verifies HS256 tokens and issues them for tooling.
type JWTAuthenticator struct {
	signingKey []byte
	issuer     string
	audience   string
	ttl        time.Duration
	now        func() time.Time
}

// NewJWTAuthenticator builds an authenticator from configuration.
func NewJWTAuthenticator(cfg config.AuthConfig) *JWTAuthenticator {
	return &JWTAuthenticator{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		ttl:        cfg.TokenTTL,
		now:        time.Now,
	}
}

// IssueToken signs a token whose subject is identity.
func (a *JWTAuthenticator) IssueToken(identity storagemodels.Identity) (string, error) {
	if identity == "" {
		return "", errors.NewValidationError("identity", "must not be empty")
	}
	now := a.now()
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   string(identity),
		Issuer:    a.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		ID:        uuid.NewString(),
	}}
	if a.audience != "" {
		claims.Audience = jwt.ClaimStrings{a.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.signingKey)
}

// Authenticate validates the token and returns its subject.
func (a *JWTAuthenticator) Authenticate(_ context.Context, credential string) (storagemodels.Identity, error) {
	if credential == "" {
		return "", errors.NewAuthenticationError("missing credential", nil)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	if a.audience != "" {
		opts = append(opts, jwt.WithAudience(a.audience))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(credential, &claims, func(*jwt.Token) (any, error) {
		return a.signingKey, nil
	}, opts...)
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return "", errors.NewAuthenticationError("token has expired", err)
		}
		return "", errors.NewAuthenticationError("invalid token", err)
	}
	if claims.Subject == "" {
		return "", errors.NewAuthenticationError("token has no subject", nil)
	}
	return storagemodels.Identity(claims.Subject), nil
}
