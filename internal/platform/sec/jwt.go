// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides token management for the admin surface.
//
// # Architecture
//
// The server only needs the public key to verify admin tokens. The private key
// is read by the CLI when an operator mints a token, so a running server never
// has to hold it.
package sec

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSigningKey is returned when a token is requested from a verify-only service.
var ErrNoSigningKey = errors.New("sec: no private key configured")

// AdminClaims represents the payload embedded inside an admin token.
type AdminClaims struct {
	jwt.RegisteredClaims

	Role string `json:"rol"`
}

// TokenService handles generation and verification of admin tokens using RS256.
type TokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
}

// NewTokenService reads the RSA keys from the provided filesystem paths.
// Either path may be empty; the matching operation is then unavailable.
func NewTokenService(privateKeyPath, publicKeyPath, issuer string) (*TokenService, error) {
	service := &TokenService{issuer: issuer}

	if privateKeyPath != "" {
		privateKeyData, err := os.ReadFile(privateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("sec: failed to read private key from %s: %w", privateKeyPath, err)
		}
		service.privateKey, err = jwt.ParseRSAPrivateKeyFromPEM(privateKeyData)
		if err != nil {
			return nil, fmt.Errorf("sec: failed to parse private key: %w", err)
		}
	}

	if publicKeyPath != "" {
		publicKeyData, err := os.ReadFile(publicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("sec: failed to read public key from %s: %w", publicKeyPath, err)
		}
		service.publicKey, err = jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
		if err != nil {
			return nil, fmt.Errorf("sec: failed to parse public key: %w", err)
		}
	}

	return service, nil
}

// NewTokenServiceFromKeys builds a service from already parsed keys.
func NewTokenServiceFromKeys(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, issuer string) *TokenService {
	return &TokenService{privateKey: privateKey, publicKey: publicKey, issuer: issuer}
}

// CanVerify reports whether a public key is loaded.
func (service *TokenService) CanVerify() bool {
	return service != nil && service.publicKey != nil
}

// GenerateAdminToken creates a signed admin token for subject.
func (service *TokenService) GenerateAdminToken(subject, role string, timeToLive time.Duration) (string, error) {
	if service.privateKey == nil {
		return "", ErrNoSigningKey
	}

	currentTime := time.Now()
	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signedToken, err := token.SignedString(service.privateKey)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature, issuer and expiry of a token string.
func (service *TokenService) VerifyToken(tokenString string) (*AdminClaims, error) {
	if service.publicKey == nil {
		return nil, errors.New("sec: no public key configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.publicKey, nil
	}, jwt.WithIssuer(service.issuer))

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}
