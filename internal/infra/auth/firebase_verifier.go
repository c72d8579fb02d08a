// Package auth verifies Firebase ID tokens for the HTTP layer.
package auth

import (
	"context"
	"fmt"

	"lineless/config"
	"lineless/internal/domain/constants"
	"lineless/internal/domain/service"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

type firebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier creates a TokenVerifier backed by Firebase Auth. The
// clients sign in with Firebase and send the resulting ID token as a bearer
// token.
func NewFirebaseVerifier(ctx context.Context, cfg *config.FirebaseConfig) (service.TokenVerifier, error) {
	if cfg == nil {
		return nil, fmt.Errorf("firebase configuration is required for token verification")
	}

	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth client: %w", err)
	}

	return &firebaseVerifier{client: client}, nil
}

// VerifyIDToken validates the token signature and expiry and extracts the
// identity claims.
func (v *firebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (*service.AuthClaims, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	claims := &service.AuthClaims{
		UserID: token.UID,
		Role:   constants.RoleClient,
	}
	if name, ok := token.Claims["name"].(string); ok {
		claims.Name = name
	}
	if role, ok := token.Claims["role"].(string); ok && role != "" {
		claims.Role = role
	}

	return claims, nil
}
