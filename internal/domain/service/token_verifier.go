package service

import "context"

// AuthClaims is the verified identity extracted from an ID token.
type AuthClaims struct {
	UserID string
	Name   string
	// Role is either "provider" or "client"; tokens without the custom
	// claim default to "client".
	Role string
}

// TokenVerifier validates bearer tokens presented by the mobile and web
// clients.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*AuthClaims, error)
}
