package middleware

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"

	"github.com/anonto42/campus-connect/backend/internal/models"
)

// TokenVerifier verifies Firebase ID tokens; *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseUserLookup maps a Firebase UID to a local user.
type FirebaseUserLookup interface {
	GetByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
}

// WithFirebase also accepts Firebase ID tokens for users already linked
// to a Firebase account.
func (a *TokenAuth) WithFirebase(verifier TokenVerifier, users FirebaseUserLookup) *TokenAuth {
	a.firebase = verifier
	a.users = users
	return a
}

func (a *TokenAuth) resolveFirebase(ctx context.Context, idToken string) (string, error) {
	token, err := a.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("verify firebase token: %w", err)
	}
	user, err := a.users.GetByFirebaseUID(ctx, token.UID)
	if err != nil {
		return "", fmt.Errorf("firebase user %s: %w", token.UID, err)
	}
	return user.ID, nil
}
