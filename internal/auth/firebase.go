// Package auth issues storefront sessions from Firebase Authentication.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"google.golang.org/api/option"
)

const anonymousProvider = "anonymous"

// firebaseClient is the part of *fbauth.Client used here.
type firebaseClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
	CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error)
}

type FirebaseAuthenticator struct {
	client firebaseClient
	now    func() time.Time
}

// NewFirebaseAuthenticator initialises a Firebase app for projectID and returns its auth adapter.
func NewFirebaseAuthenticator(ctx context.Context, projectID, credentialsFile string) (port.Authenticator, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Auth: %w", err)
	}

	return newFirebaseAuthenticator(client), nil
}

func newFirebaseAuthenticator(client firebaseClient) *FirebaseAuthenticator {
	return &FirebaseAuthenticator{
		client: client,
		now:    time.Now,
	}
}

func (a *FirebaseAuthenticator) VerifyToken(ctx context.Context, token string) (domain.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Session{}, fmt.Errorf("token is empty")
	}

	t, err := a.client.VerifyIDToken(ctx, token)
	if err != nil {
		return domain.Session{}, fmt.Errorf("client.VerifyIDToken: %w", err)
	}

	uid := strings.TrimSpace(t.UID)
	if uid == "" {
		return domain.Session{}, fmt.Errorf("uid in token is empty")
	}

	session := domain.Session{
		UserID:     uid,
		Anonymous:  t.Firebase.SignInProvider == anonymousProvider,
		SignedInAt: a.now(),
	}
	if email, ok := t.Claims["email"].(string); ok {
		session.Email = strings.TrimSpace(email)
	}

	return session, nil
}

// CreateAnonymous registers a user without credentials.
func (a *FirebaseAuthenticator) CreateAnonymous(ctx context.Context) (domain.Session, error) {
	user, err := a.client.CreateUser(ctx, &fbauth.UserToCreate{})
	if err != nil {
		return domain.Session{}, fmt.Errorf("client.CreateUser: %w", err)
	}

	return domain.Session{
		UserID:     user.UID,
		Anonymous:  true,
		SignedInAt: a.now(),
	}, nil
}
