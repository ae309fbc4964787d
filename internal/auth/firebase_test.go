package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFirebase struct {
	token *fbauth.Token
	user  *fbauth.UserRecord
	err   error
}

func (f fakeFirebase) VerifyIDToken(_ context.Context, _ string) (*fbauth.Token, error) {
	return f.token, f.err
}

func (f fakeFirebase) CreateUser(_ context.Context, _ *fbauth.UserToCreate) (*fbauth.UserRecord, error) {
	return f.user, f.err
}

func TestVerifyToken(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		token       string
		client      fakeFirebase
		wantSession domain.Session
		wantError   string
	}{
		{
			name:  "signed in user with email: ok",
			token: "id-token",
			client: fakeFirebase{token: &fbauth.Token{
				UID:      "user-1",
				Firebase: fbauth.FirebaseInfo{SignInProvider: "password"},
				Claims:   map[string]interface{}{"email": "ana@example.com"},
			}},
			wantSession: domain.Session{UserID: "user-1", Email: "ana@example.com", SignedInAt: now},
		},
		{
			name:  "anonymous provider: ok",
			token: "id-token",
			client: fakeFirebase{token: &fbauth.Token{
				UID:      "anon-1",
				Firebase: fbauth.FirebaseInfo{SignInProvider: "anonymous"},
			}},
			wantSession: domain.Session{UserID: "anon-1", Anonymous: true, SignedInAt: now},
		},
		{
			name:      "empty token: error",
			token:     " ",
			wantError: "token is empty",
		},
		{
			name:      "verification fails: error",
			token:     "id-token",
			client:    fakeFirebase{err: errors.New("expired")},
			wantError: "client.VerifyIDToken: expired",
		},
		{
			name:      "empty uid: error",
			token:     "id-token",
			client:    fakeFirebase{token: &fbauth.Token{}},
			wantError: "uid in token is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newFirebaseAuthenticator(tt.client)
			a.now = func() time.Time { return now }

			session, err := a.VerifyToken(t.Context(), tt.token)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.wantSession, session)
		})
	}
}

func TestCreateAnonymous(t *testing.T) {
	a := newFirebaseAuthenticator(fakeFirebase{user: &fbauth.UserRecord{UserInfo: &fbauth.UserInfo{UID: "anon-2"}}})

	session, err := a.CreateAnonymous(t.Context())
	require.NoError(t, err)

	assert.Equal(t, "anon-2", session.UserID)
	assert.True(t, session.Anonymous)
	assert.True(t, session.Valid())
}
