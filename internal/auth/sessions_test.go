package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nikolayk812/storefront/internal/auth"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	verified  domain.Session
	anonymous domain.Session
	err       error
}

func (f fakeAuthenticator) VerifyToken(_ context.Context, _ string) (domain.Session, error) {
	return f.verified, f.err
}

func (f fakeAuthenticator) CreateAnonymous(_ context.Context) (domain.Session, error) {
	return f.anonymous, f.err
}

func TestSessionsSignIn(t *testing.T) {
	fake := fakeAuthenticator{
		verified:  domain.Session{UserID: "user-1"},
		anonymous: domain.Session{UserID: "anon-1", Anonymous: true},
	}

	tests := []struct {
		name   string
		token  string
		wantID string
	}{
		{name: "token verifies: ok", token: "id-token", wantID: "user-1"},
		{name: "empty token signs in anonymously: ok", token: "", wantID: "anon-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := auth.NewSessions(fake, nil)

			var events []auth.SessionEvent
			unsubscribe := sessions.OnChange(func(ev auth.SessionEvent) { events = append(events, ev) })
			defer unsubscribe()

			session, err := sessions.SignIn(t.Context(), tt.token)
			require.NoError(t, err)

			assert.Equal(t, tt.wantID, session.UserID)
			assert.Equal(t, session, sessions.Current())
			require.Len(t, events, 1)
			assert.Equal(t, auth.SignedIn, events[0].Kind)
		})
	}
}

func TestSessionsSignInError(t *testing.T) {
	sessions := auth.NewSessions(fakeAuthenticator{err: errors.New("boom")}, nil)

	_, err := sessions.SignIn(t.Context(), "id-token")
	require.EqualError(t, err, "auth.VerifyToken: boom")

	assert.False(t, sessions.Current().Valid())
}

func TestSessionsSignOut(t *testing.T) {
	sessions := auth.NewSessions(fakeAuthenticator{verified: domain.Session{UserID: "user-1"}}, nil)

	var kinds []auth.SessionEventKind
	unsubscribe := sessions.OnChange(func(ev auth.SessionEvent) { kinds = append(kinds, ev.Kind) })

	_, err := sessions.SignIn(t.Context(), "id-token")
	require.NoError(t, err)

	sessions.SignOut()
	sessions.SignOut()

	assert.Equal(t, []auth.SessionEventKind{auth.SignedIn, auth.SignedOut}, kinds)
	assert.False(t, sessions.Current().Valid())

	unsubscribe()
	_, err = sessions.SignIn(t.Context(), "id-token")
	require.NoError(t, err)
	assert.Len(t, kinds, 2)
}

func TestLocalAuthenticator(t *testing.T) {
	sessions := auth.NewSessions(auth.NewLocalAuthenticator(), nil)

	session, err := sessions.SignIn(t.Context(), " alice ")
	require.NoError(t, err)
	assert.Equal(t, "alice", session.UserID)
	assert.False(t, session.Anonymous)

	first, err := sessions.SignIn(t.Context(), "")
	require.NoError(t, err)
	second, err := sessions.SignIn(t.Context(), "")
	require.NoError(t, err)

	assert.True(t, first.Anonymous)
	assert.NotEqual(t, first.UserID, second.UserID)
}
