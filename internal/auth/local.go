package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

// LocalAuthenticator issues sessions without an identity provider. The token is taken
// as the user id. It serves the postgres and memory backends in development.
type LocalAuthenticator struct{}

func NewLocalAuthenticator() LocalAuthenticator {
	return LocalAuthenticator{}
}

func (LocalAuthenticator) VerifyToken(_ context.Context, token string) (domain.Session, error) {
	uid := strings.TrimSpace(token)
	if uid == "" {
		return domain.Session{}, fmt.Errorf("token is empty")
	}

	return domain.Session{UserID: uid, SignedInAt: time.Now()}, nil
}

func (LocalAuthenticator) CreateAnonymous(_ context.Context) (domain.Session, error) {
	return domain.Session{
		UserID:     "anon-" + uuid.NewString(),
		Anonymous:  true,
		SignedInAt: time.Now(),
	}, nil
}
