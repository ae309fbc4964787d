package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

type Authenticator interface {
	VerifyToken(ctx context.Context, token string) (domain.Session, error)
	CreateAnonymous(ctx context.Context) (domain.Session, error)
}
