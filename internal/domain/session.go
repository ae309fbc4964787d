package domain

import (
	"errors"
	"time"
)

var ErrNoSession = errors.New("no active session")

// Session is issued by the authentication provider. Cart storage is keyed by UserID.
type Session struct {
	UserID     string
	Anonymous  bool
	Email      string
	SignedInAt time.Time
}

func (s Session) Valid() bool {
	return s.UserID != ""
}
