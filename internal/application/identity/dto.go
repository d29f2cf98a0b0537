package identity

import (
	"time"

	"github.com/sahelbuild/backend/internal/infrastructure/auth"
)

type LoginInput struct {
	Username string
	Password string
	IP       string
}

// OperatorInfo is the configured account behind a session.
type OperatorInfo struct {
	Username string
	Name     string
	Admin    bool
}

// Session is what login and refresh hand back: a fresh token pair and the
// operator it was issued to.
type Session struct {
	Tokens   *auth.TokenPair
	Operator OperatorInfo
}

// LogoutInput names the access token to revoke and how long it would
// still have been valid.
type LogoutInput struct {
	Actor     string
	TokenJTI  string
	Remaining time.Duration
}
