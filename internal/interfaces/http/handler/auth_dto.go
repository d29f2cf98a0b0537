package handler

import (
	"time"

	"github.com/sahelbuild/backend/internal/application/identity"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

type OperatorResponse struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Admin    bool   `json:"admin"`
}

// SessionResponse answers both login and refresh.
type SessionResponse struct {
	Token    TokenResponse    `json:"token"`
	Operator OperatorResponse `json:"operator"`
}

func newSessionResponse(s *identity.Session) SessionResponse {
	t := s.Tokens
	return SessionResponse{
		Token: TokenResponse{
			AccessToken:           t.AccessToken,
			RefreshToken:          t.RefreshToken,
			AccessTokenExpiresAt:  t.AccessTokenExpiresAt,
			RefreshTokenExpiresAt: t.RefreshTokenExpiresAt,
			TokenType:             t.TokenType,
		},
		Operator: OperatorResponse(s.Operator),
	}
}

// CurrentActorResponse describes whoever holds the current token.
type CurrentActorResponse struct {
	Actor     string `json:"actor"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role"`
	Admin     bool   `json:"admin"`
	VehicleID string `json:"vehicle_id,omitempty"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}
