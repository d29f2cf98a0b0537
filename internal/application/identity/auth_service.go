// Package identity signs back-office operators in against the accounts
// listed in configuration.
package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/sahelbuild/backend/internal/infrastructure/auth"
	"github.com/sahelbuild/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var errBadCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")

// dummyHash is compared against for unknown usernames so they take as long
// as a wrong password.
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z1uZ2l8N0xJXWCGJ4wXWBS2a")

type AuthService struct {
	operators   map[string]config.OperatorConfig
	tokens      *auth.JWTService
	revocations auth.RevocationList
	logger      *zap.Logger
}

// NewAuthService indexes operators by lower-cased username. revocations may
// be nil, in which case logout only forgets the token client side.
func NewAuthService(operators []config.OperatorConfig, tokens *auth.JWTService, revocations auth.RevocationList, logger *zap.Logger) *AuthService {
	byName := make(map[string]config.OperatorConfig, len(operators))
	for _, op := range operators {
		byName[strings.ToLower(op.Username)] = op
	}
	return &AuthService{operators: byName, tokens: tokens, revocations: revocations, logger: logger}
}

func (s *AuthService) operator(username string) (config.OperatorConfig, bool) {
	op, ok := s.operators[strings.ToLower(strings.TrimSpace(username))]
	return op, ok
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	log := s.logger.With(zap.String("username", in.Username), zap.String("ip", in.IP))

	op, ok := s.operator(in.Username)
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(in.Password))
		log.Warn("Login for unknown operator")
		return nil, errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(in.Password)); err != nil {
		log.Warn("Login with wrong password")
		return nil, errBadCredentials
	}

	pair, err := s.tokens.GenerateTokenPair(auth.OperatorTokenInput{Username: op.Username, Name: op.Name, Admin: op.Admin})
	if err != nil {
		log.Error("Token signing failed", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}
	log.Info("Operator logged in")
	return &Session{Tokens: pair, Operator: operatorInfo(op)}, nil
}

// Refresh trades a refresh token for a new pair. An operator removed from
// configuration since login is refused.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.logger.Warn("Refresh token rejected", zap.Error(err))
		return nil, tokenError(err)
	}
	op, ok := s.operator(claims.Actor)
	if !ok {
		s.logger.Warn("Refresh for removed operator", zap.String("actor", claims.Actor))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Operator account no longer exists")
	}

	pair, err := s.tokens.RefreshTokenPair(refreshToken)
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.String("actor", claims.Actor), zap.Error(err))
		return nil, tokenError(err)
	}
	return &Session{Tokens: pair, Operator: operatorInfo(op)}, nil
}

// Logout revokes the access token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, in LogoutInput) error {
	s.logger.Info("Operator logout", zap.String("actor", in.Actor))
	if s.revocations == nil || in.TokenJTI == "" || in.Remaining <= 0 {
		return nil
	}
	if err := s.revocations.Revoke(ctx, in.TokenJTI, in.Remaining); err != nil {
		s.logger.Error("Token revocation failed", zap.String("actor", in.Actor), zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to revoke token")
	}
	return nil
}

func operatorInfo(op config.OperatorConfig) OperatorInfo {
	return OperatorInfo{Username: op.Username, Name: op.Name, Admin: op.Admin}
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	case errors.Is(err, auth.ErrPartnerRefresh):
		return shared.NewDomainError("TOKEN_INVALID", "Portal tokens cannot be refreshed")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType):
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	default:
		return shared.NewDomainError("TOKEN_ERROR", "Failed to refresh token")
	}
}
