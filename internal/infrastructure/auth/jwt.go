// Package auth issues and checks the ledger's JWTs and keeps the revocation
// list.
//
// Operators get an access/refresh pair. Vehicles log in to the portal with
// a PIN and get a single access token; they log in again rather than refresh.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/infrastructure/config"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Role separates back-office operators from consignment partners.
type Role string

const (
	RoleOperator Role = "operator"
	RolePartner  Role = "partner"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrTokenNotYetValid   = errors.New("token is not yet valid")
	ErrMissingActor       = errors.New("missing actor in claims")
	ErrMaxRefreshExceeded = errors.New("maximum refresh count exceeded")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrPartnerRefresh     = errors.New("partner tokens cannot be refreshed")
)

// Claims carry the actor stamped on every ledger mutation: the operator
// username, or "vehicle:{code}" for the portal.
type Claims struct {
	jwt.RegisteredClaims
	Actor        string    `json:"actor"`
	Name         string    `json:"name,omitempty"`
	Role         Role      `json:"role"`
	Admin        bool      `json:"admin,omitempty"`
	VehicleID    string    `json:"vehicle_id,omitempty"`
	TokenType    TokenType `json:"token_type"`
	RefreshCount int       `json:"refresh_count,omitempty"`
}

func (c *Claims) IsPartner() bool { return c.Role == RolePartner }

// VehicleUUID is the vehicle a portal token was issued to.
func (c *Claims) VehicleUUID() (uuid.UUID, error) {
	if !c.IsPartner() {
		return uuid.Nil, ErrInvalidClaims
	}
	return uuid.Parse(c.VehicleID)
}

// Issued is the zero time when the token has no iat.
func (c *Claims) Issued() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// Remaining is how long the token stays valid, never negative.
func (c *Claims) Remaining() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(time.Until(c.ExpiresAt.Time), 0)
}

type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token,omitempty"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at,omitempty"`
	TokenType             string    `json:"token_type"`
}

type OperatorTokenInput struct {
	Username string
	Name     string
	Admin    bool
}

type PartnerTokenInput struct {
	VehicleID   uuid.UUID
	VehicleCode string
	PartnerName string
}

// PartnerActor is the actor recorded for sales made through the portal.
func PartnerActor(vehicleCode string) string {
	return "vehicle:" + vehicleCode
}

// JWTService signs tokens with HS256. Refresh tokens use their own secret
// when one is configured.
type JWTService struct {
	accessKey  []byte
	refreshKey []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	portalTTL  time.Duration
	maxRefresh int
	now        func() time.Time
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	s := &JWTService{
		accessKey:  []byte(cfg.Secret),
		refreshKey: []byte(cfg.RefreshSecret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTokenExpiration,
		refreshTTL: cfg.RefreshTokenExpiration,
		portalTTL:  cfg.PortalTokenExpiration,
		maxRefresh: cfg.MaxRefreshCount,
		now:        time.Now,
	}
	if len(s.refreshKey) == 0 {
		s.refreshKey = s.accessKey
	}
	if s.portalTTL == 0 {
		s.portalTTL = s.accessTTL
	}
	return s
}

// PortalTTL is the lifetime of a portal token, and so how long a vehicle
// revocation has to be remembered.
func (s *JWTService) PortalTTL() time.Duration { return s.portalTTL }

// sign fills the registered claims for subject and signs with key.
func (s *JWTService) sign(c *Claims, key []byte, issued time.Time, ttl time.Duration) (string, time.Time, error) {
	expires := issued.Add(ttl)
	c.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Subject:   c.Actor,
		Audience:  jwt.ClaimStrings{s.issuer},
		IssuedAt:  jwt.NewNumericDate(issued),
		NotBefore: jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(key)
	return signed, expires, err
}

// GenerateTokenPair starts an operator session.
func (s *JWTService) GenerateTokenPair(in OperatorTokenInput) (*TokenPair, error) {
	return s.operatorPair(in, 0)
}

func (s *JWTService) operatorPair(in OperatorTokenInput, refreshCount int) (*TokenPair, error) {
	now := s.now()
	claims := func(t TokenType) *Claims {
		return &Claims{Actor: in.Username, Name: in.Name, Role: RoleOperator, Admin: in.Admin, TokenType: t}
	}

	pair := &TokenPair{TokenType: "Bearer"}
	var err error
	if pair.AccessToken, pair.AccessTokenExpiresAt, err = s.sign(claims(TokenTypeAccess), s.accessKey, now, s.accessTTL); err != nil {
		return nil, err
	}
	refresh := claims(TokenTypeRefresh)
	refresh.RefreshCount = refreshCount
	if pair.RefreshToken, pair.RefreshTokenExpiresAt, err = s.sign(refresh, s.refreshKey, now, s.refreshTTL); err != nil {
		return nil, err
	}
	return pair, nil
}

// GeneratePartnerToken issues the single portal token of a vehicle.
func (s *JWTService) GeneratePartnerToken(in PartnerTokenInput) (*TokenPair, error) {
	claims := &Claims{
		Actor:     PartnerActor(in.VehicleCode),
		Name:      in.PartnerName,
		Role:      RolePartner,
		VehicleID: in.VehicleID.String(),
		TokenType: TokenTypeAccess,
	}
	token, expires, err := s.sign(claims, s.accessKey, s.now(), s.portalTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: token, AccessTokenExpiresAt: expires, TokenType: "Bearer"}, nil
}

func (s *JWTService) ValidateAccessToken(token string) (*Claims, error) {
	return s.parse(token, s.accessKey, TokenTypeAccess)
}

func (s *JWTService) ValidateRefreshToken(token string) (*Claims, error) {
	return s.parse(token, s.refreshKey, TokenTypeRefresh)
}

func (s *JWTService) parse(raw string, key []byte, want TokenType) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	claims := &Claims{}
	_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return key, nil })
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, ErrTokenNotYetValid
	case err != nil:
		return nil, ErrInvalidToken
	}

	switch {
	case claims.TokenType != want:
		return nil, ErrInvalidTokenType
	case strings.TrimSpace(claims.Actor) == "":
		return nil, ErrMissingActor
	case claims.Role != RoleOperator && claims.Role != RolePartner:
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// RefreshTokenPair trades an operator refresh token for a new pair. The
// chain is capped so a stolen refresh token cannot live forever.
func (s *JWTService) RefreshTokenPair(refreshToken string) (*TokenPair, error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Role != RoleOperator {
		return nil, ErrPartnerRefresh
	}
	if claims.RefreshCount >= s.maxRefresh {
		return nil, ErrMaxRefreshExceeded
	}
	return s.operatorPair(OperatorTokenInput{Username: claims.Actor, Name: claims.Name, Admin: claims.Admin}, claims.RefreshCount+1)
}
