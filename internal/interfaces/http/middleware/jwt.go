package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/infrastructure/auth"
	"github.com/sahelbuild/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const (
	JWTClaimsKey  = "jwt_claims"
	JWTActorKey   = logger.KeyActor
	JWTRoleKey    = "jwt_role"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

var errNoBearer = errors.New("missing bearer token")

// AuthConfig configures Authenticate.
type AuthConfig struct {
	JWT *auth.JWTService
	// Revocations is consulted after the signature check when set.
	Revocations auth.RevocationList
	// Public paths are served without a token, matched exactly or by prefix.
	Public         []string
	PublicPrefixes []string
	// OnError replaces the 401 response.
	OnError func(c *gin.Context, err error)
	Logger  *zap.Logger
}

// DefaultAuthConfig leaves health probes and the two login flows public.
func DefaultAuthConfig(jwtService *auth.JWTService) AuthConfig {
	return AuthConfig{
		JWT: jwtService,
		Public: []string{
			"/health", "/healthz", "/ready", "/metrics",
			"/api/v1/health",
			"/api/v1/auth/login", "/api/v1/auth/refresh",
			"/api/v1/portal/login",
		},
		Logger: zap.NewNop(),
	}
}

// RequireToken authenticates every non-public route with the default
// configuration.
func RequireToken(jwtService *auth.JWTService) gin.HandlerFunc {
	return Authenticate(DefaultAuthConfig(jwtService))
}

// Authenticate validates the bearer token and stores its claims on the
// context. The actor then flows into request logs and ledger records.
func Authenticate(cfg AuthConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	public := make(map[string]struct{}, len(cfg.Public))
	for _, p := range cfg.Public {
		public[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := public[path]; ok || hasAnyPrefix(path, cfg.PublicPrefixes) {
			c.Next()
			return
		}

		claims, err := authenticate(c, cfg)
		if err != nil {
			cfg.Logger.Warn("Authentication failed", zap.String("path", path), zap.Error(err))
			if cfg.OnError != nil {
				cfg.OnError(c, err)
				return
			}
			code, message := authFailure(err)
			abort(c, http.StatusUnauthorized, code, message)
			return
		}

		setClaims(c, claims)
		cfg.Logger.Debug("Authenticated", zap.String("actor", claims.Actor), zap.String("role", string(claims.Role)))
		c.Next()
	}
}

func authenticate(c *gin.Context, cfg AuthConfig) (*auth.Claims, error) {
	token, err := bearerToken(c.GetHeader(AuthHeaderKey))
	if err != nil {
		return nil, errors.Join(auth.ErrInvalidToken, err)
	}
	claims, err := cfg.JWT.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}
	if cfg.Revocations != nil && isRevoked(c, cfg, claims) {
		return nil, auth.ErrTokenRevoked
	}
	return claims, nil
}

func bearerToken(header string) (string, error) {
	token, ok := strings.CutPrefix(header, BearerPrefix)
	if !ok || strings.TrimSpace(token) == "" {
		return "", errNoBearer
	}
	return token, nil
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// isRevoked fails open: a Redis outage is logged and the token accepted.
func isRevoked(c *gin.Context, cfg AuthConfig, claims *auth.Claims) bool {
	ctx := c.Request.Context()
	if claims.ID != "" {
		revoked, err := cfg.Revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			cfg.Logger.Error("Revocation lookup failed", zap.String("jti", claims.ID), zap.Error(err))
		}
		if revoked {
			return true
		}
	}
	invalidated, err := cfg.Revocations.IsActorInvalidated(ctx, claims.Actor, claims.Issued())
	if err != nil {
		cfg.Logger.Error("Actor invalidation lookup failed", zap.String("actor", claims.Actor), zap.Error(err))
		return false
	}
	return invalidated
}

var authFailures = []struct {
	err           error
	code, message string
}{
	{auth.ErrExpiredToken, "TOKEN_EXPIRED", "Token has expired"},
	{auth.ErrTokenRevoked, "TOKEN_REVOKED", "Token has been revoked"},
	{auth.ErrInvalidTokenType, "INVALID_TOKEN_TYPE", "Invalid token type"},
	{auth.ErrTokenNotYetValid, "TOKEN_NOT_VALID", "Token is not yet valid"},
	{auth.ErrInvalidToken, "INVALID_TOKEN", "Invalid token"},
}

func authFailure(err error) (code, message string) {
	for _, f := range authFailures {
		if errors.Is(err, f.err) {
			return f.code, f.message
		}
	}
	return "UNAUTHORIZED", "Authentication required"
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(JWTActorKey, claims.Actor)
	c.Set(JWTRoleKey, string(claims.Role))

	ctx, _ := logger.WithActor(c.Request.Context(), logger.FromContext(c.Request.Context()), claims.Actor)
	c.Request = c.Request.WithContext(ctx)
}

// requireClaims admits the request when allow accepts its claims and
// answers 403 otherwise.
func requireClaims(message string, allow func(*auth.Claims) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := GetJWTClaims(c); claims == nil || !allow(claims) {
			abort(c, http.StatusForbidden, "FORBIDDEN", message)
			return
		}
		c.Next()
	}
}

// RequireOperator keeps partner tokens on the portal routes.
func RequireOperator() gin.HandlerFunc {
	return requireClaims("Operator access required", func(cl *auth.Claims) bool {
		return cl.Role == auth.RoleOperator
	})
}

func RequireAdmin() gin.HandlerFunc {
	return requireClaims("Admin access required", func(cl *auth.Claims) bool {
		return cl.Role == auth.RoleOperator && cl.Admin
	})
}

func RequirePartner() gin.HandlerFunc {
	return requireClaims("Partner access required", (*auth.Claims).IsPartner)
}

func GetJWTClaims(c *gin.Context) *auth.Claims {
	v, _ := c.Get(JWTClaimsKey)
	claims, _ := v.(*auth.Claims)
	return claims
}

// GetActor is "" on anonymous requests.
func GetActor(c *gin.Context) string {
	return c.GetString(JWTActorKey)
}

// GetActorRole is "operator", "partner" or "".
func GetActorRole(c *gin.Context) string {
	return c.GetString(JWTRoleKey)
}

// GetPartnerVehicleID is the vehicle a portal token was issued to.
func GetPartnerVehicleID(c *gin.Context) (uuid.UUID, bool) {
	claims := GetJWTClaims(c)
	if claims == nil {
		return uuid.Nil, false
	}
	id, err := claims.VehicleUUID()
	return id, err == nil
}

// OptionalAuth sets the claims of a valid token and lets every request
// through.
func OptionalAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := bearerToken(c.GetHeader(AuthHeaderKey)); err == nil {
			if claims, err := jwtService.ValidateAccessToken(token); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}
