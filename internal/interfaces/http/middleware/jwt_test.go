package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/infrastructure/auth"
	"github.com/sahelbuild/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		PortalTokenExpiration:  12 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	})
}

func operatorToken(t *testing.T, jwtService *auth.JWTService, admin bool) *auth.TokenPair {
	t.Helper()
	pair, err := jwtService.GenerateTokenPair(auth.OperatorTokenInput{Username: "amina", Name: "Amina Yusuf", Admin: admin})
	require.NoError(t, err)
	return pair
}

func partnerToken(t *testing.T, jwtService *auth.JWTService, vehicleID uuid.UUID) *auth.TokenPair {
	t.Helper()
	pair, err := jwtService.GeneratePartnerToken(auth.PartnerTokenInput{
		VehicleID:   vehicleID,
		VehicleCode: "VEH-00001",
		PartnerName: "Bello Transport",
	})
	require.NoError(t, err)
	return pair
}

func serve(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestAuthenticate_ValidToken(t *testing.T) {
	jwtService := newTestJWTService()
	pair := operatorToken(t, jwtService, false)

	router := gin.New()
	router.Use(RequireToken(jwtService))
	router.GET("/test", func(c *gin.Context) {
		claims := GetJWTClaims(c)
		require.NotNil(t, claims)
		assert.Equal(t, "amina", claims.Actor)
		assert.Equal(t, "amina", GetActor(c))
		assert.Equal(t, "operator", GetActorRole(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	assert.Equal(t, http.StatusOK, serve(router, "/test", pair.AccessToken).Code)
}

func TestAuthenticate_Rejections(t *testing.T) {
	jwtService := newTestJWTService()
	pair := operatorToken(t, jwtService, false)

	expired := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: -time.Minute,
		Issuer:                "test-issuer",
	})
	expiredPair, err := expired.GenerateTokenPair(auth.OperatorTokenInput{Username: "amina"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", "INVALID_TOKEN"},
		{"not bearer", "Basic abc", "INVALID_TOKEN"},
		{"empty bearer", "Bearer ", "INVALID_TOKEN"},
		{"garbage", "Bearer not.a.token", "INVALID_TOKEN"},
		{"expired", "Bearer " + expiredPair.AccessToken, "TOKEN_EXPIRED"},
		{"refresh token as access", "Bearer " + pair.RefreshToken, "INVALID_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(RequireToken(jwtService))
			router.GET("/test", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestAuthenticate_PublicPaths(t *testing.T) {
	router := gin.New()
	router.Use(RequireToken(newTestJWTService()))
	for _, path := range []string{"/health", "/api/v1/auth/login", "/api/v1/portal/login"} {
		router.GET(path, func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
	}

	for _, path := range []string{"/health", "/api/v1/auth/login", "/api/v1/portal/login"} {
		assert.Equal(t, http.StatusOK, serve(router, path, "").Code, path)
	}
}

func TestAuthenticate_Revocations(t *testing.T) {
	ctx := context.Background()
	jwtService := newTestJWTService()

	newRouter := func(revocations auth.RevocationList) *gin.Engine {
		cfg := DefaultAuthConfig(jwtService)
		cfg.Revocations = revocations
		router := gin.New()
		router.Use(Authenticate(cfg))
		router.GET("/test", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return router
	}

	t.Run("revoked jti", func(t *testing.T) {
		revocations := auth.NewMemoryRevocationList()
		pair := operatorToken(t, jwtService, false)
		claims, err := jwtService.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		require.NoError(t, revocations.Revoke(ctx, claims.ID, time.Minute))

		rec := serve(newRouter(revocations), "/test", pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "TOKEN_REVOKED", errorCode(t, rec))
	})

	t.Run("invalidated partner", func(t *testing.T) {
		revocations := auth.NewMemoryRevocationList()
		pair := partnerToken(t, jwtService, uuid.New())
		require.NoError(t, revocations.InvalidateActor(ctx, "vehicle:VEH-00001", time.Hour))

		rec := serve(newRouter(revocations), "/test", pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("other actors unaffected", func(t *testing.T) {
		revocations := auth.NewMemoryRevocationList()
		pair := operatorToken(t, jwtService, false)
		require.NoError(t, revocations.InvalidateActor(ctx, "vehicle:VEH-00001", time.Hour))

		assert.Equal(t, http.StatusOK, serve(newRouter(revocations), "/test", pair.AccessToken).Code)
	})
}

func TestRoleGuards(t *testing.T) {
	jwtService := newTestJWTService()
	vehicleID := uuid.New()

	router := gin.New()
	router.Use(RequireToken(jwtService))
	router.GET("/ops", RequireOperator(), func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/portal", RequirePartner(), func(c *gin.Context) {
		id, ok := GetPartnerVehicleID(c)
		assert.True(t, ok)
		assert.Equal(t, vehicleID, id)
		c.Status(http.StatusOK)
	})

	operator := operatorToken(t, jwtService, false).AccessToken
	admin := operatorToken(t, jwtService, true).AccessToken
	partnerTok := partnerToken(t, jwtService, vehicleID).AccessToken

	tests := []struct {
		path  string
		token string
		want  int
	}{
		{"/ops", operator, http.StatusOK},
		{"/ops", partnerTok, http.StatusForbidden},
		{"/admin", operator, http.StatusForbidden},
		{"/admin", admin, http.StatusOK},
		{"/portal", partnerTok, http.StatusOK},
		{"/portal", admin, http.StatusForbidden},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, serve(router, tt.path, tt.token).Code, tt.path)
	}
}

func TestAuthenticate_CustomOnError(t *testing.T) {
	cfg := DefaultAuthConfig(newTestJWTService())
	var got error
	cfg.OnError = func(c *gin.Context, err error) {
		got = err
		c.AbortWithStatus(http.StatusTeapot)
	}

	router := gin.New()
	router.Use(Authenticate(cfg))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusTeapot, serve(router, "/test", "").Code)
	assert.ErrorIs(t, got, auth.ErrInvalidToken)
}

func TestOptionalAuth(t *testing.T) {
	jwtService := newTestJWTService()
	router := gin.New()
	router.Use(OptionalAuth(jwtService))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetActor(c))
	})

	assert.Equal(t, "", serve(router, "/test", "").Body.String())
	assert.Equal(t, "", serve(router, "/test", "garbage").Body.String())
	assert.Equal(t, "amina", serve(router, "/test", operatorToken(t, jwtService, false).AccessToken).Body.String())
}

func TestGetJWTClaims_NotFound(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetJWTClaims(c))
	assert.Empty(t, GetActor(c))
	_, ok := GetPartnerVehicleID(c)
	assert.False(t, ok)
}

type brokenRevocations struct{ auth.RevocationList }

func (brokenRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func (brokenRevocations) IsActorInvalidated(context.Context, string, time.Time) (bool, error) {
	return false, errors.New("redis down")
}

func TestAuthenticate_RevocationOutageFailsOpen(t *testing.T) {
	jwtService := newTestJWTService()
	cfg := DefaultAuthConfig(jwtService)
	cfg.Revocations = brokenRevocations{}

	router := gin.New()
	router.Use(Authenticate(cfg))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(router, "/test", operatorToken(t, jwtService, false).AccessToken).Code)
}

func TestAuthenticate_PublicPrefixes(t *testing.T) {
	cfg := DefaultAuthConfig(newTestJWTService())
	cfg.PublicPrefixes = []string{"/static/"}

	router := gin.New()
	router.Use(Authenticate(cfg))
	router.GET("/static/logo.png", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/private", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(router, "/static/logo.png", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "/private", "").Code)
}

func TestBearerToken(t *testing.T) {
	token, err := bearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	for _, header := range []string{"", "Bearer", "Bearer   ", "bearer abc", "Token abc"} {
		_, err := bearerToken(header)
		assert.ErrorIs(t, err, errNoBearer, header)
	}
}
