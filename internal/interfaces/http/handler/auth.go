package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sahelbuild/backend/internal/application/identity"
	"github.com/sahelbuild/backend/internal/interfaces/http/middleware"
)

// AuthHandler serves operator sign-in. Vehicle partners sign in through
// the portal instead.
type AuthHandler struct {
	BaseHandler
	auth *identity.AuthService
}

func NewAuthHandler(auth *identity.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	session, err := h.auth.Login(c.Request.Context(), identity.LoginInput{
		Username: req.Username,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newSessionResponse(session))
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	if !h.bindJSON(c, &req) {
		return
	}
	session, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newSessionResponse(session))
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	err := h.auth.Logout(c.Request.Context(), identity.LogoutInput{
		Actor:     claims.Actor,
		TokenJTI:  claims.ID,
		Remaining: claims.Remaining(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, LogoutResponse{Message: "Logged out successfully"})
}

// Me handles GET /auth/me for operators and partners alike.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	h.Success(c, CurrentActorResponse{
		Actor:     claims.Actor,
		Name:      claims.Name,
		Role:      string(claims.Role),
		Admin:     claims.Admin,
		VehicleID: claims.VehicleID,
	})
}
