package app

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
	"github.com/kamruz-zzaman/portfolio-v2/internal/service"
	"github.com/kamruz-zzaman/portfolio-v2/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "userID"
	ctxEmail  = "email"
	ctxRole   = "role"
)

type AuthHandler struct {
	authService service.AuthService
	jwtSecret   string
}

func NewAuthHandler(authService service.AuthService, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtSecret:   jwtSecret,
	}
}

// Register handles user registration
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "User created successfully", gin.H{
		"token": resp.Token,
		"user":  resp.User,
	})
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Login successful", gin.H{
		"token": resp.Token,
		"user":  resp.User,
	})
}

// GetMe returns the signed-in user
// GET /api/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	user, err := h.authService.GetMe(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "", gin.H{"user": user})
}

// UpdateProfile changes the signed-in user's name and avatar
// PUT /api/user/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req service.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), c.GetString(ctxUserID), req)
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "Profile updated successfully", gin.H{"user": user})
}

// ChangePassword handles password change
// PUT /api/user/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req service.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), c.GetString(ctxUserID), req); err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "Password updated successfully", nil)
}

// AuthMiddleware rejects requests without a valid bearer token.
func (h *AuthHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			util.Unauthorized(c, "Unauthorized")
			return
		}

		claims, ok := h.parseBearer(authHeader)
		if !ok {
			util.Unauthorized(c, "Unauthorized")
			return
		}

		h.setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is sent and lets
// anonymous requests through. An invalid token is treated as anonymous.
func (h *AuthHandler) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := h.parseBearer(c.GetHeader("Authorization")); ok {
			h.setClaims(c, claims)
		}
		c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware.
func (h *AuthHandler) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxUserID) == "" {
			util.Unauthorized(c, "Unauthorized")
			return
		}
		if !actorFrom(c).IsAdmin() {
			util.Forbidden(c, "Forbidden")
			return
		}
		c.Next()
	}
}

func (h *AuthHandler) parseBearer(header string) (*util.Claims, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return nil, false
	}
	claims, err := util.ValidateToken(parts[1], h.jwtSecret)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// setClaims stores the caller. An admin claim is checked against the stored
// role so a demotion takes effect before the token expires.
func (h *AuthHandler) setClaims(c *gin.Context, claims *util.Claims) {
	role := claims.Role
	if role == model.RoleAdmin {
		role = h.currentRole(c.Request.Context(), claims.UserID)
	}
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxEmail, claims.Email)
	c.Set(ctxRole, role)
}

// currentRole falls back to the user role when the account cannot be read.
func (h *AuthHandler) currentRole(ctx context.Context, userID string) string {
	user, err := h.authService.GetMe(ctx, userID)
	if err != nil {
		if service.KindOf(err) != service.KindNotFound {
			log.Printf("Warning: failed to load role for %s: %v", userID, err)
		}
		return model.RoleUser
	}
	return user.Role
}

// actorFrom returns the caller resolved by the auth middleware. The zero
// Actor means anonymous.
func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{
		UserID: c.GetString(ctxUserID),
		Role:   c.GetString(ctxRole),
	}
}
