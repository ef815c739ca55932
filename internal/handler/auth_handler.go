package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/introly/introly-backend/internal/middleware"
	"github.com/introly/introly-backend/internal/model"
	"github.com/introly/introly-backend/internal/response"
	"github.com/introly/introly-backend/internal/service"
	"github.com/introly/introly-backend/internal/store"
	"github.com/introly/introly-backend/internal/validator"
)

// AuthHandler handles admin authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	adminStore  store.AdminStore
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, adminStore store.AdminStore) *AuthHandler {
	return &AuthHandler{authService: authService, adminStore: adminStore}
}

// AdminLogin godoc
// POST /api/v1/auth/admin/login
// Exchanges email+password for a JWT.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req model.AdminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin, err := h.adminStore.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrAdminNotFound) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if err := h.authService.CheckPassword(admin.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateAdminToken(admin.ID, admin.TenantID, admin.Email)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"token": token, "admin": admin})
}

// GetAdminProfile godoc
// GET /api/v1/auth/admin/me
// Returns the authenticated admin's profile.
func (h *AuthHandler) GetAdminProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	admin, err := h.adminStore.GetByEmail(c.Request.Context(), claims.Email)
	if err != nil {
		if errors.Is(err, store.ErrAdminNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"admin": admin})
}
