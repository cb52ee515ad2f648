package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gsaan/gsaan-backend/internal/app/service"
	apperrors "github.com/gsaan/gsaan-backend/internal/errors"
	"github.com/gsaan/gsaan-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// signInStatus maps a sign-in failure to its HTTP status and error code.
func signInStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusUnauthorized, apperrors.AuthUserNotFound
	case errors.Is(err, service.ErrWrongPassword):
		return http.StatusUnauthorized, apperrors.AuthWrongPassword
	case errors.Is(err, service.ErrInvalidEmail):
		return http.StatusBadRequest, apperrors.AuthInvalidEmail
	case errors.Is(err, service.ErrUserDisabled):
		return http.StatusForbidden, apperrors.AuthUserDisabled
	case errors.Is(err, service.ErrTooManyRequests):
		return http.StatusTooManyRequests, apperrors.AuthTooManyRequests
	case errors.Is(err, service.ErrNotAdmin):
		return http.StatusForbidden, apperrors.AuthzAdminOnly
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, apperrors.AuthTokenInvalid
	}
	return http.StatusInternalServerError, apperrors.InternalServerError
}

// Login handles admin sign-in
// POST /api/v1/admin/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Email and password are required")
		return
	}

	session, err := ctrl.authService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		status, code := signInStatus(err)
		if status == http.StatusInternalServerError {
			log.Error("Login failed", err, map[string]interface{}{
				"email": req.Email,
			})
		}
		apperrors.RespondWithError(c, status, code, service.SignInMessage(err))
		return
	}

	log.Info("Login successful", map[string]interface{}{
		"user_id": session.User.ID,
		"role":    session.Profile.Role,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":  "Login successful",
		"user":     session.User,
		"profile":  session.Profile,
		"is_admin": session.IsAdmin,
		"tokens":   session.Tokens,
	})
}

// Logout revokes the current access token
// POST /api/v1/admin/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if err := ctrl.authService.SignOut(c.Request.Context(), middleware.GetToken(c)); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Invalid authentication token")
			return
		}
		log.Error("Logout failed", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Refresh exchanges a refresh token for a new pair
// POST /api/v1/admin/auth/refresh
func (ctrl *AuthController) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "refresh_token is required")
		return
	}

	tokens, err := ctrl.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		status, code := signInStatus(err)
		if status == http.StatusInternalServerError {
			middleware.GetLoggerFromContext(c).Error("Token refresh failed", err)
		}
		apperrors.RespondWithError(c, status, code, service.SignInMessage(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// GetMe returns the signed-in admin
// GET /api/v1/admin/auth/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	session, err := ctrl.authService.Me(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.AuthUserNotFound, "User not found")
			return
		}
		log.Error("Failed to load admin", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":     session.User,
		"profile":  session.Profile,
		"is_admin": session.IsAdmin,
	})
}
