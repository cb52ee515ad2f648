package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/gsaan/gsaan-backend/internal/app/service"
	apperrors "github.com/gsaan/gsaan-backend/internal/errors"
	"github.com/gsaan/gsaan-backend/internal/middleware"
)

type SettingsController struct {
	settingsService service.SettingsService
}

func NewSettingsController(settingsService service.SettingsService) *SettingsController {
	return &SettingsController{
		settingsService: settingsService,
	}
}

// GetSettings returns the storefront settings
// GET /api/v1/settings
func (ctrl *SettingsController) GetSettings(c *gin.Context) {
	settings, err := ctrl.settingsService.Get()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to load settings", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get settings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateSettings replaces the storefront settings
// PUT /api/v1/admin/settings
func (ctrl *SettingsController) UpdateSettings(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req model.SiteSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid settings request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid settings data")
		return
	}

	settings, err := ctrl.settingsService.Update(&req)
	if err != nil {
		var fields service.FormErrors
		if errors.As(err, &fields) {
			apperrors.RespondWithValidationError(c, fields)
			return
		}
		log.Error("Failed to update settings", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update settings")
		return
	}

	email, _ := middleware.GetUserEmail(c)
	log.Info("Settings updated", map[string]interface{}{
		"updated_by": email,
	})
	c.JSON(http.StatusOK, gin.H{
		"message":  "Settings saved",
		"settings": settings,
	})
}
