package controller

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSettingsRoutes(e *testEnv) {
	ctrl := NewSettingsController(e.settings)
	e.router.GET("/settings", ctrl.GetSettings)
	e.router.PUT("/admin/settings", asAdmin, ctrl.UpdateSettings)
}

func TestSettingsController_GetDefaults(t *testing.T) {
	env := setupTestEnv(t)
	setupSettingsRoutes(env)

	w := performRequest(env.router, "GET", "/settings", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	settings := decodeBody(t, w)["settings"].(map[string]interface{})
	business := settings["business"].(map[string]interface{})
	delivery := settings["delivery"].(map[string]interface{})
	assert.Equal(t, "GSAAN Products", business["name"])
	assert.Equal(t, "918300051198", business["whatsapp_number"])
	assert.Equal(t, float64(499), delivery["free_delivery_threshold"])
	assert.Equal(t, float64(49), delivery["default_delivery_charge"])
}

func TestSettingsController_Update(t *testing.T) {
	env := setupTestEnv(t)
	setupSettingsRoutes(env)

	w := performRequest(env.router, "PUT", "/admin/settings", gin.H{
		"business": gin.H{
			"name":            "GSAAN Products",
			"whatsapp_number": "+91 83000 51198",
		},
		"delivery": gin.H{
			"free_delivery_threshold": 799,
			"default_delivery_charge": 60,
			"serviceable_pincodes":    []string{"636001", "636002"},
		},
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = performRequest(env.router, "GET", "/settings", nil, "")
	settings := decodeBody(t, w)["settings"].(map[string]interface{})
	assert.Equal(t, "918300051198", settings["business"].(map[string]interface{})["whatsapp_number"])
	assert.Equal(t, float64(799), settings["delivery"].(map[string]interface{})["free_delivery_threshold"])

	policy := env.settings.Policy()
	assert.Equal(t, int64(799), policy.FreeDeliveryThreshold)
	assert.Equal(t, int64(60), policy.DeliveryCharge)
}

func TestSettingsController_Update_ValidationErrors(t *testing.T) {
	env := setupTestEnv(t)
	setupSettingsRoutes(env)

	w := performRequest(env.router, "PUT", "/admin/settings", gin.H{
		"business": gin.H{"name": "", "whatsapp_number": "123"},
		"delivery": gin.H{
			"default_delivery_charge": -1,
			"serviceable_pincodes":    []string{"63600"},
		},
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	fields := decodeBody(t, w)["fields"].(map[string]interface{})
	assert.Contains(t, fields, "business.name")
	assert.Contains(t, fields, "business.whatsapp_number")
	assert.Contains(t, fields, "delivery.default_delivery_charge")
	assert.Contains(t, fields, "delivery.serviceable_pincodes")
}
