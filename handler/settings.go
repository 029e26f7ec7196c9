package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ruslamp94/reglament-svetofor-v78/analyzer"
	"github.com/ruslamp94/reglament-svetofor-v78/service"
)

// SettingsHandler exposes the admin configuration surface: zone thresholds
// and the template library.
type SettingsHandler struct {
	settings  *service.Settings
	templates *service.TemplateStore
}

func NewSettingsHandler(settings *service.Settings, templates *service.TemplateStore) *SettingsHandler {
	return &SettingsHandler{settings: settings, templates: templates}
}

// GetThresholds returns the current zone thresholds.
func (h *SettingsHandler) GetThresholds(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings.Thresholds())
}

// UpdateThresholds replaces the zone thresholds.
func (h *SettingsHandler) UpdateThresholds(c *gin.Context) {
	var t analyzer.Thresholds
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.settings.SetThresholds(t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.settings.Thresholds())
}

// ListTemplates returns summaries of every template in the registry,
// built-in and custom.
func (h *SettingsHandler) ListTemplates(c *gin.Context) {
	templates := h.templates.Registry().All()

	result := make([]gin.H, len(templates))
	for i, t := range templates {
		result[i] = gin.H{
			"id":      t.ID,
			"name":    t.Name,
			"code":    t.Code,
			"role":    t.Role,
			"markers": t.Markers,
			"rules":   len(t.Rules),
		}
	}

	c.JSON(http.StatusOK, gin.H{"templates": result})
}

// CreateTemplate validates and stores a custom template. A template with
// a built-in ID overrides the built-in.
func (h *SettingsHandler) CreateTemplate(c *gin.Context) {
	var t analyzer.Template
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.templates.Add(t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": t.ID, "message": "Template saved"})
}
