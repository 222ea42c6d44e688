package handler

import (
	"net/http"

	"delipos/internal/config"
	"delipos/pkg/response"

	"github.com/gin-gonic/gin"
)

// SettingsHandler exposes the read-only store configuration the frontend
// needs for formatting and credit policy.
type SettingsHandler struct {
	cfg *config.Config
}

func NewSettingsHandler(cfg *config.Config) *SettingsHandler {
	return &SettingsHandler{cfg: cfg}
}

func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/settings", h.GetSettings)
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"locale_hint":          h.cfg.LocaleHint,
		"enforce_credit_limit": h.cfg.EnforceCreditLimit,
	}))
}
