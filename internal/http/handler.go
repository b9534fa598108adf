package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shinoburc/drivelog-export/internal/http/middleware"
	"github.com/shinoburc/drivelog-export/internal/model"
	"github.com/shinoburc/drivelog-export/internal/service"
)

type Handler struct {
	exports  *service.ExportService
	settings *service.SettingsService
	log      zerolog.Logger
}

func NewHandler(exports *service.ExportService, settings *service.SettingsService, log zerolog.Logger) *Handler {
	return &Handler{exports: exports, settings: settings, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/exports", h.runExport)
	protected.POST("/exports/excel", h.runExcelExport)
	protected.GET("/exports/progress", h.exportProgress)
	protected.POST("/exports/cancel", h.cancelExport)
	protected.GET("/exports/history", h.exportHistory)
	protected.GET("/exports/history/report", h.exportHistoryReport)

	protected.GET("/settings/export", h.getSettings)
	protected.PUT("/settings/export", h.putSettings)

	protected.GET("/presets", h.listPresets)
	protected.POST("/presets", h.savePreset)
	protected.DELETE("/presets/:id", h.deletePreset)
	protected.POST("/presets/:id/default", h.setDefaultPreset)
	protected.POST("/presets/:id/use", h.markPresetUsed)
}

type exportRequest struct {
	PresetID *string               `json:"preset_id,omitempty"`
	Settings *model.ExportSettings `json:"settings,omitempty"`
}

// resolveSettings picks inline settings, a preset by id, or the stored
// settings (falling back to defaults), in that order.
func (h *Handler) resolveSettings(c *gin.Context, req exportRequest) (model.ExportSettings, bool) {
	if req.Settings != nil {
		return *req.Settings, true
	}
	if req.PresetID != nil {
		id, err := uuid.Parse(*req.PresetID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid preset_id"})
			return model.ExportSettings{}, false
		}
		preset, err := h.settings.GetPreset(c.Request.Context(), id)
		if err != nil {
			h.handleError(c, err)
			return model.ExportSettings{}, false
		}
		if err := h.settings.MarkPresetUsed(c.Request.Context(), id); err != nil {
			h.log.Warn().Err(err).Str("preset_id", id.String()).Msg("failed to record preset use")
		}
		return preset.Settings, true
	}
	settings, err := h.settings.LoadOrDefault(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return model.ExportSettings{}, false
	}
	return settings, true
}

func (h *Handler) runExport(c *gin.Context) {
	var req exportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	settings, ok := h.resolveSettings(c, req)
	if !ok {
		return
	}

	output, err := h.exports.RunCSVExport(c.Request.Context(), settings)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if !output.Result.Success {
		c.JSON(http.StatusUnprocessableEntity, output.Result)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if settings.Format.Encoding == model.EncodingShiftJIS {
		contentType = "text/csv; charset=shift_jis"
	}
	c.Header("Content-Disposition", "attachment; filename=\""+output.Filename+"\"")
	c.Data(http.StatusOK, contentType, output.Content)
}

func (h *Handler) runExcelExport(c *gin.Context) {
	var req exportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	settings, ok := h.resolveSettings(c, req)
	if !ok {
		return
	}

	output, err := h.exports.RunExcelExport(c.Request.Context(), settings)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+output.Filename+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", output.Content)
}

func (h *Handler) exportProgress(c *gin.Context) {
	progress, active := h.exports.Progress()
	c.JSON(http.StatusOK, gin.H{"active": active, "progress": progress})
}

func (h *Handler) cancelExport(c *gin.Context) {
	if !h.exports.IsExporting() {
		c.JSON(http.StatusConflict, gin.H{"error": "no export in progress"})
		return
	}
	h.exports.Cancel()
	c.JSON(http.StatusAccepted, gin.H{"status": "cancelling"})
}

func (h *Handler) exportHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}
	entries, err := h.exports.History(c.Request.Context(), limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *Handler) exportHistoryReport(c *gin.Context) {
	content, filename, err := h.exports.HistoryReport(c.Request.Context(), 0)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Data(http.StatusOK, "application/pdf", content)
}

func (h *Handler) getSettings(c *gin.Context) {
	settings, err := h.settings.LoadOrDefault(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *Handler) putSettings(c *gin.Context) {
	var settings model.ExportSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.settings.Save(c.Request.Context(), settings); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *Handler) listPresets(c *gin.Context) {
	presets, err := h.settings.ListPresets(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"presets": presets})
}

type savePresetRequest struct {
	ID        *string              `json:"id,omitempty"`
	Name      string               `json:"name" binding:"required"`
	Settings  model.ExportSettings `json:"settings"`
	IsDefault bool                 `json:"is_default"`
}

func (h *Handler) savePreset(c *gin.Context) {
	var req savePresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	preset := model.ExportPreset{
		Name:      req.Name,
		Settings:  req.Settings,
		IsDefault: req.IsDefault,
	}
	if req.ID != nil {
		id, err := uuid.Parse(*req.ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		preset.ID = id
	}

	saved, err := h.settings.SavePreset(c.Request.Context(), preset)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) deletePreset(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.settings.DeletePreset(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) setDefaultPreset(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.settings.SetDefaultPreset(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) markPresetUsed(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.settings.MarkPresetUsed(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
