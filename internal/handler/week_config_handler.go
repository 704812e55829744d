package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/databayt/hogwarts-timetable/internal/service"
	appErrors "github.com/databayt/hogwarts-timetable/pkg/errors"
	"github.com/databayt/hogwarts-timetable/pkg/response"
)

// WeekConfigHandler exposes working-week configuration endpoints.
type WeekConfigHandler struct {
	weekConfig *service.WeekConfigService
}

// NewWeekConfigHandler constructs handler.
func NewWeekConfigHandler(weekConfig *service.WeekConfigService) *WeekConfigHandler {
	return &WeekConfigHandler{weekConfig: weekConfig}
}

// Resolve godoc
// @Summary Effective working-week configuration for a term
// @Tags WeekConfig
// @Produce json
// @Param termId query string true "Term id"
// @Success 200 {object} response.Envelope
// @Router /week-config [get]
func (h *WeekConfigHandler) Resolve(c *gin.Context) {
	termID := c.Query("termId")
	if termID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "termId is required"))
		return
	}
	cfg, err := h.weekConfig.Resolve(c.Request.Context(), schoolIDFromContext(c), termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}

// Upsert godoc
// @Summary Create or replace a working-week configuration
// @Tags WeekConfig
// @Accept json
// @Produce json
// @Param payload body service.UpsertWeekConfigRequest true "Configuration payload"
// @Success 200 {object} response.Envelope
// @Router /week-config [put]
func (h *WeekConfigHandler) Upsert(c *gin.Context) {
	var req service.UpsertWeekConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	cfg, err := h.weekConfig.Upsert(c.Request.Context(), schoolIDFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}
