package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/databayt/hogwarts-timetable/internal/dto"
	"github.com/databayt/hogwarts-timetable/internal/models"
	"github.com/databayt/hogwarts-timetable/internal/service"
	appErrors "github.com/databayt/hogwarts-timetable/pkg/errors"
	"github.com/databayt/hogwarts-timetable/pkg/response"
)

// SlotHandler exposes slot allocation endpoints.
type SlotHandler struct {
	slots *service.SlotService
}

// NewSlotHandler constructs handler.
func NewSlotHandler(slots *service.SlotService) *SlotHandler {
	return &SlotHandler{slots: slots}
}

// List godoc
// @Summary List timetable slots
// @Tags Slots
// @Produce json
// @Param termId query string false "Filter by term"
// @Param classId query string false "Filter by class"
// @Param teacherId query string false "Filter by teacher"
// @Param classroomId query string false "Filter by classroom"
// @Param day query int false "Filter by day of week (0 = Sunday)"
// @Param periodId query string false "Filter by period"
// @Success 200 {object} response.Envelope
// @Router /slots [get]
func (h *SlotHandler) List(c *gin.Context) {
	filter := models.SlotFilter{
		TermID:      c.Query("termId"),
		ClassID:     c.Query("classId"),
		TeacherID:   c.Query("teacherId"),
		ClassroomID: c.Query("classroomId"),
		DayOfWeek:   queryIntPtr(c, "day"),
		PeriodID:    c.Query("periodId"),
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "pageSize", 20),
		SortBy:      c.Query("sortBy"),
		SortOrder:   c.Query("sortOrder"),
	}
	slots, pagination, err := h.slots.List(c.Request.Context(), schoolIDFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, pagination)
}

// Create godoc
// @Summary Create a timetable slot
// @Tags Slots
// @Accept json
// @Produce json
// @Param payload body dto.SlotCandidate true "Slot payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /slots [post]
func (h *SlotHandler) Create(c *gin.Context) {
	var req dto.SlotCandidate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.slots.Create(c.Request.Context(), schoolIDFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// Update godoc
// @Summary Update a timetable slot
// @Tags Slots
// @Accept json
// @Produce json
// @Param id path string true "Slot id"
// @Param payload body dto.SlotCandidate true "Slot payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /slots/{id} [put]
func (h *SlotHandler) Update(c *gin.Context) {
	var req dto.SlotCandidate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.slots.Update(c.Request.Context(), schoolIDFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Delete godoc
// @Summary Delete a timetable slot
// @Tags Slots
// @Param id path string true "Slot id"
// @Success 204
// @Router /slots/{id} [delete]
func (h *SlotHandler) Delete(c *gin.Context) {
	if err := h.slots.Delete(c.Request.Context(), schoolIDFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
