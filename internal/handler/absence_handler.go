package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/databayt/hogwarts-timetable/internal/dto"
	"github.com/databayt/hogwarts-timetable/internal/models"
	"github.com/databayt/hogwarts-timetable/internal/service"
	appErrors "github.com/databayt/hogwarts-timetable/pkg/errors"
	"github.com/databayt/hogwarts-timetable/pkg/response"
)

// AbsenceHandler exposes teacher-absence endpoints.
type AbsenceHandler struct {
	substitutions *service.SubstitutionService
}

// NewAbsenceHandler constructs handler.
func NewAbsenceHandler(substitutions *service.SubstitutionService) *AbsenceHandler {
	return &AbsenceHandler{substitutions: substitutions}
}

// Report godoc
// @Summary Report a teacher absence
// @Tags Absences
// @Accept json
// @Produce json
// @Param payload body dto.ReportAbsenceRequest true "Absence payload"
// @Success 201 {object} response.Envelope
// @Router /absences [post]
func (h *AbsenceHandler) Report(c *gin.Context) {
	var req dto.ReportAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	absence, err := h.substitutions.ReportAbsence(c.Request.Context(), schoolIDFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, absence)
}

// List godoc
// @Summary List teacher absences
// @Tags Absences
// @Produce json
// @Param teacherId query string false "Filter by teacher"
// @Param status query string false "Filter by status"
// @Param from query string false "Overlap window start (RFC 3339 date)"
// @Param to query string false "Overlap window end (RFC 3339 date)"
// @Success 200 {object} response.Envelope
// @Router /absences [get]
func (h *AbsenceHandler) List(c *gin.Context) {
	filter := models.AbsenceFilter{
		TeacherID: c.Query("teacherId"),
		Status:    models.AbsenceStatus(c.Query("status")),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "pageSize", 20),
	}
	if from, err := time.Parse("2006-01-02", c.Query("from")); err == nil {
		filter.From = &from
	}
	if to, err := time.Parse("2006-01-02", c.Query("to")); err == nil {
		filter.To = &to
	}
	absences, pagination, err := h.substitutions.ListAbsences(c.Request.Context(), schoolIDFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, absences, pagination)
}

// Get godoc
// @Summary Fetch one absence
// @Tags Absences
// @Produce json
// @Param id path string true "Absence id"
// @Success 200 {object} response.Envelope
// @Router /absences/{id} [get]
func (h *AbsenceHandler) Get(c *gin.Context) {
	absence, err := h.substitutions.GetAbsence(c.Request.Context(), schoolIDFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, absence, nil)
}

// Approve godoc
// @Summary Approve an absence and seed substitution records
// @Tags Absences
// @Accept json
// @Produce json
// @Param id path string true "Absence id"
// @Param payload body dto.ApproveAbsenceRequest true "Approval payload"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /absences/{id}/approve [post]
func (h *AbsenceHandler) Approve(c *gin.Context) {
	var req dto.ApproveAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	records, err := h.substitutions.ApproveAbsence(c.Request.Context(), schoolIDFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Cancel godoc
// @Summary Cancel an absence, cascading to pending substitutions
// @Tags Absences
// @Produce json
// @Param id path string true "Absence id"
// @Success 200 {object} response.Envelope
// @Router /absences/{id}/cancel [post]
func (h *AbsenceHandler) Cancel(c *gin.Context) {
	cancelled, err := h.substitutions.CancelAbsence(c.Request.Context(), schoolIDFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"cancelled_records": cancelled}, nil)
}

// Progress godoc
// @Summary Substitution coverage summary for an absence
// @Tags Absences
// @Produce json
// @Param id path string true "Absence id"
// @Success 200 {object} response.Envelope
// @Router /absences/{id}/progress [get]
func (h *AbsenceHandler) Progress(c *gin.Context) {
	progress, err := h.substitutions.Progress(c.Request.Context(), schoolIDFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}
