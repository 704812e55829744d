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

// SubstitutionHandler exposes substitution-record endpoints.
type SubstitutionHandler struct {
	substitutions *service.SubstitutionService
}

// NewSubstitutionHandler constructs handler.
func NewSubstitutionHandler(substitutions *service.SubstitutionService) *SubstitutionHandler {
	return &SubstitutionHandler{substitutions: substitutions}
}

// List godoc
// @Summary List substitution records
// @Tags Substitutions
// @Produce json
// @Param absenceId query string false "Filter by absence"
// @Param substituteTeacherId query string false "Filter by substitute"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Router /substitutions [get]
func (h *SubstitutionHandler) List(c *gin.Context) {
	filter := models.SubstitutionFilter{
		AbsenceID:           c.Query("absenceId"),
		SubstituteTeacherID: c.Query("substituteTeacherId"),
		Status:              models.SubstitutionStatus(c.Query("status")),
		Page:                queryInt(c, "page", 1),
		PageSize:            queryInt(c, "pageSize", 20),
	}
	// Teachers only ever see their own assignments.
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleTeacher {
		filter.SubstituteTeacherID = claims.TeacherID
	}
	records, pagination, err := h.substitutions.ListRecords(c.Request.Context(), schoolIDFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Respond godoc
// @Summary Confirm or decline a pending substitution
// @Tags Substitutions
// @Accept json
// @Produce json
// @Param id path string true "Record id"
// @Param payload body dto.RespondRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /substitutions/{id}/respond [post]
func (h *SubstitutionHandler) Respond(c *gin.Context) {
	var req dto.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	actorTeacherID := ""
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleTeacher {
		actorTeacherID = claims.TeacherID
	}
	record, err := h.substitutions.Respond(c.Request.Context(), schoolIDFromContext(c), c.Param("id"), actorTeacherID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Reassign godoc
// @Summary Cover a declined occurrence with a new substitute
// @Tags Substitutions
// @Accept json
// @Produce json
// @Param id path string true "Declined record id"
// @Param payload body dto.ReassignRequest true "Reassignment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /substitutions/{id}/reassign [post]
func (h *SubstitutionHandler) Reassign(c *gin.Context) {
	var req dto.ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.substitutions.Reassign(c.Request.Context(), schoolIDFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}
