package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/databayt/hogwarts-timetable/internal/dto"
	"github.com/databayt/hogwarts-timetable/internal/service"
	appErrors "github.com/databayt/hogwarts-timetable/pkg/errors"
	"github.com/databayt/hogwarts-timetable/pkg/response"
)

// TimetableHandler exposes the weekly grid views and the PDF export.
type TimetableHandler struct {
	slots *service.SlotService
}

// NewTimetableHandler constructs handler.
func NewTimetableHandler(slots *service.SlotService) *TimetableHandler {
	return &TimetableHandler{slots: slots}
}

func weeklyQuery(c *gin.Context) (service.WeeklyTimetableQuery, error) {
	q := service.WeeklyTimetableQuery{
		TermID:     c.Query("termId"),
		WeekOffset: queryIntPtr(c, "week"),
	}
	switch {
	case c.Query("classId") != "":
		q.View = dto.ViewByClass
		q.TargetID = c.Query("classId")
	case c.Query("teacherId") != "":
		q.View = dto.ViewByTeacher
		q.TargetID = c.Query("teacherId")
	default:
		return q, appErrors.Clone(appErrors.ErrValidation, "classId or teacherId is required")
	}
	return q, nil
}

// Weekly godoc
// @Summary Weekly timetable grid for a class or teacher
// @Tags Timetable
// @Produce json
// @Param termId query string true "Term id"
// @Param classId query string false "Class perspective"
// @Param teacherId query string false "Teacher perspective"
// @Param week query int false "Biweekly offset (0 or 1)"
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) Weekly(c *gin.Context) {
	q, err := weeklyQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	grid, err := h.slots.WeeklyTimetable(c.Request.Context(), schoolIDFromContext(c), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// Export godoc
// @Summary Export the weekly grid as a PDF
// @Tags Timetable
// @Produce application/pdf
// @Param termId query string true "Term id"
// @Param classId query string false "Class perspective"
// @Param teacherId query string false "Teacher perspective"
// @Param week query int false "Biweekly offset (0 or 1)"
// @Success 200 {file} binary
// @Router /timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	q, err := weeklyQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	pdf, err := h.slots.ExportWeeklyPDF(c.Request.Context(), schoolIDFromContext(c), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("timetable-%s-%s.pdf", q.View, q.TargetID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
