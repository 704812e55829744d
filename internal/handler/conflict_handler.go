package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/databayt/hogwarts-timetable/internal/dto"
	"github.com/databayt/hogwarts-timetable/internal/service"
	appErrors "github.com/databayt/hogwarts-timetable/pkg/errors"
	"github.com/databayt/hogwarts-timetable/pkg/response"
)

// ConflictHandler exposes dry-run conflict detection endpoints.
type ConflictHandler struct {
	conflicts *service.ConflictService
}

// NewConflictHandler constructs handler.
func NewConflictHandler(conflicts *service.ConflictService) *ConflictHandler {
	return &ConflictHandler{conflicts: conflicts}
}

// Check godoc
// @Summary Check a candidate slot for conflicts without writing
// @Tags Conflicts
// @Accept json
// @Produce json
// @Param excludeSlotId query string false "Slot id to exclude (edit flows)"
// @Param payload body dto.SlotCandidate true "Candidate slot"
// @Success 200 {object} response.Envelope
// @Router /conflicts/check [post]
func (h *ConflictHandler) Check(c *gin.Context) {
	var req dto.SlotCandidate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	schoolID := schoolIDFromContext(c)
	conflicts, err := h.conflicts.Check(c.Request.Context(), schoolID, req.Slot(schoolID), c.Query("excludeSlotId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"conflicts": conflicts, "conflict_free": len(conflicts) == 0}, nil)
}

// CheckTerm godoc
// @Summary Audit a whole term for conflicting slot pairs
// @Tags Conflicts
// @Produce json
// @Param termId path string true "Term id"
// @Success 200 {object} response.Envelope
// @Router /conflicts/terms/{termId} [get]
func (h *ConflictHandler) CheckTerm(c *gin.Context) {
	conflicts, err := h.conflicts.CheckTerm(c.Request.Context(), schoolIDFromContext(c), c.Param("termId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"conflicts": conflicts, "conflict_free": len(conflicts) == 0}, nil)
}
