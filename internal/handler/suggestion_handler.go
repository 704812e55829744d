package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/databayt/hogwarts-timetable/internal/dto"
	"github.com/databayt/hogwarts-timetable/internal/service"
	appErrors "github.com/databayt/hogwarts-timetable/pkg/errors"
	"github.com/databayt/hogwarts-timetable/pkg/response"
)

// SuggestionHandler exposes the alternative-assignment engine.
type SuggestionHandler struct {
	suggestions *service.SuggestionService
}

// NewSuggestionHandler constructs handler.
func NewSuggestionHandler(suggestions *service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestions: suggestions}
}

// Suggest godoc
// @Summary Propose conflict-free alternatives for a candidate slot
// @Tags Suggestions
// @Accept json
// @Produce json
// @Param payload body dto.SlotCandidate true "Candidate slot"
// @Success 200 {object} response.Envelope
// @Router /suggestions [post]
func (h *SuggestionHandler) Suggest(c *gin.Context) {
	var req dto.SlotCandidate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	schoolID := schoolIDFromContext(c)
	conflicts, alternatives, err := h.suggestions.Suggest(c.Request.Context(), schoolID, req.Slot(schoolID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"conflicts": conflicts, "alternatives": alternatives}, nil)
}
