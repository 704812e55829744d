package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/databayt/hogwarts-timetable/internal/dto"
	"github.com/databayt/hogwarts-timetable/internal/service"
	appErrors "github.com/databayt/hogwarts-timetable/pkg/errors"
	"github.com/databayt/hogwarts-timetable/pkg/response"
)

// GeneratorHandler exposes the bulk timetable generation endpoint.
type GeneratorHandler struct {
	generator *service.GeneratorService
}

// NewGeneratorHandler constructs handler.
func NewGeneratorHandler(generator *service.GeneratorService) *GeneratorHandler {
	return &GeneratorHandler{generator: generator}
}

// Generate godoc
// @Summary Run one greedy generation pass over a term
// @Tags Generator
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTermRequest true "Generation request"
// @Success 200 {object} response.Envelope
// @Router /generate [post]
func (h *GeneratorHandler) Generate(c *gin.Context) {
	var req dto.GenerateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.generator.GenerateTerm(c.Request.Context(), schoolIDFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
