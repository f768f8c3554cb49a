package api

import (
	"log/slog"
	"net/http"

	"esk/training-app/internal/domain"
	"esk/training-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
	logger          *slog.Logger
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService, logger *slog.Logger) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService, logger: logger}
}

// --- DTOs for API (Data Transfer Objects) ---

// ExerciseRequest is the body accepted by create and update. Only these keys
// are read; id and timestamps in the body are ignored.
type ExerciseRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Images      *[]string      `json:"images"`
	Video       optionalString `json:"video"`
	YoutubeURL  optionalString `json:"youtubeUrl"`
}

func (r ExerciseRequest) toPatch() domain.ExercisePatch {
	return domain.ExercisePatch{
		Name:        r.Name,
		Description: r.Description,
		Images:      r.Images,
		Video:       r.Video.patch(),
		YoutubeURL:  r.YoutubeURL.patch(),
	}
}

// --- Handler Methods ---

// GET /api/exercises
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	exercises, err := h.exerciseService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, exercises)
}

// GET /api/exercises/:id
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exercise, err := h.exerciseService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// POST /api/exercises
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	exercise, err := h.exerciseService.Create(c.Request.Context(), req.toPatch())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, exercise)
}

// PUT /api/exercises/:id
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	exercise, err := h.exerciseService.Update(c.Request.Context(), c.Param("id"), req.toPatch())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// DELETE /api/exercises/:id
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	if err := h.exerciseService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
