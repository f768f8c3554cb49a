package api

import (
	"log/slog"
	"net/http"

	"esk/training-app/internal/domain"
	"esk/training-app/internal/service"

	"github.com/gin-gonic/gin"
)

type TrainingHandler struct {
	trainingService service.TrainingService
	logger          *slog.Logger
}

func NewTrainingHandler(trainingService service.TrainingService, logger *slog.Logger) *TrainingHandler {
	return &TrainingHandler{trainingService: trainingService, logger: logger}
}

// TrainingRequest is the body accepted by create and update.
type TrainingRequest struct {
	Date        *string   `json:"date"`
	Time        *string   `json:"time"`
	Location    *string   `json:"location"`
	Description *string   `json:"description"`
	ExerciseIDs *[]string `json:"exerciseIds"`
}

func (r TrainingRequest) toPatch() domain.TrainingPatch {
	return domain.TrainingPatch{
		Date:        r.Date,
		Time:        r.Time,
		Location:    r.Location,
		Description: r.Description,
		ExerciseIDs: r.ExerciseIDs,
	}
}

// GET /api/trainings
func (h *TrainingHandler) ListTrainings(c *gin.Context) {
	trainings, err := h.trainingService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, trainings)
}

// GET /api/trainings/:id
func (h *TrainingHandler) GetTraining(c *gin.Context) {
	training, err := h.trainingService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, training)
}

// POST /api/trainings
func (h *TrainingHandler) CreateTraining(c *gin.Context) {
	var req TrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	training, err := h.trainingService.Create(c.Request.Context(), req.toPatch())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, training)
}

// PUT /api/trainings/:id
func (h *TrainingHandler) UpdateTraining(c *gin.Context) {
	var req TrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	training, err := h.trainingService.Update(c.Request.Context(), c.Param("id"), req.toPatch())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, training)
}

// DELETE /api/trainings/:id
func (h *TrainingHandler) DeleteTraining(c *gin.Context) {
	if err := h.trainingService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
