package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/slowpost-labs/slowpost-api/internal/logger"
	"github.com/slowpost-labs/slowpost-api/internal/middleware"
	"github.com/slowpost-labs/slowpost-api/internal/models"
	"github.com/slowpost-labs/slowpost-api/internal/services"
)

type LetterHandler struct {
	letters *services.LetterService
}

func NewLetterHandler(letters *services.LetterService) *LetterHandler {
	return &LetterHandler{letters: letters}
}

type CreateLetterRequest struct {
	Title     string    `json:"title"`
	Content   string    `json:"content" binding:"required"`
	Mood      string    `json:"mood"`
	DeliverAt time.Time `json:"deliver_at" binding:"required"`
	Goals     []string  `json:"goals"`
}

// Create stores a new letter to be delivered later
func (h *LetterHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req CreateLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !req.DeliverAt.After(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deliver_at must be in the future"})
		return
	}

	letter := models.Letter{
		UserID:    userID,
		Title:     req.Title,
		Content:   req.Content,
		Mood:      req.Mood,
		DeliverAt: req.DeliverAt,
	}
	for _, text := range req.Goals {
		if text == "" {
			continue
		}
		letter.Goals = append(letter.Goals, models.Goal{
			Text:   text,
			Status: models.GoalStatusPending,
		})
	}

	if err := h.letters.CreateLetter(&letter); err != nil {
		logger.Error("Failed to create letter", err, logger.Fields{"user_id": userID})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create letter"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"letter": letter})
}

// List returns the user's letters, newest first
func (h *LetterHandler) List(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	letters, err := h.letters.ListLetters(userID)
	if err != nil {
		logger.Error("Failed to list letters", err, logger.Fields{"user_id": userID})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list letters"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"letters": letters})
}

// Get returns a single letter by ID
func (h *LetterHandler) Get(c *gin.Context) {
	userID, letterID, ok := h.requireLetterID(c)
	if !ok {
		return
	}

	letter, err := h.letters.GetLetterByID(userID, letterID)
	if err != nil {
		h.respondStoreError(c, err, userID)
		return
	}

	c.JSON(http.StatusOK, gin.H{"letter": letter})
}

type UpdateLetterRequest struct {
	Title     *string    `json:"title"`
	Content   *string    `json:"content"`
	Mood      *string    `json:"mood"`
	DeliverAt *time.Time `json:"deliver_at"`
}

// Update edits an undelivered letter
func (h *LetterHandler) Update(c *gin.Context) {
	userID, letterID, ok := h.requireLetterID(c)
	if !ok {
		return
	}

	var req UpdateLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.Mood != nil {
		updates["mood"] = *req.Mood
	}
	if req.DeliverAt != nil {
		if !req.DeliverAt.After(time.Now()) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "deliver_at must be in the future"})
			return
		}
		updates["deliver_at"] = *req.DeliverAt
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	letter, err := h.letters.UpdateLetter(userID, letterID, updates)
	if err != nil {
		h.respondStoreError(c, err, userID)
		return
	}

	c.JSON(http.StatusOK, gin.H{"letter": letter})
}

// Delete removes a letter
func (h *LetterHandler) Delete(c *gin.Context) {
	userID, letterID, ok := h.requireLetterID(c)
	if !ok {
		return
	}

	if err := h.letters.DeleteLetter(userID, letterID); err != nil {
		h.respondStoreError(c, err, userID)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Letter deleted"})
}

type UpdateGoalRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateGoal changes the status of a goal on a letter
func (h *LetterHandler) UpdateGoal(c *gin.Context) {
	userID, letterID, ok := h.requireLetterID(c)
	if !ok {
		return
	}

	goalID, err := strconv.ParseUint(c.Param("goal_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid goal id"})
		return
	}

	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	allowed := map[string]bool{
		models.GoalStatusPending:      true,
		models.GoalStatusInProgress:   true,
		models.GoalStatusAccomplished: true,
		models.GoalStatusAbandoned:    true,
	}
	if !allowed[req.Status] {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid status. Allowed: pending, in_progress, accomplished, abandoned",
		})
		return
	}

	if err := h.letters.UpdateGoalStatus(userID, letterID, uint(goalID), req.Status); err != nil {
		h.respondStoreError(c, err, userID)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Goal updated"})
}

// UsageStats returns the user's journaling activity summary
func (h *LetterHandler) UsageStats(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	stats, err := h.letters.GetUsageStats(userID)
	if err != nil {
		logger.Error("Failed to load usage stats", err, logger.Fields{"user_id": userID})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load usage stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (h *LetterHandler) requireLetterID(c *gin.Context) (userID, letterID uint, ok bool) {
	userID, authed := middleware.GetCurrentUserID(c)
	if !authed {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, 0, false
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid letter id"})
		return 0, 0, false
	}

	return userID, uint(id), true
}

func (h *LetterHandler) respondStoreError(c *gin.Context, err error, userID uint) {
	if errors.Is(err, services.ErrLetterNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Letter not found"})
		return
	}

	var genErr *models.GenerationError
	if errors.As(err, &genErr) && genErr.Kind == models.ErrorKindValidation {
		c.JSON(http.StatusBadRequest, gin.H{"error": genErr.Message})
		return
	}

	logger.Error("Letter store operation failed", err, logger.Fields{"user_id": userID})
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
