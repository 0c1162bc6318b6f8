package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "scripfolio/internal/errors"
	"scripfolio/internal/models"
	"scripfolio/internal/services"
)

// SplitHandler handles split event requests.
type SplitHandler struct {
	splits services.Splits
}

// NewSplitHandler creates a new SplitHandler.
func NewSplitHandler(splits services.Splits) *SplitHandler {
	return &SplitHandler{splits: splits}
}

// CreateSplitRequest represents the request payload for recording a split.
type CreateSplitRequest struct {
	Symbol    string  `json:"symbol" binding:"required,symbol"`
	SplitDate string  `json:"split_date" binding:"required"`
	RatioFrom float64 `json:"ratio_from" binding:"required"`
	RatioTo   float64 `json:"ratio_to" binding:"required"`
}

// List lists split events
// @Summary     List split events
// @Description Return every active split event, newest split date first.
// @Tags        splits
// @Produce     json
// @Success     200 {object} map[string]interface{} "Split events"
// @Router      /splits [get]
func (h *SplitHandler) List(c *gin.Context) {
	events, err := h.splits.List(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"splits": events})
}

// Create records a split event
// @Summary     Record a split event
// @Description Store a stock split. It is applied during the next ledger replay; ratios must both be positive.
// @Tags        splits
// @Accept      json
// @Produce     json
// @Param       request body CreateSplitRequest true "Split details"
// @Success     201 {object} models.SplitEvent "Split event created"
// @Failure     400 {object} ErrorResponse "Invalid input or non-positive ratio"
// @Router      /splits [post]
func (h *SplitHandler) Create(c *gin.Context) {
	var req CreateSplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	splitDate, err := time.ParseInLocation(models.DateOnly, req.SplitDate, time.UTC)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "split_date must be YYYY-MM-DD"))
		return
	}

	event, err := h.splits.Create(c.Request.Context(), models.SplitEvent{
		Symbol:    req.Symbol,
		SplitDate: splitDate,
		RatioFrom: req.RatioFrom,
		RatioTo:   req.RatioTo,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// Delete deactivates a split event
// @Summary     Delete a split event
// @Description Deactivate a split event; the next replay runs without it.
// @Tags        splits
// @Produce     json
// @Param       id path int true "Split event id"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     404 {object} ErrorResponse "Split event not found"
// @Router      /splits/{id} [delete]
func (h *SplitHandler) Delete(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.splits.Delete(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
