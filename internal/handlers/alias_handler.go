package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "scripfolio/internal/errors"
	"scripfolio/internal/services"
)

// AliasHandler handles symbol alias requests.
type AliasHandler struct {
	aliases services.Aliases
}

// NewAliasHandler creates a new AliasHandler.
func NewAliasHandler(aliases services.Aliases) *AliasHandler {
	return &AliasHandler{aliases: aliases}
}

// UpsertAliasesRequest maps tradebook symbols to quote tickers.
type UpsertAliasesRequest struct {
	Aliases map[string]string `json:"aliases" binding:"required"`
}

// List lists symbol aliases
// @Summary     List symbol aliases
// @Description Return every active symbol-to-quote-ticker mapping.
// @Tags        symbols
// @Produce     json
// @Success     200 {object} map[string]interface{} "Aliases"
// @Router      /symbols/aliases [get]
func (h *AliasHandler) List(c *gin.Context) {
	aliases, err := h.aliases.List(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"aliases": aliases})
}

// Upsert stores symbol aliases
// @Summary     Upsert symbol aliases
// @Description Store from->to symbol mappings, replacing any existing mapping for the same source symbol. Blank pairs are skipped.
// @Tags        symbols
// @Accept      json
// @Produce     json
// @Param       request body UpsertAliasesRequest true "Alias pairs"
// @Success     200 {object} map[string]int "Number of aliases stored"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /symbols/aliases [post]
func (h *AliasHandler) Upsert(c *gin.Context) {
	var req UpsertAliasesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	stored, err := h.aliases.Upsert(c.Request.Context(), req.Aliases)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stored": stored})
}
