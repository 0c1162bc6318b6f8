package handlers

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "scripfolio/internal/errors"
	"scripfolio/internal/services"
)

// IngestHandler handles the two-phase import endpoints.
type IngestHandler struct {
	ingestion services.Ingestion
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(ingestion services.Ingestion) *IngestHandler {
	return &IngestHandler{ingestion: ingestion}
}

// StagingRequest identifies a staged batch for commit or discard.
type StagingRequest struct {
	StagingID string `json:"staging_id" binding:"required"`
}

// Preview handles the preview phase of an import
// @Summary     Preview an import
// @Description Parse a tradebook and contract notes, correlate them and stage the batch for commit. Nothing is persisted.
// @Tags        ingest
// @Accept      multipart/form-data
// @Produce     json
// @Param       tradebook      formData file   true  "Tradebook CSV"
// @Param       contracts      formData file   false "Contract note files (xlsx or csv), repeatable"
// @Param       correlation_id formData string false "Correlation id for progress polling"
// @Success     200 {object} services.PreviewResult "Staged preview"
// @Failure     400 {object} ErrorResponse "Unreadable upload or missing columns"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ingest/preview [post]
func (h *IngestHandler) Preview(c *gin.Context) {
	tradebookHeader, err := c.FormFile("tradebook")
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "A tradebook file is required"))
		return
	}
	tradebook, err := readUpload(tradebookHeader)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrUploadUnreadable, err))
		return
	}

	input := services.PreviewInput{
		Tradebook:     tradebook,
		CorrelationID: c.PostForm("correlation_id"),
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrUploadUnreadable, err))
		return
	}
	for _, header := range form.File["contracts"] {
		contract, err := readUpload(header)
		if err != nil {
			respondWithError(c, apperrors.Wrap(apperrors.ErrUploadUnreadable, err))
			return
		}
		input.Contracts = append(input.Contracts, contract)
	}

	result, err := h.ingestion.Preview(c.Request.Context(), input)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Commit handles the commit phase of an import
// @Summary     Commit a staged batch
// @Description Persist a previewed batch and rebuild the ledger. Committing the same batch twice returns a conflict.
// @Tags        ingest
// @Accept      json
// @Produce     json
// @Param       request body StagingRequest true "Staging id"
// @Success     200 {object} services.CommitResult "Commit summary"
// @Failure     404 {object} ErrorResponse "Unknown staging id"
// @Failure     409 {object} ErrorResponse "Already committed or discarded"
// @Failure     410 {object} ErrorResponse "Staging batch expired"
// @Router      /ingest/commit [post]
func (h *IngestHandler) Commit(c *gin.Context) {
	var req StagingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.ingestion.Commit(c.Request.Context(), req.StagingID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Discard handles discarding a staged batch
// @Summary     Discard a staged batch
// @Description Throw a previewed batch away without persisting anything.
// @Tags        ingest
// @Accept      json
// @Produce     json
// @Param       request body StagingRequest true "Staging id"
// @Success     200 {object} map[string]string "Discarded"
// @Failure     404 {object} ErrorResponse "Unknown staging id"
// @Failure     409 {object} ErrorResponse "Already committed or discarded"
// @Router      /ingest/discard [post]
func (h *IngestHandler) Discard(c *gin.Context) {
	var req StagingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.ingestion.Discard(c.Request.Context(), req.StagingID); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "discarded"})
}

// Progress handles progress polling for a running preview
// @Summary     Poll import progress
// @Description Return the latest stage and percentage for a correlation id.
// @Tags        ingest
// @Produce     json
// @Param       correlation_id path string true "Correlation id passed to preview"
// @Success     200 {object} staging.Progress "Progress snapshot"
// @Failure     404 {object} ErrorResponse "No progress recorded"
// @Router      /ingest/progress/{correlation_id} [get]
func (h *IngestHandler) Progress(c *gin.Context) {
	progress, err := h.ingestion.Progress(c.Request.Context(), c.Param("correlation_id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// readUpload buffers an uploaded file into memory.
func readUpload(header *multipart.FileHeader) (services.FileUpload, error) {
	f, err := header.Open()
	if err != nil {
		return services.FileUpload{}, err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return services.FileUpload{}, err
	}
	return services.FileUpload{Name: header.Filename, Content: content}, nil
}
