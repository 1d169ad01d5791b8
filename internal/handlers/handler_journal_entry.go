package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/services"
	"github.com/KsiegaPro/ledger_backend_app/internal/dto"
	"github.com/KsiegaPro/ledger_backend_app/internal/middleware"
)

type journalEntryHandler struct {
	entryService     portssvc.EntrySvcFacade
	validatorService portssvc.EntryValidatorSvc
}

func newJournalEntryHandler(entryService portssvc.EntrySvcFacade, validatorService portssvc.EntryValidatorSvc) *journalEntryHandler {
	return &journalEntryHandler{
		entryService:     entryService,
		validatorService: validatorService,
	}
}

// registerEntryRoutes registers the journal entry lifecycle routes.
func registerEntryRoutes(group *gin.RouterGroup, entryService portssvc.EntrySvcFacade, validatorService portssvc.EntryValidatorSvc) {
	h := newJournalEntryHandler(entryService, validatorService)

	entries := group.Group("/entries")
	{
		entries.POST("", h.createEntry)
		entries.GET("", h.listEntries)
		entries.POST("/validate", h.validateCandidate)
		entries.POST("/bulk-post", h.bulkPostEntries)
		entries.POST("/bulk-delete", h.bulkDeleteEntries)
		entries.GET("/:entryID", h.getEntry)
		entries.PUT("/:entryID", h.updateEntry)
		entries.DELETE("/:entryID", h.deleteEntry)
		entries.POST("/:entryID/post", h.postEntry)
		entries.POST("/:entryID/validate", h.validateEntry)
	}
}

// createEntry creates a DRAFT journal entry. ERROR-severity rule failures
// reject the create with 400.
func (h *journalEntryHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid create entry request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	entry, err := h.entryService.CreateEntry(c.Request.Context(), organizationID, req, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

func (h *journalEntryHandler) listEntries(c *gin.Context) {
	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	entries, nextToken, err := h.entryService.ListEntries(c.Request.Context(), organizationID, params, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := dto.ListEntriesResponse{
		Entries:   make([]dto.EntryResponse, len(entries)),
		NextToken: nextToken,
	}
	for i := range entries {
		resp.Entries[i] = dto.ToEntryResponse(&entries[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *journalEntryHandler) getEntry(c *gin.Context) {
	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	entry, err := h.entryService.GetEntryByID(c.Request.Context(), organizationID, c.Param("entryID"), actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// updateEntry replaces fields of a DRAFT entry. Non-draft entries yield 422.
func (h *journalEntryHandler) updateEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid update entry request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	entry, err := h.entryService.UpdateEntry(c.Request.Context(), organizationID, c.Param("entryID"), req, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

func (h *journalEntryHandler) deleteEntry(c *gin.Context) {
	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	if err := h.entryService.DeleteEntry(c.Request.Context(), organizationID, c.Param("entryID"), actorID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// postEntry transitions a DRAFT entry to POSTED. A concurrent post of the same
// entry yields 409.
func (h *journalEntryHandler) postEntry(c *gin.Context) {
	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	entry, err := h.entryService.PostEntry(c.Request.Context(), organizationID, c.Param("entryID"), actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

func (h *journalEntryHandler) bulkPostEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.BulkEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid bulk post request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	summary, err := h.entryService.BulkPostEntries(c.Request.Context(), organizationID, req, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *journalEntryHandler) bulkDeleteEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.BulkEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid bulk delete request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	summary, err := h.entryService.BulkDeleteEntries(c.Request.Context(), organizationID, req, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// validateCandidate runs the validation pipeline against an unsaved candidate.
// The verdict is returned with 200 even when the candidate fails checks.
func (h *journalEntryHandler) validateCandidate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.ValidateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid validate entry request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	verdict, err := h.validatorService.ValidateCandidate(c.Request.Context(), organizationID, req, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, verdict)
}

func (h *journalEntryHandler) validateEntry(c *gin.Context) {
	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	verdict, err := h.validatorService.ValidateEntry(c.Request.Context(), organizationID, c.Param("entryID"), actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, verdict)
}
