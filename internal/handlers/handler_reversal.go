package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/services"
	"github.com/KsiegaPro/ledger_backend_app/internal/dto"
	"github.com/KsiegaPro/ledger_backend_app/internal/middleware"
)

type reversalHandler struct {
	reversalService portssvc.ReversalSvcFacade
}

func newReversalHandler(reversalService portssvc.ReversalSvcFacade) *reversalHandler {
	return &reversalHandler{reversalService: reversalService}
}

// registerReversalRoutes registers reversal and correction routes. The
// per-entry routes extend the /entries resource registered elsewhere.
func registerReversalRoutes(group *gin.RouterGroup, reversalService portssvc.ReversalSvcFacade) {
	h := newReversalHandler(reversalService)

	entries := group.Group("/entries/:entryID")
	{
		entries.POST("/reverse", h.reverseEntry)
		entries.GET("/reversal", h.getReversalDetails)
		entries.POST("/auto-reverse", h.scheduleAutoReversal)
		entries.DELETE("/auto-reverse", h.cancelAutoReversal)
		entries.POST("/corrections", h.createCorrection)
	}

	reversals := group.Group("/reversals")
	{
		reversals.GET("", h.listReversals)
	}

	autoReversals := group.Group("/auto-reversals")
	{
		autoReversals.GET("/pending", h.listPendingAutoReversals)
		autoReversals.POST("/process", h.processAutoReversals)
	}
}

// reverseEntry creates the mirror-image reversing entry for a POSTED entry.
func (h *reversalHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.ReverseEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid reverse entry request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	reversing, err := h.reversalService.ReverseEntry(c.Request.Context(), organizationID, c.Param("entryID"), req, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToEntryResponse(reversing))
}

func (h *reversalHandler) getReversalDetails(c *gin.Context) {
	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	details, err := h.reversalService.GetReversalDetails(c.Request.Context(), organizationID, c.Param("entryID"), actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

func (h *reversalHandler) scheduleAutoReversal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.ScheduleAutoReversalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid auto-reversal request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	entry, err := h.reversalService.ScheduleAutoReversal(c.Request.Context(), organizationID, c.Param("entryID"), req, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

func (h *reversalHandler) cancelAutoReversal(c *gin.Context) {
	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	entry, err := h.reversalService.CancelAutoReversal(c.Request.Context(), organizationID, c.Param("entryID"), actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// createCorrection creates an ADJUSTING entry referencing the original, with
// caller-supplied lines.
func (h *reversalHandler) createCorrection(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.CreateCorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid correction request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	correction, err := h.reversalService.CreateCorrection(c.Request.Context(), organizationID, c.Param("entryID"), req, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToEntryResponse(correction))
}

func (h *reversalHandler) listReversals(c *gin.Context) {
	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var params dto.ListReversalsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	entries, nextToken, err := h.reversalService.ListReversals(c.Request.Context(), organizationID, params, actorID)
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

func (h *reversalHandler) listPendingAutoReversals(c *gin.Context) {
	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	pending, err := h.reversalService.ListPendingAutoReversals(c.Request.Context(), organizationID, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pending": pending})
}

// processAutoReversals manually triggers the auto-reversal batch that the
// background ticker normally runs.
func (h *reversalHandler) processAutoReversals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.ProcessAutoReversalsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Invalid process auto-reversals request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}
	}

	summary, err := h.reversalService.ProcessAutoReversals(c.Request.Context(), organizationID, req, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
