package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	portssvc "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/services"
	"github.com/KsiegaPro/ledger_backend_app/internal/dto"
	"github.com/KsiegaPro/ledger_backend_app/internal/middleware"
)

type fiscalYearHandler struct {
	fiscalService portssvc.FiscalCalendarSvcFacade
}

type periodTransitionFn func(ctx context.Context, organizationID, periodID string, req dto.PeriodStatusRequest, actorID string) (*domain.FiscalPeriod, error)

func newFiscalYearHandler(fiscalService portssvc.FiscalCalendarSvcFacade) *fiscalYearHandler {
	return &fiscalYearHandler{fiscalService: fiscalService}
}

// registerFiscalYearRoutes registers the fiscal calendar routes.
func registerFiscalYearRoutes(group *gin.RouterGroup, fiscalService portssvc.FiscalCalendarSvcFacade) {
	h := newFiscalYearHandler(fiscalService)

	years := group.Group("/fiscal-years")
	{
		years.POST("", h.createFiscalYear)
		years.GET("", h.listFiscalYears)
		years.GET("/:yearID", h.getFiscalYear)
		years.DELETE("/:yearID", h.deleteFiscalYear)
		years.POST("/:yearID/open", h.openFiscalYear)
		years.POST("/:yearID/close", h.closeFiscalYear)
		years.POST("/:yearID/lock", h.lockFiscalYear)
		years.POST("/:yearID/set-current", h.setCurrentFiscalYear)
	}

	periods := group.Group("/fiscal-periods")
	{
		periods.GET("/for-date", h.findPeriodForDate)
		periods.POST("/:periodID/close", h.closePeriod)
		periods.POST("/:periodID/reopen", h.reopenPeriod)
		periods.POST("/:periodID/soft-close", h.softClosePeriod)
	}
}

// createFiscalYear creates a DRAFT fiscal year, optionally with 12 monthly periods.
func (h *fiscalYearHandler) createFiscalYear(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.CreateFiscalYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid create fiscal year request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	year, err := h.fiscalService.CreateFiscalYear(c.Request.Context(), organizationID, req, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToFiscalYearResponse(year))
}

func (h *fiscalYearHandler) listFiscalYears(c *gin.Context) {
	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	years, err := h.fiscalService.ListFiscalYears(c.Request.Context(), organizationID, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := make([]dto.FiscalYearResponse, len(years))
	for i := range years {
		resp[i] = dto.ToFiscalYearResponse(&years[i])
	}
	c.JSON(http.StatusOK, gin.H{"fiscalYears": resp})
}

func (h *fiscalYearHandler) getFiscalYear(c *gin.Context) {
	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	year, err := h.fiscalService.GetFiscalYear(c.Request.Context(), organizationID, c.Param("yearID"), actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToFiscalYearResponse(year))
}

func (h *fiscalYearHandler) deleteFiscalYear(c *gin.Context) {
	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	if err := h.fiscalService.DeleteFiscalYear(c.Request.Context(), organizationID, c.Param("yearID"), actorID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *fiscalYearHandler) openFiscalYear(c *gin.Context) {
	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	year, err := h.fiscalService.OpenFiscalYear(c.Request.Context(), organizationID, c.Param("yearID"), actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToFiscalYearResponse(year))
}

// closeFiscalYear closes an OPEN year. Open periods block the close unless the
// request forces a cascade.
func (h *fiscalYearHandler) closeFiscalYear(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.CloseFiscalYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid close fiscal year request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	year, err := h.fiscalService.CloseFiscalYear(c.Request.Context(), organizationID, c.Param("yearID"), req, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToFiscalYearResponse(year))
}

func (h *fiscalYearHandler) lockFiscalYear(c *gin.Context) {
	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	year, err := h.fiscalService.LockFiscalYear(c.Request.Context(), organizationID, c.Param("yearID"), actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToFiscalYearResponse(year))
}

func (h *fiscalYearHandler) setCurrentFiscalYear(c *gin.Context) {
	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	year, err := h.fiscalService.SetCurrentFiscalYear(c.Request.Context(), organizationID, c.Param("yearID"), actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToFiscalYearResponse(year))
}

// findPeriodForDate resolves the fiscal period owning a calendar date.
func (h *fiscalYearHandler) findPeriodForDate(c *gin.Context) {
	organizationID, _, ok := requestIdentity(c)
	if !ok {
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing date, expected YYYY-MM-DD"})
		return
	}

	period, err := h.fiscalService.FindPeriodForDate(c.Request.Context(), organizationID, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToFiscalPeriodResponse(period))
}

func (h *fiscalYearHandler) closePeriod(c *gin.Context) {
	h.transitionPeriod(c, h.fiscalService.ClosePeriod)
}

func (h *fiscalYearHandler) reopenPeriod(c *gin.Context) {
	h.transitionPeriod(c, h.fiscalService.ReopenPeriod)
}

func (h *fiscalYearHandler) softClosePeriod(c *gin.Context) {
	h.transitionPeriod(c, h.fiscalService.SoftClosePeriod)
}

// transitionPeriod is the shared body for the three period transitions. The
// reason in the request body is optional.
func (h *fiscalYearHandler) transitionPeriod(c *gin.Context, transition periodTransitionFn) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.PeriodStatusRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Invalid period transition request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}
	}

	period, err := transition(c.Request.Context(), organizationID, c.Param("periodID"), req, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToFiscalPeriodResponse(period))
}
