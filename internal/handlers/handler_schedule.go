package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/services"
	"github.com/KsiegaPro/ledger_backend_app/internal/dto"
	"github.com/KsiegaPro/ledger_backend_app/internal/middleware"
)

const defaultExecutionHistoryLimit = 20

type scheduleHandler struct {
	scheduleService  portssvc.ScheduleSvcFacade
	processorService portssvc.ScheduleProcessorSvc
}

func newScheduleHandler(scheduleService portssvc.ScheduleSvcFacade, processorService portssvc.ScheduleProcessorSvc) *scheduleHandler {
	return &scheduleHandler{
		scheduleService:  scheduleService,
		processorService: processorService,
	}
}

// registerScheduleRoutes registers the recurring schedule routes.
func registerScheduleRoutes(group *gin.RouterGroup, scheduleService portssvc.ScheduleSvcFacade, processorService portssvc.ScheduleProcessorSvc) {
	h := newScheduleHandler(scheduleService, processorService)

	schedules := group.Group("/schedules")
	{
		schedules.POST("", h.createSchedule)
		schedules.GET("", h.listSchedules)
		schedules.POST("/process", h.processDueSchedules)
		schedules.GET("/:scheduleID", h.getSchedule)
		schedules.PUT("/:scheduleID", h.updateSchedule)
		schedules.DELETE("/:scheduleID", h.deleteSchedule)
		schedules.POST("/:scheduleID/pause", h.pauseSchedule)
		schedules.POST("/:scheduleID/resume", h.resumeSchedule)
		schedules.POST("/:scheduleID/run", h.runSchedule)
		schedules.POST("/:scheduleID/backfill", h.backfillSchedule)
		schedules.GET("/:scheduleID/upcoming", h.previewUpcoming)
		schedules.GET("/:scheduleID/executions", h.listExecutions)
	}
}

func (h *scheduleHandler) createSchedule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid create schedule request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	schedule, err := h.scheduleService.CreateSchedule(c.Request.Context(), organizationID, req, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToScheduleResponse(schedule))
}

func (h *scheduleHandler) listSchedules(c *gin.Context) {
	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var params dto.ListSchedulesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	schedules, nextToken, err := h.scheduleService.ListSchedules(c.Request.Context(), organizationID, params, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := dto.ListSchedulesResponse{
		Schedules: make([]dto.ScheduleResponse, len(schedules)),
		NextToken: nextToken,
	}
	for i := range schedules {
		resp.Schedules[i] = dto.ToScheduleResponse(&schedules[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *scheduleHandler) getSchedule(c *gin.Context) {
	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	schedule, err := h.scheduleService.GetScheduleByID(c.Request.Context(), organizationID, c.Param("scheduleID"), actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToScheduleResponse(schedule))
}

func (h *scheduleHandler) updateSchedule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid update schedule request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	schedule, err := h.scheduleService.UpdateSchedule(c.Request.Context(), organizationID, c.Param("scheduleID"), req, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToScheduleResponse(schedule))
}

func (h *scheduleHandler) deleteSchedule(c *gin.Context) {
	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	if err := h.scheduleService.DeleteSchedule(c.Request.Context(), organizationID, c.Param("scheduleID"), actorID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *scheduleHandler) pauseSchedule(c *gin.Context) {
	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	schedule, err := h.scheduleService.PauseSchedule(c.Request.Context(), organizationID, c.Param("scheduleID"), actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToScheduleResponse(schedule))
}

// resumeSchedule reactivates a PAUSED schedule, skipping or backfilling the
// occurrences missed while paused.
func (h *scheduleHandler) resumeSchedule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.ResumeScheduleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Invalid resume schedule request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}
	}

	schedule, err := h.scheduleService.ResumeSchedule(c.Request.Context(), organizationID, c.Param("scheduleID"), req, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if req.BackfillMissed {
		summary, err := h.processorService.BatchGenerateMissed(c.Request.Context(), organizationID, c.Param("scheduleID"), dto.BackfillScheduleRequest{}, actorID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"schedule": dto.ToScheduleResponse(schedule), "backfill": summary})
		return
	}

	c.JSON(http.StatusOK, dto.ToScheduleResponse(schedule))
}

// backfillSchedule generates every missed occurrence up to the requested
// date, defaulting to today.
func (h *scheduleHandler) backfillSchedule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.BackfillScheduleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Invalid backfill schedule request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}
	}

	summary, err := h.processorService.BatchGenerateMissed(c.Request.Context(), organizationID, c.Param("scheduleID"), req, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// runSchedule triggers one generation for a specific run date, outside the
// normal ticker cadence.
func (h *scheduleHandler) runSchedule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.RunScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid run schedule request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	execution, err := h.processorService.RunDueSchedule(c.Request.Context(), organizationID, c.Param("scheduleID"), req.RunDate, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToScheduleExecutionResponse(execution))
}

func (h *scheduleHandler) previewUpcoming(c *gin.Context) {
	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var params dto.PreviewUpcomingParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	occurrences, err := h.scheduleService.PreviewUpcoming(c.Request.Context(), organizationID, c.Param("scheduleID"), params.Count, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"occurrences": occurrences})
}

func (h *scheduleHandler) listExecutions(c *gin.Context) {
	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	limit := defaultExecutionHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	executions, err := h.scheduleService.ListExecutions(c.Request.Context(), organizationID, c.Param("scheduleID"), limit, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := make([]dto.ScheduleExecutionResponse, len(executions))
	for i := range executions {
		resp[i] = dto.ToScheduleExecutionResponse(&executions[i])
	}
	c.JSON(http.StatusOK, gin.H{"executions": resp})
}

// processDueSchedules manually triggers the due-schedule batch that the
// background ticker normally runs.
func (h *scheduleHandler) processDueSchedules(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	organizationID, actorID, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req dto.ProcessDueSchedulesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Invalid process schedules request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}
	}

	summary, err := h.processorService.ProcessDueSchedules(c.Request.Context(), organizationID, req, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
