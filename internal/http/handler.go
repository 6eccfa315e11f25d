package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/spotter-eld/hos-service/internal/excel"
	"github.com/spotter-eld/hos-service/internal/http/middleware"
	"github.com/spotter-eld/hos-service/internal/model"
	"github.com/spotter-eld/hos-service/internal/pdf"
	"github.com/spotter-eld/hos-service/internal/service"
)

type Handler struct {
	intervals  *service.IntervalService
	summaries  *service.SummaryService
	compliance *service.ComplianceService
	trips      *service.TripService
	pdf        *pdf.Generator
	excel      *excel.Generator
	log        zerolog.Logger
}

func NewHandler(
	intervals *service.IntervalService,
	summaries *service.SummaryService,
	compliance *service.ComplianceService,
	trips *service.TripService,
	pdfGen *pdf.Generator,
	excelGen *excel.Generator,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		intervals:  intervals,
		summaries:  summaries,
		compliance: compliance,
		trips:      trips,
		pdf:        pdfGen,
		excel:      excelGen,
		log:        log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.GET("/logs/entries", h.listIntervals)
	protected.POST("/logs/entries", h.openInterval)
	protected.GET("/logs/entries/:id", h.getInterval)
	protected.POST("/logs/entries/:id/close", h.closeInterval)
	protected.PATCH("/logs/entries/:id", h.updateIntervalNotes)
	protected.DELETE("/logs/entries/:id", h.deleteInterval)

	protected.GET("/logs/daily", h.listSummaries)
	protected.POST("/logs/generate", h.generateSummary)
	protected.POST("/logs/daily/:id/certify", h.certifySummary)
	protected.GET("/logs/daily/pdf", h.downloadDailyPDF)
	protected.GET("/logs/report", h.downloadPeriodReport)

	protected.GET("/violations", h.listViolations)
	protected.POST("/violations/check", h.checkViolations)
	protected.POST("/violations/resolve/:id", h.resolveViolation)

	protected.GET("/hos/status", h.currentStatus)
	protected.GET("/hos/current-trip", h.currentTrip)

	protected.GET("/trips", h.listTrips)
	protected.POST("/trips", h.createTrip)
	protected.GET("/trips/:id", h.getTrip)
	protected.POST("/trips/:id/start", h.startTrip)
	protected.POST("/trips/:id/complete", h.completeTrip)
	protected.POST("/trips/:id/cancel", h.cancelTrip)
	protected.GET("/trips/:id/compliance", h.tripCompliance)
}

type openIntervalRequest struct {
	Date          string   `json:"date"`
	StartTime     string   `json:"start_time" binding:"required"`
	DutyStatus    string   `json:"duty_status" binding:"required"`
	Location      string   `json:"location"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Notes         string   `json:"notes"`
	VehicleInfo   string   `json:"vehicle_info"`
	TrailerInfo   string   `json:"trailer_info"`
	OdometerStart *float64 `json:"odometer_start"`
}

func (h *Handler) openInterval(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req openIntervalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := parseTimestamp(req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_time"})
		return
	}

	var date time.Time
	if req.Date != "" {
		date, err = parseDate(req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
	}

	interval, err := h.intervals.OpenInterval(c.Request.Context(), principal.UserID, service.OpenIntervalInput{
		Date:          date,
		StartTime:     start,
		DutyStatus:    model.DutyStatus(req.DutyStatus),
		Location:      req.Location,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		Notes:         req.Notes,
		VehicleInfo:   req.VehicleInfo,
		TrailerInfo:   req.TrailerInfo,
		OdometerStart: req.OdometerStart,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, interval)
}

type closeIntervalRequest struct {
	EndTime         string   `json:"end_time" binding:"required"`
	CrossedMidnight bool     `json:"crossed_midnight"`
	OdometerEnd     *float64 `json:"odometer_end"`
	Notes           string   `json:"notes"`
}

func (h *Handler) closeInterval(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid interval id"})
		return
	}

	var req closeIntervalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	end, err := parseTimestamp(req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_time"})
		return
	}

	interval, err := h.intervals.CloseInterval(c.Request.Context(), principal.UserID, id, service.CloseIntervalInput{
		EndTime:         end,
		CrossedMidnight: req.CrossedMidnight,
		OdometerEnd:     req.OdometerEnd,
		Notes:           req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, interval)
}

func (h *Handler) getInterval(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid interval id"})
		return
	}

	interval, err := h.intervals.GetInterval(c.Request.Context(), principal.UserID, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, interval)
}

type updateNotesRequest struct {
	Notes string `json:"notes" binding:"required"`
}

func (h *Handler) updateIntervalNotes(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid interval id"})
		return
	}

	var req updateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	interval, err := h.intervals.UpdateNotes(c.Request.Context(), principal.UserID, id, req.Notes)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, interval)
}

func (h *Handler) deleteInterval(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid interval id"})
		return
	}

	if err := h.intervals.DeleteInterval(c.Request.Context(), principal.UserID, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listIntervals(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	from, to, err := parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	intervals, err := h.intervals.ListIntervals(c.Request.Context(), principal.UserID, from, to)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": intervals})
}

func (h *Handler) listSummaries(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	from, to, err := parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summaries, err := h.summaries.ListSummaries(c.Request.Context(), principal.UserID, from, to)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"daily_logs": summaries})
}

func (h *Handler) generateSummary(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, use YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	summary, created, err := h.summaries.Summarize(c.Request.Context(), principal.UserID, date)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"daily_log": summary,
		"created":   created,
		"compliant": service.IsCompliant(summary),
	})
}

func (h *Handler) certifySummary(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid daily log id"})
		return
	}

	summary, err := h.summaries.Certify(c.Request.Context(), principal.UserID, id, time.Now().UTC())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) listViolations(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	unresolvedOnly := c.Query("unresolved") == "true"
	violations, err := h.compliance.ListViolations(c.Request.Context(), principal.UserID, unresolvedOnly)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"violations": violations})
}

func (h *Handler) checkViolations(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	from, to, err := parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	violations, err := h.compliance.CheckPeriod(c.Request.Context(), principal.UserID, from, to)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"violations_found": len(violations),
		"violations":       violations,
	})
}

type resolveViolationRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) resolveViolation(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid violation id"})
		return
	}

	// Notes are optional; tolerate an empty body.
	var req resolveViolationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	violation, err := h.compliance.ResolveViolation(c.Request.Context(), principal.UserID, id, req.Notes, time.Now().UTC())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, violation)
}

func (h *Handler) currentStatus(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	status, err := h.compliance.Status(c.Request.Context(), principal.UserID, time.Now().UTC())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

type createTripRequest struct {
	Name          string   `json:"name"`
	CurrentCycle  string   `json:"current_cycle"`
	TotalDistance *float64 `json:"total_distance"`
	TripDate      string   `json:"trip_date"`
}

func (h *Handler) createTrip(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var tripDate time.Time
	if req.TripDate != "" {
		parsed, err := parseDate(req.TripDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip_date"})
			return
		}
		tripDate = parsed
	}

	trip, err := h.trips.CreateTrip(c.Request.Context(), principal.UserID, service.CreateTripInput{
		Name:          req.Name,
		CurrentCycle:  model.CycleType(req.CurrentCycle),
		TotalDistance: req.TotalDistance,
		TripDate:      tripDate,
	}, time.Now().UTC())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

func (h *Handler) listTrips(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	trips, err := h.trips.ListTrips(c.Request.Context(), principal.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

func (h *Handler) getTrip(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}

	trip, err := h.trips.GetTrip(c.Request.Context(), principal.UserID, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *Handler) startTrip(c *gin.Context) {
	h.tripTransition(c, h.trips.Start)
}

func (h *Handler) completeTrip(c *gin.Context) {
	h.tripTransition(c, h.trips.Complete)
}

func (h *Handler) cancelTrip(c *gin.Context) {
	h.tripTransition(c, h.trips.Cancel)
}

func (h *Handler) tripTransition(c *gin.Context, transition func(ctx context.Context, driverID, id uuid.UUID, now time.Time) (*model.Trip, error)) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}

	trip, err := transition(c.Request.Context(), principal.UserID, id, time.Now().UTC())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *Handler) tripCompliance(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}

	trip, err := h.trips.GetTrip(c.Request.Context(), principal.UserID, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.TripCompliance(trip))
}

func (h *Handler) currentTrip(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	trip, created, err := h.trips.GetOrCreateCurrent(c.Request.Context(), principal.UserID, time.Now().UTC())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": trip, "created": created})
}

func (h *Handler) downloadDailyPDF(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, use YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	summary, _, err := h.summaries.Summarize(c.Request.Context(), principal.UserID, date)
	if err != nil {
		h.handleError(c, err)
		return
	}
	entries, err := h.intervals.ListIntervals(c.Request.Context(), principal.UserID, date, date)
	if err != nil {
		h.handleError(c, err)
		return
	}

	content, err := h.pdf.Generate(pdf.DailyLogDocument{
		DriverName: principal.Name,
		Date:       summary.Date,
		Summary:    *summary,
		Entries:    entries,
		Compliant:  service.IsCompliant(summary),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	fileName := "hos_log_" + summary.Date.Format("2006-01-02") + ".pdf"
	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Data(http.StatusOK, "application/pdf", content)
}

func (h *Handler) downloadPeriodReport(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	from, to, err := parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summaries := make([]model.DailySummary, 0)
	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		summary, _, err := h.summaries.Summarize(c.Request.Context(), principal.UserID, date)
		if err != nil {
			h.handleError(c, err)
			return
		}
		summaries = append(summaries, *summary)
	}

	violations, err := h.compliance.ListViolations(c.Request.Context(), principal.UserID, false)
	if err != nil {
		h.handleError(c, err)
		return
	}

	content, err := h.excel.Generate(excel.PeriodReport{
		DriverName: principal.Name,
		From:       from,
		To:         to,
		Summaries:  summaries,
		Violations: violations,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	fileName := "hos-report-" + from.Format("20060102") + "-" + to.Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseRange(c *gin.Context) (time.Time, time.Time, error) {
	from, err := parseDate(c.Query("from"))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid from date, use YYYY-MM-DD")
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid to date, use YYYY-MM-DD")
	}
	return from, to, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
