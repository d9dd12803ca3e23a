package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/AlfredvdM/igrow-lms-sub000/models"
	"github.com/AlfredvdM/igrow-lms-sub000/services"
	"github.com/AlfredvdM/igrow-lms-sub000/storage"
	"github.com/AlfredvdM/igrow-lms-sub000/utils"
)

const dateLayout = "2006-01-02"

// leadQuery holds the filter and sort query parameters shared by the lead
// and analytics endpoints.
type leadQuery struct {
	Source   string `form:"source" validate:"omitempty,max=64"`
	Intent   string `form:"intent" validate:"omitempty,max=32"`
	Status   string `form:"status" validate:"omitempty,max=32"`
	DateFrom string `form:"dateFrom" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `form:"dateTo" validate:"omitempty,datetime=2006-01-02"`
	Search   string `form:"search" validate:"omitempty,max=200"`
	SortBy   string `form:"sortBy" validate:"omitempty,sortkey"`
	Order    string `form:"order" validate:"omitempty,oneof=asc desc"`
}

type timeSeriesQuery struct {
	leadQuery
	Days  int    `form:"days" validate:"omitempty,min=1,max=365"`
	Split string `form:"split" validate:"omitempty,oneof=intent none"`
}

// Handler serves the dashboard endpoints from one lead loader.
type Handler struct {
	leads    storage.LeadLoader
	report   *services.ReportService
	validate *validator.Validate
	loc      *time.Location
	now      func() time.Time
	logger   *utils.Logger
}

// NewHandler creates a Handler. Day and month boundaries are computed in loc.
func NewHandler(leads storage.LeadLoader, report *services.ReportService, loc *time.Location, logger *utils.Logger) *Handler {
	v := validator.New()
	_ = v.RegisterValidation("sortkey", func(fl validator.FieldLevel) bool {
		return services.IsSortKey(fl.Field().String())
	})
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		leads:    leads,
		report:   report,
		validate: v,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	OK(c, gin.H{"status": "ok"})
}

// ListLeads returns the filtered and sorted leads.
func (h *Handler) ListLeads(c *gin.Context) {
	leads, ok := h.filteredLeads(c)
	if !ok {
		return
	}
	OK(c, gin.H{"leads": leads, "total": len(leads)})
}

// ExportLeads streams the filtered and sorted leads as CSV.
func (h *Handler) ExportLeads(c *gin.Context) {
	leads, ok := h.filteredLeads(c)
	if !ok {
		return
	}

	filename := fmt.Sprintf("leads-%s.csv", h.clock().Format(dateLayout))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	if err := storage.ExportCSV(c.Writer, leads); err != nil {
		h.logger.Error("[api] CSV export failed: %v", err)
	}
}

// Overview returns the headline metrics.
func (h *Handler) Overview(c *gin.Context) {
	leads, ok := h.filteredLeads(c)
	if !ok {
		return
	}
	OK(c, services.DashboardOverview(leads, h.clock()))
}

// Distributions returns every categorical breakdown.
func (h *Handler) Distributions(c *gin.Context) {
	leads, ok := h.filteredLeads(c)
	if !ok {
		return
	}
	OK(c, services.CalculateDistributions(leads))
}

// Funnel returns the conversion funnel.
func (h *Handler) Funnel(c *gin.Context) {
	leads, ok := h.filteredLeads(c)
	if !ok {
		return
	}
	OK(c, services.ComputeFunnelMetrics(leads))
}

// TimeSeries returns daily lead counts, split by intent unless split=none.
func (h *Handler) TimeSeries(c *gin.Context) {
	var q timeSeriesQuery
	if !h.bind(c, &q) {
		return
	}
	leads, ok := h.loadFiltered(c, q.leadQuery)
	if !ok {
		return
	}

	days := q.Days
	if days == 0 {
		days = services.ReportDays
	}
	if q.Split == "none" {
		OK(c, services.GenerateTimeSeries(leads, days, h.clock()))
		return
	}
	OK(c, services.GenerateIntentTimeSeries(leads, days, h.clock()))
}

// Dashboard returns every section in one response.
func (h *Handler) Dashboard(c *gin.Context) {
	leads, ok := h.filteredLeads(c)
	if !ok {
		return
	}
	OK(c, h.report.Generate(leads, h.clock()))
}

func (h *Handler) clock() time.Time {
	return h.now().In(h.loc)
}

func (h *Handler) filteredLeads(c *gin.Context) ([]*models.Lead, bool) {
	var q leadQuery
	if !h.bind(c, &q) {
		return nil, false
	}
	return h.loadFiltered(c, q)
}

// bind parses and validates query parameters, answering 400 on failure.
func (h *Handler) bind(c *gin.Context, q interface{}) bool {
	if err := c.ShouldBindQuery(q); err != nil {
		Error(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return false
	}
	if err := h.validate.Struct(q); err != nil {
		Error(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return false
	}
	return true
}

func (h *Handler) loadFiltered(c *gin.Context, q leadQuery) ([]*models.Lead, bool) {
	filter, err := q.toFilter(h.loc)
	if err != nil {
		Error(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return nil, false
	}

	leads, err := h.leads.Load(c.Request.Context())
	if err != nil {
		h.logger.Error("[api] Loading leads failed: %v", err)
		Error(c, http.StatusInternalServerError, CodeInternal, "failed to load leads")
		return nil, false
	}

	leads = services.FilterLeads(leads, filter)
	if q.SortBy != "" {
		order := models.SortAsc
		if q.Order == string(models.SortDesc) {
			order = models.SortDesc
		}
		leads = services.SortLeads(leads, q.SortBy, order)
	}
	return leads, true
}

// toFilter converts the query into a LeadFilter. dateTo covers its whole day.
func (q leadQuery) toFilter(loc *time.Location) (models.LeadFilter, error) {
	f := models.LeadFilter{
		Source: q.Source,
		Intent: q.Intent,
		Status: q.Status,
		Search: q.Search,
	}
	if q.DateFrom != "" {
		from, err := time.ParseInLocation(dateLayout, q.DateFrom, loc)
		if err != nil {
			return f, fmt.Errorf("dateFrom: %w", err)
		}
		f.DateFrom = &from
	}
	if q.DateTo != "" {
		to, err := time.ParseInLocation(dateLayout, q.DateTo, loc)
		if err != nil {
			return f, fmt.Errorf("dateTo: %w", err)
		}
		end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		f.DateTo = &end
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return f, fmt.Errorf("dateTo is before dateFrom")
	}
	return f, nil
}
