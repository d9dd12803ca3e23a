package services

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/AlfredvdM/igrow-lms-sub000/models"
	"github.com/AlfredvdM/igrow-lms-sub000/utils"
)

// Report defaults.
const (
	ReportDays     = 30
	ReportTopLeads = 5
)

// ReportService assembles the full dashboard from one lead collection.
type ReportService struct {
	logger *utils.Logger
}

func NewReportService(logger *utils.Logger) *ReportService {
	return &ReportService{logger: logger}
}

// Generate computes every dashboard section.
func (s *ReportService) Generate(leads []*models.Lead, now time.Time) *models.DashboardReport {
	report := &models.DashboardReport{
		Overview:      DashboardOverview(leads, now),
		Funnel:        ComputeFunnelMetrics(leads),
		Distributions: CalculateDistributions(leads),
		TimeSeries:    GenerateIntentTimeSeries(leads, ReportDays, now),
		TopLeads:      TopLeads(leads, ReportTopLeads),
		GeneratedAt:   now.Format(time.RFC3339),
	}
	s.logger.Debug("[report] Generated dashboard over %d leads", len(leads))
	return report
}

// DashboardOverview summarises the whole collection. The change strings
// compare the current calendar month with the previous one.
func DashboardOverview(leads []*models.Lead, now time.Time) models.OverviewMetrics {
	overview := ComputeOverviewMetrics(leads, nil)

	periods := ComparePeriods(leads, now)
	if len(periods.PreviousMonthLeads) > 0 {
		monthly := ComputeOverviewMetrics(periods.CurrentMonthLeads, periods.PreviousMonthLeads)
		overview.TotalLeadsChange = monthly.TotalLeadsChange
		overview.HighIntentChange = monthly.HighIntentChange
		overview.AvgScoreChange = monthly.AvgScoreChange
	}
	return overview
}

// Print renders the report for a terminal.
func (s *ReportService) Print(w io.Writer, r *models.DashboardReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 LEAD DASHBOARD\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	o := r.Overview
	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Total leads     : \033[1m%d\033[0m (%s)\n", o.TotalLeads, o.TotalLeadsChange)
	fmt.Fprintf(w, "  High intent     : \033[1m%d%%\033[0m (%s)\n", o.HighIntentPercentage, o.HighIntentChange)
	fmt.Fprintf(w, "  Avg lead score  : \033[1m%.1f\033[0m (%s)\n", o.AvgLeadScore, o.AvgScoreChange)
	fmt.Fprintln(w)

	f := r.Funnel
	fmt.Fprintf(w, "\033[1;33m  Conversion Funnel\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Contacted : %4d  \033[1;32m%5.1f%%\033[0m\n", f.Contacted, f.ContactedRate)
	fmt.Fprintf(w, "  Qualified : %4d  \033[1;32m%5.1f%%\033[0m\n", f.Qualified, f.QualifiedRate)
	fmt.Fprintf(w, "  Converted : %4d  \033[1;32m%5.1f%%\033[0m\n", f.Converted, f.ConvertedRate)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Top %d Leads by Score\033[0m\n", ReportTopLeads)
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.TopLeads) == 0 {
		fmt.Fprintf(w, "  No leads found\n")
	} else {
		for i, l := range r.TopLeads {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-38s \033[1;32m%5.1f\033[0m %s\n",
				i+1, truncate(l.Name+" <"+l.Email+">", 38), l.LeadScore, l.LeadIntent)
		}
	}
	fmt.Fprintln(w)

	d := r.Distributions
	printDistribution(w, thin, "Leads by Intent", d.Intent)
	printDistribution(w, thin, "Leads by Status", d.Status)
	printDistribution(w, thin, "Leads by Source", d.Source)
	printDistribution(w, thin, "Apartment Preference", d.Apartment)
	printDistribution(w, thin, "Lead Score Ranges", d.LeadScoreRanges)

	fmt.Fprintf(w, "\033[1;33m  Last %d Days\033[0m\n", len(r.TimeSeries))
	fmt.Fprintf(w, "  %s\n", thin)
	for _, p := range r.TimeSeries {
		if p.Leads == 0 {
			continue
		}
		fmt.Fprintf(w, "  %s %s (%d)\n", p.Date, strings.Repeat("█", p.Leads), p.Leads)
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func printDistribution(w io.Writer, thin, title string, items []models.DistributionItem) {
	fmt.Fprintf(w, "\033[1;33m  %s\033[0m\n", title)
	fmt.Fprintf(w, "  %s\n", thin)
	for _, it := range items {
		bar := strings.Repeat("█", it.Value)
		fmt.Fprintf(w, "  %-32s %4s %s (%d)\n", truncate(it.Name, 30), it.Percentage, bar, it.Value)
	}
	fmt.Fprintln(w)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
