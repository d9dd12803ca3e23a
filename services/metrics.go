package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/AlfredvdM/igrow-lms-sub000/models"
)

// Zero-change sentinels reported when there is no previous period.
const (
	NoPercentChange = "+0%"
	NoPointsChange  = "+0pts"
)

// StartOfMonth returns local midnight on the first of t's month.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// ComparePeriods splits leads into the calendar month of now and the month
// before it, in now's location. Leads outside both months are left out.
func ComparePeriods(leads []*models.Lead, now time.Time) models.PeriodSplit {
	currentStart := StartOfMonth(now)
	nextStart := currentStart.AddDate(0, 1, 0)
	previousStart := currentStart.AddDate(0, -1, 0)

	split := models.PeriodSplit{
		CurrentMonthLeads:  []*models.Lead{},
		PreviousMonthLeads: []*models.Lead{},
	}
	for _, l := range leads {
		ts := l.Timestamp
		switch {
		case !ts.Before(currentStart) && ts.Before(nextStart):
			split.CurrentMonthLeads = append(split.CurrentMonthLeads, l)
		case !ts.Before(previousStart) && ts.Before(currentStart):
			split.PreviousMonthLeads = append(split.PreviousMonthLeads, l)
		}
	}
	return split
}

// ComputeOverviewMetrics summarises leads and, when previous is non-empty,
// compares them against it. An empty previous period reports zero change.
func ComputeOverviewMetrics(leads, previous []*models.Lead) models.OverviewMetrics {
	total := len(leads)
	highPct := highIntentPercent(leads)
	avg := averageScore(leads)

	m := models.OverviewMetrics{
		TotalLeads:           total,
		HighIntentPercentage: int(math.Round(highPct)),
		AvgLeadScore:         round1(avg),
		TotalLeadsChange:     NoPercentChange,
		HighIntentChange:     NoPointsChange,
		AvgScoreChange:       NoPointsChange,
	}
	if len(previous) == 0 {
		return m
	}

	prevTotal := len(previous)
	m.TotalLeadsChange = formatChange(float64(total-prevTotal)/float64(prevTotal)*100, "%")
	m.HighIntentChange = formatChange(highPct-highIntentPercent(previous), "pts")
	m.AvgScoreChange = formatChange(avg-averageScore(previous), "pts")
	return m
}

// ComputeFunnelMetrics counts the leads that reached each stage. A later
// stage implies the earlier ones, so a converted lead is also qualified and
// contacted. Lost leads are counted separately.
func ComputeFunnelMetrics(leads []*models.Lead) models.FunnelMetrics {
	f := models.FunnelMetrics{Total: len(leads)}
	for _, l := range leads {
		switch l.EffectiveStatus() {
		case models.StatusConverted:
			f.Converted++
			f.Qualified++
			f.Contacted++
		case models.StatusQualified:
			f.Qualified++
			f.Contacted++
		case models.StatusContacted:
			f.Contacted++
		case models.StatusLost:
			f.Lost++
		}
	}
	f.ContactedRate = round1(percentOf(f.Contacted, f.Total))
	f.QualifiedRate = round1(percentOf(f.Qualified, f.Total))
	f.ConvertedRate = round1(percentOf(f.Converted, f.Total))
	return f
}

// TopLeads returns up to n leads by score, newest first on equal scores.
func TopLeads(leads []*models.Lead, n int) []*models.Lead {
	sorted := make([]*models.Lead, len(leads))
	copy(sorted, leads)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].LeadScore != sorted[j].LeadScore {
			return sorted[i].LeadScore > sorted[j].LeadScore
		}
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func highIntentPercent(leads []*models.Lead) float64 {
	high := 0
	for _, l := range leads {
		if l.LeadIntent.IsHigh() {
			high++
		}
	}
	return percentOf(high, len(leads))
}

// averageScore counts leads without a usable score as zero.
func averageScore(leads []*models.Lead) float64 {
	if len(leads) == 0 {
		return 0
	}
	var sum float64
	for _, l := range leads {
		if !math.IsNaN(l.LeadScore) && !math.IsInf(l.LeadScore, 0) {
			sum += l.LeadScore
		}
	}
	return sum / float64(len(leads))
}

// formatChange renders a rounded delta with an explicit sign.
func formatChange(delta float64, unit string) string {
	return fmt.Sprintf("%+d%s", int(math.Round(delta)), unit)
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
