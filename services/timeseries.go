package services

import (
	"time"

	"github.com/AlfredvdM/igrow-lms-sub000/models"
)

// DateKeyLayout is the fixed-width key of a time series day.
const DateKeyLayout = "2006-01-02"

// StartOfDay returns local midnight of t in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dayWindow holds the pre-seeded day buckets ending on now's local day.
type dayWindow struct {
	points []models.TimeSeriesPoint
	index  map[string]int
	loc    *time.Location
}

func newDayWindow(days int, now time.Time) *dayWindow {
	if days < 0 {
		days = 0
	}
	w := &dayWindow{
		points: make([]models.TimeSeriesPoint, days),
		index:  make(map[string]int, days),
		loc:    now.Location(),
	}
	today := StartOfDay(now)
	for i := 0; i < days; i++ {
		// AddDate keeps local midnight across DST changes
		key := today.AddDate(0, 0, i-days+1).Format(DateKeyLayout)
		w.points[i] = models.TimeSeriesPoint{Date: key}
		w.index[key] = i
	}
	return w
}

// slot returns the bucket of ts, or -1 when ts falls outside the window.
func (w *dayWindow) slot(ts time.Time) int {
	i, ok := w.index[ts.In(w.loc).Format(DateKeyLayout)]
	if !ok {
		return -1
	}
	return i
}

// GenerateTimeSeries returns exactly days daily lead counts, oldest first,
// ending on the local day of now. Days without leads are present with zero.
func GenerateTimeSeries(leads []*models.Lead, days int, now time.Time) []models.TimeSeriesPoint {
	w := newDayWindow(days, now)
	for _, l := range leads {
		if i := w.slot(l.Timestamp); i >= 0 {
			w.points[i].Leads++
		}
	}
	return w.points
}

// GenerateIntentTimeSeries is GenerateTimeSeries with each day split into
// high, medium and low intent. Medium is the residual total-high-low and is
// reported as is, even when a lead matching both tiers drives it negative.
func GenerateIntentTimeSeries(leads []*models.Lead, days int, now time.Time) []models.TimeSeriesPoint {
	w := newDayWindow(days, now)
	high := make([]int, len(w.points))
	low := make([]int, len(w.points))

	for _, l := range leads {
		i := w.slot(l.Timestamp)
		if i < 0 {
			continue
		}
		w.points[i].Leads++
		if l.LeadIntent.IsHigh() {
			high[i]++
		}
		if l.LeadIntent.IsLow() {
			low[i]++
		}
	}

	for i := range w.points {
		h, lo := high[i], low[i]
		medium := w.points[i].Leads - h - lo
		w.points[i].HighIntent = &h
		w.points[i].MediumIntent = &medium
		w.points[i].LowIntent = &lo
	}
	return w.points
}
