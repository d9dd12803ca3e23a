package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/AlfredvdM/igrow-lms-sub000/models"
)

// CSVHeader is the column order of every lead export.
var CSVHeader = []string{
	"id", "timestamp", "name", "email", "phone", "lead_score", "lead_intent",
	"lead_status", "lead_source", "original_source", "apartment_preferences",
	"income_range", "employment_status", "pet_preference", "move_in_timing",
	"preferred_contact", "best_time_to_reach", "engagement_level", "sentiment_score",
	"utm_source", "utm_medium", "utm_campaign",
}

// CSVWriter writes normalized leads to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// NewCSVWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}
	return &CSVWriter{path: path, file: f}, nil
}

// Write replaces the file contents with the given leads.
func (c *CSVWriter) Write(_ context.Context, leads []*models.Lead) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.file.Truncate(0); err != nil {
		return fmt.Errorf("csv: truncate %q: %w", c.path, err)
	}
	if _, err := c.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("csv: seek %q: %w", c.path, err)
	}
	return ExportCSV(c.file, leads)
}

func (c *CSVWriter) Close() error {
	return c.file.Close()
}

// ExportCSV writes a header row and one row per lead to w.
func ExportCSV(w io.Writer, leads []*models.Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, l := range leads {
		sentiment := ""
		if l.SentimentScore != nil {
			sentiment = strconv.FormatFloat(*l.SentimentScore, 'f', -1, 64)
		}
		row := []string{
			l.ID,
			l.Timestamp.Format(time.RFC3339),
			l.Name,
			l.Email,
			l.Phone,
			strconv.FormatFloat(l.LeadScore, 'f', -1, 64),
			string(l.LeadIntent),
			string(l.LeadStatus),
			l.LeadSource,
			string(l.OriginalSource),
			strings.Join(l.ApartmentPreferences, "; "),
			l.IncomeRange,
			l.EmploymentStatus,
			l.PetPreference,
			l.MoveInTiming,
			l.PreferredContact,
			l.BestTimeToReach,
			l.EngagementLevel,
			sentiment,
			l.UTMSource,
			l.UTMMedium,
			l.UTMCampaign,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
