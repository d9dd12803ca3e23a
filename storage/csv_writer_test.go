package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AlfredvdM/igrow-lms-sub000/models"
)

func csvLeads() []*models.Lead {
	sentiment := 0.75
	return []*models.Lead{
		{ID: "1", Timestamp: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), Name: "Sarah, Jones",
			Email: "sarah@example.com", LeadScore: 82.5, LeadIntent: models.IntentHigh,
			OriginalSource: models.SourceLeadForm, SentimentScore: &sentiment,
			ApartmentPreferences: []string{"Studio Apartment", "1 Bedroom Apartment"}},
		{ID: "2", Timestamp: time.Date(2024, 3, 16, 10, 0, 0, 0, time.UTC), Email: "ben@example.com",
			LeadIntent: models.IntentLow, OriginalSource: models.SourceOverview},
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportCSV(&buf, csvLeads()); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records; want header + 2", len(records))
	}

	first := records[1]
	checks := map[int]string{
		1:  "2024-03-15T10:00:00Z",
		2:  "Sarah, Jones",
		5:  "82.5",
		10: "Studio Apartment; 1 Bedroom Apartment",
		18: "0.75",
	}
	for col, want := range checks {
		if first[col] != want {
			t.Errorf("column %s = %q; want %q", CSVHeader[col], first[col], want)
		}
	}
	if records[2][18] != "" {
		t.Errorf("missing sentiment should be empty, got %q", records[2][18])
	}
}

func TestCSVWriterReplacesContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "leads.csv")
	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	defer w.Close()

	ctx := context.Background()
	if err := w.Write(ctx, csvLeads()); err != nil {
		t.Fatalf("first Write: %v", err)
	}
	if err := w.Write(ctx, csvLeads()[:1]); err != nil {
		t.Fatalf("second Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse file: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records after rewrite; want 2", len(records))
	}
}
