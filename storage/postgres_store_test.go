package storage

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/AlfredvdM/igrow-lms-sub000/models"
)

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		phone, region, want string
	}{
		{"082 123 4567", "ZA", "+27821234567"},
		{"+27821234567", "ZA", "+27821234567"},
		{"+27 (82) 123-4567", "US", "+27821234567"},
		{"12345", "ZA", ""},
		{"call me", "ZA", ""},
		{"", "ZA", ""},
	}

	for _, tt := range tests {
		if got := NormalizeE164(tt.phone, tt.region); got != tt.want {
			t.Errorf("NormalizeE164(%q, %q) = %q; want %q", tt.phone, tt.region, got, tt.want)
		}
	}
}

func TestBuildUpsert(t *testing.T) {
	sentiment := 0.5
	batch := []*models.Lead{
		{ID: "1", Email: "a@example.com", Timestamp: time.Now(), LeadIntent: models.IntentHigh,
			OriginalSource: models.SourceLeadForm, SentimentScore: &sentiment},
		{ID: "2", Email: "b@example.com", Timestamp: time.Now(), LeadIntent: models.IntentLow,
			OriginalSource: models.SourceOverview, ApartmentPreferences: []string{"Studio Apartment"}},
	}

	query, args := buildUpsert(batch, "ZA")
	n := len(leadColumns)
	if len(args) != 2*n {
		t.Fatalf("got %d args; want %d", len(args), 2*n)
	}
	if !strings.Contains(query, "$48") || strings.Contains(query, "$49") {
		t.Errorf("placeholders do not match the batch: %s", query)
	}
	if !strings.Contains(query, "ON CONFLICT (email) DO UPDATE SET id = EXCLUDED.id") {
		t.Errorf("missing upsert clause: %s", query)
	}
	if strings.Contains(query, "email = EXCLUDED.email") {
		t.Error("the conflict key should not be updated")
	}

	if got := args[1]; got != "a@example.com" {
		t.Errorf("email arg = %v", got)
	}
	if s, ok := args[19].(sql.NullFloat64); !ok || !s.Valid || s.Float64 != 0.5 {
		t.Errorf("sentiment arg = %#v", args[19])
	}
	if s := args[n+19].(sql.NullFloat64); s.Valid {
		t.Error("missing sentiment should be NULL")
	}
}
