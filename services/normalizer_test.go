package services

import (
	"reflect"
	"testing"
	"time"

	"github.com/AlfredvdM/igrow-lms-sub000/models"
	"github.com/AlfredvdM/igrow-lms-sub000/utils"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(utils.NewNopLogger(), time.UTC)
}

func TestNormalizeLeadFormRow(t *testing.T) {
	n := newTestNormalizer()
	rows := []models.RawRow{{
		"Submitted At":       "2024-03-15 10:30:00",
		"First Name":         "  Sarah ",
		"Last Name":          "Not supplied",
		"Email Address":      " Sarah@Example.COM ",
		"Phone Number":       "+27 82 123 4567",
		"Lead Score":         "82",
		"Status":             "Contacted",
		"Apartment Type":     "Studio, 2 Bedroom 2 Bathroom",
		"Monthly Income":     "$4,500",
		"Employment":         "Full time",
		"Pets":               "No pets",
		"Move In Date":       "ASAP",
		"Contact Preference": "WhatsApp",
		"Best Time To Call":  "Evenings",
		"utm_source":         "facebook",
	}}

	leads, skipped := n.Normalize(rows, models.SourceLeadForm)
	if skipped != 0 || len(leads) != 1 {
		t.Fatalf("Normalize() = %d leads, %d skipped; want 1, 0", len(leads), skipped)
	}
	l := leads[0]

	checks := []struct {
		field, got, want string
	}{
		{"Name", l.Name, "Sarah"},
		{"Email", l.Email, "sarah@example.com"},
		{"Phone", l.Phone, "+27821234567"},
		{"LeadIntent", string(l.LeadIntent), "High"},
		{"LeadStatus", string(l.LeadStatus), "Contacted"},
		{"LeadSource", l.LeadSource, SourceLeadForm},
		{"IncomeRange", l.IncomeRange, Income4kTo6k},
		{"EmploymentStatus", l.EmploymentStatus, EmploymentFullTime},
		{"PetPreference", l.PetPreference, PetNone},
		{"MoveInTiming", l.MoveInTiming, MoveInImmediately},
		{"PreferredContact", l.PreferredContact, ContactWhatsApp},
		{"BestTimeToReach", l.BestTimeToReach, TimeEvening},
		{"UTMSource", l.UTMSource, "facebook"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q; want %q", c.field, c.got, c.want)
		}
	}

	if l.LeadScore != 82 {
		t.Errorf("LeadScore = %v; want 82", l.LeadScore)
	}
	if l.OriginalSource != models.SourceLeadForm {
		t.Errorf("OriginalSource = %q; want %q", l.OriginalSource, models.SourceLeadForm)
	}
	wantApartments := []string{ApartmentStudio, Apartment2Bed2Bath}
	if !reflect.DeepEqual(l.ApartmentPreferences, wantApartments) {
		t.Errorf("ApartmentPreferences = %v; want %v", l.ApartmentPreferences, wantApartments)
	}
	wantTS := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	if !l.Timestamp.Equal(wantTS) {
		t.Errorf("Timestamp = %v; want %v", l.Timestamp, wantTS)
	}
	if l.ID == "" {
		t.Error("expected a derived ID for a row without one")
	}
}

func TestNormalizeSkipsUnusableRows(t *testing.T) {
	n := newTestNormalizer()
	rows := []models.RawRow{
		{"Timestamp": "2024-03-15", "Email": ""},
		{"Timestamp": "2024-03-15", "Email": "not-an-email"},
		{"Timestamp": "yesterday-ish", "Email": "a@example.com"},
		{"Timestamp": "", "Email": "b@example.com"},
		{"Timestamp": "2024-03-15", "Email": "c@example.com"},
	}

	leads, skipped := n.Normalize(rows, models.SourceOverview)
	if len(leads) != 1 || skipped != 4 {
		t.Fatalf("Normalize() = %d leads, %d skipped; want 1, 4", len(leads), skipped)
	}
	if leads[0].Email != "c@example.com" {
		t.Errorf("kept %q; want c@example.com", leads[0].Email)
	}
}

func TestNormalizeUnknownSource(t *testing.T) {
	n := newTestNormalizer()
	leads, skipped := n.Normalize([]models.RawRow{{"Email": "a@example.com"}}, models.Source("crm"))
	if len(leads) != 0 || skipped != 1 {
		t.Errorf("Normalize() = %d leads, %d skipped; want 0, 1", len(leads), skipped)
	}
}

func TestNormalizeIntent(t *testing.T) {
	tests := []struct {
		intent, score string
		want          models.Intent
	}{
		{"High", "10", models.IntentHigh},
		{"hot lead", "", models.IntentHigh},
		{"Low", "95", models.IntentLow},
		{"cold", "", models.IntentLow},
		{"", "70", models.IntentHigh},
		{"", "69.9", models.IntentLow},
		{"unsure", "85", models.IntentHigh},
		{"", "", models.IntentLow},
		{"Follow up", "90", models.IntentHigh},
		{"Yellow flag", "90", models.IntentHigh},
		{"Highway billboard", "10", models.IntentLow},
		{"Scold", "75", models.IntentHigh},
	}

	n := newTestNormalizer()
	for _, tt := range tests {
		rows := []models.RawRow{{
			"Timestamp":   "2024-03-15",
			"Email":       "x@example.com",
			"Lead Intent": tt.intent,
			"Lead Score":  tt.score,
		}}
		leads, _ := n.Normalize(rows, models.SourceOverview)
		if len(leads) != 1 {
			t.Fatalf("intent %q: expected one lead", tt.intent)
		}
		if got := leads[0].LeadIntent; got != tt.want {
			t.Errorf("intent %q score %q = %q; want %q", tt.intent, tt.score, got, tt.want)
		}
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want models.Status
	}{
		{"Qualified", models.StatusQualified},
		{"unqualified", models.StatusLost},
		{"Converted", models.StatusConverted},
		{"lease signed", models.StatusConverted},
		{"follow up", models.StatusContacted},
		{"New", models.StatusNew},
		{"Contacted", models.StatusContacted},
		{"Not contacted yet", models.StatusNew},
		{"no answer", models.StatusNew},
		{"Disqualified", models.StatusLost},
		{"Not interested", models.StatusLost},
		{"Deal won", models.StatusConverted},
		{"Wonderful chat, follow-up booked", models.StatusContacted},
		{"Renewal", ""},
		{"", ""},
		{"pending", ""},
	}

	for _, tt := range tests {
		if got := models.Status(classify(tt.raw, statusRules)); got != tt.want {
			t.Errorf("status %q = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	n := newTestNormalizer()
	rows := []models.RawRow{
		{"Conversation Date": "2024-03-15T09:00:00Z", "Customer Email": "a@example.com", "Customer Name": "Ann"},
		{"Conversation Date": "2024-03-16T09:00:00Z", "Customer Email": "b@example.com", "Customer Name": "Ben"},
	}

	first, _ := n.Normalize(rows, models.SourceAIConversation)
	second, _ := n.Normalize(rows, models.SourceAIConversation)
	if !reflect.DeepEqual(first, second) {
		t.Error("normalizing the same rows twice gave different leads")
	}
	if first[0].ID == first[1].ID {
		t.Error("distinct rows share an ID")
	}
	if first[0].LeadSource != SourceAIConversation {
		t.Errorf("LeadSource = %q; want %q", first[0].LeadSource, SourceAIConversation)
	}
}

func TestNormalizeKeepsExplicitID(t *testing.T) {
	n := newTestNormalizer()
	rows := []models.RawRow{{"ID": "lead-42", "Timestamp": "2024-03-15", "Email": "a@example.com"}}
	leads, _ := n.Normalize(rows, models.SourceOverview)
	if len(leads) != 1 || leads[0].ID != "lead-42" {
		t.Fatalf("expected ID lead-42, got %+v", leads)
	}
}

func TestParseTimestamp(t *testing.T) {
	loc := time.FixedZone("SAST", 2*60*60)
	n := NewNormalizer(utils.NewNopLogger(), loc)

	tests := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{"2024-03-15T10:30:00Z", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), true},
		{"2024-03-15 10:30:00", time.Date(2024, 3, 15, 10, 30, 0, 0, loc), true},
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, loc), true},
		{"3/15/2024 8:05", time.Date(2024, 3, 15, 8, 5, 0, 0, loc), true},
		{"Mar 15, 2024", time.Date(2024, 3, 15, 0, 0, 0, 0, loc), true},
		{"45366.5", time.Date(2024, 3, 15, 12, 0, 0, 0, loc), true},
		{"", time.Time{}, false},
		{"soon", time.Time{}, false},
	}

	for _, tt := range tests {
		got, ok := n.parseTimestamp(tt.raw)
		if ok != tt.ok {
			t.Errorf("parseTimestamp(%q) ok = %v; want %v", tt.raw, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(tt.want) {
			t.Errorf("parseTimestamp(%q) = %v; want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"85", 85},
		{"72.5", 72.5},
		{"72,5", 72.5},
		{"Score: 64/100", 64},
		{"-5", 0},
		{"", 0},
		{"n/a", 0},
	}

	for _, tt := range tests {
		if got := parseScore(tt.raw); got != tt.want {
			t.Errorf("parseScore(%q) = %v; want %v", tt.raw, got, tt.want)
		}
	}
}

func TestBuildName(t *testing.T) {
	tests := []struct {
		full, first, last, want string
	}{
		{"Sarah  Jones", "ignored", "ignored", "Sarah Jones"},
		{"", "Sarah", "Jones", "Sarah Jones"},
		{"", "Sarah", "NoSurname", "Sarah"},
		{"", "Sarah", "n/a", "Sarah"},
		{"", "", "", ""},
	}

	for _, tt := range tests {
		if got := buildName(tt.full, tt.first, tt.last); got != tt.want {
			t.Errorf("buildName(%q, %q, %q) = %q; want %q", tt.full, tt.first, tt.last, got, tt.want)
		}
	}
}

func TestLeadIDStable(t *testing.T) {
	ts := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	a := LeadID(models.SourceLeadForm, "a@example.com", ts)
	b := LeadID(models.SourceLeadForm, "a@example.com", ts.In(time.FixedZone("X", 3600)))
	if a != b {
		t.Errorf("LeadID differs for the same instant: %s vs %s", a, b)
	}
	if c := LeadID(models.SourceOverview, "a@example.com", ts); c == a {
		t.Error("LeadID should depend on the source tab")
	}
}
