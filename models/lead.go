package models

import (
	"strings"
	"time"
)

// RawRow is one spreadsheet row keyed by its column header.
// Rows are loosely typed and only ever read by the normalizer.
type RawRow map[string]string

// Source identifies which of the three sheet tabs produced a lead.
type Source string

const (
	SourceOverview       Source = "overview"
	SourceLeadForm       Source = "leadForm"
	SourceAIConversation Source = "aiConversation"
)

// Sources lists every tab in the order they are read.
var Sources = []Source{SourceOverview, SourceLeadForm, SourceAIConversation}

// Intent is the coarse lead quality tier.
type Intent string

const (
	IntentHigh Intent = "High"
	IntentLow  Intent = "Low"
)

// IsHigh and IsLow match on substrings so that values outside the closed set
// still land in a tier when they mention one.
func (i Intent) IsHigh() bool { return strings.Contains(strings.ToLower(string(i)), "high") }
func (i Intent) IsLow() bool  { return strings.Contains(strings.ToLower(string(i)), "low") }

// Status is the pipeline stage of a lead.
type Status string

const (
	StatusNew       Status = "New"
	StatusContacted Status = "Contacted"
	StatusQualified Status = "Qualified"
	StatusConverted Status = "Converted"
	StatusLost      Status = "Lost"
)

// Statuses is the closed status set in pipeline order.
var Statuses = []Status{StatusNew, StatusContacted, StatusQualified, StatusConverted, StatusLost}

// Lead is the normalized record every analytics function operates on.
// Empty strings mean "not specified". Leads are never mutated after the
// normalizer builds them.
type Lead struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`

	LeadScore      float64 `json:"leadScore"`
	LeadIntent     Intent  `json:"leadIntent"`
	LeadStatus     Status  `json:"leadStatus,omitempty"`
	LeadSource     string  `json:"leadSource,omitempty"`
	OriginalSource Source  `json:"originalSource"`

	ApartmentPreferences []string `json:"apartmentPreferences,omitempty"`
	IncomeRange          string   `json:"incomeRange,omitempty"`
	EmploymentStatus     string   `json:"employmentStatus,omitempty"`
	PetPreference        string   `json:"petPreference,omitempty"`
	MoveInTiming         string   `json:"moveInTiming,omitempty"`
	PreferredContact     string   `json:"preferredContact,omitempty"`
	BestTimeToReach      string   `json:"bestTimeToReach,omitempty"`
	EngagementLevel      string   `json:"engagementLevel,omitempty"`
	SentimentScore       *float64 `json:"sentimentScore,omitempty"`

	UTMSource           string `json:"utmSource,omitempty"`
	UTMMedium           string `json:"utmMedium,omitempty"`
	UTMCampaign         string `json:"utmCampaign,omitempty"`
	ConversationSummary string `json:"conversationSummary,omitempty"`
}

// EffectiveStatus reports the status used for grouping; absent means New.
func (l *Lead) EffectiveStatus() Status {
	if l.LeadStatus == "" {
		return StatusNew
	}
	return l.LeadStatus
}

// LeadFilter holds the optional predicates of a lead listing. A zero value
// matches every lead.
type LeadFilter struct {
	Source   string
	Intent   string
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
	Search   string
}

// SortOrder is the direction of a lead sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)
