package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/AlfredvdM/igrow-lms-sub000/models"
	"github.com/AlfredvdM/igrow-lms-sub000/utils"
)

// HighIntentScore is the score from which a lead without an explicit
// intent is treated as high intent.
const HighIntentScore = 70

var (
	// numberRegexp captures the first signed decimal in a cell
	numberRegexp = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	// serialRegexp matches a spreadsheet serial date such as 45321.5
	serialRegexp = regexp.MustCompile(`^\d{5}(?:\.\d+)?$`)

	leadNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("leads.igrow"))

	sheetEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

	lastNamePlaceholders = map[string]struct{}{
		"not supplied": {}, "nosurname": {}, "n/a": {}, "na": {}, "-": {}, "none": {},
	}

	// local layouts are interpreted in the normalizer's location
	timestampLayouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
		"1/2/2006 15:04:05",
		"1/2/2006 15:04",
		"1/2/2006",
		"2006/01/02 15:04:05",
		"02 Jan 2006 15:04",
		"Jan 2, 2006 15:04",
		"Jan 2, 2006",
	}
)

// tabSchema lists the accepted column headers of one sheet tab, per field.
// Headers are matched case-insensitively; the first non-empty cell wins.
type tabSchema struct {
	id, timestamp                     []string
	name, firstName, lastName         []string
	email, phone                      []string
	score, intent, status, source     []string
	apartment, income, employment     []string
	pets, moveIn, contact, outreach   []string
	engagement, sentiment             []string
	utmSource, utmMedium, utmCampaign []string
	summary                           []string
	defaultSource                     string
}

var schemas = map[models.Source]tabSchema{
	models.SourceOverview: {
		id:          []string{"id", "lead id"},
		timestamp:   []string{"timestamp", "date", "created at"},
		name:        []string{"name", "full name"},
		firstName:   []string{"first name"},
		lastName:    []string{"last name", "surname"},
		email:       []string{"email", "email address"},
		phone:       []string{"phone", "phone number"},
		score:       []string{"lead score", "score"},
		intent:      []string{"lead intent", "intent"},
		status:      []string{"lead status", "status"},
		source:      []string{"lead source", "source"},
		apartment:   []string{"apartment preference"},
		income:      []string{"income range", "income"},
		employment:  []string{"employment status"},
		pets:        []string{"pet preference", "pets"},
		moveIn:      []string{"move-in timing", "move in timing"},
		contact:     []string{"preferred contact", "preferred contact method"},
		outreach:    []string{"best time to reach", "best outreach time"},
		engagement:  []string{"engagement level"},
		sentiment:   []string{"sentiment score"},
		utmSource:   []string{"utm source", "utm_source"},
		utmMedium:   []string{"utm medium", "utm_medium"},
		utmCampaign: []string{"utm campaign", "utm_campaign"},
		summary:     []string{"conversation summary", "summary"},
	},
	models.SourceLeadForm: {
		id:            []string{"submission id", "id"},
		timestamp:     []string{"submitted at", "timestamp", "submission date"},
		name:          []string{"full name"},
		firstName:     []string{"first name"},
		lastName:      []string{"last name", "surname"},
		email:         []string{"email address", "email"},
		phone:         []string{"phone number", "phone", "mobile"},
		score:         []string{"lead score", "score"},
		intent:        []string{"intent", "lead intent"},
		status:        []string{"status", "lead status"},
		apartment:     []string{"apartment type", "which apartment are you interested in?"},
		income:        []string{"monthly income", "income"},
		employment:    []string{"employment", "employment status"},
		pets:          []string{"pets", "do you have pets?"},
		moveIn:        []string{"move in date", "when do you want to move in?"},
		contact:       []string{"contact preference", "how should we contact you?"},
		outreach:      []string{"best time to call", "best time to reach"},
		utmSource:     []string{"utm_source", "utm source"},
		utmMedium:     []string{"utm_medium", "utm medium"},
		utmCampaign:   []string{"utm_campaign", "utm campaign"},
		defaultSource: "Lead Form",
	},
	models.SourceAIConversation: {
		id:            []string{"conversation id", "id"},
		timestamp:     []string{"conversation date", "timestamp", "date"},
		name:          []string{"customer name", "name"},
		firstName:     []string{"first name"},
		lastName:      []string{"last name"},
		email:         []string{"customer email", "email"},
		phone:         []string{"customer phone", "phone", "whatsapp number"},
		score:         []string{"lead score", "score"},
		intent:        []string{"intent level", "lead intent", "intent"},
		status:        []string{"lead status", "status"},
		apartment:     []string{"apartment interest", "apartment preference"},
		income:        []string{"budget/income", "income"},
		employment:    []string{"job status", "employment status"},
		pets:          []string{"has pets", "pets"},
		moveIn:        []string{"move-in timeline", "move in timeline"},
		contact:       []string{"preferred channel", "preferred contact"},
		outreach:      []string{"availability", "best time to reach"},
		engagement:    []string{"engagement", "engagement level"},
		sentiment:     []string{"sentiment", "sentiment score"},
		summary:       []string{"summary", "conversation summary"},
		defaultSource: "AI Conversation",
	},
}

var intentRules = []rule{
	{hasWord("high", "hot", "strong"), string(models.IntentHigh)},
	{hasWord("low", "cold", "weak"), string(models.IntentLow)},
}

// Negated answers such as "not contacted yet" are checked before the stage
// words they contain.
var statusRules = []rule{
	{hasWord("not contacted", "not yet contacted", "no contact", "no answer", "not reached"), string(models.StatusNew)},
	{anyOf(hasWord("lost", "dead", "not interested", "not qualified"), hasWordPrefix("unqualif", "disqualif")), string(models.StatusLost)},
	{anyOf(hasWordPrefix("convert", "signed", "leased"), hasWord("won")), string(models.StatusConverted)},
	{hasWordPrefix("qualif"), string(models.StatusQualified)},
	{hasWordPrefix("contact", "reached", "follow"), string(models.StatusContacted)},
	{hasWord("new", "open", "fresh", "uncontacted"), string(models.StatusNew)},
}

// Normalizer turns raw sheet rows into Leads.
type Normalizer struct {
	logger *utils.Logger
	loc    *time.Location
}

// NewNormalizer creates a Normalizer. Timestamps without a zone are read in
// loc; a nil loc means UTC.
func NewNormalizer(logger *utils.Logger, loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{logger: logger, loc: loc}
}

// Normalize converts the rows of one tab and returns the leads together with
// the number of rows skipped for a missing email or unparseable timestamp.
func (n *Normalizer) Normalize(rows []models.RawRow, source models.Source) ([]*models.Lead, int) {
	schema, ok := schemas[source]
	if !ok {
		n.logger.Warn("[normalizer] Unknown source %q, skipping %d rows", source, len(rows))
		return []*models.Lead{}, len(rows)
	}

	result := make([]*models.Lead, 0, len(rows))
	for i, row := range rows {
		lead, reason := n.normalizeRow(lowerKeys(row), schema, source)
		if lead == nil {
			n.logger.Debug("[normalizer] Skipping %s row %d: %s", source, i+1, reason)
			continue
		}
		result = append(result, lead)
	}

	skipped := len(rows) - len(result)
	n.logger.Info("[normalizer] Normalized %s: %d → %d leads (skipped %d)",
		source, len(rows), len(result), skipped)
	return result, skipped
}

func (n *Normalizer) normalizeRow(cells map[string]string, s tabSchema, source models.Source) (*models.Lead, string) {
	get := func(aliases []string) string {
		for _, a := range aliases {
			if v := strings.TrimSpace(cells[a]); v != "" {
				return v
			}
		}
		return ""
	}

	email := normaliseEmail(get(s.email))
	if email == "" {
		return nil, "missing email"
	}
	ts, ok := n.parseTimestamp(get(s.timestamp))
	if !ok {
		return nil, "unparseable timestamp"
	}

	score := parseScore(get(s.score))
	leadSource := normaliseText(get(s.source))
	if leadSource == "" {
		leadSource = s.defaultSource
	}

	lead := &models.Lead{
		ID:                   get(s.id),
		Timestamp:            ts,
		Name:                 buildName(get(s.name), get(s.firstName), get(s.lastName)),
		Email:                email,
		Phone:                normalisePhone(get(s.phone)),
		LeadScore:            score,
		LeadIntent:           classifyIntent(get(s.intent), score),
		LeadStatus:           models.Status(classify(get(s.status), statusRules)),
		LeadSource:           leadSource,
		OriginalSource:       source,
		ApartmentPreferences: ClassifyApartments(get(s.apartment)),
		IncomeRange:          ClassifyIncome(get(s.income)),
		EmploymentStatus:     ClassifyEmployment(get(s.employment)),
		PetPreference:        ClassifyPet(get(s.pets)),
		MoveInTiming:         ClassifyMoveIn(get(s.moveIn)),
		PreferredContact:     ClassifyContact(get(s.contact)),
		BestTimeToReach:      ClassifyOutreachTime(get(s.outreach)),
		EngagementLevel:      ClassifyEngagement(get(s.engagement)),
		SentimentScore:       parseOptionalNumber(get(s.sentiment)),
		UTMSource:            normaliseText(get(s.utmSource)),
		UTMMedium:            normaliseText(get(s.utmMedium)),
		UTMCampaign:          normaliseText(get(s.utmCampaign)),
		ConversationSummary:  normaliseText(get(s.summary)),
	}
	if lead.ID == "" {
		lead.ID = LeadID(source, email, ts)
	}
	return lead, ""
}

// LeadID derives a stable identifier for rows that carry none, so the same
// row always gets the same ID across requests.
func LeadID(source models.Source, email string, ts time.Time) string {
	key := string(source) + "|" + email + "|" + ts.UTC().Format(time.RFC3339Nano)
	return uuid.NewSHA1(leadNamespace, []byte(key)).String()
}

// parseTimestamp accepts RFC3339, the common sheet layouts and spreadsheet
// serial dates. It never substitutes the current time.
func (n *Normalizer) parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, n.loc); err == nil {
			return t, true
		}
	}
	if serialRegexp.MatchString(raw) {
		days, err := strconv.ParseFloat(raw, 64)
		if err == nil {
			d := sheetEpoch.Add(time.Duration(days * float64(24*time.Hour)))
			return time.Date(d.Year(), d.Month(), d.Day(), d.Hour(), d.Minute(), d.Second(), 0, n.loc), true
		}
	}
	return time.Time{}, false
}

func classifyIntent(raw string, score float64) models.Intent {
	if v := classify(raw, intentRules); v != "" {
		return models.Intent(v)
	}
	if score >= HighIntentScore {
		return models.IntentHigh
	}
	return models.IntentLow
}

// parseScore coerces a score cell to a finite, non-negative number; anything
// unreadable counts as zero.
func parseScore(raw string) float64 {
	v := parseOptionalNumber(raw)
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}

func parseOptionalNumber(raw string) *float64 {
	match := numberRegexp.FindString(strings.ReplaceAll(raw, ",", "."))
	if match == "" {
		return nil
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func buildName(full, first, last string) string {
	if full = normaliseText(full); full != "" {
		return full
	}
	first = normaliseText(first)
	last = normaliseText(last)
	if _, placeholder := lastNamePlaceholders[strings.ToLower(last)]; placeholder {
		last = ""
	}
	return strings.TrimSpace(first + " " + last)
}

func normaliseEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if !strings.Contains(s, "@") {
		return ""
	}
	return s
}

// normalisePhone strips every whitespace character.
func normalisePhone(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

func lowerKeys(row models.RawRow) map[string]string {
	out := make(map[string]string, len(row))
	for k, v := range row {
		key := strings.ToLower(normaliseText(k))
		if _, exists := out[key]; !exists {
			out[key] = v
		}
	}
	return out
}
