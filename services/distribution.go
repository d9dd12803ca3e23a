package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/AlfredvdM/igrow-lms-sub000/models"
)

// FallbackColor is used for every category without an entry in the table.
const FallbackColor = "#9CA3AF"

// Source labels used when a tab has no lead source column.
const (
	SourceLeadForm       = "Lead Form"
	SourceAIConversation = "AI Conversation"
	UTMDirect            = "Direct"
)

// Lead score histogram bins.
const (
	Score0To20   = "0-20"
	Score21To40  = "21-40"
	Score41To60  = "41-60"
	Score61To80  = "61-80"
	Score81To100 = "81-100"
)

// ScoreRanges is the lead score histogram in bin order.
var ScoreRanges = []string{Score0To20, Score21To40, Score41To60, Score61To80, Score81To100}

var categoryColors = map[string]string{
	string(models.IntentHigh): "#10B981",
	EngagementMedium:          "#3B82F6",
	string(models.IntentLow):  "#F59E0B",

	string(models.StatusNew):       "#6366F1",
	string(models.StatusContacted): "#8B5CF6",
	string(models.StatusQualified): "#0EA5E9",
	string(models.StatusConverted): "#22C55E",
	string(models.StatusLost):      "#EF4444",

	SourceLeadForm:       "#3B82F6",
	SourceAIConversation: "#8B5CF6",
	UTMDirect:            "#64748B",

	ApartmentStudio:    "#0EA5E9",
	Apartment1Bed:      "#3B82F6",
	Apartment2Bed1Bath: "#6366F1",
	Apartment2Bed2Bath: "#8B5CF6",
	Apartment3Bed:      "#A855F7",
	ApartmentPenthouse: "#EC4899",
	ApartmentTownhouse: "#F97316",

	IncomeUnder2k: "#EF4444",
	Income2kTo4k:  "#F59E0B",
	Income4kTo6k:  "#3B82F6",
	Income6kPlus:  "#10B981",

	EmploymentFullTime: "#10B981",
	EmploymentPartTime: "#3B82F6",
	EmploymentSelf:     "#8B5CF6",
	EmploymentStudent:  "#F59E0B",
	EmploymentRetired:  "#64748B",
	EmploymentNone:     "#EF4444",

	PetNone:     "#64748B",
	PetDog:      "#F59E0B",
	PetCat:      "#8B5CF6",
	PetMultiple: "#EC4899",
	PetOther:    "#0EA5E9",

	MoveInImmediately: "#EF4444",
	MoveInWithinMonth: "#F59E0B",
	MoveIn1To3Months:  "#3B82F6",
	MoveIn3PlusMonths: "#64748B",

	ContactWhatsApp: "#25D366",
	ContactEmail:    "#3B82F6",
	ContactPhone:    "#F59E0B",

	TimeMorning:   "#FBBF24",
	TimeAfternoon: "#F97316",
	TimeEvening:   "#6366F1",
	TimeAnytime:   "#10B981",

	Score0To20:   "#EF4444",
	Score21To40:  "#F97316",
	Score41To60:  "#F59E0B",
	Score61To80:  "#3B82F6",
	Score81To100: "#10B981",
}

// ColorFor returns the display color of a category.
func ColorFor(category string) string {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return FallbackColor
}

// distribution describes one categorical breakdown.
type distribution struct {
	known    []string
	fallback string
	values   func(l *models.Lead) []string
	// binned distributions keep known order instead of ranking by count
	binned bool
}

func single(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

// calculate counts every lead into at least one bucket. Leads whose values
// are empty go to the fallback bucket. Percentages are relative to the
// number of leads, so multi-valued breakdowns can exceed 100 in total.
// Single-valued breakdowns always total exactly 100.
func (d distribution) calculate(leads []*models.Lead) []models.DistributionItem {
	total := len(leads)
	if total == 0 {
		return d.placeholders()
	}

	counts := make(map[string]int)
	for _, l := range leads {
		vals := d.values(l)
		if len(vals) == 0 {
			vals = []string{d.fallback}
		}
		for _, v := range vals {
			counts[v]++
		}
	}

	names := d.orderedNames(counts)
	percents := percentages(names, counts, total)
	items := make([]models.DistributionItem, 0, len(names))
	for i, name := range names {
		items = append(items, newItem(name, counts[name], percents[i]))
	}
	if !d.binned {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Value > items[j].Value
		})
	}
	return items
}

// orderedNames lists observed categories as known vocabulary first, then
// other values alphabetically, then the fallback bucket. Binned
// distributions list every bin.
func (d distribution) orderedNames(counts map[string]int) []string {
	names := make([]string, 0, len(counts))
	isKnown := make(map[string]struct{}, len(d.known))
	for _, k := range d.known {
		isKnown[k] = struct{}{}
		if _, seen := counts[k]; seen || d.binned {
			names = append(names, k)
		}
	}

	var others []string
	for name := range counts {
		if _, ok := isKnown[name]; ok || name == d.fallback {
			continue
		}
		others = append(others, name)
	}
	sort.Strings(others)
	names = append(names, others...)

	if _, ok := isKnown[d.fallback]; !ok && counts[d.fallback] > 0 {
		names = append(names, d.fallback)
	}
	return names
}

// placeholders keeps charts stable on an empty dashboard.
func (d distribution) placeholders() []models.DistributionItem {
	known := d.known
	if len(known) == 0 {
		known = []string{d.fallback}
	}
	items := make([]models.DistributionItem, 0, len(known))
	for _, k := range known {
		items = append(items, newItem(k, 0, 0))
	}
	return items
}

func newItem(name string, count, percent int) models.DistributionItem {
	return models.DistributionItem{
		Name:       name,
		Value:      count,
		Percentage: fmt.Sprintf("%d%%", percent),
		Fill:       ColorFor(name),
	}
}

func percentOf(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// percentages rounds every bucket's share of total. When the buckets
// partition the leads, the points lost to rounding go to the largest
// remainders so the shares add up to exactly 100; each share stays within
// one point of its exact value.
func percentages(names []string, counts map[string]int, total int) []int {
	out := make([]int, len(names))
	sum := 0
	for _, n := range names {
		sum += counts[n]
	}
	if sum != total {
		for i, n := range names {
			out[i] = int(math.Round(percentOf(counts[n], total)))
		}
		return out
	}

	remainders := make([]int, len(names))
	order := make([]int, len(names))
	assigned := 0
	for i, n := range names {
		out[i] = counts[n] * 100 / total
		remainders[i] = counts[n] * 100 % total
		order[i] = i
		assigned += out[i]
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})
	for k := 0; k < 100-assigned && k < len(order); k++ {
		out[order[k]]++
	}
	return out
}

var (
	intentDistribution = distribution{
		known:    []string{string(models.IntentHigh), string(models.IntentLow)},
		fallback: Other,
		values:   func(l *models.Lead) []string { return single(string(l.LeadIntent)) },
	}
	statusDistribution = distribution{
		known:    statusNames(),
		fallback: string(models.StatusNew),
		values:   func(l *models.Lead) []string { return single(string(l.EffectiveStatus())) },
	}
	sourceDistribution = distribution{
		known:    []string{SourceLeadForm, SourceAIConversation},
		fallback: Other,
		values:   func(l *models.Lead) []string { return single(l.LeadSource) },
	}
	apartmentDistribution = distribution{
		known:    ApartmentTypes,
		fallback: NotSpecified,
		values:   func(l *models.Lead) []string { return l.ApartmentPreferences },
	}
	incomeDistribution = distribution{
		known:    IncomeRanges,
		fallback: NotSpecified,
		values:   func(l *models.Lead) []string { return single(l.IncomeRange) },
	}
	employmentDistribution = distribution{
		known:    EmploymentStatuses,
		fallback: NotSpecified,
		values:   func(l *models.Lead) []string { return single(l.EmploymentStatus) },
	}
	petDistribution = distribution{
		known:    PetPreferences,
		fallback: NotSpecified,
		values:   func(l *models.Lead) []string { return single(l.PetPreference) },
	}
	contactDistribution = distribution{
		known:    ContactMethods,
		fallback: NotSpecified,
		values:   func(l *models.Lead) []string { return single(l.PreferredContact) },
	}
	outreachDistribution = distribution{
		known:    OutreachTimes,
		fallback: NotSpecified,
		values:   func(l *models.Lead) []string { return single(l.BestTimeToReach) },
	}
	engagementDistribution = distribution{
		known:    EngagementLevels,
		fallback: NotSpecified,
		values:   func(l *models.Lead) []string { return single(l.EngagementLevel) },
	}
	moveInDistribution = distribution{
		known:    MoveInTimings,
		fallback: NotSpecified,
		values:   func(l *models.Lead) []string { return single(l.MoveInTiming) },
	}
	utmSourceDistribution = distribution{
		fallback: UTMDirect,
		values:   func(l *models.Lead) []string { return single(l.UTMSource) },
	}
	scoreDistribution = distribution{
		known:    ScoreRanges,
		fallback: Score0To20,
		values:   func(l *models.Lead) []string { return single(scoreRange(l.LeadScore)) },
		binned:   true,
	}
)

func statusNames() []string {
	names := make([]string, len(models.Statuses))
	for i, s := range models.Statuses {
		names[i] = string(s)
	}
	return names
}

func scoreRange(score float64) string {
	switch {
	case score <= 20:
		return Score0To20
	case score <= 40:
		return Score21To40
	case score <= 60:
		return Score41To60
	case score <= 80:
		return Score61To80
	default:
		return Score81To100
	}
}

// CalculateIntentDistribution breaks leads down by intent tier.
func CalculateIntentDistribution(leads []*models.Lead) []models.DistributionItem {
	return intentDistribution.calculate(leads)
}

// CalculateStatusDistribution breaks leads down by pipeline status; leads
// without a status count as New.
func CalculateStatusDistribution(leads []*models.Lead) []models.DistributionItem {
	return statusDistribution.calculate(leads)
}

// CalculateSourceDistribution breaks leads down by lead source.
func CalculateSourceDistribution(leads []*models.Lead) []models.DistributionItem {
	return sourceDistribution.calculate(leads)
}

// CalculateApartmentDistribution counts every apartment type a lead picked,
// so the values can add up to more than the number of leads.
func CalculateApartmentDistribution(leads []*models.Lead) []models.DistributionItem {
	return apartmentDistribution.calculate(leads)
}

func CalculateIncomeDistribution(leads []*models.Lead) []models.DistributionItem {
	return incomeDistribution.calculate(leads)
}

func CalculateEmploymentDistribution(leads []*models.Lead) []models.DistributionItem {
	return employmentDistribution.calculate(leads)
}

func CalculatePetDistribution(leads []*models.Lead) []models.DistributionItem {
	return petDistribution.calculate(leads)
}

func CalculateContactMethodDistribution(leads []*models.Lead) []models.DistributionItem {
	return contactDistribution.calculate(leads)
}

func CalculateOutreachTimeDistribution(leads []*models.Lead) []models.DistributionItem {
	return outreachDistribution.calculate(leads)
}

func CalculateEngagementDistribution(leads []*models.Lead) []models.DistributionItem {
	return engagementDistribution.calculate(leads)
}

func CalculateMoveInDistribution(leads []*models.Lead) []models.DistributionItem {
	return moveInDistribution.calculate(leads)
}

// CalculateUTMSourceDistribution groups by the literal utm_source; leads
// without one are Direct.
func CalculateUTMSourceDistribution(leads []*models.Lead) []models.DistributionItem {
	return utmSourceDistribution.calculate(leads)
}

// CalculateLeadScoreDistribution is a histogram over fixed score bins, kept
// in bin order with empty bins included.
func CalculateLeadScoreDistribution(leads []*models.Lead) []models.DistributionItem {
	return scoreDistribution.calculate(leads)
}

// CalculateDistributions runs every calculator over the same leads.
func CalculateDistributions(leads []*models.Lead) models.Distributions {
	return models.Distributions{
		Intent:          CalculateIntentDistribution(leads),
		Status:          CalculateStatusDistribution(leads),
		Source:          CalculateSourceDistribution(leads),
		Apartment:       CalculateApartmentDistribution(leads),
		Income:          CalculateIncomeDistribution(leads),
		Employment:      CalculateEmploymentDistribution(leads),
		Pets:            CalculatePetDistribution(leads),
		ContactMethod:   CalculateContactMethodDistribution(leads),
		OutreachTime:    CalculateOutreachTimeDistribution(leads),
		Engagement:      CalculateEngagementDistribution(leads),
		MoveInTiming:    CalculateMoveInDistribution(leads),
		UTMSource:       CalculateUTMSourceDistribution(leads),
		LeadScoreRanges: CalculateLeadScoreDistribution(leads),
	}
}
