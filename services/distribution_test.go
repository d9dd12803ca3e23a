package services

import (
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/AlfredvdM/igrow-lms-sub000/models"
)

func names(items []models.DistributionItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func percentSum(t *testing.T, items []models.DistributionItem) int {
	t.Helper()
	sum := 0
	for _, it := range items {
		p, err := strconv.Atoi(strings.TrimSuffix(it.Percentage, "%"))
		if err != nil {
			t.Fatalf("bad percentage %q", it.Percentage)
		}
		sum += p
	}
	return sum
}

func TestIntentDistributionScenario(t *testing.T) {
	leads := []*models.Lead{
		{LeadIntent: models.IntentHigh, LeadScore: 80},
		{LeadIntent: models.IntentHigh, LeadScore: 60},
		{LeadIntent: models.IntentLow, LeadScore: 40},
	}

	got := CalculateIntentDistribution(leads)
	want := []models.DistributionItem{
		{Name: "High", Value: 2, Percentage: "67%", Fill: ColorFor("High")},
		{Name: "Low", Value: 1, Percentage: "33%", Fill: ColorFor("Low")},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CalculateIntentDistribution() = %+v; want %+v", got, want)
	}
}

func TestSingleValuedDistributionsCoverEveryLead(t *testing.T) {
	leads := sampleLeads()
	leads = append(leads,
		&models.Lead{ID: "5", LeadIntent: "Warm", IncomeRange: Income6kPlus, UTMSource: "google"},
		&models.Lead{ID: "6", LeadIntent: models.IntentHigh, EmploymentStatus: EmploymentStudent, UTMSource: "google"},
	)

	d := CalculateDistributions(leads)
	single := map[string][]models.DistributionItem{
		"intent":     d.Intent,
		"status":     d.Status,
		"source":     d.Source,
		"income":     d.Income,
		"employment": d.Employment,
		"pets":       d.Pets,
		"contact":    d.ContactMethod,
		"outreach":   d.OutreachTime,
		"engagement": d.Engagement,
		"moveIn":     d.MoveInTiming,
		"utm":        d.UTMSource,
		"score":      d.LeadScoreRanges,
	}

	for name, items := range single {
		total := 0
		for _, it := range items {
			total += it.Value
			if it.Fill == "" {
				t.Errorf("%s: %q has no fill", name, it.Name)
			}
		}
		if total != len(leads) {
			t.Errorf("%s: values sum to %d; want %d", name, total, len(leads))
		}
		if sum := percentSum(t, items); sum != 100 {
			t.Errorf("%s: percentages sum to %d; want 100", name, sum)
		}
	}
}

func TestPercentagesSumToHundredOverEqualBuckets(t *testing.T) {
	leads := []*models.Lead{{}}
	for _, status := range EmploymentStatuses {
		leads = append(leads, &models.Lead{EmploymentStatus: status})
	}

	items := CalculateEmploymentDistribution(leads)
	if len(items) != 7 {
		t.Fatalf("got %d buckets; want 7", len(items))
	}
	if sum := percentSum(t, items); sum != 100 {
		t.Errorf("percentages sum to %d; want 100", sum)
	}
	for _, it := range items {
		if it.Percentage != "14%" && it.Percentage != "15%" {
			t.Errorf("%s: %s is more than a point away from 14.3%%", it.Name, it.Percentage)
		}
	}
}

func TestDistributionOrdering(t *testing.T) {
	leads := []*models.Lead{
		{LeadStatus: models.StatusLost},
		{LeadStatus: models.StatusQualified},
		{LeadStatus: models.StatusQualified},
		{},
		{LeadStatus: models.StatusContacted},
	}

	got := names(CalculateStatusDistribution(leads))
	want := []string{"Qualified", "New", "Contacted", "Lost"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("status order = %v; want %v", got, want)
	}
}

func TestSourceDistributionUnknownValues(t *testing.T) {
	leads := []*models.Lead{
		{LeadSource: "Walk-in"},
		{LeadSource: SourceLeadForm},
		{LeadSource: "Referral"},
		{},
	}

	got := names(CalculateSourceDistribution(leads))
	want := []string{SourceLeadForm, "Referral", "Walk-in", Other}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("source order = %v; want %v", got, want)
	}
	for _, it := range CalculateSourceDistribution(leads) {
		if it.Name == "Referral" && it.Fill != FallbackColor {
			t.Errorf("unknown source got fill %q; want fallback", it.Fill)
		}
	}
}

func TestApartmentDistributionMultiValue(t *testing.T) {
	leads := []*models.Lead{
		{ApartmentPreferences: []string{ApartmentStudio, Apartment1Bed}},
		{ApartmentPreferences: []string{ApartmentStudio}},
		{},
	}

	got := CalculateApartmentDistribution(leads)
	want := []models.DistributionItem{
		{Name: ApartmentStudio, Value: 2, Percentage: "67%", Fill: ColorFor(ApartmentStudio)},
		{Name: Apartment1Bed, Value: 1, Percentage: "33%", Fill: ColorFor(Apartment1Bed)},
		{Name: NotSpecified, Value: 1, Percentage: "33%", Fill: FallbackColor},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CalculateApartmentDistribution() = %+v; want %+v", got, want)
	}
}

func TestLeadScoreDistributionKeepsBins(t *testing.T) {
	leads := []*models.Lead{
		{LeadScore: 95}, {LeadScore: 81}, {LeadScore: 80}, {LeadScore: 20}, {LeadScore: 0},
	}

	got := CalculateLeadScoreDistribution(leads)
	if !reflect.DeepEqual(names(got), ScoreRanges) {
		t.Fatalf("bins = %v; want %v", names(got), ScoreRanges)
	}
	values := []int{got[0].Value, got[1].Value, got[2].Value, got[3].Value, got[4].Value}
	if !reflect.DeepEqual(values, []int{2, 0, 0, 1, 2}) {
		t.Errorf("bin values = %v; want [2 0 0 1 2]", values)
	}
}

func TestDistributionsEmptyInput(t *testing.T) {
	d := CalculateDistributions(nil)

	if got := names(d.Intent); !reflect.DeepEqual(got, []string{"High", "Low"}) {
		t.Errorf("empty intent = %v", got)
	}
	if got := names(d.Apartment); !reflect.DeepEqual(got, ApartmentTypes) {
		t.Errorf("empty apartment = %v", got)
	}
	if got := names(d.UTMSource); !reflect.DeepEqual(got, []string{UTMDirect}) {
		t.Errorf("empty utm = %v", got)
	}
	for _, it := range d.Status {
		if it.Value != 0 || it.Percentage != "0%" {
			t.Errorf("empty status item %+v; want zero", it)
		}
	}
}

func TestUTMSourceDistributionDirect(t *testing.T) {
	leads := []*models.Lead{{UTMSource: "facebook"}, {}, {}, {UTMSource: "google"}}
	got := names(CalculateUTMSourceDistribution(leads))
	want := []string{UTMDirect, "facebook", "google"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("utm order = %v; want %v", got, want)
	}
}

func TestDistributionsAreIdempotent(t *testing.T) {
	leads := sampleLeads()
	if !reflect.DeepEqual(CalculateDistributions(leads), CalculateDistributions(leads)) {
		t.Error("same leads gave different distributions")
	}
}
