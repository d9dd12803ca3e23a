package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Fallback bucket labels.
const (
	NotSpecified = "Not specified"
	Other        = "Other"
)

// Apartment types, most specific first.
const (
	ApartmentPenthouse = "Penthouse"
	ApartmentTownhouse = "Townhouse"
	ApartmentStudio    = "Studio Apartment"
	Apartment3Bed      = "3 Bedroom Apartment"
	Apartment2Bed2Bath = "2 Bedroom 2 Bathroom Apartment"
	Apartment2Bed1Bath = "2 Bedroom 1 Bathroom Apartment"
	Apartment1Bed      = "1 Bedroom Apartment"
)

// Monthly income brackets.
const (
	IncomeUnder2k = "Under $2,000"
	Income2kTo4k  = "$2,000 - $3,999"
	Income4kTo6k  = "$4,000 - $5,999"
	Income6kPlus  = "$6,000+"
)

const (
	EmploymentFullTime = "Full-Time"
	EmploymentPartTime = "Part-Time"
	EmploymentSelf     = "Self-Employed"
	EmploymentStudent  = "Student"
	EmploymentRetired  = "Retired"
	EmploymentNone     = "Unemployed"
)

const (
	PetNone     = "No Pets"
	PetDog      = "Dog"
	PetCat      = "Cat"
	PetMultiple = "Multiple Pets"
	PetOther    = "Other Pet"
)

const (
	MoveInImmediately = "Immediately"
	MoveInWithinMonth = "Within 1 month"
	MoveIn1To3Months  = "1-3 months"
	MoveIn3PlusMonths = "3+ months"
)

const (
	ContactWhatsApp = "WhatsApp"
	ContactEmail    = "Email"
	ContactPhone    = "Phone Call"
)

const (
	TimeMorning   = "Morning"
	TimeAfternoon = "Afternoon"
	TimeEvening   = "Evening"
	TimeAnytime   = "Anytime"
)

const (
	EngagementHigh   = "High"
	EngagementMedium = "Medium"
	EngagementLow    = "Low"
)

// rule maps a lower-cased, trimmed value to a vocabulary label.
type rule struct {
	match func(s string) bool
	value string
}

// classify runs rules top to bottom and returns the first matching label,
// or "" when nothing matches.
func classify(raw string, rules []rule) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	for _, r := range rules {
		if r.match(s) {
			return r.value
		}
	}
	return ""
}

func containsAny(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}
}

func equalsAny(vals ...string) func(string) bool {
	return func(s string) bool {
		for _, v := range vals {
			if s == v {
				return true
			}
		}
		return false
	}
}

func hasPrefixAny(prefixes ...string) func(string) bool {
	return func(s string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(s, p) {
				return true
			}
		}
		return false
	}
}

// words splits s into lower-case letter and digit runs.
func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// hasWord matches whole words or multi-word phrases, so "low" does not
// match "follow" and "any time" does not match "company time".
func hasWord(phrases ...string) func(string) bool {
	padded := make([]string, len(phrases))
	for i, p := range phrases {
		padded[i] = " " + strings.Join(words(p), " ") + " "
	}
	return func(s string) bool {
		text := " " + strings.Join(words(s), " ") + " "
		for _, p := range padded {
			if strings.Contains(text, p) {
				return true
			}
		}
		return false
	}
}

// hasWordPrefix matches any word starting with one of prefixes.
func hasWordPrefix(prefixes ...string) func(string) bool {
	return func(s string) bool {
		for _, w := range words(s) {
			for _, p := range prefixes {
				if strings.HasPrefix(w, p) {
					return true
				}
			}
		}
		return false
	}
}

func allOf(preds ...func(string) bool) func(string) bool {
	return func(s string) bool {
		for _, p := range preds {
			if !p(s) {
				return false
			}
		}
		return true
	}
}

func anyOf(preds ...func(string) bool) func(string) bool {
	return func(s string) bool {
		for _, p := range preds {
			if p(s) {
				return true
			}
		}
		return false
	}
}

var (
	oneBed   = containsAny("1 bed", "1-bed", "one bed", "1br", "1 br")
	twoBed   = containsAny("2 bed", "2-bed", "two bed", "2br", "2 br")
	threeBed = containsAny("3 bed", "3-bed", "three bed", "3br", "3 br")
	twoBath  = containsAny("2 bath", "2-bath", "two bath", "2ba")
)

// "2 bed" + "2 bath" must be checked before "2 bed" alone.
var apartmentRules = []rule{
	{containsAny("penthouse"), ApartmentPenthouse},
	{containsAny("townhouse", "town house"), ApartmentTownhouse},
	{containsAny("studio", "bachelor"), ApartmentStudio},
	{threeBed, Apartment3Bed},
	{allOf(twoBed, twoBath), Apartment2Bed2Bath},
	{twoBed, Apartment2Bed1Bath},
	{oneBed, Apartment1Bed},
}

// ApartmentTypes is the apartment vocabulary in display order.
var ApartmentTypes = []string{
	ApartmentStudio, Apartment1Bed, Apartment2Bed1Bath, Apartment2Bed2Bath,
	Apartment3Bed, ApartmentPenthouse, ApartmentTownhouse,
}

// ClassifyApartment maps one apartment description to its type.
func ClassifyApartment(raw string) string {
	return classify(raw, apartmentRules)
}

// ClassifyApartments splits a multi-select cell and classifies every
// segment, dropping unmatched segments and duplicates.
func ClassifyApartments(raw string) []string {
	parts := joinBathSegments(strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '|' || r == '\n'
	}))
	var out []string
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		v := ClassifyApartment(p)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// joinBathSegments glues a bare "2 Bathroom" segment back onto the
// "2 Bedroom" segment before it, so "2 Bedroom, 2 Bathroom" stays one choice.
func joinBathSegments(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		lp := strings.ToLower(p)
		if n := len(out); n > 0 && twoBath(lp) && ClassifyApartment(p) == "" &&
			twoBed(strings.ToLower(out[n-1])) && !twoBath(strings.ToLower(out[n-1])) {
			out[n-1] += " " + p
			continue
		}
		out = append(out, p)
	}
	return out
}

var contactRules = []rule{
	{anyOf(hasWordPrefix("whatsapp"), hasWord("whats app", "wa")), ContactWhatsApp},
	{anyOf(hasWordPrefix("email", "mail"), hasWord("e mail")), ContactEmail},
	{hasWordPrefix("phone", "telephone", "call", "sms", "text", "mobile", "cell"), ContactPhone},
}

// ContactMethods is the contact vocabulary in display order.
var ContactMethods = []string{ContactWhatsApp, ContactEmail, ContactPhone}

// ClassifyContact maps a preferred contact method to WhatsApp, Email or
// Phone Call.
func ClassifyContact(raw string) string {
	return classify(raw, contactRules)
}

// Named parts of the day win over "early" and "late", so "early evening"
// is Evening.
var outreachRules = []rule{
	{hasWord("anytime", "any time", "flexible", "whenever", "all day"), TimeAnytime},
	{hasWordPrefix("morning"), TimeMorning},
	{hasWordPrefix("afternoon"), TimeAfternoon},
	{hasWordPrefix("evening", "night"), TimeEvening},
	{hasWord("early", "before noon", "am"), TimeMorning},
	{hasWord("noon", "lunch", "lunchtime", "midday"), TimeAfternoon},
	{hasWord("late", "after work", "pm"), TimeEvening},
}

// OutreachTimes is the outreach vocabulary in display order.
var OutreachTimes = []string{TimeMorning, TimeAfternoon, TimeEvening, TimeAnytime}

// ClassifyOutreachTime maps a best-time-to-reach answer to a part of day.
func ClassifyOutreachTime(raw string) string {
	return classify(raw, outreachRules)
}

// "unemployed" contains "employ", so it is checked before full-time.
var employmentRules = []rule{
	{anyOf(hasWord("self", "own business", "business owner"), hasWordPrefix("freelanc", "contractor")), EmploymentSelf},
	{anyOf(hasWordPrefix("unemploy"), hasWord("not employed", "not working", "between jobs", "looking for work")), EmploymentNone},
	{hasWord("part", "parttime"), EmploymentPartTime},
	{anyOf(hasWordPrefix("student"), hasWord("study", "studying")), EmploymentStudent},
	{hasWordPrefix("retire", "pension"), EmploymentRetired},
	{anyOf(hasWord("full", "fulltime", "permanent"), hasWordPrefix("employ", "work", "salar")), EmploymentFullTime},
}

// EmploymentStatuses is the employment vocabulary in display order.
var EmploymentStatuses = []string{
	EmploymentFullTime, EmploymentPartTime, EmploymentSelf,
	EmploymentStudent, EmploymentRetired, EmploymentNone,
}

// ClassifyEmployment maps an employment answer to its status.
func ClassifyEmployment(raw string) string {
	return classify(raw, employmentRules)
}

var (
	hasDog = hasWordPrefix("dog", "pupp")
	hasCat = anyOf(hasWord("cat", "cats"), hasWordPrefix("kitten"))
)

var petRules = []rule{
	{anyOf(
		equalsAny("no", "none", "n/a", "na", "nope", "0"),
		hasPrefixAny("no ", "no,", "no."),
		containsAny("no pet", "don't have", "do not have"),
	), PetNone},
	{anyOf(hasWord("both", "multiple"), allOf(hasDog, hasCat)), PetMultiple},
	{hasDog, PetDog},
	{hasCat, PetCat},
	{anyOf(hasWord("yes", "fish", "pet", "pets"), hasWordPrefix("bird", "rabbit", "hamster", "reptile", "parrot")), PetOther},
}

// PetPreferences is the pet vocabulary in display order.
var PetPreferences = []string{PetNone, PetDog, PetCat, PetMultiple, PetOther}

// ClassifyPet maps a pet answer to its preference.
func ClassifyPet(raw string) string {
	return classify(raw, petRules)
}

var (
	// moveInRegexp captures "3 months", "2-3 months", "1 to 3 weeks" and "3+ months"
	moveInRegexp = regexp.MustCompile(`(\d+)(?:\s*(?:-|to)\s*(\d+))?\s*(\+)?\s*(day|week|month|mo\b|year|yr)`)
	numberWords  = regexp.MustCompile(`\b(one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve)\b`)
	isImmediate  = anyOf(hasWordPrefix("immediate"), hasWord("asap", "as soon", "right away"), equalsAny("now"))
)

var wordValues = map[string]string{
	"one": "1", "two": "2", "three": "3", "four": "4", "five": "5", "six": "6",
	"seven": "7", "eight": "8", "nine": "9", "ten": "10", "eleven": "11", "twelve": "12",
}

var moveInWordRules = []rule{
	{anyOf(hasWord("later"), hasWordPrefix("year")), MoveIn3PlusMonths},
	{hasWord("few months", "couple of months", "couple months"), MoveIn1To3Months},
	{anyOf(hasWord("within a month", "this month", "next month", "a month"), hasWordPrefix("week")), MoveInWithinMonth},
}

// moveInMonths reads the upper bound of a duration such as "2-3 months" or
// "six weeks" in months.
func moveInMonths(s string) (float64, bool, bool) {
	s = numberWords.ReplaceAllStringFunc(s, func(w string) string { return wordValues[w] })
	m := moveInRegexp.FindStringSubmatch(s)
	if m == nil {
		return 0, false, false
	}
	n := m[1]
	if m[2] != "" {
		n = m[2]
	}
	v, err := strconv.ParseFloat(n, 64)
	if err != nil {
		return 0, false, false
	}
	switch m[4] {
	case "day":
		v /= 30
	case "week":
		v = v * 7 / 30
	case "year", "yr":
		v *= 12
	}
	return v, m[3] == "+", true
}

// MoveInTimings is the move-in vocabulary in display order.
var MoveInTimings = []string{MoveInImmediately, MoveInWithinMonth, MoveIn1To3Months, MoveIn3PlusMonths}

// ClassifyMoveIn maps a move-in answer to its timing bucket.
func ClassifyMoveIn(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if isImmediate(s) {
		return MoveInImmediately
	}
	if months, plus, ok := moveInMonths(s); ok {
		switch {
		case plus && months >= 3, months > 3:
			return MoveIn3PlusMonths
		case months > 1:
			return MoveIn1To3Months
		default:
			return MoveInWithinMonth
		}
	}
	return classify(s, moveInWordRules)
}

var engagementRules = []rule{
	{hasWord("high", "highly", "very engaged", "hot"), EngagementHigh},
	{hasWord("medium", "moderate", "moderately", "mid", "warm"), EngagementMedium},
	{hasWord("low", "cold", "minimal"), EngagementLow},
}

// EngagementLevels is the engagement vocabulary in display order.
var EngagementLevels = []string{EngagementHigh, EngagementMedium, EngagementLow}

// ClassifyEngagement maps an engagement answer to High, Medium or Low.
func ClassifyEngagement(raw string) string {
	return classify(raw, engagementRules)
}

// IncomeRanges is the income vocabulary in display order.
var IncomeRanges = []string{IncomeUnder2k, Income2kTo4k, Income4kTo6k, Income6kPlus}

var (
	// incomeRegexp captures the first amount, with an optional thousands suffix
	incomeRegexp = regexp.MustCompile(`(\d+(?:\.\d+)?)(k)?`)
	incomeStrip  = strings.NewReplacer(",", "", " ", "", "\u00a0", "")
	isAnnual     = containsAny("year", "annual", "/yr", "p.a")
	isUpperBound = containsAny("under", "below", "lessthan", "upto", "<")
)

// ClassifyIncome maps an income answer to a monthly bracket. Annual figures
// are divided by twelve; "under X" lands below X.
func ClassifyIncome(raw string) string {
	s := incomeStrip.Replace(strings.ToLower(strings.TrimSpace(raw)))
	m := incomeRegexp.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return ""
	}
	if m[2] == "k" {
		v *= 1000
	}
	if isAnnual(s) {
		v /= 12
	}
	if isUpperBound(s) {
		v -= 0.01
	}

	switch {
	case v < 2000:
		return IncomeUnder2k
	case v < 4000:
		return Income2kTo4k
	case v < 6000:
		return Income4kTo6k
	default:
		return Income6kPlus
	}
}
