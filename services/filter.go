package services

import (
	"sort"
	"strings"

	"github.com/AlfredvdM/igrow-lms-sub000/models"
)

// Source filter sentinels used by the dashboard's source dropdown.
const (
	FilterAll            = "all"
	FilterLeadForm       = "lead-form"
	FilterAIConversation = "ai-conversation"
	FilterOverview       = "overview"
)

// FilterLeads returns the leads matching every active predicate of f, in
// input order. Unset predicates match everything.
func FilterLeads(leads []*models.Lead, f models.LeadFilter) []*models.Lead {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	result := make([]*models.Lead, 0, len(leads))
	for _, l := range leads {
		if !matchesSource(l, f.Source) {
			continue
		}
		if isActive(f.Intent) && !strings.EqualFold(string(l.LeadIntent), strings.TrimSpace(f.Intent)) {
			continue
		}
		if isActive(f.Status) && !strings.EqualFold(string(l.EffectiveStatus()), strings.TrimSpace(f.Status)) {
			continue
		}
		if f.DateFrom != nil && l.Timestamp.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && l.Timestamp.After(*f.DateTo) {
			continue
		}
		if search != "" && !matchesSearch(l, search) {
			continue
		}
		result = append(result, l)
	}
	return result
}

func isActive(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, FilterAll)
}

func matchesSource(l *models.Lead, source string) bool {
	if !isActive(source) {
		return true
	}
	leadSource := strings.ToLower(l.LeadSource)
	switch strings.ToLower(strings.TrimSpace(source)) {
	case FilterLeadForm:
		return l.OriginalSource == models.SourceLeadForm || strings.Contains(leadSource, "form")
	case FilterAIConversation:
		// "email" contains "ai", so only a leading "ai" word counts
		return l.OriginalSource == models.SourceAIConversation ||
			leadSource == "ai" || strings.HasPrefix(leadSource, "ai ") ||
			strings.Contains(leadSource, "conversation") || strings.Contains(leadSource, "chat")
	case FilterOverview:
		return l.OriginalSource == models.SourceOverview
	default:
		return strings.EqualFold(l.LeadSource, strings.TrimSpace(source))
	}
}

func matchesSearch(l *models.Lead, search string) bool {
	return strings.Contains(strings.ToLower(l.Name), search) ||
		strings.Contains(strings.ToLower(l.Email), search) ||
		strings.Contains(strings.ToLower(l.Phone), search)
}

// sortValue is one lead's value for a sort key; defined is false when the
// lead has no value for it.
type sortValue struct {
	defined bool
	num     float64
	str     string
	isNum   bool
}

var sortKeys = map[string]func(l *models.Lead) sortValue{
	"timestamp": func(l *models.Lead) sortValue {
		return sortValue{defined: !l.Timestamp.IsZero(), num: float64(l.Timestamp.UnixNano()), isNum: true}
	},
	"name":       func(l *models.Lead) sortValue { return strValue(l.Name) },
	"email":      func(l *models.Lead) sortValue { return strValue(l.Email) },
	"phone":      func(l *models.Lead) sortValue { return strValue(l.Phone) },
	"leadIntent": func(l *models.Lead) sortValue { return strValue(string(l.LeadIntent)) },
	"leadStatus": func(l *models.Lead) sortValue { return strValue(string(l.LeadStatus)) },
	"leadSource": func(l *models.Lead) sortValue { return strValue(l.LeadSource) },
	"leadScore": func(l *models.Lead) sortValue {
		return sortValue{defined: true, num: l.LeadScore, isNum: true}
	},
	"sentimentScore": func(l *models.Lead) sortValue {
		if l.SentimentScore == nil {
			return sortValue{}
		}
		return sortValue{defined: true, num: *l.SentimentScore, isNum: true}
	},
}

func strValue(s string) sortValue {
	return sortValue{defined: s != "", str: strings.ToLower(s)}
}

// IsSortKey reports whether key can be passed to SortLeads.
func IsSortKey(key string) bool {
	_, ok := sortKeys[key]
	return ok
}

// SortLeads returns a new slice ordered by key. The sort is stable and leads
// without a value for key come after all others in either direction. An
// unknown key returns a copy in input order.
func SortLeads(leads []*models.Lead, key string, order models.SortOrder) []*models.Lead {
	result := make([]*models.Lead, len(leads))
	copy(result, leads)

	value, ok := sortKeys[key]
	if !ok {
		return result
	}
	desc := order == models.SortDesc

	values := make(map[*models.Lead]sortValue, len(result))
	for _, l := range result {
		values[l] = value(l)
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := values[result[i]], values[result[j]]
		if !a.defined || !b.defined {
			return a.defined && !b.defined
		}
		if desc {
			a, b = b, a
		}
		if a.isNum {
			return a.num < b.num
		}
		return a.str < b.str
	})
	return result
}
