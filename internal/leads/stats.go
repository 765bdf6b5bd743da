package leads

import "focuscoach/coaching-app/internal/domain"

// RequiredEngagement is the set of tags a lead needs for its engagement to count as complete.
var RequiredEngagement = []domain.TagType{
	domain.TagFollowDayEngagement,
	domain.TagEngagementDay1,
	domain.TagDMSent,
}

// Summary holds roll-up statistics over a lead collection.
type Summary struct {
	Total                    int                       `json:"total"`
	ConversionRate           float64                   `json:"conversionRate"`
	EngagementCompletionRate float64                   `json:"engagementCompletionRate"`
	BySource                 map[string]int            `json:"bySource"`
	ByStatus                 map[domain.LeadStatus]int `json:"byStatus"`
	ByTag                    map[domain.TagType]int    `json:"byTag"`
}

// ConversionRate is the percentage of leads with status converted; 0 for no leads.
func ConversionRate(in []domain.Lead) float64 {
	n := 0
	for i := range in {
		if in[i].Status == domain.LeadStatusConverted {
			n++
		}
	}
	return percent(n, len(in))
}

// EngagementComplete reports whether lead carries every RequiredEngagement tag.
func EngagementComplete(lead *domain.Lead) bool {
	for _, t := range RequiredEngagement {
		if !lead.HasTag(t) {
			return false
		}
	}
	return true
}

// EngagementCompletionRate is the percentage of leads with complete engagement; 0 for no leads.
func EngagementCompletionRate(in []domain.Lead) float64 {
	n := 0
	for i := range in {
		if EngagementComplete(&in[i]) {
			n++
		}
	}
	return percent(n, len(in))
}

func CountBySource(in []domain.Lead) map[string]int {
	out := make(map[string]int)
	for i := range in {
		out[in[i].Source]++
	}
	return out
}

func CountByStatus(in []domain.Lead) map[domain.LeadStatus]int {
	out := make(map[domain.LeadStatus]int)
	for i := range in {
		out[in[i].Status]++
	}
	return out
}

// CountByTag counts leads per tag type; a lead with duplicate tags of one type counts once.
func CountByTag(in []domain.Lead) map[domain.TagType]int {
	out := make(map[domain.TagType]int)
	for i := range in {
		seen := make(map[domain.TagType]bool, len(in[i].EngagementTags))
		for _, tag := range in[i].EngagementTags {
			if !seen[tag.Type] {
				seen[tag.Type] = true
				out[tag.Type]++
			}
		}
	}
	return out
}

// Summarize computes every statistic over in.
func Summarize(in []domain.Lead) Summary {
	return Summary{
		Total:                    len(in),
		ConversionRate:           ConversionRate(in),
		EngagementCompletionRate: EngagementCompletionRate(in),
		BySource:                 CountBySource(in),
		ByStatus:                 CountByStatus(in),
		ByTag:                    CountByTag(in),
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}
