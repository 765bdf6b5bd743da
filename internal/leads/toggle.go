package leads

import (
	"time"

	"focuscoach/coaching-app/internal/domain"
)

// Toggle is the intent produced by flipping one engagement tag on a lead.
// Exactly one of Add and Remove is set.
type Toggle struct {
	LeadID string
	Add    *domain.EngagementTag
	Remove *domain.EngagementTag
}

// PlanToggle decides whether flipping tagType on lead removes the existing tag
// of that type or adds a new one stamped with now.
func PlanToggle(lead *domain.Lead, tagType domain.TagType, now time.Time) Toggle {
	t := Toggle{LeadID: lead.ID.Hex()}
	if existing := lead.FindTag(tagType); existing != nil {
		tag := *existing
		t.Remove = &tag
		return t
	}
	t.Add = &domain.EngagementTag{Type: tagType, CompletedDate: now.UTC()}
	return t
}

// ApplyTo returns the tag collection that results from applying t to tags.
// Removal is by tag identity, so only the tag chosen by PlanToggle goes away.
func (t Toggle) ApplyTo(tags []domain.EngagementTag) []domain.EngagementTag {
	out := make([]domain.EngagementTag, 0, len(tags)+1)
	removed := false
	for _, tag := range tags {
		if t.Remove != nil && !removed && tag.ID == t.Remove.ID && tag.Type == t.Remove.Type {
			removed = true
			continue
		}
		out = append(out, tag)
	}
	if t.Add != nil {
		out = append(out, *t.Add)
	}
	return out
}
