package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LeadStatus tracks where a lead sits in the outreach pipeline.
// Transitions are not validated; any status may be set from any other.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"
)

// LeadStatuses lists every known status in pipeline order.
var LeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusConverted,
	LeadStatusLost,
}

func (s LeadStatus) Valid() bool {
	for _, known := range LeadStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// TagType names one discrete engagement step taken with a lead.
type TagType string

const (
	TagFollowDayEngagement TagType = "follow_day_engagement"
	TagEngagementDay1      TagType = "engagement_day_1"
	TagEngagementDay2      TagType = "engagement_day_2"
	TagEngagementDay3      TagType = "engagement_day_3"
	TagDMSent              TagType = "dm_sent"
	TagFollowUpSent        TagType = "follow_up_sent"
	TagCallBooked          TagType = "call_booked"
)

// TagTypes lists the seven engagement tag types.
var TagTypes = []TagType{
	TagFollowDayEngagement,
	TagEngagementDay1,
	TagEngagementDay2,
	TagEngagementDay3,
	TagDMSent,
	TagFollowUpSent,
	TagCallBooked,
}

func (t TagType) Valid() bool {
	for _, known := range TagTypes {
		if t == known {
			return true
		}
	}
	return false
}

// EngagementTag marks a completed engagement step on a lead.
// Tags are added and removed, never edited in place.
type EngagementTag struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type          TagType            `bson:"type" json:"type"`
	CompletedDate time.Time          `bson:"completedDate" json:"completedDate"`
}

// ScriptComponents is the five-part outreach script a student drafts per lead.
type ScriptComponents struct {
	Intro  string `bson:"intro" json:"intro"`
	Hook   string `bson:"hook" json:"hook"`
	Body1  string `bson:"body1" json:"body1"`
	Body2  string `bson:"body2" json:"body2"`
	Ending string `bson:"ending" json:"ending"`
}

// Lead is a prospective client (usually a real-estate agent) tracked by a student.
type Lead struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID          primitive.ObjectID `bson:"ownerId" json:"ownerId"` // The student who owns this lead
	FirstName        string             `bson:"firstName" json:"firstName"`
	LastName         string             `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Email            string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone            string             `bson:"phone,omitempty" json:"phone,omitempty"`
	SocialHandle     string             `bson:"socialHandle,omitempty" json:"socialHandle,omitempty"` // e.g. Instagram handle
	Source           string             `bson:"source,omitempty" json:"source,omitempty"`             // e.g. "Instagram", "Referral"
	Status           LeadStatus         `bson:"status" json:"status"`
	ScriptComponents ScriptComponents   `bson:"scriptComponents" json:"scriptComponents"`
	EngagementTags   []EngagementTag    `bson:"engagementTags,omitempty" json:"engagementTags"`
	Notes            string             `bson:"notes,omitempty" json:"notes,omitempty"`
	FollowUpDate     *time.Time         `bson:"followUpDate,omitempty" json:"followUpDate,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasTag reports whether the lead carries at least one tag of the given type.
func (l *Lead) HasTag(t TagType) bool {
	return l.FindTag(t) != nil
}

// FindTag returns the first tag of the given type, or nil.
func (l *Lead) FindTag(t TagType) *EngagementTag {
	for i := range l.EngagementTags {
		if l.EngagementTags[i].Type == t {
			return &l.EngagementTags[i]
		}
	}
	return nil
}

// LastContact is the follow-up date when recorded, otherwise the creation date.
func (l *Lead) LastContact() time.Time {
	if l.FollowUpDate != nil {
		return *l.FollowUpDate
	}
	return l.CreatedAt
}

// LeadUpdate carries a partial lead update. Nil fields are left untouched.
type LeadUpdate struct {
	FirstName        *string
	LastName         *string
	Email            *string
	Phone            *string
	SocialHandle     *string
	Source           *string
	Status           *LeadStatus
	ScriptComponents *ScriptComponents
	Notes            *string
	FollowUpDate     *time.Time
}

// IsEmpty reports whether the update would change nothing.
func (u LeadUpdate) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil && u.Phone == nil &&
		u.SocialHandle == nil && u.Source == nil && u.Status == nil &&
		u.ScriptComponents == nil && u.Notes == nil && u.FollowUpDate == nil
}
