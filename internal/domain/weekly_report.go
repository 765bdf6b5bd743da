package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportMetrics are the weekly numbers a student reports to their coach.
type ReportMetrics struct {
	NewLeads      int   `bson:"newLeads" json:"newLeads"`
	Conversations int   `bson:"conversations" json:"conversations"`
	ShootsBooked  int   `bson:"shootsBooked" json:"shootsBooked"`
	RevenueCents  int64 `bson:"revenueCents" json:"revenueCents"`
}

// WeeklyReport is a student's check-in for one program week.
type WeeklyReport struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	StudentID     primitive.ObjectID   `bson:"studentId" json:"studentId"`
	CoachID       *primitive.ObjectID  `bson:"coachId,omitempty" json:"coachId,omitempty"` // Denormalized for coach queries
	WeekNumber    int                  `bson:"weekNumber" json:"weekNumber"`
	WeekStart     time.Time            `bson:"weekStart" json:"weekStart"`
	WeekEnd       time.Time            `bson:"weekEnd" json:"weekEnd"`
	Metrics       ReportMetrics        `bson:"metrics" json:"metrics"`
	Wins          string               `bson:"wins,omitempty" json:"wins,omitempty"`             // Markdown
	Challenges    string               `bson:"challenges,omitempty" json:"challenges,omitempty"` // Markdown
	CoachFeedback string               `bson:"coachFeedback,omitempty" json:"coachFeedback,omitempty"`
	AttachmentIDs []primitive.ObjectID `bson:"attachmentIds,omitempty" json:"attachmentIds,omitempty"`
	SubmittedAt   time.Time            `bson:"submittedAt" json:"submittedAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}
