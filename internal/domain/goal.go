package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Goal is a measurable target a student sets for the program (e.g. "Book 5 shoots").
type Goal struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID    primitive.ObjectID `bson:"studentId" json:"studentId"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	TargetValue  int                `bson:"targetValue" json:"targetValue"`
	CurrentValue int                `bson:"currentValue" json:"currentValue"`
	DueDate      *time.Time         `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	Achieved     bool               `bson:"achieved" json:"achieved"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Progress returns completion as a percentage capped at 100.
func (g *Goal) Progress() float64 {
	if g.TargetValue <= 0 {
		return 0
	}
	p := float64(g.CurrentValue) / float64(g.TargetValue) * 100
	if p > 100 {
		return 100
	}
	return p
}

// GoalUpdate carries a partial goal update. Nil fields are left untouched.
type GoalUpdate struct {
	Title        *string
	Description  *string
	TargetValue  *int
	CurrentValue *int
	DueDate      *time.Time
	Achieved     *bool
}
