package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BillingInterval describes how often a pricing plan is charged.
type BillingInterval string

const (
	IntervalOneTime BillingInterval = "one_time"
	IntervalMonthly BillingInterval = "monthly"
	IntervalYearly  BillingInterval = "yearly"
)

// PricingPlan is an admin-configured offer for paid program access.
type PricingPlan struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	PriceCents  int64              `bson:"priceCents" json:"priceCents"`
	Currency    string             `bson:"currency" json:"currency"` // ISO 4217, e.g. "USD"
	Interval    BillingInterval    `bson:"interval" json:"interval"`
	TermWeeks   int                `bson:"termWeeks" json:"termWeeks"` // Length of the access window granted
	Active      bool               `bson:"active" json:"active"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (i BillingInterval) Valid() bool {
	return i == IntervalOneTime || i == IntervalMonthly || i == IntervalYearly
}
