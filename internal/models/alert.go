package models

import (
	"math"
	"time"
)

type AlertDirection string

const (
	DirectionAbove AlertDirection = "above"
	DirectionBelow AlertDirection = "below"
)

// AlertRule is the persisted price-alert entity. ID, AssetID, Direction,
// TargetPrice and Currency are immutable after creation; Active and
// TriggeredAt are the only mutable fields.
type AlertRule struct {
	ID          string         `json:"id" bson:"id"`
	AssetID     string         `json:"asset_id" bson:"asset_id"`
	Direction   AlertDirection `json:"direction" bson:"direction"`
	TargetPrice float64        `json:"target_price" bson:"target_price"`
	Currency    string         `json:"currency" bson:"currency"`
	Active      bool           `json:"active" bson:"active"`
	TriggeredAt *time.Time     `json:"triggered_at" bson:"triggered_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at" bson:"created_at"`
}

// Hit reports whether the rule's condition is satisfied by the observed
// price. The boundary is inclusive for both directions: a price exactly at
// the target counts as a hit.
func (r *AlertRule) Hit(price float64) bool {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return false
	}
	if r.Direction == DirectionAbove {
		return price >= r.TargetPrice
	}
	return price <= r.TargetPrice
}

// TriggerEvent is one entry of the append-only trigger history.
type TriggerEvent struct {
	RuleID      string         `json:"rule_id" bson:"rule_id"`
	AssetID     string         `json:"asset_id" bson:"asset_id"`
	Direction   AlertDirection `json:"direction" bson:"direction"`
	TargetPrice float64        `json:"target_price" bson:"target_price"`
	Currency    string         `json:"currency" bson:"currency"`
	Price       float64        `json:"price" bson:"price"`
	TriggeredAt time.Time      `json:"triggered_at" bson:"triggered_at"`
}
