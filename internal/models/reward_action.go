package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	CLAIM_RESULT_PENDING_SET      = "pending-set"
	CLAIM_RESULT_ALREADY_PENDING  = "already-pending"
	CLAIM_RESULT_ALREADY_APPROVED = "already-approved"
	CLAIM_RESULT_APPROVED         = "approved"
)

type RewardAction struct {
	bun.BaseModel `bun:"table:reward_action"`
	ID            string     `bun:"id,pk" json:"id"`
	Title         string     `bun:"title,notnull" json:"title"`
	Description   string     `bun:"description" json:"description"`
	Points        int        `bun:"points,notnull" json:"points"`
	Link          *string    `bun:"link" json:"link"`
	Active        bool       `bun:"active,notnull,default:true" json:"active"`
	SortOrder     int        `bun:"sort_order,notnull,default:0" json:"sort_order"`
	ValidFrom     *time.Time `bun:"valid_from" json:"valid_from"`
	ValidUntil    *time.Time `bun:"valid_until" json:"valid_until"`
	CreatedAt     time.Time  `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at" json:"updated_at"`
}

// AvailableAt reports whether the action can be claimed at t.
func (a *RewardAction) AvailableAt(t time.Time) bool {
	if !a.Active {
		return false
	}
	if a.ValidFrom != nil && t.Before(*a.ValidFrom) {
		return false
	}
	if a.ValidUntil != nil && t.After(*a.ValidUntil) {
		return false
	}
	return true
}

type ClaimResult struct {
	CustomerID string      `json:"customer_id"`
	ActionID   string      `json:"action_id"`
	Result     string      `json:"result"`
	Status     ClaimStatus `json:"status"`
	Points     int         `json:"points,omitempty"`
	Balance    *int        `json:"balance,omitempty"`
}
