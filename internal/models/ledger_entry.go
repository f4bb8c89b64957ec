package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

const (
	SOURCE_ADMIN               = "admin"
	SOURCE_REWARD_ACTION_ADMIN = "reward-action-admin"
	SOURCE_BIRTHDAY_JOB        = "birthday-job"
	SOURCE_VISIT               = "visit"
	SOURCE_REDEMPTION          = "redemption"
)

type LedgerEntry struct {
	bun.BaseModel `bun:"table:ledger_entry"`
	ID            string           `bun:"id,pk" json:"id"`
	CustomerID    string           `bun:"customer_id,notnull" json:"customer_id"`
	Points        int              `bun:"points,notnull" json:"points"`
	Amount        *decimal.Decimal `bun:"amount,type:numeric(12,2)" json:"amount,omitempty"`
	Reason        string           `bun:"reason" json:"reason"`
	EmployeeName  *string          `bun:"employee_name" json:"employee_name,omitempty"`
	Source        *string          `bun:"source" json:"source,omitempty"`
	OperationID   *string          `bun:"operation_id" json:"-"`
	CreatedAt     time.Time        `bun:"created_at,default:current_timestamp" json:"created_at"`
}

// EntryOptions are the optional attributes of a ledger posting.
type EntryOptions struct {
	Amount       *decimal.Decimal
	EmployeeName string
	Source       string
	// OperationID makes a posting at-most-once per customer across retries.
	OperationID string
}

type BalanceAudit struct {
	CustomerID    string `json:"customer_id"`
	CachedBalance int    `json:"cached_balance"`
	LedgerSum     int    `json:"ledger_sum"`
	Consistent    bool   `json:"consistent"`
}
