package models

import (
	"time"

	"github.com/uptrace/bun"
)

type DeviceToken struct {
	bun.BaseModel `bun:"table:device_token"`
	Token         string    `bun:"token,pk" json:"token"`
	CustomerID    string    `bun:"customer_id,notnull" json:"customer_id"`
	Platform      string    `bun:"platform" json:"platform"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}
