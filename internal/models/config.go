package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Config is a runtime-tunable setting, e.g. the birthday push text.
type Config struct {
	bun.BaseModel `bun:"table:config"`
	Key           string    `bun:"key,pk" json:"key"`
	Value         string    `bun:"value,notnull" json:"value"`
	UpdatedAt     time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}
