package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

type ClaimStatus string

const (
	ClaimOpen     ClaimStatus = ""
	ClaimPending  ClaimStatus = "pending"
	ClaimApproved ClaimStatus = "approved"
)

// MarshalJSON keeps the document shape clients already read: approved claims are `true`.
func (s ClaimStatus) MarshalJSON() ([]byte, error) {
	if s == ClaimApproved {
		return []byte("true"), nil
	}
	return json.Marshal(string(s))
}

func (s *ClaimStatus) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case "true":
		*s = ClaimApproved
		return nil
	case "false", "null":
		*s = ClaimOpen
		return nil
	}

	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch ClaimStatus(v) {
	case ClaimOpen, ClaimPending, ClaimApproved:
		*s = ClaimStatus(v)
		return nil
	}
	return fmt.Errorf("invalid claim status %q", v)
}

type RewardClaims map[string]ClaimStatus

func (c RewardClaims) Status(actionID string) ClaimStatus {
	if c == nil {
		return ClaimOpen
	}
	return c[actionID]
}

func (c RewardClaims) Clone() RewardClaims {
	out := make(RewardClaims, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

type Customer struct {
	bun.BaseModel `bun:"table:customer"`
	ID            string `bun:"id,pk" json:"id"`
	Email         string `bun:"email" json:"email"`
	FirstName     string `bun:"first_name" json:"first_name"`
	LastName      string `bun:"last_name" json:"last_name"`
	Phone         string `bun:"phone" json:"phone"`
	PointsBalance int    `bun:"points_balance,notnull,default:0" json:"points_balance"`

	BirthDay                    *int    `bun:"birth_day" json:"birth_day"`
	BirthMonth                  *int    `bun:"birth_month" json:"birth_month"`
	LastBirthdayGiftYear        *int    `bun:"last_birthday_gift_year" json:"last_birthday_gift_year"`
	BirthdayVoucherAvailable    bool    `bun:"birthday_voucher_available,notnull,default:false" json:"birthday_voucher_available"`
	BirthdayVoucherYear         *int    `bun:"birthday_voucher_year" json:"birthday_voucher_year"`
	BirthdayVoucherRedeemedYear *int    `bun:"birthday_voucher_redeemed_year" json:"birthday_voucher_redeemed_year"`
	BirthdayVoucherRedeemedBy   *string `bun:"birthday_voucher_redeemed_by" json:"birthday_voucher_redeemed_by"`

	RewardClaims RewardClaims `bun:"reward_claims,type:jsonb" json:"reward_claims"`
	CreatedAt    time.Time    `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time    `bun:"updated_at" json:"updated_at"`
}

func (c *Customer) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// CustomerFromAuth only use in middleware
type CustomerFromAuth struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// CustomerUpdate carries the fields staff may edit on a customer record.
type CustomerUpdate struct {
	Email      *string `json:"email"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Phone      *string `json:"phone"`
	BirthDay   *int    `json:"birth_day"`
	BirthMonth *int    `json:"birth_month"`
}

type PointsExportRow struct {
	CustomerID               string `json:"customer_id"`
	Name                     string `json:"name"`
	Email                    string `json:"email"`
	PointsBalance            int    `json:"points_balance"`
	BirthdayVoucherAvailable bool   `json:"birthday_voucher_available"`
	BirthdayVoucherYear      *int   `json:"birthday_voucher_year"`
}

var PointsExportHeader = []string{"customer_id", "name", "email", "points_balance", "birthday_voucher_available", "birthday_voucher_year"}

func (r PointsExportRow) Record() []string {
	year := ""
	if r.BirthdayVoucherYear != nil {
		year = strconv.Itoa(*r.BirthdayVoucherYear)
	}
	return []string{r.CustomerID, r.Name, r.Email, strconv.Itoa(r.PointsBalance), strconv.FormatBool(r.BirthdayVoucherAvailable), year}
}
