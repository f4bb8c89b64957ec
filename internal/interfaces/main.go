package interfaces

import (
	"context"
	"errors"
	"time"

	"salonloyalty/internal/models"

	"github.com/go-redis/redis_rate/v10"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrTxConflict = errors.New("transaction conflict")
	ErrLocked     = errors.New("resource locked")
)

type Limiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) error
}

// Locker hands out short-lived exclusive locks. TryLock returns ErrLocked when the key is held.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// PushProvider delivers one bounded batch and returns the number of messages it accepted.
type PushProvider interface {
	SendBatch(ctx context.Context, messages []models.PushMessage) (int, error)
}

type StaffNotifier interface {
	NotifyStaff(ctx context.Context, text string) error
}

type SummaryStore interface {
	SaveBirthdaySummary(ctx context.Context, summary *models.BirthdaySummary) error
	// LastBirthdaySummary returns ErrNotFound before the first run.
	LastBirthdaySummary(ctx context.Context) (*models.BirthdaySummary, error)
}

// Tx is the set of operations that must observe and mutate a customer atomically.
type Tx interface {
	GetCustomerForUpdate(ctx context.Context, id string) (*models.Customer, error)
	GetRewardAction(ctx context.Context, id string) (*models.RewardAction, error)
	FindLedgerEntryByOperation(ctx context.Context, customerID string, operationID string) (*models.LedgerEntry, error)
	InsertLedgerEntry(ctx context.Context, entry *models.LedgerEntry) error
	IncrementBalance(ctx context.Context, customerID string, delta int) (int, error)
	UpdateRewardClaims(ctx context.Context, customerID string, claims models.RewardClaims) error
	// MarkBirthdayGrant flips the grant fields unless the customer was already granted for year.
	MarkBirthdayGrant(ctx context.Context, customerID string, year int) (bool, error)
	RedeemBirthdayVoucher(ctx context.Context, customerID string, year int, employeeName string) error
}

type CustomerRepository interface {
	FindCustomer(ctx context.Context, id string) (*models.Customer, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	UpdateCustomerProfile(ctx context.Context, customer *models.Customer) error
	FindCustomersByBirthday(ctx context.Context, month int, day int) ([]*models.Customer, error)
	ListCustomers(ctx context.Context, limit int, offset int) ([]*models.Customer, error)
}

type LedgerRepository interface {
	ListLedgerEntries(ctx context.Context, customerID string, limit int) ([]*models.LedgerEntry, error)
	SumLedger(ctx context.Context, customerID string) (int, error)
}

type RewardActionRepository interface {
	FindRewardAction(ctx context.Context, id string) (*models.RewardAction, error)
	ListRewardActions(ctx context.Context, activeOnly bool) ([]*models.RewardAction, error)
	SaveRewardAction(ctx context.Context, action *models.RewardAction) error
	DeleteRewardAction(ctx context.Context, id string) error
}

type DeviceTokenRepository interface {
	DeviceTokensByCustomer(ctx context.Context, customerID string) ([]string, error)
	AllDeviceTokens(ctx context.Context) ([]string, error)
	SaveDeviceToken(ctx context.Context, token *models.DeviceToken) error
	DeleteDeviceToken(ctx context.Context, customerID string, token string) error
}

type ConfigRepository interface {
	GetConfigByKey(ctx context.Context, key string) (*models.Config, error)
}

type Store interface {
	CustomerRepository
	LedgerRepository
	RewardActionRepository
	DeviceTokenRepository
	ConfigRepository
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
