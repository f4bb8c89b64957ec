package datastore

import (
	"context"
	"database/sql"
	"errors"

	"salonloyalty/internal/interfaces"
	"salonloyalty/internal/models"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
)

// Store adapts the query functions of this package to interfaces.Store.
type Store struct {
	db bun.IDB
}

var _ interfaces.Store = (*Store)(nil)
var _ interfaces.Tx = (*Store)(nil)

func NewStore(db bun.IDB) *Store {
	return &Store{db}
}

func CreateTables(ctx context.Context, db bun.IDB) error {
	creators := []func(context.Context, bun.IDB) error{
		CreateTableConfig,
		CreateTableCustomer,
		CreateTableLedgerEntry,
		CreateTableRewardAction,
		CreateTableDeviceToken,
	}

	for _, create := range creators {
		if err := create(ctx, db); err != nil {
			return err
		}
	}

	return nil
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return interfaces.ErrNotFound
	}

	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		switch pgErr.Field('C') {
		case pgSerializationFailure, pgDeadlockDetected, pgUniqueViolation:
			return errors.Join(interfaces.ErrTxConflict, err)
		}
	}
	return err
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx interfaces.Tx) error) error {
	err := s.db.RunInTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &Store{tx})
	})
	return translate(err)
}

func (s *Store) FindCustomer(ctx context.Context, id string) (*models.Customer, error) {
	customer, err := FindCustomerByID(ctx, s.db, id)
	return customer, translate(err)
}

func (s *Store) GetCustomerForUpdate(ctx context.Context, id string) (*models.Customer, error) {
	customer, err := FindCustomerByIDForUpdate(ctx, s.db, id)
	return customer, translate(err)
}

func (s *Store) CreateCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	created, err := InsertCustomer(ctx, s.db, customer)
	return created, translate(err)
}

func (s *Store) UpdateCustomerProfile(ctx context.Context, customer *models.Customer) error {
	return translate(UpdateCustomerProfile(ctx, s.db, customer))
}

func (s *Store) FindCustomersByBirthday(ctx context.Context, month int, day int) ([]*models.Customer, error) {
	customers, err := GetCustomersByBirthday(ctx, s.db, month, day)
	return customers, translate(err)
}

func (s *Store) ListCustomers(ctx context.Context, limit int, offset int) ([]*models.Customer, error) {
	customers, err := GetCustomersSortedByCreatedAt(ctx, s.db, limit, offset)
	return customers, translate(err)
}

func (s *Store) IncrementBalance(ctx context.Context, customerID string, delta int) (int, error) {
	balance, err := ChangeCustomerBalance(ctx, s.db, customerID, delta)
	return balance, translate(err)
}

func (s *Store) UpdateRewardClaims(ctx context.Context, customerID string, claims models.RewardClaims) error {
	return translate(UpdateCustomerRewardClaims(ctx, s.db, customerID, claims))
}

func (s *Store) MarkBirthdayGrant(ctx context.Context, customerID string, year int) (bool, error) {
	ok, err := MarkCustomerBirthdayGrant(ctx, s.db, customerID, year)
	return ok, translate(err)
}

func (s *Store) RedeemBirthdayVoucher(ctx context.Context, customerID string, year int, employeeName string) error {
	return translate(RedeemCustomerBirthdayVoucher(ctx, s.db, customerID, year, employeeName))
}

func (s *Store) FindLedgerEntryByOperation(ctx context.Context, customerID string, operationID string) (*models.LedgerEntry, error) {
	entry, err := FindLedgerEntryByOperation(ctx, s.db, customerID, operationID)
	return entry, translate(err)
}

func (s *Store) InsertLedgerEntry(ctx context.Context, entry *models.LedgerEntry) error {
	return translate(InsertLedgerEntry(ctx, s.db, entry))
}

func (s *Store) ListLedgerEntries(ctx context.Context, customerID string, limit int) ([]*models.LedgerEntry, error) {
	entries, err := GetLedgerEntriesByCustomer(ctx, s.db, customerID, limit)
	return entries, translate(err)
}

func (s *Store) SumLedger(ctx context.Context, customerID string) (int, error) {
	sum, err := GetCustomerLedgerSum(ctx, s.db, customerID)
	return sum, translate(err)
}

func (s *Store) GetRewardAction(ctx context.Context, id string) (*models.RewardAction, error) {
	action, err := GetRewardActionByID(ctx, s.db, id)
	return action, translate(err)
}

func (s *Store) FindRewardAction(ctx context.Context, id string) (*models.RewardAction, error) {
	return s.GetRewardAction(ctx, id)
}

func (s *Store) ListRewardActions(ctx context.Context, activeOnly bool) ([]*models.RewardAction, error) {
	actions, err := GetRewardActions(ctx, s.db, activeOnly)
	return actions, translate(err)
}

func (s *Store) SaveRewardAction(ctx context.Context, action *models.RewardAction) error {
	return translate(UpsertRewardAction(ctx, s.db, action))
}

func (s *Store) DeleteRewardAction(ctx context.Context, id string) error {
	deleted, err := DeleteRewardAction(ctx, s.db, id)
	if err != nil {
		return translate(err)
	}
	if !deleted {
		return interfaces.ErrNotFound
	}
	return nil
}

func (s *Store) DeviceTokensByCustomer(ctx context.Context, customerID string) ([]string, error) {
	tokens, err := GetDeviceTokensByCustomer(ctx, s.db, customerID)
	return tokens, translate(err)
}

func (s *Store) AllDeviceTokens(ctx context.Context) ([]string, error) {
	tokens, err := GetAllDeviceTokens(ctx, s.db)
	return tokens, translate(err)
}

func (s *Store) SaveDeviceToken(ctx context.Context, token *models.DeviceToken) error {
	return translate(UpsertDeviceToken(ctx, s.db, token))
}

func (s *Store) DeleteDeviceToken(ctx context.Context, customerID string, token string) error {
	return translate(DeleteDeviceToken(ctx, s.db, customerID, token))
}

func (s *Store) GetConfigByKey(ctx context.Context, key string) (*models.Config, error) {
	config, err := GetConfigByKey(ctx, s.db, key)
	return config, translate(err)
}
