package memstore

import (
	"context"
	"time"

	"salonloyalty/internal/interfaces"
	"salonloyalty/internal/models"
)

// view runs Tx operations against one snapshot of the data without locking.
type view struct {
	data  *state
	store *Store
}

var _ interfaces.Tx = (*view)(nil)

func (v *view) GetCustomerForUpdate(_ context.Context, id string) (*models.Customer, error) {
	c, ok := v.data.customers[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return copyCustomer(c), nil
}

func (v *view) GetRewardAction(_ context.Context, id string) (*models.RewardAction, error) {
	a, ok := v.data.actions[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (v *view) FindLedgerEntryByOperation(_ context.Context, customerID string, operationID string) (*models.LedgerEntry, error) {
	for _, e := range v.data.ledger {
		if e.CustomerID == customerID && e.OperationID != nil && *e.OperationID == operationID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (v *view) InsertLedgerEntry(ctx context.Context, entry *models.LedgerEntry) error {
	if v.store.InsertLedgerErr != nil {
		return v.store.InsertLedgerErr
	}
	if _, ok := v.data.customers[entry.CustomerID]; !ok {
		return interfaces.ErrNotFound
	}
	if entry.OperationID != nil {
		if _, err := v.FindLedgerEntryByOperation(ctx, entry.CustomerID, *entry.OperationID); err == nil {
			return interfaces.ErrTxConflict
		}
	}

	cp := *entry
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	v.data.ledger = append(v.data.ledger, &cp)
	return nil
}

func (v *view) IncrementBalance(_ context.Context, customerID string, delta int) (int, error) {
	c, ok := v.data.customers[customerID]
	if !ok {
		return 0, interfaces.ErrNotFound
	}
	c.PointsBalance += delta
	c.UpdatedAt = time.Now()
	return c.PointsBalance, nil
}

func (v *view) UpdateRewardClaims(_ context.Context, customerID string, claims models.RewardClaims) error {
	c, ok := v.data.customers[customerID]
	if !ok {
		return interfaces.ErrNotFound
	}
	c.RewardClaims = claims.Clone()
	c.UpdatedAt = time.Now()
	return nil
}

func (v *view) MarkBirthdayGrant(_ context.Context, customerID string, year int) (bool, error) {
	c, ok := v.data.customers[customerID]
	if !ok {
		return false, nil
	}
	if c.LastBirthdayGiftYear != nil && *c.LastBirthdayGiftYear == year {
		return false, nil
	}
	c.LastBirthdayGiftYear = copyInt(&year)
	c.BirthdayVoucherAvailable = true
	c.BirthdayVoucherYear = copyInt(&year)
	c.BirthdayVoucherRedeemedYear = nil
	c.BirthdayVoucherRedeemedBy = nil
	c.UpdatedAt = time.Now()
	return true, nil
}

func (v *view) RedeemBirthdayVoucher(_ context.Context, customerID string, year int, employeeName string) error {
	c, ok := v.data.customers[customerID]
	if !ok {
		return interfaces.ErrNotFound
	}
	c.BirthdayVoucherAvailable = false
	c.BirthdayVoucherRedeemedYear = copyInt(&year)
	c.BirthdayVoucherRedeemedBy = &employeeName
	c.UpdatedAt = time.Now()
	return nil
}
