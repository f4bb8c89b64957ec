package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"salonloyalty/internal/interfaces"
	"salonloyalty/internal/models"
	"salonloyalty/internal/pkg/caching"

	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/shopspring/decimal"
)

type ServiceLedger struct {
	container *do.Injector
	store     interfaces.Store
	cache     caching.Cache
	feed      *ChangeFeed
}

func NewServiceLedger(container *do.Injector) (*ServiceLedger, error) {
	store, err := do.Invoke[interfaces.Store](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	feed, err := do.Invoke[*ChangeFeed](container)
	if err != nil {
		return nil, err
	}

	return &ServiceLedger{container, store, cache, feed}, nil
}

// PostEntry appends one entry and returns the balance after it.
func (service *ServiceLedger) PostEntry(ctx context.Context, customerID string, delta int, reason string, opts models.EntryOptions) (int, error) {
	if err := validateEntry(customerID, delta, reason); err != nil {
		return 0, err
	}

	var balance int
	var posted bool
	err := runInTxWithRetry(ctx, service.store, func(ctx context.Context, tx interfaces.Tx) (err error) {
		balance, posted, err = postEntryTx(ctx, tx, customerID, delta, reason, opts)
		return err
	})
	if err != nil {
		return 0, err
	}

	service.afterPost(ctx, customerID, balance, delta, reason, posted)
	return balance, nil
}

// ParseEuroAmount accepts a positive, finite decimal amount.
func ParseEuroAmount(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, invalid("amount is required")
	}

	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, invalid("amount %q is not a number", value)
	}
	if !amount.IsPositive() {
		return decimal.Zero, invalid("amount must be greater than 0")
	}
	if amount.GreaterThanOrEqual(decimal.NewFromInt(math.MaxInt32)) {
		return decimal.Zero, invalid("amount is too large")
	}
	return amount, nil
}

// EuroToPoints rounds half up: 0.5 becomes 1.
func EuroToPoints(amount decimal.Decimal) int {
	return int(amount.Round(0).IntPart())
}

func (service *ServiceLedger) PostEuroVisit(ctx context.Context, customerID string, amount decimal.Decimal, employeeName string) (*models.LedgerEntry, int, error) {
	employeeName = strings.TrimSpace(employeeName)
	if employeeName == "" {
		return nil, 0, invalid("employee name is required")
	}
	if !amount.IsPositive() {
		return nil, 0, invalid("amount must be greater than 0")
	}

	points := EuroToPoints(amount)
	if points <= 0 {
		return nil, 0, invalid("amount %s is worth 0 points", amount.StringFixed(2))
	}

	var balance int
	var entry *models.LedgerEntry
	err := runInTxWithRetry(ctx, service.store, func(ctx context.Context, tx interfaces.Tx) error {
		if _, err := tx.GetCustomerForUpdate(ctx, customerID); err != nil {
			return storeErr(err, "customer")
		}

		entry = newLedgerEntry(customerID, points, REASON_VISIT_BOOKED, models.EntryOptions{
			Amount:       &amount,
			EmployeeName: employeeName,
			Source:       models.SOURCE_VISIT,
		})
		if err := tx.InsertLedgerEntry(ctx, entry); err != nil {
			return err
		}

		var err error
		balance, err = tx.IncrementBalance(ctx, customerID, points)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	service.afterPost(ctx, customerID, balance, points, REASON_VISIT_BOOKED, true)
	return entry, balance, nil
}

// RedeemPoints debits points for a reward handed out in the salon.
func (service *ServiceLedger) RedeemPoints(ctx context.Context, customerID string, points int, rewardTitle string, employeeName string) (int, error) {
	rewardTitle = strings.TrimSpace(rewardTitle)
	employeeName = strings.TrimSpace(employeeName)
	switch {
	case points <= 0:
		return 0, invalid("points must be greater than 0")
	case rewardTitle == "":
		return 0, invalid("reward title is required")
	case employeeName == "":
		return 0, invalid("employee name is required")
	}

	reason := REASON_REDEMPTION_PREFIX + rewardTitle
	var balance int
	err := runInTxWithRetry(ctx, service.store, func(ctx context.Context, tx interfaces.Tx) error {
		customer, err := tx.GetCustomerForUpdate(ctx, customerID)
		if err != nil {
			return storeErr(err, "customer")
		}
		if customer.PointsBalance < points {
			return wrapf(errorx.Invalid, ErrInsufficientPoints, "balance %d, requested %d", customer.PointsBalance, points)
		}

		balance, _, err = postEntryTx(ctx, tx, customerID, -points, reason, models.EntryOptions{
			EmployeeName: employeeName,
			Source:       models.SOURCE_REDEMPTION,
		})
		return err
	})
	if err != nil {
		return 0, err
	}

	service.afterPost(ctx, customerID, balance, -points, reason, true)
	return balance, nil
}

func (service *ServiceLedger) History(ctx context.Context, customerID string, limit int) ([]*models.LedgerEntry, error) {
	if limit <= 0 {
		limit = LEDGER_HISTORY_DEFAULT_LIMIT
	}
	if limit > LEDGER_HISTORY_MAX_LIMIT {
		limit = LEDGER_HISTORY_MAX_LIMIT
	}

	if _, err := service.store.FindCustomer(ctx, customerID); err != nil {
		return nil, storeErr(err, "customer")
	}

	entries, err := service.store.ListLedgerEntries(ctx, customerID, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*models.LedgerEntry{}
	}
	return entries, nil
}

// AuditBalance compares the cached balance with the ledger it is derived from.
func (service *ServiceLedger) AuditBalance(ctx context.Context, customerID string) (*models.BalanceAudit, error) {
	customer, err := service.store.FindCustomer(ctx, customerID)
	if err != nil {
		return nil, storeErr(err, "customer")
	}

	sum, err := service.store.SumLedger(ctx, customerID)
	if err != nil {
		return nil, err
	}

	return &models.BalanceAudit{
		CustomerID:    customerID,
		CachedBalance: customer.PointsBalance,
		LedgerSum:     sum,
		Consistent:    customer.PointsBalance == sum,
	}, nil
}

func (service *ServiceLedger) afterPost(ctx context.Context, customerID string, balance, delta int, reason string, posted bool) {
	if !posted {
		return
	}
	caching.Invalidate(ctx, service.cache, DBKeyCustomer(customerID))
	service.feed.Publish(BalanceChange{CustomerID: customerID, Balance: balance, Delta: delta, Reason: reason})
}

func validateEntry(customerID string, delta int, reason string) error {
	switch {
	case strings.TrimSpace(customerID) == "":
		return invalid("customer id is required")
	case delta == 0:
		return invalid("points must not be 0")
	case strings.TrimSpace(reason) == "":
		return invalid("reason is required")
	}
	return nil
}

func newLedgerEntry(customerID string, delta int, reason string, opts models.EntryOptions) *models.LedgerEntry {
	entry := &models.LedgerEntry{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Points:     delta,
		Amount:     opts.Amount,
		Reason:     strings.TrimSpace(reason),
		CreatedAt:  time.Now(),
	}
	if opts.EmployeeName != "" {
		entry.EmployeeName = &opts.EmployeeName
	}
	if opts.Source != "" {
		entry.Source = &opts.Source
	}
	if opts.OperationID != "" {
		entry.OperationID = &opts.OperationID
	}
	return entry
}

// postEntryTx reports posted=false when opts.OperationID was already applied.
func postEntryTx(ctx context.Context, tx interfaces.Tx, customerID string, delta int, reason string, opts models.EntryOptions) (balance int, posted bool, err error) {
	if err := validateEntry(customerID, delta, reason); err != nil {
		return 0, false, err
	}

	customer, err := tx.GetCustomerForUpdate(ctx, customerID)
	if err != nil {
		return 0, false, storeErr(err, "customer")
	}

	if opts.OperationID != "" {
		_, err := tx.FindLedgerEntryByOperation(ctx, customerID, opts.OperationID)
		if err == nil {
			return customer.PointsBalance, false, nil
		}
		if !errors.Is(err, interfaces.ErrNotFound) {
			return 0, false, err
		}
	}

	if err := tx.InsertLedgerEntry(ctx, newLedgerEntry(customerID, delta, reason, opts)); err != nil {
		return 0, false, err
	}

	balance, err = tx.IncrementBalance(ctx, customerID, delta)
	if err != nil {
		return 0, false, err
	}
	return balance, true, nil
}

// runInTxWithRetry retries store conflicts up to MAX_TX_ATTEMPTS times.
func runInTxWithRetry(ctx context.Context, store interfaces.Store, fn func(ctx context.Context, tx interfaces.Tx) error) error {
	var err error
	for attempt := 1; attempt <= MAX_TX_ATTEMPTS; attempt++ {
		err = store.RunInTx(ctx, fn)
		if !errors.Is(err, interfaces.ErrTxConflict) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return wrapf(errorx.Exist, ErrConflict, "gave up after %d attempts: %v", MAX_TX_ATTEMPTS, err)
}
