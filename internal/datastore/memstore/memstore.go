// Package memstore keeps the whole loyalty dataset in process memory.
// Transactions run against a copy of the data that replaces the live data on commit.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"salonloyalty/internal/interfaces"
	"salonloyalty/internal/models"
)

type state struct {
	customers map[string]*models.Customer
	ledger    []*models.LedgerEntry
	actions   map[string]*models.RewardAction
	tokens    map[string]*models.DeviceToken
	configs   map[string]string
}

func newState() *state {
	return &state{
		customers: map[string]*models.Customer{},
		actions:   map[string]*models.RewardAction{},
		tokens:    map[string]*models.DeviceToken{},
		configs:   map[string]string{},
	}
}

func (s *state) clone() *state {
	out := newState()
	for id, c := range s.customers {
		out.customers[id] = copyCustomer(c)
	}
	out.ledger = append(out.ledger, s.ledger...)
	for id, a := range s.actions {
		out.actions[id] = a
	}
	for token, t := range s.tokens {
		out.tokens[token] = t
	}
	for k, v := range s.configs {
		out.configs[k] = v
	}
	return out
}

type Store struct {
	mu   sync.Mutex
	data *state

	// InsertLedgerErr, when set, fails every ledger insert. Used to exercise rollback.
	InsertLedgerErr error
}

var _ interfaces.Store = (*Store)(nil)

func New() *Store {
	return &Store{data: newState()}
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx interfaces.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.data.clone()
	if err := fn(ctx, &view{data: draft, store: s}); err != nil {
		return err
	}
	s.data = draft
	return nil
}

func (s *Store) read(fn func(v *view) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&view{data: s.data, store: s})
}

func (s *Store) FindCustomer(ctx context.Context, id string) (*models.Customer, error) {
	var customer *models.Customer
	err := s.read(func(v *view) (err error) {
		customer, err = v.GetCustomerForUpdate(ctx, id)
		return err
	})
	return customer, err
}

func (s *Store) CreateCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.data.customers[customer.ID]; ok {
		return copyCustomer(existing), nil
	}

	c := copyCustomer(customer)
	if c.RewardClaims == nil {
		c.RewardClaims = models.RewardClaims{}
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	s.data.customers[c.ID] = c
	return copyCustomer(c), nil
}

func (s *Store) UpdateCustomerProfile(_ context.Context, customer *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.data.customers[customer.ID]
	if !ok {
		return interfaces.ErrNotFound
	}
	c.Email = customer.Email
	c.FirstName = customer.FirstName
	c.LastName = customer.LastName
	c.Phone = customer.Phone
	c.BirthDay = copyInt(customer.BirthDay)
	c.BirthMonth = copyInt(customer.BirthMonth)
	c.UpdatedAt = time.Now()
	return nil
}

func (s *Store) FindCustomersByBirthday(_ context.Context, month int, day int) ([]*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Customer
	for _, c := range s.sortedCustomers() {
		if c.BirthMonth != nil && c.BirthDay != nil && *c.BirthMonth == month && *c.BirthDay == day {
			out = append(out, copyCustomer(c))
		}
	}
	return out, nil
}

func (s *Store) ListCustomers(_ context.Context, limit int, offset int) ([]*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.sortedCustomers()
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}

	out := make([]*models.Customer, 0, len(all))
	for _, c := range all {
		out = append(out, copyCustomer(c))
	}
	return out, nil
}

func (s *Store) sortedCustomers() []*models.Customer {
	all := make([]*models.Customer, 0, len(s.data.customers))
	for _, c := range s.data.customers {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return all
}

func (s *Store) ListLedgerEntries(_ context.Context, customerID string, limit int) ([]*models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.LedgerEntry
	for i := len(s.data.ledger) - 1; i >= 0; i-- {
		e := s.data.ledger[i]
		if e.CustomerID != customerID {
			continue
		}
		cp := *e
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) SumLedger(_ context.Context, customerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := 0
	for _, e := range s.data.ledger {
		if e.CustomerID == customerID {
			sum += e.Points
		}
	}
	return sum, nil
}

func (s *Store) FindRewardAction(ctx context.Context, id string) (*models.RewardAction, error) {
	var action *models.RewardAction
	err := s.read(func(v *view) (err error) {
		action, err = v.GetRewardAction(ctx, id)
		return err
	})
	return action, err
}

func (s *Store) ListRewardActions(_ context.Context, activeOnly bool) ([]*models.RewardAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.RewardAction, 0, len(s.data.actions))
	for _, a := range s.data.actions {
		if activeOnly && !a.Active {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder == out[j].SortOrder {
			return out[i].Title < out[j].Title
		}
		return out[i].SortOrder < out[j].SortOrder
	})
	return out, nil
}

func (s *Store) SaveRewardAction(_ context.Context, action *models.RewardAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *action
	now := time.Now()
	if existing, ok := s.data.actions[action.ID]; ok {
		cp.CreatedAt = existing.CreatedAt
	} else if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	s.data.actions[action.ID] = &cp
	return nil
}

func (s *Store) DeleteRewardAction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.actions[id]; !ok {
		return interfaces.ErrNotFound
	}
	delete(s.data.actions, id)
	return nil
}

func (s *Store) DeviceTokensByCustomer(_ context.Context, customerID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for _, t := range s.sortedTokens() {
		if t.CustomerID == customerID {
			out = append(out, t.Token)
		}
	}
	return out, nil
}

func (s *Store) AllDeviceTokens(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens := s.sortedTokens()
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Token)
	}
	return out, nil
}

func (s *Store) sortedTokens() []*models.DeviceToken {
	all := make([]*models.DeviceToken, 0, len(s.data.tokens))
	for _, t := range s.data.tokens {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CustomerID != all[j].CustomerID {
			return all[i].CustomerID < all[j].CustomerID
		}
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].Token < all[j].Token
	})
	return all
}

func (s *Store) SaveDeviceToken(_ context.Context, token *models.DeviceToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *token
	if existing, ok := s.data.tokens[token.Token]; ok {
		cp.CreatedAt = existing.CreatedAt
	} else if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.data.tokens[token.Token] = &cp
	return nil
}

func (s *Store) DeleteDeviceToken(_ context.Context, customerID string, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.data.tokens[token]; ok && t.CustomerID == customerID {
		delete(s.data.tokens, token)
	}
	return nil
}

func (s *Store) GetConfigByKey(_ context.Context, key string) (*models.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data.configs[key]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &models.Config{Key: key, Value: v}, nil
}

// SetConfig seeds a config row.
func (s *Store) SetConfig(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.configs[key] = value
}

func copyCustomer(c *models.Customer) *models.Customer {
	cp := *c
	cp.BirthDay = copyInt(c.BirthDay)
	cp.BirthMonth = copyInt(c.BirthMonth)
	cp.LastBirthdayGiftYear = copyInt(c.LastBirthdayGiftYear)
	cp.BirthdayVoucherYear = copyInt(c.BirthdayVoucherYear)
	cp.BirthdayVoucherRedeemedYear = copyInt(c.BirthdayVoucherRedeemedYear)
	if c.BirthdayVoucherRedeemedBy != nil {
		by := *c.BirthdayVoucherRedeemedBy
		cp.BirthdayVoucherRedeemedBy = &by
	}
	if c.RewardClaims != nil {
		cp.RewardClaims = c.RewardClaims.Clone()
	}
	return &cp
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
