package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"salonloyalty/internal/config"
	"salonloyalty/internal/datastore/memstore"
	"salonloyalty/internal/interfaces"
	"salonloyalty/internal/models"
	"salonloyalty/internal/pkg/caching"
	"salonloyalty/internal/pkg/limiter"
	"salonloyalty/internal/pkg/locker"

	"github.com/samber/do"
	"github.com/stretchr/testify/require"
)

const testAdminSecret = "s3cret-salon"

type fakePush struct {
	mu      sync.Mutex
	batches [][]models.PushMessage
	// fail decides per request whether the provider rejects it.
	fail func(messages []models.PushMessage) bool
}

func (p *fakePush) SendBatch(_ context.Context, messages []models.PushMessage) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.batches = append(p.batches, messages)
	if p.fail != nil && p.fail(messages) {
		return 0, errors.New("provider returned 500")
	}
	return len(messages), nil
}

func (p *fakePush) sizes() []int {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]int, 0, len(p.batches))
	for _, b := range p.batches {
		out = append(out, len(b))
	}
	return out
}

func (p *fakePush) tokens() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []string
	for _, b := range p.batches {
		for _, m := range b {
			out = append(out, m.To)
		}
	}
	return out
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) NotifyStaff(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return nil
}

type testEnv struct {
	container *do.Injector
	store     *memstore.Store
	push      *fakePush
	notifier  *fakeNotifier
	locker    *locker.Local
	summaries *memstore.SummaryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, func(s *memstore.Store) interfaces.Store { return s })
}

// newTestEnvWithStore lets a test put a wrapper between the services and the memstore.
func newTestEnvWithStore(t *testing.T, wrap func(*memstore.Store) interfaces.Store) *testEnv {
	t.Helper()

	env := &testEnv{
		container: do.New(),
		store:     memstore.New(),
		push:      &fakePush{},
		notifier:  &fakeNotifier{},
		locker:    locker.NewLocal(),
		summaries: memstore.NewSummaryStore(),
	}

	cache, err := caching.NewCacheRedis(nil, true)
	require.NoError(t, err)

	do.ProvideValue(env.container, &config.Config{
		AdminSecret:   testAdminSecret,
		JWTSecret:     "jwt-test-secret",
		BirthdayJobTZ: DEFAULT_BIRTHDAY_JOB_TZ,
	})
	do.ProvideValue[interfaces.Store](env.container, wrap(env.store))
	do.ProvideValue[caching.Cache](env.container, cache)
	do.ProvideValue[interfaces.Limiter](env.container, limiter.NewLocal())
	do.ProvideValue[interfaces.Locker](env.container, env.locker)
	do.ProvideValue[interfaces.PushProvider](env.container, env.push)
	do.ProvideValue[interfaces.SummaryStore](env.container, env.summaries)
	do.ProvideValue[interfaces.StaffNotifier](env.container, env.notifier)
	Register(env.container)

	return env
}

func invoke[T any](t *testing.T, env *testEnv) T {
	t.Helper()
	v, err := do.Invoke[T](env.container)
	require.NoError(t, err)
	return v
}

func intPtr(v int) *int { return &v }

func (env *testEnv) addCustomer(t *testing.T, c *models.Customer) *models.Customer {
	t.Helper()
	created, err := env.store.CreateCustomer(context.Background(), c)
	require.NoError(t, err)
	return created
}

func (env *testEnv) addAction(t *testing.T, a *models.RewardAction) {
	t.Helper()
	require.NoError(t, env.store.SaveRewardAction(context.Background(), a))
}

func (env *testEnv) addTokens(t *testing.T, customerID string, tokens ...string) {
	t.Helper()
	for _, token := range tokens {
		require.NoError(t, env.store.SaveDeviceToken(context.Background(), &models.DeviceToken{Token: token, CustomerID: customerID}))
	}
}

func (env *testEnv) ledger(t *testing.T, customerID string) []*models.LedgerEntry {
	t.Helper()
	entries, err := env.store.ListLedgerEntries(context.Background(), customerID, 0)
	require.NoError(t, err)
	return entries
}

func (env *testEnv) customer(t *testing.T, customerID string) *models.Customer {
	t.Helper()
	c, err := env.store.FindCustomer(context.Background(), customerID)
	require.NoError(t, err)
	return c
}
