package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"salonloyalty/internal/config"
	"salonloyalty/internal/datastore/memstore"
	"salonloyalty/internal/interfaces"
	"salonloyalty/internal/models"
	"salonloyalty/internal/pkg/caching"
	"salonloyalty/internal/pkg/limiter"
	"salonloyalty/internal/pkg/locker"
	"salonloyalty/internal/services"

	"github.com/samber/do"
	"github.com/stretchr/testify/require"
)

const testAdminSecret = "front-desk-secret"

type stubPush struct {
	mu   sync.Mutex
	sent int
	fail bool
}

func (p *stubPush) SendBatch(_ context.Context, messages []models.PushMessage) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return 0, errors.New("provider unavailable")
	}
	p.sent += len(messages)
	return len(messages), nil
}

type apiEnv struct {
	handler   http.Handler
	container *do.Injector
	store     *memstore.Store
	push      *stubPush
	locker    *locker.Local
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()

	env := &apiEnv{
		container: do.New(),
		store:     memstore.New(),
		push:      &stubPush{},
		locker:    locker.NewLocal(),
	}

	cache, err := caching.NewCacheRedis(nil, true)
	require.NoError(t, err)

	do.ProvideValue(env.container, &config.Config{
		AdminSecret:   testAdminSecret,
		JWTSecret:     "handler-test-jwt",
		BirthdayJobTZ: services.DEFAULT_BIRTHDAY_JOB_TZ,
	})
	do.ProvideValue[interfaces.Store](env.container, env.store)
	do.ProvideValue[caching.Cache](env.container, cache)
	do.ProvideValue[interfaces.Limiter](env.container, limiter.NewLocal())
	do.ProvideValue[interfaces.Locker](env.container, env.locker)
	do.ProvideValue[interfaces.PushProvider](env.container, env.push)
	do.ProvideValue[interfaces.SummaryStore](env.container, memstore.NewSummaryStore())
	do.ProvideValue[interfaces.StaffNotifier](env.container, services.LogNotifier{})
	services.Register(env.container)

	env.handler, err = New(&Config{Container: env.container, Mode: "release", Origins: []string{"*"}})
	require.NoError(t, err)
	return env
}

func (env *apiEnv) token(t *testing.T, customerID string) string {
	t.Helper()
	authentication, err := do.Invoke[*services.Authentication](env.container)
	require.NoError(t, err)
	token, err := authentication.CreateToken(&models.CustomerFromAuth{ID: customerID, Name: "Anna Schmidt"}, time.Hour)
	require.NoError(t, err)
	return token
}

type request struct {
	method  string
	path    string
	body    string
	bearer  string
	secret  string
	headers map[string]string
	// remoteAddr overrides httptest's 192.0.2.1:1234 peer.
	remoteAddr string
}

func (env *apiEnv) do(t *testing.T, req request) (int, string) {
	t.Helper()

	var body io.Reader
	if req.body != "" {
		body = strings.NewReader(req.body)
	}
	r := httptest.NewRequest(req.method, req.path, body)
	if req.body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.bearer != "" {
		r.Header.Set("Authorization", "Bearer "+req.bearer)
	}
	if req.secret != "" {
		r.Header.Set(HeaderAdminSecret, req.secret)
	}
	for k, v := range req.headers {
		r.Header.Set(k, v)
	}
	if req.remoteAddr != "" {
		r.RemoteAddr = req.remoteAddr
	}

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, r)
	return w.Code, w.Body.String()
}

func (env *apiEnv) admin(t *testing.T, method, path, body string) (int, string) {
	t.Helper()
	return env.do(t, request{method: method, path: path, body: body, secret: testAdminSecret})
}

func (env *apiEnv) addCustomer(t *testing.T, c *models.Customer) {
	t.Helper()
	_, err := env.store.CreateCustomer(context.Background(), c)
	require.NoError(t, err)
}

func (env *apiEnv) customer(t *testing.T, id string) *models.Customer {
	t.Helper()
	c, err := env.store.FindCustomer(context.Background(), id)
	require.NoError(t, err)
	return c
}
