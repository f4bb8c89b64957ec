package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"salonloyalty/internal/models"
	"salonloyalty/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRoutesRequireSecret(t *testing.T) {
	env := newAPIEnv(t)
	env.addCustomer(t, &models.Customer{ID: "c1"})
	body := `{"customer_id":"c1","amount":"145.00","employee_name":"Cynthia"}`

	code, _ := env.do(t, request{method: http.MethodPost, path: "/api/v1/admin/visits", body: body})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = env.do(t, request{method: http.MethodPost, path: "/api/v1/admin/visits", body: body, secret: "front-desk"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, 0, env.customer(t, "c1").PointsBalance)

	code, resp := env.admin(t, http.MethodPost, "/api/v1/admin/visits", body)
	require.Equal(t, http.StatusOK, code, resp)
	assert.Equal(t, 145, env.customer(t, "c1").PointsBalance)
}

func TestAdminVerify(t *testing.T) {
	env := newAPIEnv(t)

	code, _ := env.do(t, request{method: http.MethodPost, path: "/api/v1/admin/verify", body: `{"secret":"` + testAdminSecret + `"}`})
	assert.Equal(t, http.StatusOK, code)

	code, _ = env.do(t, request{method: http.MethodPost, path: "/api/v1/admin/verify", secret: testAdminSecret})
	assert.Equal(t, http.StatusOK, code)

	code, _ = env.do(t, request{method: http.MethodPost, path: "/api/v1/admin/verify", body: `{"secret":"nope"}`})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestAdminFailuresAreRateLimited(t *testing.T) {
	env := newAPIEnv(t)

	for i := 0; i < services.ADMIN_FAILURE_RATE_LIMIT_PER_MINUTE; i++ {
		code, _ := env.do(t, request{method: http.MethodGet, path: "/api/v1/admin/export", secret: "guess"})
		require.Equal(t, http.StatusForbidden, code)
	}
	code, body := env.do(t, request{method: http.MethodGet, path: "/api/v1/admin/export", secret: "guess"})
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Contains(t, body, `"code":"rate-limiting"`)

	code, _ = env.do(t, request{method: http.MethodGet, path: "/api/v1/admin/export", secret: testAdminSecret})
	assert.Equal(t, http.StatusOK, code)

	code, _ = env.do(t, request{method: http.MethodGet, path: "/api/v1/admin/export", remoteAddr: "198.51.100.7:40000", secret: "guess"})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestAdminFailureLimitIgnoresSpoofedClientHeaders(t *testing.T) {
	env := newAPIEnv(t)

	tooMany := 0
	for i := 0; i < 3*services.ADMIN_FAILURE_RATE_LIMIT_PER_MINUTE; i++ {
		spoofed := fmt.Sprintf("203.0.113.%d", i+1)
		code, _ := env.do(t, request{
			method:  http.MethodGet,
			path:    "/api/v1/admin/export",
			secret:  "guess",
			headers: map[string]string{"X-Real-Ip": spoofed, "X-Forwarded-For": spoofed},
		})
		if code == http.StatusTooManyRequests {
			tooMany++
		}
	}
	assert.Equal(t, 2*services.ADMIN_FAILURE_RATE_LIMIT_PER_MINUTE, tooMany)
}

func TestAdminFailureLimitFollowsForwardedForBehindPrivateProxy(t *testing.T) {
	env := newAPIEnv(t)
	proxy := "10.0.0.2:443"

	for i := 0; i < services.ADMIN_FAILURE_RATE_LIMIT_PER_MINUTE; i++ {
		code, _ := env.do(t, request{method: http.MethodGet, path: "/api/v1/admin/export", remoteAddr: proxy, secret: "guess", headers: map[string]string{"X-Forwarded-For": "198.51.100.20"}})
		require.Equal(t, http.StatusForbidden, code)
	}
	code, _ := env.do(t, request{method: http.MethodGet, path: "/api/v1/admin/export", remoteAddr: proxy, secret: "guess", headers: map[string]string{"X-Forwarded-For": "198.51.100.20"}})
	assert.Equal(t, http.StatusTooManyRequests, code)

	code, _ = env.do(t, request{method: http.MethodGet, path: "/api/v1/admin/export", remoteAddr: proxy, secret: "guess", headers: map[string]string{"X-Forwarded-For": "198.51.100.21"}})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestErrorsUseToolkitBody(t *testing.T) {
	env := newAPIEnv(t)

	code, body := env.do(t, request{method: http.MethodGet, path: "/api/v1/admin/export", secret: "guess"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.JSONEq(t, `{"code":"authorization","message":"permission denied"}`, body)

	code, body = env.admin(t, http.MethodPost, "/api/v1/admin/visits", `{"customer_id":"ghost","amount":"20","employee_name":"Cynthia"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"code":"resource-not-found","message":"not found: customer"}`, body)

	code, body = env.admin(t, http.MethodPost, "/api/v1/admin/visits", `{"customer_id":"ghost","amount":"0.40","employee_name":"Cynthia"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body, `"code":"invalid-request"`)
	assert.Contains(t, body, `"message":"invalid argument: `)

	code, body = env.do(t, request{method: http.MethodGet, path: "/api/v1/customers/me", bearer: "not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.JSONEq(t, `{"code":"authentication","message":"unauthenticated"}`, body)

	code, body = env.do(t, request{method: http.MethodGet, path: "/api/v1"})
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"data":"hello world"}`, body)
}

func TestPostVisitValidation(t *testing.T) {
	env := newAPIEnv(t)
	env.addCustomer(t, &models.Customer{ID: "c1"})

	for _, body := range []string{
		`{"customer_id":"c1","amount":"0","employee_name":"Cynthia"}`,
		`{"customer_id":"c1","amount":-5,"employee_name":"Cynthia"}`,
		`{"customer_id":"c1","amount":"0.40","employee_name":"Cynthia"}`,
		`{"customer_id":"c1","amount":"abc","employee_name":"Cynthia"}`,
		`{"customer_id":"c1","employee_name":"Cynthia"}`,
		`{"customer_id":"c1","amount":"20"}`,
	} {
		code, _ := env.admin(t, http.MethodPost, "/api/v1/admin/visits", body)
		assert.Equal(t, http.StatusBadRequest, code, body)
	}

	code, _ := env.admin(t, http.MethodPost, "/api/v1/admin/visits", `{"customer_id":"ghost","amount":"20","employee_name":"Cynthia"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, 0, env.customer(t, "c1").PointsBalance)
}

func TestClaimApprovalFlow(t *testing.T) {
	env := newAPIEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.SaveRewardAction(ctx, &models.RewardAction{ID: "instagram-follow", Title: "Follow us", Points: 25, Active: true}))
	require.NoError(t, env.store.SaveRewardAction(ctx, &models.RewardAction{ID: "google-review", Title: "Review", Points: 20, Active: true}))
	token := env.token(t, "u-1")

	code, body := env.do(t, request{method: http.MethodPost, path: "/api/v1/customers/me/claims/instagram-follow", bearer: token})
	require.Equal(t, http.StatusOK, code, body)

	approve := `{"customer_id":"u-1","action_id":"instagram-follow","employee_name":"Cynthia"}`
	code, body = env.admin(t, http.MethodPost, "/api/v1/admin/claims/approve", approve)
	require.Equal(t, http.StatusOK, code, body)
	assert.Contains(t, body, models.CLAIM_RESULT_APPROVED)

	code, body = env.admin(t, http.MethodPost, "/api/v1/admin/claims/approve", approve)
	require.Equal(t, http.StatusOK, code, body)
	assert.Contains(t, body, models.CLAIM_RESULT_ALREADY_APPROVED)

	code, _ = env.admin(t, http.MethodPost, "/api/v1/admin/claims/approve", `{"customer_id":"u-1","action_id":"google-review","employee_name":"Cynthia"}`)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = env.admin(t, http.MethodPost, "/api/v1/admin/claims/approve", `{"customer_id":"u-1","action_id":"instagram-follow"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	assert.Equal(t, 25, env.customer(t, "u-1").PointsBalance)

	code, body = env.admin(t, http.MethodGet, "/api/v1/admin/customers/u-1/ledger", "")
	require.Equal(t, http.StatusOK, code, body)
	assert.Contains(t, body, "reward action confirmed: Follow us")
}

func TestRedemptionEndpoint(t *testing.T) {
	env := newAPIEnv(t)
	env.addCustomer(t, &models.Customer{ID: "c1"})

	code, _ := env.admin(t, http.MethodPost, "/api/v1/admin/redemptions", `{"customer_id":"c1","points":10,"reward_title":"Hair mask","employee_name":"Cynthia"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := env.admin(t, http.MethodPost, "/api/v1/admin/visits", `{"customer_id":"c1","amount":40,"employee_name":"Cynthia"}`)
	require.Equal(t, http.StatusOK, code, body)

	code, body = env.admin(t, http.MethodPost, "/api/v1/admin/redemptions", `{"customer_id":"c1","points":10,"reward_title":"Hair mask","employee_name":"Cynthia"}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, 30, env.customer(t, "c1").PointsBalance)
}

func TestBirthdayEndpoints(t *testing.T) {
	env := newAPIEnv(t)
	env.addCustomer(t, &models.Customer{ID: "c1", BirthMonth: intPtr(3), BirthDay: intPtr(15)})
	require.NoError(t, env.store.SaveDeviceToken(context.Background(), &models.DeviceToken{Token: "t1", CustomerID: "c1"}))

	code, _ := env.admin(t, http.MethodGet, "/api/v1/admin/birthday/last", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = env.admin(t, http.MethodPost, "/api/v1/admin/birthday/run", `{"date":"15/03/2024"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	unlock, err := env.locker.TryLock(context.Background(), services.LockKeyBirthdayJob("15.03.2024"), time.Minute)
	require.NoError(t, err)
	code, _ = env.admin(t, http.MethodPost, "/api/v1/admin/birthday/run", `{"date":"15.03.2024"}`)
	assert.Equal(t, http.StatusConflict, code)
	unlock()

	code, body := env.admin(t, http.MethodPost, "/api/v1/admin/birthday/run", `{"date":"15.03.2024"}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.True(t, env.customer(t, "c1").BirthdayVoucherAvailable)
	assert.Equal(t, 1, env.push.sent)

	code, body = env.admin(t, http.MethodGet, "/api/v1/admin/birthday/last", "")
	require.Equal(t, http.StatusOK, code, body)
	assert.Contains(t, body, "15.03.2024")

	code, body = env.admin(t, http.MethodPost, "/api/v1/admin/customers/c1/voucher/redeem", `{"employee_name":"Cynthia"}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Contains(t, body, `"birthday_voucher_redeemed_by":"Cynthia"`)
	code, body = env.admin(t, http.MethodPost, "/api/v1/admin/customers/c1/voucher/redeem", `{"employee_name":"Cynthia"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body, "birthday voucher unavailable")
}

func TestBroadcastEndpoint(t *testing.T) {
	env := newAPIEnv(t)
	env.addCustomer(t, &models.Customer{ID: "c1"})
	require.NoError(t, env.store.SaveDeviceToken(context.Background(), &models.DeviceToken{Token: "t1", CustomerID: "c1"}))

	code, body := env.admin(t, http.MethodPost, "/api/v1/admin/broadcast", `{"title":"Closed","body":"Holiday","target":"all"}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, 1, env.push.sent)

	code, _ = env.admin(t, http.MethodPost, "/api/v1/admin/broadcast", `{"title":"Closed","body":"Holiday","target":"selected"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	env.push.fail = true
	code, _ = env.admin(t, http.MethodPost, "/api/v1/admin/broadcast", `{"title":"Closed","body":"Holiday","target":"all"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestExportCSV(t *testing.T) {
	env := newAPIEnv(t)
	env.addCustomer(t, &models.Customer{ID: "c1", FirstName: "Anna", LastName: "Schmidt", Email: "anna@example.com", PointsBalance: 40})

	code, body := env.admin(t, http.MethodGet, "/api/v1/admin/export?format=csv", "")
	require.Equal(t, http.StatusOK, code, body)

	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(models.PointsExportHeader, ","), lines[0])
	assert.Equal(t, "c1,Anna Schmidt,anna@example.com,40,false,", lines[1])
}

func TestUpdateCustomerEndpoint(t *testing.T) {
	env := newAPIEnv(t)
	env.addCustomer(t, &models.Customer{ID: "c1"})

	code, body := env.admin(t, http.MethodPut, "/api/v1/admin/customers/c1", `{"birth_day":29,"birth_month":2}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, 29, *env.customer(t, "c1").BirthDay)

	code, _ = env.admin(t, http.MethodPut, "/api/v1/admin/customers/c1", `{"birth_day":31,"birth_month":2}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.admin(t, http.MethodPut, "/api/v1/admin/customers/ghost", `{"first_name":"X"}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRewardActionAdminCRUD(t *testing.T) {
	env := newAPIEnv(t)

	code, body := env.admin(t, http.MethodPost, "/api/v1/admin/reward-actions", `{"id":"tiktok","title":"TikTok","points":15,"active":true}`)
	require.Equal(t, http.StatusOK, code, body)

	code, _ = env.admin(t, http.MethodPost, "/api/v1/admin/reward-actions", `{"title":"","points":15}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = env.admin(t, http.MethodPut, "/api/v1/admin/reward-actions/tiktok", `{"title":"TikTok follow","points":20,"active":true}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Contains(t, body, "TikTok follow")

	code, _ = env.admin(t, http.MethodPut, "/api/v1/admin/reward-actions/ghost", `{"title":"x","points":1}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = env.admin(t, http.MethodPost, "/api/v1/admin/reward-actions/tiktok/toggle", "")
	require.Equal(t, http.StatusOK, code, body)

	code, body = env.do(t, request{method: http.MethodGet, path: "/api/v1/reward-actions"})
	require.Equal(t, http.StatusOK, code, body)
	assert.NotContains(t, body, "tiktok")

	code, body = env.admin(t, http.MethodGet, "/api/v1/admin/reward-actions?all=true", "")
	require.Equal(t, http.StatusOK, code, body)
	assert.Contains(t, body, "tiktok")

	code, _ = env.admin(t, http.MethodDelete, "/api/v1/admin/reward-actions/tiktok", "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = env.admin(t, http.MethodDelete, "/api/v1/admin/reward-actions/tiktok", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func intPtr(v int) *int { return &v }
