package infra

import (
	"context"
	"testing"

	"salonloyalty/internal/config"
	"salonloyalty/internal/interfaces"
	"salonloyalty/internal/models"
	"salonloyalty/internal/services"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryContainerResolvesServices(t *testing.T) {
	cfg := &config.Config{JWTSecret: "jwt", AdminSecret: "admin", BirthdayJobTZ: "Europe/Berlin", PushAPIURL: "http://127.0.0.1:1"}
	container := NewContainer(cfg, true)

	_, err := do.Invoke[*services.ServiceBirthday](container)
	require.NoError(t, err)
	_, err = do.Invoke[*services.ServiceBroadcast](container)
	require.NoError(t, err)
	_, err = do.Invoke[*services.ServiceAdminGate](container)
	require.NoError(t, err)

	notifier, err := do.Invoke[interfaces.StaffNotifier](container)
	require.NoError(t, err)
	assert.IsType(t, services.LogNotifier{}, notifier)

	ledger, err := do.Invoke[*services.ServiceLedger](container)
	require.NoError(t, err)
	store := do.MustInvoke[interfaces.Store](container)
	_, err = store.CreateCustomer(context.Background(), &models.Customer{ID: "c1"})
	require.NoError(t, err)

	balance, err := ledger.PostEntry(context.Background(), "c1", 5, "welcome", models.EntryOptions{})
	require.NoError(t, err)
	assert.Equal(t, 5, balance)
}
