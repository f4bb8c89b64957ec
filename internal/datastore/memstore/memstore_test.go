package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"salonloyalty/internal/interfaces"
	"salonloyalty/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestRunInTxCommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.CreateCustomer(ctx, &models.Customer{ID: "c1"})
	require.NoError(t, err)

	err = s.RunInTx(ctx, func(ctx context.Context, tx interfaces.Tx) error {
		require.NoError(t, tx.InsertLedgerEntry(ctx, &models.LedgerEntry{ID: "e1", CustomerID: "c1", Points: 7}))
		_, err := tx.IncrementBalance(ctx, "c1", 7)
		return err
	})
	require.NoError(t, err)

	c, err := s.FindCustomer(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 7, c.PointsBalance)

	sum, err := s.SumLedger(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 7, sum)
}

func TestRunInTxDiscardsOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.CreateCustomer(ctx, &models.Customer{ID: "c1"})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.RunInTx(ctx, func(ctx context.Context, tx interfaces.Tx) error {
		if _, err := tx.IncrementBalance(ctx, "c1", 50); err != nil {
			return err
		}
		if err := tx.UpdateRewardClaims(ctx, "c1", models.RewardClaims{"a": models.ClaimApproved}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	c, err := s.FindCustomer(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 0, c.PointsBalance)
	assert.Equal(t, models.ClaimOpen, c.RewardClaims.Status("a"))
}

func TestInsertLedgerEntryRejectsDuplicateOperation(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.CreateCustomer(ctx, &models.Customer{ID: "c1"})
	require.NoError(t, err)

	op := "op-1"
	insert := func() error {
		return s.RunInTx(ctx, func(ctx context.Context, tx interfaces.Tx) error {
			return tx.InsertLedgerEntry(ctx, &models.LedgerEntry{CustomerID: "c1", Points: 1, OperationID: &op})
		})
	}
	require.NoError(t, insert())
	require.ErrorIs(t, insert(), interfaces.ErrTxConflict)
}

func TestMarkBirthdayGrantIsCompareAndSet(t *testing.T) {
	ctx := context.Background()
	s := New()
	by := "Cynthia"
	_, err := s.CreateCustomer(ctx, &models.Customer{ID: "c1", BirthdayVoucherRedeemedYear: intPtr(2023), BirthdayVoucherRedeemedBy: &by})
	require.NoError(t, err)

	mark := func() bool {
		var ok bool
		require.NoError(t, s.RunInTx(ctx, func(ctx context.Context, tx interfaces.Tx) (err error) {
			ok, err = tx.MarkBirthdayGrant(ctx, "c1", 2024)
			return err
		}))
		return ok
	}

	assert.True(t, mark())
	assert.False(t, mark())

	c, err := s.FindCustomer(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2024, *c.LastBirthdayGiftYear)
	assert.True(t, c.BirthdayVoucherAvailable)
	assert.Equal(t, 2024, *c.BirthdayVoucherYear)
	assert.Nil(t, c.BirthdayVoucherRedeemedYear)
	assert.Nil(t, c.BirthdayVoucherRedeemedBy)
}

func TestFindCustomersByBirthday(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range []*models.Customer{
		{ID: "a", BirthMonth: intPtr(3), BirthDay: intPtr(14), CreatedAt: base.Add(2 * time.Hour)},
		{ID: "b", BirthMonth: intPtr(3), BirthDay: intPtr(15), CreatedAt: base},
		{ID: "c", BirthMonth: intPtr(3), BirthDay: intPtr(14), CreatedAt: base.Add(time.Hour)},
		{ID: "d"},
	} {
		_, err := s.CreateCustomer(ctx, c)
		require.NoError(t, err, i)
	}

	got, err := s.FindCustomersByBirthday(ctx, 3, 14)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
}

func TestReturnedCustomersAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.CreateCustomer(ctx, &models.Customer{ID: "c1"})
	require.NoError(t, err)

	c, err := s.FindCustomer(ctx, "c1")
	require.NoError(t, err)
	c.PointsBalance = 999
	c.RewardClaims["x"] = models.ClaimApproved

	again, err := s.FindCustomer(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 0, again.PointsBalance)
	assert.Empty(t, again.RewardClaims)
}

func TestDeviceTokens(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.SaveDeviceToken(ctx, &models.DeviceToken{Token: "t1", CustomerID: "c1"}))
	require.NoError(t, s.SaveDeviceToken(ctx, &models.DeviceToken{Token: "t2", CustomerID: "c2"}))
	require.NoError(t, s.SaveDeviceToken(ctx, &models.DeviceToken{Token: "t2", CustomerID: "c1"}))

	tokens, err := s.DeviceTokensByCustomer(ctx, "c1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"t1", "t2"}, tokens)

	require.NoError(t, s.DeleteDeviceToken(ctx, "c2", "t1"))
	all, err := s.AllDeviceTokens(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.DeleteDeviceToken(ctx, "c1", "t1"))
	all, err = s.AllDeviceTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, all)
}

func TestListCustomersPagesSharedTimestamps(t *testing.T) {
	ctx := context.Background()
	s := New()
	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for _, id := range []string{"e", "b", "d", "a", "c"} {
		_, err := s.CreateCustomer(ctx, &models.Customer{ID: id, CreatedAt: at})
		require.NoError(t, err)
	}

	var seen []string
	for offset := 0; ; offset += 2 {
		page, err := s.ListCustomers(ctx, 2, offset)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		for _, c := range page {
			seen = append(seen, c.ID)
		}
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, seen)
}
