package main

import (
	"bytes"
	"testing"

	"salonloyalty/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	year := 2024
	var buf bytes.Buffer
	err := writeCSV(&buf, []models.PointsExportRow{
		{CustomerID: "c1", Name: "Schmidt, Anna", Email: "anna@example.com", PointsBalance: 40, BirthdayVoucherAvailable: true, BirthdayVoucherYear: &year},
		{CustomerID: "c2", Name: "Ben", PointsBalance: 0},
	})
	require.NoError(t, err)

	assert.Equal(t, "customer_id,name,email,points_balance,birthday_voucher_available,birthday_voucher_year\n"+
		"c1,\"Schmidt, Anna\",anna@example.com,40,true,2024\n"+
		"c2,Ben,,0,false,\n", buf.String())
}
