package services

import (
	"testing"
	"time"

	"salonloyalty/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticationRoundTrip(t *testing.T) {
	auth, err := NewAuthentication("secret")
	require.NoError(t, err)

	token, err := auth.CreateToken(&models.CustomerFromAuth{ID: "u-1", Email: "anna@example.com", Name: "Anna"}, time.Hour)
	require.NoError(t, err)

	customer, err := auth.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", customer.ID)
	assert.Equal(t, "anna@example.com", customer.Email)
	assert.Equal(t, "Anna", customer.Name)
}

func TestAuthenticationRejects(t *testing.T) {
	auth, err := NewAuthentication("secret")
	require.NoError(t, err)
	other, err := NewAuthentication("other")
	require.NoError(t, err)

	foreign, err := other.CreateToken(&models.CustomerFromAuth{ID: "u-1"}, time.Hour)
	require.NoError(t, err)
	expired, err := auth.CreateToken(&models.CustomerFromAuth{ID: "u-1"}, -time.Hour)
	require.NoError(t, err)
	noSubject, err := auth.CreateToken(&models.CustomerFromAuth{}, time.Hour)
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "u-1"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":    "not-a-token",
		"foreign":    foreign,
		"expired":    expired,
		"no subject": noSubject,
		"hs512":      hs512,
	} {
		_, err := auth.Validate(token)
		assert.ErrorIs(t, err, ErrUnauthenticated, name)
	}

	_, err = NewAuthentication("")
	assert.Error(t, err)
}
