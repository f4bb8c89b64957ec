package services

import (
	"context"
	"errors"
	"log"
	"net/mail"
	"strings"
	"time"

	"salonloyalty/internal/interfaces"
	"salonloyalty/internal/models"
	"salonloyalty/internal/pkg/caching"

	"github.com/samber/do"
)

const MAX_DEVICE_TOKEN_LENGTH = 512

type ServiceCustomer struct {
	container *do.Injector
	store     interfaces.Store
	cache     caching.Cache
}

func NewServiceCustomer(container *do.Injector) (*ServiceCustomer, error) {
	store, err := do.Invoke[interfaces.Store](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceCustomer{container, store, cache}, nil
}

// FindOrCreateCustomer registers the customer on first authenticated access.
func (service *ServiceCustomer) FindOrCreateCustomer(ctx context.Context, auth *models.CustomerFromAuth) (*models.Customer, error) {
	if auth == nil || strings.TrimSpace(auth.ID) == "" {
		return nil, ErrUnauthenticated
	}

	customer, err := service.store.FindCustomer(ctx, auth.ID)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}

	firstName, lastName := splitName(auth.Name)
	customer, err = service.store.CreateCustomer(ctx, &models.Customer{
		ID:           auth.ID,
		Email:        strings.TrimSpace(auth.Email),
		FirstName:    firstName,
		LastName:     lastName,
		RewardClaims: models.RewardClaims{},
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, err
	}

	log.Println("customer registered", customer.ID)
	return customer, nil
}

// GetProfile serves the balance projection; it may lag a write by the cache TTL on other instances.
func (service *ServiceCustomer) GetProfile(ctx context.Context, auth *models.CustomerFromAuth) (*models.Customer, error) {
	if auth == nil || strings.TrimSpace(auth.ID) == "" {
		return nil, ErrUnauthenticated
	}

	callback := func() (*models.Customer, error) {
		return service.FindOrCreateCustomer(ctx, auth)
	}
	return caching.UseCache(ctx, service.cache, DBKeyCustomer(auth.ID), CACHE_TTL_5_MINS, callback)
}

func (service *ServiceCustomer) GetCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	customer, err := service.store.FindCustomer(ctx, customerID)
	if err != nil {
		return nil, storeErr(err, "customer")
	}
	return customer, nil
}

func (service *ServiceCustomer) UpdateCustomer(ctx context.Context, customerID string, update models.CustomerUpdate) (*models.Customer, error) {
	customer, err := service.store.FindCustomer(ctx, customerID)
	if err != nil {
		return nil, storeErr(err, "customer")
	}

	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if email != "" {
			if _, err := mail.ParseAddress(email); err != nil {
				return nil, invalid("email %q is not valid", email)
			}
		}
		customer.Email = email
	}
	if update.FirstName != nil {
		customer.FirstName = strings.TrimSpace(*update.FirstName)
	}
	if update.LastName != nil {
		customer.LastName = strings.TrimSpace(*update.LastName)
	}
	if update.Phone != nil {
		customer.Phone = strings.TrimSpace(*update.Phone)
	}
	if update.BirthDay != nil {
		customer.BirthDay = update.BirthDay
	}
	if update.BirthMonth != nil {
		customer.BirthMonth = update.BirthMonth
	}
	if err := validateBirthday(customer.BirthDay, customer.BirthMonth); err != nil {
		return nil, err
	}

	if err := service.store.UpdateCustomerProfile(ctx, customer); err != nil {
		return nil, storeErr(err, "customer")
	}

	caching.Invalidate(ctx, service.cache, DBKeyCustomer(customerID))
	return customer, nil
}

func validateBirthday(day, month *int) error {
	if day == nil && month == nil {
		return nil
	}
	if day == nil || month == nil {
		return invalid("birth day and birth month must be set together")
	}
	if *month < 1 || *month > 12 {
		return invalid("birth month %d is out of range", *month)
	}
	// 2024 is a leap year, so 29.02 is accepted.
	t := time.Date(2024, time.Month(*month), *day, 0, 0, 0, 0, time.UTC)
	if *day < 1 || t.Day() != *day {
		return invalid("birth day %d is not valid for month %d", *day, *month)
	}
	return nil
}

func (service *ServiceCustomer) RegisterDevice(ctx context.Context, customerID string, token string, platform string) error {
	token = strings.TrimSpace(token)
	if token == "" || len(token) > MAX_DEVICE_TOKEN_LENGTH {
		return invalid("device token must be 1 to %d characters", MAX_DEVICE_TOKEN_LENGTH)
	}

	if _, err := service.store.FindCustomer(ctx, customerID); err != nil {
		return storeErr(err, "customer")
	}

	return service.store.SaveDeviceToken(ctx, &models.DeviceToken{
		Token:      token,
		CustomerID: customerID,
		Platform:   strings.ToLower(strings.TrimSpace(platform)),
		CreatedAt:  time.Now(),
	})
}

func (service *ServiceCustomer) RemoveDevice(ctx context.Context, customerID string, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return invalid("device token is required")
	}
	return service.store.DeleteDeviceToken(ctx, customerID, token)
}

// RedeemBirthdayVoucher marks this year's voucher as used in the salon.
func (service *ServiceCustomer) RedeemBirthdayVoucher(ctx context.Context, customerID string, employeeName string) (*models.Customer, error) {
	employeeName = strings.TrimSpace(employeeName)
	if employeeName == "" {
		return nil, invalid("employee name is required")
	}

	err := runInTxWithRetry(ctx, service.store, func(ctx context.Context, tx interfaces.Tx) error {
		customer, err := tx.GetCustomerForUpdate(ctx, customerID)
		if err != nil {
			return storeErr(err, "customer")
		}
		if !customer.BirthdayVoucherAvailable || customer.BirthdayVoucherYear == nil {
			return ErrVoucherUnavailable
		}
		return tx.RedeemBirthdayVoucher(ctx, customerID, *customer.BirthdayVoucherYear, employeeName)
	})
	if err != nil {
		return nil, err
	}

	log.Println("birthday voucher redeemed", customerID, "by", employeeName)
	caching.Invalidate(ctx, service.cache, DBKeyCustomer(customerID))
	return service.GetCustomer(ctx, customerID)
}

func (service *ServiceCustomer) ExportPoints(ctx context.Context) ([]models.PointsExportRow, error) {
	rows := []models.PointsExportRow{}
	for offset := 0; ; offset += EXPORT_PAGE_SIZE {
		customers, err := service.store.ListCustomers(ctx, EXPORT_PAGE_SIZE, offset)
		if err != nil {
			return nil, err
		}

		for _, c := range customers {
			rows = append(rows, models.PointsExportRow{
				CustomerID:               c.ID,
				Name:                     c.FullName(),
				Email:                    c.Email,
				PointsBalance:            c.PointsBalance,
				BirthdayVoucherAvailable: c.BirthdayVoucherAvailable,
				BirthdayVoucherYear:      c.BirthdayVoucherYear,
			})
		}

		if len(customers) < EXPORT_PAGE_SIZE {
			return rows, nil
		}
	}
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}
