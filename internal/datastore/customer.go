package datastore

import (
	"context"
	"encoding/json"
	"time"

	"salonloyalty/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableCustomer(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().Model((*models.Customer)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Customer)(nil)).Index("index_customer_birthday").IfNotExists().Column("birth_month", "birth_day").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Customer)(nil)).Index("index_customer_email").IfNotExists().Column("email").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewRaw(`
		alter table "customer"
			add if not exists birthday_voucher_redeemed_year int default null;
		alter table "customer"
			add if not exists birthday_voucher_redeemed_by varchar default null;
		alter table "customer"
			alter column reward_claims set default '{}'::jsonb;`).Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func FindCustomerByID(ctx context.Context, db bun.IDB, id string) (*models.Customer, error) {
	var customer models.Customer
	err := db.NewSelect().Model(&customer).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func FindCustomerByIDForUpdate(ctx context.Context, db bun.IDB, id string) (*models.Customer, error) {
	var customer models.Customer
	err := db.NewSelect().Model(&customer).Where("id = ?", id).For("UPDATE").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// InsertCustomer is a no-op for an existing id; the stored row is returned either way.
func InsertCustomer(ctx context.Context, db bun.IDB, customer *models.Customer) (*models.Customer, error) {
	if customer.RewardClaims == nil {
		customer.RewardClaims = models.RewardClaims{}
	}
	customer.UpdatedAt = time.Now()

	_, err := db.NewInsert().Model(customer).On("CONFLICT (id) DO NOTHING").Exec(ctx)
	if err != nil {
		return nil, err
	}

	return FindCustomerByID(ctx, db, customer.ID)
}

func UpdateCustomerProfile(ctx context.Context, db bun.IDB, customer *models.Customer) error {
	customer.UpdatedAt = time.Now()
	_, err := db.NewUpdate().Model(customer).
		Column("email", "first_name", "last_name", "phone", "birth_day", "birth_month", "updated_at").
		WherePK().Exec(ctx)
	return err
}

func GetCustomersByBirthday(ctx context.Context, db bun.IDB, month, day int) ([]*models.Customer, error) {
	var customers []*models.Customer
	err := db.NewSelect().Model(&customers).
		Where("birth_month = ?", month).
		Where("birth_day = ?", day).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return customers, nil
}

// customersPage orders by id after created_at so rows sharing a timestamp keep one position across pages.
func customersPage(db bun.IDB, customers *[]*models.Customer, limit, offset int) *bun.SelectQuery {
	return db.NewSelect().Model(customers).Order("created_at ASC", "id ASC").Limit(limit).Offset(offset)
}

func GetCustomersSortedByCreatedAt(ctx context.Context, db bun.IDB, limit, offset int) ([]*models.Customer, error) {
	var customers []*models.Customer
	if err := customersPage(db, &customers, limit, offset).Scan(ctx); err != nil {
		return nil, err
	}

	return customers, nil
}

func ChangeCustomerBalance(ctx context.Context, db bun.IDB, customerID string, delta int) (int, error) {
	var balance int
	err := db.NewUpdate().
		Model((*models.Customer)(nil)).
		Set("points_balance = points_balance + ?", delta).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", customerID).
		Returning("points_balance").
		Scan(ctx, &balance)
	return balance, err
}

func UpdateCustomerRewardClaims(ctx context.Context, db bun.IDB, customerID string, claims models.RewardClaims) error {
	b, err := json.Marshal(claims)
	if err != nil {
		return err
	}

	_, err = db.NewUpdate().
		Model((*models.Customer)(nil)).
		Set("reward_claims = ?::jsonb", string(b)).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", customerID).
		Exec(ctx)
	return err
}

// MarkCustomerBirthdayGrant is a compare-and-set on last_birthday_gift_year.
func MarkCustomerBirthdayGrant(ctx context.Context, db bun.IDB, customerID string, year int) (bool, error) {
	res, err := db.NewUpdate().
		Model((*models.Customer)(nil)).
		Set("last_birthday_gift_year = ?", year).
		Set("birthday_voucher_available = ?", true).
		Set("birthday_voucher_year = ?", year).
		Set("birthday_voucher_redeemed_year = NULL").
		Set("birthday_voucher_redeemed_by = NULL").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", customerID).
		Where("last_birthday_gift_year IS DISTINCT FROM ?", year).
		Exec(ctx)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func RedeemCustomerBirthdayVoucher(ctx context.Context, db bun.IDB, customerID string, year int, employeeName string) error {
	_, err := db.NewUpdate().
		Model((*models.Customer)(nil)).
		Set("birthday_voucher_available = ?", false).
		Set("birthday_voucher_redeemed_year = ?", year).
		Set("birthday_voucher_redeemed_by = ?", employeeName).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", customerID).
		Exec(ctx)
	return err
}
