package datastore

import (
	"context"

	"salonloyalty/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableDeviceToken(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().Model((*models.DeviceToken)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.DeviceToken)(nil)).Index("index_device_token_customer_id").IfNotExists().Column("customer_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetDeviceTokensByCustomer(ctx context.Context, db bun.IDB, customerID string) ([]string, error) {
	var tokens []string
	err := db.NewSelect().Model((*models.DeviceToken)(nil)).
		Column("token").
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Scan(ctx, &tokens)
	if err != nil {
		return nil, err
	}

	return tokens, nil
}

func GetAllDeviceTokens(ctx context.Context, db bun.IDB) ([]string, error) {
	var tokens []string
	err := db.NewSelect().Model((*models.DeviceToken)(nil)).
		Column("token").
		Order("customer_id ASC", "created_at ASC").
		Scan(ctx, &tokens)
	if err != nil {
		return nil, err
	}

	return tokens, nil
}

// UpsertDeviceToken moves a token to its latest owner when a device changes hands.
func UpsertDeviceToken(ctx context.Context, db bun.IDB, token *models.DeviceToken) error {
	_, err := db.NewInsert().Model(token).
		On("CONFLICT (token) DO UPDATE").
		Set("customer_id = EXCLUDED.customer_id").
		Set("platform = EXCLUDED.platform").
		Exec(ctx)
	return err
}

func DeleteDeviceToken(ctx context.Context, db bun.IDB, customerID, token string) error {
	_, err := db.NewDelete().Model((*models.DeviceToken)(nil)).
		Where("customer_id = ?", customerID).
		Where("token = ?", token).
		Exec(ctx)
	return err
}
