package datastore

import (
	"context"
	"time"

	"salonloyalty/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableConfig(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().Model((*models.Config)(nil)).IfNotExists().Exec(ctx)
	return err
}

// InsertConfig keeps an existing value; seeding never overwrites what staff changed.
func InsertConfig(ctx context.Context, db bun.IDB, config models.Config) error {
	config.UpdatedAt = time.Now()
	_, err := db.NewInsert().Model(&config).On("CONFLICT (key) DO NOTHING").Exec(ctx)
	return err
}

// UpsertConfig sets key to value whether or not it was seeded.
func UpsertConfig(ctx context.Context, db bun.IDB, config *models.Config) error {
	config.UpdatedAt = time.Now()
	_, err := db.NewInsert().
		Model(config).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func GetConfigByKey(ctx context.Context, db bun.IDB, key string) (*models.Config, error) {
	var config models.Config
	err := db.NewSelect().Model(&config).Where("key = ?", key).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func GetConfigs(ctx context.Context, db bun.IDB) ([]*models.Config, error) {
	var configs []*models.Config
	err := db.NewSelect().Model(&configs).Order("key ASC").Scan(ctx)
	return configs, err
}
