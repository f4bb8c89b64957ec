package datastore

import (
	"context"
	"time"

	"salonloyalty/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableRewardAction(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().Model((*models.RewardAction)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.RewardAction)(nil)).Index("index_reward_action_sort_order").IfNotExists().Column("sort_order").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetRewardActionByID(ctx context.Context, db bun.IDB, id string) (*models.RewardAction, error) {
	var action models.RewardAction
	err := db.NewSelect().Model(&action).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &action, nil
}

func GetRewardActions(ctx context.Context, db bun.IDB, activeOnly bool) ([]*models.RewardAction, error) {
	var actions []*models.RewardAction
	q := db.NewSelect().Model(&actions)
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	err := q.Order("sort_order ASC", "title ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return actions, nil
}

func UpsertRewardAction(ctx context.Context, db bun.IDB, action *models.RewardAction) error {
	action.UpdatedAt = time.Now()
	_, err := db.NewInsert().Model(action).
		On("CONFLICT (id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("description = EXCLUDED.description").
		Set("points = EXCLUDED.points").
		Set("link = EXCLUDED.link").
		Set("active = EXCLUDED.active").
		Set("sort_order = EXCLUDED.sort_order").
		Set("valid_from = EXCLUDED.valid_from").
		Set("valid_until = EXCLUDED.valid_until").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func DeleteRewardAction(ctx context.Context, db bun.IDB, id string) (bool, error) {
	res, err := db.NewDelete().Model((*models.RewardAction)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
