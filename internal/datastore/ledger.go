package datastore

import (
	"context"

	"salonloyalty/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableLedgerEntry(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().Model((*models.LedgerEntry)(nil)).IfNotExists().
		ForeignKey(`("customer_id") REFERENCES "customer" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.LedgerEntry)(nil)).Index("index_ledger_entry_customer_id").IfNotExists().Column("customer_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.LedgerEntry)(nil)).Index("index_ledger_entry_created_at").IfNotExists().Column("created_at").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.LedgerEntry)(nil)).Index("index_ledger_entry_customer_id_operation_id").IfNotExists().Unique().
		Column("customer_id", "operation_id").
		Where("operation_id IS NOT NULL").
		Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertLedgerEntry(ctx context.Context, db bun.IDB, entry *models.LedgerEntry) error {
	_, err := db.NewInsert().Model(entry).Exec(ctx)
	return err
}

func FindLedgerEntryByOperation(ctx context.Context, db bun.IDB, customerID, operationID string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := db.NewSelect().Model(&entry).
		Where("customer_id = ?", customerID).
		Where("operation_id = ?", operationID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func GetLedgerEntriesByCustomer(ctx context.Context, db bun.IDB, customerID string, limit int) ([]*models.LedgerEntry, error) {
	var entries []*models.LedgerEntry
	err := db.NewSelect().Model(&entries).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func GetCustomerLedgerSum(ctx context.Context, db bun.IDB, customerID string) (int, error) {
	var sum int
	err := db.NewSelect().
		Model((*models.LedgerEntry)(nil)).
		ColumnExpr("COALESCE(SUM(points), 0)").
		Where("customer_id = ?", customerID).
		Scan(ctx, &sum)
	if err != nil {
		return 0, err
	}

	return sum, nil
}
