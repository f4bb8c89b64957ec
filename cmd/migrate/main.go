package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"salonloyalty/internal/config"
	"salonloyalty/internal/datastore"
	"salonloyalty/internal/infra"
	"salonloyalty/internal/models"
	"salonloyalty/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandConfigMigration(),
			commandSetConfig(),
			commandListConfig(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func getDb() (*bun.DB, error) {
	if _, err := env.EnvsRequired("DB_DSN"); err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return infra.NewDB(cfg), nil
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create the tables and indexes",
		Action: func(c *cli.Context) error {
			db, err := getDb()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := datastore.CreateTables(c.Context, db); err != nil {
				return err
			}

			log.Println("migrate done")
			return nil
		},
	}
}

var defaultConfigs = []models.Config{
	{Key: services.CONFIG_CRONJOB_TIME_BIRTHDAY, Value: services.DEFAULT_CRONJOB_TIME_BIRTHDAY},
	{Key: services.CONFIG_BIRTHDAY_TITLE, Value: services.DEFAULT_BIRTHDAY_TITLE},
	{Key: services.CONFIG_BIRTHDAY_BODY, Value: services.DEFAULT_BIRTHDAY_BODY},
	{Key: services.CONFIG_BIRTHDAY_VOUCHER_VALUE, Value: services.DEFAULT_BIRTHDAY_VOUCHER_VALUE},
	{Key: services.CONFIG_BIRTHDAY_BONUS_POINTS, Value: "0"},
}

func commandConfigMigration() *cli.Command {
	return &cli.Command{
		Name:  "seed-config",
		Usage: "insert default runtime config, keeping existing values",
		Action: func(c *cli.Context) error {
			db, err := getDb()
			if err != nil {
				return err
			}
			defer db.Close()

			for _, cfg := range defaultConfigs {
				if err := datastore.InsertConfig(c.Context, db, cfg); err != nil {
					return err
				}
			}

			log.Printf("seeded %d config keys\n", len(defaultConfigs))
			return nil
		},
	}
}

func commandSetConfig() *cli.Command {
	return &cli.Command{
		Name:      "set-config",
		Usage:     "set one runtime config value",
		ArgsUsage: "<key> <value>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("usage: set-config <key> <value>", 2)
			}

			db, err := getDb()
			if err != nil {
				return err
			}
			defer db.Close()

			return setConfig(c.Context, db, models.Config{Key: c.Args().Get(0), Value: c.Args().Get(1)})
		},
	}
}

func setConfig(ctx context.Context, db bun.IDB, cfg models.Config) error {
	if err := datastore.UpsertConfig(ctx, db, &cfg); err != nil {
		return err
	}
	log.Printf("config %s = %q\n", cfg.Key, cfg.Value)
	return nil
}

func commandListConfig() *cli.Command {
	return &cli.Command{
		Name:  "list-config",
		Usage: "print the runtime config",
		Action: func(c *cli.Context) error {
			db, err := getDb()
			if err != nil {
				return err
			}
			defer db.Close()

			configs, err := datastore.GetConfigs(c.Context, db)
			if err != nil {
				return err
			}
			for _, cfg := range configs {
				fmt.Printf("%s\t%s\t%s\n", cfg.Key, cfg.UpdatedAt.Format(time.RFC3339), cfg.Value)
			}
			return nil
		},
	}
}
