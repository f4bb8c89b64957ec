package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"

	"salonloyalty/internal/config"
	"salonloyalty/internal/infra"
	"salonloyalty/internal/models"
	"salonloyalty/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/samber/do"
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
		Name: "export",
		Commands: []*cli.Command{
			commandExport(),
			commandAudit(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newContainer() (*do.Injector, error) {
	if _, err := env.EnvsRequired("JWT_SECRET", "DB_DSN", "REDIS_CACHE"); err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return infra.NewContainer(cfg, false), nil
}

func commandExport() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write every customer's points balance as CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Usage: "output file, stdout when empty",
			},
		},
		Action: func(c *cli.Context) error {
			container, err := newContainer()
			if err != nil {
				return err
			}

			serviceCustomer, err := do.Invoke[*services.ServiceCustomer](container)
			if err != nil {
				return err
			}

			rows, err := serviceCustomer.ExportPoints(c.Context)
			if err != nil {
				return err
			}

			var out io.Writer = os.Stdout
			if path := c.String("out"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			if err := writeCSV(out, rows); err != nil {
				return err
			}

			log.Printf("exported %d customers\n", len(rows))
			return nil
		},
	}
}

func writeCSV(out io.Writer, rows []models.PointsExportRow) error {
	w := csv.NewWriter(out)
	if err := w.Write(models.PointsExportHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row.Record()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func commandAudit() *cli.Command {
	return &cli.Command{
		Name:  "audit",
		Usage: "compare every cached balance with its ledger",
		Action: func(c *cli.Context) error {
			container, err := newContainer()
			if err != nil {
				return err
			}

			serviceCustomer, err := do.Invoke[*services.ServiceCustomer](container)
			if err != nil {
				return err
			}
			serviceLedger, err := do.Invoke[*services.ServiceLedger](container)
			if err != nil {
				return err
			}

			rows, err := serviceCustomer.ExportPoints(c.Context)
			if err != nil {
				return err
			}

			drifted := 0
			for _, row := range rows {
				audit, err := serviceLedger.AuditBalance(c.Context, row.CustomerID)
				if err != nil {
					return err
				}
				if !audit.Consistent {
					drifted++
					fmt.Printf("%s\tbalance=%d\tledger=%d\n", audit.CustomerID, audit.CachedBalance, audit.LedgerSum)
				}
			}

			log.Printf("audited %d customers, %d drifted\n", len(rows), drifted)
			if drifted > 0 {
				return cli.Exit("balance drift found", 1)
			}
			return nil
		},
	}
}
