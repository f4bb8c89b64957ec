package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"salonloyalty/internal/config"
	"salonloyalty/internal/infra"
	"salonloyalty/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
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
		Name: "cronjob",
		Commands: []*cli.Command{
			commandCronjob(),
			commandBirthday(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newBirthdayService() (*services.ServiceBirthday, *config.Config, error) {
	if _, err := env.EnvsRequired("JWT_SECRET", "DB_DSN", "REDIS_CACHE", "REDIS_MUTEX", "REDIS_DB"); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	container := infra.NewContainer(cfg, false)
	birthday, err := do.Invoke[*services.ServiceBirthday](container)
	if err != nil {
		return nil, nil, err
	}
	return birthday, cfg, nil
}

func commandCronjob() *cli.Command {
	return &cli.Command{
		Name:  "cron",
		Usage: "run the birthday job on its daily schedule",
		Action: func(c *cli.Context) error {
			birthday, cfg, err := newBirthdayService()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cronRunner := cron.New(cron.WithLocation(birthday.Location()))
			job := NewBirthdayJob(birthday)
			if err := job.Start(ctx, cronRunner, birthday.CronSpec(ctx, cfg.BirthdayCron)); err != nil {
				return err
			}

			log.Println("Start cronjob")
			cronRunner.Start()
			<-ctx.Done()
			<-cronRunner.Stop().Done()
			return nil
		},
	}
}

func commandBirthday() *cli.Command {
	return &cli.Command{
		Name:  "birthday",
		Usage: "run the birthday job once",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "date",
				Usage: "target date as DD.MM.YYYY or YYYY-MM-DD, defaults to today",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "count recipients without sending or granting",
			},
		},
		Action: func(c *cli.Context) error {
			birthday, _, err := newBirthdayService()
			if err != nil {
				return err
			}

			summary, err := birthday.Run(c.Context, services.BirthdayRunOptions{
				Date:   c.String("date"),
				DryRun: c.Bool("dry-run"),
			})
			if err != nil {
				return err
			}

			fmt.Println(services.FormatBirthdaySummary(summary))
			return nil
		},
	}
}
