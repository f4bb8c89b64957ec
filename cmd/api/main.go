package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"salonloyalty/internal/api/handler"
	"salonloyalty/internal/config"
	"salonloyalty/internal/infra"

	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
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
		Name: "api",
		Commands: []*cli.Command{
			commandServer(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandServer() *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "start the web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: "0.0.0.0:8080",
				Usage: "serve address",
			},
			&cli.BoolFlag{
				Name:  "in-memory",
				Usage: "keep all state in process, for local development",
			},
		},
		Action: func(c *cli.Context) error {
			required := []string{"JWT_SECRET", "ADMIN_SECRET"}
			if !c.Bool("in-memory") {
				required = append(required, "DB_DSN", "REDIS_CACHE", "REDIS_MUTEX", "REDIS_LIMITER", "REDIS_DB")
			}
			if _, err := env.EnvsRequired(required...); err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			container := infra.NewContainer(cfg, c.Bool("in-memory"))
			router, err := handler.New(&handler.Config{
				Container: container,
				Mode:      cfg.APIMode,
				Origins:   cfg.Origins(),
			})
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              c.String("addr"),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errWg, errCtx := errgroup.WithContext(ctx)

			errWg.Go(func() error {
				log.Printf("ListenAndServe: %s (%s)\n", c.String("addr"), cfg.APIMode)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return err
				}
				return nil
			})

			errWg.Go(func() error {
				<-errCtx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			return errWg.Wait()
		},
	}
}
