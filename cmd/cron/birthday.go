package main

import (
	"context"
	"errors"
	"log"

	"salonloyalty/internal/services"

	"github.com/robfig/cron/v3"
)

type BirthdayJob struct {
	service *services.ServiceBirthday
}

func NewBirthdayJob(service *services.ServiceBirthday) *BirthdayJob {
	return &BirthdayJob{service}
}

func (job *BirthdayJob) Start(ctx context.Context, runner *cron.Cron, spec string) error {
	_, err := runner.AddFunc(spec, func() {
		job.run(ctx)
	})
	if err != nil {
		return err
	}

	log.Printf("birthday job scheduled at %q (%s)\n", spec, job.service.Location())
	return nil
}

func (job *BirthdayJob) run(ctx context.Context) {
	summary, err := job.service.Run(ctx, services.BirthdayRunOptions{})
	if errors.Is(err, services.ErrJobRunning) {
		log.Println("birthday job skipped: another run holds the lock")
		return
	}
	if err != nil {
		log.Println("birthday job failed:", err)
		return
	}

	log.Println(services.FormatBirthdaySummary(summary))
}
