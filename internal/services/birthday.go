package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"salonloyalty/internal/config"
	"salonloyalty/internal/interfaces"
	"salonloyalty/internal/models"
	"salonloyalty/internal/pkg"
	"salonloyalty/internal/pkg/caching"

	"github.com/samber/do"
)

type BirthdayRunOptions struct {
	// Date overrides today; YYYY-MM-DD or DD.MM.YYYY.
	Date   string
	DryRun bool
}

type ServiceBirthday struct {
	container  *do.Injector
	store      interfaces.Store
	cache      caching.Cache
	locker     interfaces.Locker
	summaries  interfaces.SummaryStore
	notifier   interfaces.StaffNotifier
	dispatcher *ServiceDispatcher
	config     *ServiceConfig
	feed       *ChangeFeed
	location   *time.Location
	now        func() time.Time
}

func NewServiceBirthday(container *do.Injector) (*ServiceBirthday, error) {
	store, err := do.Invoke[interfaces.Store](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	locker, err := do.Invoke[interfaces.Locker](container)
	if err != nil {
		return nil, err
	}

	summaries, err := do.Invoke[interfaces.SummaryStore](container)
	if err != nil {
		return nil, err
	}

	notifier, err := do.Invoke[interfaces.StaffNotifier](container)
	if err != nil {
		return nil, err
	}

	dispatcher, err := do.Invoke[*ServiceDispatcher](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	feed, err := do.Invoke[*ChangeFeed](container)
	if err != nil {
		return nil, err
	}

	cfg, err := do.Invoke[*config.Config](container)
	if err != nil {
		return nil, err
	}

	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return &ServiceBirthday{
		container:  container,
		store:      store,
		cache:      cache,
		locker:     locker,
		summaries:  summaries,
		notifier:   notifier,
		dispatcher: dispatcher,
		config:     serviceConfig,
		feed:       feed,
		location:   location,
		now:        time.Now,
	}, nil
}

type birthdayContent struct {
	title        string
	body         string
	voucherValue string
	bonusPoints  int
}

func (service *ServiceBirthday) loadContent(ctx context.Context) birthdayContent {
	var content birthdayContent
	var err error

	if content.title, err = service.config.GetStringConfig(ctx, CONFIG_BIRTHDAY_TITLE, DEFAULT_BIRTHDAY_TITLE); err != nil {
		log.Println("birthday title config:", err)
	}
	if content.body, err = service.config.GetStringConfig(ctx, CONFIG_BIRTHDAY_BODY, DEFAULT_BIRTHDAY_BODY); err != nil {
		log.Println("birthday body config:", err)
	}
	if content.voucherValue, err = service.config.GetStringConfig(ctx, CONFIG_BIRTHDAY_VOUCHER_VALUE, DEFAULT_BIRTHDAY_VOUCHER_VALUE); err != nil {
		log.Println("birthday voucher config:", err)
	}
	if content.bonusPoints, err = service.config.GetIntConfig(ctx, CONFIG_BIRTHDAY_BONUS_POINTS, 0); err != nil {
		log.Println("birthday bonus config:", err)
	}
	return content
}

func (content birthdayContent) message(customer *models.Customer) (string, string) {
	r := strings.NewReplacer("{name}", customer.FirstName, "{voucher}", content.voucherValue)
	return r.Replace(content.title), r.Replace(content.body)
}

// TargetDate resolves the override, or today in the job's zone.
func (service *ServiceBirthday) TargetDate(override string) (time.Time, error) {
	if strings.TrimSpace(override) == "" {
		return service.now().In(service.location), nil
	}

	date, err := pkg.ParseTargetDate(override, service.location)
	if err != nil {
		return time.Time{}, invalid("%v", err)
	}
	return date, nil
}

// Run grants this year's voucher to every customer whose birthday is the target date.
// The grant is written before the push goes out, so a concurrent run that loses the
// compare-and-set sends nothing.
func (service *ServiceBirthday) Run(ctx context.Context, opts BirthdayRunOptions) (*models.BirthdaySummary, error) {
	target, err := service.TargetDate(opts.Date)
	if err != nil {
		return nil, err
	}

	year, month, day := target.Date()
	summary := &models.BirthdaySummary{DryRun: opts.DryRun, Date: pkg.FormatTargetDate(target)}

	if !opts.DryRun {
		unlock, err := service.locker.TryLock(ctx, LockKeyBirthdayJob(summary.Date), BIRTHDAY_JOB_LOCK_TTL)
		if errors.Is(err, interfaces.ErrLocked) {
			return nil, ErrJobRunning
		}
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	customers, err := service.store.FindCustomersByBirthday(ctx, int(month), day)
	if err != nil {
		return nil, err
	}
	summary.Checked = len(customers)

	content := service.loadContent(ctx)
	for _, customer := range customers {
		if customer.LastBirthdayGiftYear != nil && *customer.LastBirthdayGiftYear == year {
			summary.AlreadySent++
			continue
		}

		tokens, err := service.store.DeviceTokensByCustomer(ctx, customer.ID)
		if err != nil {
			log.Println("birthday job: tokens", customer.ID, err)
			continue
		}
		if len(tokens) == 0 {
			summary.WithoutTokens++
			continue
		}

		summary.Recipients += len(tokens)
		if opts.DryRun {
			continue
		}

		granted, err := service.grant(ctx, customer.ID, year, content.bonusPoints)
		if err != nil {
			log.Println("birthday job: grant", customer.ID, err)
			continue
		}
		if !granted {
			summary.AlreadySent++
			continue
		}
		summary.Granted++

		title, body := content.message(customer)
		report := service.dispatcher.Send(ctx, tokens, title, body, map[string]string{
			PUSH_DATA_TYPE: PUSH_DATA_TYPE_BIRTHDAY,
			"year":         fmt.Sprint(year),
		})
		summary.Sent += report.Sent
		summary.FailedBatches += report.FailedBatches
	}

	log.Printf("birthday job %s: %+v\n", summary.Date, *summary)

	// a preview must not replace the last real run
	if !opts.DryRun {
		if err := service.summaries.SaveBirthdaySummary(ctx, summary); err != nil {
			log.Println("birthday job: save summary", err)
		}
		if err := service.notifier.NotifyStaff(ctx, FormatBirthdaySummary(summary)); err != nil {
			log.Println("birthday job: notify staff", err)
		}
	}

	return summary, nil
}

// grant returns false when another run already granted year.
func (service *ServiceBirthday) grant(ctx context.Context, customerID string, year int, bonusPoints int) (bool, error) {
	var granted bool
	var balance int
	var posted bool

	err := runInTxWithRetry(ctx, service.store, func(ctx context.Context, tx interfaces.Tx) (err error) {
		granted, err = tx.MarkBirthdayGrant(ctx, customerID, year)
		if err != nil || !granted {
			return err
		}
		if bonusPoints <= 0 {
			return nil
		}

		balance, posted, err = postEntryTx(ctx, tx, customerID, bonusPoints, REASON_BIRTHDAY_BONUS, models.EntryOptions{
			Source:      models.SOURCE_BIRTHDAY_JOB,
			OperationID: OperationIDBirthday(year),
		})
		return err
	})
	if err != nil {
		return false, err
	}

	if granted {
		caching.Invalidate(ctx, service.cache, DBKeyCustomer(customerID))
	}
	if posted {
		service.feed.Publish(BalanceChange{CustomerID: customerID, Balance: balance, Delta: bonusPoints, Reason: REASON_BIRTHDAY_BONUS})
	}
	return granted, nil
}

func (service *ServiceBirthday) LastSummary(ctx context.Context) (*models.BirthdaySummary, error) {
	summary, err := service.summaries.LastBirthdaySummary(ctx)
	if err != nil {
		return nil, storeErr(err, "birthday summary")
	}
	return summary, nil
}

// CronSpec is the configured schedule, read from the config table.
func (service *ServiceBirthday) CronSpec(ctx context.Context, fallback string) string {
	if fallback == "" {
		fallback = DEFAULT_CRONJOB_TIME_BIRTHDAY
	}
	spec, err := service.config.GetStringConfig(ctx, CONFIG_CRONJOB_TIME_BIRTHDAY, fallback)
	if err != nil || strings.TrimSpace(spec) == "" {
		return fallback
	}
	return spec
}

func (service *ServiceBirthday) Location() *time.Location {
	return service.location
}

func FormatBirthdaySummary(summary *models.BirthdaySummary) string {
	return fmt.Sprintf(
		"<b>Birthday job %s</b>\nchecked: %d\ngranted: %d\nsent: %d\nalready sent: %d\nwithout tokens: %d\nfailed batches: %d",
		summary.Date, summary.Checked, summary.Granted, summary.Sent, summary.AlreadySent, summary.WithoutTokens, summary.FailedBatches,
	)
}
