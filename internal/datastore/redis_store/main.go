package redis_store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salonloyalty/internal/interfaces"
	"salonloyalty/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const BIRTHDAY_SUMMARY_TTL = 30 * 24 * time.Hour

func dbKeyBirthdaySummary(date string) string {
	return fmt.Sprintf("job:birthday:summary:%s", date)
}

func dbKeyLastBirthdaySummary() string {
	return "job:birthday:summary:last"
}

func SetBirthdaySummary(ctx context.Context, cmd redis.Cmdable, v *models.BirthdaySummary) error {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}

	_, err = cmd.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, dbKeyBirthdaySummary(v.Date), b, BIRTHDAY_SUMMARY_TTL)
		pipe.Set(ctx, dbKeyLastBirthdaySummary(), b, 0)
		return nil
	})
	return err
}

func GetBirthdaySummary(ctx context.Context, cmd redis.Cmdable, date string) (*models.BirthdaySummary, error) {
	return getSummary(ctx, cmd, dbKeyBirthdaySummary(date))
}

func GetLastBirthdaySummary(ctx context.Context, cmd redis.Cmdable) (*models.BirthdaySummary, error) {
	return getSummary(ctx, cmd, dbKeyLastBirthdaySummary())
}

func getSummary(ctx context.Context, cmd redis.Cmdable, key string) (*models.BirthdaySummary, error) {
	var v *models.BirthdaySummary
	b, err := cmd.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	err = msgpack.Unmarshal(b, &v)
	return v, err
}

// SummaryStore keeps job summaries in Redis.
type SummaryStore struct {
	cmd redis.Cmdable
}

var _ interfaces.SummaryStore = (*SummaryStore)(nil)

func NewSummaryStore(cmd redis.Cmdable) *SummaryStore {
	return &SummaryStore{cmd}
}

func (s *SummaryStore) SaveBirthdaySummary(ctx context.Context, summary *models.BirthdaySummary) error {
	return SetBirthdaySummary(ctx, s.cmd, summary)
}

func (s *SummaryStore) LastBirthdaySummary(ctx context.Context) (*models.BirthdaySummary, error) {
	return GetLastBirthdaySummary(ctx, s.cmd)
}
