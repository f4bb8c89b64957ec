package memstore

import (
	"context"
	"sync"

	"salonloyalty/internal/interfaces"
	"salonloyalty/internal/models"
)

type SummaryStore struct {
	mu   sync.Mutex
	last *models.BirthdaySummary
}

var _ interfaces.SummaryStore = (*SummaryStore)(nil)

func NewSummaryStore() *SummaryStore {
	return &SummaryStore{}
}

func (s *SummaryStore) SaveBirthdaySummary(_ context.Context, summary *models.BirthdaySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *summary
	s.last = &cp
	return nil
}

func (s *SummaryStore) LastBirthdaySummary(_ context.Context) (*models.BirthdaySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil, interfaces.ErrNotFound
	}
	cp := *s.last
	return &cp, nil
}
