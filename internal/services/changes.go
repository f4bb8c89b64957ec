package services

import (
	"sync"
)

type BalanceChange struct {
	CustomerID string `json:"customer_id"`
	Balance    int    `json:"balance"`
	Delta      int    `json:"delta"`
	Reason     string `json:"reason"`
}

// ChangeFeed fans committed balance changes out to in-process subscribers.
// Slow subscribers miss events rather than block writers.
type ChangeFeed struct {
	mu   sync.RWMutex
	next int
	subs map[string]map[int]chan BalanceChange
}

func NewChangeFeed() *ChangeFeed {
	return &ChangeFeed{subs: map[string]map[int]chan BalanceChange{}}
}

func (f *ChangeFeed) Subscribe(customerID string) (<-chan BalanceChange, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.next
	f.next++
	ch := make(chan BalanceChange, 8)
	if f.subs[customerID] == nil {
		f.subs[customerID] = map[int]chan BalanceChange{}
	}
	f.subs[customerID][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subs[customerID], id)
			if len(f.subs[customerID]) == 0 {
				delete(f.subs, customerID)
			}
			close(ch)
		})
	}
}

func (f *ChangeFeed) Publish(change BalanceChange) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, ch := range f.subs[change.CustomerID] {
		select {
		case ch <- change:
		default:
		}
	}
}
