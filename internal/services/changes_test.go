package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChangeFeedDeliversPerCustomer(t *testing.T) {
	feed := NewChangeFeed()
	mine, cancelMine := feed.Subscribe("c1")
	other, cancelOther := feed.Subscribe("c2")
	defer cancelOther()

	feed.Publish(BalanceChange{CustomerID: "c1", Balance: 10, Delta: 10})
	assert.Equal(t, 10, (<-mine).Balance)
	assert.Empty(t, other)

	cancelMine()
	cancelMine()
	_, open := <-mine
	assert.False(t, open)

	feed.Publish(BalanceChange{CustomerID: "c1", Balance: 20, Delta: 10})
}

func TestChangeFeedDropsForSlowSubscribers(t *testing.T) {
	feed := NewChangeFeed()
	ch, cancel := feed.Subscribe("c1")
	defer cancel()

	for i := 0; i < 20; i++ {
		feed.Publish(BalanceChange{CustomerID: "c1", Balance: i})
	}
	assert.Len(t, ch, cap(ch))
}
