package services

import (
	"context"
	"log"
	"time"

	"salonloyalty/internal/interfaces"

	tele "gopkg.in/telebot.v3"
)

// Bot posts operational messages to the staff chat.
type Bot struct {
	bot    *tele.Bot
	chatID int64
}

var _ interfaces.StaffNotifier = (*Bot)(nil)

func NewBot(token string, chatID int64) (*Bot, error) {
	b, err := tele.NewBot(tele.Settings{
		Token:   token,
		Offline: true,
		Poller:  &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, err
	}

	return &Bot{b, chatID}, nil
}

func (bot *Bot) NotifyStaff(_ context.Context, text string) error {
	_, err := bot.bot.Send(&tele.Chat{ID: bot.chatID}, text, &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		DisableWebPagePreview: true,
	})
	return err
}

// LogNotifier stands in for the staff chat when no bot is configured.
type LogNotifier struct{}

var _ interfaces.StaffNotifier = LogNotifier{}

func (LogNotifier) NotifyStaff(_ context.Context, text string) error {
	log.Println("staff:", text)
	return nil
}
