package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Notifier delivers the study reminder to a chat.
type Notifier interface {
	SendStudyReminder(chatID int64) error
}

// ChatLister reports the chats that have interacted with the bot.
type ChatLister interface {
	ChatIDs() []int64
}

// Scheduler sends a once-a-day "time to review" nudge. This is a fixed-time
// reminder, not a spaced-repetition schedule.
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	chats     ChatLister
	log       *zap.Logger
	hour      int
}

func New(notifier Notifier, chats ChatLister, hour int, log *zap.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		chats:     chats,
		log:       log,
		hour:      hour,
	}
}

func (s *Scheduler) Start() error {
	at := fmt.Sprintf("%02d:00", s.hour)
	if _, err := s.scheduler.Every(1).Day().At(at).Do(s.remind); err != nil {
		return fmt.Errorf("failed to schedule reminder: %w", err)
	}
	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) remind() {
	for _, chatID := range s.chats.ChatIDs() {
		if err := s.notifier.SendStudyReminder(chatID); err != nil {
			s.log.Warn("failed to send study reminder", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}
}
