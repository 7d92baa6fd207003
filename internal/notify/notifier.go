package notify

import (
	"context"
	"time"

	"courtbook/pkg/kafka"
	"courtbook/pkg/logger"
	"courtbook/pkg/model"
)

const EventTypeSlotAvailable = "waitlist.slot_available"

// PromotionEvent is published when a cancellation frees a slot for the next
// waitlist entry. Consumers own delivery to the user (email, push); the
// engine only records that the entry was promoted.
type PromotionEvent struct {
	EntryID   string    `json:"entry_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	CourtID   string    `json:"court_id"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Position  int       `json:"position"`
}

// Notifier delivers promotion events. Implementations must be safe for
// concurrent use.
type Notifier interface {
	NotifyPromotion(ctx context.Context, entry *model.WaitlistEntry) error
}

// KafkaNotifier publishes promotion events keyed by court so per-court
// ordering is preserved.
type KafkaNotifier struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaNotifier(producer *kafka.Producer, log *logger.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		producer: producer,
		log:      log,
	}
}

func (n *KafkaNotifier) NotifyPromotion(ctx context.Context, entry *model.WaitlistEntry) error {
	event := PromotionEvent{
		EntryID:   entry.ID,
		UserID:    entry.Requester.UserID,
		UserName:  entry.Requester.Name,
		UserEmail: entry.Requester.Email,
		CourtID:   entry.CourtID,
		Date:      entry.Date,
		StartTime: entry.StartTime,
		EndTime:   entry.EndTime,
		Position:  entry.Position,
	}

	msg := kafka.NewMessage().
		WithKey(entry.CourtID).
		WithValue(event).
		WithEventType(EventTypeSlotAvailable).
		WithSource("reservations").
		WithSchemaVersion("1.0").
		Build()

	return n.producer.Publish(ctx, msg)
}

// LogNotifier is the fallback when no broker is configured; promotions are
// only recorded in the service log.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyPromotion(_ context.Context, entry *model.WaitlistEntry) error {
	n.log.Info("Waitlist notification: slot available",
		"entry_id", entry.ID,
		"user_email", entry.Requester.Email,
		"court_id", entry.CourtID,
		"date", entry.Date.Format(time.DateOnly),
		"start_time", entry.StartTime,
	)
	return nil
}
