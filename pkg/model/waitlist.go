package model

import (
	"time"

	"courtbook/pkg/timewindow"
)

// WaitlistEntry queues a requester for an exact (court, window) slot.
// For a fixed slot key, positions form a contiguous sequence starting at 1.
// Notified flips true exactly once, on promotion, and is never reset, so each
// entry is promoted at most once in its lifetime.
type WaitlistEntry struct {
	ID        string             `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Requester Requester          `json:"requester" bson:"requester" validate:"required"`
	CourtID   string             `json:"court_id" bson:"court_id" validate:"required,mongodb"`
	Date      time.Time          `json:"date" bson:"date" validate:"required"`
	StartTime string             `json:"start_time" bson:"start_time" validate:"required,time_hhmm"`
	EndTime   string             `json:"end_time" bson:"end_time" validate:"required,time_hhmm"`
	Equipment []EquipmentRequest `json:"equipment,omitempty" bson:"equipment" validate:"omitempty,dive"`
	CoachID   string             `json:"coach_id,omitempty" bson:"coach_id,omitempty" validate:"omitempty,mongodb"`
	Position  int                `json:"position" bson:"position"`
	Notified  bool               `json:"notified" bson:"notified"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// Window materializes the entry's desired time window.
func (e *WaitlistEntry) Window() (timewindow.Window, error) {
	return timewindow.ParseWindow(e.Date, e.StartTime, e.EndTime)
}
