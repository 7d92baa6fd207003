package model

import (
	"time"

	"courtbook/pkg/timewindow"
)

const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Requester identifies who a booking or waitlist entry belongs to.
// Identity management is external; the engine only carries these fields
// through for lookups and notifications.
type Requester struct {
	UserID string `json:"user_id" bson:"user_id" validate:"required,min=1,max=100"`
	Name   string `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email  string `json:"email" bson:"email" validate:"required,email"`
}

// EquipmentRequest is one line of an equipment selection.
type EquipmentRequest struct {
	EquipmentID string `json:"equipment_id" bson:"equipment_id" validate:"required,mongodb"`
	Quantity    int    `json:"quantity" bson:"quantity" validate:"required,min=1"`
}

// AppliedMultiplier records one pricing rule that matched a booking, in
// evaluation order.
type AppliedMultiplier struct {
	RuleName   string  `json:"rule_name" bson:"rule_name"`
	Multiplier float64 `json:"multiplier" bson:"multiplier"`
}

// PriceBreakdown is the itemized result of a price calculation:
// finalPrice = courtBasePrice * product(multipliers) * durationHours
//            + equipmentTotal + coachFee.
// It is recomputed fresh for every request and never cached, since the
// active rule set can change between requests.
type PriceBreakdown struct {
	CourtBasePrice   float64             `json:"court_base_price" bson:"court_base_price"`
	CourtMultipliers []AppliedMultiplier `json:"court_multipliers" bson:"court_multipliers"`
	EquipmentTotal   float64             `json:"equipment_total" bson:"equipment_total"`
	CoachFee         float64             `json:"coach_fee" bson:"coach_fee"`
	FinalPrice       float64             `json:"final_price" bson:"final_price"`
}

// Booking is a confirmed (or later cancelled) allocation of a court, optional
// equipment units, and an optional coach for one time window. Cancellation is
// terminal: the status flips to cancelled exactly once and no other field is
// ever mutated. Bookings are never physically deleted.
type Booking struct {
	ID             string             `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Requester      Requester          `json:"requester" bson:"requester" validate:"required"`
	CourtID        string             `json:"court_id" bson:"court_id" validate:"required,mongodb"`
	Date           time.Time          `json:"date" bson:"date" validate:"required"`
	StartTime      string             `json:"start_time" bson:"start_time" validate:"required,time_hhmm"`
	EndTime        string             `json:"end_time" bson:"end_time" validate:"required,time_hhmm"`
	Equipment      []EquipmentRequest `json:"equipment,omitempty" bson:"equipment" validate:"omitempty,dive"`
	CoachID        string             `json:"coach_id,omitempty" bson:"coach_id,omitempty" validate:"omitempty,mongodb"`
	TotalPrice     float64            `json:"total_price" bson:"total_price"`
	PriceBreakdown PriceBreakdown     `json:"price_breakdown" bson:"price_breakdown"`
	Status         string             `json:"status" bson:"status" validate:"omitempty,oneof=confirmed cancelled"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}

// Window materializes the booking's time window. Fails with a
// timewindow.MalformedTimeError when the stored HH:mm strings are invalid.
func (b *Booking) Window() (timewindow.Window, error) {
	return timewindow.ParseWindow(b.Date, b.StartTime, b.EndTime)
}
