package model

import "time"

const (
	CourtTypeIndoor  = "indoor"
	CourtTypeOutdoor = "outdoor"
)

const (
	EquipmentTypeRacket = "racket"
	EquipmentTypeShoes  = "shoes"
)

// Pricing rule kinds. Each rule carries exactly the fields its kind reads;
// evaluation dispatches on RuleType.
const (
	RuleTypeTimeRange = "time_range"
	RuleTypeDayOfWeek = "day_of_week"
	RuleTypeCourtType = "court_type"
)

// Court is a bookable playing surface. Inactive courts still resolve in the
// catalog but must be treated as unbookable.
type Court struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string    `json:"name" bson:"name"`
	Type      string    `json:"type" bson:"type"`
	BasePrice float64   `json:"base_price" bson:"base_price"`
	IsActive  bool      `json:"is_active" bson:"is_active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Equipment is a rentable item pool with a fixed total quantity. Availability
// is derived at query time by summing quantities held by overlapping confirmed
// bookings; no mutable counter is stored.
type Equipment struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string    `json:"name" bson:"name"`
	Type        string    `json:"type" bson:"type"`
	Quantity    int       `json:"quantity" bson:"quantity"`
	RentalPrice float64   `json:"rental_price" bson:"rental_price"`
	IsActive    bool      `json:"is_active" bson:"is_active"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// AvailabilitySlot is one recurring weekly window in a coach's schedule.
// DayOfWeek follows time.Weekday numbering: 0 = Sunday .. 6 = Saturday.
type AvailabilitySlot struct {
	DayOfWeek int    `json:"day_of_week" bson:"day_of_week"`
	StartTime string `json:"start_time" bson:"start_time"`
	EndTime   string `json:"end_time" bson:"end_time"`
}

// Coach is bookable only within its weekly availability template and only
// when no confirmed booking already claims the requested window.
type Coach struct {
	ID           string             `json:"id,omitempty" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email" bson:"email"`
	HourlyRate   float64            `json:"hourly_rate" bson:"hourly_rate"`
	Availability []AvailabilitySlot `json:"availability" bson:"availability"`
	IsActive     bool               `json:"is_active" bson:"is_active"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}

// TimeRange is the half-open [Start, End) HH:mm range a time_range rule
// matches booking start instants against.
type TimeRange struct {
	Start string `json:"start" bson:"start"`
	End   string `json:"end" bson:"end"`
}

// PricingRule adjusts the court price by a multiplier when it applies.
// Rules are evaluated in ascending Priority order (ties broken by id), never
// in incidental storage order, so repeated calculations see a stable sequence.
type PricingRule struct {
	ID          string     `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string     `json:"name" bson:"name"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	RuleType    string     `json:"rule_type" bson:"rule_type"`
	TimeRange   *TimeRange `json:"time_range,omitempty" bson:"time_range,omitempty"`
	DaysOfWeek  []int      `json:"days_of_week,omitempty" bson:"days_of_week,omitempty"`
	CourtType   string     `json:"court_type,omitempty" bson:"court_type,omitempty"`
	Multiplier  float64    `json:"multiplier" bson:"multiplier"`
	Priority    int        `json:"priority" bson:"priority"`
	IsActive    bool       `json:"is_active" bson:"is_active"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
}
