package testutil

import (
	"time"

	"courtbook/pkg/model"
)

type CourtBuilder struct {
	court model.Court
}

func NewCourtBuilder() *CourtBuilder {
	return &CourtBuilder{
		court: model.Court{
			Name:      "Test Court",
			Type:      "indoor",
			BasePrice: 50,
			IsActive:  true,
			CreatedAt: time.Now(),
		},
	}
}

func (b *CourtBuilder) WithName(name string) *CourtBuilder {
	b.court.Name = name
	return b
}

func (b *CourtBuilder) WithType(courtType string) *CourtBuilder {
	b.court.Type = courtType
	return b
}

func (b *CourtBuilder) WithBasePrice(price float64) *CourtBuilder {
	b.court.BasePrice = price
	return b
}

func (b *CourtBuilder) Inactive() *CourtBuilder {
	b.court.IsActive = false
	return b
}

func (b *CourtBuilder) Build() model.Court {
	return b.court
}

type EquipmentBuilder struct {
	eq model.Equipment
}

func NewEquipmentBuilder() *EquipmentBuilder {
	return &EquipmentBuilder{
		eq: model.Equipment{
			Name:        "Badminton Racket",
			Type:        "racket",
			Quantity:    20,
			RentalPrice: 5,
			IsActive:    true,
			CreatedAt:   time.Now(),
		},
	}
}

func (b *EquipmentBuilder) WithName(name string) *EquipmentBuilder {
	b.eq.Name = name
	return b
}

func (b *EquipmentBuilder) WithQuantity(qty int) *EquipmentBuilder {
	b.eq.Quantity = qty
	return b
}

func (b *EquipmentBuilder) WithRentalPrice(price float64) *EquipmentBuilder {
	b.eq.RentalPrice = price
	return b
}

func (b *EquipmentBuilder) Inactive() *EquipmentBuilder {
	b.eq.IsActive = false
	return b
}

func (b *EquipmentBuilder) Build() model.Equipment {
	return b.eq
}

type CoachBuilder struct {
	coach model.Coach
}

func NewCoachBuilder() *CoachBuilder {
	return &CoachBuilder{
		coach: model.Coach{
			Name:       "Test Coach",
			Email:      "coach@example.com",
			HourlyRate: 30,
			Availability: []model.AvailabilitySlot{
				{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00"},
				{DayOfWeek: 2, StartTime: "09:00", EndTime: "17:00"},
				{DayOfWeek: 3, StartTime: "09:00", EndTime: "17:00"},
				{DayOfWeek: 4, StartTime: "09:00", EndTime: "17:00"},
				{DayOfWeek: 5, StartTime: "09:00", EndTime: "17:00"},
			},
			IsActive:  true,
			CreatedAt: time.Now(),
		},
	}
}

func (b *CoachBuilder) WithName(name string) *CoachBuilder {
	b.coach.Name = name
	return b
}

func (b *CoachBuilder) WithHourlyRate(rate float64) *CoachBuilder {
	b.coach.HourlyRate = rate
	return b
}

func (b *CoachBuilder) WithAvailability(slots ...model.AvailabilitySlot) *CoachBuilder {
	b.coach.Availability = slots
	return b
}

func (b *CoachBuilder) Inactive() *CoachBuilder {
	b.coach.IsActive = false
	return b
}

func (b *CoachBuilder) Build() model.Coach {
	return b.coach
}

type PricingRuleBuilder struct {
	rule model.PricingRule
}

func NewPricingRuleBuilder() *PricingRuleBuilder {
	return &PricingRuleBuilder{
		rule: model.PricingRule{
			Name:       "Test Rule",
			RuleType:   "court_type",
			CourtType:  "indoor",
			Multiplier: 1.2,
			Priority:   1,
			IsActive:   true,
			CreatedAt:  time.Now(),
		},
	}
}

func (b *PricingRuleBuilder) WithName(name string) *PricingRuleBuilder {
	b.rule.Name = name
	return b
}

func (b *PricingRuleBuilder) TimeRange(start, end string) *PricingRuleBuilder {
	b.rule.RuleType = "time_range"
	b.rule.TimeRange = &model.TimeRange{Start: start, End: end}
	b.rule.CourtType = ""
	return b
}

func (b *PricingRuleBuilder) DaysOfWeek(days ...int) *PricingRuleBuilder {
	b.rule.RuleType = "day_of_week"
	b.rule.DaysOfWeek = days
	b.rule.CourtType = ""
	return b
}

func (b *PricingRuleBuilder) WithMultiplier(m float64) *PricingRuleBuilder {
	b.rule.Multiplier = m
	return b
}

func (b *PricingRuleBuilder) WithPriority(p int) *PricingRuleBuilder {
	b.rule.Priority = p
	return b
}

func (b *PricingRuleBuilder) Build() model.PricingRule {
	return b.rule
}

// BookingRequest is the JSON payload for POST /api/v1/bookings
type BookingRequest struct {
	Requester model.Requester          `json:"requester"`
	CourtID   string                   `json:"court_id"`
	Date      string                   `json:"date"`
	StartTime string                   `json:"start_time"`
	EndTime   string                   `json:"end_time"`
	Equipment []model.EquipmentRequest `json:"equipment,omitempty"`
	CoachID   string                   `json:"coach_id,omitempty"`
}

func NewBookingRequest(courtID, date, startTime, endTime string) BookingRequest {
	return BookingRequest{
		Requester: model.Requester{
			UserID: "user-1",
			Name:   "Test User",
			Email:  "test.user@example.com",
		},
		CourtID:   courtID,
		Date:      date,
		StartTime: startTime,
		EndTime:   endTime,
	}
}
