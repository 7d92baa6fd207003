package service

import (
	"context"
	"errors"
	"time"

	catalogerrors "courtbook/internal/catalog/errors"
	catalogrepo "courtbook/internal/catalog/repository"
	"courtbook/pkg/config"
	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/model"
	"courtbook/pkg/timewindow"
)

// PriceRequest describes a booking to be priced. Pricing never checks
// availability; a quote can be produced for an occupied slot.
type PriceRequest struct {
	CourtID   string                   `json:"court_id" validate:"required,mongodb"`
	Date      time.Time                `json:"date" validate:"required"`
	StartTime string                   `json:"start_time" validate:"required,time_hhmm"`
	EndTime   string                   `json:"end_time" validate:"required,time_hhmm"`
	Equipment []model.EquipmentRequest `json:"equipment,omitempty" validate:"omitempty,dive"`
	CoachID   string                   `json:"coach_id,omitempty" validate:"omitempty,mongodb"`
}

type PricingService interface {
	CalculatePrice(ctx context.Context, req *PriceRequest) (*model.PriceBreakdown, error)
}

type pricingService struct {
	catalog catalogrepo.CatalogRepository
	cfg     *config.Config
}

func NewPricingService(catalog catalogrepo.CatalogRepository, cfg *config.Config) PricingService {
	return &pricingService{
		catalog: catalog,
		cfg:     cfg,
	}
}

// CalculatePrice computes
//
//	basePrice * product(multipliers) * durationHours
//	  + sum(rentalPrice * quantity * durationHours)
//	  + hourlyRate * durationHours
//
// Rules are applied in the repository's evaluation order, so the breakdown
// is deterministic for a fixed catalog. Missing or inactive equipment and
// coaches price at zero rather than failing: availability checking, not
// pricing, is where those produce conflicts.
func (s *pricingService) CalculatePrice(ctx context.Context, req *PriceRequest) (*model.PriceBreakdown, error) {
	window, err := timewindow.ParseWindow(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	duration := window.Duration()

	court, err := s.catalog.GetCourt(ctx, req.CourtID)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Court", req.CourtID)
		}
		if errors.Is(err, catalogerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid court ID format")
		}
		return nil, apperrors.Internal("Failed to resolve court", err)
	}

	breakdown := &model.PriceBreakdown{
		CourtBasePrice:   court.BasePrice,
		CourtMultipliers: []model.AppliedMultiplier{},
	}

	rules, err := s.catalog.ListActivePricingRules(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to load pricing rules", err)
	}

	courtPrice := court.BasePrice
	for _, rule := range rules {
		if !s.ruleApplies(rule, court, window) {
			continue
		}
		courtPrice *= rule.Multiplier
		breakdown.CourtMultipliers = append(breakdown.CourtMultipliers, model.AppliedMultiplier{
			RuleName:   rule.Name,
			Multiplier: rule.Multiplier,
		})
	}
	courtPrice *= duration

	for _, item := range req.Equipment {
		equipment, err := s.catalog.GetEquipment(ctx, item.EquipmentID)
		if err != nil {
			if errors.Is(err, catalogerrors.ErrNotFound) || errors.Is(err, catalogerrors.ErrInvalidID) {
				continue
			}
			return nil, apperrors.Internal("Failed to resolve equipment", err)
		}
		if !equipment.IsActive {
			continue
		}
		breakdown.EquipmentTotal += equipment.RentalPrice * float64(item.Quantity) * duration
	}

	if req.CoachID != "" {
		coach, err := s.catalog.GetCoach(ctx, req.CoachID)
		if err != nil {
			if !errors.Is(err, catalogerrors.ErrNotFound) && !errors.Is(err, catalogerrors.ErrInvalidID) {
				return nil, apperrors.Internal("Failed to resolve coach", err)
			}
		} else if coach.IsActive {
			breakdown.CoachFee = coach.HourlyRate * duration
		}
	}

	breakdown.FinalPrice = courtPrice + breakdown.EquipmentTotal + breakdown.CoachFee

	return breakdown, nil
}

// ruleApplies dispatches on rule type. A time_range rule tests only the
// booking's start instant against the half-open [start, end) range.
func (s *pricingService) ruleApplies(rule *model.PricingRule, court *model.Court, window timewindow.Window) bool {
	switch rule.RuleType {
	case model.RuleTypeTimeRange:
		if rule.TimeRange == nil {
			return false
		}
		start, err := timewindow.Parse(rule.TimeRange.Start)
		if err != nil {
			return false
		}
		end, err := timewindow.Parse(rule.TimeRange.End)
		if err != nil {
			return false
		}
		return timewindow.InRange(window.Start, start, end)

	case model.RuleTypeDayOfWeek:
		dayOfWeek := int(window.Date.Weekday())
		for _, d := range rule.DaysOfWeek {
			if d == dayOfWeek {
				return true
			}
		}
		return false

	case model.RuleTypeCourtType:
		return rule.CourtType == court.Type

	default:
		return false
	}
}
