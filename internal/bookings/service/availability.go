package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"courtbook/internal/bookings/repository"
	catalogerrors "courtbook/internal/catalog/errors"
	catalogrepo "courtbook/internal/catalog/repository"
	"courtbook/pkg/config"
	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/model"
	"courtbook/pkg/timewindow"
)

// TimeSlot is one entry in a day's availability grid.
type TimeSlot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
}

// CourtAvailability pairs a court with its availability grid for one day.
type CourtAvailability struct {
	Court          *model.Court `json:"court"`
	AvailableSlots []TimeSlot   `json:"available_slots"`
}

// AvailabilityService answers whether a court, equipment set, or coach can
// serve a given window. Checks are read-only; callers that need the answer to
// still hold at commit time must run them inside a transaction guarded by a
// slot lock.
type AvailabilityService interface {
	CheckCourt(ctx context.Context, court *model.Court, window timewindow.Window, excludeID string) error
	CheckEquipment(ctx context.Context, items []model.EquipmentRequest, window timewindow.Window, excludeID string) error
	CheckCoach(ctx context.Context, coachID string, window timewindow.Window, excludeID string) error
	AvailableSlots(ctx context.Context, courtID string, date time.Time) ([]TimeSlot, error)
	AvailableCourts(ctx context.Context, date time.Time) ([]CourtAvailability, error)
}

type availabilityService struct {
	repo    repository.BookingRepository
	catalog catalogrepo.CatalogRepository
	cfg     *config.Config
}

func NewAvailabilityService(
	repo repository.BookingRepository,
	catalog catalogrepo.CatalogRepository,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		repo:    repo,
		catalog: catalog,
		cfg:     cfg,
	}
}

// CheckCourt fails when the court is inactive or any confirmed booking
// overlaps the window.
func (s *availabilityService) CheckCourt(ctx context.Context, court *model.Court, window timewindow.Window, excludeID string) error {
	if !court.IsActive {
		return apperrors.ConflictResource("court", "Court is not active")
	}

	overlapping, err := s.repo.FindOverlappingForCourt(ctx, court.ID, window.Date, window.StartString(), window.EndString(), excludeID)
	if err != nil {
		return apperrors.Internal("Failed to check court availability", err)
	}

	if len(overlapping) > 0 {
		return apperrors.ConflictResource("court", "Court is already booked for this time slot")
	}

	return nil
}

// CheckEquipment verifies every requested item resolves to an active pool and
// that remaining quantity covers the request after subtracting units held by
// overlapping confirmed bookings. The first failing item short-circuits.
func (s *availabilityService) CheckEquipment(ctx context.Context, items []model.EquipmentRequest, window timewindow.Window, excludeID string) error {
	for _, item := range items {
		equipment, err := s.catalog.GetEquipment(ctx, item.EquipmentID)
		if err != nil {
			if errors.Is(err, catalogerrors.ErrNotFound) || errors.Is(err, catalogerrors.ErrInvalidID) {
				return apperrors.ConflictResource("equipment",
					fmt.Sprintf("Equipment %s not found or inactive", item.EquipmentID))
			}
			return apperrors.Internal("Failed to resolve equipment", err)
		}
		if !equipment.IsActive {
			return apperrors.ConflictResource("equipment",
				fmt.Sprintf("Equipment %s not found or inactive", item.EquipmentID))
		}

		holders, err := s.repo.FindOverlappingWithEquipment(ctx, item.EquipmentID, window.Date, window.StartString(), window.EndString(), excludeID)
		if err != nil {
			return apperrors.Internal("Failed to check equipment availability", err)
		}

		bookedQuantity := 0
		for _, booking := range holders {
			for _, held := range booking.Equipment {
				if held.EquipmentID == item.EquipmentID {
					bookedQuantity += held.Quantity
				}
			}
		}

		available := equipment.Quantity - bookedQuantity
		if available < item.Quantity {
			return apperrors.ConflictResource("equipment",
				fmt.Sprintf("Insufficient %s. Available: %d, Required: %d", equipment.Name, available, item.Quantity))
		}
	}

	return nil
}

// CheckCoach verifies the coach exists, is active, has a weekly availability
// slot fully containing the window, and has no overlapping confirmed booking.
// Containment is end-inclusive: a session ending exactly when the coach's
// slot ends is allowed.
func (s *availabilityService) CheckCoach(ctx context.Context, coachID string, window timewindow.Window, excludeID string) error {
	if coachID == "" {
		return nil
	}

	coach, err := s.catalog.GetCoach(ctx, coachID)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) || errors.Is(err, catalogerrors.ErrInvalidID) {
			return apperrors.ConflictResource("coach", "Coach not found or inactive")
		}
		return apperrors.Internal("Failed to resolve coach", err)
	}
	if !coach.IsActive {
		return apperrors.ConflictResource("coach", "Coach not found or inactive")
	}

	if !s.coachScheduleCovers(coach, window) {
		return apperrors.ConflictResource("coach", "Coach not available at this time")
	}

	overlapping, err := s.repo.FindOverlappingForCoach(ctx, coachID, window.Date, window.StartString(), window.EndString(), excludeID)
	if err != nil {
		return apperrors.Internal("Failed to check coach availability", err)
	}

	if len(overlapping) > 0 {
		return apperrors.ConflictResource("coach", "Coach already booked at this time")
	}

	return nil
}

func (s *availabilityService) coachScheduleCovers(coach *model.Coach, window timewindow.Window) bool {
	dayOfWeek := int(window.Date.Weekday())

	for _, slot := range coach.Availability {
		if slot.DayOfWeek != dayOfWeek {
			continue
		}

		slotStart, err := timewindow.Parse(slot.StartTime)
		if err != nil {
			continue
		}
		slotEnd, err := timewindow.Parse(slot.EndTime)
		if err != nil {
			continue
		}

		if window.ContainedIn(slotStart, slotEnd) {
			return true
		}
	}

	return false
}

// AvailableSlots returns the hourly grid between the configured day start and
// day end, marking each slot unavailable when any confirmed booking overlaps
// it. Cancelled bookings free their slots immediately.
func (s *availabilityService) AvailableSlots(ctx context.Context, courtID string, date time.Time) ([]TimeSlot, error) {
	court, err := s.catalog.GetCourt(ctx, courtID)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Court", courtID)
		}
		if errors.Is(err, catalogerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid court ID format")
		}
		return nil, apperrors.Internal("Failed to resolve court", err)
	}

	dayStart, err := timewindow.Parse(s.cfg.SlotDayStart)
	if err != nil {
		return nil, apperrors.Internal("Invalid slot day start configuration", err)
	}
	dayEnd, err := timewindow.Parse(s.cfg.SlotDayEnd)
	if err != nil {
		return nil, apperrors.Internal("Invalid slot day end configuration", err)
	}

	return s.slotGrid(ctx, court.ID, timewindow.DateOnly(date), dayStart, dayEnd)
}

// AvailableCourts returns every active court with its availability grid for
// the given date.
func (s *availabilityService) AvailableCourts(ctx context.Context, date time.Time) ([]CourtAvailability, error) {
	courts, err := s.catalog.ListActiveCourts(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to list courts", err)
	}

	dayStart, err := timewindow.Parse(s.cfg.SlotDayStart)
	if err != nil {
		return nil, apperrors.Internal("Invalid slot day start configuration", err)
	}
	dayEnd, err := timewindow.Parse(s.cfg.SlotDayEnd)
	if err != nil {
		return nil, apperrors.Internal("Invalid slot day end configuration", err)
	}

	day := timewindow.DateOnly(date)
	result := make([]CourtAvailability, 0, len(courts))
	for _, court := range courts {
		slots, err := s.slotGrid(ctx, court.ID, day, dayStart, dayEnd)
		if err != nil {
			return nil, err
		}
		result = append(result, CourtAvailability{Court: court, AvailableSlots: slots})
	}

	return result, nil
}

func (s *availabilityService) slotGrid(ctx context.Context, courtID string, day time.Time, dayStart, dayEnd timewindow.Minutes) ([]TimeSlot, error) {
	// One query for the whole day instead of one per slot.
	booked, err := s.repo.FindOverlappingForCourt(ctx, courtID, day, timewindow.Format(dayStart), timewindow.Format(dayEnd), "")
	if err != nil {
		return nil, apperrors.Internal("Failed to load bookings for availability grid", err)
	}

	var slots []TimeSlot
	for start := dayStart; start+60 <= dayEnd; start += 60 {
		end := start + 60

		available := true
		for _, booking := range booked {
			bookingStart, err := timewindow.Parse(booking.StartTime)
			if err != nil {
				continue
			}
			bookingEnd, err := timewindow.Parse(booking.EndTime)
			if err != nil {
				continue
			}
			if bookingStart < end && bookingEnd > start {
				available = false
				break
			}
		}

		slots = append(slots, TimeSlot{
			StartTime: timewindow.Format(start),
			EndTime:   timewindow.Format(end),
			Available: available,
		})
	}

	return slots, nil
}
