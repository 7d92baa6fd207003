package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	bookingserrors "courtbook/internal/bookings/errors"
	"courtbook/internal/bookings/repository"
	"courtbook/internal/bookings/validator"
	catalogerrors "courtbook/internal/catalog/errors"
	catalogrepo "courtbook/internal/catalog/repository"
	"courtbook/pkg/config"
	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/model"
	"courtbook/pkg/sanitizer"
	"courtbook/pkg/timewindow"

	"go.mongodb.org/mongo-driver/mongo"
)

// WaitlistPromoter is notified when a cancellation frees a slot. Promotion is
// best-effort: a failure never rolls back the cancellation.
type WaitlistPromoter interface {
	PromoteNext(ctx context.Context, courtID string, date time.Time, startTime, endTime string) error
}

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	GetByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error)
	Cancel(ctx context.Context, id string) (*model.Booking, error)
	Quote(ctx context.Context, req *PriceRequest) (*model.PriceBreakdown, error)
}

type bookingService struct {
	repo         repository.BookingRepository
	lockRepo     repository.SlotLockRepository
	catalog      catalogrepo.CatalogRepository
	availability AvailabilityService
	pricing      PricingService
	promoter     WaitlistPromoter
	validator    *validator.BookingValidator
	cfg          *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	catalog catalogrepo.CatalogRepository,
	availability AvailabilityService,
	pricing PricingService,
	promoter WaitlistPromoter,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:         repo,
		lockRepo:     lockRepo,
		catalog:      catalog,
		availability: availability,
		pricing:      pricing,
		promoter:     promoter,
		validator:    validator,
		cfg:          cfg,
	}
}

// Create runs the full booking pipeline: validate, resolve the court, take
// advisory locks on every requested resource, then inside one transaction
// re-check court, equipment and coach availability, price the booking, and
// insert it. Checks run in that fixed order so a request failing on several
// resources always reports the court conflict first.
func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	// Status is server-assigned; a client-supplied value is ignored.
	booking.Status = model.BookingStatusConfirmed

	s.sanitize(booking)
	if err := s.validate(booking); err != nil {
		return err
	}

	window, err := booking.Window()
	if err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	booking.Date = window.Date

	court, err := s.resolveCourt(ctx, booking.CourtID)
	if err != nil {
		return err
	}

	lockKeys := s.lockKeys(booking)
	acquired, err := s.acquireSlotLocks(ctx, lockKeys)
	if err != nil {
		return err
	}
	defer s.releaseSlotLocks(ctx, acquired)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.availability.CheckCourt(sessCtx, court, window, ""); err != nil {
			return err
		}
		if err := s.availability.CheckEquipment(sessCtx, booking.Equipment, window, ""); err != nil {
			return err
		}
		if err := s.availability.CheckCoach(sessCtx, booking.CoachID, window, ""); err != nil {
			return err
		}

		breakdown, err := s.pricing.CalculatePrice(sessCtx, &PriceRequest{
			CourtID:   booking.CourtID,
			Date:      booking.Date,
			StartTime: booking.StartTime,
			EndTime:   booking.EndTime,
			Equipment: booking.Equipment,
			CoachID:   booking.CoachID,
		})
		if err != nil {
			return err
		}
		booking.PriceBreakdown = *breakdown
		booking.TotalPrice = breakdown.FinalPrice

		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}

		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking",
			"court_id", booking.CourtID,
			"start_time", booking.StartTime,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"court_id", booking.CourtID,
		"date", booking.Date.Format(time.DateOnly),
		"start_time", booking.StartTime,
		"total_price", booking.TotalPrice,
	)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) GetByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.InvalidInput("User ID cannot be empty")
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByUser(ctx, userID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings by user", "user_id", userID, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByUser(ctx, userID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings by user", "user_id", userID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// Cancel flips the booking to cancelled. Cancelling an already-cancelled
// booking is a no-op that still reports success, and in both cases the
// waitlist for the freed slot is offered a promotion.
func (s *bookingService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Status != model.BookingStatusCancelled {
		if err := s.repo.UpdateStatus(ctx, id, model.BookingStatusCancelled); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return nil, apperrors.NotFoundWithID("Booking", id)
			}
			return nil, apperrors.Internal("Failed to cancel booking", err)
		}
		booking.Status = model.BookingStatusCancelled

		s.cfg.Log.Info("Booking cancelled",
			"id", id,
			"court_id", booking.CourtID,
			"start_time", booking.StartTime,
		)
	}

	if promoteErr := s.promoter.PromoteNext(ctx, booking.CourtID, booking.Date, booking.StartTime, booking.EndTime); promoteErr != nil {
		s.cfg.Log.Warn("Waitlist promotion failed after cancellation",
			"booking_id", id,
			"error", promoteErr,
		)
	}

	return booking, nil
}

func (s *bookingService) Quote(ctx context.Context, req *PriceRequest) (*model.PriceBreakdown, error) {
	if _, err := timewindow.ParseWindow(req.Date, req.StartTime, req.EndTime); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	return s.pricing.CalculatePrice(ctx, req)
}

// --- Helpers ---

func (s *bookingService) sanitize(b *model.Booking) {
	b.Requester.Name = sanitizer.NormalizeName(b.Requester.Name)
	b.Requester.Email = sanitizer.NormalizeEmail(b.Requester.Email)
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) resolveCourt(ctx context.Context, courtID string) (*model.Court, error) {
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
	return court, nil
}

// lockKeys builds one advisory lock key per resource the booking claims,
// keyed by date rather than start time so overlapping windows on the same
// resource serialize behind the same lock. Keys are sorted to give every
// request the same acquisition order.
func (s *bookingService) lockKeys(b *model.Booking) []string {
	day := b.Date.Format(time.DateOnly)

	keys := []string{fmt.Sprintf("court_%s_%s", b.CourtID, day)}
	for _, item := range b.Equipment {
		keys = append(keys, fmt.Sprintf("equipment_%s_%s", item.EquipmentID, day))
	}
	if b.CoachID != "" {
		keys = append(keys, fmt.Sprintf("coach_%s_%s", b.CoachID, day))
	}

	sort.Strings(keys)
	return keys
}

// acquireSlotLocks takes the locks in order, backing out already-held locks
// when any acquisition fails.
func (s *bookingService) acquireSlotLocks(ctx context.Context, keys []string) ([]string, error) {
	var acquired []string

	for _, key := range keys {
		if _, err := s.lockRepo.Acquire(ctx, key, s.cfg.SlotLockTTL); err != nil {
			s.releaseSlotLocks(ctx, acquired)
			if errors.Is(err, bookingserrors.ErrLockHeld) {
				return nil, apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
			}
			return nil, apperrors.Internal("Failed to acquire booking lock", err)
		}
		acquired = append(acquired, key)
	}

	return acquired, nil
}

func (s *bookingService) releaseSlotLocks(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.lockRepo.Release(ctx, key); err != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_key", key, "error", err)
		}
	}
}
