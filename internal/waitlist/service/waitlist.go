package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "courtbook/internal/bookings/errors"
	bookingrepo "courtbook/internal/bookings/repository"
	bookingvalidator "courtbook/internal/bookings/validator"
	catalogerrors "courtbook/internal/catalog/errors"
	catalogrepo "courtbook/internal/catalog/repository"
	"courtbook/internal/notify"
	waitlisterrors "courtbook/internal/waitlist/errors"
	"courtbook/internal/waitlist/repository"
	"courtbook/pkg/config"
	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/model"
	"courtbook/pkg/sanitizer"
	"courtbook/pkg/timewindow"

	"go.mongodb.org/mongo-driver/mongo"
)

type WaitlistService interface {
	Join(ctx context.Context, entry *model.WaitlistEntry) error
	Leave(ctx context.Context, id string) error
	GetByUser(ctx context.Context, userID string) ([]*model.WaitlistEntry, error)
	PromoteNext(ctx context.Context, courtID string, date time.Time, startTime, endTime string) error
}

type waitlistService struct {
	repo      repository.WaitlistRepository
	lockRepo  bookingrepo.SlotLockRepository
	catalog   catalogrepo.CatalogRepository
	notifier  notify.Notifier
	validator *bookingvalidator.BookingValidator
	cfg       *config.Config
}

func NewWaitlistService(
	repo repository.WaitlistRepository,
	lockRepo bookingrepo.SlotLockRepository,
	catalog catalogrepo.CatalogRepository,
	notifier notify.Notifier,
	validator *bookingvalidator.BookingValidator,
	cfg *config.Config,
) WaitlistService {
	return &waitlistService{
		repo:      repo,
		lockRepo:  lockRepo,
		catalog:   catalog,
		notifier:  notifier,
		validator: validator,
		cfg:       cfg,
	}
}

// Join appends the requester to the queue for an exact (court, window) slot.
// The count-then-insert runs under an advisory lock on the slot: snapshot
// isolation alone would let two simultaneous joins both count N and both
// claim position N+1.
func (s *waitlistService) Join(ctx context.Context, entry *model.WaitlistEntry) error {
	entry.Requester.Name = sanitizer.NormalizeName(entry.Requester.Name)
	entry.Requester.Email = sanitizer.NormalizeEmail(entry.Requester.Email)

	if err := s.validator.ValidateWaitlistEntry(entry); err != nil {
		s.cfg.Log.Warn("Waitlist entry validation failed", "error", err)
		return apperrors.Validation("Waitlist entry validation failed", map[string]any{"error": err.Error()})
	}

	window, err := entry.Window()
	if err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	entry.Date = window.Date
	entry.Notified = false

	if _, err := s.resolveCourt(ctx, entry.CourtID); err != nil {
		return err
	}

	lockKey := s.slotLockKey(entry)
	if _, err := s.lockRepo.Acquire(ctx, lockKey, s.cfg.SlotLockTTL); err != nil {
		if errors.Is(err, bookingserrors.ErrLockHeld) {
			return apperrors.Conflict("This waitlist is currently being updated by another request. Please try again.")
		}
		return apperrors.Internal("Failed to acquire waitlist lock", err)
	}
	defer func() {
		if err := s.lockRepo.Release(ctx, lockKey); err != nil {
			s.cfg.Log.Warn("Failed to release waitlist lock", "lock_key", lockKey, "error", err)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		count, err := s.repo.CountForSlot(sessCtx, entry.CourtID, entry.Date, entry.StartTime, entry.EndTime)
		if err != nil {
			return apperrors.Internal("Failed to determine waitlist position", err)
		}
		entry.Position = int(count) + 1

		if err := s.repo.Insert(sessCtx, entry); err != nil {
			return apperrors.Internal("Failed to join waitlist", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to join waitlist",
			"court_id", entry.CourtID,
			"start_time", entry.StartTime,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Joined waitlist",
		"id", entry.ID,
		"court_id", entry.CourtID,
		"date", entry.Date.Format(time.DateOnly),
		"start_time", entry.StartTime,
		"position", entry.Position,
	)
	return nil
}

// Leave removes an entry and shifts every later entry up one position, so
// the slot queue stays contiguous from 1. It holds the same slot lock as
// Join, so a concurrent join cannot count positions mid-shift.
func (s *waitlistService) Leave(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Waitlist entry ID cannot be empty")
	}

	// Resolved outside the transaction only to derive the lock key; the
	// transaction re-reads the entry under its own snapshot.
	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapLookupError(err, id)
	}

	lockKey := s.slotLockKey(target)
	if _, err := s.lockRepo.Acquire(ctx, lockKey, s.cfg.SlotLockTTL); err != nil {
		if errors.Is(err, bookingserrors.ErrLockHeld) {
			return apperrors.Conflict("This waitlist is currently being updated by another request. Please try again.")
		}
		return apperrors.Internal("Failed to acquire waitlist lock", err)
	}
	defer func() {
		if err := s.lockRepo.Release(ctx, lockKey); err != nil {
			s.cfg.Log.Warn("Failed to release waitlist lock", "lock_key", lockKey, "error", err)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		entry, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			return s.mapLookupError(err, id)
		}

		if err := s.repo.Delete(sessCtx, id); err != nil {
			return s.mapLookupError(err, id)
		}

		if err := s.repo.ShiftPositionsAfter(sessCtx, entry.CourtID, entry.Date, entry.StartTime, entry.EndTime, entry.Position); err != nil {
			return apperrors.Internal("Failed to reorder waitlist", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Left waitlist", "id", id)
	return nil
}

func (s *waitlistService) GetByUser(ctx context.Context, userID string) ([]*model.WaitlistEntry, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	entries, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		s.cfg.Log.Error("Failed to list waitlist entries", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve waitlist entries", err)
	}

	return entries, nil
}

// PromoteNext offers the freed slot to the lowest-position entry that has not
// been promoted before. Claiming the entry is one atomic findOneAndUpdate
// that flips notified, so concurrent promotions for the same slot claim
// distinct entries. Delivery is best-effort and the claim is durable, so an
// entry is never promoted twice even if delivery fails. A slot with no
// waiting entries is not an error.
func (s *waitlistService) PromoteNext(ctx context.Context, courtID string, date time.Time, startTime, endTime string) error {
	date = timewindow.DateOnly(date)

	entry, err := s.repo.ClaimNextUnnotified(ctx, courtID, date, startTime, endTime)
	if err != nil {
		if errors.Is(err, waitlisterrors.ErrNotFound) {
			return nil
		}
		return apperrors.Internal("Failed to claim next waitlist entry", err)
	}

	if err := s.notifier.NotifyPromotion(ctx, entry); err != nil {
		s.cfg.Log.Warn("Waitlist notification delivery failed",
			"entry_id", entry.ID,
			"court_id", courtID,
			"error", err,
		)
	}

	s.cfg.Log.Info("Waitlist entry promoted",
		"entry_id", entry.ID,
		"court_id", courtID,
		"date", date.Format(time.DateOnly),
		"start_time", startTime,
		"position", entry.Position,
	)
	return nil
}

// slotLockKey serializes every position mutation for one exact slot queue.
// The key space is distinct from the booking locks, so joining a waitlist
// never contends with creating a booking.
func (s *waitlistService) slotLockKey(entry *model.WaitlistEntry) string {
	return fmt.Sprintf("waitlist_%s_%s_%s_%s",
		entry.CourtID,
		entry.Date.Format(time.DateOnly),
		entry.StartTime,
		entry.EndTime,
	)
}

func (s *waitlistService) mapLookupError(err error, id string) error {
	if errors.Is(err, waitlisterrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Waitlist entry", id)
	}
	if errors.Is(err, waitlisterrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid waitlist entry ID format")
	}
	return apperrors.Internal("Failed to retrieve waitlist entry", err)
}

func (s *waitlistService) resolveCourt(ctx context.Context, courtID string) (*model.Court, error) {
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
