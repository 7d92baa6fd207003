package service

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	bookingserrors "courtbook/internal/bookings/errors"
	"courtbook/internal/bookings/validator"
	"courtbook/pkg/config"
	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/model"
)

func newTestBookingService(
	repo *mockBookingRepository,
	lockRepo *mockSlotLockRepository,
	catalog *mockCatalogRepository,
	promoter *mockPromoter,
	cfg *config.Config,
) BookingService {
	return NewBookingService(
		repo,
		lockRepo,
		catalog,
		NewAvailabilityService(repo, catalog, cfg),
		NewPricingService(catalog, cfg),
		promoter,
		validator.NewBookingValidator(cfg.Log),
		cfg,
	)
}

func validBooking() *model.Booking {
	return &model.Booking{
		Requester: model.Requester{
			UserID: "user-1",
			Name:   "  Test   User ",
			Email:  "Test.User@Example.COM",
		},
		CourtID:   "507f1f77bcf86cd799439011",
		Date:      monday,
		StartTime: "10:00",
		EndTime:   "11:00",
	}
}

func TestCreate_Success(t *testing.T) {
	cfg := testConfig()
	repo := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			booking.ID = "507f1f77bcf86cd799439099"
			return nil
		},
	}
	svc := newTestBookingService(repo, &mockSlotLockRepository{}, fixedCatalog(), &mockPromoter{}, cfg)

	booking := validBooking()
	if err := svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != model.BookingStatusConfirmed {
		t.Errorf("expected status confirmed, got %s", booking.Status)
	}
	if booking.TotalPrice != 50 {
		t.Errorf("expected total price 50, got %v", booking.TotalPrice)
	}
	if booking.Requester.Name != "Test User" {
		t.Errorf("expected sanitized name, got %q", booking.Requester.Name)
	}
	if booking.Requester.Email != "test.user@example.com" {
		t.Errorf("expected lowercased email, got %q", booking.Requester.Email)
	}
}

func TestCreate_IgnoresClientSuppliedStatus(t *testing.T) {
	var inserted *model.Booking
	repo := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			inserted = booking
			return nil
		},
	}
	svc := newTestBookingService(repo, &mockSlotLockRepository{}, fixedCatalog(), &mockPromoter{}, testConfig())

	booking := validBooking()
	booking.Status = model.BookingStatusCancelled

	if err := svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted == nil {
		t.Fatal("expected booking to be inserted")
	}
	if inserted.Status != model.BookingStatusConfirmed {
		t.Errorf("expected server-assigned status confirmed, got %s", inserted.Status)
	}
}

func TestCreate_CourtConflictReportedFirst(t *testing.T) {
	// Both the court and the equipment conflict; the court failure wins.
	repo := &mockBookingRepository{
		overlapCourtFunc: func(ctx context.Context, courtID string, date time.Time, startTime, endTime string, excludeID string) ([]*model.Booking, error) {
			return []*model.Booking{{ID: "existing"}}, nil
		},
	}
	catalog := fixedCatalog()
	catalog.getEquipmentFunc = func(ctx context.Context, id string) (*model.Equipment, error) {
		return &model.Equipment{ID: id, Name: "Badminton Racket", Quantity: 0, IsActive: true}, nil
	}
	svc := newTestBookingService(repo, &mockSlotLockRepository{}, catalog, &mockPromoter{}, testConfig())

	booking := validBooking()
	booking.Equipment = []model.EquipmentRequest{{EquipmentID: "507f1f77bcf86cd799439012", Quantity: 1}}

	err := svc.Create(context.Background(), booking)
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if !strings.Contains(appErr.Message, "Court is already booked for this time slot") {
		t.Errorf("expected court conflict first, got %q", appErr.Message)
	}
}

func TestCreate_LockHeld(t *testing.T) {
	lockRepo := &mockSlotLockRepository{
		acquireFunc: func(ctx context.Context, key string, ttl time.Duration) (*model.SlotLock, error) {
			return nil, bookingserrors.ErrLockHeld
		},
	}
	svc := newTestBookingService(&mockBookingRepository{}, lockRepo, fixedCatalog(), &mockPromoter{}, testConfig())

	err := svc.Create(context.Background(), validBooking())
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if !strings.Contains(appErr.Message, "currently being booked by another request") {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}

func TestCreate_LockBackoutOnPartialAcquisition(t *testing.T) {
	var acquired, released []string
	lockRepo := &mockSlotLockRepository{
		acquireFunc: func(ctx context.Context, key string, ttl time.Duration) (*model.SlotLock, error) {
			if len(acquired) == 1 {
				return nil, bookingserrors.ErrLockHeld
			}
			acquired = append(acquired, key)
			return &model.SlotLock{ID: key}, nil
		},
		releaseFunc: func(ctx context.Context, key string) error {
			released = append(released, key)
			return nil
		},
	}
	svc := newTestBookingService(&mockBookingRepository{}, lockRepo, fixedCatalog(), &mockPromoter{}, testConfig())

	booking := validBooking()
	booking.CoachID = "507f1f77bcf86cd799439013"

	if err := svc.Create(context.Background(), booking); err == nil {
		t.Fatal("expected lock conflict")
	}

	if len(acquired) != 1 {
		t.Fatalf("expected exactly one acquired lock, got %d", len(acquired))
	}
	if len(released) != 1 || released[0] != acquired[0] {
		t.Errorf("expected the held lock to be released, acquired=%v released=%v", acquired, released)
	}
}

func TestCreate_LockKeysSorted(t *testing.T) {
	var keys []string
	lockRepo := &mockSlotLockRepository{
		acquireFunc: func(ctx context.Context, key string, ttl time.Duration) (*model.SlotLock, error) {
			keys = append(keys, key)
			return &model.SlotLock{ID: key}, nil
		},
	}
	catalog := fixedCatalog()
	catalog.getEquipmentFunc = func(ctx context.Context, id string) (*model.Equipment, error) {
		return &model.Equipment{ID: id, Name: "Badminton Racket", Quantity: 20, RentalPrice: 5, IsActive: true}, nil
	}
	catalog.getCoachFunc = func(ctx context.Context, id string) (*model.Coach, error) {
		return &model.Coach{
			ID:         id,
			Name:       "John Smith",
			HourlyRate: 30,
			Availability: []model.AvailabilitySlot{
				{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00"},
			},
			IsActive: true,
		}, nil
	}
	svc := newTestBookingService(&mockBookingRepository{}, lockRepo, catalog, &mockPromoter{}, testConfig())

	booking := validBooking()
	booking.Equipment = []model.EquipmentRequest{{EquipmentID: "507f1f77bcf86cd799439012", Quantity: 2}}
	booking.CoachID = "507f1f77bcf86cd799439013"

	if err := svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(keys) != 3 {
		t.Fatalf("expected 3 lock keys, got %d", len(keys))
	}
	if !sort.StringsAreSorted(keys) {
		t.Errorf("expected lock keys in sorted order, got %v", keys)
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	svc := newTestBookingService(&mockBookingRepository{}, &mockSlotLockRepository{}, fixedCatalog(), &mockPromoter{}, testConfig())

	booking := validBooking()
	booking.StartTime = "25:99"

	err := svc.Create(context.Background(), booking)
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.StatusCode() != 422 {
		t.Errorf("expected 422 validation error, got %v", err)
	}
}

func TestCancel_PromotesWaitlist(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			b := validBooking()
			b.ID = id
			b.Status = model.BookingStatusConfirmed
			return b, nil
		},
	}
	promoter := &mockPromoter{}
	svc := newTestBookingService(repo, &mockSlotLockRepository{}, fixedCatalog(), promoter, testConfig())

	booking, err := svc.Cancel(context.Background(), "507f1f77bcf86cd799439099")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != model.BookingStatusCancelled {
		t.Errorf("expected cancelled status, got %s", booking.Status)
	}
	if promoter.calls != 1 {
		t.Errorf("expected one promotion attempt, got %d", promoter.calls)
	}
}

func TestCancel_IdempotentAndStillPromotes(t *testing.T) {
	updateCalls := 0
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			b := validBooking()
			b.ID = id
			b.Status = model.BookingStatusCancelled
			return b, nil
		},
		updateStatusFunc: func(ctx context.Context, id string, status string) error {
			updateCalls++
			return nil
		},
	}
	promoter := &mockPromoter{}
	svc := newTestBookingService(repo, &mockSlotLockRepository{}, fixedCatalog(), promoter, testConfig())

	booking, err := svc.Cancel(context.Background(), "507f1f77bcf86cd799439099")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != model.BookingStatusCancelled {
		t.Errorf("expected cancelled status, got %s", booking.Status)
	}
	if updateCalls != 0 {
		t.Errorf("expected no status update for an already cancelled booking, got %d", updateCalls)
	}
	if promoter.calls != 1 {
		t.Errorf("expected promotion attempt even on repeated cancel, got %d", promoter.calls)
	}
}

func TestCancel_PromotionFailureDoesNotFailCancel(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			b := validBooking()
			b.ID = id
			b.Status = model.BookingStatusConfirmed
			return b, nil
		},
	}
	promoter := &mockPromoter{
		promoteFunc: func(ctx context.Context, courtID string, date time.Time, startTime, endTime string) error {
			return apperrors.Internal("promotion blew up", nil)
		},
	}
	svc := newTestBookingService(repo, &mockSlotLockRepository{}, fixedCatalog(), promoter, testConfig())

	booking, err := svc.Cancel(context.Background(), "507f1f77bcf86cd799439099")
	if err != nil {
		t.Fatalf("cancellation must survive promotion failure, got %v", err)
	}
	if booking.Status != model.BookingStatusCancelled {
		t.Errorf("expected cancelled status, got %s", booking.Status)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return nil, bookingserrors.ErrNotFound
		},
	}
	svc := newTestBookingService(repo, &mockSlotLockRepository{}, fixedCatalog(), &mockPromoter{}, testConfig())

	_, err := svc.GetByID(context.Background(), "507f1f77bcf86cd799439099")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.StatusCode() != 404 {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestGetAll_ParallelCountAndFind(t *testing.T) {
	repo := &mockBookingRepository{
		countFunc: func(ctx context.Context) (int64, error) {
			time.Sleep(10 * time.Millisecond)
			return 42, nil
		},
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
			time.Sleep(10 * time.Millisecond)
			return []*model.Booking{{ID: "1"}}, nil
		},
	}
	svc := newTestBookingService(repo, &mockSlotLockRepository{}, fixedCatalog(), &mockPromoter{}, testConfig())

	// Run with -race flag to detect unsynchronized access
	for i := 0; i < 20; i++ {
		bookings, count, err := svc.GetAll(context.Background(), 10, 0)
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if count != 42 {
			t.Errorf("iteration %d: expected count 42, got %d", i, count)
		}
		if len(bookings) != 1 {
			t.Errorf("iteration %d: expected 1 booking, got %d", i, len(bookings))
		}
	}
}
