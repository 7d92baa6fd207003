package service

import (
	"context"
	"errors"
	"testing"
	"time"

	bookingserrors "courtbook/internal/bookings/errors"
	"courtbook/internal/bookings/validator"
	catalogerrors "courtbook/internal/catalog/errors"
	waitlisterrors "courtbook/internal/waitlist/errors"
	"courtbook/pkg/config"
	mongotx "courtbook/pkg/db/mongo"
	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/logger"
	"courtbook/pkg/model"
)

var monday = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

// Mock repositories for testing

type mockWaitlistRepository struct {
	insertFunc       func(ctx context.Context, entry *model.WaitlistEntry) error
	findByIDFunc     func(ctx context.Context, id string) (*model.WaitlistEntry, error)
	findByUserFunc   func(ctx context.Context, userID string) ([]*model.WaitlistEntry, error)
	countForSlotFunc func(ctx context.Context, courtID string, date time.Time, startTime, endTime string) (int64, error)
	claimNextFunc    func(ctx context.Context, courtID string, date time.Time, startTime, endTime string) (*model.WaitlistEntry, error)
	deleteFunc       func(ctx context.Context, id string) error
	shiftFunc        func(ctx context.Context, courtID string, date time.Time, startTime, endTime string, removedPosition int) error
}

func (m *mockWaitlistRepository) Insert(ctx context.Context, entry *model.WaitlistEntry) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, entry)
	}
	return nil
}

func (m *mockWaitlistRepository) FindByID(ctx context.Context, id string) (*model.WaitlistEntry, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, waitlisterrors.ErrNotFound
}

func (m *mockWaitlistRepository) FindByUser(ctx context.Context, userID string) ([]*model.WaitlistEntry, error) {
	if m.findByUserFunc != nil {
		return m.findByUserFunc(ctx, userID)
	}
	return []*model.WaitlistEntry{}, nil
}

func (m *mockWaitlistRepository) CountForSlot(ctx context.Context, courtID string, date time.Time, startTime, endTime string) (int64, error) {
	if m.countForSlotFunc != nil {
		return m.countForSlotFunc(ctx, courtID, date, startTime, endTime)
	}
	return 0, nil
}

func (m *mockWaitlistRepository) ClaimNextUnnotified(ctx context.Context, courtID string, date time.Time, startTime, endTime string) (*model.WaitlistEntry, error) {
	if m.claimNextFunc != nil {
		return m.claimNextFunc(ctx, courtID, date, startTime, endTime)
	}
	return nil, waitlisterrors.ErrNotFound
}

func (m *mockWaitlistRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockWaitlistRepository) ShiftPositionsAfter(ctx context.Context, courtID string, date time.Time, startTime, endTime string, removedPosition int) error {
	if m.shiftFunc != nil {
		return m.shiftFunc(ctx, courtID, date, startTime, endTime, removedPosition)
	}
	return nil
}

func (m *mockWaitlistRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockCatalog struct {
	getCourtFunc func(ctx context.Context, id string) (*model.Court, error)
}

func (m *mockCatalog) GetCourt(ctx context.Context, id string) (*model.Court, error) {
	if m.getCourtFunc != nil {
		return m.getCourtFunc(ctx, id)
	}
	return &model.Court{ID: id, Name: "Indoor Court 1", Type: "indoor", BasePrice: 50, IsActive: true}, nil
}

func (m *mockCatalog) GetEquipment(ctx context.Context, id string) (*model.Equipment, error) {
	return nil, catalogerrors.ErrNotFound
}

func (m *mockCatalog) GetCoach(ctx context.Context, id string) (*model.Coach, error) {
	return nil, catalogerrors.ErrNotFound
}

func (m *mockCatalog) ListActiveCourts(ctx context.Context) ([]*model.Court, error) {
	return []*model.Court{}, nil
}

func (m *mockCatalog) ListActivePricingRules(ctx context.Context) ([]*model.PricingRule, error) {
	return []*model.PricingRule{}, nil
}

type mockSlotLockRepository struct {
	acquireFunc func(ctx context.Context, key string, ttl time.Duration) (*model.SlotLock, error)
	releases    []string
}

func (m *mockSlotLockRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (*model.SlotLock, error) {
	if m.acquireFunc != nil {
		return m.acquireFunc(ctx, key, ttl)
	}
	return &model.SlotLock{ID: key}, nil
}

func (m *mockSlotLockRepository) Release(ctx context.Context, key string) error {
	m.releases = append(m.releases, key)
	return nil
}

type mockNotifier struct {
	notifyFunc func(ctx context.Context, entry *model.WaitlistEntry) error
	calls      int
}

func (m *mockNotifier) NotifyPromotion(ctx context.Context, entry *model.WaitlistEntry) error {
	m.calls++
	if m.notifyFunc != nil {
		return m.notifyFunc(ctx, entry)
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		SlotLockTTL:  30 * time.Second,
	}
}

func newTestService(repo *mockWaitlistRepository, notifier *mockNotifier) WaitlistService {
	cfg := testConfig()
	return NewWaitlistService(repo, &mockSlotLockRepository{}, &mockCatalog{}, notifier, validator.NewBookingValidator(cfg.Log), cfg)
}

func validEntry() *model.WaitlistEntry {
	return &model.WaitlistEntry{
		Requester: model.Requester{
			UserID: "user-1",
			Name:   "Test User",
			Email:  "test.user@example.com",
		},
		CourtID:   "507f1f77bcf86cd799439011",
		Date:      monday,
		StartTime: "10:00",
		EndTime:   "11:00",
	}
}

func TestJoin_AssignsNextPosition(t *testing.T) {
	repo := &mockWaitlistRepository{
		countForSlotFunc: func(ctx context.Context, courtID string, date time.Time, startTime, endTime string) (int64, error) {
			return 2, nil
		},
		insertFunc: func(ctx context.Context, entry *model.WaitlistEntry) error {
			entry.ID = "507f1f77bcf86cd799439099"
			return nil
		},
	}
	svc := newTestService(repo, &mockNotifier{})

	entry := validEntry()
	if err := svc.Join(context.Background(), entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.Position != 3 {
		t.Errorf("expected position 3 behind two existing entries, got %d", entry.Position)
	}
	if entry.Notified {
		t.Error("expected new entry to start un-notified")
	}
}

func TestJoin_FirstEntryGetsPositionOne(t *testing.T) {
	repo := &mockWaitlistRepository{}
	svc := newTestService(repo, &mockNotifier{})

	entry := validEntry()
	if err := svc.Join(context.Background(), entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Position != 1 {
		t.Errorf("expected position 1 for empty slot queue, got %d", entry.Position)
	}
}

func TestJoin_ValidationFailure(t *testing.T) {
	svc := newTestService(&mockWaitlistRepository{}, &mockNotifier{})

	entry := validEntry()
	entry.EndTime = "9pm"

	err := svc.Join(context.Background(), entry)
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.StatusCode() != 422 {
		t.Errorf("expected 422 validation error, got %v", err)
	}
}

func TestJoin_UnknownCourt(t *testing.T) {
	repo := &mockWaitlistRepository{}
	cfg := testConfig()
	catalog := &mockCatalog{
		getCourtFunc: func(ctx context.Context, id string) (*model.Court, error) {
			return nil, catalogerrors.ErrNotFound
		},
	}
	svc := NewWaitlistService(repo, &mockSlotLockRepository{}, catalog, &mockNotifier{}, validator.NewBookingValidator(cfg.Log), cfg)

	err := svc.Join(context.Background(), validEntry())
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.StatusCode() != 404 {
		t.Errorf("expected 404 for unknown court, got %v", err)
	}
}

func TestLeave_ShiftsLaterPositions(t *testing.T) {
	var shiftedAfter int
	repo := &mockWaitlistRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.WaitlistEntry, error) {
			entry := validEntry()
			entry.ID = id
			entry.Position = 2
			return entry, nil
		},
		shiftFunc: func(ctx context.Context, courtID string, date time.Time, startTime, endTime string, removedPosition int) error {
			shiftedAfter = removedPosition
			return nil
		},
	}
	svc := newTestService(repo, &mockNotifier{})

	if err := svc.Leave(context.Background(), "507f1f77bcf86cd799439099"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shiftedAfter != 2 {
		t.Errorf("expected positions after 2 to shift, got %d", shiftedAfter)
	}
}

func TestLeave_NotFound(t *testing.T) {
	svc := newTestService(&mockWaitlistRepository{}, &mockNotifier{})

	err := svc.Leave(context.Background(), "507f1f77bcf86cd799439099")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.StatusCode() != 404 {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestPromoteNext_ClaimsLowestPosition(t *testing.T) {
	claims := 0
	repo := &mockWaitlistRepository{
		claimNextFunc: func(ctx context.Context, courtID string, date time.Time, startTime, endTime string) (*model.WaitlistEntry, error) {
			claims++
			entry := validEntry()
			entry.ID = "507f1f77bcf86cd799439099"
			entry.Position = 1
			entry.Notified = true
			return entry, nil
		},
	}
	notifier := &mockNotifier{}
	svc := newTestService(repo, notifier)

	if err := svc.PromoteNext(context.Background(), "507f1f77bcf86cd799439011", monday, "10:00", "11:00"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Claim and mark are one repository call, so there is no window where a
	// second promotion could pick the same entry.
	if claims != 1 {
		t.Errorf("expected a single atomic claim, got %d", claims)
	}
	if notifier.calls != 1 {
		t.Errorf("expected one notification, got %d", notifier.calls)
	}
}

func TestPromoteNext_EmptyQueueIsNoOp(t *testing.T) {
	notifier := &mockNotifier{}
	svc := newTestService(&mockWaitlistRepository{}, notifier)

	if err := svc.PromoteNext(context.Background(), "507f1f77bcf86cd799439011", monday, "10:00", "11:00"); err != nil {
		t.Fatalf("expected nil for empty queue, got %v", err)
	}
	if notifier.calls != 0 {
		t.Errorf("expected no notification for empty queue, got %d", notifier.calls)
	}
}

func TestPromoteNext_NotificationFailureDoesNotFail(t *testing.T) {
	repo := &mockWaitlistRepository{
		claimNextFunc: func(ctx context.Context, courtID string, date time.Time, startTime, endTime string) (*model.WaitlistEntry, error) {
			entry := validEntry()
			entry.ID = "507f1f77bcf86cd799439099"
			entry.Notified = true
			return entry, nil
		},
	}
	notifier := &mockNotifier{
		notifyFunc: func(ctx context.Context, entry *model.WaitlistEntry) error {
			return apperrors.Internal("broker unavailable", nil)
		},
	}
	svc := newTestService(repo, notifier)

	if err := svc.PromoteNext(context.Background(), "507f1f77bcf86cd799439011", monday, "10:00", "11:00"); err != nil {
		t.Fatalf("delivery failure must not fail promotion, got %v", err)
	}
}

func TestPromoteNext_ClaimFailureIsReported(t *testing.T) {
	repo := &mockWaitlistRepository{
		claimNextFunc: func(ctx context.Context, courtID string, date time.Time, startTime, endTime string) (*model.WaitlistEntry, error) {
			return nil, errors.New("connection reset")
		},
	}
	notifier := &mockNotifier{}
	svc := newTestService(repo, notifier)

	if err := svc.PromoteNext(context.Background(), "507f1f77bcf86cd799439011", monday, "10:00", "11:00"); err == nil {
		t.Fatal("expected error when the claim fails")
	}
	if notifier.calls != 0 {
		t.Errorf("expected no notification when the claim fails, got %d", notifier.calls)
	}
}

func TestJoin_HeldLockIsConflict(t *testing.T) {
	lockRepo := &mockSlotLockRepository{
		acquireFunc: func(ctx context.Context, key string, ttl time.Duration) (*model.SlotLock, error) {
			return nil, bookingserrors.ErrLockHeld
		},
	}
	counted := false
	repo := &mockWaitlistRepository{
		countForSlotFunc: func(ctx context.Context, courtID string, date time.Time, startTime, endTime string) (int64, error) {
			counted = true
			return 0, nil
		},
	}
	cfg := testConfig()
	svc := NewWaitlistService(repo, lockRepo, &mockCatalog{}, &mockNotifier{}, validator.NewBookingValidator(cfg.Log), cfg)

	err := svc.Join(context.Background(), validEntry())
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.StatusCode() != 409 {
		t.Fatalf("expected 409 while another join holds the slot lock, got %v", err)
	}
	if counted {
		t.Error("expected no position count while the lock is held")
	}
}

func TestJoin_LockCoversCountAndInsert(t *testing.T) {
	var lockKey string
	locked := false
	lockRepo := &mockSlotLockRepository{
		acquireFunc: func(ctx context.Context, key string, ttl time.Duration) (*model.SlotLock, error) {
			lockKey = key
			locked = true
			return &model.SlotLock{ID: key}, nil
		},
	}
	repo := &mockWaitlistRepository{
		countForSlotFunc: func(ctx context.Context, courtID string, date time.Time, startTime, endTime string) (int64, error) {
			if !locked {
				t.Error("expected slot lock to be held before counting positions")
			}
			return 1, nil
		},
		insertFunc: func(ctx context.Context, entry *model.WaitlistEntry) error {
			if !locked {
				t.Error("expected slot lock to be held during insert")
			}
			return nil
		},
	}
	cfg := testConfig()
	svc := NewWaitlistService(repo, lockRepo, &mockCatalog{}, &mockNotifier{}, validator.NewBookingValidator(cfg.Log), cfg)

	entry := validEntry()
	if err := svc.Join(context.Background(), entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Position != 2 {
		t.Errorf("expected position 2, got %d", entry.Position)
	}

	want := "waitlist_507f1f77bcf86cd799439011_2026-09-07_10:00_11:00"
	if lockKey != want {
		t.Errorf("expected lock key %q, got %q", want, lockKey)
	}
	if len(lockRepo.releases) != 1 || lockRepo.releases[0] != want {
		t.Errorf("expected the lock to be released once, got %v", lockRepo.releases)
	}
}

func TestLeave_HeldLockIsConflict(t *testing.T) {
	lockRepo := &mockSlotLockRepository{
		acquireFunc: func(ctx context.Context, key string, ttl time.Duration) (*model.SlotLock, error) {
			return nil, bookingserrors.ErrLockHeld
		},
	}
	repo := &mockWaitlistRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.WaitlistEntry, error) {
			entry := validEntry()
			entry.ID = id
			entry.Position = 1
			return entry, nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			t.Error("expected no delete while the lock is held")
			return nil
		},
	}
	cfg := testConfig()
	svc := NewWaitlistService(repo, lockRepo, &mockCatalog{}, &mockNotifier{}, validator.NewBookingValidator(cfg.Log), cfg)

	err := svc.Leave(context.Background(), "507f1f77bcf86cd799439099")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.StatusCode() != 409 {
		t.Fatalf("expected 409 while another request holds the slot lock, got %v", err)
	}
}
