package service

import (
	"context"
	"time"

	catalogerrors "courtbook/internal/catalog/errors"
	"courtbook/pkg/config"
	mongotx "courtbook/pkg/db/mongo"
	"courtbook/pkg/logger"
	"courtbook/pkg/model"
)

// Mock repositories for testing

type mockCatalogRepository struct {
	getCourtFunc     func(ctx context.Context, id string) (*model.Court, error)
	getEquipmentFunc func(ctx context.Context, id string) (*model.Equipment, error)
	getCoachFunc     func(ctx context.Context, id string) (*model.Coach, error)
	listCourtsFunc   func(ctx context.Context) ([]*model.Court, error)
	listRulesFunc    func(ctx context.Context) ([]*model.PricingRule, error)
}

func (m *mockCatalogRepository) ListActiveCourts(ctx context.Context) ([]*model.Court, error) {
	if m.listCourtsFunc != nil {
		return m.listCourtsFunc(ctx)
	}
	return []*model.Court{}, nil
}

func (m *mockCatalogRepository) GetCourt(ctx context.Context, id string) (*model.Court, error) {
	if m.getCourtFunc != nil {
		return m.getCourtFunc(ctx, id)
	}
	return nil, catalogerrors.ErrNotFound
}

func (m *mockCatalogRepository) GetEquipment(ctx context.Context, id string) (*model.Equipment, error) {
	if m.getEquipmentFunc != nil {
		return m.getEquipmentFunc(ctx, id)
	}
	return nil, catalogerrors.ErrNotFound
}

func (m *mockCatalogRepository) GetCoach(ctx context.Context, id string) (*model.Coach, error) {
	if m.getCoachFunc != nil {
		return m.getCoachFunc(ctx, id)
	}
	return nil, catalogerrors.ErrNotFound
}

func (m *mockCatalogRepository) ListActivePricingRules(ctx context.Context) ([]*model.PricingRule, error) {
	if m.listRulesFunc != nil {
		return m.listRulesFunc(ctx)
	}
	return []*model.PricingRule{}, nil
}

type mockBookingRepository struct {
	createFunc             func(ctx context.Context, booking *model.Booking) error
	findByIDFunc           func(ctx context.Context, id string) (*model.Booking, error)
	findAllFunc            func(ctx context.Context, limit int, offset int64) ([]*model.Booking, error)
	countFunc              func(ctx context.Context) (int64, error)
	findByUserFunc         func(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error)
	countByUserFunc        func(ctx context.Context, userID string) (int64, error)
	updateStatusFunc       func(ctx context.Context, id string, status string) error
	overlapCourtFunc       func(ctx context.Context, courtID string, date time.Time, startTime, endTime string, excludeID string) ([]*model.Booking, error)
	overlapCoachFunc       func(ctx context.Context, coachID string, date time.Time, startTime, endTime string, excludeID string) ([]*model.Booking, error)
	overlapEquipmentFunc   func(ctx context.Context, equipmentID string, date time.Time, startTime, endTime string, excludeID string) ([]*model.Booking, error)
	executeTransactionFunc func(ctx context.Context, fn mongotx.TransactionFunc) error
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockBookingRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error) {
	if m.findByUserFunc != nil {
		return m.findByUserFunc(ctx, userID, limit, offset)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	if m.countByUserFunc != nil {
		return m.countByUserFunc(ctx, userID)
	}
	return 0, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockBookingRepository) FindOverlappingForCourt(ctx context.Context, courtID string, date time.Time, startTime, endTime string, excludeID string) ([]*model.Booking, error) {
	if m.overlapCourtFunc != nil {
		return m.overlapCourtFunc(ctx, courtID, date, startTime, endTime, excludeID)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) FindOverlappingForCoach(ctx context.Context, coachID string, date time.Time, startTime, endTime string, excludeID string) ([]*model.Booking, error) {
	if m.overlapCoachFunc != nil {
		return m.overlapCoachFunc(ctx, coachID, date, startTime, endTime, excludeID)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) FindOverlappingWithEquipment(ctx context.Context, equipmentID string, date time.Time, startTime, endTime string, excludeID string) ([]*model.Booking, error) {
	if m.overlapEquipmentFunc != nil {
		return m.overlapEquipmentFunc(ctx, equipmentID, date, startTime, endTime, excludeID)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if m.executeTransactionFunc != nil {
		return m.executeTransactionFunc(ctx, fn)
	}
	return fn(nil)
}

type mockSlotLockRepository struct {
	acquireFunc func(ctx context.Context, key string, ttl time.Duration) (*model.SlotLock, error)
	releaseFunc func(ctx context.Context, key string) error
}

func (m *mockSlotLockRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (*model.SlotLock, error) {
	if m.acquireFunc != nil {
		return m.acquireFunc(ctx, key, ttl)
	}
	return &model.SlotLock{ID: key}, nil
}

func (m *mockSlotLockRepository) Release(ctx context.Context, key string) error {
	if m.releaseFunc != nil {
		return m.releaseFunc(ctx, key)
	}
	return nil
}

type mockPromoter struct {
	promoteFunc func(ctx context.Context, courtID string, date time.Time, startTime, endTime string) error
	calls       int
}

func (m *mockPromoter) PromoteNext(ctx context.Context, courtID string, date time.Time, startTime, endTime string) error {
	m.calls++
	if m.promoteFunc != nil {
		return m.promoteFunc(ctx, courtID, date, startTime, endTime)
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
		SlotDayStart: "06:00",
		SlotDayEnd:   "22:00",
		SlotLockTTL:  30 * time.Second,
	}
}
