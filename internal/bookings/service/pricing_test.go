package service

import (
	"context"
	"testing"
	"time"

	catalogerrors "courtbook/internal/catalog/errors"
	"courtbook/pkg/model"
)

// 2026-09-07 is a Monday, 2026-09-05 a Saturday.
var (
	monday   = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	saturday = time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
)

func fixedCatalog() *mockCatalogRepository {
	return &mockCatalogRepository{
		getCourtFunc: func(ctx context.Context, id string) (*model.Court, error) {
			return &model.Court{ID: id, Name: "Indoor Court 1", Type: "indoor", BasePrice: 50, IsActive: true}, nil
		},
	}
}

func priceRequest(date time.Time, start, end string) *PriceRequest {
	return &PriceRequest{
		CourtID:   "507f1f77bcf86cd799439011",
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}
}

func TestCalculatePrice_BaseOnly(t *testing.T) {
	svc := NewPricingService(fixedCatalog(), testConfig())

	breakdown, err := svc.CalculatePrice(context.Background(), priceRequest(monday, "10:00", "11:00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if breakdown.FinalPrice != 50 {
		t.Errorf("expected final price 50, got %v", breakdown.FinalPrice)
	}
	if len(breakdown.CourtMultipliers) != 0 {
		t.Errorf("expected no applied multipliers, got %d", len(breakdown.CourtMultipliers))
	}
}

func TestCalculatePrice_PeakHourMultiplier(t *testing.T) {
	catalog := fixedCatalog()
	catalog.listRulesFunc = func(ctx context.Context) ([]*model.PricingRule, error) {
		return []*model.PricingRule{
			{
				Name:       "Peak Hours",
				RuleType:   model.RuleTypeTimeRange,
				TimeRange:  &model.TimeRange{Start: "18:00", End: "21:00"},
				Multiplier: 1.5,
				IsActive:   true,
			},
		}, nil
	}
	svc := NewPricingService(catalog, testConfig())

	tests := []struct {
		name     string
		start    string
		end      string
		expected float64
	}{
		{"start inside range", "18:00", "19:00", 75},
		{"start before range", "17:00", "18:00", 50},
		{"start at range end is excluded", "21:00", "22:00", 50},
		{"crossing into range only counts the start", "17:00", "19:00", 100},
		{"two peak hours", "18:00", "20:00", 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breakdown, err := svc.CalculatePrice(context.Background(), priceRequest(monday, tt.start, tt.end))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if breakdown.FinalPrice != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, breakdown.FinalPrice)
			}
		})
	}
}

func TestCalculatePrice_StackedMultipliers(t *testing.T) {
	catalog := fixedCatalog()
	catalog.listRulesFunc = func(ctx context.Context) ([]*model.PricingRule, error) {
		return []*model.PricingRule{
			{Name: "Peak Hours", RuleType: model.RuleTypeTimeRange, TimeRange: &model.TimeRange{Start: "18:00", End: "21:00"}, Multiplier: 1.5, IsActive: true},
			{Name: "Weekend Premium", RuleType: model.RuleTypeDayOfWeek, DaysOfWeek: []int{0, 6}, Multiplier: 1.3, IsActive: true},
			{Name: "Indoor Premium", RuleType: model.RuleTypeCourtType, CourtType: "indoor", Multiplier: 1.2, IsActive: true},
		}, nil
	}
	svc := NewPricingService(catalog, testConfig())

	// Saturday 18:00: all three rules apply. 50 * 1.5 * 1.3 * 1.2 = 117.
	breakdown, err := svc.CalculatePrice(context.Background(), priceRequest(saturday, "18:00", "19:00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(breakdown.CourtMultipliers) != 3 {
		t.Fatalf("expected 3 applied multipliers, got %d", len(breakdown.CourtMultipliers))
	}
	if got, want := breakdown.FinalPrice, 50*1.5*1.3*1.2; got != want {
		t.Errorf("expected %v, got %v", want, got)
	}

	// Rule application order follows the catalog's evaluation order.
	if breakdown.CourtMultipliers[0].RuleName != "Peak Hours" {
		t.Errorf("expected Peak Hours first, got %s", breakdown.CourtMultipliers[0].RuleName)
	}
}

func TestCalculatePrice_Deterministic(t *testing.T) {
	catalog := fixedCatalog()
	catalog.listRulesFunc = func(ctx context.Context) ([]*model.PricingRule, error) {
		return []*model.PricingRule{
			{Name: "Indoor Premium", RuleType: model.RuleTypeCourtType, CourtType: "indoor", Multiplier: 1.2, IsActive: true},
		}, nil
	}
	svc := NewPricingService(catalog, testConfig())

	first, err := svc.CalculatePrice(context.Background(), priceRequest(monday, "10:00", "12:00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 10; i++ {
		again, err := svc.CalculatePrice(context.Background(), priceRequest(monday, "10:00", "12:00"))
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if again.FinalPrice != first.FinalPrice {
			t.Fatalf("iteration %d: price changed from %v to %v", i, first.FinalPrice, again.FinalPrice)
		}
	}
}

func TestCalculatePrice_EquipmentScalesWithDuration(t *testing.T) {
	catalog := fixedCatalog()
	catalog.getEquipmentFunc = func(ctx context.Context, id string) (*model.Equipment, error) {
		return &model.Equipment{ID: id, Name: "Badminton Racket", Quantity: 20, RentalPrice: 5, IsActive: true}, nil
	}
	svc := NewPricingService(catalog, testConfig())

	req := priceRequest(monday, "10:00", "12:00")
	req.Equipment = []model.EquipmentRequest{{EquipmentID: "507f1f77bcf86cd799439012", Quantity: 2}}

	breakdown, err := svc.CalculatePrice(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 5 per hour * 2 rackets * 2 hours
	if breakdown.EquipmentTotal != 20 {
		t.Errorf("expected equipment total 20, got %v", breakdown.EquipmentTotal)
	}
	if breakdown.FinalPrice != 120 {
		t.Errorf("expected final price 120, got %v", breakdown.FinalPrice)
	}
}

func TestCalculatePrice_MissingEquipmentPricesAtZero(t *testing.T) {
	svc := NewPricingService(fixedCatalog(), testConfig())

	req := priceRequest(monday, "10:00", "11:00")
	req.Equipment = []model.EquipmentRequest{{EquipmentID: "507f1f77bcf86cd799439012", Quantity: 2}}

	breakdown, err := svc.CalculatePrice(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if breakdown.EquipmentTotal != 0 {
		t.Errorf("expected missing equipment to contribute 0, got %v", breakdown.EquipmentTotal)
	}
}

func TestCalculatePrice_InactiveCoachPricesAtZero(t *testing.T) {
	catalog := fixedCatalog()
	catalog.getCoachFunc = func(ctx context.Context, id string) (*model.Coach, error) {
		return &model.Coach{ID: id, Name: "John Smith", HourlyRate: 30, IsActive: false}, nil
	}
	svc := NewPricingService(catalog, testConfig())

	req := priceRequest(monday, "10:00", "11:00")
	req.CoachID = "507f1f77bcf86cd799439013"

	breakdown, err := svc.CalculatePrice(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if breakdown.CoachFee != 0 {
		t.Errorf("expected inactive coach fee 0, got %v", breakdown.CoachFee)
	}
}

func TestCalculatePrice_CoachFee(t *testing.T) {
	catalog := fixedCatalog()
	catalog.getCoachFunc = func(ctx context.Context, id string) (*model.Coach, error) {
		return &model.Coach{ID: id, Name: "John Smith", HourlyRate: 30, IsActive: true}, nil
	}
	svc := NewPricingService(catalog, testConfig())

	req := priceRequest(monday, "10:00", "11:30")
	req.CoachID = "507f1f77bcf86cd799439013"

	breakdown, err := svc.CalculatePrice(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if breakdown.CoachFee != 45 {
		t.Errorf("expected coach fee 45 for 1.5 hours at 30, got %v", breakdown.CoachFee)
	}
}

func TestCalculatePrice_CourtNotFound(t *testing.T) {
	catalog := &mockCatalogRepository{
		getCourtFunc: func(ctx context.Context, id string) (*model.Court, error) {
			return nil, catalogerrors.ErrNotFound
		},
	}
	svc := NewPricingService(catalog, testConfig())

	_, err := svc.CalculatePrice(context.Background(), priceRequest(monday, "10:00", "11:00"))
	if err == nil {
		t.Fatal("expected error for missing court")
	}
}

func TestCalculatePrice_InvalidWindow(t *testing.T) {
	svc := NewPricingService(fixedCatalog(), testConfig())

	tests := []struct {
		name  string
		start string
		end   string
	}{
		{"end before start", "11:00", "10:00"},
		{"zero duration", "10:00", "10:00"},
		{"malformed time", "10am", "11:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CalculatePrice(context.Background(), priceRequest(monday, tt.start, tt.end)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
