package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"courtbook/pkg/config"
	"courtbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const JobName = "mongo-seed"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	cfg := config.Load(JobName)
	cfg.SetMongo()
	cfg.Log.Info("Starting seed job")
	defer cfg.GracefulShutdown()

	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := seed(ctx, db); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
	fmt.Println("✅ Seed data created successfully.")
}

func seed(ctx context.Context, db *mongo.Database) error {
	now := time.Now().UTC()

	collections := []string{"Courts", "Equipment", "Coaches", "Pricing_rules"}
	for _, name := range collections {
		if _, err := db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("failed to clear %s: %w", name, err)
		}
	}

	courts := []any{
		model.Court{Name: "Indoor Court 1", Type: "indoor", BasePrice: 50, IsActive: true, CreatedAt: now},
		model.Court{Name: "Indoor Court 2", Type: "indoor", BasePrice: 50, IsActive: true, CreatedAt: now},
		model.Court{Name: "Outdoor Court 1", Type: "outdoor", BasePrice: 40, IsActive: true, CreatedAt: now},
		model.Court{Name: "Outdoor Court 2", Type: "outdoor", BasePrice: 40, IsActive: true, CreatedAt: now},
	}
	if _, err := db.Collection("Courts").InsertMany(ctx, courts); err != nil {
		return fmt.Errorf("failed to seed courts: %w", err)
	}
	fmt.Println("✓ Seeded courts")

	equipment := []any{
		model.Equipment{Name: "Badminton Racket", Type: "racket", Quantity: 20, RentalPrice: 5, IsActive: true, CreatedAt: now},
		model.Equipment{Name: "Sports Shoes", Type: "shoes", Quantity: 15, RentalPrice: 3, IsActive: true, CreatedAt: now},
	}
	if _, err := db.Collection("Equipment").InsertMany(ctx, equipment); err != nil {
		return fmt.Errorf("failed to seed equipment: %w", err)
	}
	fmt.Println("✓ Seeded equipment")

	coaches := []any{
		model.Coach{
			Name:       "John Smith",
			Email:      "john.smith@example.com",
			HourlyRate: 30,
			Availability: []model.AvailabilitySlot{
				{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00"},
				{DayOfWeek: 2, StartTime: "09:00", EndTime: "17:00"},
				{DayOfWeek: 3, StartTime: "09:00", EndTime: "17:00"},
				{DayOfWeek: 4, StartTime: "09:00", EndTime: "17:00"},
				{DayOfWeek: 5, StartTime: "09:00", EndTime: "17:00"},
			},
			IsActive:  true,
			CreatedAt: now,
		},
		model.Coach{
			Name:       "Sarah Johnson",
			Email:      "sarah.johnson@example.com",
			HourlyRate: 35,
			Availability: []model.AvailabilitySlot{
				{DayOfWeek: 0, StartTime: "10:00", EndTime: "18:00"},
				{DayOfWeek: 6, StartTime: "10:00", EndTime: "18:00"},
				{DayOfWeek: 1, StartTime: "18:00", EndTime: "21:00"},
				{DayOfWeek: 3, StartTime: "18:00", EndTime: "21:00"},
			},
			IsActive:  true,
			CreatedAt: now,
		},
		model.Coach{
			Name:       "Mike Davis",
			Email:      "mike.davis@example.com",
			HourlyRate: 25,
			Availability: []model.AvailabilitySlot{
				{DayOfWeek: 1, StartTime: "14:00", EndTime: "20:00"},
				{DayOfWeek: 2, StartTime: "14:00", EndTime: "20:00"},
				{DayOfWeek: 4, StartTime: "14:00", EndTime: "20:00"},
				{DayOfWeek: 5, StartTime: "14:00", EndTime: "20:00"},
				{DayOfWeek: 6, StartTime: "10:00", EndTime: "16:00"},
			},
			IsActive:  true,
			CreatedAt: now,
		},
	}
	if _, err := db.Collection("Coaches").InsertMany(ctx, coaches); err != nil {
		return fmt.Errorf("failed to seed coaches: %w", err)
	}
	fmt.Println("✓ Seeded coaches")

	rules := []any{
		model.PricingRule{
			Name:        "Peak Hours",
			Description: "Higher rate for peak hours (6-9 PM)",
			RuleType:    "time_range",
			TimeRange:   &model.TimeRange{Start: "18:00", End: "21:00"},
			Multiplier:  1.5,
			Priority:    1,
			IsActive:    true,
			CreatedAt:   now,
		},
		model.PricingRule{
			Name:        "Weekend Premium",
			Description: "Higher rate for weekends",
			RuleType:    "day_of_week",
			DaysOfWeek:  []int{0, 6},
			Multiplier:  1.3,
			Priority:    2,
			IsActive:    true,
			CreatedAt:   now,
		},
		model.PricingRule{
			Name:        "Indoor Premium",
			Description: "Premium pricing for indoor courts",
			RuleType:    "court_type",
			CourtType:   "indoor",
			Multiplier:  1.2,
			Priority:    3,
			IsActive:    true,
			CreatedAt:   now,
		},
	}
	if _, err := db.Collection("Pricing_rules").InsertMany(ctx, rules); err != nil {
		return fmt.Errorf("failed to seed pricing rules: %w", err)
	}
	fmt.Println("✓ Seeded pricing rules")

	return nil
}
