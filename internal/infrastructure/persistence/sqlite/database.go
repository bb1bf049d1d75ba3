// Package sqlite provides SQLite database setup and configuration
package sqlite

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/plan"
	gormModels "github.com/nutriplan/core/internal/infrastructure/persistence/gorm"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupDatabase creates and configures the SQLite database
func SetupDatabase(dbPath string, logLevel logger.LogLevel) (*gorm.DB, error) {
	// Use in-memory database if no path provided
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	// Every connection to :memory: opens its own empty database.
	if dbPath == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run auto-migration
	if err := db.AutoMigrate(gormModels.AllModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// SeedDatabase stores one demo template per goal for the owner
func SeedDatabase(db *gorm.DB, ownerID uuid.UUID) error {
	// Check if data already exists
	var count int64
	if err := db.Model(&gormModels.PlanTemplateModel{}).Where("owner_id = ?", ownerID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count templates: %w", err)
	}
	if count > 0 {
		return nil // Already seeded
	}

	kcal := func(v float64) *float64 { return &v }
	demo := []struct {
		name string
		goal plan.Goal
		days []plan.Day
	}{
		{
			name: "Déficit léger",
			goal: plan.GoalWeightLoss,
			days: []plan.Day{{Day: 1, Meals: []plan.Meal{
				{Type: "breakfast", Name: "Yaourt grec et fruits rouges", Calories: kcal(280), Ingredients: []string{"150g yaourt grec", "80g fruits rouges"}},
				{Type: "lunch", Name: "Salade de poulet", Calories: kcal(450), Ingredients: []string{"120g poulet", "100g salade", "10ml huile d'olive"}},
				{Type: "dinner", Name: "Cabillaud et légumes vapeur", Calories: kcal(420), Ingredients: []string{"150g cabillaud", "200g brocoli"}},
			}}},
		},
		{
			name: "Prise de masse",
			goal: plan.GoalWeightGain,
			days: []plan.Day{{Day: 1, Meals: []plan.Meal{
				{Type: "breakfast", Name: "Porridge aux amandes", Calories: kcal(650), Ingredients: []string{"100g flocons d'avoine", "300ml lait", "30g amandes"}},
				{Type: "lunch", Name: "Riz au boeuf", Calories: kcal(850), Ingredients: []string{"150g riz", "180g boeuf"}},
				{Type: "dinner", Name: "Pâtes au saumon", Calories: kcal(800), Ingredients: []string{"150g pâtes", "150g saumon"}},
			}}},
		},
		{
			name: "Équilibre",
			goal: plan.GoalMaintenance,
			days: []plan.Day{{Day: 1, Meals: []plan.Meal{
				{Type: "breakfast", Name: "Tartines et oeufs", Calories: kcal(420), Ingredients: []string{"80g pain complet", "2 oeufs"}},
				{Type: "lunch", Name: "Bowl de quinoa", Calories: kcal(520), Ingredients: []string{"150g quinoa", "1 avocat", "50ml huile d'olive"}},
				{Type: "dinner", Name: "Poulet et patate douce", Calories: kcal(600), Ingredients: []string{"150g poulet", "200g patate douce"}},
			}}},
		},
	}

	for _, d := range demo {
		t, err := plan.NewTemplate(ownerID, d.name, d.goal, d.days)
		if err != nil {
			return fmt.Errorf("failed to build demo template: %w", err)
		}
		model, err := gormModels.TemplateToModel(t)
		if err != nil {
			return err
		}
		if err := db.Create(model).Error; err != nil {
			return fmt.Errorf("failed to create demo template: %w", err)
		}
	}

	return nil
}
