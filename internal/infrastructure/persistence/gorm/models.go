// Package gorm provides GORM model definitions for the application
package gorm

import (
	"time"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/plan"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NutritionColumns is one embedded nutrition field group
type NutritionColumns struct {
	Calories *float64
	Protein  *float64
	Carbs    *float64
	Fat      *float64
	Fiber    *float64
}

// IngredientModel represents the GORM model for the global ingredient directory
type IngredientModel struct {
	ID       uuid.UUID        `gorm:"type:char(36);primaryKey"`
	Name     string           `gorm:"type:varchar(255);uniqueIndex;not null"`
	UnitType string           `gorm:"type:varchar(20);not null;default:'mass'"`
	Per100g  NutritionColumns `gorm:"embedded;embeddedPrefix:per_100g_"`
	Per100ml NutritionColumns `gorm:"embedded;embeddedPrefix:per_100ml_"`
	PerPiece NutritionColumns `gorm:"embedded;embeddedPrefix:per_piece_"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecipeModel represents the GORM model for recipes
type RecipeModel struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	OwnerID     uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_recipes_owner_name"`
	Name        string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_recipes_owner_name"`
	Description string    `gorm:"type:text"`
	Category    string    `gorm:"type:varchar(20);index"`
	Difficulty  string    `gorm:"type:varchar(20)"`
	Servings    int       `gorm:"default:1"`

	Calories *float64
	Protein  *float64
	Carbs    *float64
	Fat      *float64
	Fiber    *float64

	Instructions datatypes.JSONSlice[string]
	Tags         datatypes.JSONSlice[string]

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Ingredients []RecipeIngredientModel `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

// RecipeIngredientModel is one ordered recipe row
type RecipeIngredientModel struct {
	ID           uuid.UUID  `gorm:"type:char(36);primaryKey"`
	RecipeID     uuid.UUID  `gorm:"type:char(36);not null;index"`
	IngredientID *uuid.UUID `gorm:"type:char(36);index"`
	Name         string     `gorm:"type:varchar(255);not null"`
	Quantity     *float64
	Unit         string `gorm:"type:varchar(32)"`
	OrderIndex   int    `gorm:"not null;default:0"`
}

// NutritionPlanModel represents a saved plan
type NutritionPlanModel struct {
	ID          uuid.UUID  `gorm:"type:char(36);primaryKey"`
	OwnerID     uuid.UUID  `gorm:"type:char(36);not null;index"`
	ClientID    *uuid.UUID `gorm:"type:char(36);index"`
	Title       string     `gorm:"type:varchar(255);not null"`
	Description string     `gorm:"type:text"`
	Duration    int
	Goals       datatypes.JSON
	// DayTotals holds the per-day baseline nutrition.
	DayTotals datatypes.JSON
	Foods     datatypes.JSONSlice[plan.AddedFood]

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Meals []MealSlotModel `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
}

// MealSlotModel is one meal of one day of a saved plan
type MealSlotModel struct {
	ID               uuid.UUID  `gorm:"type:char(36);primaryKey"`
	PlanID           uuid.UUID  `gorm:"type:char(36);not null;index"`
	Day              int        `gorm:"not null;index"`
	Date             string     `gorm:"type:varchar(32)"`
	Type             string     `gorm:"type:varchar(20)"`
	Name             string     `gorm:"type:varchar(255)"`
	OriginalMealName string     `gorm:"type:varchar(255)"`
	Description      string     `gorm:"type:text"`
	RecipeID         *uuid.UUID `gorm:"type:char(36);index"`
	OrderIndex       int

	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
	Fiber    float64

	Ingredients datatypes.JSONSlice[string]
}

// PlanTemplateModel represents a reusable plan template
type PlanTemplateModel struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	OwnerID     uuid.UUID `gorm:"type:char(36);not null;index:idx_templates_owner_goal"`
	Goal        string    `gorm:"type:varchar(20);index:idx_templates_owner_goal"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	Days        datatypes.JSON

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ShoppingListModel represents a shopping list header
type ShoppingListModel struct {
	ID             uuid.UUID  `gorm:"type:char(36);primaryKey"`
	OwnerID        uuid.UUID  `gorm:"type:char(36);not null;index"`
	ClientID       *uuid.UUID `gorm:"type:char(36);index"`
	PlanID         *uuid.UUID `gorm:"type:char(36)"`
	TemplateID     *uuid.UUID `gorm:"type:char(36)"`
	Name           string     `gorm:"type:varchar(255);not null"`
	Status         string     `gorm:"type:varchar(20);not null;default:'active'"`
	TotalItems     int        `gorm:"not null;default:0"`
	CompletedItems int        `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Items []ShoppingListItemModel `gorm:"foreignKey:ListID;constraint:OnDelete:CASCADE"`
}

// ShoppingListItemModel is one list item
type ShoppingListItemModel struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	ListID      uuid.UUID `gorm:"type:char(36);not null;index"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Quantity    string    `gorm:"type:varchar(64)"`
	Unit        string    `gorm:"type:varchar(32)"`
	Category    string    `gorm:"type:varchar(32);not null;default:'other'"`
	IsPurchased bool      `gorm:"not null;default:false"`
	OrderIndex  int       `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClientModel represents a practitioner's client
type ClientModel struct {
	ID             uuid.UUID `gorm:"type:char(36);primaryKey"`
	OwnerID        uuid.UUID `gorm:"type:char(36);not null;index"`
	Name           string    `gorm:"type:varchar(255);not null"`
	Email          string    `gorm:"type:varchar(255)"`
	StartingWeight *float64
	CurrentWeight  *float64
	GoalWeight     *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProgressEntryModel is one dated measurement
type ProgressEntryModel struct {
	ID       uuid.UUID `gorm:"type:char(36);primaryKey"`
	ClientID uuid.UUID `gorm:"type:char(36);not null;index:idx_progress_client_date"`
	Date     time.Time `gorm:"not null;index:idx_progress_client_date"`
	Weight   float64   `gorm:"not null"`
	BodyFat  *float64
	Waist    *float64
	Hips     *float64
	Chest    *float64
	Notes    string `gorm:"type:text"`

	CreatedAt time.Time
}

// TableName specifies the table name for IngredientModel
func (IngredientModel) TableName() string { return "ingredients" }

// TableName specifies the table name for RecipeModel
func (RecipeModel) TableName() string { return "recipes" }

// TableName specifies the table name for RecipeIngredientModel
func (RecipeIngredientModel) TableName() string { return "recipe_ingredients" }

// TableName specifies the table name for NutritionPlanModel
func (NutritionPlanModel) TableName() string { return "nutrition_plans" }

// TableName specifies the table name for MealSlotModel
func (MealSlotModel) TableName() string { return "meal_slots" }

// TableName specifies the table name for PlanTemplateModel
func (PlanTemplateModel) TableName() string { return "plan_templates" }

// TableName specifies the table name for ShoppingListModel
func (ShoppingListModel) TableName() string { return "shopping_lists" }

// TableName specifies the table name for ShoppingListItemModel
func (ShoppingListItemModel) TableName() string { return "shopping_list_items" }

// TableName specifies the table name for ClientModel
func (ClientModel) TableName() string { return "clients" }

// TableName specifies the table name for ProgressEntryModel
func (ProgressEntryModel) TableName() string { return "progress_entries" }

// AllModels lists every model in dependency order for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&IngredientModel{},
		&RecipeModel{},
		&RecipeIngredientModel{},
		&NutritionPlanModel{},
		&MealSlotModel{},
		&PlanTemplateModel{},
		&ShoppingListModel{},
		&ShoppingListItemModel{},
		&ClientModel{},
		&ProgressEntryModel{},
	}
}

// BeforeCreate hook for IngredientModel
func (m *IngredientModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for RecipeModel
func (m *RecipeModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for RecipeIngredientModel
func (m *RecipeIngredientModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for NutritionPlanModel
func (m *NutritionPlanModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for MealSlotModel
func (m *MealSlotModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for ShoppingListModel
func (m *ShoppingListModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for ShoppingListItemModel
func (m *ShoppingListItemModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for ProgressEntryModel
func (m *ProgressEntryModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for PlanTemplateModel
func (m *PlanTemplateModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for ClientModel
func (m *ClientModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
