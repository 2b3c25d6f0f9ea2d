package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"serve-cafe/internal/models"
)

// MenuService manages categories and priced menu items. Selling prices are
// always derived from cost and margin, never entered directly.
type MenuService struct {
	db *gorm.DB
}

func NewMenuService(db *gorm.DB) *MenuService {
	return &MenuService{db: db}
}

// ComputeSellingPrice derives the selling price from cost and margin,
// rounded to 2 decimal places.
func ComputeSellingPrice(cost, marginPercent decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)
	return cost.Mul(one.Add(marginPercent.Div(hundred))).Round(2)
}

// CreateCategory adds a new menu category
func (s *MenuService) CreateCategory(name string, sortOrder int) (*models.MenuCategory, error) {
	if name == "" {
		return nil, fmt.Errorf("category name is required: %w", ErrValidation)
	}
	category := models.MenuCategory{Name: name, SortOrder: sortOrder}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &category, nil
}

// CreateItem adds a menu item with its selling price computed from cost and
// margin.
func (s *MenuService) CreateItem(categoryID uint, name string, cost, marginPercent decimal.Decimal) (*models.MenuItem, error) {
	if name == "" {
		return nil, fmt.Errorf("item name is required: %w", ErrValidation)
	}
	if cost.IsNegative() || marginPercent.IsNegative() {
		return nil, fmt.Errorf("cost and margin must not be negative: %w", ErrValidation)
	}

	var category models.MenuCategory
	if err := s.db.First(&category, categoryID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("menu category %d: %w", categoryID, ErrNotFound)
		}
		return nil, err
	}

	item := models.MenuItem{
		CategoryID:    categoryID,
		Name:          name,
		CostPrice:     cost.Round(2),
		MarginPercent: marginPercent,
		SellingPrice:  ComputeSellingPrice(cost, marginPercent),
		IsAvailable:   true,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to create menu item: %w", err)
	}
	return &item, nil
}

// Reprice updates cost and margin and recomputes the selling price.
func (s *MenuService) Reprice(itemID uint, cost, marginPercent decimal.Decimal) (*models.MenuItem, error) {
	if cost.IsNegative() || marginPercent.IsNegative() {
		return nil, fmt.Errorf("cost and margin must not be negative: %w", ErrValidation)
	}

	var item models.MenuItem
	if err := s.db.First(&item, itemID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("menu item %d: %w", itemID, ErrNotFound)
		}
		return nil, err
	}

	if err := s.db.Model(&item).Updates(map[string]interface{}{
		"cost_price":     cost.Round(2),
		"margin_percent": marginPercent,
		"selling_price":  ComputeSellingPrice(cost, marginPercent),
	}).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// SetAvailability toggles whether the item appears on the public menu.
func (s *MenuService) SetAvailability(itemID uint, available bool) error {
	result := s.db.Model(&models.MenuItem{}).Where("id = ?", itemID).Update("is_available", available)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("menu item %d: %w", itemID, ErrNotFound)
	}
	return nil
}

// ListMenu returns available items grouped under their categories.
func (s *MenuService) ListMenu() ([]models.MenuCategory, []models.MenuItem, error) {
	var categories []models.MenuCategory
	if err := s.db.Order("sort_order, name").Find(&categories).Error; err != nil {
		return nil, nil, err
	}

	var items []models.MenuItem
	if err := s.db.Where("is_available = ?", true).Order("category_id, name").Find(&items).Error; err != nil {
		return nil, nil, err
	}

	return categories, items, nil
}
