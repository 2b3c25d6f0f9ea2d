package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"serve-cafe/internal/services"
)

type MenuHandler struct {
	menuService *services.MenuService
}

func NewMenuHandler(menuService *services.MenuService) *MenuHandler {
	return &MenuHandler{menuService: menuService}
}

// GetMenu returns the public menu: categories plus available items
func (h *MenuHandler) GetMenu(c *gin.Context) {
	categories, items, err := h.menuService.ListMenu()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get menu"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"categories": categories,
		"items":      items,
	})
}

// CreateCategory adds a menu category
func (h *MenuHandler) CreateCategory(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		SortOrder int    `json:"sort_order"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.menuService.CreateCategory(req.Name, req.SortOrder)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    category,
	})
}

// CreateItem adds a menu item; its selling price is derived server-side
func (h *MenuHandler) CreateItem(c *gin.Context) {
	var req struct {
		CategoryID    uint   `json:"category_id" binding:"required"`
		Name          string `json:"name" binding:"required"`
		CostPrice     string `json:"cost_price" binding:"required"`
		MarginPercent string `json:"margin_percent" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cost, err := decimal.NewFromString(req.CostPrice)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cost_price"})
		return
	}
	margin, err := decimal.NewFromString(req.MarginPercent)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid margin_percent"})
		return
	}

	item, err := h.menuService.CreateItem(req.CategoryID, req.Name, cost, margin)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    item,
	})
}

// RepriceItem updates cost and margin, recomputing the selling price
func (h *MenuHandler) RepriceItem(c *gin.Context) {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	var req struct {
		CostPrice     string `json:"cost_price" binding:"required"`
		MarginPercent string `json:"margin_percent" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cost, err := decimal.NewFromString(req.CostPrice)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cost_price"})
		return
	}
	margin, err := decimal.NewFromString(req.MarginPercent)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid margin_percent"})
		return
	}

	item, err := h.menuService.Reprice(uint(itemID), cost, margin)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    item,
	})
}

// SetItemAvailability toggles an item on or off the public menu
func (h *MenuHandler) SetItemAvailability(c *gin.Context) {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	var req struct {
		Available *bool `json:"available" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.menuService.SetAvailability(uint(itemID), *req.Available); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
