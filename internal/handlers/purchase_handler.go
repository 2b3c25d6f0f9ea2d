package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"serve-cafe/internal/auth"
	"serve-cafe/internal/services"
)

type PurchaseHandler struct {
	purchaseService   *services.PurchaseService
	membershipService *services.MembershipService
}

func NewPurchaseHandler(purchaseService *services.PurchaseService, membershipService *services.MembershipService) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService:   purchaseService,
		membershipService: membershipService,
	}
}

// RecordPurchase debits the wallet and triggers commission processing
func (h *PurchaseHandler) RecordPurchase(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Amount string `json:"amount" binding:"required"`
		Remark string `json:"remark"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	entry, commissions, err := h.purchaseService.RecordPurchase(userID, amount, req.Remark)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"data":        entry,
		"commissions": commissions,
	})
}

// ListOffers returns active membership packages
func (h *PurchaseHandler) ListOffers(c *gin.Context) {
	offers, err := h.membershipService.ListActiveOffers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get offers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    offers,
		"count":   len(offers),
	})
}

// PurchasePackage upgrades the member via a package offer
func (h *PurchaseHandler) PurchasePackage(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		OfferID uint `json:"offer_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.membershipService.PurchasePackage(userID, req.OfferID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    entry,
	})
}
