package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"serve-cafe/internal/auth"
	"serve-cafe/internal/services"
)

type WalletHandler struct {
	walletService   *services.WalletService
	ledgerService   *services.LedgerService
	purchaseService *services.PurchaseService
}

func NewWalletHandler(walletService *services.WalletService, ledgerService *services.LedgerService, purchaseService *services.PurchaseService) *WalletHandler {
	return &WalletHandler{
		walletService:   walletService,
		ledgerService:   ledgerService,
		purchaseService: purchaseService,
	}
}

// GetBalance returns the user's projected wallet balance
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	balance, err := h.walletService.GetBalance(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get balance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"balance": balance},
	})
}

// GetTransactions returns a page of the user's ledger entries
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	var from, to time.Time
	if raw := c.Query("from"); raw != "" {
		from, _ = time.Parse("2006-01-02", raw)
	}
	if raw := c.Query("to"); raw != "" {
		to, _ = time.Parse("2006-01-02", raw)
	}

	entries, err := h.ledgerService.EntriesForUser(userID, from, to, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entries,
		"count":   len(entries),
	})
}

// Deposit credits the user's wallet
func (h *WalletHandler) Deposit(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Amount string `json:"amount" binding:"required"`
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

	entry, err := h.purchaseService.Deposit(userID, amount)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    entry,
	})
}

// Reconcile checks the stored projection against a full ledger replay
func (h *WalletHandler) Reconcile(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.walletService.Reconcile(userID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Wallet reconciled",
	})
}
