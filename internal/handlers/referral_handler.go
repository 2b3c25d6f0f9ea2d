package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"serve-cafe/internal/auth"
	"serve-cafe/internal/services"
)

type ReferralHandler struct {
	referralService   *services.ReferralService
	userService       *services.UserService
	commissionService *services.CommissionService
	maxDepth          int
}

func NewReferralHandler(referralService *services.ReferralService, userService *services.UserService, commissionService *services.CommissionService, maxDepth int) *ReferralHandler {
	return &ReferralHandler{
		referralService:   referralService,
		userService:       userService,
		commissionService: commissionService,
		maxDepth:          maxDepth,
	}
}

// GetReferralCode returns the user's referral code
func (h *ReferralHandler) GetReferralCode(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"referral_code": user.ReferralCode},
	})
}

// ApplyReferralCode attaches the current user to a referrer's chain
func (h *ReferralHandler) ApplyReferralCode(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.referralService.ApplyReferralCode(userID, req.Code); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Referral code applied successfully",
	})
}

// ChangeReferral re-assigns the current user's referrer
func (h *ReferralHandler) ChangeReferral(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.referralService.ChangeReferral(userID, req.Code); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Referrer changed successfully",
	})
}

// GetReferralStats returns referral statistics for the user
func (h *ReferralHandler) GetReferralStats(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	stats, err := h.referralService.GetReferralStats(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// GetReferrals returns the user's direct referrals
func (h *ReferralHandler) GetReferrals(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	referrals, err := h.referralService.GetDirectReferrals(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get referrals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    referrals,
		"count":   len(referrals),
	})
}

// GetAncestors returns the user's referral chain, direct referrer first
func (h *ReferralHandler) GetAncestors(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	depth := h.maxDepth
	if raw := c.Query("depth"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= h.maxDepth {
			depth = n
		}
	}

	ancestors, err := h.referralService.GetAncestors(userID, depth)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ancestors,
		"count":   len(ancestors),
	})
}

// GetCommissions returns commission credits earned by the user
func (h *ReferralHandler) GetCommissions(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	commissions, err := h.commissionService.CommissionsForUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get commissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    commissions,
		"count":   len(commissions),
	})
}
