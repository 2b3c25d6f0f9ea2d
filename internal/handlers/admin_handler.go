package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"serve-cafe/internal/models"
	"serve-cafe/internal/services"
)

type AdminHandler struct {
	db            *gorm.DB
	roleService   *services.RoleService
	userService   *services.UserService
	ledgerService *services.LedgerService
	walletService *services.WalletService
}

func NewAdminHandler(db *gorm.DB, roleService *services.RoleService, userService *services.UserService, ledgerService *services.LedgerService, walletService *services.WalletService) *AdminHandler {
	return &AdminHandler{
		db:            db,
		roleService:   roleService,
		userService:   userService,
		ledgerService: ledgerService,
		walletService: walletService,
	}
}

// --- Roles ---

// CreateRole defines a role; wildcard permissions are expanded immediately
func (h *AdminHandler) CreateRole(c *gin.Context) {
	var req struct {
		Name        string   `json:"name" binding:"required"`
		UserType    string   `json:"user_type" binding:"required"`
		Permissions []string `json:"permissions" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := h.roleService.CreateRole(req.Name, req.UserType, req.Permissions)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": role})
}

// ListRoles returns all roles
func (h *AdminHandler) ListRoles(c *gin.Context) {
	roles, err := h.roleService.ListRoles()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get roles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": roles})
}

// AssignRole attaches a role to a user
func (h *AdminHandler) AssignRole(c *gin.Context) {
	var req struct {
		UserID uint `json:"user_id" binding:"required"`
		RoleID uint `json:"role_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.roleService.AssignRole(req.UserID, req.RoleID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- Branches ---

// CreateBranch adds an office/outlet
func (h *AdminHandler) CreateBranch(c *gin.Context) {
	var req struct {
		Name           string `json:"name" binding:"required"`
		Code           string `json:"code" binding:"required"`
		Address        string `json:"address"`
		CommissionRate string `json:"commission_rate"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rate := decimal.NewFromInt(1)
	if req.CommissionRate != "" {
		parsed, err := decimal.NewFromString(req.CommissionRate)
		if err != nil || parsed.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid commission_rate"})
			return
		}
		rate = parsed
	}

	branch := models.Branch{
		Name:           req.Name,
		Code:           req.Code,
		Address:        req.Address,
		CommissionRate: rate,
		IsActive:       true,
	}
	if err := h.db.Create(&branch).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create branch"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": branch})
}

// ListBranches returns all branches
func (h *AdminHandler) ListBranches(c *gin.Context) {
	var branches []models.Branch
	if err := h.db.Order("code").Find(&branches).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get branches"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": branches})
}

// --- Package offers ---

// CreatePackageOffer adds a membership package
func (h *AdminHandler) CreatePackageOffer(c *gin.Context) {
	var req struct {
		Name          string `json:"name" binding:"required"`
		Description   string `json:"description"`
		Price         string `json:"price" binding:"required"`
		ValidFromDate string `json:"valid_from_date" binding:"required"`
		ValidToDate   string `json:"valid_to_date" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || !price.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
		return
	}

	from, err := time.Parse("2006-01-02", req.ValidFromDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid valid_from_date"})
		return
	}
	to, err := time.Parse("2006-01-02", req.ValidToDate)
	if err != nil || to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid valid_to_date"})
		return
	}

	offer := models.PackageOffer{
		Name:          req.Name,
		Description:   req.Description,
		Price:         price,
		ValidFromDate: from,
		ValidToDate:   to,
		IsActive:      true,
	}
	if err := h.db.Create(&offer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create offer"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": offer})
}

// --- Commission rates ---

// UpsertCommissionRate sets the payout rate for a (member_type, level) pair
func (h *AdminHandler) UpsertCommissionRate(c *gin.Context) {
	var req struct {
		MemberType  string `json:"member_type" binding:"required"`
		Level       int    `json:"level" binding:"required"`
		RatePercent string `json:"rate_percent" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.MemberType != models.MemberTypeFree && req.MemberType != models.MemberTypePaid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member_type"})
		return
	}
	if req.Level < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Level must be at least 1"})
		return
	}

	rate, err := decimal.NewFromString(req.RatePercent)
	if err != nil || rate.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rate_percent"})
		return
	}

	var existing models.CommissionRate
	result := h.db.Where("member_type = ? AND level = ?", req.MemberType, req.Level).First(&existing)
	if result.Error == gorm.ErrRecordNotFound {
		existing = models.CommissionRate{
			MemberType:  req.MemberType,
			Level:       req.Level,
			RatePercent: rate,
		}
		if err := h.db.Create(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create rate"})
			return
		}
	} else if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get rate"})
		return
	} else if err := h.db.Model(&existing).Update("rate_percent", rate).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update rate"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": existing})
}

// ListCommissionRates returns the full policy table
func (h *AdminHandler) ListCommissionRates(c *gin.Context) {
	var rates []models.CommissionRate
	if err := h.db.Order("member_type, level").Find(&rates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get rates"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rates})
}

// --- Users ---

// ListUsers returns a page of users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	users, err := h.userService.ListUsers(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": users, "count": len(users)})
}

// SetUserActive activates or deactivates an account
func (h *AdminHandler) SetUserActive(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userService.SetActive(uint(userID), *req.Active); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- Ledger maintenance ---

// SettleEntry moves a pending ledger entry to settled
func (h *AdminHandler) SettleEntry(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry id"})
		return
	}

	if err := h.ledgerService.Settle(uint(id)); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// FailEntry moves a pending ledger entry to failed
func (h *AdminHandler) FailEntry(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry id"})
		return
	}

	if err := h.ledgerService.Fail(uint(id)); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RepairWallet rebuilds a user's wallet projection from the ledger
func (h *AdminHandler) RepairWallet(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	if err := h.walletService.Repair(uint(userID)); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
