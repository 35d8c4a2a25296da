package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"xogs-backend/internal/models"
)

type AdminService struct {
	db     *gorm.DB
	ledger *LedgerService
	mu     sync.Mutex
}

func NewAdminService(db *gorm.DB, ledger *LedgerService) *AdminService {
	return &AdminService{db: db, ledger: ledger}
}

// IsAdmin checks if a user is an admin
func (s *AdminService) IsAdmin(userID uint) bool {
	var admin models.AdminUser
	result := s.db.Where("user_id = ?", userID).First(&admin)
	return result.Error == nil
}

// GetAdminByUserID gets admin by user ID
func (s *AdminService) GetAdminByUserID(userID uint) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := s.db.Where("user_id = ?", userID).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// PromoteUserToAdmin promotes a user to admin
func (s *AdminService) PromoteUserToAdmin(userID uint, role string, promotedByAdminID uint) (*models.AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	var existing models.AdminUser
	if err := s.db.Where("user_id = ?", userID).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("user is already an admin")
	}

	permissions := models.JSONB{
		"manage_users":   true,
		"manage_tasks":   true,
		"resync_ledgers": role == "SUPER_ADMIN",
		"view_analytics": true,
	}

	adminUser := models.AdminUser{
		UserID:      userID,
		Role:        role,
		Permissions: permissions,
	}

	if err := s.db.Create(&adminUser).Error; err != nil {
		return nil, fmt.Errorf("failed to promote user: %w", err)
	}

	s.LogAdminAction(promotedByAdminID, "PROMOTE_USER", "USER", &userID, map[string]interface{}{
		"role": role,
	})

	log.Printf("User %d promoted to %s", userID, role)
	return &adminUser, nil
}

// RestrictUser restricts a user (ban, suspend, etc.)
func (s *AdminService) RestrictUser(userID uint, restrictionType string, reason string,
	durationDays *int, adminID uint) (*models.UserRestriction, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	var expiresAt *time.Time
	if durationDays != nil {
		expTime := time.Now().AddDate(0, 0, *durationDays)
		expiresAt = &expTime
	}

	restriction := models.UserRestriction{
		UserID:          userID,
		RestrictionType: restrictionType,
		Reason:          reason,
		DurationDays:    durationDays,
		CreatedBy:       adminID,
		ExpiresAt:       expiresAt,
		IsActive:        true,
	}

	if err := s.db.Create(&restriction).Error; err != nil {
		return nil, fmt.Errorf("failed to restrict user: %w", err)
	}

	s.LogAdminAction(adminID, "RESTRICT_USER", "USER", &userID, map[string]interface{}{
		"restriction_type": restrictionType,
		"reason":           reason,
	})

	return &restriction, nil
}

// RemoveRestriction deactivates a restriction
func (s *AdminService) RemoveRestriction(restrictionID uint, adminID uint) error {
	if err := s.db.Model(&models.UserRestriction{}).Where("id = ?", restrictionID).
		Update("is_active", false).Error; err != nil {
		return fmt.Errorf("failed to remove restriction: %w", err)
	}

	s.LogAdminAction(adminID, "REMOVE_RESTRICTION", "RESTRICTION", &restrictionID, nil)
	return nil
}

// GetUserRestrictions returns restrictions for a user
func (s *AdminService) GetUserRestrictions(userID uint) ([]models.UserRestriction, error) {
	var restrictions []models.UserRestriction
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").
		Find(&restrictions).Error; err != nil {
		return nil, err
	}
	return restrictions, nil
}

// GetAllUsers returns users with pagination and optional username search
func (s *AdminService) GetAllUsers(limit, offset int, search string) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})
	if search != "" {
		query = query.Where("twitter_username LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ResyncUserBalance rebuilds a user's balance from their transaction history
// and records the action in the audit log.
func (s *AdminService) ResyncUserBalance(userID uint, adminID uint) (int64, *models.Transaction, error) {
	balance, adjustment, err := s.ledger.ResyncBalance(userID)
	if err != nil {
		return 0, nil, err
	}

	details := map[string]interface{}{"balance": balance}
	if adjustment != nil {
		details["drift"] = adjustment.Amount
	}
	s.LogAdminAction(adminID, "RESYNC_BALANCE", "USER", &userID, details)

	return balance, adjustment, nil
}

// LogAdminAction records an admin action in the audit trail
func (s *AdminService) LogAdminAction(adminID uint, action, resourceType string, resourceID *uint, details map[string]interface{}) {
	logEntry := models.AdminLog{
		AdminID:      adminID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
	}

	if err := s.db.Create(&logEntry).Error; err != nil {
		log.Printf("Warning: failed to write admin log: %v", err)
	}
}

// GetAdminLogs returns admin activity logs
func (s *AdminService) GetAdminLogs(limit, offset int) ([]models.AdminLog, error) {
	var logs []models.AdminLog
	if err := s.db.Preload("Admin").Preload("Admin.User").
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// DashboardStats summarizes platform-wide counters for the admin dashboard
type DashboardStats struct {
	TotalUsers        int64 `json:"total_users"`
	TotalInvites      int64 `json:"total_invites"`
	TotalTransactions int64 `json:"total_transactions"`
	TotalXogsIssued   int64 `json:"total_xogs_issued"`
}

// GetDashboardStats aggregates the platform counters
func (s *AdminService) GetDashboardStats() (*DashboardStats, error) {
	var stats DashboardStats

	if err := s.db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.InviteRecord{}).Count(&stats.TotalInvites).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Transaction{}).Count(&stats.TotalTransactions).Error; err != nil {
		return nil, err
	}

	row := s.db.Model(&models.Transaction{}).Where("amount > 0").
		Select("COALESCE(SUM(amount), 0)").Row()
	if err := row.Scan(&stats.TotalXogsIssued); err != nil {
		return nil, err
	}

	return &stats, nil
}
