package services

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"xogs-backend/internal/models"
	"xogs-backend/internal/twitter"
)

// AuthService handles sign-in: find-or-create by X identity, initial score
// crediting and invite code provisioning for new accounts.
type AuthService struct {
	db      *gorm.DB
	users   *UserService
	invites *InviteService
}

// NewAuthService creates a new AuthService
func NewAuthService(db *gorm.DB, users *UserService, invites *InviteService) *AuthService {
	return &AuthService{db: db, users: users, invites: invites}
}

// ProcessTwitterLogin finds or creates a user from an OAuth profile. New
// users get their profile applied (which computes the first AI score and
// credits it) and a batch of invite codes.
func (s *AuthService) ProcessTwitterLogin(profile *twitter.Profile, now time.Time) (*models.User, error) {
	var user models.User
	result := s.db.Where("twitter_id = ?", profile.TwitterID).First(&user)

	if result.Error == gorm.ErrRecordNotFound {
		user = models.User{
			TwitterID:        profile.TwitterID,
			TwitterUsername:  profile.Username,
			DisplayName:      profile.Name,
			AvatarURL:        profile.AvatarURL,
			TwitterCreatedAt: profile.CreatedAt,
		}

		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		if err := s.invites.GenerateInviteCodes(user.ID); err != nil {
			log.Printf("Warning: failed to generate invite codes for user %d: %v", user.ID, err)
		}

		log.Printf("New user created: @%s (ID: %d)", profile.Username, user.ID)
	} else if result.Error != nil {
		return nil, fmt.Errorf("database error: %w", result.Error)
	} else {
		log.Printf("User logged in: @%s (ID: %d)", profile.Username, user.ID)
	}

	// Login always carries a fresh profile snapshot; apply it either way.
	return s.users.ApplyProfile(user.ID, profile, now)
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(userID uint) (*models.User, error) {
	return s.users.GetUserByID(userID)
}
