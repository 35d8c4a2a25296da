package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"xogs-backend/internal/models"
	"xogs-backend/internal/score"
	"xogs-backend/internal/twitter"
)

// UserService handles user-related business logic: profile reads, refreshes
// from the X API, score recomputation and leaderboard queries.
type UserService struct {
	db      *gorm.DB
	fetcher twitter.ProfileFetcher
	ledger  *LedgerService
}

// NewUserService creates a new UserService
func NewUserService(db *gorm.DB, fetcher twitter.ProfileFetcher, ledger *LedgerService) *UserService {
	return &UserService{db: db, fetcher: fetcher, ledger: ledger}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ScoreForUser computes the score breakdown for a user's stored profile
func (s *UserService) ScoreForUser(userID uint, now time.Time) (*score.Result, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	result := score.Compute(snapshotOf(user), now)
	return &result, nil
}

// ApplyProfile overwrites the stored profile attributes with a fresh
// snapshot, recomputes the AI score wholesale and credits any positive score
// delta through the ledger.
func (s *UserService) ApplyProfile(userID uint, profile *twitter.Profile, now time.Time) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	result := score.Compute(score.Snapshot{
		FollowersCount:   profile.FollowersCount,
		FriendsCount:     profile.FriendsCount,
		StatusesCount:    profile.StatusesCount,
		Verified:         profile.Verified,
		AccountCreatedAt: profile.CreatedAt,
	}, now)

	updates := map[string]interface{}{
		"twitter_username":   profile.Username,
		"display_name":       profile.Name,
		"avatar_url":         profile.AvatarURL,
		"followers_count":    profile.FollowersCount,
		"friends_count":      profile.FriendsCount,
		"statuses_count":     profile.StatusesCount,
		"verified":           profile.Verified,
		"twitter_created_at": profile.CreatedAt,
		"ai_score":           result.Total,
		"last_refreshed_at":  now,
	}

	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if _, err := s.ledger.CreditBaseScore(userID, result.Total); err != nil {
		return nil, err
	}

	if result.Total != user.AIScore {
		log.Printf("Score recomputed for user %d: %d -> %d", userID, user.AIScore, result.Total)
	}

	return s.GetUserByID(userID)
}

// RefreshProfile re-fetches the user's profile from the X API and applies it
func (s *UserService) RefreshProfile(ctx context.Context, userID uint, now time.Time) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	profile, err := s.fetcher.FetchByID(ctx, user.TwitterID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	return s.ApplyProfile(userID, profile, now)
}

// StaleUsers returns users whose profile has not been refreshed since the cutoff
func (s *UserService) StaleUsers(cutoff time.Time, limit int) ([]models.User, error) {
	var users []models.User
	if err := s.db.Where("last_refreshed_at IS NULL OR last_refreshed_at < ?", cutoff).
		Order("last_refreshed_at ASC NULLS FIRST").Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Leaderboard returns the top users by AI score
func (s *UserService) Leaderboard(limit, offset int) ([]models.User, int64, error) {
	var total int64
	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := s.db.Order("ai_score DESC, id ASC").Limit(limit).Offset(offset).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func snapshotOf(user *models.User) score.Snapshot {
	return score.Snapshot{
		FollowersCount:   user.FollowersCount,
		FriendsCount:     user.FriendsCount,
		StatusesCount:    user.StatusesCount,
		Verified:         user.Verified,
		AccountCreatedAt: user.TwitterCreatedAt,
	}
}
