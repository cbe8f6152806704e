package services

import (
	"errors"
	"time"

	"github.com/slowpost-labs/slowpost-api/internal/models"
	"gorm.io/gorm"
)

// ErrLetterNotFound is returned when a letter does not exist or belongs
// to another user. Both cases look identical to the caller.
var ErrLetterNotFound = errors.New("letter not found")

type LetterService struct {
	db *gorm.DB
}

func NewLetterService(db *gorm.DB) *LetterService {
	return &LetterService{db: db}
}

// CreateLetter persists a new letter with its goals
func (s *LetterService) CreateLetter(letter *models.Letter) error {
	return s.db.Create(letter).Error
}

// GetLetterByID retrieves a letter owned by ownerID, with goals preloaded
func (s *LetterService) GetLetterByID(ownerID, letterID uint) (*models.Letter, error) {
	var letter models.Letter
	err := s.db.Preload("Goals").
		Where("id = ? AND user_id = ?", letterID, ownerID).
		First(&letter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLetterNotFound
		}
		return nil, err
	}
	return &letter, nil
}

// ListLetters returns all letters for a user, newest first
func (s *LetterService) ListLetters(ownerID uint) ([]models.Letter, error) {
	var letters []models.Letter
	err := s.db.Preload("Goals").
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&letters).Error
	return letters, err
}

// UpdateLetter updates the mutable fields of an undelivered letter.
// Delivered letters are immutable.
func (s *LetterService) UpdateLetter(ownerID, letterID uint, updates map[string]interface{}) (*models.Letter, error) {
	letter, err := s.GetLetterByID(ownerID, letterID)
	if err != nil {
		return nil, err
	}
	if letter.Delivered {
		return nil, models.NewValidationError("delivered letters cannot be edited", map[string]string{
			"letter_id": "letter has already been delivered",
		})
	}
	if err := s.db.Model(letter).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetLetterByID(ownerID, letterID)
}

// DeleteLetter soft-deletes a letter and its goals
func (s *LetterService) DeleteLetter(ownerID, letterID uint) error {
	letter, err := s.GetLetterByID(ownerID, letterID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("letter_id = ?", letter.ID).Delete(&models.Goal{}).Error; err != nil {
			return err
		}
		return tx.Delete(letter).Error
	})
}

// UpdateGoalStatus changes the status of a single goal on a user's letter
func (s *LetterService) UpdateGoalStatus(ownerID, letterID, goalID uint, status string) error {
	if _, err := s.GetLetterByID(ownerID, letterID); err != nil {
		return err
	}
	result := s.db.Model(&models.Goal{}).
		Where("id = ? AND letter_id = ?", goalID, letterID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLetterNotFound
	}
	return nil
}

// DeliverDue marks every letter whose delivery time has passed as
// delivered. Intended to run on a schedule; returns the number delivered.
func (s *LetterService) DeliverDue(now time.Time) (int64, error) {
	result := s.db.Model(&models.Letter{}).
		Where("delivered = ? AND deliver_at <= ?", false, now).
		Update("delivered", true)
	return result.RowsAffected, result.Error
}

// GetUsageStats computes journaling activity stats for a user
func (s *LetterService) GetUsageStats(ownerID uint) (*models.UsageStats, error) {
	stats := &models.UsageStats{}

	var lettersWritten int64
	if err := s.db.Model(&models.Letter{}).
		Where("user_id = ?", ownerID).
		Count(&lettersWritten).Error; err != nil {
		return nil, err
	}
	stats.LettersWritten = int(lettersWritten)

	var goalsAccomplished int64
	if err := s.db.Model(&models.Goal{}).
		Joins("JOIN letters ON letters.id = goals.letter_id").
		Where("letters.user_id = ? AND goals.status = ?", ownerID, models.GoalStatusAccomplished).
		Count(&goalsAccomplished).Error; err != nil {
		return nil, err
	}
	stats.GoalsAccomplished = int(goalsAccomplished)

	streak, err := s.currentStreak(ownerID)
	if err != nil {
		return nil, err
	}
	stats.CurrentStreak = streak

	return stats, nil
}

// currentStreak counts consecutive calendar days with at least one letter,
// ending today or yesterday. A user who wrote yesterday but not yet today
// still has a live streak.
func (s *LetterService) currentStreak(ownerID uint) (int, error) {
	var days []time.Time
	err := s.db.Model(&models.Letter{}).
		Where("user_id = ?", ownerID).
		Select("DATE(created_at) as day").
		Group("day").
		Order("day DESC").
		Pluck("day", &days).Error
	if err != nil {
		return 0, err
	}
	if len(days) == 0 {
		return 0, nil
	}

	today := time.Now().Truncate(24 * time.Hour)
	latest := days[0].Truncate(24 * time.Hour)
	if today.Sub(latest) > 24*time.Hour {
		return 0, nil
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		prev := days[i-1].Truncate(24 * time.Hour)
		cur := days[i].Truncate(24 * time.Hour)
		if prev.Sub(cur) != 24*time.Hour {
			break
		}
		streak++
	}
	return streak, nil
}

// LogGeneration records one generation call for analytics
func (s *LetterService) LogGeneration(entry *models.GenerationLog) error {
	return s.db.Create(entry).Error
}

// GetGenerationStats aggregates a user's generation activity over a window
func (s *LetterService) GetGenerationStats(ownerID uint, from, to time.Time) (*GenerationStats, error) {
	var stats GenerationStats

	query := s.db.Model(&models.GenerationLog{}).Where("user_id = ?", ownerID)
	if !from.IsZero() {
		query = query.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("created_at <= ?", to)
	}

	if err := query.Select(
		"COUNT(*) as total_requests",
		"COALESCE(SUM(total_tokens), 0) as total_tokens_used",
		"COALESCE(SUM(CASE WHEN degraded THEN 1 ELSE 0 END), 0) as degraded_requests",
		"COALESCE(AVG(duration_ms), 0) as avg_duration_ms",
	).Scan(&stats).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

type GenerationStats struct {
	TotalRequests    int64   `json:"total_requests"`
	TotalTokensUsed  int64   `json:"total_tokens_used"`
	DegradedRequests int64   `json:"degraded_requests"`
	AvgDurationMS    float64 `json:"avg_duration_ms"`
}
