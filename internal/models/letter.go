package models

import (
	"time"

	"gorm.io/gorm"
)

// Goal status values. New goals start as "pending".
const (
	GoalStatusPending      = "pending"
	GoalStatusInProgress   = "in_progress"
	GoalStatusAccomplished = "accomplished"
	GoalStatusAbandoned    = "abandoned"
)

// Letter is a message a user writes to their future self. Reflection
// questions can only be generated once the letter has been delivered.
type Letter struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"-"`
	Title     string         `json:"title"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	Mood      string         `json:"mood,omitempty"`
	DeliverAt time.Time      `gorm:"not null;index" json:"deliver_at"`
	Delivered bool           `gorm:"default:false;index" json:"delivered"`
	Goals     []Goal         `gorm:"foreignKey:LetterID" json:"goals,omitempty"`
}

// Goal is an intention attached to a letter at writing time.
type Goal struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	LetterID  uint           `gorm:"not null;index" json:"letter_id"`
	Text      string         `gorm:"not null" json:"text"`
	Status    string         `gorm:"default:'pending'" json:"status"`
}

// UsageStats summarizes a user's journaling activity. Computed on demand,
// never persisted; only strictly positive values surface in prompts.
type UsageStats struct {
	CurrentStreak     int `json:"current_streak"`
	LettersWritten    int `json:"letters_written"`
	GoalsAccomplished int `json:"goals_accomplished"`
}
