package model

import "time"

// swagger:model QuizAttempt
type QuizAttempt struct {
	BaseModel

	QuizID uint `gorm:"index;type:bigint unsigned;uniqueIndex:uniq_active_attempt,priority:1" json:"quizId"`
	UserID uint `gorm:"index;type:bigint unsigned;uniqueIndex:uniq_active_attempt,priority:2" json:"userId"`

	// 进行中为 1，提交后置 NULL。MySQL 唯一索引忽略 NULL 行，
	// 因此同一 (quiz, user) 同时最多存在一条进行中的记录。
	ActiveToken *uint8 `gorm:"uniqueIndex:uniq_active_attempt,priority:3" json:"-"`

	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Score       *float64   `json:"score,omitempty"`
	MaxScore    float64    `json:"maxScore"`
	NeedsManual bool       `gorm:"default:false" json:"needsManual"`
	Abandoned   bool       `gorm:"default:false" json:"abandoned"`

	IPAddress string `gorm:"size:45" json:"ipAddress"`
	UserAgent string `gorm:"size:255" json:"userAgent"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

func (a *QuizAttempt) InProgress() bool {
	return a.CompletedAt == nil
}
