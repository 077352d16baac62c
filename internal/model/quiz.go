package model

import (
	"time"
)

// swagger:model Quiz
type Quiz struct {
	BaseModel

	CreatorID   uint   `gorm:"index;type:bigint unsigned" json:"creatorId"`
	ClassID     *uint  `gorm:"index;type:bigint unsigned" json:"classId,omitempty"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	CoverURL    string `gorm:"size:255" json:"coverUrl"`

	IsPublic    bool       `gorm:"default:false" json:"isPublic"`
	IsPublished bool       `gorm:"default:false" json:"isPublished"`
	IsActive    bool       `gorm:"default:true" json:"isActive"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`

	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`

	// 0 表示不限次数
	MaxAttempts      int    `gorm:"default:0" json:"maxAttempts"`
	AccessCode       string `gorm:"size:16" json:"-"`
	PublicAccessCode string `gorm:"size:16" json:"-"`

	TimeLimitMinutes int `gorm:"default:0" json:"timeLimitMinutes"`

	Questions []QuizQuestion `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}
