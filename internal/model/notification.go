package model

const (
	NotificationQuizPublished   = "quiz_published"
	NotificationStudentEnrolled = "student_enrolled"
	NotificationGradePosted     = "grade_posted"
)

// swagger:model Notification
type Notification struct {
	BaseModel
	UserID  uint   `gorm:"index;type:bigint unsigned" json:"userId"`
	Kind    string `gorm:"size:50;not null" json:"kind"`
	Title   string `gorm:"size:255" json:"title"`
	Body    string `gorm:"type:text" json:"body"`
	QuizID  *uint  `gorm:"type:bigint unsigned" json:"quizId,omitempty"`
	ClassID *uint  `gorm:"type:bigint unsigned" json:"classId,omitempty"`
	IsRead  bool   `gorm:"default:false" json:"isRead"`
}

func (Notification) TableName() string {
	return "notifications"
}
