package model

const (
	QuestionTypeSingleChoice   = "single_choice"
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"
	QuestionTypeShortAnswer    = "short_answer"
	QuestionTypeEssay          = "essay"
)

// swagger:model QuizQuestion
type QuizQuestion struct {
	BaseModel

	QuizID       uint   `gorm:"index;type:bigint unsigned" json:"quizId"`
	QuestionType string `gorm:"size:50;not null" json:"questionType"`
	Content      string `gorm:"type:text" json:"content"`
	Options      string `gorm:"type:json" json:"options"` // JSON 数组 [{id, text}]
	// 客观题的正确选项ID数组（简答题为可接受答案数组），JSON 存储，不下发给学生
	CorrectOptions     string `gorm:"type:json" json:"-"`
	Points             int    `gorm:"default:1" json:"points"`
	Order              int    `gorm:"column:order_index" json:"order"`
	AllowPartialCredit bool   `gorm:"default:false" json:"allowPartialCredit"`
	ManualGrading      bool   `gorm:"default:false" json:"manualGrading"`
	Explanation        string `gorm:"type:text" json:"explanation,omitempty"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// IsObjective 客观题可自动判分，essay 与 manualGrading 题目需人工评阅
func (q QuizQuestion) IsObjective() bool {
	return q.QuestionType != QuestionTypeEssay && !q.ManualGrading
}
