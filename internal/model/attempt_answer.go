package model

// AttemptAnswer 一次作答中单题的答案，(attempt_id, question_id) 唯一，重复提交覆盖
type AttemptAnswer struct {
	BaseModel
	AttemptID       uint     `gorm:"index;type:bigint unsigned;uniqueIndex:uniq_attempt_question,priority:1" json:"attemptId"`
	QuestionID      uint     `gorm:"index;type:bigint unsigned;uniqueIndex:uniq_attempt_question,priority:2" json:"questionId"`
	SelectedOptions string   `gorm:"type:json" json:"selectedOptions"` // JSON 选项ID数组
	TextContent     string   `gorm:"type:text" json:"textContent"`
	AwardedPoints   *float64 `json:"awardedPoints,omitempty"` // 人工评阅题提交时为 NULL
}

func (AttemptAnswer) TableName() string {
	return "attempt_answers"
}
