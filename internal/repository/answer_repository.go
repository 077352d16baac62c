package repository

import (
	"eduquiz_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

// UpsertBatch 按 (attempt_id, question_id) 幂等写入，同题重复提交覆盖不重复
func (r *AnswerRepository) UpsertBatch(tx *gorm.DB, answers []model.AttemptAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"selected_options", "text_content", "awarded_points", "updated_at",
		}),
	}).Create(&answers).Error
}

func (r *AnswerRepository) ListByAttempt(attemptID uint) ([]model.AttemptAnswer, error) {
	var answers []model.AttemptAnswer
	err := r.DB.Where("attempt_id = ?", attemptID).Find(&answers).Error
	return answers, err
}
