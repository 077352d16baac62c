package repository

import (
	"eduquiz_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(q *model.QuizQuestion) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) CreateBatch(questions []model.QuizQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	return r.DB.Create(&questions).Error
}

func (r *QuestionRepository) Update(q *model.QuizQuestion) error {
	return r.DB.Save(q).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.QuizQuestion, error) {
	var q model.QuizQuestion
	if err := r.DB.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) ListByQuiz(quizID uint) ([]model.QuizQuestion, error) {
	var questions []model.QuizQuestion
	err := r.DB.Where("quiz_id = ?", quizID).Order("order_index ASC").Find(&questions).Error
	return questions, err
}

func (r *QuestionRepository) DeleteByQuiz(quizID uint) error {
	return r.DB.Where("quiz_id = ?", quizID).Delete(&model.QuizQuestion{}).Error
}

func (r *QuestionRepository) DeleteByID(id uint) error {
	return r.DB.Delete(&model.QuizQuestion{}, id).Error
}
