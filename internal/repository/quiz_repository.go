package repository

import (
	"eduquiz_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

func (r *QuizRepository) Update(quiz *model.Quiz) error {
	return r.DB.Save(quiz).Error
}

func (r *QuizRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Quiz{}, id).Error
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var q model.Quiz
	if err := r.DB.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuizRepository) FindByIDWithQuestions(id uint) (*model.Quiz, error) {
	var q model.Quiz
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index ASC")
	}).First(&q, id).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuizRepository) ListByCreator(creatorID uint, page, limit int) ([]model.Quiz, int64, error) {
	var quizzes []model.Quiz
	var total int64

	query := r.DB.Model(&model.Quiz{}).Where("creator_id = ?", creatorID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&quizzes).Error
	return quizzes, total, err
}

// ListByClass 班级测验列表。学生视角，未发布的不出现
func (r *QuizRepository) ListByClass(classID uint) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Where("class_id = ? AND is_active = ? AND is_published = ?", classID, true, true).
		Order("created_at DESC").Find(&quizzes).Error
	return quizzes, err
}

// ListPublicPublished 公开测验发现列表，仅含已发布且启用的
func (r *QuizRepository) ListPublicPublished(page, limit int) ([]model.Quiz, int64, error) {
	var quizzes []model.Quiz
	var total int64

	query := r.DB.Model(&model.Quiz{}).
		Where("is_public = ? AND is_published = ? AND is_active = ?", true, true, true)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("published_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&quizzes).Error
	return quizzes, total, err
}
