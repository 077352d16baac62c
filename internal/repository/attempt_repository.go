package repository

import (
	"eduquiz_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.QuizAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) Update(attempt *model.QuizAttempt) error {
	return r.DB.Save(attempt).Error
}

func (r *AttemptRepository) FindByID(id uint) (*model.QuizAttempt, error) {
	var a model.QuizAttempt
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) CountByUserAndQuiz(userID, quizID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Count(&count).Error
	return count, err
}

// ExistsInProgress 某学生在某测验上是否有进行中的作答（无锁快照，策略评估用）
func (r *AttemptRepository) ExistsInProgress(userID, quizID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ? AND completed_at IS NULL", userID, quizID).
		Count(&count).Error
	return count > 0, err
}

// CountInProgress 统计某测验未完成的作答数，下架前置检查用
func (r *AttemptRepository) CountInProgress(quizID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizAttempt{}).
		Where("quiz_id = ? AND completed_at IS NULL", quizID).
		Count(&count).Error
	return count, err
}

func (r *AttemptRepository) CountByQuiz(quizID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizAttempt{}).
		Where("quiz_id = ?", quizID).
		Count(&count).Error
	return count, err
}

// FindInProgressForUpdate 事务内按 (user, quiz) 查进行中的作答并加行锁，
// 与 uniq_active_attempt 唯一索引共同封闭并发 start 的竞态
func (r *AttemptRepository) FindInProgressForUpdate(tx *gorm.DB, userID, quizID uint) (*model.QuizAttempt, error) {
	var a model.QuizAttempt
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND quiz_id = ? AND completed_at IS NULL", userID, quizID).
		Order("started_at DESC").
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) FindByIDForUpdate(tx *gorm.DB, id uint) (*model.QuizAttempt, error) {
	var a model.QuizAttempt
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) ListByUserAndQuiz(userID, quizID uint) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("started_at DESC").
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListByUser(userID uint, page, limit int) ([]model.QuizAttempt, int64, error) {
	var attempts []model.QuizAttempt
	var total int64

	query := r.DB.Model(&model.QuizAttempt{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("started_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&attempts).Error
	return attempts, total, err
}

func (r *AttemptRepository) ListByQuiz(quizID uint, page, limit int) ([]model.QuizAttempt, int64, error) {
	var attempts []model.QuizAttempt
	var total int64

	query := r.DB.Model(&model.QuizAttempt{}).Where("quiz_id = ?", quizID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("started_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&attempts).Error
	return attempts, total, err
}
