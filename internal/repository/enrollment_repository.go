package repository

import (
	"eduquiz_backend/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) Create(e *model.ClassEnrollment) error {
	return r.DB.Create(e).Error
}

func (r *EnrollmentRepository) Delete(classID, studentID uint) error {
	return r.DB.Where("class_id = ? AND student_id = ?", classID, studentID).
		Delete(&model.ClassEnrollment{}).Error
}

func (r *EnrollmentRepository) Exists(classID, studentID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.ClassEnrollment{}).
		Where("class_id = ? AND student_id = ?", classID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (r *EnrollmentRepository) ListByClass(classID uint) ([]model.ClassEnrollment, error) {
	var enrollments []model.ClassEnrollment
	err := r.DB.Where("class_id = ?", classID).Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) ListByStudent(studentID uint) ([]model.ClassEnrollment, error) {
	var enrollments []model.ClassEnrollment
	err := r.DB.Where("student_id = ?", studentID).Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) StudentIDsByClass(classID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.ClassEnrollment{}).
		Where("class_id = ?", classID).
		Pluck("student_id", &ids).Error
	return ids, err
}
