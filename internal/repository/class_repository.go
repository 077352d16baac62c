package repository

import (
	"eduquiz_backend/internal/model"

	"gorm.io/gorm"
)

type ClassRepository struct {
	DB *gorm.DB
}

func NewClassRepository(db *gorm.DB) *ClassRepository {
	return &ClassRepository{DB: db}
}

func (r *ClassRepository) Create(class *model.Class) error {
	return r.DB.Create(class).Error
}

func (r *ClassRepository) Update(class *model.Class) error {
	return r.DB.Save(class).Error
}

func (r *ClassRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Class{}, id).Error
}

func (r *ClassRepository) FindByID(id uint) (*model.Class, error) {
	var c model.Class
	if err := r.DB.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClassRepository) FindByJoinCode(code string) (*model.Class, error) {
	var c model.Class
	if err := r.DB.Where("join_code = ?", code).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClassRepository) ListByTeacher(teacherID uint, page, limit int) ([]model.Class, int64, error) {
	var classes []model.Class
	var total int64

	query := r.DB.Model(&model.Class{}).Where("teacher_id = ?", teacherID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&classes).Error
	return classes, total, err
}

func (r *ClassRepository) ListPublic(page, limit int) ([]model.Class, int64, error) {
	var classes []model.Class
	var total int64

	query := r.DB.Model(&model.Class{}).Where("type = ?", model.ClassTypePublic)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&classes).Error
	return classes, total, err
}
