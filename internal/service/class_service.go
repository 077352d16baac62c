package service

import (
	"errors"

	"eduquiz_backend/internal/model"
	"eduquiz_backend/internal/repository"
	"eduquiz_backend/internal/util"

	"gorm.io/gorm"
)

type ClassService struct {
	ClassRepo      *repository.ClassRepository
	EnrollmentRepo *repository.EnrollmentRepository
	UserRepo       *repository.UserRepository
	Notifier       *NotificationService
}

func NewClassService(classRepo *repository.ClassRepository, enrollmentRepo *repository.EnrollmentRepository, userRepo *repository.UserRepository, notifier *NotificationService) *ClassService {
	return &ClassService{
		ClassRepo:      classRepo,
		EnrollmentRepo: enrollmentRepo,
		UserRepo:       userRepo,
		Notifier:       notifier,
	}
}

type ClassCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Type        string `json:"type" binding:"omitempty,oneof=public private"`
}

func (s *ClassService) CreateClass(teacherID uint, req ClassCreateRequest) (*model.Class, error) {
	classType := req.Type
	if classType == "" {
		classType = model.ClassTypePrivate
	}
	class := &model.Class{
		TeacherID:   teacherID,
		Name:        req.Name,
		Description: req.Description,
		Type:        classType,
		JoinCode:    util.ShortCode(model.GenerateUUID(), 8),
	}
	if err := s.ClassRepo.Create(class); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *ClassService) UpdateClass(teacherID uint, role model.UserRole, classID uint, req ClassCreateRequest) (*model.Class, error) {
	class, err := s.findOwnedClass(teacherID, role, classID)
	if err != nil {
		return nil, err
	}
	class.Name = req.Name
	class.Description = req.Description
	if req.Type != "" {
		class.Type = req.Type
	}
	if err := s.ClassRepo.Update(class); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *ClassService) DeleteClass(teacherID uint, role model.UserRole, classID uint) error {
	if _, err := s.findOwnedClass(teacherID, role, classID); err != nil {
		return err
	}
	return s.ClassRepo.Delete(classID)
}

// RegenerateJoinCode 换新加入码，旧码立即失效
func (s *ClassService) RegenerateJoinCode(teacherID uint, role model.UserRole, classID uint) (string, error) {
	class, err := s.findOwnedClass(teacherID, role, classID)
	if err != nil {
		return "", err
	}
	class.JoinCode = util.ShortCode(model.GenerateUUID(), 8)
	if err := s.ClassRepo.Update(class); err != nil {
		return "", err
	}
	return class.JoinCode, nil
}

// JoinByCode 学生凭加入码入班。班主任不能作为学生加入自己的班级
func (s *ClassService) JoinByCode(studentID uint, code string) (*model.Class, error) {
	class, err := s.ClassRepo.FindByJoinCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidJoinCode
		}
		return nil, err
	}
	if err := s.enroll(class, studentID); err != nil {
		return nil, err
	}
	return class, nil
}

// JoinPublic 公开班级可直接加入，无需加入码
func (s *ClassService) JoinPublic(studentID, classID uint) (*model.Class, error) {
	class, err := s.ClassRepo.FindByID(classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrClassNotFound
		}
		return nil, err
	}
	if class.Type != model.ClassTypePublic {
		return nil, util.ErrPermissionDenied
	}
	if err := s.enroll(class, studentID); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *ClassService) enroll(class *model.Class, studentID uint) error {
	if class.TeacherID == studentID {
		return util.ErrOwnerCannotEnroll
	}
	exists, err := s.EnrollmentRepo.Exists(class.ID, studentID)
	if err != nil {
		return err
	}
	if exists {
		return util.ErrAlreadyEnrolled
	}
	if err := s.EnrollmentRepo.Create(&model.ClassEnrollment{
		ClassID:   class.ID,
		StudentID: studentID,
	}); err != nil {
		return err
	}

	if student, err := s.UserRepo.FindByID(studentID); err == nil {
		s.Notifier.Dispatch(StudentEnrolledJob{Class: class, Student: student})
	}
	return nil
}

func (s *ClassService) Leave(studentID, classID uint) error {
	exists, err := s.EnrollmentRepo.Exists(classID, studentID)
	if err != nil {
		return err
	}
	if !exists {
		return util.ErrClassNotFound
	}
	return s.EnrollmentRepo.Delete(classID, studentID)
}

// Roster 班级学生名单，仅班主任/管理员可见
func (s *ClassService) Roster(requesterID uint, role model.UserRole, classID uint) ([]model.User, error) {
	if _, err := s.findOwnedClass(requesterID, role, classID); err != nil {
		return nil, err
	}
	ids, err := s.EnrollmentRepo.StudentIDsByClass(classID)
	if err != nil {
		return nil, err
	}
	return s.UserRepo.FindByIDs(ids)
}

func (s *ClassService) ListForTeacher(teacherID uint, page, limit int) ([]model.Class, int64, error) {
	return s.ClassRepo.ListByTeacher(teacherID, page, limit)
}

func (s *ClassService) ListForStudent(studentID uint) ([]model.Class, error) {
	enrollments, err := s.EnrollmentRepo.ListByStudent(studentID)
	if err != nil {
		return nil, err
	}
	classes := make([]model.Class, 0, len(enrollments))
	for _, e := range enrollments {
		class, err := s.ClassRepo.FindByID(e.ClassID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		classes = append(classes, *class)
	}
	return classes, nil
}

func (s *ClassService) ListPublic(page, limit int) ([]model.Class, int64, error) {
	return s.ClassRepo.ListPublic(page, limit)
}

func (s *ClassService) findOwnedClass(requesterID uint, role model.UserRole, classID uint) (*model.Class, error) {
	class, err := s.ClassRepo.FindByID(classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrClassNotFound
		}
		return nil, err
	}
	if class.TeacherID != requesterID && role != model.Admin {
		return nil, util.ErrPermissionDenied
	}
	return class, nil
}
