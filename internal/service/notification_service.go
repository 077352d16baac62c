package service

import (
	"fmt"

	"eduquiz_backend/internal/model"
	"eduquiz_backend/internal/repository"
	"eduquiz_backend/pkg/logger"

	"go.uber.org/zap"
)

// NotificationJob 通知任务的封闭集合。每种任务自带类型化输入，
// 派发走显式 type switch，不做字符串键的动态分发
type NotificationJob interface {
	notificationKind() string
}

type QuizPublishedJob struct {
	Quiz *model.Quiz
}

type StudentEnrolledJob struct {
	Class   *model.Class
	Student *model.User
}

type GradePostedJob struct {
	Quiz    *model.Quiz
	Attempt *model.QuizAttempt
}

func (QuizPublishedJob) notificationKind() string   { return model.NotificationQuizPublished }
func (StudentEnrolledJob) notificationKind() string { return model.NotificationStudentEnrolled }
func (GradePostedJob) notificationKind() string     { return model.NotificationGradePosted }

type NotificationService struct {
	NotificationRepo *repository.NotificationRepository
	EnrollmentRepo   *repository.EnrollmentRepository
}

func NewNotificationService(notificationRepo *repository.NotificationRepository, enrollmentRepo *repository.EnrollmentRepository) *NotificationService {
	return &NotificationService{
		NotificationRepo: notificationRepo,
		EnrollmentRepo:   enrollmentRepo,
	}
}

// Dispatch 异步派发，调用方不等待也不感知结果；失败只记日志
func (s *NotificationService) Dispatch(job NotificationJob) {
	go func() {
		if err := s.deliver(job); err != nil {
			logger.Log.Error("notification delivery failed",
				zap.String("kind", job.notificationKind()),
				zap.Error(err),
			)
		}
	}()
}

func (s *NotificationService) deliver(job NotificationJob) error {
	switch j := job.(type) {
	case QuizPublishedJob:
		return s.deliverQuizPublished(j)
	case StudentEnrolledJob:
		return s.deliverStudentEnrolled(j)
	case GradePostedJob:
		return s.deliverGradePosted(j)
	default:
		return fmt.Errorf("unhandled notification job type %T", job)
	}
}

// deliverQuizPublished 向测验所属班级的全部学生各写一条通知。
// 公开测验没有班级受众，跳过
func (s *NotificationService) deliverQuizPublished(j QuizPublishedJob) error {
	if j.Quiz.ClassID == nil {
		return nil
	}
	studentIDs, err := s.EnrollmentRepo.StudentIDsByClass(*j.Quiz.ClassID)
	if err != nil {
		return err
	}

	notifications := make([]model.Notification, 0, len(studentIDs))
	for _, sid := range studentIDs {
		notifications = append(notifications, model.Notification{
			UserID:  sid,
			Kind:    model.NotificationQuizPublished,
			Title:   "新测验已发布",
			Body:    fmt.Sprintf("测验《%s》已发布，快去作答吧", j.Quiz.Title),
			QuizID:  &j.Quiz.ID,
			ClassID: j.Quiz.ClassID,
		})
	}
	return s.NotificationRepo.CreateBatch(notifications)
}

func (s *NotificationService) deliverStudentEnrolled(j StudentEnrolledJob) error {
	return s.NotificationRepo.CreateBatch([]model.Notification{{
		UserID:  j.Class.TeacherID,
		Kind:    model.NotificationStudentEnrolled,
		Title:   "新学生加入班级",
		Body:    fmt.Sprintf("%s 加入了班级「%s」", j.Student.Name, j.Class.Name),
		ClassID: &j.Class.ID,
	}})
}

func (s *NotificationService) deliverGradePosted(j GradePostedJob) error {
	score := 0.0
	if j.Attempt.Score != nil {
		score = *j.Attempt.Score
	}
	return s.NotificationRepo.CreateBatch([]model.Notification{{
		UserID: j.Attempt.UserID,
		Kind:   model.NotificationGradePosted,
		Title:  "成绩已出",
		Body:   fmt.Sprintf("测验《%s》成绩：%.1f / %.1f", j.Quiz.Title, score, j.Attempt.MaxScore),
		QuizID: &j.Quiz.ID,
	}})
}

func (s *NotificationService) ListForUser(userID uint, unreadOnly bool, page, limit int) ([]model.Notification, int64, error) {
	return s.NotificationRepo.ListByUser(userID, unreadOnly, page, limit)
}

func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	return s.NotificationRepo.MarkRead(userID, notificationID)
}

func (s *NotificationService) MarkAllRead(userID uint) error {
	return s.NotificationRepo.MarkAllRead(userID)
}
