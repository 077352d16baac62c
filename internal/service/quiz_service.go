package service

import (
	"encoding/json"
	"errors"
	"time"

	"eduquiz_backend/internal/model"
	"eduquiz_backend/internal/repository"
	"eduquiz_backend/internal/util"
	"eduquiz_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuizService struct {
	QuizRepo     *repository.QuizRepository
	QuestionRepo *repository.QuestionRepository
	ClassRepo    *repository.ClassRepository
	Attempts     *AttemptService
	Notifier     *NotificationService
	DB           *gorm.DB
}

func NewQuizService(quizRepo *repository.QuizRepository, questionRepo *repository.QuestionRepository, classRepo *repository.ClassRepository, attempts *AttemptService, notifier *NotificationService, db *gorm.DB) *QuizService {
	return &QuizService{
		QuizRepo:     quizRepo,
		QuestionRepo: questionRepo,
		ClassRepo:    classRepo,
		Attempts:     attempts,
		Notifier:     notifier,
		DB:           db,
	}
}

type QuizQuestionRequest struct {
	QuestionType       string      `json:"questionType" binding:"required"`
	Content            string      `json:"content" binding:"required"`
	Options            interface{} `json:"options,omitempty"`
	CorrectOptions     []string    `json:"correctOptions,omitempty"`
	Points             int         `json:"points"`
	AllowPartialCredit bool        `json:"allowPartialCredit,omitempty"`
	ManualGrading      bool        `json:"manualGrading,omitempty"`
	Explanation        string      `json:"explanation,omitempty"`
}

type QuizCreateRequest struct {
	Title            string                `json:"title" binding:"required"`
	Description      string                `json:"description"`
	CoverURL         string                `json:"coverUrl"`
	ClassID          *uint                 `json:"classId"`
	IsPublic         bool                  `json:"isPublic"`
	StartDate        *time.Time            `json:"startDate"`
	EndDate          *time.Time            `json:"endDate"`
	MaxAttempts      int                   `json:"maxAttempts"`
	AccessCode       string                `json:"accessCode"`
	PublicAccessCode string                `json:"publicAccessCode"`
	TimeLimitMinutes int                   `json:"timeLimitMinutes"`
	Questions        []QuizQuestionRequest `json:"questions"`
}

func (s *QuizService) CreateQuiz(creatorID uint, role model.UserRole, req QuizCreateRequest) (*model.Quiz, error) {
	if req.MaxAttempts < 0 {
		return nil, errors.New("maxAttempts must be positive")
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, errors.New("endDate must be after startDate")
	}
	if req.ClassID != nil {
		class, err := s.ClassRepo.FindByID(*req.ClassID)
		if err != nil {
			return nil, util.ErrClassNotFound
		}
		if class.TeacherID != creatorID && role != model.Admin {
			return nil, util.ErrPermissionDenied
		}
	}

	var created *model.Quiz
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		quiz := &model.Quiz{
			CreatorID:        creatorID,
			ClassID:          req.ClassID,
			Title:            req.Title,
			Description:      req.Description,
			CoverURL:         req.CoverURL,
			IsPublic:         req.IsPublic,
			IsActive:         true,
			StartDate:        req.StartDate,
			EndDate:          req.EndDate,
			MaxAttempts:      req.MaxAttempts,
			AccessCode:       req.AccessCode,
			PublicAccessCode: req.PublicAccessCode,
			TimeLimitMinutes: req.TimeLimitMinutes,
		}
		if err := tx.Create(quiz).Error; err != nil {
			return err
		}

		if len(req.Questions) > 0 {
			questions := buildQuestions(quiz.ID, req.Questions)
			if err := tx.Create(&questions).Error; err != nil {
				return err
			}
		}

		created = quiz
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateQuiz 更新测验。题目整组替换，已发布且有作答记录时拒绝改题
func (s *QuizService) UpdateQuiz(editorID uint, role model.UserRole, quizID uint, req QuizCreateRequest) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.CreatorID != editorID && role != model.Admin {
		return nil, util.ErrPermissionDenied
	}

	if len(req.Questions) > 0 {
		ok, err := s.Attempts.CanReorderQuestions(quizID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, util.ErrAttemptsRecorded
		}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		quiz.Title = req.Title
		quiz.Description = req.Description
		quiz.CoverURL = req.CoverURL
		quiz.ClassID = req.ClassID
		quiz.IsPublic = req.IsPublic
		quiz.StartDate = req.StartDate
		quiz.EndDate = req.EndDate
		quiz.MaxAttempts = req.MaxAttempts
		quiz.TimeLimitMinutes = req.TimeLimitMinutes
		if req.AccessCode != "" {
			quiz.AccessCode = req.AccessCode
		}
		if req.PublicAccessCode != "" {
			quiz.PublicAccessCode = req.PublicAccessCode
		}
		if err := tx.Save(quiz).Error; err != nil {
			return err
		}

		if len(req.Questions) > 0 {
			if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&model.QuizQuestion{}).Error; err != nil {
				return err
			}
			questions := buildQuestions(quiz.ID, req.Questions)
			if err := tx.Create(&questions).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quiz, nil
}

// PublishQuiz 发布测验并异步通知班级学生
func (s *QuizService) PublishQuiz(editorID uint, role model.UserRole, quizID uint) error {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuizNotFound
		}
		return err
	}
	if quiz.CreatorID != editorID && role != model.Admin {
		return util.ErrPermissionDenied
	}
	if quiz.IsPublished {
		return util.ErrQuizAlreadyPublished
	}

	now := time.Now()
	quiz.IsPublished = true
	quiz.PublishedAt = &now
	if err := s.QuizRepo.Update(quiz); err != nil {
		return err
	}

	// 通知派发只尽力而为，失败不回滚发布
	s.Notifier.Dispatch(QuizPublishedJob{Quiz: quiz})
	return nil
}

// UnpublishQuiz 下架测验。存在进行中的作答时拒绝，测验发布状态不变
func (s *QuizService) UnpublishQuiz(editorID uint, role model.UserRole, quizID uint) error {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuizNotFound
		}
		return err
	}
	if quiz.CreatorID != editorID && role != model.Admin {
		return util.ErrPermissionDenied
	}
	if !quiz.IsPublished {
		return util.ErrQuizNotPublished
	}

	ok, err := s.Attempts.CanUnpublish(quizID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrActiveAttempts
	}

	quiz.IsPublished = false
	quiz.PublishedAt = nil
	if err := s.QuizRepo.Update(quiz); err != nil {
		return err
	}

	logger.Log.Info("quiz unpublished",
		zap.Uint("quizId", quizID),
		zap.Uint("editorId", editorID),
	)
	return nil
}

// ReorderQuestions 重排题目顺序。已发布且有任何作答记录后拒绝
func (s *QuizService) ReorderQuestions(editorID uint, role model.UserRole, quizID uint, orderedIDs []uint) error {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuizNotFound
		}
		return err
	}
	if quiz.CreatorID != editorID && role != model.Admin {
		return util.ErrPermissionDenied
	}

	ok, err := s.Attempts.CanReorderQuestions(quizID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrAttemptsRecorded
	}

	questions, err := s.QuestionRepo.ListByQuiz(quizID)
	if err != nil {
		return err
	}
	if len(orderedIDs) != len(questions) {
		return util.ErrQuestionNotInQuiz
	}
	known := make(map[uint]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}
	for _, id := range orderedIDs {
		if !known[id] {
			return util.ErrQuestionNotInQuiz
		}
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		for idx, id := range orderedIDs {
			err := tx.Model(&model.QuizQuestion{}).
				Where("id = ? AND quiz_id = ?", id, quizID).
				Update("order_index", idx+1).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteQuiz 软删除。进行中的作答未结束前不允许删除
func (s *QuizService) DeleteQuiz(editorID uint, role model.UserRole, quizID uint) error {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuizNotFound
		}
		return err
	}
	if quiz.CreatorID != editorID && role != model.Admin {
		return util.ErrPermissionDenied
	}

	ok, err := s.Attempts.CanUnpublish(quizID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrActiveAttempts
	}

	return s.QuizRepo.Delete(quizID)
}

func (s *QuizService) GetQuizForTeacher(requesterID uint, role model.UserRole, quizID uint) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByIDWithQuestions(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.CreatorID != requesterID && role != model.Admin {
		return nil, util.ErrPermissionDenied
	}
	return quiz, nil
}

// GetQuizForStudent 学生视图。正确答案与访问码字段带 json:"-"，
// 序列化时自然剥离，不需要额外拷贝
func (s *QuizService) GetQuizForStudent(quizID uint) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByIDWithQuestions(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	return quiz, nil
}

func buildQuestions(quizID uint, reqs []QuizQuestionRequest) []model.QuizQuestion {
	questions := make([]model.QuizQuestion, 0, len(reqs))
	for idx, q := range reqs {
		optionsBytes, _ := json.Marshal(q.Options)
		correctBytes, _ := json.Marshal(q.CorrectOptions)
		points := q.Points
		if points <= 0 {
			points = 1
		}
		questions = append(questions, model.QuizQuestion{
			QuizID:             quizID,
			QuestionType:       q.QuestionType,
			Content:            q.Content,
			Options:            string(optionsBytes),
			CorrectOptions:     string(correctBytes),
			Points:             points,
			Order:              idx + 1,
			AllowPartialCredit: q.AllowPartialCredit,
			ManualGrading:      q.ManualGrading,
			Explanation:        q.Explanation,
		})
	}
	return questions
}
