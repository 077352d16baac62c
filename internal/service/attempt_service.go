package service

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"eduquiz_backend/internal/model"
	"eduquiz_backend/internal/repository"
	"eduquiz_backend/internal/util"
	"eduquiz_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AttemptService 管理一次作答 NONE -> IN_PROGRESS -> COMPLETED 的状态流转。
// 所有不变量（同一 (quiz, user) 至多一条进行中、提交至多一次、次数上限）
// 都落在数据库事务与 uniq_active_attempt 唯一索引上，进程内不持有任何状态
type AttemptService struct {
	QuizRepo    *repository.QuizRepository
	AttemptRepo *repository.AttemptRepository
	AnswerRepo  *repository.AnswerRepository
	Notifier    *NotificationService
	DB          *gorm.DB
}

func NewAttemptService(quizRepo *repository.QuizRepository, attemptRepo *repository.AttemptRepository, answerRepo *repository.AnswerRepository, notifier *NotificationService, db *gorm.DB) *AttemptService {
	return &AttemptService{
		QuizRepo:    quizRepo,
		AttemptRepo: attemptRepo,
		AnswerRepo:  answerRepo,
		Notifier:    notifier,
		DB:          db,
	}
}

type StartAttemptResult struct {
	AttemptID         uint      `json:"attemptId"`
	IsNew             bool      `json:"isNew"`
	AttemptsUsed      int       `json:"attemptsUsed"`
	AttemptsRemaining int       `json:"attemptsRemaining"` // -1 表示不限次数
	StartedAt         time.Time `json:"startedAt"`
}

type SubmitAttemptResult struct {
	AttemptID   uint      `json:"attemptId"`
	Score       float64   `json:"score"`
	MaxScore    float64   `json:"maxScore"`
	NeedsManual bool      `json:"needsManual"`
	CompletedAt time.Time `json:"completedAt"`
}

// StartOrResume 开始或继续一次作答。调用方必须在本次调用前刚刚通过
// AccessPolicy.Evaluate，本方法不重算访问规则，但次数上限会在事务内
// 再查一次，封住并发 start 下的超额创建。
// 已有进行中的作答且未指定 forceNew 时原样返回（Resumed）；forceNew 会
// 先在同一事务内废弃旧作答（计零分、置完成）再新建，单活不变量不被打破
func (s *AttemptService) StartOrResume(quizID, userID uint, forceNew bool, ipAddress, userAgent string) (*StartAttemptResult, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	if ipAddress == "" {
		ipAddress = util.UnknownClientInfo
	}
	if userAgent == "" {
		userAgent = util.UnknownClientInfo
	}

	var result *StartAttemptResult
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		existing, err := s.AttemptRepo.FindInProgressForUpdate(tx, userID, quizID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if existing != nil && !forceNew {
			used, err := countAttemptsTx(tx, userID, quizID)
			if err != nil {
				return err
			}
			result = &StartAttemptResult{
				AttemptID:         existing.ID,
				IsNew:             false,
				AttemptsUsed:      int(used),
				AttemptsRemaining: remainingAttempts(quiz.MaxAttempts, used),
				StartedAt:         existing.StartedAt,
			}
			return nil
		}

		if existing != nil {
			// forceNew：废弃进行中的旧作答，释放唯一索引占位
			abandonAttempt(existing, time.Now())
			if err := tx.Save(existing).Error; err != nil {
				return err
			}
		}

		used, err := countAttemptsTx(tx, userID, quizID)
		if err != nil {
			return err
		}
		if quiz.MaxAttempts > 0 && used >= int64(quiz.MaxAttempts) {
			return util.ErrAttemptLimitReached
		}

		active := uint8(1)
		attempt := &model.QuizAttempt{
			QuizID:      quizID,
			UserID:      userID,
			ActiveToken: &active,
			StartedAt:   time.Now(),
			IPAddress:   ipAddress,
			UserAgent:   userAgent,
		}
		if err := tx.Create(attempt).Error; err != nil {
			// 并发 start 竞争同一唯一索引槽位时，后到者在此失败
			if isDuplicateKeyError(err) {
				return util.ErrActiveAttemptConflict
			}
			return err
		}

		result = &StartAttemptResult{
			AttemptID:         attempt.ID,
			IsNew:             true,
			AttemptsUsed:      int(used) + 1,
			AttemptsRemaining: remainingAttempts(quiz.MaxAttempts, used+1),
			StartedAt:         attempt.StartedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Submit 提交作答：幂等写入答案、客观题判分、置完成时间。
// IN_PROGRESS -> COMPLETED 是唯一的状态翻转点，行锁保证并发二次提交
// 得到 ErrAttemptCompleted 而不是重复计分
func (s *AttemptService) Submit(attemptID, userID uint, answers []AnswerSubmission) (*SubmitAttemptResult, error) {
	var result *SubmitAttemptResult
	var completed *model.QuizAttempt
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		attempt, err := s.AttemptRepo.FindByIDForUpdate(tx, attemptID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrAttemptNotFound
			}
			return err
		}
		if err := checkSubmitPreconditions(attempt, userID); err != nil {
			return err
		}

		var questions []model.QuizQuestion
		if err := tx.Where("quiz_id = ?", attempt.QuizID).Order("order_index ASC").Find(&questions).Error; err != nil {
			return err
		}

		questionIDs := make(map[uint]bool, len(questions))
		for _, q := range questions {
			questionIDs[q.ID] = true
		}
		for _, a := range answers {
			if !questionIDs[a.QuestionID] {
				return util.ErrQuestionNotInQuiz
			}
		}

		outcome := gradeAttempt(questions, answers)

		entities := make([]model.AttemptAnswer, 0, len(answers))
		for _, a := range answers {
			entities = append(entities, model.AttemptAnswer{
				AttemptID:       attempt.ID,
				QuestionID:      a.QuestionID,
				SelectedOptions: encodeStringSlice(a.SelectedOptions),
				TextContent:     a.TextContent,
				AwardedPoints:   outcome.perQuestion[a.QuestionID],
			})
		}
		if err := s.AnswerRepo.UpsertBatch(tx, entities); err != nil {
			return err
		}

		now := time.Now()
		score := outcome.score
		attempt.CompletedAt = &now
		attempt.Score = &score
		attempt.MaxScore = outcome.maxScore
		attempt.NeedsManual = outcome.needsManual
		attempt.ActiveToken = nil
		if err := tx.Save(attempt).Error; err != nil {
			return err
		}

		result = &SubmitAttemptResult{
			AttemptID:   attempt.ID,
			Score:       score,
			MaxScore:    outcome.maxScore,
			NeedsManual: outcome.needsManual,
			CompletedAt: now,
		}
		completed = attempt
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 全客观题当场出分，成绩通知随提交发出；含人工评阅题的暂不通知
	if !result.NeedsManual {
		if quiz, err := s.QuizRepo.FindByID(completed.QuizID); err == nil {
			s.Notifier.Dispatch(GradePostedJob{Quiz: quiz, Attempt: completed})
		}
	}

	// 审计日志尽力而为，失败不影响提交结果
	logger.Log.Info("attempt submitted",
		zap.Uint("attemptId", result.AttemptID),
		zap.Uint("userId", userID),
		zap.Float64("score", result.Score),
	)
	return result, nil
}

// CanUnpublish 仍有进行中作答的测验不允许下架
func (s *AttemptService) CanUnpublish(quizID uint) (bool, error) {
	count, err := s.AttemptRepo.CountInProgress(quizID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// CanReorderQuestions 已发布且存在任何作答记录（无论是否完成）后，
// 调整题目顺序会使按 order 记录的答案失效，因此拒绝
func (s *AttemptService) CanReorderQuestions(quizID uint) (bool, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return false, err
	}
	if !quiz.IsPublished {
		return true, nil
	}
	count, err := s.AttemptRepo.CountByQuiz(quizID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// checkSubmitPreconditions 提交前置检查：归属校验在先，终态校验在后。
// 已完成的作答二次提交在此拦下，分数不会被触碰
func checkSubmitPreconditions(attempt *model.QuizAttempt, userID uint) error {
	if attempt.UserID != userID {
		return util.ErrAttemptForbidden
	}
	if attempt.CompletedAt != nil {
		return util.ErrAttemptCompleted
	}
	return nil
}

// abandonAttempt 废弃一条进行中的作答：计零分、置完成、释放唯一索引占位
func abandonAttempt(a *model.QuizAttempt, now time.Time) {
	zero := 0.0
	a.CompletedAt = &now
	a.Score = &zero
	a.Abandoned = true
	a.ActiveToken = nil
}

func countAttemptsTx(tx *gorm.DB, userID, quizID uint) (int64, error) {
	var count int64
	err := tx.Model(&model.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Count(&count).Error
	return count, err
}

func remainingAttempts(maxAttempts int, used int64) int {
	if maxAttempts <= 0 {
		return -1
	}
	remaining := maxAttempts - int(used)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}

func encodeStringSlice(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(values)
	return string(b)
}
