package service

import (
	"errors"
	"time"

	"eduquiz_backend/internal/model"
	"eduquiz_backend/internal/repository"
	"eduquiz_backend/internal/util"

	"gorm.io/gorm"
)

// AccessDecision 访问裁决结果。Denied 时 Reason 为稳定原因码
type AccessDecision struct {
	Granted bool   `json:"granted"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

func grantAccess() AccessDecision {
	return AccessDecision{Granted: true}
}

func denyAccess(reason, message string) AccessDecision {
	return AccessDecision{Granted: false, Reason: reason, Message: message}
}

// AccessPolicyService 把散落在各端点的可见性/选课/访问码/时间窗/次数上限
// 检查收拢为单一决策函数。Evaluate 只读不写
type AccessPolicyService struct {
	QuizRepo       *repository.QuizRepository
	ClassRepo      *repository.ClassRepository
	EnrollmentRepo *repository.EnrollmentRepository
	AttemptRepo    *repository.AttemptRepository
}

func NewAccessPolicyService(
	quizRepo *repository.QuizRepository,
	classRepo *repository.ClassRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	attemptRepo *repository.AttemptRepository,
) *AccessPolicyService {
	return &AccessPolicyService{
		QuizRepo:       quizRepo,
		ClassRepo:      classRepo,
		EnrollmentRepo: enrollmentRepo,
		AttemptRepo:    attemptRepo,
	}
}

// Evaluate 判定 (user, quiz) 当前能否访问/作答。作答次数等状态会变化，
// 调用方每次操作前都必须重新评估，不可缓存结果
func (s *AccessPolicyService) Evaluate(userID uint, role model.UserRole, quizID uint, suppliedCode string) (AccessDecision, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return denyAccess(util.ReasonNotFound, "quiz not found"), nil
		}
		return AccessDecision{}, err
	}

	var class *model.Class
	enrolled := false
	if quiz.ClassID != nil {
		class, err = s.ClassRepo.FindByID(*quiz.ClassID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return AccessDecision{}, err
		}
		if class != nil {
			enrolled, err = s.EnrollmentRepo.Exists(class.ID, userID)
			if err != nil {
				return AccessDecision{}, err
			}
		}
	}

	attemptsUsed, err := s.AttemptRepo.CountByUserAndQuiz(userID, quizID)
	if err != nil {
		return AccessDecision{}, err
	}
	hasInProgress, err := s.AttemptRepo.ExistsInProgress(userID, quizID)
	if err != nil {
		return AccessDecision{}, err
	}

	caller := accessCaller{userID: userID, role: role}
	return evaluateQuizAccess(quiz, class, caller, enrolled, attemptsUsed, hasInProgress, suppliedCode, time.Now()), nil
}

type accessCaller struct {
	userID uint
	role   model.UserRole
}

// evaluateQuizAccess 按固定顺序逐项检查，第一个不通过的检查决定拒绝原因。
// 创建者/任课教师仅豁免选课检查（第4步），时间窗与次数上限对所有人生效。
// 存在进行中的作答时跳过次数上限：计数里含进行中的那条，继续作答
// 不新占名额，封顶只拦新开；事务内的复查负责拦截真正的新建超额
func evaluateQuizAccess(quiz *model.Quiz, class *model.Class, caller accessCaller, enrolled bool, attemptsUsed int64, hasInProgress bool, suppliedCode string, now time.Time) AccessDecision {
	// 1. 存在且已发布、未停用
	if quiz == nil {
		return denyAccess(util.ReasonNotFound, "quiz not found")
	}
	if !quiz.IsActive || !quiz.IsPublished {
		return denyAccess(util.ReasonNotAvailable, "quiz is not available")
	}

	// 2/3. 时间窗
	if quiz.StartDate != nil && quiz.StartDate.After(now) {
		return denyAccess(util.ReasonNotYetAvailable, "quiz is not yet available")
	}
	if quiz.EndDate != nil && quiz.EndDate.Before(now) {
		return denyAccess(util.ReasonExpired, "quiz has expired")
	}

	// 4. 私有班级测验要求选课，创建者与任课教师视同已选
	if class != nil && class.Type == model.ClassTypePrivate {
		isOwner := caller.userID == quiz.CreatorID || caller.userID == class.TeacherID
		if !enrolled && !isOwner {
			return denyAccess(util.ReasonForbiddenEnroll, "not enrolled in this class")
		}
	}

	// 5/6. 访问码
	if !quiz.IsPublic && quiz.AccessCode != "" && suppliedCode != quiz.AccessCode {
		return denyAccess(util.ReasonInvalidAccessCode, "invalid access code")
	}
	if quiz.IsPublic && quiz.PublicAccessCode != "" && suppliedCode != quiz.PublicAccessCode {
		return denyAccess(util.ReasonInvalidAccessCode, "invalid access code")
	}

	// 7. 次数上限，仅对新开作答生效
	if quiz.MaxAttempts > 0 && !hasInProgress && attemptsUsed >= int64(quiz.MaxAttempts) {
		return denyAccess(util.ReasonMaxAttemptsReached, "attempt limit reached")
	}

	return grantAccess()
}
