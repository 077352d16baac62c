package util

import "errors"

// 稳定的机器可读原因码，随策略拒绝/前置条件失败返回给前端
const (
	ReasonNotFound           = "NOT_FOUND"
	ReasonNotAvailable       = "NOT_AVAILABLE"
	ReasonNotYetAvailable    = "NOT_YET_AVAILABLE"
	ReasonExpired            = "EXPIRED"
	ReasonForbiddenEnroll    = "FORBIDDEN_NOT_ENROLLED"
	ReasonInvalidAccessCode  = "INVALID_ACCESS_CODE"
	ReasonMaxAttemptsReached = "MAX_ATTEMPTS_REACHED"
	ReasonAlreadyCompleted   = "ALREADY_COMPLETED"
	ReasonActiveAttempts     = "ACTIVE_ATTEMPTS"
	ReasonForbidden          = "FORBIDDEN"
)

var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrEmailRegistered  = errors.New("该邮箱已被注册")
	ErrPermissionDenied = errors.New("permission denied")

	ErrClassNotFound     = errors.New("class not found")
	ErrAlreadyEnrolled   = errors.New("already enrolled in this class")
	ErrOwnerCannotEnroll = errors.New("teacher cannot enroll in own class")
	ErrInvalidJoinCode   = errors.New("invalid join code")

	ErrQuizNotFound          = errors.New("quiz not found")
	ErrAttemptNotFound       = errors.New("attempt not found")
	ErrAttemptForbidden      = errors.New("attempt belongs to another user")
	ErrAttemptCompleted      = errors.New("attempt already completed")
	ErrActiveAttempts        = errors.New("quiz has attempts in progress")
	ErrAttemptsRecorded      = errors.New("quiz already has recorded attempts")
	ErrQuestionNotInQuiz     = errors.New("question does not belong to quiz")
	ErrQuizNotPublished      = errors.New("quiz not published")
	ErrQuizAlreadyPublished  = errors.New("quiz already published")
	ErrAttemptLimitReached   = errors.New("attempt limit reached")
	ErrActiveAttemptConflict = errors.New("another attempt is already in progress")
)
