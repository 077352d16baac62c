package controller

import (
	"errors"
	"net/http"

	"eduquiz_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondServiceError 把业务错误映射为带原因码的响应；
// 未识别的错误按存储故障处理：记日志、返回通用 500
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrQuizNotFound):
		util.Denied(ctx, http.StatusNotFound, util.ReasonNotFound, err.Error())
	case errors.Is(err, util.ErrAttemptNotFound):
		util.Denied(ctx, http.StatusNotFound, util.ReasonNotFound, err.Error())
	case errors.Is(err, util.ErrClassNotFound), errors.Is(err, util.ErrUserNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrAttemptForbidden):
		util.Denied(ctx, http.StatusForbidden, util.ReasonForbidden, err.Error())
	case errors.Is(err, util.ErrAttemptCompleted):
		util.Denied(ctx, http.StatusConflict, util.ReasonAlreadyCompleted, err.Error())
	case errors.Is(err, util.ErrActiveAttempts):
		util.Denied(ctx, http.StatusConflict, util.ReasonActiveAttempts, err.Error())
	case errors.Is(err, util.ErrAttemptsRecorded):
		util.Denied(ctx, http.StatusConflict, util.ReasonActiveAttempts, err.Error())
	case errors.Is(err, util.ErrAttemptLimitReached):
		util.Denied(ctx, http.StatusConflict, util.ReasonMaxAttemptsReached, err.Error())
	case errors.Is(err, util.ErrActiveAttemptConflict):
		util.Denied(ctx, http.StatusConflict, util.ReasonActiveAttempts, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrQuizAlreadyPublished),
		errors.Is(err, util.ErrQuizNotPublished),
		errors.Is(err, util.ErrQuestionNotInQuiz),
		errors.Is(err, util.ErrAlreadyEnrolled),
		errors.Is(err, util.ErrOwnerCannotEnroll),
		errors.Is(err, util.ErrInvalidJoinCode):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
