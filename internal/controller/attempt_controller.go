package controller

import (
	"net/http"

	"eduquiz_backend/internal/service"
	"eduquiz_backend/internal/util"
	"eduquiz_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AccessPolicy   *service.AccessPolicyService
	AttemptService *service.AttemptService
}

func NewAttemptController(accessPolicy *service.AccessPolicyService, attemptService *service.AttemptService) *AttemptController {
	return &AttemptController{
		AccessPolicy:   accessPolicy,
		AttemptService: attemptService,
	}
}

type startAttemptRequest struct {
	AccessCode string `json:"accessCode"`
	ForceNew   bool   `json:"forceNew"`
}

type submitAttemptRequest struct {
	Answers []service.AnswerSubmission `json:"answers" binding:"required"`
}

// EvaluateAccess godoc
// @Summary 评估测验访问权限
// @Description 只读预检：返回当前用户能否访问该测验及拒绝原因码，不产生作答记录
// @Tags attempts
// @Produce json
// @Param id path int true "测验ID"
// @Param accessCode query string false "访问码"
// @Success 200 {object} util.Response{data=service.AccessDecision}
// @Router /api/v1/quizzes/{id}/access [get]
// @Security BearerAuth
func (c *AttemptController) EvaluateAccess(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	quizID, ok := parseIDParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	decision, err := c.AccessPolicy.Evaluate(claims.UserID, claims.Role, quizID, ctx.Query("accessCode"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	// 预检结果无论通过与否都是 200，拒绝语义在 decision 里
	util.Success(ctx, decision)
}

// Start godoc
// @Summary 开始或继续作答
// @Description 访问策略通过后创建新作答；已有进行中的作答则原样返回，forceNew 废弃旧作答后新建
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path int true "测验ID"
// @Param request body startAttemptRequest false "开始作答参数"
// @Success 200 {object} util.Response{data=service.StartAttemptResult}
// @Failure 403 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/v1/quizzes/{id}/attempts [post]
// @Security BearerAuth
func (c *AttemptController) Start(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	quizID, ok := parseIDParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	var req startAttemptRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	// 作答次数等状态随时间变化，每次 start 前都重新走一遍完整策略
	decision, err := c.AccessPolicy.Evaluate(claims.UserID, claims.Role, quizID, req.AccessCode)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if !decision.Granted {
		monitoring.AttemptCounter.WithLabelValues("denied").Inc()
		util.Denied(ctx, accessDenialStatus(decision.Reason), decision.Reason, decision.Message)
		return
	}

	result, err := c.AttemptService.StartOrResume(quizID, claims.UserID, req.ForceNew, ctx.ClientIP(), ctx.Request.UserAgent())
	if err != nil {
		monitoring.AttemptCounter.WithLabelValues("denied").Inc()
		respondServiceError(ctx, err)
		return
	}

	if result.IsNew {
		monitoring.AttemptCounter.WithLabelValues("started").Inc()
	} else {
		monitoring.AttemptCounter.WithLabelValues("resumed").Inc()
	}
	util.Success(ctx, result)
}

// Submit godoc
// @Summary 提交作答
// @Description 写入答案、客观题自动判分并结束作答；重复提交返回 ALREADY_COMPLETED
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path int true "作答ID"
// @Param request body submitAttemptRequest true "答案列表"
// @Success 200 {object} util.Response{data=service.SubmitAttemptResult}
// @Failure 409 {object} util.Response
// @Router /api/v1/attempts/{id}/submit [post]
// @Security BearerAuth
func (c *AttemptController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := parseIDParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	var req submitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AttemptService.Submit(attemptID, claims.UserID, req.Answers)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	monitoring.AttemptCounter.WithLabelValues("submitted").Inc()
	util.Success(ctx, result)
}

// accessDenialStatus 原因码到 HTTP 状态码的映射
func accessDenialStatus(reason string) int {
	switch reason {
	case util.ReasonNotFound:
		return http.StatusNotFound
	case util.ReasonMaxAttemptsReached:
		return http.StatusConflict
	default:
		return http.StatusForbidden
	}
}
