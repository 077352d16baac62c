package controller

import (
	"eduquiz_backend/internal/service"
	"eduquiz_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ResultController struct {
	ResultService *service.ResultService
}

func NewResultController(resultService *service.ResultService) *ResultController {
	return &ResultController{ResultService: resultService}
}

// MyResults godoc
// @Summary 我的作答历史
// @Tags results
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/v1/results/mine [get]
// @Security BearerAuth
func (c *ResultController) MyResults(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	page, limit := parsePagination(ctx)

	summaries, total, err := c.ResultService.StudentResults(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: summaries, Total: total, Page: page, Limit: limit})
}

// QuizStats godoc
// @Summary 测验统计
// @Description 作答数、完成率、平均分；结果缓存 5 分钟
// @Tags results
// @Produce json
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response{data=service.QuizStats}
// @Router /api/v1/quizzes/{id}/stats [get]
// @Security BearerAuth
func (c *ResultController) QuizStats(ctx *gin.Context) {
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

	stats, err := c.ResultService.QuizStatsForTeacher(claims.UserID, claims.Role, quizID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// AttemptDetail godoc
// @Summary 作答详情
// @Description 含逐题答案；本人、出题教师、管理员可见
// @Tags results
// @Produce json
// @Param id path int true "作答ID"
// @Success 200 {object} util.Response
// @Router /api/v1/attempts/{id} [get]
// @Security BearerAuth
func (c *ResultController) AttemptDetail(ctx *gin.Context) {
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

	attempt, answers, err := c.ResultService.AttemptDetail(claims.UserID, claims.Role, attemptID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"attempt": attempt, "answers": answers})
}

// QuizAttempts godoc
// @Summary 测验作答列表
// @Description 教师查看某测验的全部作答
// @Tags results
// @Produce json
// @Param id path int true "测验ID"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/v1/quizzes/{id}/attempts/list [get]
// @Security BearerAuth
func (c *ResultController) QuizAttempts(ctx *gin.Context) {
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
	page, limit := parsePagination(ctx)

	attempts, total, err := c.ResultService.QuizAttemptsForTeacher(claims.UserID, claims.Role, quizID, page, limit)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: attempts, Total: total, Page: page, Limit: limit})
}
