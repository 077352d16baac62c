package controller

import (
	"fmt"
	"path/filepath"
	"strings"

	"eduquiz_backend/internal/model"
	"eduquiz_backend/internal/service"
	"eduquiz_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService    *service.QuizService
	AccessPolicy   *service.AccessPolicyService
	StorageService *service.StorageService
}

func NewQuizController(quizService *service.QuizService, accessPolicy *service.AccessPolicyService, storageService *service.StorageService) *QuizController {
	return &QuizController{
		QuizService:    quizService,
		AccessPolicy:   accessPolicy,
		StorageService: storageService,
	}
}

type reorderRequest struct {
	QuestionIDs []uint `json:"questionIds" binding:"required,min=1"`
}

// Create godoc
// @Summary 创建测验
// @Description 创建测验及题目，初始为未发布状态
// @Tags quizzes
// @Accept json
// @Produce json
// @Param request body service.QuizCreateRequest true "测验信息"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response
// @Router /api/v1/quizzes [post]
// @Security BearerAuth
func (c *QuizController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.QuizCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.CreateQuiz(claims.UserID, claims.Role, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// Update godoc
// @Summary 更新测验
// @Description 题目整组替换；已发布且有作答记录后拒绝改题
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path int true "测验ID"
// @Param request body service.QuizCreateRequest true "测验信息"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Failure 409 {object} util.Response
// @Router /api/v1/quizzes/{id} [put]
// @Security BearerAuth
func (c *QuizController) Update(ctx *gin.Context) {
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

	var req service.QuizCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.UpdateQuiz(claims.UserID, claims.Role, quizID, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// Delete godoc
// @Summary 删除测验
// @Description 软删除；存在进行中的作答时拒绝
// @Tags quizzes
// @Produce json
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/v1/quizzes/{id} [delete]
// @Security BearerAuth
func (c *QuizController) Delete(ctx *gin.Context) {
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

	if err := c.QuizService.DeleteQuiz(claims.UserID, claims.Role, quizID); err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Publish godoc
// @Summary 发布测验
// @Description 发布后学生可见，并异步通知班级学生
// @Tags quizzes
// @Produce json
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/v1/quizzes/{id}/publish [post]
// @Security BearerAuth
func (c *QuizController) Publish(ctx *gin.Context) {
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

	if err := c.QuizService.PublishQuiz(claims.UserID, claims.Role, quizID); err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Unpublish godoc
// @Summary 下架测验
// @Description 存在进行中的作答时返回 ACTIVE_ATTEMPTS
// @Tags quizzes
// @Produce json
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/v1/quizzes/{id}/unpublish [post]
// @Security BearerAuth
func (c *QuizController) Unpublish(ctx *gin.Context) {
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

	if err := c.QuizService.UnpublishQuiz(claims.UserID, claims.Role, quizID); err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Reorder godoc
// @Summary 调整题目顺序
// @Description ID 集合必须与现有题目完全一致；已发布且有作答记录后拒绝
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path int true "测验ID"
// @Param request body reorderRequest true "按新顺序排列的题目ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/v1/quizzes/{id}/reorder [post]
// @Security BearerAuth
func (c *QuizController) Reorder(ctx *gin.Context) {
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

	var req reorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.QuizService.ReorderQuestions(claims.UserID, claims.Role, quizID, req.QuestionIDs); err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// GetForTeacher godoc
// @Summary 教师视角查看测验
// @Description 含正确答案与访问码，仅创建者/管理员可见
// @Tags quizzes
// @Produce json
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Router /api/v1/quizzes/{id}/manage [get]
// @Security BearerAuth
func (c *QuizController) GetForTeacher(ctx *gin.Context) {
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

	quiz, err := c.QuizService.GetQuizForTeacher(claims.UserID, claims.Role, quizID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	// 教师视图需要正确答案，绕过模型上的 json:"-" 标记单独给出
	answers := make(map[uint]string, len(quiz.Questions))
	codes := gin.H{"accessCode": quiz.AccessCode, "publicAccessCode": quiz.PublicAccessCode}
	for _, q := range quiz.Questions {
		answers[q.ID] = q.CorrectOptions
	}
	util.Success(ctx, gin.H{"quiz": quiz, "correctOptions": answers, "codes": codes})
}

// GetForStudent godoc
// @Summary 学生视角查看测验
// @Description 先过访问策略；响应不含正确答案与访问码
// @Tags quizzes
// @Produce json
// @Param id path int true "测验ID"
// @Param accessCode query string false "访问码"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Failure 403 {object} util.Response
// @Router /api/v1/quizzes/{id} [get]
// @Security BearerAuth
func (c *QuizController) GetForStudent(ctx *gin.Context) {
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
	if !decision.Granted && decision.Reason != util.ReasonMaxAttemptsReached {
		// 次数用尽仍可查看题目，只是不能再开新作答
		util.Denied(ctx, accessDenialStatus(decision.Reason), decision.Reason, decision.Message)
		return
	}

	quiz, err := c.QuizService.GetQuizForStudent(quizID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// ListMine godoc
// @Summary 我创建的测验
// @Tags quizzes
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/v1/quizzes/mine [get]
// @Security BearerAuth
func (c *QuizController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	page, limit := parsePagination(ctx)

	quizzes, total, err := c.QuizService.QuizRepo.ListByCreator(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: quizzes, Total: total, Page: page, Limit: limit})
}

// ListPublic godoc
// @Summary 公开测验发现列表
// @Description 仅含已发布且启用的公开测验
// @Tags quizzes
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/v1/quizzes/public [get]
func (c *QuizController) ListPublic(ctx *gin.Context) {
	page, limit := parsePagination(ctx)

	quizzes, total, err := c.QuizService.QuizRepo.ListPublicPublished(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: quizzes, Total: total, Page: page, Limit: limit})
}

// UploadCover godoc
// @Summary 上传测验封面
// @Description 封面限 2MB，仅接受常见图片格式；返回 URL，由创建/更新接口引用
// @Tags quizzes
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "封面图片"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/v1/quizzes/cover [post]
// @Security BearerAuth
func (c *QuizController) UploadCover(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	if fileHeader.Size > maxImageUploadSize {
		util.BadRequest(ctx, "file too large")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	allowed := false
	for _, e := range util.AllowedImageExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		util.BadRequest(ctx, "unsupported file type")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	filename := fmt.Sprintf("covers/%d/%s%s", claims.UserID, model.GenerateUUID(), ext)
	url, err := c.StorageService.Upload(ctx.Request.Context(), filename, src, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"url": url})
}

// ListByClass godoc
// @Summary 班级测验列表
// @Tags quizzes
// @Produce json
// @Param id path int true "班级ID"
// @Success 200 {object} util.Response{data=[]model.Quiz}
// @Router /api/v1/classes/{id}/quizzes [get]
// @Security BearerAuth
func (c *QuizController) ListByClass(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	classID, ok := parseIDParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid class id")
		return
	}

	quizzes, err := c.QuizService.QuizRepo.ListByClass(classID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}
