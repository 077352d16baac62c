package controller

import (
	"eduquiz_backend/internal/service"
	"eduquiz_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ClassController struct {
	ClassService *service.ClassService
}

func NewClassController(classService *service.ClassService) *ClassController {
	return &ClassController{ClassService: classService}
}

type joinByCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// Create godoc
// @Summary 创建班级
// @Description 创建班级并生成 8 位加入码
// @Tags classes
// @Accept json
// @Produce json
// @Param request body service.ClassCreateRequest true "班级信息"
// @Success 201 {object} util.Response{data=model.Class}
// @Router /api/v1/classes [post]
// @Security BearerAuth
func (c *ClassController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ClassCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	class, err := c.ClassService.CreateClass(claims.UserID, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Created(ctx, class)
}

// Update godoc
// @Summary 更新班级
// @Tags classes
// @Accept json
// @Produce json
// @Param id path int true "班级ID"
// @Param request body service.ClassCreateRequest true "班级信息"
// @Success 200 {object} util.Response{data=model.Class}
// @Router /api/v1/classes/{id} [put]
// @Security BearerAuth
func (c *ClassController) Update(ctx *gin.Context) {
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

	var req service.ClassCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	class, err := c.ClassService.UpdateClass(claims.UserID, claims.Role, classID, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, class)
}

// Delete godoc
// @Summary 删除班级
// @Tags classes
// @Produce json
// @Param id path int true "班级ID"
// @Success 200 {object} util.Response
// @Router /api/v1/classes/{id} [delete]
// @Security BearerAuth
func (c *ClassController) Delete(ctx *gin.Context) {
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

	if err := c.ClassService.DeleteClass(claims.UserID, claims.Role, classID); err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// RegenerateJoinCode godoc
// @Summary 重新生成加入码
// @Description 生成新加入码，旧码立即失效
// @Tags classes
// @Produce json
// @Param id path int true "班级ID"
// @Success 200 {object} util.Response
// @Router /api/v1/classes/{id}/join-code [post]
// @Security BearerAuth
func (c *ClassController) RegenerateJoinCode(ctx *gin.Context) {
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

	code, err := c.ClassService.RegenerateJoinCode(claims.UserID, claims.Role, classID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"joinCode": code})
}

// JoinByCode godoc
// @Summary 凭加入码入班
// @Tags classes
// @Accept json
// @Produce json
// @Param request body joinByCodeRequest true "加入码"
// @Success 200 {object} util.Response{data=model.Class}
// @Failure 400 {object} util.Response
// @Router /api/v1/classes/join [post]
// @Security BearerAuth
func (c *ClassController) JoinByCode(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req joinByCodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	class, err := c.ClassService.JoinByCode(claims.UserID, req.Code)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, class)
}

// JoinPublic godoc
// @Summary 加入公开班级
// @Tags classes
// @Produce json
// @Param id path int true "班级ID"
// @Success 200 {object} util.Response{data=model.Class}
// @Router /api/v1/classes/{id}/join [post]
// @Security BearerAuth
func (c *ClassController) JoinPublic(ctx *gin.Context) {
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

	class, err := c.ClassService.JoinPublic(claims.UserID, classID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, class)
}

// Leave godoc
// @Summary 退出班级
// @Tags classes
// @Produce json
// @Param id path int true "班级ID"
// @Success 200 {object} util.Response
// @Router /api/v1/classes/{id}/leave [post]
// @Security BearerAuth
func (c *ClassController) Leave(ctx *gin.Context) {
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

	if err := c.ClassService.Leave(claims.UserID, classID); err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Roster godoc
// @Summary 班级学生名单
// @Description 仅班主任与管理员可见
// @Tags classes
// @Produce json
// @Param id path int true "班级ID"
// @Success 200 {object} util.Response{data=[]model.User}
// @Router /api/v1/classes/{id}/students [get]
// @Security BearerAuth
func (c *ClassController) Roster(ctx *gin.Context) {
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

	students, err := c.ClassService.Roster(claims.UserID, claims.Role, classID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, students)
}

// ListMine godoc
// @Summary 我创建的班级
// @Tags classes
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/v1/classes/mine [get]
// @Security BearerAuth
func (c *ClassController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	page, limit := parsePagination(ctx)

	classes, total, err := c.ClassService.ListForTeacher(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: classes, Total: total, Page: page, Limit: limit})
}

// ListEnrolled godoc
// @Summary 我加入的班级
// @Tags classes
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Class}
// @Router /api/v1/classes/enrolled [get]
// @Security BearerAuth
func (c *ClassController) ListEnrolled(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	classes, err := c.ClassService.ListForStudent(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, classes)
}

// ListPublic godoc
// @Summary 公开班级列表
// @Tags classes
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/v1/classes/public [get]
func (c *ClassController) ListPublic(ctx *gin.Context) {
	page, limit := parsePagination(ctx)

	classes, total, err := c.ClassService.ListPublic(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: classes, Total: total, Page: page, Limit: limit})
}
