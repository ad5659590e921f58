package controller

import (
	"errors"
	"strconv"

	"talent_assessment_backend/internal/model"
	"talent_assessment_backend/internal/service"
	"talent_assessment_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	SessionService *service.SessionService
}

func NewSessionController(sessionService *service.SessionService) *SessionController {
	return &SessionController{SessionService: sessionService}
}

// CreateSession godoc
// @Summary 创建测评会话
// @Description 创建会话并批量生成受评者，每人分配唯一访问令牌
// @Tags 会话管理
// @Accept  json
// @Produce  json
// @Param   body body service.CreateSessionRequest true "会话信息"
// @Success 201 {object} util.Response{data=model.AssessmentSession} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Security BearerAuth
// @Router /api/admin/sessions [post]
func (c *SessionController) CreateSession(ctx *gin.Context) {
	var req service.CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.SessionService.CreateSession(req)
	if err != nil {
		var verr *util.ValidationError
		if errors.As(err, &verr) {
			util.ErrorWithData(ctx, 400, "参数校验失败", gin.H{"violations": verr.Violations})
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, session)
}

// ListSessions godoc
// @Summary 会话列表
// @Description 按组织分页查询测评会话
// @Tags 会话管理
// @Produce  json
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页数量" default(10)
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Security BearerAuth
// @Router /api/admin/sessions [get]
func (c *SessionController) ListSessions(ctx *gin.Context) {
	admin := util.GetAdminFromContext(ctx)
	if admin == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	sessions, total, err := c.SessionService.ListSessions(admin.OrganizationID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  sessions,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetSession godoc
// @Summary 会话详情
// @Description 查询单个会话及其全部受评者
// @Tags 会话管理
// @Produce  json
// @Param   id path int true "会话ID"
// @Success 200 {object} util.Response{data=model.AssessmentSession} "成功"
// @Failure 404 {object} util.Response "会话不存在"
// @Security BearerAuth
// @Router /api/admin/sessions/{id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "无效的会话ID")
		return
	}

	session, err := c.SessionService.GetSession(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, session)
}

type TransitionRequest struct {
	Status model.SessionStatus `json:"status" binding:"required"`
}

// TransitionStatus godoc
// @Summary 推进会话状态
// @Description 按状态机推进会话，非法跃迁返回409并附带当前允许的后继状态
// @Tags 会话管理
// @Accept  json
// @Produce  json
// @Param   id path int true "会话ID"
// @Param   body body TransitionRequest true "目标状态"
// @Success 200 {object} util.Response{data=service.TransitionResult} "推进成功"
// @Failure 400 {object} util.Response "未知状态"
// @Failure 404 {object} util.Response "会话不存在"
// @Failure 409 {object} util.Response "非法状态跃迁"
// @Security BearerAuth
// @Router /api/admin/sessions/{id}/status [patch]
func (c *SessionController) TransitionStatus(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "无效的会话ID")
		return
	}

	var req TransitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.SessionService.Transition(uint(id), req.Status)
	if err != nil {
		var verr *util.ValidationError
		var terr *util.InvalidTransitionError
		switch {
		case errors.Is(err, util.ErrSessionNotFound):
			util.NotFound(ctx)
		case errors.As(err, &verr):
			util.ErrorWithData(ctx, 400, "参数校验失败", gin.H{"violations": verr.Violations})
		case errors.As(err, &terr):
			util.ErrorWithData(ctx, 409, terr.Error(), gin.H{
				"currentStatus": terr.Current,
				"allowed":       terr.Allowed,
			})
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}
