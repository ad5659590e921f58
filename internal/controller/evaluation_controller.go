package controller

import (
	"errors"
	"strconv"

	"talent_assessment_backend/internal/repository"
	"talent_assessment_backend/internal/service"
	"talent_assessment_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// EvaluationController 管理端评估接口：同步重评、批量评估、总评查询与死信巡检
type EvaluationController struct {
	EvaluationService *service.EvaluationService
	BatchService      *service.BatchEvaluationService
	DeadLetterRepo    *repository.DeadLetterRepository
}

func NewEvaluationController(
	evaluationService *service.EvaluationService,
	batchService *service.BatchEvaluationService,
	deadLetterRepo *repository.DeadLetterRepository,
) *EvaluationController {
	return &EvaluationController{
		EvaluationService: evaluationService,
		BatchService:      batchService,
		DeadLetterRepo:    deadLetterRepo,
	}
}

type EvaluateTbeiRequest struct {
	Action        string `json:"action" binding:"required,oneof=response participant overall"`
	ResponseID    uint   `json:"responseId"`
	ParticipantID uint   `json:"participantId"`
}

// EvaluateTbei godoc
// @Summary 触发TBEI评估
// @Description 同步评估单条作答(action=response)、某受评者的全部作答(action=participant)，或计算其加权总评(action=overall)
// @Tags 评估管理
// @Accept  json
// @Produce  json
// @Param   body body EvaluateTbeiRequest true "评估目标"
// @Success 200 {object} util.Response "评估完成"
// @Failure 400 {object} util.Response "参数错误"
// @Failure 404 {object} util.Response "作答或受评者不存在"
// @Failure 409 {object} util.Response "评估不完整"
// @Failure 502 {object} util.Response "评分服务失败"
// @Security BearerAuth
// @Router /api/admin/evaluations/tbei [post]
func (c *EvaluationController) EvaluateTbei(ctx *gin.Context) {
	var req EvaluateTbeiRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	switch req.Action {
	case "response":
		if req.ResponseID == 0 {
			util.BadRequest(ctx, "responseId 不能为空")
			return
		}
		resp, err := c.EvaluationService.EvaluateResponse(ctx.Request.Context(), req.ResponseID)
		if err != nil {
			c.handleEvaluationError(ctx, err)
			return
		}
		util.Success(ctx, resp)
	case "participant":
		if req.ParticipantID == 0 {
			util.BadRequest(ctx, "participantId 不能为空")
			return
		}
		outcomes, err := c.EvaluationService.EvaluateAllForParticipant(ctx.Request.Context(), req.ParticipantID)
		if err != nil {
			c.handleEvaluationError(ctx, err)
			return
		}
		util.Success(ctx, outcomes)
	case "overall":
		if req.ParticipantID == 0 {
			util.BadRequest(ctx, "participantId 不能为空")
			return
		}
		score, err := c.EvaluationService.ComputeOverallScore(req.ParticipantID)
		if err != nil {
			c.handleEvaluationError(ctx, err)
			return
		}
		util.Success(ctx, score)
	}
}

type BatchEvaluateRequest struct {
	ResponseIDs []uint `json:"responseIds" binding:"required"`
}

// BatchEvaluate godoc
// @Summary 批量评估
// @Description 并发评估一批作答，单条失败不影响其余，返回成功/失败分组
// @Tags 评估管理
// @Accept  json
// @Produce  json
// @Param   body body BatchEvaluateRequest true "作答ID列表"
// @Success 200 {object} util.Response{data=service.BatchResult} "批量结果"
// @Failure 400 {object} util.Response "批量大小越界"
// @Security BearerAuth
// @Router /api/admin/evaluations/batch [post]
func (c *EvaluationController) BatchEvaluate(ctx *gin.Context) {
	var req BatchEvaluateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.BatchService.BatchEvaluate(ctx.Request.Context(), req.ResponseIDs)
	if err != nil {
		var berr *util.InvalidBatchSizeError
		if errors.As(err, &berr) {
			util.BadRequest(ctx, berr.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// GetOverallScore godoc
// @Summary 受评者TBEI总评
// @Description 按配置权重聚合各胜任力得分，存在未评估的必评胜任力时返回409
// @Tags 评估管理
// @Produce  json
// @Param   id path int true "受评者ID"
// @Success 200 {object} util.Response{data=service.OverallTbeiScore} "成功"
// @Failure 404 {object} util.Response "受评者不存在"
// @Failure 409 {object} util.Response "评估不完整"
// @Security BearerAuth
// @Router /api/admin/participants/{id}/overall-score [get]
func (c *EvaluationController) GetOverallScore(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "无效的受评者ID")
		return
	}

	score, err := c.EvaluationService.ComputeOverallScore(uint(id))
	if err != nil {
		var ierr *util.IncompleteEvaluationsError
		switch {
		case errors.Is(err, util.ErrParticipantNotFound):
			util.NotFound(ctx)
		case errors.As(err, &ierr):
			util.ErrorWithData(ctx, 409, ierr.Error(), gin.H{"missing": ierr.Missing})
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, score)
}

// GetResponseState godoc
// @Summary 作答评估状态
// @Description 查询单条作答的评估读模型：未评估、评估失败（附死信）、已评估
// @Tags 评估管理
// @Produce  json
// @Param   id path int true "作答ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 404 {object} util.Response "作答不存在"
// @Security BearerAuth
// @Router /api/admin/evaluations/responses/{id}/state [get]
func (c *EvaluationController) GetResponseState(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "无效的作答ID")
		return
	}

	state, deadLetter, err := c.EvaluationService.ResponseEvaluationState(ctx.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, util.ErrResponseNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"state":      state,
		"deadLetter": deadLetter,
	})
}

// ListDeadLetters godoc
// @Summary 评估死信列表
// @Description 查询最近的异步评估失败记录
// @Tags 评估管理
// @Produce  json
// @Param   limit query int false "条数" default(50)
// @Success 200 {object} util.Response{data=[]model.EvaluationDeadLetter} "成功"
// @Security BearerAuth
// @Router /api/admin/evaluations/dead-letters [get]
func (c *EvaluationController) ListDeadLetters(ctx *gin.Context) {
	limit, _ := strconv.ParseInt(ctx.DefaultQuery("limit", "50"), 10, 64)
	if limit <= 0 || limit > 1000 {
		limit = 50
	}

	letters, err := c.DeadLetterRepo.List(ctx.Request.Context(), limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, letters)
}

func (c *EvaluationController) handleEvaluationError(ctx *gin.Context, err error) {
	var ferr *util.EvaluationFailedError
	var ierr *util.IncompleteEvaluationsError
	switch {
	case errors.Is(err, util.ErrResponseNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrParticipantNotFound):
		util.NotFound(ctx)
	case errors.As(err, &ierr):
		util.ErrorWithData(ctx, 409, ierr.Error(), gin.H{"missing": ierr.Missing})
	case errors.As(err, &ferr):
		util.Error(ctx, 502, ferr.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
