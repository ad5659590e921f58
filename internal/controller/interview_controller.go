package controller

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"talent_assessment_backend/internal/middleware"
	"talent_assessment_backend/internal/service"
	"talent_assessment_backend/internal/util"
	"talent_assessment_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InterviewController 参与者端接口，全部经由访问令牌定位受评者
type InterviewController struct {
	SubmissionService *service.SubmissionService
	StorageService    *service.StorageService
}

func NewInterviewController(submissionService *service.SubmissionService, storageService *service.StorageService) *InterviewController {
	return &InterviewController{
		SubmissionService: submissionService,
		StorageService:    storageService,
	}
}

// GetParticipant godoc
// @Summary 受评者概览
// @Description 通过访问令牌获取受评者信息和三个子流程的进度
// @Tags 测评入口
// @Produce  json
// @Param   token path string true "访问令牌"
// @Success 200 {object} util.Response{data=model.AssessmentParticipant} "成功"
// @Failure 404 {object} util.Response "令牌无效"
// @Router /api/interview/{token} [get]
func (c *InterviewController) GetParticipant(ctx *gin.Context) {
	participant := middleware.GetParticipantFromContext(ctx)
	if participant == nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, participant)
}

// SubmitTbei godoc
// @Summary 提交TBEI作答
// @Description 按(受评者,胜任力)覆盖写入作答并异步触发AI评估，重复提交以最后一次为准
// @Tags 测评入口
// @Accept  json
// @Produce  json
// @Param   token path string true "访问令牌"
// @Param   body body service.TbeiSubmissionRequest true "作答内容"
// @Success 200 {object} util.Response{data=service.TbeiSubmissionResult} "提交成功"
// @Failure 400 {object} util.Response "参数校验失败"
// @Failure 404 {object} util.Response "令牌无效"
// @Router /api/interview/{token}/tbei [post]
func (c *InterviewController) SubmitTbei(ctx *gin.Context) {
	participant := middleware.GetParticipantFromContext(ctx)
	if participant == nil {
		util.NotFound(ctx)
		return
	}

	var req service.TbeiSubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.SubmissionService.SubmitTbei(participant.ID, req)
	if err != nil {
		c.handleSubmissionError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// UploadAudio godoc
// @Summary 上传TBEI录音
// @Description 上传录音文件并探测时长，返回的地址和时长随后随作答一起提交
// @Tags 测评入口
// @Accept  multipart/form-data
// @Produce  json
// @Param   token path string true "访问令牌"
// @Param   file formData file true "录音文件"
// @Success 200 {object} util.Response{data=object} "上传成功"
// @Failure 400 {object} util.Response "文件缺失或格式不支持"
// @Failure 404 {object} util.Response "令牌无效"
// @Router /api/interview/{token}/tbei/audio [post]
func (c *InterviewController) UploadAudio(ctx *gin.Context) {
	participant := middleware.GetParticipantFromContext(ctx)
	if participant == nil {
		util.NotFound(ctx)
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少录音文件")
		return
	}

	ext := filepath.Ext(file.Filename)
	switch ext {
	case ".mp3", ".wav", ".m4a", ".webm", ".ogg":
	default:
		util.BadRequest(ctx, "不支持的音频格式: "+ext)
		return
	}

	// 先落临时文件，ffmpeg 探测时长需要本地路径
	tmpPath := filepath.Join(os.TempDir(), uuid.New().String()+ext)
	if err := ctx.SaveUploadedFile(file, tmpPath); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer os.Remove(tmpPath)

	durationSeconds := 0
	info, err := util.GetAudioInfo(tmpPath)
	if err != nil {
		// 探测失败不阻断上传，时长留空
		logger.Log.Warn("audio probe failed",
			zap.Uint("participantId", participant.ID), zap.Error(err))
	} else {
		durationSeconds = int(info.Duration)
	}

	src, err := os.Open(tmpPath)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	objectName := fmt.Sprintf("tbei_audio/%d/%d%s", participant.ID, time.Now().UnixNano(), ext)
	url, err := c.StorageService.Upload(ctx.Request.Context(), objectName, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"audioUrl":        url,
		"durationSeconds": durationSeconds,
	})
}

// SubmitHipo godoc
// @Summary 提交HiPo自评
// @Description 写入高潜力自评问卷，每受评者一份，重复提交覆盖
// @Tags 测评入口
// @Accept  json
// @Produce  json
// @Param   token path string true "访问令牌"
// @Param   body body service.HipoSubmissionRequest true "问卷内容"
// @Success 200 {object} util.Response{data=service.HipoSubmissionResult} "提交成功"
// @Failure 400 {object} util.Response "分值越界或参数校验失败"
// @Failure 404 {object} util.Response "令牌无效"
// @Router /api/interview/{token}/hipo [post]
func (c *InterviewController) SubmitHipo(ctx *gin.Context) {
	participant := middleware.GetParticipantFromContext(ctx)
	if participant == nil {
		util.NotFound(ctx)
		return
	}

	var req service.HipoSubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.SubmissionService.SubmitHipo(participant.ID, req)
	if err != nil {
		c.handleSubmissionError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// SubmitQuiz godoc
// @Summary 提交知识测验
// @Description 写入测验答卷和得分，每受评者一份，重复提交覆盖
// @Tags 测评入口
// @Accept  json
// @Produce  json
// @Param   token path string true "访问令牌"
// @Param   body body service.QuizSubmissionRequest true "答卷内容"
// @Success 200 {object} util.Response{data=service.QuizSubmissionResult} "提交成功"
// @Failure 400 {object} util.Response "参数校验失败"
// @Failure 404 {object} util.Response "令牌无效"
// @Router /api/interview/{token}/quiz [post]
func (c *InterviewController) SubmitQuiz(ctx *gin.Context) {
	participant := middleware.GetParticipantFromContext(ctx)
	if participant == nil {
		util.NotFound(ctx)
		return
	}

	var req service.QuizSubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.SubmissionService.SubmitQuiz(participant.ID, req)
	if err != nil {
		c.handleSubmissionError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

func (c *InterviewController) handleSubmissionError(ctx *gin.Context, err error) {
	var verr *util.ValidationError
	switch {
	case errors.As(err, &verr):
		util.ErrorWithData(ctx, 400, "参数校验失败", gin.H{"violations": verr.Violations})
	case errors.Is(err, util.ErrParticipantNotFound):
		util.NotFound(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
