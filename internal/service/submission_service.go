package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"talent_assessment_backend/internal/model"
	"talent_assessment_backend/internal/repository"
	"talent_assessment_backend/internal/util"
	"talent_assessment_backend/pkg/logger"
	"talent_assessment_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type submissionParticipantStore interface {
	FindByID(id uint) (*model.AssessmentParticipant, error)
}

type submissionTbeiStore interface {
	Upsert(resp *model.TbeiResponse) error
	FindByNaturalKey(participantID uint, competencyID string) (*model.TbeiResponse, error)
}

type submissionHipoStore interface {
	Upsert(a *model.HipoAssessment) error
}

type submissionQuizStore interface {
	Upsert(q *model.QuizResponse) error
}

type stageStatusRecomputer interface {
	RecomputeTbei(participantID uint) (model.StageStatus, error)
	RecomputeHipo(participantID uint) (model.StageStatus, error)
	RecomputeQuiz(participantID uint) (model.StageStatus, error)
}

type deadLetterRecorder interface {
	Record(ctx context.Context, dl *model.EvaluationDeadLetter) error
}

// SubmissionService 三类提交的统一写入路径：先校验，再按自然键原子upsert，
// 最后重算阶段状态。TBEI额外在落库后异步触发评估，提交方不等待评估结果
type SubmissionService struct {
	participants submissionParticipantStore
	tbei         submissionTbeiStore
	hipo         submissionHipoStore
	quiz         submissionQuizStore
	status       stageStatusRecomputer
	evaluator    responseEvaluator
	deadLetters  deadLetterRecorder

	evalTimeout time.Duration
	// 可替换的触发器，评估从提交路径上解耦
	triggerEvaluation func(responseID, participantID uint, competencyID string)
}

func NewSubmissionService(
	participants *repository.ParticipantRepository,
	tbei *repository.TbeiResponseRepository,
	hipo *repository.HipoRepository,
	quiz *repository.QuizRepository,
	status *ParticipantStatusService,
	evaluator *EvaluationService,
	deadLetters *repository.DeadLetterRepository,
	evalTimeoutSeconds int,
) *SubmissionService {
	s := &SubmissionService{
		participants: participants,
		tbei:         tbei,
		hipo:         hipo,
		quiz:         quiz,
		status:       status,
		evaluator:    evaluator,
		deadLetters:  deadLetters,
		evalTimeout:  time.Duration(evalTimeoutSeconds) * time.Second,
	}
	if s.evalTimeout <= 0 {
		s.evalTimeout = 2 * time.Minute
	}
	s.triggerEvaluation = func(responseID, participantID uint, competencyID string) {
		go s.runEvaluation(responseID, participantID, competencyID)
	}
	return s
}

func (s *SubmissionService) findParticipant(participantID uint) (*model.AssessmentParticipant, error) {
	p, err := s.participants.FindByID(participantID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrParticipantNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

type TbeiSubmissionRequest struct {
	CompetencyID          string          `json:"competencyId" binding:"required"`
	QuestionID            string          `json:"questionId" binding:"required"`
	SelectedQuestionIndex int             `json:"selectedQuestionIndex"`
	Transcript            string          `json:"transcript"`
	StructuredResponse    json.RawMessage `json:"structuredResponse"`
	AudioURL              string          `json:"audioUrl"`
	DurationSeconds       int             `json:"durationSeconds"`
}

func (req *TbeiSubmissionRequest) validate() []string {
	var violations []string
	if !model.IsRequiredCompetency(req.CompetencyID) {
		violations = append(violations, "competencyId: unknown competency "+req.CompetencyID)
	}
	if req.SelectedQuestionIndex < 0 || req.SelectedQuestionIndex >= model.QuestionVariantCount {
		violations = append(violations, fmt.Sprintf("selectedQuestionIndex: %d out of range [0,%d]",
			req.SelectedQuestionIndex, model.QuestionVariantCount-1))
	}
	if req.DurationSeconds < 0 {
		violations = append(violations, "durationSeconds: must not be negative")
	}
	if req.Transcript == "" && len(req.StructuredResponse) == 0 {
		violations = append(violations, "transcript: either transcript or structuredResponse is required")
	}
	return violations
}

type TbeiSubmissionResult struct {
	ResponseID          uint   `json:"responseId"`
	CompetencyID        string `json:"competencyId"`
	IsCompleted         bool   `json:"isCompleted"`
	EvaluationTriggered bool   `json:"evaluationTriggered"`
}

func (s *SubmissionService) SubmitTbei(participantID uint, req TbeiSubmissionRequest) (*TbeiSubmissionResult, error) {
	if violations := req.validate(); len(violations) > 0 {
		return nil, &util.ValidationError{Violations: violations}
	}

	if _, err := s.findParticipant(participantID); err != nil {
		return nil, err
	}

	snapshot := model.TbeiEvaluationPayload{
		Submission: &model.TbeiSubmissionSnapshot{
			QuestionID:            req.QuestionID,
			SelectedQuestionIndex: req.SelectedQuestionIndex,
			StructuredResponse:    req.StructuredResponse,
			SubmittedAt:           time.Now(),
		},
	}
	evaluation, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	resp := &model.TbeiResponse{
		ParticipantID:         participantID,
		CompetencyID:          req.CompetencyID,
		QuestionID:            req.QuestionID,
		SelectedQuestionIndex: req.SelectedQuestionIndex,
		Transcript:            req.Transcript,
		StructuredResponse:    req.StructuredResponse,
		AudioURL:              req.AudioURL,
		DurationSeconds:       req.DurationSeconds,
		Evaluation:            evaluation,
	}
	if err := s.tbei.Upsert(resp); err != nil {
		return nil, err
	}

	// upsert走更新分支时不回填主键，按自然键重读
	stored, err := s.tbei.FindByNaturalKey(participantID, req.CompetencyID)
	if err != nil {
		return nil, err
	}

	s.triggerEvaluation(stored.ID, participantID, req.CompetencyID)

	status, err := s.status.RecomputeTbei(participantID)
	if err != nil {
		return nil, err
	}

	return &TbeiSubmissionResult{
		ResponseID:          stored.ID,
		CompetencyID:        req.CompetencyID,
		IsCompleted:         status == model.StageCompleted,
		EvaluationTriggered: true,
	}, nil
}

// runEvaluation 分离的评估worker。失败只记录死信和日志，绝不回流到提交方
func (s *SubmissionService) runEvaluation(responseID, participantID uint, competencyID string) {
	monitoring.EvaluationsTriggered.Inc()

	ctx, cancel := context.WithTimeout(context.Background(), s.evalTimeout)
	defer cancel()

	if _, err := s.evaluator.EvaluateResponse(ctx, responseID); err != nil {
		monitoring.EvaluationResults.WithLabelValues("failed").Inc()
		logger.Log.Error("async TBEI evaluation failed",
			zap.Uint("responseId", responseID),
			zap.Uint("participantId", participantID),
			zap.String("competencyId", competencyID),
			zap.Error(err),
		)

		dlCtx, dlCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dlCancel()
		dl := &model.EvaluationDeadLetter{
			ResponseID:    responseID,
			ParticipantID: participantID,
			CompetencyID:  competencyID,
			Reason:        err.Error(),
			FailedAt:      time.Now(),
		}
		if rerr := s.deadLetters.Record(dlCtx, dl); rerr != nil {
			logger.Log.Error("failed to record evaluation dead letter",
				zap.Uint("responseId", responseID), zap.Error(rerr))
			return
		}
		monitoring.EvaluationsDeadLettered.Inc()
		return
	}

	monitoring.EvaluationResults.WithLabelValues("success").Inc()
}

type HipoSubmissionRequest struct {
	AbilityScore             int            `json:"abilityScore" binding:"required"`
	AspirationScore          int            `json:"aspirationScore" binding:"required"`
	EngagementScore          int            `json:"engagementScore" binding:"required"`
	IntegratedScore          int            `json:"integratedScore" binding:"required"`
	TotalScore               int            `json:"totalScore" binding:"required"`
	Responses                map[string]int `json:"responses" binding:"required"`
	OpenResponseStrengths    string         `json:"openResponseStrengths"`
	OpenResponseDevelopment  string         `json:"openResponseDevelopment"`
	AbilityClassification    model.HipoTier `json:"abilityClassification" binding:"required"`
	AspirationClassification model.HipoTier `json:"aspirationClassification" binding:"required"`
	EngagementClassification model.HipoTier `json:"engagementClassification" binding:"required"`
	IntegratedClassification model.HipoTier `json:"integratedClassification" binding:"required"`
}

func (req *HipoSubmissionRequest) validate() []string {
	var violations []string

	subScores := map[string]int{
		"abilityScore":    req.AbilityScore,
		"aspirationScore": req.AspirationScore,
		"engagementScore": req.EngagementScore,
		"integratedScore": req.IntegratedScore,
	}
	for _, name := range []string{"abilityScore", "aspirationScore", "engagementScore", "integratedScore"} {
		if v := subScores[name]; v < model.HipoSubScoreMin || v > model.HipoSubScoreMax {
			violations = append(violations, fmt.Sprintf("%s: %d out of range [%d,%d]",
				name, v, model.HipoSubScoreMin, model.HipoSubScoreMax))
		}
	}

	if req.TotalScore < model.HipoTotalScoreMin || req.TotalScore > model.HipoTotalScoreMax {
		violations = append(violations, fmt.Sprintf("totalScore: %d out of range [%d,%d]",
			req.TotalScore, model.HipoTotalScoreMin, model.HipoTotalScoreMax))
	}

	for question, score := range req.Responses {
		if score < model.HipoItemScoreMin || score > model.HipoItemScoreMax {
			violations = append(violations, fmt.Sprintf("responses[%s]: %d out of range [%d,%d]",
				question, score, model.HipoItemScoreMin, model.HipoItemScoreMax))
		}
	}

	tiers := map[string]model.HipoTier{
		"abilityClassification":    req.AbilityClassification,
		"aspirationClassification": req.AspirationClassification,
		"engagementClassification": req.EngagementClassification,
		"integratedClassification": req.IntegratedClassification,
	}
	for _, name := range []string{"abilityClassification", "aspirationClassification", "engagementClassification", "integratedClassification"} {
		if !model.ValidHipoTiers[tiers[name]] {
			violations = append(violations, fmt.Sprintf("%s: unknown tier %s", name, tiers[name]))
		}
	}

	return violations
}

type HipoSubmissionResult struct {
	TotalScore      int                       `json:"totalScore"`
	Classifications map[string]model.HipoTier `json:"classifications"`
}

func (s *SubmissionService) SubmitHipo(participantID uint, req HipoSubmissionRequest) (*HipoSubmissionResult, error) {
	if violations := req.validate(); len(violations) > 0 {
		return nil, &util.ValidationError{Violations: violations}
	}

	if _, err := s.findParticipant(participantID); err != nil {
		return nil, err
	}

	responses, err := json.Marshal(req.Responses)
	if err != nil {
		return nil, err
	}

	assessment := &model.HipoAssessment{
		ParticipantID:            participantID,
		AbilityScore:             req.AbilityScore,
		AspirationScore:          req.AspirationScore,
		EngagementScore:          req.EngagementScore,
		IntegratedScore:          req.IntegratedScore,
		TotalScore:               req.TotalScore,
		Responses:                responses,
		OpenResponseStrengths:    req.OpenResponseStrengths,
		OpenResponseDevelopment:  req.OpenResponseDevelopment,
		AbilityClassification:    req.AbilityClassification,
		AspirationClassification: req.AspirationClassification,
		EngagementClassification: req.EngagementClassification,
		IntegratedClassification: req.IntegratedClassification,
	}
	if err := s.hipo.Upsert(assessment); err != nil {
		return nil, err
	}

	if _, err := s.status.RecomputeHipo(participantID); err != nil {
		return nil, err
	}

	return &HipoSubmissionResult{
		TotalScore: req.TotalScore,
		Classifications: map[string]model.HipoTier{
			"ability":    req.AbilityClassification,
			"aspiration": req.AspirationClassification,
			"engagement": req.EngagementClassification,
			"integrated": req.IntegratedClassification,
		},
	}, nil
}

type QuizSubmissionRequest struct {
	Answers          map[string]string `json:"answers" binding:"required"`
	Score            int               `json:"score"`
	TotalQuestions   int               `json:"totalQuestions" binding:"required"`
	TimeSpentSeconds int               `json:"timeSpentSeconds"`
}

func (req *QuizSubmissionRequest) validate() []string {
	var violations []string
	if len(req.Answers) == 0 {
		violations = append(violations, "answers: must not be empty")
	}
	if req.Score < 0 {
		violations = append(violations, "score: must not be negative")
	}
	if req.TotalQuestions < 1 {
		violations = append(violations, "totalQuestions: must be at least 1")
	}
	if req.Score > req.TotalQuestions && req.TotalQuestions >= 1 {
		violations = append(violations, fmt.Sprintf("score: %d exceeds totalQuestions %d", req.Score, req.TotalQuestions))
	}
	if req.TimeSpentSeconds < 0 {
		violations = append(violations, "timeSpentSeconds: must not be negative")
	}
	return violations
}

type QuizSubmissionResult struct {
	Score            int     `json:"score"`
	TotalQuestions   int     `json:"totalQuestions"`
	Percentage       float64 `json:"percentage"`
	TimeSpentMinutes float64 `json:"timeSpentMinutes"`
}

func (s *SubmissionService) SubmitQuiz(participantID uint, req QuizSubmissionRequest) (*QuizSubmissionResult, error) {
	if violations := req.validate(); len(violations) > 0 {
		return nil, &util.ValidationError{Violations: violations}
	}

	if _, err := s.findParticipant(participantID); err != nil {
		return nil, err
	}

	answers, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, err
	}

	quiz := &model.QuizResponse{
		ParticipantID:    participantID,
		Answers:          answers,
		Score:            req.Score,
		TotalQuestions:   req.TotalQuestions,
		TimeSpentSeconds: req.TimeSpentSeconds,
	}
	if err := s.quiz.Upsert(quiz); err != nil {
		return nil, err
	}

	if _, err := s.status.RecomputeQuiz(participantID); err != nil {
		return nil, err
	}

	return &QuizSubmissionResult{
		Score:            req.Score,
		TotalQuestions:   req.TotalQuestions,
		Percentage:       math.Round(float64(req.Score)/float64(req.TotalQuestions)*10000) / 100,
		TimeSpentMinutes: math.Round(float64(req.TimeSpentSeconds)/60*10) / 10,
	}, nil
}
