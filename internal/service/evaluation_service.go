package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"talent_assessment_backend/internal/config"
	"talent_assessment_backend/internal/model"
	"talent_assessment_backend/internal/repository"
	"talent_assessment_backend/internal/util"

	"gorm.io/gorm"
)

type evalResponseStore interface {
	FindByID(id uint) (*model.TbeiResponse, error)
	FindByParticipant(participantID uint) ([]model.TbeiResponse, error)
	UpdateEvaluation(id uint, evaluation json.RawMessage) error
}

type evalDeadLetterStore interface {
	ClearForResponse(ctx context.Context, responseID uint) error
	FindForResponse(ctx context.Context, responseID uint) (*model.EvaluationDeadLetter, error)
}

// EvaluationService TBEI评估引擎：单条评估、按参与者批量评估、总评计算
type EvaluationService struct {
	responses   evalResponseStore
	scorer      Scorer
	deadLetters evalDeadLetterStore

	weightsMu sync.RWMutex
	weights   map[string]float64
}

func NewEvaluationService(
	responses *repository.TbeiResponseRepository,
	scorer Scorer,
	deadLetters *repository.DeadLetterRepository,
	cfg config.EvaluationConfig,
) *EvaluationService {
	return &EvaluationService{
		responses:   responses,
		scorer:      scorer,
		deadLetters: deadLetters,
		weights:     cfg.CompetencyWeights,
	}
}

// SetWeights 权重热更新入口（configwatcher回调）
func (s *EvaluationService) SetWeights(weights map[string]float64) {
	s.weightsMu.Lock()
	defer s.weightsMu.Unlock()
	s.weights = weights
}

func (s *EvaluationService) weightFor(competencyID string) float64 {
	s.weightsMu.RLock()
	defer s.weightsMu.RUnlock()
	if w, ok := s.weights[competencyID]; ok && w > 0 {
		return w
	}
	// 未配置时等权
	return 1.0
}

// EvaluateResponse 评估单条作答。成功时把结果合并进evaluation载荷（保留提交快照）并落库；
// 失败时不写任何内容，原样返回类型化错误。重复评估覆盖旧结果，不追加历史
func (s *EvaluationService) EvaluateResponse(ctx context.Context, responseID uint) (*model.TbeiResponse, error) {
	resp, err := s.responses.FindByID(responseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrResponseNotFound
	}
	if err != nil {
		return nil, err
	}

	eval, err := s.scorer.ScoreResponse(ctx, ScoringInput{
		CompetencyID:       resp.CompetencyID,
		Transcript:         resp.Transcript,
		StructuredResponse: resp.StructuredResponse,
	})
	if err != nil {
		return nil, &util.EvaluationFailedError{ResponseID: responseID, Cause: err}
	}

	now := time.Now()
	merged, err := MergeEvaluation(resp.Evaluation, eval, now)
	if err != nil {
		return nil, &util.EvaluationFailedError{ResponseID: responseID, Cause: err}
	}

	if err := s.responses.UpdateEvaluation(responseID, merged); err != nil {
		return nil, err
	}

	if s.deadLetters != nil {
		// 曾失败过的响应评估成功后清除失败标记，尽力而为
		_ = s.deadLetters.ClearForResponse(ctx, responseID)
	}

	resp.Evaluation = merged
	return resp, nil
}

// MergeEvaluation 把评估结果写入evaluation载荷，保留已有的提交快照字段
func MergeEvaluation(existing json.RawMessage, eval *model.CompetencyEvaluation, evaluatedAt time.Time) (json.RawMessage, error) {
	var payload model.TbeiEvaluationPayload
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &payload); err != nil {
			return nil, err
		}
	}

	payload.AIEvaluation = eval
	payload.EvaluatedAt = &evaluatedAt

	return json.Marshal(payload)
}

// ResponseEvaluationOutcome 参与者级批量评估中单条作答的结果
type ResponseEvaluationOutcome struct {
	ResponseID   uint                        `json:"responseId"`
	CompetencyID string                      `json:"competencyId"`
	Succeeded    bool                        `json:"succeeded"`
	Evaluation   *model.CompetencyEvaluation `json:"evaluation,omitempty"`
	Error        string                      `json:"error,omitempty"`
}

// EvaluateAllForParticipant 逐条评估参与者的全部作答，单条失败不会中断其余条目
func (s *EvaluationService) EvaluateAllForParticipant(ctx context.Context, participantID uint) ([]ResponseEvaluationOutcome, error) {
	resps, err := s.responses.FindByParticipant(participantID)
	if err != nil {
		return nil, err
	}

	outcomes := make([]ResponseEvaluationOutcome, 0, len(resps))
	for _, resp := range resps {
		outcome := ResponseEvaluationOutcome{
			ResponseID:   resp.ID,
			CompetencyID: resp.CompetencyID,
		}

		evaluated, err := s.EvaluateResponse(ctx, resp.ID)
		if err != nil {
			outcome.Error = err.Error()
		} else {
			outcome.Succeeded = true
			var payload model.TbeiEvaluationPayload
			if jerr := json.Unmarshal(evaluated.Evaluation, &payload); jerr == nil {
				outcome.Evaluation = payload.AIEvaluation
			}
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

type CompetencyScoreBreakdown struct {
	CompetencyID string  `json:"competencyId"`
	Score        float64 `json:"score"`
	Weight       float64 `json:"weight"`
}

type OverallTbeiScore struct {
	ParticipantID uint                       `json:"participantId"`
	OverallScore  float64                    `json:"overallScore"`
	Breakdown     []CompetencyScoreBreakdown `json:"breakdown"`
}

// ComputeOverallScore 对已持久化的评估数据做加权聚合，不发起外部调用。
// 所需胜任力只要有一个缺评估即拒绝
func (s *EvaluationService) ComputeOverallScore(participantID uint) (*OverallTbeiScore, error) {
	resps, err := s.responses.FindByParticipant(participantID)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float64)
	for _, resp := range resps {
		if len(resp.Evaluation) == 0 {
			continue
		}
		var payload model.TbeiEvaluationPayload
		if err := json.Unmarshal(resp.Evaluation, &payload); err != nil {
			continue
		}
		if payload.AIEvaluation != nil {
			scores[resp.CompetencyID] = payload.AIEvaluation.Score
		}
	}

	var missing []string
	for _, required := range model.RequiredCompetencies {
		if _, ok := scores[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, &util.IncompleteEvaluationsError{ParticipantID: participantID, Missing: missing}
	}

	result := &OverallTbeiScore{ParticipantID: participantID}
	var weightedSum, weightTotal float64
	for _, competencyID := range model.RequiredCompetencies {
		weight := s.weightFor(competencyID)
		score := scores[competencyID]
		weightedSum += weight * score
		weightTotal += weight
		result.Breakdown = append(result.Breakdown, CompetencyScoreBreakdown{
			CompetencyID: competencyID,
			Score:        score,
			Weight:       weight,
		})
	}
	result.OverallScore = weightedSum / weightTotal

	return result, nil
}

// EvaluationState 响应评估的三种可观测状态
type EvaluationState string

const (
	EvaluationStateNotEvaluated EvaluationState = "not_evaluated"
	EvaluationStateFailed       EvaluationState = "evaluation_failed"
	EvaluationStateEvaluated    EvaluationState = "evaluated"
)

// ResponseEvaluationState 区分未评估/评估失败/已评估三种状态
func (s *EvaluationService) ResponseEvaluationState(ctx context.Context, responseID uint) (EvaluationState, *model.EvaluationDeadLetter, error) {
	resp, err := s.responses.FindByID(responseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, util.ErrResponseNotFound
	}
	if err != nil {
		return "", nil, err
	}

	if len(resp.Evaluation) > 0 {
		var payload model.TbeiEvaluationPayload
		if err := json.Unmarshal(resp.Evaluation, &payload); err == nil && payload.AIEvaluation != nil {
			return EvaluationStateEvaluated, nil, nil
		}
	}

	if s.deadLetters != nil {
		dl, err := s.deadLetters.FindForResponse(ctx, responseID)
		if err == nil && dl != nil {
			return EvaluationStateFailed, dl, nil
		}
	}

	return EvaluationStateNotEvaluated, nil, nil
}
