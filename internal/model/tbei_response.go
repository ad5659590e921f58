package model

import (
	"encoding/json"
	"time"
)

// TbeiResponse 参与者对单个胜任力的面试作答
// (participant_id, competency_id) 为自然键，数据库层唯一约束保证并发重复提交不产生双行
// swagger:model TbeiResponse
type TbeiResponse struct {
	BaseModel
	ParticipantID         uint            `gorm:"uniqueIndex:uniq_participant_competency;type:bigint unsigned;not null" json:"participantId"`
	CompetencyID          string          `gorm:"uniqueIndex:uniq_participant_competency;size:64;not null" json:"competencyId"`
	QuestionID            string          `gorm:"size:64" json:"questionId"`
	SelectedQuestionIndex int             `gorm:"default:0" json:"selectedQuestionIndex"`
	Transcript            string          `gorm:"type:text" json:"transcript"`
	StructuredResponse    json.RawMessage `gorm:"type:json" json:"structuredResponse,omitempty"`
	AudioURL              string          `gorm:"size:512" json:"audioUrl,omitempty"`
	DurationSeconds       int             `gorm:"default:0" json:"durationSeconds"`
	// Evaluation 同时保存提交快照与AI评估结果，评估部分在提交后异步写入
	Evaluation json.RawMessage `gorm:"type:json" json:"evaluation,omitempty"`
}

func (TbeiResponse) TableName() string {
	return "tbei_responses"
}

// TbeiEvaluationPayload Evaluation字段的JSON结构
type TbeiEvaluationPayload struct {
	Submission   *TbeiSubmissionSnapshot `json:"submission,omitempty"`
	AIEvaluation *CompetencyEvaluation   `json:"aiEvaluation,omitempty"`
	EvaluatedAt  *time.Time              `json:"evaluatedAt,omitempty"`
}

// TbeiSubmissionSnapshot 提交时刻的原始结构化答案快照，评估覆盖时保留
type TbeiSubmissionSnapshot struct {
	QuestionID            string          `json:"questionId"`
	SelectedQuestionIndex int             `json:"selectedQuestionIndex"`
	StructuredResponse    json.RawMessage `json:"structuredResponse,omitempty"`
	SubmittedAt           time.Time       `json:"submittedAt"`
}

// CompetencyEvaluation 外部评分服务返回的结构化评估结果
type CompetencyEvaluation struct {
	CompetencyID string             `json:"competencyId"`
	Score        float64            `json:"score"`
	Dimensions   map[string]float64 `json:"dimensions,omitempty"`
	Strengths    []string           `json:"strengths,omitempty"`
	Improvements []string           `json:"improvements,omitempty"`
	Summary      string             `json:"summary,omitempty"`
}
