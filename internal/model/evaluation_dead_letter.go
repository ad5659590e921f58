package model

import "time"

// EvaluationDeadLetter 异步评估失败的死信记录，仅用于运维可见性，
// 提交本身不受评估结果影响
type EvaluationDeadLetter struct {
	ResponseID    uint      `json:"responseId"`
	ParticipantID uint      `json:"participantId"`
	CompetencyID  string    `json:"competencyId"`
	Reason        string    `json:"reason"`
	FailedAt      time.Time `json:"failedAt"`
}
