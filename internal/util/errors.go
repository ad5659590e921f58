package util

import (
	"errors"
	"fmt"
	"strings"

	"talent_assessment_backend/internal/model"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrResponseNotFound    = errors.New("response not found")
)

// InvalidTransitionError 会话状态机拒绝非法转换时返回，附带允许的后继集合便于调用方补救
type InvalidTransitionError struct {
	SessionID uint
	Current   model.SessionStatus
	Target    model.SessionStatus
	Allowed   []model.SessionStatus
}

func (e *InvalidTransitionError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		allowed[i] = string(s)
	}
	return fmt.Sprintf("invalid transition for session %d: %s -> %s (allowed: [%s])",
		e.SessionID, e.Current, e.Target, strings.Join(allowed, ", "))
}

// ValidationError 载体为全部违规项，持久化前拒绝
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

func NewValidationError(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}

// IncompleteEvaluationsError 所需胜任力尚未全部评估完成时，总评计算拒绝执行
type IncompleteEvaluationsError struct {
	ParticipantID uint
	Missing       []string
}

func (e *IncompleteEvaluationsError) Error() string {
	return fmt.Sprintf("incomplete evaluations for participant %d: missing [%s]",
		e.ParticipantID, strings.Join(e.Missing, ", "))
}

// EvaluationFailedError 评分适配器失败，按单条响应隔离，不污染已存数据
type EvaluationFailedError struct {
	ResponseID uint
	Cause      error
}

func (e *EvaluationFailedError) Error() string {
	return fmt.Sprintf("evaluation failed for response %d: %v", e.ResponseID, e.Cause)
}

func (e *EvaluationFailedError) Unwrap() error {
	return e.Cause
}

// InvalidBatchSizeError 批量评估越界，任何工作开始前快速失败
type InvalidBatchSizeError struct {
	Size int
	Max  int
}

func (e *InvalidBatchSizeError) Error() string {
	return fmt.Sprintf("invalid batch size %d: must be between 1 and %d", e.Size, e.Max)
}
