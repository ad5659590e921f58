package service

import (
	"errors"
	"fmt"
	"time"

	"talent_assessment_backend/internal/model"
	"talent_assessment_backend/internal/repository"
	"talent_assessment_backend/internal/util"
	"talent_assessment_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type sessionStore interface {
	Create(session *model.AssessmentSession) error
	FindByID(id uint) (*model.AssessmentSession, error)
	List(organizationID uint, page, limit int) ([]model.AssessmentSession, int64, error)
	UpdateStatusIf(id uint, from, to model.SessionStatus, completedAt *time.Time) (bool, error)
}

// SessionService 会话生命周期与状态机，会话状态只能经由Transition推进
type SessionService struct {
	repo sessionStore
}

func NewSessionService(repo *repository.SessionRepository) *SessionService {
	return &SessionService{repo: repo}
}

type CreateSessionRequest struct {
	OrganizationID uint                       `json:"organizationId" binding:"required"`
	Name           string                     `json:"name" binding:"required"`
	Participants   []CreateParticipantRequest `json:"participants" binding:"required"`
}

type CreateParticipantRequest struct {
	Name     string         `json:"name"`
	RoleCode model.RoleCode `json:"roleCode" binding:"required"`
}

func (s *SessionService) CreateSession(req CreateSessionRequest) (*model.AssessmentSession, error) {
	var violations []string
	if len(req.Participants) == 0 {
		violations = append(violations, "participants: at least one participant is required")
	}

	seen := map[model.RoleCode]bool{}
	for i, p := range req.Participants {
		if !model.ValidRoleCodes[p.RoleCode] {
			violations = append(violations, fmt.Sprintf("participants[%d].roleCode: unknown role code %s", i, p.RoleCode))
			continue
		}
		if seen[p.RoleCode] {
			violations = append(violations, "participants: role code "+string(p.RoleCode)+" assigned more than once")
		}
		seen[p.RoleCode] = true
	}
	if len(violations) > 0 {
		return nil, &util.ValidationError{Violations: violations}
	}

	session := &model.AssessmentSession{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Status:         model.SessionCreated,
	}
	for _, p := range req.Participants {
		session.Participants = append(session.Participants, model.AssessmentParticipant{
			Name:        p.Name,
			RoleCode:    p.RoleCode,
			AccessToken: model.GenerateUUID(),
			TbeiStatus:  model.StagePending,
			HipoStatus:  model.StagePending,
			QuizStatus:  model.StagePending,
		})
	}

	if err := s.repo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) GetSession(id uint) (*model.AssessmentSession, error) {
	session, err := s.repo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) ListSessions(organizationID uint, page, limit int) ([]model.AssessmentSession, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.List(organizationID, page, limit)
}

type TransitionResult struct {
	SessionID      uint                `json:"sessionId"`
	PreviousStatus model.SessionStatus `json:"previousStatus"`
	NewStatus      model.SessionStatus `json:"newStatus"`
}

// Transition 校验并落库一次会话状态转换。目标必须在转换表的后继集合内，
// 写入带乐观检查，并发请求只有一个能赢
func (s *SessionService) Transition(sessionID uint, target model.SessionStatus) (*TransitionResult, error) {
	if !target.Valid() {
		return nil, util.NewValidationError("status: unknown session status " + string(target))
	}

	session, err := s.repo.FindByID(sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	current := session.Status
	if !current.CanTransitionTo(target) {
		return nil, &util.InvalidTransitionError{
			SessionID: sessionID,
			Current:   current,
			Target:    target,
			Allowed:   current.AllowedNext(),
		}
	}

	var completedAt *time.Time
	if target == model.SessionCompleted {
		now := time.Now()
		completedAt = &now
	}

	updated, err := s.repo.UpdateStatusIf(sessionID, current, target, completedAt)
	if err != nil {
		return nil, err
	}
	if !updated {
		// 读取和写入之间有并发转换赢得了竞争，按最新状态报告
		fresh, ferr := s.repo.FindByID(sessionID)
		if ferr != nil {
			return nil, ferr
		}
		return nil, &util.InvalidTransitionError{
			SessionID: sessionID,
			Current:   fresh.Status,
			Target:    target,
			Allowed:   fresh.Status.AllowedNext(),
		}
	}

	// 审计日志，不参与不变量
	logger.Log.Info("session status transition",
		zap.Uint("sessionId", sessionID),
		zap.String("from", string(current)),
		zap.String("to", string(target)),
		zap.Time("at", time.Now()),
	)

	return &TransitionResult{
		SessionID:      sessionID,
		PreviousStatus: current,
		NewStatus:      target,
	}, nil
}
