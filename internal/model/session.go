package model

import "time"

// SessionStatus 测评会话的阶段状态，只允许沿转换表单向推进
type SessionStatus string

const (
	SessionCreated             SessionStatus = "created"
	SessionCaseStudyInProgress SessionStatus = "case_study_in_progress"
	SessionCaseStudyCompleted  SessionStatus = "case_study_completed"
	SessionTbeiInProgress      SessionStatus = "tbei_in_progress"
	SessionCompleted           SessionStatus = "completed"
)

// SessionTransitions 会话状态转换表，completed为终态
var SessionTransitions = map[SessionStatus][]SessionStatus{
	SessionCreated:             {SessionCaseStudyInProgress},
	SessionCaseStudyInProgress: {SessionCaseStudyCompleted},
	SessionCaseStudyCompleted:  {SessionTbeiInProgress},
	SessionTbeiInProgress:      {SessionCompleted},
	SessionCompleted:           {},
}

// AllowedNext 返回当前状态允许的后继状态集合
func (s SessionStatus) AllowedNext() []SessionStatus {
	next, ok := SessionTransitions[s]
	if !ok {
		return nil
	}
	return next
}

// CanTransitionTo 判断target是否为当前状态的合法后继
func (s SessionStatus) CanTransitionTo(target SessionStatus) bool {
	for _, next := range s.AllowedNext() {
		if next == target {
			return true
		}
	}
	return false
}

func (s SessionStatus) Valid() bool {
	_, ok := SessionTransitions[s]
	return ok
}

// swagger:model AssessmentSession
type AssessmentSession struct {
	BaseModel
	OrganizationID uint                    `gorm:"index;type:bigint unsigned;not null" json:"organizationId"`
	Name           string                  `gorm:"size:255;not null" json:"name"`
	Status         SessionStatus           `gorm:"size:32;default:'created';index" json:"status"`
	CompletedAt    *time.Time              `json:"completedAt,omitempty"`
	Participants   []AssessmentParticipant `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"participants,omitempty"`
}

func (AssessmentSession) TableName() string {
	return "assessment_sessions"
}
