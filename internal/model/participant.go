package model

// StageStatus 参与者在单个测评子流程中的状态
type StageStatus string

const (
	StagePending    StageStatus = "pending"
	StageInProgress StageStatus = "in_progress"
	StageCompleted  StageStatus = "completed"
)

// RoleCode 案例讨论的分配角色，一个会话内不可重复
type RoleCode string

const (
	RoleCEO  RoleCode = "ceo"
	RoleCFO  RoleCode = "cfo"
	RoleCOO  RoleCode = "coo"
	RoleCHRO RoleCode = "chro"
	RoleCIO  RoleCode = "cio"
	RoleCMO  RoleCode = "cmo"
)

var ValidRoleCodes = map[RoleCode]bool{
	RoleCEO:  true,
	RoleCFO:  true,
	RoleCOO:  true,
	RoleCHRO: true,
	RoleCIO:  true,
	RoleCMO:  true,
}

// swagger:model AssessmentParticipant
type AssessmentParticipant struct {
	BaseModel
	SessionID uint     `gorm:"uniqueIndex:uniq_session_role;type:bigint unsigned;not null" json:"sessionId"`
	RoleCode  RoleCode `gorm:"uniqueIndex:uniq_session_role;size:16;not null" json:"roleCode"`
	Name      string   `gorm:"size:255" json:"name"`
	// AccessToken 是参与者端接口唯一的外部引用，不暴露数字ID
	AccessToken string      `gorm:"uniqueIndex;size:36;not null" json:"-"`
	TbeiStatus  StageStatus `gorm:"size:16;default:'pending'" json:"tbeiStatus"`
	HipoStatus  StageStatus `gorm:"size:16;default:'pending'" json:"hipoStatus"`
	QuizStatus  StageStatus `gorm:"size:16;default:'pending'" json:"quizStatus"`
}

func (AssessmentParticipant) TableName() string {
	return "assessment_participants"
}
