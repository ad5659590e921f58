package model

import "encoding/json"

// HiPo问卷的分数区间与分档标签
const (
	HipoSubScoreMin   = 5
	HipoSubScoreMax   = 25
	HipoTotalScoreMin = 20
	HipoTotalScoreMax = 100
	HipoItemScoreMin  = 1
	HipoItemScoreMax  = 5
)

// HipoTier 四级有序分档
type HipoTier string

const (
	HipoTier1 HipoTier = "tier1"
	HipoTier2 HipoTier = "tier2"
	HipoTier3 HipoTier = "tier3"
	HipoTier4 HipoTier = "tier4"
)

var ValidHipoTiers = map[HipoTier]bool{
	HipoTier1: true,
	HipoTier2: true,
	HipoTier3: true,
	HipoTier4: true,
}

// HipoAssessment 参与者的HiPo自评问卷，每人一行（participant_id唯一）
// swagger:model HipoAssessment
type HipoAssessment struct {
	BaseModel
	ParticipantID   uint `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"participantId"`
	AbilityScore    int  `gorm:"not null" json:"abilityScore"`
	AspirationScore int  `gorm:"not null" json:"aspirationScore"`
	EngagementScore int  `gorm:"not null" json:"engagementScore"`
	IntegratedScore int  `gorm:"not null" json:"integratedScore"`
	TotalScore      int  `gorm:"not null" json:"totalScore"`
	// Responses 题号->分值(1-5)
	Responses                 json.RawMessage `gorm:"type:json" json:"responses"`
	OpenResponseStrengths     string          `gorm:"type:text" json:"openResponseStrengths"`
	OpenResponseDevelopment   string          `gorm:"type:text" json:"openResponseDevelopment"`
	AbilityClassification     HipoTier        `gorm:"size:8;not null" json:"abilityClassification"`
	AspirationClassification  HipoTier        `gorm:"size:8;not null" json:"aspirationClassification"`
	EngagementClassification  HipoTier        `gorm:"size:8;not null" json:"engagementClassification"`
	IntegratedClassification  HipoTier        `gorm:"size:8;not null" json:"integratedClassification"`
}

func (HipoAssessment) TableName() string {
	return "hipo_assessments"
}
