package model

import "encoding/json"

// QuizResponse 参与者的知识测验结果，每人一行（participant_id唯一）
// swagger:model QuizResponse
type QuizResponse struct {
	BaseModel
	ParticipantID uint `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"participantId"`
	// Answers 题号->所选选项
	Answers          json.RawMessage `gorm:"type:json" json:"answers"`
	Score            int             `gorm:"not null" json:"score"`
	TotalQuestions   int             `gorm:"not null" json:"totalQuestions"`
	TimeSpentSeconds int             `gorm:"default:0" json:"timeSpentSeconds"`
}

func (QuizResponse) TableName() string {
	return "quiz_responses"
}
