package repository

import (
	"time"

	"talent_assessment_backend/internal/model"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

// Create 会话及其参与者在同一事务内落库
func (r *SessionRepository) Create(session *model.AssessmentSession) error {
	return r.DB.Create(session).Error
}

func (r *SessionRepository) FindByID(id uint) (*model.AssessmentSession, error) {
	var s model.AssessmentSession
	err := r.DB.Preload("Participants").First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) List(organizationID uint, page, limit int) ([]model.AssessmentSession, int64, error) {
	var sessions []model.AssessmentSession
	var total int64

	query := r.DB.Model(&model.AssessmentSession{})
	if organizationID > 0 {
		query = query.Where("organization_id = ?", organizationID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&sessions).Error
	return sessions, total, err
}

// UpdateStatusIf 带乐观检查的状态写入：仅当存量状态仍等于from时才生效，
// 返回是否有行被更新，避免并发转换请求互相覆盖
func (r *SessionRepository) UpdateStatusIf(id uint, from, to model.SessionStatus, completedAt *time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status": to,
	}
	if completedAt != nil {
		updates["completed_at"] = completedAt
	}

	result := r.DB.Model(&model.AssessmentSession{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
