package repository

import (
	"talent_assessment_backend/internal/model"

	"gorm.io/gorm"
)

type ParticipantRepository struct {
	DB *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{DB: db}
}

func (r *ParticipantRepository) FindByID(id uint) (*model.AssessmentParticipant, error) {
	var p model.AssessmentParticipant
	err := r.DB.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ParticipantRepository) FindByAccessToken(token string) (*model.AssessmentParticipant, error) {
	var p model.AssessmentParticipant
	err := r.DB.Where("access_token = ?", token).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ParticipantRepository) ListBySession(sessionID uint) ([]model.AssessmentParticipant, error) {
	var ps []model.AssessmentParticipant
	err := r.DB.Where("session_id = ?", sessionID).Order("id asc").Find(&ps).Error
	return ps, err
}

func (r *ParticipantRepository) UpdateTbeiStatus(id uint, status model.StageStatus) error {
	return r.DB.Model(&model.AssessmentParticipant{}).Where("id = ?", id).
		Update("tbei_status", status).Error
}

func (r *ParticipantRepository) UpdateHipoStatus(id uint, status model.StageStatus) error {
	return r.DB.Model(&model.AssessmentParticipant{}).Where("id = ?", id).
		Update("hipo_status", status).Error
}

func (r *ParticipantRepository) UpdateQuizStatus(id uint, status model.StageStatus) error {
	return r.DB.Model(&model.AssessmentParticipant{}).Where("id = ?", id).
		Update("quiz_status", status).Error
}
