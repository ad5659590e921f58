package repository

import (
	"talent_assessment_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HipoRepository struct {
	DB *gorm.DB
}

func NewHipoRepository(db *gorm.DB) *HipoRepository {
	return &HipoRepository{DB: db}
}

// Upsert 以participant_id为冲突键，一人一行
func (r *HipoRepository) Upsert(a *model.HipoAssessment) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "participant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"ability_score",
			"aspiration_score",
			"engagement_score",
			"integrated_score",
			"total_score",
			"responses",
			"open_response_strengths",
			"open_response_development",
			"ability_classification",
			"aspiration_classification",
			"engagement_classification",
			"integrated_classification",
			"updated_at",
		}),
	}).Create(a).Error
}

func (r *HipoRepository) FindByParticipant(participantID uint) (*model.HipoAssessment, error) {
	var a model.HipoAssessment
	err := r.DB.Where("participant_id = ?", participantID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *HipoRepository) ExistsForParticipant(participantID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.HipoAssessment{}).
		Where("participant_id = ?", participantID).Count(&count).Error
	return count > 0, err
}
