package repository

import (
	"encoding/json"

	"talent_assessment_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TbeiResponseRepository struct {
	DB *gorm.DB
}

func NewTbeiResponseRepository(db *gorm.DB) *TbeiResponseRepository {
	return &TbeiResponseRepository{DB: db}
}

// Upsert 以(participant_id, competency_id)为冲突键的原子条件写，
// 重复提交更新原行而不是产生第二行，依赖表上的唯一索引
func (r *TbeiResponseRepository) Upsert(resp *model.TbeiResponse) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "participant_id"}, {Name: "competency_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"question_id",
			"selected_question_index",
			"transcript",
			"structured_response",
			"audio_url",
			"duration_seconds",
			"evaluation",
			"updated_at",
		}),
	}).Create(resp).Error
}

func (r *TbeiResponseRepository) FindByID(id uint) (*model.TbeiResponse, error) {
	var resp model.TbeiResponse
	err := r.DB.First(&resp, id).Error
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *TbeiResponseRepository) FindByNaturalKey(participantID uint, competencyID string) (*model.TbeiResponse, error) {
	var resp model.TbeiResponse
	err := r.DB.Where("participant_id = ? AND competency_id = ?", participantID, competencyID).
		First(&resp).Error
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *TbeiResponseRepository) FindByParticipant(participantID uint) ([]model.TbeiResponse, error) {
	var resps []model.TbeiResponse
	err := r.DB.Where("participant_id = ?", participantID).Order("competency_id asc").Find(&resps).Error
	return resps, err
}

func (r *TbeiResponseRepository) DistinctCompetencies(participantID uint) ([]string, error) {
	var competencies []string
	err := r.DB.Model(&model.TbeiResponse{}).
		Where("participant_id = ?", participantID).
		Distinct().Pluck("competency_id", &competencies).Error
	return competencies, err
}

func (r *TbeiResponseRepository) UpdateEvaluation(id uint, evaluation json.RawMessage) error {
	return r.DB.Model(&model.TbeiResponse{}).Where("id = ?", id).
		Update("evaluation", evaluation).Error
}
