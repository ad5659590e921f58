package repository

import (
	"talent_assessment_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

// Upsert 以participant_id为冲突键，一人一行
func (r *QuizRepository) Upsert(q *model.QuizResponse) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "participant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"answers",
			"score",
			"total_questions",
			"time_spent_seconds",
			"updated_at",
		}),
	}).Create(q).Error
}

func (r *QuizRepository) FindByParticipant(participantID uint) (*model.QuizResponse, error) {
	var q model.QuizResponse
	err := r.DB.Where("participant_id = ?", participantID).First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuizRepository) ExistsForParticipant(participantID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.QuizResponse{}).
		Where("participant_id = ?", participantID).Count(&count).Error
	return count > 0, err
}
