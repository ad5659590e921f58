package service

import (
	"errors"

	"talent_assessment_backend/internal/model"
	"talent_assessment_backend/internal/repository"
	"talent_assessment_backend/internal/util"

	"gorm.io/gorm"
)

type statusParticipantStore interface {
	FindByID(id uint) (*model.AssessmentParticipant, error)
	UpdateTbeiStatus(id uint, status model.StageStatus) error
	UpdateHipoStatus(id uint, status model.StageStatus) error
	UpdateQuizStatus(id uint, status model.StageStatus) error
}

type statusTbeiStore interface {
	DistinctCompetencies(participantID uint) ([]string, error)
}

type statusExistsStore interface {
	ExistsForParticipant(participantID uint) (bool, error)
}

// ParticipantStatusService 从已存作答推导各子流程状态并回写。
// 推导是纯函数，回写幂等，每次提交后调用都安全
type ParticipantStatusService struct {
	participants statusParticipantStore
	tbei         statusTbeiStore
	hipo         statusExistsStore
	quiz         statusExistsStore
}

func NewParticipantStatusService(
	participants *repository.ParticipantRepository,
	tbei *repository.TbeiResponseRepository,
	hipo *repository.HipoRepository,
	quiz *repository.QuizRepository,
) *ParticipantStatusService {
	return &ParticipantStatusService{
		participants: participants,
		tbei:         tbei,
		hipo:         hipo,
		quiz:         quiz,
	}
}

// DeriveTbeiStatus TBEI三态推导：覆盖全部所需胜任力为completed，
// 有任意作答为in_progress，否则pending
func DeriveTbeiStatus(competencies []string) model.StageStatus {
	if len(competencies) == 0 {
		return model.StagePending
	}

	recorded := make(map[string]bool, len(competencies))
	for _, c := range competencies {
		recorded[c] = true
	}
	for _, required := range model.RequiredCompetencies {
		if !recorded[required] {
			return model.StageInProgress
		}
	}
	return model.StageCompleted
}

// DeriveBinaryStatus HiPo/测验为单次提交，只有pending/completed两态。
// 与TBEI的三态不对称是有意保留的
func DeriveBinaryStatus(exists bool) model.StageStatus {
	if exists {
		return model.StageCompleted
	}
	return model.StagePending
}

func (s *ParticipantStatusService) RecomputeTbei(participantID uint) (model.StageStatus, error) {
	if _, err := s.participants.FindByID(participantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", util.ErrParticipantNotFound
		}
		return "", err
	}

	competencies, err := s.tbei.DistinctCompetencies(participantID)
	if err != nil {
		return "", err
	}

	status := DeriveTbeiStatus(competencies)
	if err := s.participants.UpdateTbeiStatus(participantID, status); err != nil {
		return "", err
	}
	return status, nil
}

func (s *ParticipantStatusService) RecomputeHipo(participantID uint) (model.StageStatus, error) {
	if _, err := s.participants.FindByID(participantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", util.ErrParticipantNotFound
		}
		return "", err
	}

	exists, err := s.hipo.ExistsForParticipant(participantID)
	if err != nil {
		return "", err
	}

	status := DeriveBinaryStatus(exists)
	if err := s.participants.UpdateHipoStatus(participantID, status); err != nil {
		return "", err
	}
	return status, nil
}

func (s *ParticipantStatusService) RecomputeQuiz(participantID uint) (model.StageStatus, error) {
	if _, err := s.participants.FindByID(participantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", util.ErrParticipantNotFound
		}
		return "", err
	}

	exists, err := s.quiz.ExistsForParticipant(participantID)
	if err != nil {
		return "", err
	}

	status := DeriveBinaryStatus(exists)
	if err := s.participants.UpdateQuizStatus(participantID, status); err != nil {
		return "", err
	}
	return status, nil
}
