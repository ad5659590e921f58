package service

import (
	"errors"
	"testing"
	"time"

	"talent_assessment_backend/internal/model"
	"talent_assessment_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeSessionStore struct {
	sessions map[uint]*model.AssessmentSession

	createErr    error
	updateResult bool
	updateErr    error
	updatedTo    model.SessionStatus
	completedAt  *time.Time
}

func (f *fakeSessionStore) Create(session *model.AssessmentSession) error {
	if f.createErr != nil {
		return f.createErr
	}
	session.ID = uint(len(f.sessions) + 1)
	if f.sessions == nil {
		f.sessions = map[uint]*model.AssessmentSession{}
	}
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionStore) FindByID(id uint) (*model.AssessmentSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (f *fakeSessionStore) List(organizationID uint, page, limit int) ([]model.AssessmentSession, int64, error) {
	var out []model.AssessmentSession
	for _, s := range f.sessions {
		if s.OrganizationID == organizationID {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeSessionStore) UpdateStatusIf(id uint, from, to model.SessionStatus, completedAt *time.Time) (bool, error) {
	if f.updateErr != nil {
		return false, f.updateErr
	}
	if f.updateResult {
		f.updatedTo = to
		f.completedAt = completedAt
		if s, ok := f.sessions[id]; ok {
			s.Status = to
			s.CompletedAt = completedAt
		}
	}
	return f.updateResult, nil
}

func TestCreateSessionGeneratesAccessTokens(t *testing.T) {
	store := &fakeSessionStore{}
	svc := &SessionService{repo: store}

	session, err := svc.CreateSession(CreateSessionRequest{
		OrganizationID: 7,
		Name:           "2026年春季高管测评",
		Participants: []CreateParticipantRequest{
			{Name: "张伟", RoleCode: model.RoleCEO},
			{Name: "李娜", RoleCode: model.RoleCFO},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, model.SessionCreated, session.Status)
	require.Len(t, session.Participants, 2)

	tokens := map[string]bool{}
	for _, p := range session.Participants {
		assert.NotEmpty(t, p.AccessToken)
		assert.Equal(t, model.StagePending, p.TbeiStatus)
		assert.Equal(t, model.StagePending, p.HipoStatus)
		assert.Equal(t, model.StagePending, p.QuizStatus)
		tokens[p.AccessToken] = true
	}
	assert.Len(t, tokens, 2, "access tokens must be unique")
}

func TestCreateSessionCollectsAllViolations(t *testing.T) {
	svc := &SessionService{repo: &fakeSessionStore{}}

	_, err := svc.CreateSession(CreateSessionRequest{
		OrganizationID: 1,
		Name:           "bad",
		Participants: []CreateParticipantRequest{
			{RoleCode: model.RoleCEO},
			{RoleCode: model.RoleCEO},
			{RoleCode: "intern"},
		},
	})

	var verr *util.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Violations, 2)
}

func TestCreateSessionRequiresParticipants(t *testing.T) {
	svc := &SessionService{repo: &fakeSessionStore{}}

	_, err := svc.CreateSession(CreateSessionRequest{OrganizationID: 1, Name: "empty"})

	var verr *util.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestTransitionHappyPath(t *testing.T) {
	store := &fakeSessionStore{
		sessions: map[uint]*model.AssessmentSession{
			1: {Status: model.SessionCreated},
		},
		updateResult: true,
	}
	svc := &SessionService{repo: store}

	result, err := svc.Transition(1, model.SessionCaseStudyInProgress)

	require.NoError(t, err)
	assert.Equal(t, model.SessionCreated, result.PreviousStatus)
	assert.Equal(t, model.SessionCaseStudyInProgress, result.NewStatus)
	assert.Nil(t, store.completedAt)
}

func TestTransitionToCompletedStampsTimestamp(t *testing.T) {
	store := &fakeSessionStore{
		sessions: map[uint]*model.AssessmentSession{
			1: {Status: model.SessionTbeiInProgress},
		},
		updateResult: true,
	}
	svc := &SessionService{repo: store}

	_, err := svc.Transition(1, model.SessionCompleted)

	require.NoError(t, err)
	require.NotNil(t, store.completedAt)
	assert.WithinDuration(t, time.Now(), *store.completedAt, time.Minute)
}

func TestTransitionRejectsSkip(t *testing.T) {
	store := &fakeSessionStore{
		sessions: map[uint]*model.AssessmentSession{
			1: {Status: model.SessionCreated},
		},
		updateResult: true,
	}
	svc := &SessionService{repo: store}

	_, err := svc.Transition(1, model.SessionCompleted)

	var terr *util.InvalidTransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, model.SessionCreated, terr.Current)
	assert.Equal(t, []model.SessionStatus{model.SessionCaseStudyInProgress}, terr.Allowed)
}

func TestTransitionUnknownStatus(t *testing.T) {
	svc := &SessionService{repo: &fakeSessionStore{}}

	_, err := svc.Transition(1, model.SessionStatus("archived"))

	var verr *util.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestTransitionSessionNotFound(t *testing.T) {
	svc := &SessionService{repo: &fakeSessionStore{}}

	_, err := svc.Transition(42, model.SessionCaseStudyInProgress)

	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

// racingSessionStore 第一次读返回旧状态，条件更新失败后重读返回已被并发推进的状态
type racingSessionStore struct {
	fakeSessionStore
	reads int
}

func (f *racingSessionStore) FindByID(id uint) (*model.AssessmentSession, error) {
	f.reads++
	if f.reads == 1 {
		return &model.AssessmentSession{Status: model.SessionCreated}, nil
	}
	return &model.AssessmentSession{Status: model.SessionCaseStudyInProgress}, nil
}

func (f *racingSessionStore) UpdateStatusIf(id uint, from, to model.SessionStatus, completedAt *time.Time) (bool, error) {
	return false, nil
}

func TestTransitionLostRaceReportsFreshStatus(t *testing.T) {
	store := &racingSessionStore{}
	svc := &SessionService{repo: store}

	_, err := svc.Transition(1, model.SessionCaseStudyInProgress)

	var terr *util.InvalidTransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, model.SessionCaseStudyInProgress, terr.Current)
	assert.Equal(t, 2, store.reads)
}

func TestGetSessionNotFound(t *testing.T) {
	svc := &SessionService{repo: &fakeSessionStore{}}

	_, err := svc.GetSession(99)

	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestTransitionPropagatesStoreError(t *testing.T) {
	boom := errors.New("connection reset")
	store := &fakeSessionStore{
		sessions: map[uint]*model.AssessmentSession{
			1: {Status: model.SessionCreated},
		},
		updateErr: boom,
	}
	svc := &SessionService{repo: store}

	_, err := svc.Transition(1, model.SessionCaseStudyInProgress)

	assert.ErrorIs(t, err, boom)
}
