package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"talent_assessment_backend/internal/model"
	"talent_assessment_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeResponseStore struct {
	responses map[uint]*model.TbeiResponse
	updated   map[uint]json.RawMessage
}

func newFakeResponseStore(responses ...*model.TbeiResponse) *fakeResponseStore {
	f := &fakeResponseStore{
		responses: map[uint]*model.TbeiResponse{},
		updated:   map[uint]json.RawMessage{},
	}
	for _, r := range responses {
		f.responses[r.ID] = r
	}
	return f
}

func (f *fakeResponseStore) FindByID(id uint) (*model.TbeiResponse, error) {
	r, ok := f.responses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r, nil
}

func (f *fakeResponseStore) FindByParticipant(participantID uint) ([]model.TbeiResponse, error) {
	var out []model.TbeiResponse
	for _, r := range f.responses {
		if r.ParticipantID == participantID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeResponseStore) UpdateEvaluation(id uint, evaluation json.RawMessage) error {
	f.updated[id] = evaluation
	if r, ok := f.responses[id]; ok {
		r.Evaluation = evaluation
	}
	return nil
}

type fakeScorer struct {
	eval *model.CompetencyEvaluation
	err  error
}

func (f *fakeScorer) ScoreResponse(ctx context.Context, input ScoringInput) (*model.CompetencyEvaluation, error) {
	if f.err != nil {
		return nil, f.err
	}
	eval := *f.eval
	eval.CompetencyID = input.CompetencyID
	return &eval, nil
}

type fakeDeadLetterStore struct {
	cleared []uint
	found   *model.EvaluationDeadLetter
}

func (f *fakeDeadLetterStore) ClearForResponse(ctx context.Context, responseID uint) error {
	f.cleared = append(f.cleared, responseID)
	return nil
}

func (f *fakeDeadLetterStore) FindForResponse(ctx context.Context, responseID uint) (*model.EvaluationDeadLetter, error) {
	return f.found, nil
}

func mustMarshalPayload(t *testing.T, payload model.TbeiEvaluationPayload) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return raw
}

func tbeiResponseFixture(id, participantID uint, competencyID string) *model.TbeiResponse {
	r := &model.TbeiResponse{
		ParticipantID: participantID,
		CompetencyID:  competencyID,
		Transcript:    "在数字化转型项目中我牵头完成了……",
	}
	r.ID = id
	return r
}

func TestEvaluateResponsePersistsMergedPayload(t *testing.T) {
	resp := tbeiResponseFixture(1, 10, model.CompetencyDigitalTransformation)
	resp.Evaluation = mustMarshalPayload(t, model.TbeiEvaluationPayload{
		Submission: &model.TbeiSubmissionSnapshot{QuestionID: "dt_q1", SubmittedAt: time.Now()},
	})

	store := newFakeResponseStore(resp)
	deadLetters := &fakeDeadLetterStore{}
	svc := &EvaluationService{
		responses:   store,
		scorer:      &fakeScorer{eval: &model.CompetencyEvaluation{Score: 82.5, Summary: "结构完整"}},
		deadLetters: deadLetters,
	}

	evaluated, err := svc.EvaluateResponse(context.Background(), 1)

	require.NoError(t, err)

	var payload model.TbeiEvaluationPayload
	require.NoError(t, json.Unmarshal(evaluated.Evaluation, &payload))
	require.NotNil(t, payload.AIEvaluation)
	assert.Equal(t, 82.5, payload.AIEvaluation.Score)
	assert.Equal(t, model.CompetencyDigitalTransformation, payload.AIEvaluation.CompetencyID)
	require.NotNil(t, payload.Submission, "submission snapshot must survive evaluation merge")
	assert.Equal(t, "dt_q1", payload.Submission.QuestionID)
	require.NotNil(t, payload.EvaluatedAt)

	assert.Equal(t, []uint{1}, deadLetters.cleared)
}

func TestEvaluateResponseNotFound(t *testing.T) {
	svc := &EvaluationService{responses: newFakeResponseStore()}

	_, err := svc.EvaluateResponse(context.Background(), 404)

	assert.ErrorIs(t, err, util.ErrResponseNotFound)
}

func TestEvaluateResponseFailureDoesNotMutate(t *testing.T) {
	original := mustMarshalPayload(t, model.TbeiEvaluationPayload{
		Submission: &model.TbeiSubmissionSnapshot{QuestionID: "dt_q1", SubmittedAt: time.Now()},
	})
	resp := tbeiResponseFixture(1, 10, model.CompetencyDigitalTransformation)
	resp.Evaluation = original

	store := newFakeResponseStore(resp)
	svc := &EvaluationService{
		responses: store,
		scorer:    &fakeScorer{err: &ScoringError{Kind: ScoringErrTimeout, Message: "deadline exceeded"}},
	}

	_, err := svc.EvaluateResponse(context.Background(), 1)

	var ferr *util.EvaluationFailedError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, uint(1), ferr.ResponseID)

	var serr *ScoringError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ScoringErrTimeout, serr.Kind)

	assert.Empty(t, store.updated, "failed evaluation must not write anything")
	assert.Equal(t, original, store.responses[1].Evaluation)
}

func TestMergeEvaluationOverwritesPreviousResult(t *testing.T) {
	first := &model.CompetencyEvaluation{Score: 60}
	second := &model.CompetencyEvaluation{Score: 85}

	merged, err := MergeEvaluation(nil, first, time.Now())
	require.NoError(t, err)

	merged, err = MergeEvaluation(merged, second, time.Now())
	require.NoError(t, err)

	var payload model.TbeiEvaluationPayload
	require.NoError(t, json.Unmarshal(merged, &payload))
	assert.Equal(t, 85.0, payload.AIEvaluation.Score, "re-evaluation replaces, not appends")
}

func TestEvaluateAllForParticipantIsolatesFailures(t *testing.T) {
	ok := tbeiResponseFixture(1, 10, model.CompetencyDigitalTransformation)
	alsoOk := tbeiResponseFixture(2, 10, model.CompetencyTalentDevelopment)
	store := newFakeResponseStore(ok, alsoOk)

	// 第二条评分失败
	scorer := &flakyScorer{failOn: model.CompetencyTalentDevelopment}
	svc := &EvaluationService{responses: store, scorer: scorer}

	outcomes, err := svc.EvaluateAllForParticipant(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	byID := map[uint]ResponseEvaluationOutcome{}
	for _, o := range outcomes {
		byID[o.ResponseID] = o
	}
	assert.True(t, byID[1].Succeeded)
	require.NotNil(t, byID[1].Evaluation)
	assert.False(t, byID[2].Succeeded)
	assert.NotEmpty(t, byID[2].Error)
}

type flakyScorer struct {
	failOn string
}

func (f *flakyScorer) ScoreResponse(ctx context.Context, input ScoringInput) (*model.CompetencyEvaluation, error) {
	if input.CompetencyID == f.failOn {
		return nil, &ScoringError{Kind: ScoringErrProvider, Message: "upstream 500"}
	}
	return &model.CompetencyEvaluation{CompetencyID: input.CompetencyID, Score: 75}, nil
}

func evaluatedResponse(t *testing.T, id, participantID uint, competencyID string, score float64) *model.TbeiResponse {
	t.Helper()
	r := tbeiResponseFixture(id, participantID, competencyID)
	r.Evaluation = mustMarshalPayload(t, model.TbeiEvaluationPayload{
		AIEvaluation: &model.CompetencyEvaluation{CompetencyID: competencyID, Score: score},
	})
	return r
}

func TestComputeOverallScoreRejectsIncomplete(t *testing.T) {
	store := newFakeResponseStore(
		evaluatedResponse(t, 1, 10, model.CompetencyDigitalTransformation, 80),
		tbeiResponseFixture(2, 10, model.CompetencyTalentDevelopment), // 已提交未评估
	)
	svc := &EvaluationService{responses: store}

	_, err := svc.ComputeOverallScore(10)

	var ierr *util.IncompleteEvaluationsError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, []string{model.CompetencyTalentDevelopment}, ierr.Missing)
}

func TestComputeOverallScoreEqualWeights(t *testing.T) {
	store := newFakeResponseStore(
		evaluatedResponse(t, 1, 10, model.CompetencyDigitalTransformation, 80),
		evaluatedResponse(t, 2, 10, model.CompetencyTalentDevelopment, 60),
	)
	svc := &EvaluationService{responses: store}

	score, err := svc.ComputeOverallScore(10)

	require.NoError(t, err)
	assert.InDelta(t, 70.0, score.OverallScore, 0.001)
	assert.Len(t, score.Breakdown, 2)
}

func TestComputeOverallScoreWeighted(t *testing.T) {
	store := newFakeResponseStore(
		evaluatedResponse(t, 1, 10, model.CompetencyDigitalTransformation, 80),
		evaluatedResponse(t, 2, 10, model.CompetencyTalentDevelopment, 60),
	)
	svc := &EvaluationService{responses: store}
	svc.SetWeights(map[string]float64{
		model.CompetencyDigitalTransformation: 3,
		model.CompetencyTalentDevelopment:     1,
	})

	score, err := svc.ComputeOverallScore(10)

	require.NoError(t, err)
	assert.InDelta(t, 75.0, score.OverallScore, 0.001)
}

func TestResponseEvaluationState(t *testing.T) {
	pending := tbeiResponseFixture(1, 10, model.CompetencyDigitalTransformation)
	done := evaluatedResponse(t, 2, 10, model.CompetencyTalentDevelopment, 90)
	failed := tbeiResponseFixture(3, 10, model.CompetencyDigitalTransformation)

	t.Run("not evaluated", func(t *testing.T) {
		svc := &EvaluationService{
			responses:   newFakeResponseStore(pending),
			deadLetters: &fakeDeadLetterStore{},
		}
		state, dl, err := svc.ResponseEvaluationState(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, EvaluationStateNotEvaluated, state)
		assert.Nil(t, dl)
	})

	t.Run("evaluated", func(t *testing.T) {
		svc := &EvaluationService{
			responses:   newFakeResponseStore(done),
			deadLetters: &fakeDeadLetterStore{},
		}
		state, _, err := svc.ResponseEvaluationState(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, EvaluationStateEvaluated, state)
	})

	t.Run("failed", func(t *testing.T) {
		svc := &EvaluationService{
			responses: newFakeResponseStore(failed),
			deadLetters: &fakeDeadLetterStore{
				found: &model.EvaluationDeadLetter{ResponseID: 3, Reason: "scoring timeout"},
			},
		}
		state, dl, err := svc.ResponseEvaluationState(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, EvaluationStateFailed, state)
		require.NotNil(t, dl)
		assert.Equal(t, "scoring timeout", dl.Reason)
	})

	t.Run("missing response", func(t *testing.T) {
		svc := &EvaluationService{responses: newFakeResponseStore()}
		_, _, err := svc.ResponseEvaluationState(context.Background(), 404)
		assert.ErrorIs(t, err, util.ErrResponseNotFound)
	})
}
