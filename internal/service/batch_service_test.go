package service

import (
	"context"
	"sync"
	"testing"

	"talent_assessment_backend/internal/model"
	"talent_assessment_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEvaluator struct {
	mu     sync.Mutex
	calls  int
	failOn map[uint]bool
}

func (f *countingEvaluator) EvaluateResponse(ctx context.Context, responseID uint) (*model.TbeiResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.failOn[responseID] {
		return nil, &util.EvaluationFailedError{
			ResponseID: responseID,
			Cause:      &ScoringError{Kind: ScoringErrProvider, Message: "upstream 500"},
		}
	}
	r := &model.TbeiResponse{}
	r.ID = responseID
	return r, nil
}

func TestBatchEvaluateRejectsEmptyBatch(t *testing.T) {
	evaluator := &countingEvaluator{}
	svc := &BatchEvaluationService{evaluator: evaluator}

	_, err := svc.BatchEvaluate(context.Background(), nil)

	var berr *util.InvalidBatchSizeError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, 0, berr.Size)
	assert.Equal(t, 0, evaluator.calls, "rejected batch must not start any work")
}

func TestBatchEvaluateRejectsOversizedBatch(t *testing.T) {
	ids := make([]uint, MaxBatchSize+1)
	for i := range ids {
		ids[i] = uint(i + 1)
	}

	evaluator := &countingEvaluator{}
	svc := &BatchEvaluationService{evaluator: evaluator}

	_, err := svc.BatchEvaluate(context.Background(), ids)

	var berr *util.InvalidBatchSizeError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, MaxBatchSize+1, berr.Size)
	assert.Equal(t, 0, evaluator.calls)
}

func TestBatchEvaluateAcceptsExactlyMaxBatchSize(t *testing.T) {
	ids := make([]uint, MaxBatchSize)
	for i := range ids {
		ids[i] = uint(i + 1)
	}

	svc := &BatchEvaluationService{evaluator: &countingEvaluator{}}

	result, err := svc.BatchEvaluate(context.Background(), ids)

	require.NoError(t, err)
	assert.Equal(t, MaxBatchSize, result.SuccessCount)
}

func TestBatchEvaluatePartitionsResults(t *testing.T) {
	evaluator := &countingEvaluator{failOn: map[uint]bool{2: true, 4: true}}
	svc := &BatchEvaluationService{evaluator: evaluator}

	result, err := svc.BatchEvaluate(context.Background(), []uint{5, 3, 1, 2, 4})

	require.NoError(t, err)
	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 2, result.FailureCount)
	assert.Equal(t, result.Total, result.SuccessCount+result.FailureCount)

	// 扇出完成顺序不定，结果必须按ID排序
	assert.Equal(t, []uint{1, 3, 5}, result.Successful)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, uint(2), result.Failed[0].ResponseID)
	assert.Equal(t, uint(4), result.Failed[1].ResponseID)
	assert.NotEmpty(t, result.Failed[0].Reason)

	assert.Equal(t, 5, evaluator.calls)
}
