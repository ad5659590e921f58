package service

import (
	"context"
	"sort"
	"sync"

	"talent_assessment_backend/internal/model"
	"talent_assessment_backend/internal/util"
)

// MaxBatchSize 单次批量评估的硬上限
const MaxBatchSize = 50

type responseEvaluator interface {
	EvaluateResponse(ctx context.Context, responseID uint) (*model.TbeiResponse, error)
}

// BatchEvaluationService 对一组响应ID并发扇出评估，单条失败互不影响，
// 结果按成功/失败分区返回。批内不做重试，重评由调用方再次发起
type BatchEvaluationService struct {
	evaluator responseEvaluator
}

func NewBatchEvaluationService(evaluator *EvaluationService) *BatchEvaluationService {
	return &BatchEvaluationService{evaluator: evaluator}
}

type BatchFailure struct {
	ResponseID uint   `json:"responseId"`
	Reason     string `json:"reason"`
}

type BatchResult struct {
	Successful   []uint         `json:"successful"`
	Failed       []BatchFailure `json:"failed"`
	Total        int            `json:"total"`
	SuccessCount int            `json:"successCount"`
	FailureCount int            `json:"failureCount"`
}

// BatchEvaluate 边界校验在任何评估开始之前，被拒绝的批次没有任何副作用
func (s *BatchEvaluationService) BatchEvaluate(ctx context.Context, ids []uint) (*BatchResult, error) {
	if len(ids) == 0 || len(ids) > MaxBatchSize {
		return nil, &util.InvalidBatchSizeError{Size: len(ids), Max: MaxBatchSize}
	}

	var (
		mu         sync.Mutex
		wg         sync.WaitGroup
		successful []uint
		failed     []BatchFailure
	)

	for _, id := range ids {
		wg.Add(1)
		go func(responseID uint) {
			defer wg.Done()

			_, err := s.evaluator.EvaluateResponse(ctx, responseID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, BatchFailure{ResponseID: responseID, Reason: err.Error()})
				return
			}
			successful = append(successful, responseID)
		}(id)
	}
	wg.Wait()

	// 扇出完成顺序不确定，排序让结果可复现
	sort.Slice(successful, func(i, j int) bool { return successful[i] < successful[j] })
	sort.Slice(failed, func(i, j int) bool { return failed[i].ResponseID < failed[j].ResponseID })

	return &BatchResult{
		Successful:   successful,
		Failed:       failed,
		Total:        len(ids),
		SuccessCount: len(successful),
		FailureCount: len(failed),
	}, nil
}
