package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"talent_assessment_backend/internal/model"

	"github.com/go-redis/redis/v8"
)

const (
	deadLetterListKey    = "evaluation:dead_letter"
	deadLetterListCap    = 1000
	failedResponseKeyFmt = "evaluation:failed:%d"
)

// DeadLetterRepository 失败评估的死信存储，按响应ID可查最近一次失败原因
type DeadLetterRepository struct {
	Redis *redis.Client
}

func NewDeadLetterRepository(rdb *redis.Client) *DeadLetterRepository {
	return &DeadLetterRepository{Redis: rdb}
}

func (r *DeadLetterRepository) Record(ctx context.Context, dl *model.EvaluationDeadLetter) error {
	data, err := json.Marshal(dl)
	if err != nil {
		return err
	}

	pipe := r.Redis.TxPipeline()
	pipe.LPush(ctx, deadLetterListKey, data)
	pipe.LTrim(ctx, deadLetterListKey, 0, deadLetterListCap-1)
	pipe.Set(ctx, fmt.Sprintf(failedResponseKeyFmt, dl.ResponseID), data, 0)
	_, err = pipe.Exec(ctx)
	return err
}

// ClearForResponse 评估成功后清除该响应的失败标记
func (r *DeadLetterRepository) ClearForResponse(ctx context.Context, responseID uint) error {
	return r.Redis.Del(ctx, fmt.Sprintf(failedResponseKeyFmt, responseID)).Err()
}

// FindForResponse 返回该响应最近一次失败记录，无记录时返回(nil, nil)
func (r *DeadLetterRepository) FindForResponse(ctx context.Context, responseID uint) (*model.EvaluationDeadLetter, error) {
	data, err := r.Redis.Get(ctx, fmt.Sprintf(failedResponseKeyFmt, responseID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var dl model.EvaluationDeadLetter
	if err := json.Unmarshal(data, &dl); err != nil {
		return nil, err
	}
	return &dl, nil
}

func (r *DeadLetterRepository) List(ctx context.Context, limit int64) ([]model.EvaluationDeadLetter, error) {
	if limit <= 0 || limit > deadLetterListCap {
		limit = deadLetterListCap
	}
	items, err := r.Redis.LRange(ctx, deadLetterListKey, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	dls := make([]model.EvaluationDeadLetter, 0, len(items))
	for _, item := range items {
		var dl model.EvaluationDeadLetter
		if err := json.Unmarshal([]byte(item), &dl); err != nil {
			continue
		}
		dls = append(dls, dl)
	}
	return dls, nil
}
