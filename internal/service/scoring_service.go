package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"talent_assessment_backend/internal/config"
	"talent_assessment_backend/internal/model"
)

// Scorer 评分函数边界：评分细则对引擎不可见，只约定输入输出
type Scorer interface {
	ScoreResponse(ctx context.Context, input ScoringInput) (*model.CompetencyEvaluation, error)
}

type ScoringInput struct {
	CompetencyID       string
	Transcript         string
	StructuredResponse json.RawMessage
}

// ScoringErrorKind 外部评分服务的失败分类，全部在适配器内转为类型化结果
type ScoringErrorKind string

const (
	ScoringErrTimeout         ScoringErrorKind = "timeout"
	ScoringErrMalformedOutput ScoringErrorKind = "malformed_output"
	ScoringErrProvider        ScoringErrorKind = "provider_error"
)

type ScoringError struct {
	Kind    ScoringErrorKind
	Message string
	Cause   error
}

func (e *ScoringError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("scoring %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("scoring %s: %s", e.Kind, e.Message)
}

func (e *ScoringError) Unwrap() error {
	return e.Cause
}

// ScoringService 调用OpenAI兼容的chat completions接口对单条作答打分
type ScoringService struct {
	config config.ScoringConfig
	client *http.Client
}

func NewScoringService(cfg config.ScoringConfig) *ScoringService {
	return &ScoringService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

type scoringChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type scoringChatRequest struct {
	Model       string               `json:"model"`
	Messages    []scoringChatMessage `json:"messages"`
	Temperature float64              `json:"temperature"`
}

type scoringChatResponse struct {
	Choices []struct {
		Message scoringChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const scoringSystemPrompt = "你是一名结构化行为面试（TBEI）评估专家。根据候选人对指定胜任力问题的回答，" +
	"按评分细则输出JSON，不要输出任何其他文字。JSON结构：" +
	`{"score": 0-100的数值, "dimensions": {"维度名": 0-100数值}, "strengths": ["..."], "improvements": ["..."], "summary": "..."}`

func (s *ScoringService) ScoreResponse(ctx context.Context, input ScoringInput) (*model.CompetencyEvaluation, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("胜任力维度: %s\n\n", input.CompetencyID))
	if input.Transcript != "" {
		sb.WriteString("候选人回答转写:\n")
		sb.WriteString(input.Transcript)
		sb.WriteString("\n\n")
	}
	if len(input.StructuredResponse) > 0 {
		sb.WriteString("结构化子回答:\n")
		sb.Write(input.StructuredResponse)
		sb.WriteString("\n")
	}

	reqBody := scoringChatRequest{
		Model: s.config.Model,
		Messages: []scoringChatMessage{
			{Role: "system", Content: scoringSystemPrompt},
			{Role: "user", Content: sb.String()},
		},
		Temperature: 0.1,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &ScoringError{Kind: ScoringErrProvider, Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, &ScoringError{Kind: ScoringErrProvider, Message: "failed to build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		if isTimeoutError(err) {
			return nil, &ScoringError{Kind: ScoringErrTimeout, Message: "scoring provider call timed out", Cause: err}
		}
		return nil, &ScoringError{Kind: ScoringErrProvider, Message: "scoring provider unreachable", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &ScoringError{
			Kind:    ScoringErrProvider,
			Message: fmt.Sprintf("provider returned status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var chatResp scoringChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, &ScoringError{Kind: ScoringErrMalformedOutput, Message: "failed to decode provider response", Cause: err}
	}

	if chatResp.Error != nil {
		return nil, &ScoringError{Kind: ScoringErrProvider, Message: chatResp.Error.Message}
	}

	if len(chatResp.Choices) == 0 {
		return nil, &ScoringError{Kind: ScoringErrMalformedOutput, Message: "provider returned no choices"}
	}

	content := stripCodeFence(chatResp.Choices[0].Message.Content)

	var eval model.CompetencyEvaluation
	if err := json.Unmarshal([]byte(content), &eval); err != nil {
		return nil, &ScoringError{Kind: ScoringErrMalformedOutput, Message: "evaluation output is not valid JSON", Cause: err}
	}

	if eval.Score < 0 || eval.Score > 100 {
		return nil, &ScoringError{
			Kind:    ScoringErrMalformedOutput,
			Message: fmt.Sprintf("evaluation score %.2f out of range [0,100]", eval.Score),
		}
	}

	eval.CompetencyID = input.CompetencyID
	return &eval, nil
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// stripCodeFence 模型偶尔会把JSON包在markdown代码块里
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
