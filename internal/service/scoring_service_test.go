package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"talent_assessment_backend/internal/config"
	"talent_assessment_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoringServiceFor(serverURL string) *ScoringService {
	return NewScoringService(config.ScoringConfig{
		BaseURL:        serverURL,
		APIKey:         "test-key",
		Model:          "deepseek-chat",
		TimeoutSeconds: 2,
	})
}

func chatCompletion(content string) string {
	resp := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
	raw, _ := json.Marshal(resp)
	return string(raw)
}

func TestScoreResponseParsesEvaluation(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Write([]byte(chatCompletion(`{"score": 78, "dimensions": {"行为具体性": 80}, "strengths": ["案例具体"], "improvements": ["量化结果"], "summary": "良好"}`)))
	}))
	defer server.Close()

	svc := scoringServiceFor(server.URL)

	eval, err := svc.ScoreResponse(context.Background(), ScoringInput{
		CompetencyID: model.CompetencyDigitalTransformation,
		Transcript:   "我主导了ERP系统的上线……",
	})

	require.NoError(t, err)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, 78.0, eval.Score)
	assert.Equal(t, model.CompetencyDigitalTransformation, eval.CompetencyID)
	assert.Equal(t, []string{"案例具体"}, eval.Strengths)
}

func TestScoreResponseStripsCodeFence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatCompletion("```json\n{\"score\": 65, \"summary\": \"合格\"}\n```")))
	}))
	defer server.Close()

	svc := scoringServiceFor(server.URL)

	eval, err := svc.ScoreResponse(context.Background(), ScoringInput{CompetencyID: model.CompetencyTalentDevelopment})

	require.NoError(t, err)
	assert.Equal(t, 65.0, eval.Score)
}

func TestScoreResponseProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := scoringServiceFor(server.URL)

	_, err := svc.ScoreResponse(context.Background(), ScoringInput{CompetencyID: model.CompetencyDigitalTransformation})

	var serr *ScoringError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ScoringErrProvider, serr.Kind)
}

func TestScoreResponseMalformedOutput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json at all", chatCompletion("抱歉，我无法评估这段回答。")},
		{"score out of range", chatCompletion(`{"score": 120, "summary": "x"}`)},
		{"no choices", `{"choices": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			svc := scoringServiceFor(server.URL)

			_, err := svc.ScoreResponse(context.Background(), ScoringInput{CompetencyID: model.CompetencyDigitalTransformation})

			var serr *ScoringError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, ScoringErrMalformedOutput, serr.Kind)
		})
	}
}

func TestScoreResponseTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	svc := scoringServiceFor(server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := svc.ScoreResponse(ctx, ScoringInput{CompetencyID: model.CompetencyDigitalTransformation})

	var serr *ScoringError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ScoringErrTimeout, serr.Kind)
}
