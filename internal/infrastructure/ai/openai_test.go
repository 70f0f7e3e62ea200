package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sngm3741/interview-desk/api/internal/interview/application"
	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate() domain.CandidateContext {
	return domain.CandidateContext{
		Name:     "김민수",
		Position: "홀 매니저",
		Items: []domain.AnsweredQuestion{
			{Question: "지원 동기", Checkpoints: []string{"장기 근무", "브랜드 이해"}, Answer: "집이 가까워요"},
			{Question: "근무 시간", Answer: "주말 가능"},
		},
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(candidate())

	assert.Contains(t, prompt, "- 이름: 김민수")
	assert.Contains(t, prompt, "## 1. 지원 동기")
	assert.Contains(t, prompt, "확인 포인트: 장기 근무, 브랜드 이해")
	assert.Contains(t, prompt, "## 2. 근무 시간\n답변: 주말 가능")

	empty := BuildPrompt(domain.CandidateContext{})
	assert.Contains(t, empty, "- 이름: (미입력)")
}

func TestOpenAISummarizer(t *testing.T) {
	var received chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"## 종합 의견\n성실합니다."}}]}`))
	}))
	defer server.Close()

	summarizer, err := NewOpenAISummarizer(OpenAIConfig{APIKey: "test-key", BaseURL: server.URL + "/", Model: "test-model"})
	require.NoError(t, err)

	got, err := summarizer.Summarize(context.Background(), candidate())
	require.NoError(t, err)
	assert.Equal(t, "## 종합 의견\n성실합니다.", got)
	assert.Equal(t, "test-model", received.Model)
	require.Len(t, received.Messages, 2)
	assert.Equal(t, "system", received.Messages[0].Role)
	assert.Contains(t, received.Messages[1].Content, "집이 가까워요")
}

func TestOpenAISummarizerErrors(t *testing.T) {
	_, err := NewOpenAISummarizer(OpenAIConfig{})
	assert.ErrorIs(t, err, application.ErrSummarizerUnavailable)

	var status atomic.Int32
	status.Store(http.StatusInternalServerError)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer server.Close()

	summarizer, err := NewOpenAISummarizer(OpenAIConfig{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = summarizer.Summarize(context.Background(), candidate())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	status.Store(http.StatusUnauthorized)
	_, err = summarizer.Summarize(context.Background(), candidate())
	assert.ErrorIs(t, err, application.ErrSummarizerUnavailable)
}
