package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
	"go.uber.org/zap"
)

// 要約の代わりに表示する固定文言。
const (
	NothingToAnalyzeSummary = "분석할 답변이 없습니다. 질문에 답변을 입력한 뒤 다시 시도해주세요."
	UnavailableSummary      = "AI 분석을 사용할 수 없습니다. API 설정을 확인해주세요."
	FailedSummary           = "AI 분석 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요."
)

// ErrSummarizerUnavailable は認証情報が無いなど、要約器が使えない場合に返す。
var ErrSummarizerUnavailable = errors.New("summarizer is not configured")

// SummaryService turns the answered questions of a candidate into an AI summary.
// It never returns an error; failures degrade to one of the fixed messages.
type SummaryService interface {
	Analyze(ctx context.Context, info domain.BasicInfo, answers map[string]string) string
}

type summaryService struct {
	questionnaire *domain.Questionnaire
	summarizer    Summarizer
	timeout       time.Duration
	logger        *zap.Logger
}

// NewSummaryService は要約サービスを生成する。summarizer が nil なら常に UnavailableSummary を返す。
func NewSummaryService(q *domain.Questionnaire, summarizer Summarizer, timeout time.Duration, logger *zap.Logger) SummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &summaryService{questionnaire: q, summarizer: summarizer, timeout: timeout, logger: logger}
}

func (s *summaryService) Analyze(ctx context.Context, info domain.BasicInfo, answers map[string]string) string {
	items := s.questionnaire.AnsweredItems(answers)
	if len(items) == 0 {
		return NothingToAnalyzeSummary
	}
	if s.summarizer == nil {
		s.logger.Warn("summarizer is not configured")
		return UnavailableSummary
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	summary, err := s.summarizer.Summarize(ctx, domain.CandidateContext{
		Name:     strings.TrimSpace(info.CandidateName),
		Position: strings.TrimSpace(info.Position),
		Items:    items,
	})
	if err != nil {
		if errors.Is(err, ErrSummarizerUnavailable) {
			s.logger.Warn("summarizer unavailable", zap.Error(err))
			return UnavailableSummary
		}
		s.logger.Error("summarize candidate", zap.Error(err), zap.Int("items", len(items)))
		return FailedSummary
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		s.logger.Warn("summarizer returned empty text")
		return FailedSummary
	}
	return summary
}
