package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
	"github.com/sngm3741/interview-desk/api/internal/interview/form"
	"go.uber.org/zap"
)

// 保存・分析後に表示する確認メッセージ。
const (
	SavedMessage          = "저장되었습니다."
	SavedAndClosedMessage = "저장 후 면접 기록을 닫았습니다."
	AnalyzedMessage       = "AI 분석 결과가 저장되었습니다."
)

// SessionSnapshot は操作後のセッション状態。
type SessionSnapshot struct {
	SessionID string
	State     form.State
	View      form.View
	Message   string
}

// FormService drives interview form sessions. Pure transitions go through
// form.Reduce; saving and analysis perform I/O here.
type FormService interface {
	Questionnaire() *domain.Questionnaire
	// Start opens a session for a new interview, or for recordID when it is not empty.
	Start(ctx context.Context, principal Principal, recordID string) (*SessionSnapshot, error)
	Get(ctx context.Context, principal Principal, sessionID string) (*SessionSnapshot, error)
	Apply(ctx context.Context, principal Principal, sessionID string, event form.Event) (*SessionSnapshot, error)
	Save(ctx context.Context, principal Principal, sessionID string, close bool) (*SessionSnapshot, error)
	Analyze(ctx context.Context, principal Principal, sessionID string) (*SessionSnapshot, error)
	Cancel(ctx context.Context, principal Principal, sessionID string) error
}

type formService struct {
	questionnaire *domain.Questionnaire
	records       RecordService
	summaries     SummaryService
	sessions      *SessionStore
	logger        *zap.Logger
	now           func() time.Time
	newID         func() string
}

func NewFormService(q *domain.Questionnaire, records RecordService, summaries SummaryService, sessions *SessionStore, logger *zap.Logger) FormService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &formService{
		questionnaire: q,
		records:       records,
		summaries:     summaries,
		sessions:      sessions,
		logger:        logger,
		now:           time.Now,
		newID:         uuid.NewString,
	}
}

func (s *formService) Questionnaire() *domain.Questionnaire {
	return s.questionnaire
}

func (s *formService) Start(ctx context.Context, principal Principal, recordID string) (*SessionSnapshot, error) {
	var initial *domain.InterviewRecord
	if id := strings.TrimSpace(recordID); id != "" {
		record, err := s.records.Detail(ctx, principal, id)
		if err != nil {
			return nil, err
		}
		initial = record
	}

	state := form.New(s.questionnaire, initial, s.now())
	if state.RecordID == "" {
		state.RecordID = s.newID()
	}

	session := &Session{ID: s.newID(), Principal: principal, state: state}
	s.sessions.put(session)
	s.logger.Debug("form session started",
		zap.String("sessionId", session.ID),
		zap.String("recordId", state.RecordID),
		zap.Bool("editing", initial != nil),
	)
	return s.snapshot(session, ""), nil
}

func (s *formService) Get(_ context.Context, principal Principal, sessionID string) (*SessionSnapshot, error) {
	session, err := s.lock(principal, sessionID)
	if err != nil {
		return nil, err
	}
	defer session.mu.Unlock()
	return s.snapshot(session, ""), nil
}

func (s *formService) Apply(ctx context.Context, principal Principal, sessionID string, event form.Event) (*SessionSnapshot, error) {
	session, err := s.lock(principal, sessionID)
	if err != nil {
		return nil, err
	}
	defer session.mu.Unlock()

	next, effect := form.Reduce(s.questionnaire, session.state, event)
	if effect == form.EffectSaveAndClose {
		return s.saveLocked(ctx, principal, session, true)
	}
	session.state = next
	if next.Closed {
		s.sessions.remove(session.ID)
	}
	return s.snapshot(session, ""), nil
}

func (s *formService) Save(ctx context.Context, principal Principal, sessionID string, close bool) (*SessionSnapshot, error) {
	session, err := s.lock(principal, sessionID)
	if err != nil {
		return nil, err
	}
	defer session.mu.Unlock()
	return s.saveLocked(ctx, principal, session, close)
}

// saveLocked persists the session state. The session is left untouched on failure.
func (s *formService) saveLocked(ctx context.Context, principal Principal, session *Session, close bool) (*SessionSnapshot, error) {
	if strings.TrimSpace(session.state.BasicInfo.CandidateName) == "" {
		return nil, domain.ErrCandidateNameRequired
	}

	record := session.state.ToRecord()
	created, err := s.records.Save(ctx, principal, &record)
	if err != nil {
		return nil, err
	}

	next := session.state
	next.OwnerID = record.OwnerID
	next.CreatedAt = record.CreatedAt
	message := SavedMessage
	if close {
		next.Closed = true
		message = SavedAndClosedMessage
		s.sessions.remove(session.ID)
	}
	session.state = next

	s.logger.Info("interview record saved",
		zap.String("recordId", record.ID),
		zap.String("sessionId", session.ID),
		zap.Bool("created", created),
		zap.Bool("closed", close),
	)
	return s.snapshot(session, message), nil
}

func (s *formService) Analyze(ctx context.Context, principal Principal, sessionID string) (*SessionSnapshot, error) {
	session, err := s.lock(principal, sessionID)
	if err != nil {
		return nil, err
	}
	defer session.mu.Unlock()

	if strings.TrimSpace(session.state.BasicInfo.CandidateName) == "" {
		return nil, domain.ErrCandidateNameRequired
	}

	summary := s.summaries.Analyze(ctx, session.state.BasicInfo, session.state.Answers)
	// 要約は自動保存に失敗しても画面に残す
	session.state, _ = form.Reduce(s.questionnaire, session.state, form.SetSummary{Summary: summary})

	snapshot, err := s.saveLocked(ctx, principal, session, false)
	if err != nil {
		return nil, fmt.Errorf("auto-save after analysis: %w", err)
	}
	snapshot.Message = AnalyzedMessage
	return snapshot, nil
}

func (s *formService) Cancel(_ context.Context, principal Principal, sessionID string) error {
	session, err := s.lock(principal, sessionID)
	if err != nil {
		return err
	}
	defer session.mu.Unlock()

	session.state, _ = form.Reduce(s.questionnaire, session.state, form.Cancel{})
	s.sessions.remove(session.ID)
	s.logger.Debug("form session cancelled", zap.String("sessionId", session.ID))
	return nil
}

// lock は所有者確認の上でセッションをロックして返す。閉じたセッションは見つからない扱い。
func (s *formService) lock(principal Principal, sessionID string) (*Session, error) {
	session, err := s.sessions.get(strings.TrimSpace(sessionID), principal)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	if session.state.Closed {
		session.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *formService) snapshot(session *Session, message string) *SessionSnapshot {
	return &SessionSnapshot{
		SessionID: session.ID,
		State:     session.state,
		View:      form.Render(s.questionnaire, session.state),
		Message:   message,
	}
}
