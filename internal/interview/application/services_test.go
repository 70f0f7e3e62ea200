package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sngm3741/interview-desk/api/internal/infrastructure/memory"
	"github.com/sngm3741/interview-desk/api/internal/interview/application"
	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
	"github.com/sngm3741/interview-desk/api/internal/interview/form"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin    = application.Principal{ID: "admin-1", Name: "관리자", Role: application.RoleAdmin}
	manager  = application.Principal{ID: "manager-1", Name: "김점장", Role: application.RoleManager}
	manager2 = application.Principal{ID: "manager-2", Name: "이점장", Role: application.RoleManager}
)

func questionnaire() *domain.Questionnaire {
	return &domain.Questionnaire{Stages: []domain.Stage{
		{ID: "basic", Title: "기본", Sections: []domain.Section{
			{ID: "intro", Questions: []domain.Question{
				{ID: "q1", Text: "지원 동기", Checkpoints: []string{"장기 근무"}},
				{ID: "q2", Text: "근무 가능 시간"},
			}},
		}},
		{ID: "notice", Title: "안내", Sections: []domain.Section{
			{ID: "rules", RequiresConsent: true, Notices: []string{"수습 3개월"}},
		}},
	}}
}

type fakeSummarizer struct {
	mu       sync.Mutex
	calls    int
	result   string
	err      error
	received domain.CandidateContext
}

func (f *fakeSummarizer) Summarize(_ context.Context, candidate domain.CandidateContext) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.received = candidate
	return f.result, f.err
}

type fakeNotifier struct {
	created chan domain.InterviewRecord
}

func (f *fakeNotifier) RecordCreated(_ context.Context, record domain.InterviewRecord) {
	f.created <- record
}

type flakyRepository struct {
	*memory.RecordRepository
	failUpsert bool
}

func (r *flakyRepository) Upsert(ctx context.Context, record *domain.InterviewRecord) error {
	if r.failUpsert {
		return errors.New("connection refused")
	}
	return r.RecordRepository.Upsert(ctx, record)
}

func seed(t *testing.T, repo application.RecordRepository, id, owner, name string) {
	t.Helper()
	require.NoError(t, repo.Upsert(context.Background(), &domain.InterviewRecord{
		ID:        id,
		OwnerID:   owner,
		BasicInfo: domain.BasicInfo{CandidateName: name, InterviewType: domain.InterviewTypeStandard},
		CreatedAt: time.Now().UTC(),
	}))
}

func TestRecordServiceAccessControl(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRecordRepository()
	seed(t, repo, "r1", manager.ID, "김민수")
	seed(t, repo, "r2", manager2.ID, "이서연")
	svc := application.NewRecordService(repo, nil)

	all, err := svc.List(ctx, admin, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := svc.List(ctx, manager, "")
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "r1", own[0].ID)

	filtered, err := svc.List(ctx, admin, "ㅇ")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "r2", filtered[0].ID)

	_, err = svc.Detail(ctx, manager, "r2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Detail(ctx, admin, "r2")
	assert.NoError(t, err)

	foreign := &domain.InterviewRecord{ID: "r2", BasicInfo: domain.BasicInfo{CandidateName: "탈취", InterviewType: domain.InterviewTypeStandard}}
	_, err = svc.Save(ctx, manager, foreign)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, manager, "r2"), domain.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, admin, "r2"))
	assert.Equal(t, 1, repo.Len())
}

func TestRecordServiceSaveKeepsOwnerAndCreatedAt(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRecordRepository()
	notifier := &fakeNotifier{created: make(chan domain.InterviewRecord, 2)}
	svc := application.NewRecordService(repo, notifier)

	record := &domain.InterviewRecord{ID: "r1", BasicInfo: domain.BasicInfo{CandidateName: "김민수", InterviewType: domain.InterviewTypeStandard}}
	created, err := svc.Save(ctx, manager, record)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, manager.ID, record.OwnerID)
	firstCreatedAt := record.CreatedAt
	require.False(t, firstCreatedAt.IsZero())

	select {
	case got := <-notifier.created:
		assert.Equal(t, "r1", got.ID)
	case <-time.After(time.Second):
		t.Fatal("notifier was not called")
	}

	record.AISummary = "요약"
	created, err = svc.Save(ctx, admin, record)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, manager.ID, record.OwnerID, "admin edits keep the original owner")
	assert.Equal(t, firstCreatedAt, record.CreatedAt)
	assert.Len(t, notifier.created, 0)
}

func TestRecordServiceSaveErrors(t *testing.T) {
	ctx := context.Background()
	repo := &flakyRepository{RecordRepository: memory.NewRecordRepository()}
	svc := application.NewRecordService(repo, nil)

	_, err := svc.Save(ctx, manager, &domain.InterviewRecord{ID: "r1"})
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, 0, repo.Len())

	repo.failUpsert = true
	_, err = svc.Save(ctx, manager, &domain.InterviewRecord{ID: "r1", BasicInfo: domain.BasicInfo{CandidateName: "김민수", InterviewType: domain.InterviewTypeStandard}})
	var persistErr *application.PersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSummaryService(t *testing.T) {
	ctx := context.Background()
	q := questionnaire()
	info := domain.BasicInfo{CandidateName: " 김민수 ", Position: "홀"}

	t.Run("nothing to analyze skips the summarizer", func(t *testing.T) {
		summarizer := &fakeSummarizer{result: "unused"}
		svc := application.NewSummaryService(q, summarizer, time.Second, nil)
		got := svc.Analyze(ctx, info, map[string]string{"q1": "   "})
		assert.Equal(t, application.NothingToAnalyzeSummary, got)
		assert.Equal(t, 0, summarizer.calls)
	})

	t.Run("sends answered questions in order", func(t *testing.T) {
		summarizer := &fakeSummarizer{result: "  ## 요약\n- 성실함  "}
		svc := application.NewSummaryService(q, summarizer, time.Second, nil)
		got := svc.Analyze(ctx, info, map[string]string{"q2": "주말", "q1": "매장이 가까워서"})
		assert.Equal(t, "## 요약\n- 성실함", got)
		assert.Equal(t, 1, summarizer.calls)
		assert.Equal(t, "김민수", summarizer.received.Name)
		require.Len(t, summarizer.received.Items, 2)
		assert.Equal(t, "지원 동기", summarizer.received.Items[0].Question)
		assert.Equal(t, []string{"장기 근무"}, summarizer.received.Items[0].Checkpoints)
		assert.Equal(t, "주말", summarizer.received.Items[1].Answer)
	})

	t.Run("failures degrade to fixed messages", func(t *testing.T) {
		answers := map[string]string{"q1": "답변"}

		svc := application.NewSummaryService(q, nil, time.Second, nil)
		assert.Equal(t, application.UnavailableSummary, svc.Analyze(ctx, info, answers))

		missing := &fakeSummarizer{err: application.ErrSummarizerUnavailable}
		svc = application.NewSummaryService(q, missing, time.Second, nil)
		assert.Equal(t, application.UnavailableSummary, svc.Analyze(ctx, info, answers))

		broken := &fakeSummarizer{err: errors.New("quota exceeded")}
		svc = application.NewSummaryService(q, broken, time.Second, nil)
		assert.Equal(t, application.FailedSummary, svc.Analyze(ctx, info, answers))

		empty := &fakeSummarizer{result: "  "}
		svc = application.NewSummaryService(q, empty, time.Second, nil)
		assert.Equal(t, application.FailedSummary, svc.Analyze(ctx, info, answers))
	})
}

type formFixture struct {
	repo       *flakyRepository
	summarizer *fakeSummarizer
	sessions   *application.SessionStore
	svc        application.FormService
}

func newFormFixture() formFixture {
	q := questionnaire()
	repo := &flakyRepository{RecordRepository: memory.NewRecordRepository()}
	summarizer := &fakeSummarizer{result: "## 종합 의견\n- 성실함"}
	records := application.NewRecordService(repo, nil)
	summaries := application.NewSummaryService(q, summarizer, time.Second, nil)
	sessions := application.NewSessionStore(time.Hour)
	return formFixture{
		repo:       repo,
		summarizer: summarizer,
		sessions:   sessions,
		svc:        application.NewFormService(q, records, summaries, sessions, nil),
	}
}

func setName(t *testing.T, f formFixture, sessionID, name string) {
	t.Helper()
	snap, err := f.svc.Get(context.Background(), manager, sessionID)
	require.NoError(t, err)
	info := snap.State.BasicInfo
	info.CandidateName = name
	_, err = f.svc.Apply(context.Background(), manager, sessionID, form.UpdateBasicInfo{Info: info})
	require.NoError(t, err)
}

func TestFormServiceSaveTwiceStoresOneRecord(t *testing.T) {
	ctx := context.Background()
	f := newFormFixture()

	snap, err := f.svc.Start(ctx, manager, "")
	require.NoError(t, err)
	require.NotEmpty(t, snap.State.RecordID)
	sid := snap.SessionID

	setName(t, f, sid, "김민수")
	first, err := f.svc.Save(ctx, manager, sid, false)
	require.NoError(t, err)
	assert.Equal(t, application.SavedMessage, first.Message)

	_, err = f.svc.Apply(ctx, manager, sid, form.EditAnswer{QuestionID: "q1", Text: "집이 가까워서"})
	require.NoError(t, err)
	second, err := f.svc.Save(ctx, manager, sid, false)
	require.NoError(t, err)

	assert.Equal(t, first.State.RecordID, second.State.RecordID)
	assert.Equal(t, 1, f.repo.Len())
	stored, err := f.repo.FindByID(ctx, second.State.RecordID)
	require.NoError(t, err)
	assert.Equal(t, "집이 가까워서", stored.Answers["q1"])
	assert.Equal(t, manager.ID, stored.OwnerID)
}

func TestFormServiceSaveWithoutNameFails(t *testing.T) {
	ctx := context.Background()
	f := newFormFixture()

	snap, err := f.svc.Start(ctx, manager, "")
	require.NoError(t, err)

	_, err = f.svc.Save(ctx, manager, snap.SessionID, true)
	assert.ErrorIs(t, err, domain.ErrCandidateNameRequired)
	assert.Equal(t, 0, f.repo.Len())

	again, err := f.svc.Get(ctx, manager, snap.SessionID)
	require.NoError(t, err, "session stays open after a validation error")
	assert.False(t, again.State.Closed)
}

func TestFormServicePersistenceFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	f := newFormFixture()

	snap, err := f.svc.Start(ctx, manager, "")
	require.NoError(t, err)
	setName(t, f, snap.SessionID, "김민수")

	f.repo.failUpsert = true
	_, err = f.svc.Save(ctx, manager, snap.SessionID, true)
	var persistErr *application.PersistenceError
	require.ErrorAs(t, err, &persistErr)

	again, err := f.svc.Get(ctx, manager, snap.SessionID)
	require.NoError(t, err)
	assert.False(t, again.State.Closed)
	assert.True(t, again.State.CreatedAt.IsZero())

	f.repo.failUpsert = false
	closed, err := f.svc.Save(ctx, manager, snap.SessionID, true)
	require.NoError(t, err)
	assert.Equal(t, application.SavedAndClosedMessage, closed.Message)
	assert.True(t, closed.State.Closed)
	assert.Equal(t, 0, f.sessions.Len())
}

func TestFormServiceAnalyze(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a candidate name", func(t *testing.T) {
		f := newFormFixture()
		snap, err := f.svc.Start(ctx, manager, "")
		require.NoError(t, err)
		_, err = f.svc.Analyze(ctx, manager, snap.SessionID)
		assert.True(t, domain.IsValidation(err))
		assert.Equal(t, 0, f.summarizer.calls)
	})

	t.Run("no answers short-circuits and still auto-saves", func(t *testing.T) {
		f := newFormFixture()
		snap, err := f.svc.Start(ctx, manager, "")
		require.NoError(t, err)
		setName(t, f, snap.SessionID, "김민수")

		got, err := f.svc.Analyze(ctx, manager, snap.SessionID)
		require.NoError(t, err)
		assert.Equal(t, application.NothingToAnalyzeSummary, got.State.AISummary)
		assert.Equal(t, 0, f.summarizer.calls)
		assert.Equal(t, 1, f.repo.Len())
	})

	t.Run("summary replaces previous and is persisted", func(t *testing.T) {
		f := newFormFixture()
		snap, err := f.svc.Start(ctx, manager, "")
		require.NoError(t, err)
		sid := snap.SessionID
		setName(t, f, sid, "김민수")
		_, err = f.svc.Apply(ctx, manager, sid, form.SetSummary{Summary: "이전 요약"})
		require.NoError(t, err)
		_, err = f.svc.Apply(ctx, manager, sid, form.EditAnswer{QuestionID: "q1", Text: "매장이 좋아서"})
		require.NoError(t, err)

		got, err := f.svc.Analyze(ctx, manager, sid)
		require.NoError(t, err)
		assert.Equal(t, application.AnalyzedMessage, got.Message)
		assert.False(t, got.State.Closed)

		stored, err := f.repo.FindByID(ctx, got.State.RecordID)
		require.NoError(t, err)
		assert.Equal(t, "## 종합 의견\n- 성실함", stored.AISummary)
	})
}

func TestFormServiceAdvanceOnLastStageSavesAndCloses(t *testing.T) {
	ctx := context.Background()
	f := newFormFixture()

	snap, err := f.svc.Start(ctx, manager, "")
	require.NoError(t, err)
	sid := snap.SessionID
	setName(t, f, sid, "김민수")

	moved, err := f.svc.Apply(ctx, manager, sid, form.Advance{})
	require.NoError(t, err)
	assert.Equal(t, "notice", moved.State.ActiveStageID)

	closed, err := f.svc.Apply(ctx, manager, sid, form.Advance{})
	require.NoError(t, err)
	assert.True(t, closed.State.Closed)
	assert.Equal(t, 1, f.repo.Len())

	_, err = f.svc.Get(ctx, manager, sid)
	assert.ErrorIs(t, err, application.ErrSessionNotFound)
}

func TestFormServiceCancelDoesNotTouchStore(t *testing.T) {
	ctx := context.Background()
	f := newFormFixture()
	seed(t, f.repo, "r1", manager.ID, "김민수")

	snap, err := f.svc.Start(ctx, manager, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", snap.State.RecordID)
	assert.Equal(t, "김민수", snap.State.BasicInfo.CandidateName)

	setName(t, f, snap.SessionID, "변경됨")
	require.NoError(t, f.svc.Cancel(ctx, manager, snap.SessionID))

	stored, err := f.repo.FindByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "김민수", stored.BasicInfo.CandidateName)
	assert.ErrorIs(t, f.svc.Cancel(ctx, manager, snap.SessionID), application.ErrSessionNotFound)
}

func TestFormServiceSessionOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFormFixture()
	seed(t, f.repo, "r2", manager2.ID, "이서연")

	_, err := f.svc.Start(ctx, manager, "r2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	snap, err := f.svc.Start(ctx, manager, "")
	require.NoError(t, err)
	_, err = f.svc.Get(ctx, manager2, snap.SessionID)
	assert.ErrorIs(t, err, application.ErrSessionNotFound)
}

func TestFormServiceSaveAfterDeleteDoesNotRecreate(t *testing.T) {
	ctx := context.Background()

	t.Run("editing an existing record", func(t *testing.T) {
		f := newFormFixture()
		seed(t, f.repo, "r1", manager.ID, "김민수")

		snap, err := f.svc.Start(ctx, admin, "r1")
		require.NoError(t, err)
		require.NoError(t, f.repo.Delete(ctx, "r1"))

		_, err = f.svc.Save(ctx, admin, snap.SessionID, false)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, 0, f.repo.Len())

		_, err = f.svc.Get(ctx, admin, snap.SessionID)
		assert.NoError(t, err, "session stays open")
	})

	t.Run("new record saved once then deleted", func(t *testing.T) {
		f := newFormFixture()
		snap, err := f.svc.Start(ctx, manager, "")
		require.NoError(t, err)
		setName(t, f, snap.SessionID, "이서연")

		saved, err := f.svc.Save(ctx, manager, snap.SessionID, false)
		require.NoError(t, err)
		require.NoError(t, f.repo.Delete(ctx, saved.State.RecordID))

		_, err = f.svc.Save(ctx, manager, snap.SessionID, false)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, 0, f.repo.Len())
	})
}

func TestRecordServiceDeleteTrimsID(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRecordRepository()
	seed(t, repo, "r1", manager.ID, "김민수")
	svc := application.NewRecordService(repo, nil)

	require.NoError(t, svc.Delete(ctx, manager, "  r1 "))
	assert.Equal(t, 0, repo.Len())
}

type blockingNotifier struct {
	started chan struct{}
	ctxErr  chan error
}

func (b *blockingNotifier) RecordCreated(ctx context.Context, _ domain.InterviewRecord) {
	close(b.started)
	<-ctx.Done()
	b.ctxErr <- ctx.Err()
}

func TestRecordServiceDrain(t *testing.T) {
	ctx := context.Background()
	record := func() *domain.InterviewRecord {
		return &domain.InterviewRecord{ID: "r1", BasicInfo: domain.BasicInfo{CandidateName: "김민수", InterviewType: domain.InterviewTypeStandard}}
	}

	t.Run("waits for finished sends", func(t *testing.T) {
		notifier := &fakeNotifier{created: make(chan domain.InterviewRecord, 1)}
		svc := application.NewRecordService(memory.NewRecordRepository(), notifier)
		_, err := svc.Save(ctx, manager, record())
		require.NoError(t, err)

		require.NoError(t, svc.Drain(ctx))
		assert.Len(t, notifier.created, 1)
	})

	t.Run("cancels sends still running at the deadline", func(t *testing.T) {
		notifier := &blockingNotifier{started: make(chan struct{}), ctxErr: make(chan error, 1)}
		svc := application.NewRecordService(memory.NewRecordRepository(), notifier)
		_, err := svc.Save(ctx, manager, record())
		require.NoError(t, err)
		<-notifier.started

		drainCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, svc.Drain(drainCtx), context.DeadlineExceeded)
		assert.ErrorIs(t, <-notifier.ctxErr, context.Canceled)
	})
}
