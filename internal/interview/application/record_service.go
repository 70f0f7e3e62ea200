package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
	"github.com/sngm3741/interview-desk/api/internal/interview/search"
)

// RecordService describes record use-cases with access control applied.
type RecordService interface {
	List(ctx context.Context, principal Principal, query string) ([]domain.InterviewRecord, error)
	Detail(ctx context.Context, principal Principal, id string) (*domain.InterviewRecord, error)
	// Save upserts the record and reports whether it was newly created.
	Save(ctx context.Context, principal Principal, record *domain.InterviewRecord) (bool, error)
	Delete(ctx context.Context, principal Principal, id string) error
	// Drain waits for in-flight admin notifications. When ctx ends first the
	// remaining sends are cancelled and ctx.Err() is returned.
	Drain(ctx context.Context) error
}

// PersistenceError はストアへの読み書き失敗を表す。Reason は利用者に表示してよい。
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

type recordService struct {
	repo     RecordRepository
	notifier Notifier
	now      func() time.Time

	notifyCtx    context.Context
	cancelNotify context.CancelFunc
	pending      sync.WaitGroup
}

// NewRecordService wires the repository. notifier may be nil.
func NewRecordService(repo RecordRepository, notifier Notifier) RecordService {
	notifyCtx, cancel := context.WithCancel(context.Background())
	return &recordService{
		repo:         repo,
		notifier:     notifier,
		now:          func() time.Time { return time.Now().UTC() },
		notifyCtx:    notifyCtx,
		cancelNotify: cancel,
	}
}

func (s *recordService) List(ctx context.Context, principal Principal, query string) ([]domain.InterviewRecord, error) {
	records, err := s.repo.Find(ctx, principal.filter())
	if err != nil {
		return nil, &PersistenceError{Op: "list records", Err: err}
	}
	return search.Filter(records, query), nil
}

func (s *recordService) Detail(ctx context.Context, principal Principal, id string) (*domain.InterviewRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrNotFound
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, &PersistenceError{Op: "get record", Err: err}
	}
	// 他人の記録は存在しないものとして扱う
	if !principal.CanAccess(*record) {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

func (s *recordService) Save(ctx context.Context, principal Principal, record *domain.InterviewRecord) (bool, error) {
	if err := record.Validate(); err != nil {
		return false, err
	}

	existing, err := s.repo.FindByID(ctx, record.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// CreatedAt を持つ記録は保存済みのもの。見つからなければ削除されている。
		if !record.CreatedAt.IsZero() {
			return false, domain.ErrNotFound
		}
		existing = nil
	case err != nil:
		return false, &PersistenceError{Op: "get record", Err: err}
	}

	toSave := record.Clone()
	now := s.now()
	created := existing == nil
	if created {
		toSave.OwnerID = principal.ID
		toSave.CreatedAt = now
	} else {
		if !principal.CanAccess(*existing) {
			return false, domain.ErrNotFound
		}
		toSave.OwnerID = existing.OwnerID
		toSave.CreatedAt = existing.CreatedAt
	}
	toSave.UpdatedAt = now

	if err := s.repo.Upsert(ctx, &toSave); err != nil {
		return false, &PersistenceError{Op: "save record", Err: err}
	}
	*record = toSave

	if created && s.notifier != nil {
		s.pending.Add(1)
		go func(record domain.InterviewRecord) {
			defer s.pending.Done()
			s.notifier.RecordCreated(s.notifyCtx, record)
		}(toSave.Clone())
	}
	return created, nil
}

func (s *recordService) Delete(ctx context.Context, principal Principal, id string) error {
	id = strings.TrimSpace(id)
	if _, err := s.Detail(ctx, principal, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return &PersistenceError{Op: "delete record", Err: err}
	}
	return nil
}

func (s *recordService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.cancelNotify()
		<-done
		return ctx.Err()
	}
}
