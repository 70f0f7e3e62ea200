// Package memory はプロセス内で完結する面接記録リポジトリ。テストと STORE_DRIVER=memory で使う。
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sngm3741/interview-desk/api/internal/interview/application"
	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
)

// RecordRepository implements application.RecordRepository with a guarded map.
type RecordRepository struct {
	mu      sync.RWMutex
	records map[string]domain.InterviewRecord
}

func NewRecordRepository() *RecordRepository {
	return &RecordRepository{records: make(map[string]domain.InterviewRecord)}
}

var _ application.RecordRepository = (*RecordRepository)(nil)

// Find returns copies sorted by CreatedAt descending.
func (r *RecordRepository) Find(ctx context.Context, filter application.RecordFilter) ([]domain.InterviewRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]domain.InterviewRecord, 0, len(r.records))
	for _, record := range r.records {
		if filter.OwnerID != "" && record.OwnerID != filter.OwnerID {
			continue
		}
		records = append(records, record.Clone())
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

func (r *RecordRepository) FindByID(ctx context.Context, id string) (*domain.InterviewRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := record.Clone()
	return &clone, nil
}

// Upsert は created_at と owner_id を初回保存時の値に固定する。
func (r *RecordRepository) Upsert(ctx context.Context, record *domain.InterviewRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := record.Clone()
	if existing, ok := r.records[record.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
		stored.OwnerID = existing.OwnerID
	}
	r.records[record.ID] = stored
	return nil
}

func (r *RecordRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

// Len は保存件数を返す。
func (r *RecordRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
