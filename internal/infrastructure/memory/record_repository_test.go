package memory

import (
	"context"
	"testing"
	"time"

	"github.com/sngm3741/interview-desk/api/internal/interview/application"
	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRecordRepository()
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, &domain.InterviewRecord{ID: "a", OwnerID: "m1", CreatedAt: base}))
	require.NoError(t, repo.Upsert(ctx, &domain.InterviewRecord{ID: "b", OwnerID: "m2", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, repo.Upsert(ctx, &domain.InterviewRecord{ID: "c", OwnerID: "m1", CreatedAt: base.Add(2 * time.Hour)}))

	all, err := repo.Find(ctx, application.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].ID, all[1].ID, all[2].ID})

	own, err := repo.Find(ctx, application.RecordFilter{OwnerID: "m1"})
	require.NoError(t, err)
	assert.Len(t, own, 2)

	// 再保存しても作成日時と所有者は変わらない
	require.NoError(t, repo.Upsert(ctx, &domain.InterviewRecord{ID: "a", OwnerID: "other", CreatedAt: base.Add(time.Hour * 24), AISummary: "updated"}))
	got, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, base, got.CreatedAt)
	assert.Equal(t, "m1", got.OwnerID)
	assert.Equal(t, "updated", got.AISummary)
	assert.Equal(t, 3, repo.Len())

	require.NoError(t, repo.Delete(ctx, "a"))
	_, err = repo.FindByID(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "a"), domain.ErrNotFound)
}

func TestRecordRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewRecordRepository()
	require.NoError(t, repo.Upsert(ctx, &domain.InterviewRecord{ID: "a", Answers: map[string]string{"q1": "원본"}}))

	got, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	got.Answers["q1"] = "변경"

	again, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "원본", again.Answers["q1"])
}
