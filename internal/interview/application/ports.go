package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
)

// RecordRepository は面接記録の永続化ポート。
type RecordRepository interface {
	// Find returns records newest first.
	Find(ctx context.Context, filter RecordFilter) ([]domain.InterviewRecord, error)
	FindByID(ctx context.Context, id string) (*domain.InterviewRecord, error)
	Upsert(ctx context.Context, record *domain.InterviewRecord) error
	Delete(ctx context.Context, id string) error
}

// RecordFilter narrows Find. An empty OwnerID means every owner.
type RecordFilter struct {
	OwnerID string
}

// Summarizer は AI 要約の外部協力者。
type Summarizer interface {
	Summarize(ctx context.Context, candidate domain.CandidateContext) (string, error)
}

// Notifier は新規記録の作成を管理者へ知らせる。失敗は実装側でログに残す。
type Notifier interface {
	RecordCreated(ctx context.Context, record domain.InterviewRecord)
}

// Role はユーザーの権限。
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
)

// ParseRole accepts admin or manager, case-insensitively.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleManager:
		return RoleManager, nil
	}
	return "", fmt.Errorf("unknown role %q", value)
}

// Principal は認証済みの操作者。
type Principal struct {
	ID   string
	Name string
	Role Role
}

// IsAdmin reports whether the principal may see every record.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanAccess は記録の参照・更新が許可されているかを返す。
func (p Principal) CanAccess(record domain.InterviewRecord) bool {
	return p.IsAdmin() || (p.ID != "" && record.OwnerID == p.ID)
}

func (p Principal) filter() RecordFilter {
	if p.IsAdmin() {
		return RecordFilter{}
	}
	return RecordFilter{OwnerID: p.ID}
}
