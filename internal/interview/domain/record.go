package domain

import (
	"fmt"
	"strings"
	"time"
)

// InterviewType は面接の種別を表す値オブジェクト。
type InterviewType string

const (
	InterviewTypeStandard InterviewType = "STANDARD"
	InterviewTypeDepth    InterviewType = "DEPTH"
)

// NewInterviewType は入力値を正規化して InterviewType を返す。空文字は STANDARD とみなす。
func NewInterviewType(value string) (InterviewType, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	switch InterviewType(trimmed) {
	case "":
		return InterviewTypeStandard, nil
	case InterviewTypeStandard, InterviewTypeDepth:
		return InterviewType(trimmed), nil
	}
	return "", fmt.Errorf("invalid interview type: %s", value)
}

func (t InterviewType) String() string {
	return string(t)
}

// BasicInfo は候補者と面接の基本情報。
type BasicInfo struct {
	CandidateName      string
	Position           string
	Store              string
	InterviewDate      string
	InterviewerName    string
	InterviewType      InterviewType
	VisaStatus         string
	VisaExpiry         string
	Contact            string
	HasSushiExperience bool
}

// DefaultBasicInfo は新規面接の初期値を返す。面接日は now の日付。
func DefaultBasicInfo(now time.Time) BasicInfo {
	return BasicInfo{
		InterviewDate: now.Format(DateLayout),
		InterviewType: InterviewTypeStandard,
	}
}

// DateLayout は面接日の文字列表現。
const DateLayout = "2006-01-02"

// InterviewRecord は面接記録の集約ルート。
type InterviewRecord struct {
	ID               string
	OwnerID          string
	BasicInfo        BasicInfo
	Answers          map[string]string
	Acknowledgements Acknowledgements
	Resume           *Resume
	AISummary        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Validate は保存前に必須項目を検証する。
func (r *InterviewRecord) Validate() error {
	if strings.TrimSpace(r.BasicInfo.CandidateName) == "" {
		return ErrCandidateNameRequired
	}
	if strings.TrimSpace(r.ID) == "" {
		return &ValidationError{Field: "id", Message: "기록 ID가 없습니다."}
	}
	if _, err := NewInterviewType(r.BasicInfo.InterviewType.String()); err != nil {
		return &ValidationError{Field: "interviewType", Message: "면접 유형이 올바르지 않습니다."}
	}
	return nil
}

// Clone はマップ・スライスを含めて複製する。
func (r InterviewRecord) Clone() InterviewRecord {
	out := r
	out.Answers = CloneAnswers(r.Answers)
	out.Acknowledgements = r.Acknowledgements.Clone()
	if r.Resume != nil {
		resume := *r.Resume
		out.Resume = &resume
	}
	return out
}

// CloneAnswers は回答マップのコピーを返す。nil は空マップになる。
func CloneAnswers(answers map[string]string) map[string]string {
	out := make(map[string]string, len(answers))
	for k, v := range answers {
		out[k] = v
	}
	return out
}
