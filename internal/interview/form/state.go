// Package form は面接入力フォームの状態遷移を純粋関数として実装する。
// I/O を伴う保存・分析は application 層が担当する。
package form

import (
	"strings"
	"time"

	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
)

// State は 1 つのフォームセッションの全状態。
type State struct {
	RecordID         string
	OwnerID          string
	CreatedAt        time.Time
	ActiveStageID    string
	BasicInfo        domain.BasicInfo
	Answers          map[string]string
	Acknowledgements domain.Acknowledgements
	Expanded         map[string]bool
	Focused          string
	Resume           *domain.Resume
	AISummary        string
	Closed           bool
}

// New builds the initial state. When initial is nil the defaults for a new
// interview are used; otherwise the record's fields are copied.
// The first stage is active and its answered questions start expanded.
func New(q *domain.Questionnaire, initial *domain.InterviewRecord, now time.Time) State {
	s := State{
		BasicInfo:        domain.DefaultBasicInfo(now),
		Answers:          map[string]string{},
		Acknowledgements: domain.Acknowledgements{},
		Expanded:         map[string]bool{},
	}
	if initial != nil {
		record := initial.Clone()
		s.RecordID = record.ID
		s.OwnerID = record.OwnerID
		s.CreatedAt = record.CreatedAt
		s.BasicInfo = record.BasicInfo
		if s.BasicInfo.InterviewType == "" {
			s.BasicInfo.InterviewType = domain.InterviewTypeStandard
		}
		s.Answers = record.Answers
		s.Acknowledgements = record.Acknowledgements
		s.Acknowledgements.Normalize(q)
		s.Resume = record.Resume
		s.AISummary = record.AISummary
	}
	if len(q.Stages) > 0 {
		s.enterStage(q.Stages[0])
	}
	return s
}

// ToRecord は現在の状態から永続化用の面接記録を組み立てる。
func (s State) ToRecord() domain.InterviewRecord {
	record := domain.InterviewRecord{
		ID:               s.RecordID,
		OwnerID:          s.OwnerID,
		BasicInfo:        s.BasicInfo,
		Answers:          domain.CloneAnswers(s.Answers),
		Acknowledgements: s.Acknowledgements.Clone(),
		AISummary:        s.AISummary,
		CreatedAt:        s.CreatedAt,
	}
	if s.Resume != nil {
		resume := *s.Resume
		record.Resume = &resume
	}
	return record
}

func (s State) clone() State {
	out := s
	out.Answers = domain.CloneAnswers(s.Answers)
	out.Acknowledgements = s.Acknowledgements.Clone()
	out.Expanded = make(map[string]bool, len(s.Expanded))
	for id, open := range s.Expanded {
		out.Expanded[id] = open
	}
	if s.Resume != nil {
		resume := *s.Resume
		out.Resume = &resume
	}
	return out
}

// enterStage activates stage, expands its answered questions and clears focus.
// Expansion is a union; nothing is collapsed.
func (s *State) enterStage(stage domain.Stage) {
	s.ActiveStageID = stage.ID
	s.Focused = ""
	for _, section := range stage.Sections {
		for _, question := range section.Questions {
			if strings.TrimSpace(s.Answers[question.ID]) != "" {
				s.Expanded[question.ID] = true
			}
		}
	}
}
