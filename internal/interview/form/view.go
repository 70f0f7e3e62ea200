package form

import (
	"strings"

	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
)

// View はフォーム画面の描画に必要な情報をまとめたもの。
type View struct {
	Tabs          []Tab         `json:"tabs"`
	ActiveStageID string        `json:"activeStageId"`
	Sections      []SectionView `json:"sections"`
	Focused       string        `json:"focused,omitempty"`
	CanRetreat    bool          `json:"canRetreat"`
	// AdvanceSaves は「次へ」が保存して閉じる操作になる最終ステージで true。
	AdvanceSaves bool `json:"advanceSaves"`
	Closed       bool `json:"closed"`
}

type Tab struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Active   bool   `json:"active"`
	Answered int    `json:"answered"`
	Total    int    `json:"total"`
}

type SectionView struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Questions       []QuestionView `json:"questions"`
	Notices         []NoticeView   `json:"notices,omitempty"`
	RequiresConsent bool           `json:"requiresConsent"`
	Consent         bool           `json:"consent"`
}

type QuestionView struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Checkpoints []string `json:"checkpoints,omitempty"`
	Answer      string   `json:"answer"`
	Expanded    bool     `json:"expanded"`
}

type NoticeView struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// Render builds the view for the active stage. Only sections whose condition
// matches the current basic info are listed.
func Render(q *domain.Questionnaire, s State) View {
	view := View{
		ActiveStageID: s.ActiveStageID,
		Focused:       s.Focused,
		Closed:        s.Closed,
		Tabs:          make([]Tab, 0, len(q.Stages)),
		Sections:      []SectionView{},
	}

	for _, stage := range q.Stages {
		tab := Tab{ID: stage.ID, Title: stage.Title, Active: stage.ID == s.ActiveStageID}
		for _, id := range stage.VisibleQuestionIDs(s.BasicInfo) {
			tab.Total++
			if strings.TrimSpace(s.Answers[id]) != "" {
				tab.Answered++
			}
		}
		view.Tabs = append(view.Tabs, tab)
	}

	index := q.StageIndex(s.ActiveStageID)
	if index < 0 {
		return view
	}
	view.CanRetreat = index > 0
	view.AdvanceSaves = index == len(q.Stages)-1

	for _, section := range q.Stages[index].VisibleSections(s.BasicInfo) {
		ack := s.Acknowledgements.Section(section.ID, len(section.Notices))
		sv := SectionView{
			ID:              section.ID,
			Title:           section.Title,
			RequiresConsent: section.RequiresConsent,
			Consent:         ack.Consent,
			Questions:       make([]QuestionView, 0, len(section.Questions)),
		}
		for _, question := range section.Questions {
			sv.Questions = append(sv.Questions, QuestionView{
				ID:          question.ID,
				Text:        question.Text,
				Checkpoints: question.Checkpoints,
				Answer:      s.Answers[question.ID],
				Expanded:    s.Expanded[question.ID],
			})
		}
		for i, text := range section.Notices {
			sv.Notices = append(sv.Notices, NoticeView{Text: text, Checked: ack.Notices[i]})
		}
		view.Sections = append(view.Sections, sv)
	}
	return view
}
