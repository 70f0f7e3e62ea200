package form

import "github.com/sngm3741/interview-desk/api/internal/interview/domain"

// Reduce applies e to s and returns the next state. s is never mutated.
// Events that do not apply (unknown ids, boundaries, closed form) return s unchanged.
func Reduce(q *domain.Questionnaire, s State, e Event) (State, Effect) {
	if s.Closed || len(q.Stages) == 0 {
		return s, EffectNone
	}

	switch ev := e.(type) {
	case Advance:
		i := q.StageIndex(s.ActiveStageID)
		if i >= len(q.Stages)-1 {
			return s, EffectSaveAndClose
		}
		next := s.clone()
		next.enterStage(q.Stages[i+1])
		return next, EffectNone

	case Retreat:
		i := q.StageIndex(s.ActiveStageID)
		if i <= 0 {
			return s, EffectNone
		}
		next := s.clone()
		next.enterStage(q.Stages[i-1])
		return next, EffectNone

	case Jump:
		stage, ok := q.Stage(ev.StageID)
		if !ok {
			return s, EffectNone
		}
		next := s.clone()
		next.enterStage(stage)
		return next, EffectNone

	case EditAnswer:
		if _, ok := q.Question(ev.QuestionID); !ok {
			return s, EffectNone
		}
		next := s.clone()
		next.Answers[ev.QuestionID] = ev.Text
		return next, EffectNone

	case ToggleExpand:
		if _, ok := q.Question(ev.QuestionID); !ok {
			return s, EffectNone
		}
		next := s.clone()
		if next.Expanded[ev.QuestionID] {
			delete(next.Expanded, ev.QuestionID)
		} else {
			next.Expanded[ev.QuestionID] = true
		}
		return next, EffectNone

	case SetNotice:
		section, ok := q.Section(ev.SectionID)
		if !ok {
			return s, EffectNone
		}
		next := s.clone()
		if !next.Acknowledgements.SetNotice(section.ID, len(section.Notices), ev.Index, ev.Checked) {
			return s, EffectNone
		}
		return next, EffectNone

	case SetConsent:
		section, ok := q.Section(ev.SectionID)
		if !ok || !section.RequiresConsent {
			return s, EffectNone
		}
		next := s.clone()
		next.Acknowledgements.SetConsent(section.ID, len(section.Notices), ev.Checked)
		return next, EffectNone

	case UpdateBasicInfo:
		next := s.clone()
		next.BasicInfo = ev.Info
		if next.Focused != "" && indexOf(next.visibleQuestionIDs(q), next.Focused) < 0 {
			next.Focused = ""
		}
		return next, EffectNone

	case Focus:
		if indexOf(s.visibleQuestionIDs(q), ev.QuestionID) < 0 {
			return s, EffectNone
		}
		next := s.clone()
		next.Focused = ev.QuestionID
		next.Expanded[ev.QuestionID] = true
		return next, EffectNone

	case FocusNext:
		return s.moveFocus(q, 1), EffectNone

	case FocusPrev:
		return s.moveFocus(q, -1), EffectNone

	case AttachResume:
		next := s.clone()
		resume := ev.Resume
		next.Resume = &resume
		return next, EffectNone

	case RemoveResume:
		if s.Resume == nil {
			return s, EffectNone
		}
		next := s.clone()
		next.Resume = nil
		return next, EffectNone

	case SetSummary:
		next := s.clone()
		next.AISummary = ev.Summary
		return next, EffectNone

	case Cancel:
		next := s.clone()
		next.Closed = true
		return next, EffectNone
	}
	return s, EffectNone
}

func (s State) visibleQuestionIDs(q *domain.Questionnaire) []string {
	stage, ok := q.Stage(s.ActiveStageID)
	if !ok {
		return nil
	}
	return stage.VisibleQuestionIDs(s.BasicInfo)
}

// moveFocus は表示中の質問間でフォーカスを移動する。ステージ境界は越えない。
func (s State) moveFocus(q *domain.Questionnaire, step int) State {
	if s.Focused == "" {
		return s
	}
	ids := s.visibleQuestionIDs(q)
	current := indexOf(ids, s.Focused)
	if current < 0 {
		return s
	}
	target := current + step
	if target < 0 || target >= len(ids) {
		return s
	}
	next := s.clone()
	next.Focused = ids[target]
	next.Expanded[ids[target]] = true
	return next
}

func indexOf(ids []string, id string) int {
	for i, candidate := range ids {
		if candidate == id {
			return i
		}
	}
	return -1
}
