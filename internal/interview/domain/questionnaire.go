package domain

import (
	"fmt"
	"strings"
)

// Condition はセクションの表示条件。文字列比較ではなく列挙で扱う。
type Condition int

const (
	ConditionAlways Condition = iota
	ConditionSushiExperienced
	ConditionSushiInexperienced
)

// ParseCondition converts a configuration value into a Condition.
// Unknown values are rejected instead of defaulting to "always shown".
func ParseCondition(value string) (Condition, error) {
	switch value {
	case "", "always":
		return ConditionAlways, nil
	case "has_sushi_experience", "hasSushiExperience === true":
		return ConditionSushiExperienced, nil
	case "no_sushi_experience", "hasSushiExperience === false":
		return ConditionSushiInexperienced, nil
	}
	return ConditionAlways, fmt.Errorf("unknown section condition %q", value)
}

// Matches は基本情報に対して条件を評価する。
func (c Condition) Matches(info BasicInfo) bool {
	switch c {
	case ConditionSushiExperienced:
		return info.HasSushiExperience
	case ConditionSushiInexperienced:
		return !info.HasSushiExperience
	default:
		return true
	}
}

func (c Condition) String() string {
	switch c {
	case ConditionSushiExperienced:
		return "has_sushi_experience"
	case ConditionSushiInexperienced:
		return "no_sushi_experience"
	default:
		return "always"
	}
}

// Question は 1 つの質問。Checkpoints は面接官向けの確認ポイント。
type Question struct {
	ID          string
	Text        string
	Checkpoints []string
}

// Section groups questions and notices inside a stage.
type Section struct {
	ID              string
	Title           string
	Condition       Condition
	Questions       []Question
	Notices         []string
	RequiresConsent bool
}

// Stage is one tab of the questionnaire.
type Stage struct {
	ID       string
	Title    string
	Sections []Section
}

// Questionnaire は面接票全体の静的定義。
type Questionnaire struct {
	Stages []Stage
}

// StageIndex は stageID の位置を返す。見つからなければ -1。
func (q *Questionnaire) StageIndex(stageID string) int {
	for i, stage := range q.Stages {
		if stage.ID == stageID {
			return i
		}
	}
	return -1
}

// Stage returns the stage with the given id.
func (q *Questionnaire) Stage(stageID string) (Stage, bool) {
	if i := q.StageIndex(stageID); i >= 0 {
		return q.Stages[i], true
	}
	return Stage{}, false
}

// Section はステージを横断してセクションを探す。
func (q *Questionnaire) Section(sectionID string) (Section, bool) {
	for _, stage := range q.Stages {
		for _, section := range stage.Sections {
			if section.ID == sectionID {
				return section, true
			}
		}
	}
	return Section{}, false
}

// Question はステージを横断して質問を探す。
func (q *Questionnaire) Question(questionID string) (Question, bool) {
	for _, stage := range q.Stages {
		for _, section := range stage.Sections {
			for _, question := range section.Questions {
				if question.ID == questionID {
					return question, true
				}
			}
		}
	}
	return Question{}, false
}

// VisibleSections は条件を満たすセクションのみを定義順で返す。
func (s Stage) VisibleSections(info BasicInfo) []Section {
	sections := make([]Section, 0, len(s.Sections))
	for _, section := range s.Sections {
		if section.Condition.Matches(info) {
			sections = append(sections, section)
		}
	}
	return sections
}

// VisibleQuestionIDs lists question ids of the visible sections in document order.
func (s Stage) VisibleQuestionIDs(info BasicInfo) []string {
	ids := make([]string, 0)
	for _, section := range s.VisibleSections(info) {
		for _, question := range section.Questions {
			ids = append(ids, question.ID)
		}
	}
	return ids
}

// AnsweredQuestion は AI 要約に渡す 1 問分の情報。
type AnsweredQuestion struct {
	Question    string
	Checkpoints []string
	Answer      string
}

// CandidateContext is the payload handed to the summarizer.
type CandidateContext struct {
	Name     string
	Position string
	Items    []AnsweredQuestion
}

// AnsweredItems collects questions with a non-blank answer in questionnaire order.
func (q *Questionnaire) AnsweredItems(answers map[string]string) []AnsweredQuestion {
	items := make([]AnsweredQuestion, 0)
	for _, stage := range q.Stages {
		for _, section := range stage.Sections {
			for _, question := range section.Questions {
				answer := strings.TrimSpace(answers[question.ID])
				if answer == "" {
					continue
				}
				items = append(items, AnsweredQuestion{
					Question:    question.Text,
					Checkpoints: append([]string(nil), question.Checkpoints...),
					Answer:      answer,
				})
			}
		}
	}
	return items
}
