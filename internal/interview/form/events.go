package form

import "github.com/sngm3741/interview-desk/api/internal/interview/domain"

// Event はフォームに対するユーザー操作。
type Event interface {
	eventName() string
}

// Effect は遷移の結果として呼び出し側が実行すべき副作用。
type Effect int

const (
	EffectNone Effect = iota
	// EffectSaveAndClose は最終ステージで「次へ」が押されたことを示す。
	EffectSaveAndClose
)

type (
	Advance struct{}
	Retreat struct{}
	Jump    struct{ StageID string }

	EditAnswer struct {
		QuestionID string
		Text       string
	}
	ToggleExpand struct{ QuestionID string }

	SetNotice struct {
		SectionID string
		Index     int
		Checked   bool
	}
	SetConsent struct {
		SectionID string
		Checked   bool
	}

	UpdateBasicInfo struct{ Info domain.BasicInfo }

	Focus     struct{ QuestionID string }
	FocusNext struct{}
	FocusPrev struct{}

	AttachResume struct{ Resume domain.Resume }
	RemoveResume struct{}

	// SetSummary は AI 要約の結果を反映する。
	SetSummary struct{ Summary string }

	Cancel struct{}
)

func (Advance) eventName() string         { return "advance" }
func (Retreat) eventName() string         { return "retreat" }
func (Jump) eventName() string            { return "jump" }
func (EditAnswer) eventName() string      { return "edit_answer" }
func (ToggleExpand) eventName() string    { return "toggle_expand" }
func (SetNotice) eventName() string       { return "set_notice" }
func (SetConsent) eventName() string      { return "set_consent" }
func (UpdateBasicInfo) eventName() string { return "update_basic_info" }
func (Focus) eventName() string           { return "focus" }
func (FocusNext) eventName() string       { return "focus_next" }
func (FocusPrev) eventName() string       { return "focus_prev" }
func (AttachResume) eventName() string    { return "attach_resume" }
func (RemoveResume) eventName() string    { return "remove_resume" }
func (SetSummary) eventName() string      { return "set_summary" }
func (Cancel) eventName() string          { return "cancel" }

// Name はログ出力用のイベント名を返す。
func Name(e Event) string {
	if e == nil {
		return ""
	}
	return e.eventName()
}
