package records

import (
	"fmt"

	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
	"github.com/sngm3741/interview-desk/api/internal/interview/form"
)

// eventRequest は POST /sessions/{sid}/events の本文。type 以外は種類ごとに使う項目だけを読む。
type eventRequest struct {
	Type       string            `json:"type"`
	StageID    string            `json:"stageId,omitempty"`
	QuestionID string            `json:"questionId,omitempty"`
	SectionID  string            `json:"sectionId,omitempty"`
	Text       string            `json:"text,omitempty"`
	Index      *int              `json:"index,omitempty"`
	Checked    bool              `json:"checked,omitempty"`
	BasicInfo  *basicInfoPayload `json:"basicInfo,omitempty"`
}

// toEvent converts the request into a reducer event. Resume attachment and
// AI summaries have dedicated endpoints and are not accepted here.
func (req eventRequest) toEvent() (form.Event, error) {
	switch req.Type {
	case "advance":
		return form.Advance{}, nil
	case "retreat":
		return form.Retreat{}, nil
	case "jump":
		return form.Jump{StageID: req.StageID}, nil
	case "edit_answer":
		return form.EditAnswer{QuestionID: req.QuestionID, Text: req.Text}, nil
	case "toggle_expand":
		return form.ToggleExpand{QuestionID: req.QuestionID}, nil
	case "set_notice":
		if req.Index == nil {
			return nil, &domain.ValidationError{Field: "index", Message: "확인 항목 번호가 필요합니다."}
		}
		return form.SetNotice{SectionID: req.SectionID, Index: *req.Index, Checked: req.Checked}, nil
	case "set_consent":
		return form.SetConsent{SectionID: req.SectionID, Checked: req.Checked}, nil
	case "update_basic_info":
		if req.BasicInfo == nil {
			return nil, &domain.ValidationError{Field: "basicInfo", Message: "기본 정보가 필요합니다."}
		}
		info, err := req.BasicInfo.toDomain()
		if err != nil {
			return nil, err
		}
		return form.UpdateBasicInfo{Info: info}, nil
	case "focus":
		return form.Focus{QuestionID: req.QuestionID}, nil
	case "focus_next":
		return form.FocusNext{}, nil
	case "focus_prev":
		return form.FocusPrev{}, nil
	case "remove_resume":
		return form.RemoveResume{}, nil
	case "cancel":
		return form.Cancel{}, nil
	}
	return nil, &domain.ValidationError{Field: "type", Message: fmt.Sprintf("지원하지 않는 이벤트입니다: %s", req.Type)}
}
