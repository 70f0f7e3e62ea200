package records

import (
	"strings"
	"time"

	"github.com/sngm3741/interview-desk/api/internal/interview/application"
	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
	"github.com/sngm3741/interview-desk/api/internal/interview/form"
	"github.com/sngm3741/interview-desk/api/internal/interview/search"
)

type basicInfoPayload struct {
	CandidateName      string `json:"candidateName"`
	Position           string `json:"position"`
	Store              string `json:"store"`
	InterviewDate      string `json:"interviewDate"`
	InterviewerName    string `json:"interviewerName"`
	InterviewType      string `json:"interviewType"`
	VisaStatus         string `json:"visaStatus,omitempty"`
	VisaExpiry         string `json:"visaExpiry,omitempty"`
	Contact            string `json:"contact,omitempty"`
	HasSushiExperience bool   `json:"hasSushiExperience"`
}

// toDomain は入力を検証してドメインの BasicInfo に変換する。
func (p basicInfoPayload) toDomain() (domain.BasicInfo, error) {
	interviewType, err := domain.NewInterviewType(p.InterviewType)
	if err != nil {
		return domain.BasicInfo{}, &domain.ValidationError{Field: "interviewType", Message: "면접 유형이 올바르지 않습니다."}
	}
	if date := strings.TrimSpace(p.InterviewDate); date != "" {
		if _, err := time.Parse(domain.DateLayout, date); err != nil {
			return domain.BasicInfo{}, &domain.ValidationError{Field: "interviewDate", Message: "면접일은 YYYY-MM-DD 형식으로 입력해주세요."}
		}
	}
	return domain.BasicInfo{
		CandidateName:      p.CandidateName,
		Position:           p.Position,
		Store:              p.Store,
		InterviewDate:      strings.TrimSpace(p.InterviewDate),
		InterviewerName:    p.InterviewerName,
		InterviewType:      interviewType,
		VisaStatus:         p.VisaStatus,
		VisaExpiry:         p.VisaExpiry,
		Contact:            p.Contact,
		HasSushiExperience: p.HasSushiExperience,
	}, nil
}

func basicInfoToPayload(info domain.BasicInfo) basicInfoPayload {
	return basicInfoPayload{
		CandidateName:      info.CandidateName,
		Position:           info.Position,
		Store:              info.Store,
		InterviewDate:      info.InterviewDate,
		InterviewerName:    info.InterviewerName,
		InterviewType:      info.InterviewType.String(),
		VisaStatus:         info.VisaStatus,
		VisaExpiry:         info.VisaExpiry,
		Contact:            info.Contact,
		HasSushiExperience: info.HasSushiExperience,
	}
}

type acknowledgementPayload struct {
	Consent bool   `json:"consent"`
	Notices []bool `json:"notices"`
}

type resumePayload struct {
	FileName string `json:"fileName"`
	DataURL  string `json:"dataUrl"`
}

func resumeToPayload(resume *domain.Resume) *resumePayload {
	if resume == nil {
		return nil
	}
	return &resumePayload{FileName: resume.FileName, DataURL: resume.DataURL}
}

type recordResponse struct {
	ID               string                            `json:"id"`
	OwnerID          string                            `json:"ownerId"`
	BasicInfo        basicInfoPayload                  `json:"basicInfo"`
	Answers          map[string]string                 `json:"answers"`
	Acknowledgements map[string]acknowledgementPayload `json:"acknowledgements"`
	Resume           *resumePayload                    `json:"resume,omitempty"`
	AISummary        string                            `json:"aiSummary,omitempty"`
	AISummaryHTML    string                            `json:"aiSummaryHtml,omitempty"`
	CreatedAt        time.Time                         `json:"createdAt"`
	UpdatedAt        time.Time                         `json:"updatedAt"`
}

type recordListItem struct {
	ID            string           `json:"id"`
	BasicInfo     basicInfoPayload `json:"basicInfo"`
	Initial       string           `json:"initial"`
	AnsweredCount int              `json:"answeredCount"`
	HasResume     bool             `json:"hasResume"`
	HasSummary    bool             `json:"hasSummary"`
	CreatedAt     time.Time        `json:"createdAt"`
}

type initialCountResponse struct {
	Initial string `json:"initial"`
	Count   int    `json:"count"`
}

type recordListResponse struct {
	Items    []recordListItem       `json:"items"`
	Initials []initialCountResponse `json:"initials"`
	Total    int                    `json:"total"`
}

type meResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"isAdmin"`
}

type sessionStartRequest struct {
	RecordID string `json:"recordId"`
}

type sessionSaveRequest struct {
	Close bool `json:"close"`
}

type sessionResponse struct {
	SessionID     string           `json:"sessionId"`
	RecordID      string           `json:"recordId"`
	BasicInfo     basicInfoPayload `json:"basicInfo"`
	Resume        *resumePayload   `json:"resume,omitempty"`
	AISummary     string           `json:"aiSummary,omitempty"`
	AISummaryHTML string           `json:"aiSummaryHtml,omitempty"`
	View          form.View        `json:"view"`
	Message       string           `json:"message,omitempty"`
	Closed        bool             `json:"closed"`
}

func (h *Handler) recordToResponse(record domain.InterviewRecord) recordResponse {
	acks := make(map[string]acknowledgementPayload, len(record.Acknowledgements))
	for id, ack := range record.Acknowledgements {
		acks[id] = acknowledgementPayload{Consent: ack.Consent, Notices: append([]bool{}, ack.Notices...)}
	}
	answers := record.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	return recordResponse{
		ID:               record.ID,
		OwnerID:          record.OwnerID,
		BasicInfo:        basicInfoToPayload(record.BasicInfo),
		Answers:          answers,
		Acknowledgements: acks,
		Resume:           resumeToPayload(record.Resume),
		AISummary:        record.AISummary,
		AISummaryHTML:    h.renderSummary(record.AISummary),
		CreatedAt:        record.CreatedAt.In(h.location),
		UpdatedAt:        record.UpdatedAt.In(h.location),
	}
}

func (h *Handler) recordToListItem(record domain.InterviewRecord) recordListItem {
	answered := 0
	for _, answer := range record.Answers {
		if strings.TrimSpace(answer) != "" {
			answered++
		}
	}
	return recordListItem{
		ID:            record.ID,
		BasicInfo:     basicInfoToPayload(record.BasicInfo),
		Initial:       search.Initial(record.BasicInfo.CandidateName),
		AnsweredCount: answered,
		HasResume:     record.Resume != nil,
		HasSummary:    strings.TrimSpace(record.AISummary) != "",
		CreatedAt:     record.CreatedAt.In(h.location),
	}
}

func (h *Handler) snapshotToResponse(snapshot *application.SessionSnapshot) sessionResponse {
	state := snapshot.State
	return sessionResponse{
		SessionID:     snapshot.SessionID,
		RecordID:      state.RecordID,
		BasicInfo:     basicInfoToPayload(state.BasicInfo),
		Resume:        resumeToPayload(state.Resume),
		AISummary:     state.AISummary,
		AISummaryHTML: h.renderSummary(state.AISummary),
		View:          snapshot.View,
		Message:       snapshot.Message,
		Closed:        state.Closed,
	}
}
