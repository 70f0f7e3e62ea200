package mongo

import (
	"time"
)

// InterviewRecordDocument は MongoDB 上での面接記録スキーマ。フィールド名はスネークケース。
type InterviewRecordDocument struct {
	ID               string                             `bson:"_id"`
	OwnerID          string                             `bson:"owner_id"`
	BasicInfo        BasicInfoDocument                  `bson:"basic_info"`
	Answers          map[string]string                  `bson:"answers,omitempty"`
	Acknowledgements map[string]AcknowledgementDocument `bson:"acknowledgements,omitempty"`
	Resume           *ResumeDocument                    `bson:"resume,omitempty"`
	AISummary        string                             `bson:"ai_summary,omitempty"`
	CreatedAt        time.Time                          `bson:"created_at"`
	UpdatedAt        time.Time                          `bson:"updated_at"`
}

// BasicInfoDocument は基本情報の埋め込みドキュメント。
type BasicInfoDocument struct {
	CandidateName      string `bson:"candidate_name"`
	Position           string `bson:"position,omitempty"`
	Store              string `bson:"store,omitempty"`
	InterviewDate      string `bson:"interview_date,omitempty"`
	InterviewerName    string `bson:"interviewer_name,omitempty"`
	InterviewType      string `bson:"interview_type,omitempty"`
	VisaStatus         string `bson:"visa_status,omitempty"`
	VisaExpiry         string `bson:"visa_expiry,omitempty"`
	Contact            string `bson:"contact,omitempty"`
	HasSushiExperience bool   `bson:"has_sushi_experience"`
}

// AcknowledgementDocument はセクション単位の告知確認と同意。
type AcknowledgementDocument struct {
	Consent bool   `bson:"consent"`
	Notices []bool `bson:"notices,omitempty"`
}

// ResumeDocument は履歴書を data URL のままインラインで保持する。
type ResumeDocument struct {
	FileName string `bson:"file_name"`
	DataURL  string `bson:"data_url"`
}

// FailedNotificationDocument は送信に失敗した通知を後から再送するための記録。
type FailedNotificationDocument struct {
	Target      string            `bson:"target"`
	Payload     map[string]string `bson:"payload"`
	Error       string            `bson:"error"`
	Attempts    int               `bson:"attempts"`
	Status      string            `bson:"status"`
	CreatedAt   time.Time         `bson:"created_at"`
	LastTriedAt time.Time         `bson:"last_tried_at"`
}
