package mongo

import (
	"testing"
	"time"

	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func sampleRecord() domain.InterviewRecord {
	created := time.Date(2026, 10, 1, 3, 0, 0, 0, time.UTC)
	return domain.InterviewRecord{
		ID:      "rec-1",
		OwnerID: "manager-1",
		BasicInfo: domain.BasicInfo{
			CandidateName:      " 김민수 ",
			Position:           "홀 매니저",
			Store:              "강남점",
			InterviewDate:      "2026-10-01",
			InterviewerName:    "박점장",
			InterviewType:      domain.InterviewTypeDepth,
			VisaStatus:         "F-4",
			HasSushiExperience: true,
		},
		Answers: map[string]string{"q1": "주말 가능"},
		Acknowledgements: domain.Acknowledgements{
			"rules": {Consent: true, Notices: []bool{true, true}},
		},
		Resume:    &domain.Resume{FileName: "cv.pdf", DataURL: "data:application/pdf;base64,AA=="},
		AISummary: "## 요약",
		CreatedAt: created,
		UpdatedAt: created.Add(time.Hour),
	}
}

func TestDocumentUsesSnakeCaseFields(t *testing.T) {
	record := sampleRecord()
	raw, err := bson.Marshal(mapRecordToDocument(&record))
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	for _, key := range []string{"_id", "owner_id", "basic_info", "answers", "acknowledgements", "resume", "ai_summary", "created_at", "updated_at"} {
		assert.Contains(t, doc, key)
	}
	info, ok := doc["basic_info"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, "김민수", info["candidate_name"])
	assert.Equal(t, "DEPTH", info["interview_type"])
	assert.Equal(t, true, info["has_sushi_experience"])
}

func TestRecordDocumentRoundTrip(t *testing.T) {
	record := sampleRecord()
	got := mapRecordDocument(mapRecordToDocument(&record))

	assert.Equal(t, "김민수", got.BasicInfo.CandidateName)
	record.BasicInfo.CandidateName = "김민수"
	assert.Equal(t, record, got)
}

func TestMapRecordDocumentMigratesLegacyFlags(t *testing.T) {
	doc := InterviewRecordDocument{
		ID: "legacy",
		BasicInfo: BasicInfoDocument{
			CandidateName: "이서연",
			InterviewType: "unknown",
		},
		Answers: map[string]string{
			"q1":              "야간 어려움",
			"notice-rules-0":  "true",
			"notice-rules-2":  "false",
			"consent-rules":   "false",
			"consent-visa":    "true",
			"notice-broken-x": "true",
		},
	}
	record := mapRecordDocument(doc)

	assert.Equal(t, domain.InterviewTypeStandard, record.BasicInfo.InterviewType)
	assert.Equal(t, map[string]string{"q1": "야간 어려움", "notice-broken-x": "true"}, record.Answers)
	assert.Equal(t, domain.SectionAcknowledgement{Consent: false, Notices: []bool{true, false, false}}, record.Acknowledgements["rules"])
	assert.True(t, record.Acknowledgements["visa"].Consent)
}

func TestBuildRecordUpdate(t *testing.T) {
	record := sampleRecord()
	update := buildRecordUpdate(&record)

	set, ok := update["$set"].(bson.M)
	require.True(t, ok)
	assert.NotContains(t, set, "created_at")
	assert.NotContains(t, set, "owner_id")
	assert.Contains(t, set, "resume")
	assert.NotContains(t, update, "$unset")

	onInsert, ok := update["$setOnInsert"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, "manager-1", onInsert["owner_id"])
	assert.Equal(t, record.CreatedAt, onInsert["created_at"])

	record.Resume = nil
	update = buildRecordUpdate(&record)
	assert.Equal(t, bson.M{"resume": ""}, update["$unset"])
	assert.NotContains(t, update["$set"].(bson.M), "resume")
}
