package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcknowledgementsCascade(t *testing.T) {
	acks := Acknowledgements{}

	acks.SetConsent("rules", 3, true)
	assert.Equal(t, SectionAcknowledgement{Consent: true, Notices: []bool{true, true, true}}, acks["rules"])

	require.True(t, acks.SetNotice("rules", 3, 1, false))
	assert.False(t, acks["rules"].Consent)
	assert.Equal(t, []bool{true, false, true}, acks["rules"].Notices)

	require.True(t, acks.SetNotice("rules", 3, 1, true))
	assert.False(t, acks["rules"].Consent, "checking every notice does not imply consent")

	acks.SetConsent("rules", 3, false)
	assert.Equal(t, []bool{false, false, false}, acks["rules"].Notices)

	assert.False(t, acks.SetNotice("rules", 3, 3, true))
}

func TestAcknowledgementsCloneIsDeep(t *testing.T) {
	acks := Acknowledgements{"a": {Notices: []bool{false}}}
	clone := acks.Clone()
	clone.SetConsent("a", 1, true)

	assert.False(t, acks["a"].Notices[0])
	assert.True(t, clone["a"].Notices[0])
}

func TestSplitLegacyAnswers(t *testing.T) {
	answers := map[string]string{
		"q1":                  "성실합니다",
		"notice-work-rules-0": "true",
		"notice-work-rules-2": "true",
		"consent-work-rules":  "false",
		"notice-broken":       "true",
	}

	texts, acks := SplitLegacyAnswers(answers)

	assert.Equal(t, map[string]string{"q1": "성실합니다", "notice-broken": "true"}, texts)
	assert.Equal(t, SectionAcknowledgement{Consent: false, Notices: []bool{true, false, true}}, acks["work-rules"])
}

func TestLegacyConsentChecksEveryNotice(t *testing.T) {
	_, acks := SplitLegacyAnswers(map[string]string{
		"consent-rules":  "true",
		"notice-rules-0": "true",
	})

	ack := acks.Section("rules", 3)
	assert.True(t, ack.Consent)
	assert.Equal(t, []bool{true, true, true}, ack.Notices)

	q := &Questionnaire{Stages: []Stage{{ID: "notice", Sections: []Section{
		{ID: "rules", RequiresConsent: true, Notices: []string{"a", "b", "c"}},
		{ID: "visa", RequiresConsent: true, Notices: []string{"d", "e"}},
	}}}}
	acks["visa"] = SectionAcknowledgement{Notices: []bool{true, false, true}}
	acks.Normalize(q)

	assert.Equal(t, SectionAcknowledgement{Consent: true, Notices: []bool{true, true, true}}, acks["rules"])
	assert.Equal(t, SectionAcknowledgement{Notices: []bool{true, false}}, acks["visa"])
	_, added := acks["other"]
	assert.False(t, added)
}

func TestParseCondition(t *testing.T) {
	cases := map[string]Condition{
		"":                             ConditionAlways,
		"has_sushi_experience":         ConditionSushiExperienced,
		"hasSushiExperience === true":  ConditionSushiExperienced,
		"no_sushi_experience":          ConditionSushiInexperienced,
		"hasSushiExperience === false": ConditionSushiInexperienced,
	}
	for raw, want := range cases {
		got, err := ParseCondition(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseCondition("hasCarLicense === true")
	assert.Error(t, err)
}

func TestStageVisibleSections(t *testing.T) {
	stage := Stage{ID: "career", Sections: []Section{
		{ID: "common", Questions: []Question{{ID: "c1"}}},
		{ID: "experienced", Condition: ConditionSushiExperienced, Questions: []Question{{ID: "e1"}, {ID: "e2"}}},
		{ID: "newcomer", Condition: ConditionSushiInexperienced, Questions: []Question{{ID: "n1"}}},
	}}

	assert.Equal(t, []string{"c1", "n1"}, stage.VisibleQuestionIDs(BasicInfo{}))
	assert.Equal(t, []string{"c1", "e1", "e2"}, stage.VisibleQuestionIDs(BasicInfo{HasSushiExperience: true}))
}

func TestRecordValidate(t *testing.T) {
	record := &InterviewRecord{ID: "id-1", BasicInfo: DefaultBasicInfo(time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC))}
	assert.Equal(t, "2026-10-16", record.BasicInfo.InterviewDate)

	err := record.Validate()
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	record.BasicInfo.CandidateName = "김민수"
	assert.NoError(t, record.Validate())
}

func TestNewResumeRoundTrip(t *testing.T) {
	resume, err := NewResume("../cv.pdf", "application/pdf", []byte("%PDF-1.4 body"), 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "cv.pdf", resume.FileName)
	assert.Equal(t, "data:application/pdf;base64,JVBERi0xLjQgYm9keQ==", resume.DataURL)

	mime, content, err := resume.Decode()
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", mime)
	assert.Equal(t, "%PDF-1.4 body", string(content))

	_, err = NewResume("big.pdf", "application/pdf", make([]byte, 2<<20), 1<<20)
	assert.True(t, IsValidation(err))
}
