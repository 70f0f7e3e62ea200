package questionnaire

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultQuestionnaire(t *testing.T) {
	q, err := Default()
	require.NoError(t, err)

	require.Len(t, q.Stages, 4)
	assert.Equal(t, "basic", q.Stages[0].ID)
	assert.Equal(t, "notice", q.Stages[3].ID)

	sushi, ok := q.Section("career-sushi")
	require.True(t, ok)
	assert.Equal(t, domain.ConditionSushiExperienced, sushi.Condition)

	rules, ok := q.Section("work-rules")
	require.True(t, ok)
	assert.True(t, rules.RequiresConsent)
	assert.Len(t, rules.Notices, 3)

	question, ok := q.Question("basic-motivation")
	require.True(t, ok)
	assert.NotEmpty(t, question.Checkpoints)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
stages:
  - id: only
    title: 단일
    sections:
      - id: s1
        condition: "hasSushiExperience === false"
        questions:
          - id: q1
            text: 질문
`), 0o600))

	q, err := Load(path)
	require.NoError(t, err)
	require.Len(t, q.Stages, 1)
	assert.Equal(t, domain.ConditionSushiInexperienced, q.Stages[0].Sections[0].Condition)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseRejectsInvalidDefinitions(t *testing.T) {
	cases := map[string]string{
		"no stages": `stages: []`,
		"unknown condition": `
stages:
  - id: a
    sections:
      - id: s
        condition: hasCar
        questions: [{id: q, text: t}]`,
		"duplicate question": `
stages:
  - id: a
    sections:
      - id: s1
        questions: [{id: q, text: t}]
      - id: s2
        questions: [{id: q, text: t}]`,
		"consent without notices": `
stages:
  - id: a
    sections:
      - id: s
        requires_consent: true
        questions: [{id: q, text: t}]`,
		"unknown field": `
stages:
  - id: a
    colour: red
    sections:
      - id: s
        questions: [{id: q, text: t}]`,
	}
	for name, body := range cases {
		_, err := Parse(strings.NewReader(body))
		assert.Error(t, err, name)
	}
}
