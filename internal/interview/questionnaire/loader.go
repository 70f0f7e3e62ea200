// Package questionnaire は YAML で定義された面接票を読み込み、ドメインの Questionnaire に変換する。
package questionnaire

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultDefinition []byte

type file struct {
	Stages []stageDefinition `yaml:"stages"`
}

type stageDefinition struct {
	ID       string              `yaml:"id"`
	Title    string              `yaml:"title"`
	Sections []sectionDefinition `yaml:"sections"`
}

type sectionDefinition struct {
	ID              string               `yaml:"id"`
	Title           string               `yaml:"title"`
	Condition       string               `yaml:"condition"`
	Questions       []questionDefinition `yaml:"questions"`
	Notices         []string             `yaml:"notices"`
	RequiresConsent bool                 `yaml:"requires_consent"`
}

type questionDefinition struct {
	ID          string   `yaml:"id"`
	Text        string   `yaml:"text"`
	Checkpoints []string `yaml:"checkpoints"`
}

// Default は埋め込みの標準面接票を返す。
func Default() (*domain.Questionnaire, error) {
	return Parse(bytes.NewReader(defaultDefinition))
}

// Load は path が空なら標準面接票、そうでなければファイルから読み込む。
func Load(path string) (*domain.Questionnaire, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open questionnaire %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes and validates a questionnaire definition.
func Parse(r io.Reader) (*domain.Questionnaire, error) {
	var def file
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&def); err != nil {
		return nil, fmt.Errorf("parse questionnaire: %w", err)
	}
	q, err := def.toDomain()
	if err != nil {
		return nil, fmt.Errorf("invalid questionnaire: %w", err)
	}
	return q, nil
}

func (f file) toDomain() (*domain.Questionnaire, error) {
	if len(f.Stages) == 0 {
		return nil, fmt.Errorf("at least one stage is required")
	}

	stageIDs := make(map[string]struct{})
	sectionIDs := make(map[string]struct{})
	questionIDs := make(map[string]struct{})

	q := &domain.Questionnaire{Stages: make([]domain.Stage, 0, len(f.Stages))}
	for i, s := range f.Stages {
		if err := claimID(stageIDs, s.ID, "stage"); err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		stage := domain.Stage{ID: s.ID, Title: s.Title, Sections: make([]domain.Section, 0, len(s.Sections))}
		for j, sec := range s.Sections {
			if err := claimID(sectionIDs, sec.ID, "section"); err != nil {
				return nil, fmt.Errorf("stage %s section %d: %w", s.ID, j, err)
			}
			condition, err := domain.ParseCondition(strings.TrimSpace(sec.Condition))
			if err != nil {
				return nil, fmt.Errorf("section %s: %w", sec.ID, err)
			}
			if sec.RequiresConsent && len(sec.Notices) == 0 {
				return nil, fmt.Errorf("section %s requires consent but has no notices", sec.ID)
			}
			if len(sec.Questions) == 0 && len(sec.Notices) == 0 {
				return nil, fmt.Errorf("section %s has neither questions nor notices", sec.ID)
			}
			section := domain.Section{
				ID:              sec.ID,
				Title:           sec.Title,
				Condition:       condition,
				Notices:         append([]string(nil), sec.Notices...),
				RequiresConsent: sec.RequiresConsent,
				Questions:       make([]domain.Question, 0, len(sec.Questions)),
			}
			for k, qd := range sec.Questions {
				if err := claimID(questionIDs, qd.ID, "question"); err != nil {
					return nil, fmt.Errorf("section %s question %d: %w", sec.ID, k, err)
				}
				if strings.TrimSpace(qd.Text) == "" {
					return nil, fmt.Errorf("question %s has no text", qd.ID)
				}
				section.Questions = append(section.Questions, domain.Question{
					ID:          qd.ID,
					Text:        qd.Text,
					Checkpoints: append([]string(nil), qd.Checkpoints...),
				})
			}
			stage.Sections = append(stage.Sections, section)
		}
		q.Stages = append(q.Stages, stage)
	}
	return q, nil
}

func claimID(seen map[string]struct{}, id, kind string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%s id is required", kind)
	}
	if _, ok := seen[id]; ok {
		return fmt.Errorf("duplicate %s id %q", kind, id)
	}
	seen[id] = struct{}{}
	return nil
}
