package domain

import (
	"strconv"
	"strings"
)

const (
	legacyNoticePrefix  = "notice-"
	legacyConsentPrefix = "consent-"
)

// SectionAcknowledgement はセクション単位の告知確認と同意の状態。
type SectionAcknowledgement struct {
	Consent bool
	Notices []bool
}

// Acknowledgements maps section id to its notice/consent state.
type Acknowledgements map[string]SectionAcknowledgement

// Clone は Notices スライスまで含めた複製を返す。
func (a Acknowledgements) Clone() Acknowledgements {
	out := make(Acknowledgements, len(a))
	for id, ack := range a {
		out[id] = SectionAcknowledgement{
			Consent: ack.Consent,
			Notices: append([]bool(nil), ack.Notices...),
		}
	}
	return out
}

// Section は sectionID の状態を noticeCount 件の告知に揃えて返す。未登録なら全て false。
// 同意済みなら保存値が欠けていても全告知を true とする。
func (a Acknowledgements) Section(sectionID string, noticeCount int) SectionAcknowledgement {
	ack := a[sectionID]
	notices := make([]bool, noticeCount)
	copy(notices, ack.Notices)
	if ack.Consent {
		for i := range notices {
			notices[i] = true
		}
	}
	return SectionAcknowledgement{Consent: ack.Consent, Notices: notices}
}

// Normalize は告知を持つ各セクションの状態を現在の面接票の告知数に揃える。
func (a Acknowledgements) Normalize(q *Questionnaire) {
	for _, stage := range q.Stages {
		for _, section := range stage.Sections {
			if _, ok := a[section.ID]; !ok || len(section.Notices) == 0 {
				continue
			}
			a[section.ID] = a.Section(section.ID, len(section.Notices))
		}
	}
}

// SetNotice は告知 1 件のチェック状態を変更する。チェックを外すと同意も false になる。
func (a Acknowledgements) SetNotice(sectionID string, noticeCount, index int, checked bool) bool {
	if index < 0 || index >= noticeCount {
		return false
	}
	ack := a.Section(sectionID, noticeCount)
	ack.Notices[index] = checked
	if !checked {
		ack.Consent = false
	}
	a[sectionID] = ack
	return true
}

// SetConsent は同意を変更し、全告知を同じ値に揃える。
func (a Acknowledgements) SetConsent(sectionID string, noticeCount int, checked bool) {
	ack := a.Section(sectionID, noticeCount)
	ack.Consent = checked
	for i := range ack.Notices {
		ack.Notices[i] = checked
	}
	a[sectionID] = ack
}

// SplitLegacyAnswers separates answer-map entries that encode acknowledgements
// (notice-<section>-<n>, consent-<section>) from free-text answers.
func SplitLegacyAnswers(answers map[string]string) (map[string]string, Acknowledgements) {
	texts := make(map[string]string, len(answers))
	acks := make(Acknowledgements)
	for key, value := range answers {
		switch {
		case strings.HasPrefix(key, legacyConsentPrefix):
			sectionID := strings.TrimPrefix(key, legacyConsentPrefix)
			ack := acks[sectionID]
			ack.Consent = value == "true"
			acks[sectionID] = ack
		case strings.HasPrefix(key, legacyNoticePrefix):
			rest := strings.TrimPrefix(key, legacyNoticePrefix)
			pos := strings.LastIndex(rest, "-")
			if pos <= 0 {
				texts[key] = value
				continue
			}
			index, err := strconv.Atoi(rest[pos+1:])
			if err != nil || index < 0 {
				texts[key] = value
				continue
			}
			sectionID := rest[:pos]
			ack := acks[sectionID]
			for len(ack.Notices) <= index {
				ack.Notices = append(ack.Notices, false)
			}
			ack.Notices[index] = value == "true"
			acks[sectionID] = ack
		default:
			texts[key] = value
		}
	}
	return texts, acks
}
