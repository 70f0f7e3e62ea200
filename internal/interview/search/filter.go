// Package search は面接記録一覧の検索を担う。入出力を持たない純粋関数のみを置く。
package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
	"golang.org/x/text/unicode/norm"
)

// Tokenize はクエリを NFC 正規化・小文字化して空白で分割する。
func Tokenize(query string) []string {
	return strings.Fields(fold(query))
}

func fold(value string) string {
	return strings.ToLower(norm.NFC.String(value))
}

// Filter returns the records matching every token of query, preserving input order.
// An empty or whitespace-only query returns records unfiltered.
func Filter(records []domain.InterviewRecord, query string) []domain.InterviewRecord {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return records
	}
	result := make([]domain.InterviewRecord, 0, len(records))
	for _, record := range records {
		if matchesAll(record, tokens) {
			result = append(result, record)
		}
	}
	return result
}

func matchesAll(record domain.InterviewRecord, tokens []string) bool {
	initial := Initial(record.BasicInfo.CandidateName)
	for _, token := range tokens {
		if !matchesToken(record, initial, token) {
			return false
		}
	}
	return true
}

func matchesToken(record domain.InterviewRecord, initial, token string) bool {
	if matchesInitial(token, initial) {
		return true
	}
	info := record.BasicInfo
	for _, field := range []string{info.CandidateName, info.Position, info.Store} {
		if strings.Contains(fold(field), token) {
			return true
		}
	}
	if strings.Contains(info.InterviewDate, token) {
		return true
	}
	for _, answer := range record.Answers {
		if strings.Contains(fold(answer), token) {
			return true
		}
	}
	return false
}

// InitialCount は頭文字ごとの件数。
type InitialCount struct {
	Initial string
	Count   int
}

// GroupByInitial counts records per name initial. Hangul initials come first in
// table order, then Latin letters, then InitialOther.
func GroupByInitial(records []domain.InterviewRecord) []InitialCount {
	counts := make(map[string]int)
	for _, record := range records {
		counts[Initial(record.BasicInfo.CandidateName)]++
	}
	result := make([]InitialCount, 0, len(counts))
	for initial, count := range counts {
		result = append(result, InitialCount{Initial: initial, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		ri, rj := initialRank(result[i].Initial), initialRank(result[j].Initial)
		if ri != rj {
			return ri < rj
		}
		return result[i].Initial < result[j].Initial
	})
	return result
}

func initialRank(initial string) int {
	if initial == InitialOther {
		return 2
	}
	r, _ := utf8.DecodeRuneInString(initial)
	if r >= 'ㄱ' && r <= 'ㅎ' {
		return 0
	}
	return 1
}
