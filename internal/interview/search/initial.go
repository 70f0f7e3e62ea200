package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// InitialOther はハングルでもラテン文字でもない名前の頭文字グループ。
const InitialOther = "기타"

const (
	hangulSyllableFirst = 0xAC00
	hangulSyllableLast  = 0xD7A3
	// 中声 21 × 終声 28
	syllablesPerLead = 21 * 28
)

var leadingConsonants = []rune{
	'ㄱ', 'ㄲ', 'ㄴ', 'ㄷ', 'ㄸ', 'ㄹ', 'ㅁ', 'ㅂ', 'ㅃ', 'ㅅ',
	'ㅆ', 'ㅇ', 'ㅈ', 'ㅉ', 'ㅊ', 'ㅋ', 'ㅌ', 'ㅍ', 'ㅎ',
}

var tenseToPlain = map[rune]rune{
	'ㄲ': 'ㄱ',
	'ㄸ': 'ㄷ',
	'ㅃ': 'ㅂ',
	'ㅆ': 'ㅅ',
	'ㅉ': 'ㅈ',
}

// Initial は名前の先頭 1 文字から検索用の頭文字を求める。
// ハングル音節は初声 (濃音は平音に畳む)、ラテン文字は大文字、それ以外は InitialOther。
func Initial(name string) string {
	// 分解形 (NFD) で入力された名前も音節として扱う
	first, _ := utf8.DecodeRuneInString(norm.NFC.String(strings.TrimSpace(name)))
	switch {
	case first >= hangulSyllableFirst && first <= hangulSyllableLast:
		lead := leadingConsonants[(first-hangulSyllableFirst)/syllablesPerLead]
		return string(collapseTense(lead))
	case unicode.Is(unicode.Latin, first):
		return string(unicode.ToUpper(first))
	default:
		return InitialOther
	}
}

func collapseTense(r rune) rune {
	if plain, ok := tenseToPlain[r]; ok {
		return plain
	}
	return r
}

// matchesInitial compares a single-character token with the record initial.
// A tense jamo typed by the user is folded the same way as the initial.
func matchesInitial(token, initial string) bool {
	r, size := utf8.DecodeRuneInString(token)
	if size != len(token) || r == utf8.RuneError {
		return false
	}
	return strings.EqualFold(string(collapseTense(r)), initial)
}
