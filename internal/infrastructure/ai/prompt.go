// Package ai は面接回答の要約を外部の生成 AI に依頼するアダプタ群。
package ai

import (
	"fmt"
	"strings"

	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
)

const systemInstruction = `당신은 스시 레스토랑 채용 담당자를 돕는 면접 분석가입니다.
면접 답변만을 근거로 평가하고, 추측은 하지 마세요.
결과는 다음 마크다운 형식으로 한국어로 작성하세요.

## 종합 의견
(2~3문장)

---

## 강점
- 항목

## 우려 사항
- 항목

## 추가 확인 질문
- 항목`

// BuildPrompt は候補者情報と回答済みの質問から要約依頼文を組み立てる。
func BuildPrompt(candidate domain.CandidateContext) string {
	var builder strings.Builder
	builder.WriteString("# 지원자 정보\n")
	builder.WriteString(fmt.Sprintf("- 이름: %s\n", fallback(candidate.Name)))
	builder.WriteString(fmt.Sprintf("- 지원 포지션: %s\n\n", fallback(candidate.Position)))
	builder.WriteString("# 면접 답변\n")
	for i, item := range candidate.Items {
		builder.WriteString(fmt.Sprintf("\n## %d. %s\n", i+1, item.Question))
		if len(item.Checkpoints) > 0 {
			builder.WriteString(fmt.Sprintf("확인 포인트: %s\n", strings.Join(item.Checkpoints, ", ")))
		}
		builder.WriteString(fmt.Sprintf("답변: %s\n", item.Answer))
	}
	return builder.String()
}

func fallback(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(미입력)"
	}
	return value
}
