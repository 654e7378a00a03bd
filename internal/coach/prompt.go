package coach

import (
	"strings"

	"learncoach/internal/domain"
)

// systemPrompt frames the model as a Korean-language learning coach.
const systemPrompt = `당신은 전문적인 AI 학습 코치입니다. 사용자의 학습 목표, 관심 분야, 현재 고민을 바탕으로 맞춤형 학습 조언을 제공해주세요.

응답 형식:
1. 먼저 사용자의 상황에 대한 공감과 격려를 표현해주세요.
2. 구체적이고 실행 가능한 학습 계획을 제시해주세요.
3. 단계별 학습 방법을 제안해주세요.
4. 추천 자료나 활동을 제시해주세요.

응답은 따뜻하고 격려하는 톤으로 작성하되, 구체적이고 실용적인 조언을 포함해주세요.
한국어로 답변해주세요.`

// buildUserPrompt renders the learner profile and prior turns into a single
// prompt string for the model.
func buildUserPrompt(input domain.UserInput, history []domain.Message) string {
	var b strings.Builder

	b.WriteString("사용자 정보:\n")
	b.WriteString("- 학습 목표: " + input.LearningGoal + "\n")
	b.WriteString("- 관심 분야: " + strings.Join(input.Interests, ", ") + "\n")
	b.WriteString("- 현재 고민: " + input.CurrentConcerns + "\n")
	if input.LearningLevel != "" {
		b.WriteString("- 학습 수준: " + input.LearningLevel + "\n")
	}
	if input.TimeAvailable != "" {
		b.WriteString("- 가용 시간: " + input.TimeAvailable + "\n")
	}
	b.WriteString("\n이 정보를 바탕으로 개인화된 학습 조언을 해주세요.")

	if len(history) > 0 {
		b.WriteString("\n\n이전 대화 내용:\n")
		for _, msg := range history {
			speaker := "AI 코치"
			if msg.Role == domain.RoleUser {
				speaker = "사용자"
			}
			b.WriteString(speaker + ": " + msg.Content + "\n")
		}
		b.WriteString("\n이전 대화를 참고하여 추가 조언을 해주세요.")
	}

	return b.String()
}
