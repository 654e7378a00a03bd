// Package export renders conversation reports and dispatches them by email.
// The report is self-contained HTML; turning it into a PDF is left to the
// caller's rendering tool.
package export

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"learncoach/internal/domain"
)

const defaultReportTitle = "학습 상담 보고서"

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"categoryText": categoryText,
	"priorityText": priorityText,
	"koreanTime":   koreanTime,
	"roleLabel":    roleLabel,
}).Parse(reportHTML))

type reportData struct {
	Title           string
	GeneratedAt     time.Time
	UserInput       domain.UserInput
	Messages        []domain.Message
	Recommendations []domain.Recommendation
}

// RenderReport builds the HTML consultation report for a stored conversation.
// An empty title falls back to the default Korean heading.
func RenderReport(rec *domain.ConversationRecord, title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		title = defaultReportTitle
	}
	var b strings.Builder
	err := reportTmpl.Execute(&b, reportData{
		Title:           title,
		GeneratedAt:     time.Now(),
		UserInput:       rec.UserInput,
		Messages:        rec.Messages,
		Recommendations: rec.Recommendations,
	})
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return b.String(), nil
}

func categoryText(c domain.RecommendationCategory) string {
	switch c {
	case domain.CategoryResource:
		return "학습 자료"
	case domain.CategoryActivity:
		return "학습 활동"
	case domain.CategoryStrategy:
		return "학습 전략"
	}
	return "기타"
}

func priorityText(p domain.RecommendationPriority) string {
	switch p {
	case domain.PriorityHigh:
		return "높음"
	case domain.PriorityMedium:
		return "중간"
	case domain.PriorityLow:
		return "낮음"
	}
	return "보통"
}

func koreanTime(t time.Time) string {
	return t.Format("2006년 1월 2일 15:04")
}

func roleLabel(r domain.MessageRole) string {
	if r == domain.RoleUser {
		return "👤 사용자"
	}
	return "🤖 AI 학습 코치"
}

const reportHTML = `<!DOCTYPE html>
<html lang="ko">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', 'Malgun Gothic', sans-serif;
            line-height: 1.6;
            color: #333;
            background: #fff;
        }
        .header {
            text-align: center;
            margin-bottom: 40px;
            padding: 30px 0;
            border-bottom: 3px solid #2563eb;
        }
        .header h1 { font-size: 28px; color: #1e40af; margin-bottom: 10px; }
        .header .date { color: #6b7280; font-size: 14px; }
        .section { margin-bottom: 40px; page-break-inside: avoid; }
        .section-title {
            font-size: 20px;
            font-weight: bold;
            color: #1f2937;
            margin-bottom: 20px;
            padding-bottom: 8px;
            border-bottom: 2px solid #e5e7eb;
        }
        .user-info { background: #f8fafc; padding: 20px; border-radius: 8px; }
        .info-item { margin-bottom: 15px; }
        .info-label { font-weight: bold; color: #374151; display: inline-block; width: 100px; }
        .info-content { color: #6b7280; }
        .interests { display: flex; flex-wrap: wrap; gap: 8px; margin-top: 5px; }
        .interest-tag {
            background: #dbeafe;
            color: #1e40af;
            padding: 4px 12px;
            border-radius: 12px;
            font-size: 12px;
        }
        .message { margin-bottom: 20px; padding: 15px; border-radius: 8px; page-break-inside: avoid; }
        .message.user { background: #eff6ff; border-left: 4px solid #2563eb; }
        .message.ai { background: #f9fafb; border-left: 4px solid #10b981; }
        .message-header { font-weight: bold; margin-bottom: 8px; font-size: 14px; }
        .message.user .message-header { color: #1e40af; }
        .message.ai .message-header { color: #059669; }
        .message-content { white-space: pre-line; line-height: 1.8; }
        .message-time { font-size: 12px; color: #9ca3af; margin-top: 8px; }
        .recommendation-card {
            border: 1px solid #e5e7eb;
            border-radius: 8px;
            padding: 20px;
            margin-bottom: 20px;
            page-break-inside: avoid;
        }
        .recommendation-category { font-size: 12px; font-weight: bold; color: #6b7280; text-transform: uppercase; }
        .recommendation-priority { font-size: 12px; padding: 4px 8px; border-radius: 12px; }
        .priority-high { background: #fee2e2; color: #dc2626; }
        .priority-medium { background: #fef3c7; color: #d97706; }
        .priority-low { background: #dcfce7; color: #16a34a; }
        .recommendation-title { font-size: 16px; font-weight: bold; color: #1f2937; margin: 10px 0; }
        .recommendation-description { color: #6b7280; line-height: 1.6; }
        .footer {
            margin-top: 50px;
            padding-top: 20px;
            border-top: 1px solid #e5e7eb;
            text-align: center;
            color: #9ca3af;
            font-size: 12px;
        }
        @media print {
            body { print-color-adjust: exact; -webkit-print-color-adjust: exact; }
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>🤖 {{.Title}}</h1>
        <div class="date">생성일: {{koreanTime .GeneratedAt}}</div>
    </div>

    <div class="section">
        <h2 class="section-title">📋 상담 정보</h2>
        <div class="user-info">
            <div class="info-item">
                <span class="info-label">학습 목표:</span>
                <div class="info-content">{{.UserInput.LearningGoal}}</div>
            </div>
            <div class="info-item">
                <span class="info-label">관심 분야:</span>
                <div class="interests">
                    {{range .UserInput.Interests}}<span class="interest-tag">{{.}}</span>{{end}}
                </div>
            </div>
            <div class="info-item">
                <span class="info-label">현재 고민:</span>
                <div class="info-content">{{.UserInput.CurrentConcerns}}</div>
            </div>
            {{if .UserInput.LearningLevel}}
            <div class="info-item">
                <span class="info-label">학습 수준:</span>
                <div class="info-content">{{.UserInput.LearningLevel}}</div>
            </div>
            {{end}}
            {{if .UserInput.TimeAvailable}}
            <div class="info-item">
                <span class="info-label">가용 시간:</span>
                <div class="info-content">{{.UserInput.TimeAvailable}}</div>
            </div>
            {{end}}
        </div>
    </div>

    <div class="section">
        <h2 class="section-title">💬 상담 대화</h2>
        {{range .Messages}}
        <div class="message {{.Role}}">
            <div class="message-header">{{roleLabel .Role}}</div>
            <div class="message-content">{{.Content}}</div>
            <div class="message-time">{{koreanTime .Timestamp}}</div>
        </div>
        {{end}}
    </div>

    {{if .Recommendations}}
    <div class="section">
        <h2 class="section-title">💡 맞춤 추천사항</h2>
        {{range .Recommendations}}
        <div class="recommendation-card">
            <div class="recommendation-category">{{categoryText .Category}}</div>
            <div class="recommendation-priority priority-{{.Priority}}">우선순위: {{priorityText .Priority}}</div>
            <div class="recommendation-title">{{.Title}}</div>
            <div class="recommendation-description">{{.Description}}</div>
        </div>
        {{end}}
    </div>
    {{end}}

    <div class="footer">
        <p>AI 학습 코치 - 개인 맞춤형 학습 지원 서비스</p>
        <p>본 보고서는 AI가 생성한 개인화된 학습 조언으로, 참고용으로 활용해 주세요.</p>
    </div>
</body>
</html>
`
