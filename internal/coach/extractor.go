package coach

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"learncoach/internal/domain"
)

const (
	minRecommendations = 3
	maxRecommendations = 5
	titleRuneLimit     = 50
	titleMinRunes      = 10
)

// recommendationTriggers are the substrings that mark a line of coach output
// as a candidate recommendation.
var recommendationTriggers = []string{"추천", "제안", "활용"}

// defaultRecommendations pad the result when the coach text yields fewer than
// the minimum. They are appended in this order.
var defaultRecommendations = []domain.Recommendation{
	{
		ID:          "rec-default-1",
		Title:       "매일 30분 꾸준한 학습",
		Description: "매일 일정한 시간에 30분씩 학습하는 습관을 만들어보세요.",
		Category:    domain.CategoryStrategy,
		Priority:    domain.PriorityHigh,
	},
	{
		ID:          "rec-default-2",
		Title:       "학습 일지 작성",
		Description: "배운 내용과 어려웠던 점을 기록하여 성장을 추적해보세요.",
		Category:    domain.CategoryActivity,
		Priority:    domain.PriorityMedium,
	},
	{
		ID:          "rec-default-3",
		Title:       "온라인 커뮤니티 참여",
		Description: "같은 분야를 학습하는 사람들과 정보를 공유하고 동기부여를 받아보세요.",
		Category:    domain.CategoryResource,
		Priority:    domain.PriorityMedium,
	},
}

// RandSource supplies values in [0, 1). Injectable so tests get deterministic
// category and priority assignment.
type RandSource func() float64

// Extractor derives structured recommendations from free-form coach text
// using line-level keyword heuristics.
type Extractor struct {
	rand RandSource
}

// NewExtractor creates an extractor using the default random source.
func NewExtractor() *Extractor {
	return &Extractor{rand: rand.Float64}
}

// NewExtractorWithRand creates an extractor with a caller-supplied random
// source.
func NewExtractorWithRand(src RandSource) *Extractor {
	if src == nil {
		src = rand.Float64
	}
	return &Extractor{rand: src}
}

// Extract scans the coach response line by line and returns between 3 and 5
// recommendations. Lines mentioning a trigger keyword whose leading text is
// long enough become recommendations; defaults fill any shortfall.
func (e *Extractor) Extract(response string) []domain.Recommendation {
	var recs []domain.Recommendation
	counter := 1

	for _, line := range strings.Split(response, "\n") {
		if !containsTrigger(line) {
			continue
		}
		title := strings.TrimSpace(truncateLine(line, titleRuneLimit))
		if len([]rune(title)) <= titleMinRunes {
			continue
		}
		recs = append(recs, domain.Recommendation{
			ID:          fmt.Sprintf("rec-%d", counter),
			Title:       strings.TrimSpace(stripBullets(title)),
			Description: strings.TrimSpace(line),
			Category:    e.drawCategory(),
			Priority:    e.drawPriority(),
		})
		counter++
	}

	if len(recs) < minRecommendations {
		recs = append(recs, defaultRecommendations...)
	}
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

func (e *Extractor) drawCategory() domain.RecommendationCategory {
	if e.rand() > 0.6 {
		return domain.CategoryResource
	}
	if e.rand() > 0.5 {
		return domain.CategoryActivity
	}
	return domain.CategoryStrategy
}

func (e *Extractor) drawPriority() domain.RecommendationPriority {
	if e.rand() > 0.7 {
		return domain.PriorityHigh
	}
	if e.rand() > 0.5 {
		return domain.PriorityMedium
	}
	return domain.PriorityLow
}

func containsTrigger(line string) bool {
	for _, t := range recommendationTriggers {
		if strings.Contains(line, t) {
			return true
		}
	}
	return false
}

func truncateLine(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

func stripBullets(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '•', '-', '*':
			return -1
		}
		return r
	}, s)
}
