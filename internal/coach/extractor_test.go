package coach

import (
	"strings"
	"testing"

	"learncoach/internal/domain"
)

// seqRand returns the given values in order, then repeats the last one.
func seqRand(vals ...float64) RandSource {
	i := 0
	return func() float64 {
		v := vals[i]
		if i < len(vals)-1 {
			i++
		}
		return v
	}
}

func TestExtractEmptyResponseYieldsDefaults(t *testing.T) {
	e := NewExtractorWithRand(seqRand(0.0))
	recs := e.Extract("")
	if len(recs) != 3 {
		t.Fatalf("expected 3 default recommendations, got %d", len(recs))
	}
	wantIDs := []string{"rec-default-1", "rec-default-2", "rec-default-3"}
	for i, id := range wantIDs {
		if recs[i].ID != id {
			t.Fatalf("recs[%d].ID = %q, want %q", i, recs[i].ID, id)
		}
	}
	if recs[0].Title != "매일 30분 꾸준한 학습" {
		t.Errorf("unexpected default title: %q", recs[0].Title)
	}
	if recs[0].Category != domain.CategoryStrategy || recs[0].Priority != domain.PriorityHigh {
		t.Errorf("default 1 category/priority = %s/%s", recs[0].Category, recs[0].Priority)
	}
}

func TestExtractMatchingLines(t *testing.T) {
	e := NewExtractorWithRand(seqRand(0.9))
	response := strings.Join([]string{
		"안녕하세요! 학습 목표를 응원합니다.",
		"• 온라인 강의 플랫폼을 추천드립니다. 체계적으로 배울 수 있어요.",
		"매일 복습하는 습관을 제안합니다. 기억이 오래갑니다.",
		"짧은 줄 추천",
		"스터디 그룹을 활용해보세요. 함께하면 꾸준히 할 수 있습니다.",
	}, "\n")

	recs := e.Extract(response)
	if len(recs) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(recs))
	}
	if recs[0].ID != "rec-1" || recs[1].ID != "rec-2" || recs[2].ID != "rec-3" {
		t.Fatalf("unexpected ids: %s %s %s", recs[0].ID, recs[1].ID, recs[2].ID)
	}
	if strings.ContainsAny(recs[0].Title, "•-*") {
		t.Errorf("bullet characters not stripped from title: %q", recs[0].Title)
	}
	if !strings.HasPrefix(recs[0].Description, "• 온라인 강의") {
		t.Errorf("description should keep the raw line: %q", recs[0].Description)
	}
}

func TestExtractShortLinesSkipped(t *testing.T) {
	e := NewExtractorWithRand(seqRand(0.0))
	// Trigger word present but under the length threshold.
	recs := e.Extract("추천합니다")
	if len(recs) != 3 {
		t.Fatalf("expected defaults only, got %d recommendations", len(recs))
	}
	if recs[0].ID != "rec-default-1" {
		t.Fatalf("expected defaults, got %s", recs[0].ID)
	}
}

func TestExtractCapsAtFive(t *testing.T) {
	e := NewExtractorWithRand(seqRand(0.5))
	lines := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		lines = append(lines, "꾸준한 반복 학습을 추천드립니다. 매일 조금씩 진행해보세요.")
	}
	recs := e.Extract(strings.Join(lines, "\n"))
	if len(recs) != 5 {
		t.Fatalf("expected cap of 5, got %d", len(recs))
	}
	if recs[4].ID != "rec-5" {
		t.Fatalf("recs[4].ID = %q, want rec-5", recs[4].ID)
	}
}

func TestExtractFewerThanThreeGetsPadded(t *testing.T) {
	e := NewExtractorWithRand(seqRand(0.0))
	recs := e.Extract("스터디 그룹을 활용해서 함께 학습해보세요. 동기부여가 됩니다.")
	if len(recs) != 4 {
		t.Fatalf("expected 1 extracted + 3 defaults = 4, got %d", len(recs))
	}
	if recs[0].ID != "rec-1" {
		t.Fatalf("first should be extracted, got %s", recs[0].ID)
	}
	if recs[1].ID != "rec-default-1" {
		t.Fatalf("defaults should follow, got %s", recs[1].ID)
	}
}

func TestDrawCategoryBoundaries(t *testing.T) {
	cases := []struct {
		draws []float64
		want  domain.RecommendationCategory
	}{
		{[]float64{0.7}, domain.CategoryResource},
		{[]float64{0.6, 0.6}, domain.CategoryActivity},
		{[]float64{0.3, 0.4}, domain.CategoryStrategy},
	}
	for _, tc := range cases {
		e := NewExtractorWithRand(seqRand(tc.draws...))
		if got := e.drawCategory(); got != tc.want {
			t.Errorf("draws %v: category = %s, want %s", tc.draws, got, tc.want)
		}
	}
}

func TestDrawPriorityBoundaries(t *testing.T) {
	cases := []struct {
		draws []float64
		want  domain.RecommendationPriority
	}{
		{[]float64{0.8}, domain.PriorityHigh},
		{[]float64{0.7, 0.6}, domain.PriorityMedium},
		{[]float64{0.2, 0.3}, domain.PriorityLow},
	}
	for _, tc := range cases {
		e := NewExtractorWithRand(seqRand(tc.draws...))
		if got := e.drawPriority(); got != tc.want {
			t.Errorf("draws %v: priority = %s, want %s", tc.draws, got, tc.want)
		}
	}
}

func TestExtractTitleTruncatedToFiftyRunes(t *testing.T) {
	e := NewExtractorWithRand(seqRand(0.0))
	long := "온라인 강의를 추천합니다 " + strings.Repeat("가", 60)
	recs := e.Extract(long)
	if recs[0].ID != "rec-1" {
		t.Fatalf("expected extraction, got %s", recs[0].ID)
	}
	if n := len([]rune(recs[0].Title)); n > titleRuneLimit {
		t.Errorf("title length %d exceeds limit %d", n, titleRuneLimit)
	}
}
