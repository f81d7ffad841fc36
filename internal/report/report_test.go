package report

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/pavelanni/mocktest/internal/model"
)

func summaryFixture() (model.TestData, []model.Answer) {
	test := model.TestData{
		Section: "Verbal Reasoning",
		Questions: []model.Question{
			{ID: 1, Type: model.TextCompletion, Blanks: 1, CorrectList: []string{"x"}},
			{ID: 2, Type: model.TextCompletion, Blanks: 1, CorrectList: []string{"y"}},
			{ID: 3, Type: model.ReadingComprehension, CorrectList: []string{"A"}},
			{ID: 4, Type: model.SentenceEquivalence, CorrectList: []string{"a", "b"}},
		},
	}
	answers := []model.Answer{
		{QuestionID: 1, Value: model.Value{Text: "x"}, Correct: true, TimeTaken: 30},
		{QuestionID: 2, Value: model.Value{Text: "z"}, Correct: false, TimeTaken: 50},
		{QuestionID: 3, Value: model.Value{Text: "A"}, Correct: true, TimeTaken: 40},
		{QuestionID: 4, Value: model.Value{}, Correct: false, TimeTaken: 0},
	}
	return test, answers
}

func TestSummarize(t *testing.T) {
	test, answers := summaryFixture()
	sum := Summarize(test, answers, 50)

	if sum.CorrectCount != 2 {
		t.Errorf("correctCount = %d, want 2", sum.CorrectCount)
	}
	if sum.TotalQuestions != 4 {
		t.Errorf("totalQuestions = %d, want 4", sum.TotalQuestions)
	}
	if sum.Accuracy != 50 {
		t.Errorf("accuracy = %v, want 50", sum.Accuracy)
	}
	if sum.TotalTime != 120 {
		t.Errorf("totalTime = %d, want 120", sum.TotalTime)
	}
	if sum.AverageTime != 30 {
		t.Errorf("averageTime = %v, want 30", sum.AverageTime)
	}

	// Only the three types present in the test appear, in canonical order.
	wantTypes := []model.QuestionType{
		model.SentenceEquivalence,
		model.TextCompletion,
		model.ReadingComprehension,
	}
	if len(sum.ByType) != 3 {
		t.Fatalf("byType has %d entries, want 3", len(sum.ByType))
	}
	for i, st := range sum.ByType {
		if st.Type != wantTypes[i] {
			t.Errorf("byType[%d] = %s, want %s", i, st.Type, wantTypes[i])
		}
	}

	if sum.StrongestType != model.ReadingComprehension {
		t.Errorf("strongest = %s, want %s", sum.StrongestType, model.ReadingComprehension)
	}
	if sum.WeakestType != model.SentenceEquivalence {
		t.Errorf("weakest = %s, want %s", sum.WeakestType, model.SentenceEquivalence)
	}

	if len(sum.Review) != 4 {
		t.Fatalf("review has %d entries, want 4", len(sum.Review))
	}
	if sum.Review[0].Question.ID != 1 || !sum.Review[0].Answer.Correct {
		t.Errorf("review[0] = %+v", sum.Review[0])
	}
}

func TestSummarizeTieBreaksByCanonicalOrder(t *testing.T) {
	test := model.TestData{
		Section: "Verbal Reasoning",
		Questions: []model.Question{
			// Reading Comprehension appears first in the test but later in
			// the canonical order than Text Completion.
			{ID: 1, Type: model.ReadingComprehension, CorrectList: []string{"A"}},
			{ID: 2, Type: model.TextCompletion, Blanks: 1, CorrectList: []string{"x"}},
		},
	}
	answers := []model.Answer{
		{QuestionID: 1, Correct: true},
		{QuestionID: 2, Correct: true},
	}
	sum := Summarize(test, answers, 100)

	// Both types are at 100%; the canonical order decides.
	if sum.StrongestType != model.TextCompletion {
		t.Errorf("strongest = %s, want %s", sum.StrongestType, model.TextCompletion)
	}
	if sum.WeakestType != model.TextCompletion {
		t.Errorf("weakest = %s, want %s", sum.WeakestType, model.TextCompletion)
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	test, answers := summaryFixture()
	first := Summarize(test, answers, 50)
	second := Summarize(test, answers, 50)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Summarize not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestAnalyze(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	entries := []model.HistoryEntry{
		{ID: "1", Date: base.Add(2 * time.Hour), Section: "Quantitative Reasoning", Score: 90},
		{ID: "2", Date: base.Add(time.Hour), Section: "Verbal Reasoning", Score: 70},
		{ID: "3", Date: base, Section: "Verbal Reasoning", Score: 50},
	}

	a := Analyze(entries)
	if a.TotalTests != 3 {
		t.Errorf("totalTests = %d, want 3", a.TotalTests)
	}
	if a.AverageScore != 70 {
		t.Errorf("averageScore = %v, want 70", a.AverageScore)
	}
	if a.Verbal.Count != 2 || a.Verbal.Average != 60 {
		t.Errorf("verbal = %+v, want count 2 average 60", a.Verbal)
	}
	if a.Quantitative.Count != 1 || a.Quantitative.Average != 90 {
		t.Errorf("quantitative = %+v, want count 1 average 90", a.Quantitative)
	}
	if !reflect.DeepEqual(a.RecentScores, []int{90, 70, 50}) {
		t.Errorf("recentScores = %v", a.RecentScores)
	}
}

func TestAnalyzeTypePerformance(t *testing.T) {
	entries := []model.HistoryEntry{
		{
			ID: "1", Section: "Verbal Reasoning", Score: 50,
			ByType: map[model.QuestionType]model.TypeCount{
				model.ReadingComprehension: {Total: 2, Correct: 1},
				model.TextCompletion:       {Total: 2, Correct: 1},
			},
		},
		{
			ID: "2", Section: "Verbal Reasoning", Score: 75,
			ByType: map[model.QuestionType]model.TypeCount{
				model.ReadingComprehension: {Total: 2, Correct: 2},
				model.SentenceEquivalence:  {Total: 2, Correct: 1},
			},
		},
		// Entries recorded before type tallies existed carry none.
		{ID: "3", Section: "Quantitative Reasoning", Score: 100},
	}

	a := Analyze(entries)
	want := []TypeStat{
		{Type: model.SentenceEquivalence, Total: 2, Correct: 1, Accuracy: 50},
		{Type: model.TextCompletion, Total: 2, Correct: 1, Accuracy: 50},
		{Type: model.ReadingComprehension, Total: 4, Correct: 3, Accuracy: 75},
	}
	if !reflect.DeepEqual(a.TypePerformance, want) {
		t.Errorf("typePerformance = %+v, want %+v", a.TypePerformance, want)
	}
}

func TestAnalyzeEmptyHistory(t *testing.T) {
	a := Analyze(nil)
	if a.TotalTests != 0 || a.AverageScore != 0 || a.RecentScores != nil {
		t.Errorf("empty analytics = %+v", a)
	}
}

func TestAnalyzeCapsRecentScores(t *testing.T) {
	var entries []model.HistoryEntry
	for i := 0; i < 15; i++ {
		entries = append(entries, model.HistoryEntry{
			ID:      fmt.Sprintf("e%d", i),
			Section: "Verbal Reasoning",
			Score:   i,
		})
	}
	a := Analyze(entries)
	if len(a.RecentScores) != 10 {
		t.Errorf("recentScores has %d entries, want 10", len(a.RecentScores))
	}
	if a.RecentScores[0] != 0 || a.RecentScores[9] != 9 {
		t.Errorf("recentScores order wrong: %v", a.RecentScores)
	}
}
