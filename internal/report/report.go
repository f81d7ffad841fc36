// Package report derives statistics from completed sessions and from
// the accumulated history. Everything here is a pure computation over
// its inputs, so recomputing always yields the same aggregates.
package report

import (
	"github.com/pavelanni/mocktest/internal/model"
)

// TypeStat is the per-question-type breakdown. Types with no questions
// in the test never appear.
type TypeStat struct {
	Type     model.QuestionType `json:"type"`
	Total    int                `json:"total"`
	Correct  int                `json:"correct"`
	Accuracy float64            `json:"accuracy"`
}

// Review pairs a question with the recorded answer for the result page.
type Review struct {
	Question model.Question `json:"question"`
	Answer   model.Answer   `json:"answer"`
}

// Summary is the full result of one completed session.
type Summary struct {
	Section        string             `json:"section"`
	Score          int                `json:"score"`
	TotalQuestions int                `json:"total_questions"`
	CorrectCount   int                `json:"correct_count"`
	Accuracy       float64            `json:"accuracy"`
	ByType         []TypeStat         `json:"by_type"`
	StrongestType  model.QuestionType `json:"strongest_type,omitempty"`
	WeakestType    model.QuestionType `json:"weakest_type,omitempty"`
	TotalTime      int                `json:"total_time"`
	AverageTime    float64            `json:"average_time"`
	Review         []Review           `json:"review"`
}

// Summarize computes the result summary for a completed session.
// Answers must be the session's frozen answer set, one per question in
// question order; score is the session's final score.
func Summarize(test model.TestData, answers []model.Answer, score int) Summary {
	byID := make(map[int]model.Answer, len(answers))
	for _, a := range answers {
		byID[a.QuestionID] = a
	}

	sum := Summary{
		Section:        test.Section,
		Score:          score,
		TotalQuestions: len(test.Questions),
	}

	counts := make(map[model.QuestionType]*TypeStat)
	for _, q := range test.Questions {
		a := byID[q.ID]
		st, ok := counts[q.Type]
		if !ok {
			st = &TypeStat{Type: q.Type}
			counts[q.Type] = st
		}
		st.Total++
		if a.Correct {
			st.Correct++
			sum.CorrectCount++
		}
		sum.TotalTime += a.TimeTaken
		sum.Review = append(sum.Review, Review{Question: q, Answer: a})
	}

	if sum.TotalQuestions > 0 {
		sum.Accuracy = 100 * float64(sum.CorrectCount) / float64(sum.TotalQuestions)
		sum.AverageTime = float64(sum.TotalTime) / float64(sum.TotalQuestions)
	}

	// Canonical type order keeps the breakdown and the tie-breaks stable.
	for _, t := range model.QuestionTypes {
		st, ok := counts[t]
		if !ok {
			continue
		}
		st.Accuracy = 100 * float64(st.Correct) / float64(st.Total)
		sum.ByType = append(sum.ByType, *st)
	}

	for _, st := range sum.ByType {
		if sum.StrongestType == "" || st.Accuracy > accuracyOf(sum.ByType, sum.StrongestType) {
			sum.StrongestType = st.Type
		}
		if sum.WeakestType == "" || st.Accuracy < accuracyOf(sum.ByType, sum.WeakestType) {
			sum.WeakestType = st.Type
		}
	}

	return sum
}

func accuracyOf(stats []TypeStat, t model.QuestionType) float64 {
	for _, st := range stats {
		if st.Type == t {
			return st.Accuracy
		}
	}
	return 0
}

// recentScoresCap bounds the recent-score list in Analytics.
const recentScoresCap = 10

// SectionStat summarizes one test section across history.
type SectionStat struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// Analytics aggregates the whole history log.
type Analytics struct {
	TotalTests      int         `json:"total_tests"`
	AverageScore    float64     `json:"average_score"`
	Verbal          SectionStat `json:"verbal"`
	Quantitative    SectionStat `json:"quantitative"`
	TypePerformance []TypeStat  `json:"question_type_performance"`
	RecentScores    []int       `json:"recent_scores"`
}

// Analyze computes cross-session analytics. Entries are expected newest
// first, as the history store returns them.
func Analyze(entries []model.HistoryEntry) Analytics {
	var a Analytics
	a.TotalTests = len(entries)
	if a.TotalTests == 0 {
		return a
	}

	var total, verbalTotal, quantTotal int
	byType := make(map[model.QuestionType]model.TypeCount)
	for i, e := range entries {
		total += e.Score
		switch e.Section {
		case "Verbal Reasoning":
			a.Verbal.Count++
			verbalTotal += e.Score
		case "Quantitative Reasoning":
			a.Quantitative.Count++
			quantTotal += e.Score
		}
		for t, tc := range e.ByType {
			sum := byType[t]
			sum.Total += tc.Total
			sum.Correct += tc.Correct
			byType[t] = sum
		}
		if i < recentScoresCap {
			a.RecentScores = append(a.RecentScores, e.Score)
		}
	}

	a.AverageScore = float64(total) / float64(a.TotalTests)
	if a.Verbal.Count > 0 {
		a.Verbal.Average = float64(verbalTotal) / float64(a.Verbal.Count)
	}
	if a.Quantitative.Count > 0 {
		a.Quantitative.Average = float64(quantTotal) / float64(a.Quantitative.Count)
	}

	// Canonical type order; types never seen in the history are omitted.
	for _, t := range model.QuestionTypes {
		tc, ok := byType[t]
		if !ok {
			continue
		}
		a.TypePerformance = append(a.TypePerformance, TypeStat{
			Type:     t,
			Total:    tc.Total,
			Correct:  tc.Correct,
			Accuracy: 100 * float64(tc.Correct) / float64(tc.Total),
		})
	}
	return a
}
