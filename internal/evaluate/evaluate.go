// Package evaluate decides answer correctness. Every rule is a pure
// function over (question, submitted value); malformed or unanswered
// input means incorrect, never an error.
package evaluate

import (
	"math"
	"strconv"
	"strings"

	"github.com/pavelanni/mocktest/internal/model"
)

// Tolerance is the numeric epsilon used to compare Numeric Entry answers.
const Tolerance = 1e-4

// rule checks a submitted value against a question's answer key.
type rule func(q model.Question, v model.Value) bool

var rules = map[model.QuestionType]rule{
	model.SentenceEquivalence:    sentenceEquivalence,
	model.TextCompletion:         textCompletion,
	model.ReadingComprehension:   exactSingle,
	model.QuantitativeComparison: exactSingle,
	model.MultipleChoiceSingle:   exactSingle,
	model.MultipleChoiceMultiple: multiSelect,
	model.NumericEntry:           numericEntry,
}

// Empty returns the canonical unanswered value for a question: an empty
// selection list for the multi-select types, an empty blank map for
// multi-blank Text Completion, an empty string for everything else.
func Empty(q model.Question) model.Value {
	switch {
	case q.Type == model.SentenceEquivalence || q.Type == model.MultipleChoiceMultiple:
		return model.Value{List: []string{}}
	case q.MultiBlank():
		return model.Value{Blanks: map[string]string{}}
	default:
		return model.Value{}
	}
}

// Correct reports whether v answers q correctly. Inputs are never
// mutated. An unanswered value, an unknown question type, or a value
// whose shape does not match the question's type all evaluate to
// incorrect.
func Correct(q model.Question, v model.Value) bool {
	if v.IsEmpty() {
		return false
	}
	r, ok := rules[q.Type]
	if !ok {
		return false
	}
	return r(q, v)
}

// sentenceEquivalence requires exactly two selections that include every
// value from the answer key. A key of size other than two still matches
// by this subset test; that permissive rule is intentional.
func sentenceEquivalence(q model.Question, v model.Value) bool {
	if len(v.List) != 2 {
		return false
	}
	return containsAll(v.List, q.CorrectList)
}

func textCompletion(q model.Question, v model.Value) bool {
	if q.Blanks > 1 {
		if len(v.Blanks) == 0 || len(q.CorrectBlanks) == 0 {
			return false
		}
		// Extra keys in the submission are ignored; a missing key fails.
		for blank, want := range q.CorrectBlanks {
			got, ok := v.Blanks[blank]
			if !ok || got != want {
				return false
			}
		}
		return true
	}
	if v.Text == "" {
		return false
	}
	for _, want := range q.CorrectList {
		if v.Text == want {
			return true
		}
	}
	return false
}

func exactSingle(q model.Question, v model.Value) bool {
	return v.Text != "" && len(q.CorrectList) > 0 && v.Text == q.CorrectList[0]
}

// multiSelect requires set equality: same cardinality and every key
// value present in the selection.
func multiSelect(q model.Question, v model.Value) bool {
	if len(v.List) == 0 || len(v.List) != len(q.CorrectList) {
		return false
	}
	return containsAll(v.List, q.CorrectList)
}

func numericEntry(q model.Question, v model.Value) bool {
	if len(q.CorrectList) == 0 {
		return false
	}
	got, ok := parseNumber(v.Text)
	if !ok {
		return false
	}
	want, ok := parseNumber(q.CorrectList[0])
	if !ok {
		return false
	}
	return math.Abs(got-want) < Tolerance
}

func containsAll(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, s := range have {
		set[s] = struct{}{}
	}
	for _, s := range want {
		if _, ok := set[s]; !ok {
			return false
		}
	}
	return true
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
