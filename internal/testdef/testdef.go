// Package testdef is the load boundary for test-definition JSON. The
// core only ever sees a definition that passed Validate; everything
// wrong with a document is reported as a FormatError before any state
// changes.
package testdef

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/pavelanni/mocktest/internal/model"
)

// FormatError describes why a test definition was rejected. The message
// is developer-facing; handlers map it to a localized user message.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "invalid test format: " + e.Reason
}

func formatErrorf(format string, args ...any) error {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

// Parse decodes and validates a test-definition document.
func Parse(data []byte) (model.TestData, error) {
	var td model.TestData
	if err := json.Unmarshal(data, &td); err != nil {
		return model.TestData{}, &FormatError{Reason: err.Error()}
	}
	if err := Validate(td); err != nil {
		return model.TestData{}, err
	}
	return td, nil
}

// Load reads and parses a definition file.
func Load(path string) (model.TestData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.TestData{}, fmt.Errorf("read %s: %w", path, err)
	}
	td, err := Parse(data)
	if err != nil {
		return model.TestData{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return td, nil
}

// Validate checks the structural contract: a section label, a non-empty
// question list, unique positive IDs, known types, and the answer-key
// shape matching each question's type. Answer keys that reference values
// missing from the options are a data-integrity problem, not a load
// failure: the evaluator treats them as never-correct, so Validate only
// logs them.
func Validate(td model.TestData) error {
	if td.Section == "" {
		return formatErrorf("missing section")
	}
	if td.Questions == nil {
		return formatErrorf("missing questions")
	}
	if len(td.Questions) == 0 {
		return formatErrorf("questions list is empty")
	}
	if td.TotalQuestions != 0 && td.TotalQuestions != len(td.Questions) {
		slog.Warn("total_questions does not match question count",
			"declared", td.TotalQuestions, "actual", len(td.Questions))
	}

	seen := make(map[int]bool, len(td.Questions))
	for i, q := range td.Questions {
		if q.ID <= 0 {
			return formatErrorf("question %d: id must be a positive integer", i+1)
		}
		if seen[q.ID] {
			return formatErrorf("duplicate question id %d", q.ID)
		}
		seen[q.ID] = true
		if !q.Type.Known() {
			return formatErrorf("question %d: unknown type %q", q.ID, q.Type)
		}
		if q.Type == model.TextCompletion && q.Blanks < 1 {
			return formatErrorf("question %d: text completion requires a blanks count", q.ID)
		}
		if err := validateAnswerKey(q); err != nil {
			return err
		}
		warnUnlistedAnswers(q)
	}
	return nil
}

func validateAnswerKey(q model.Question) error {
	if q.MultiBlank() {
		if len(q.CorrectBlanks) == 0 {
			return formatErrorf("question %d: multi-blank completion requires a per-blank answer map", q.ID)
		}
		return nil
	}
	if len(q.CorrectList) == 0 {
		return formatErrorf("question %d: missing correct_answers", q.ID)
	}
	return nil
}

// warnUnlistedAnswers flags answer-key values that do not appear among
// the question's options.
func warnUnlistedAnswers(q model.Question) {
	if q.MultiBlank() {
		for blank, want := range q.CorrectBlanks {
			if !contains(q.BlankOptions[blank], want) {
				slog.Warn("correct answer not among options",
					"question", q.ID, "blank", blank, "answer", want)
			}
		}
		return
	}
	// Numeric entry has no options to check against.
	if len(q.Options) == 0 {
		return
	}
	for _, want := range q.CorrectList {
		if !contains(q.Options, want) {
			slog.Warn("correct answer not among options", "question", q.ID, "answer", want)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
