package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// QuestionType identifies one of the supported question formats.
// The set is closed: anything else is rejected at load time and
// evaluated as incorrect if it slips through.
type QuestionType string

const (
	SentenceEquivalence    QuestionType = "Sentence Equivalence"
	TextCompletion         QuestionType = "Text Completion"
	ReadingComprehension   QuestionType = "Reading Comprehension"
	QuantitativeComparison QuestionType = "Quantitative Comparison"
	MultipleChoiceSingle   QuestionType = "Multiple Choice — Single Answer"
	MultipleChoiceMultiple QuestionType = "Multiple Choice — Multiple Answers"
	NumericEntry           QuestionType = "Numeric Entry"
)

// QuestionTypes lists all types in canonical order. Statistics use this
// order for stable iteration and for breaking accuracy ties.
var QuestionTypes = []QuestionType{
	SentenceEquivalence,
	TextCompletion,
	ReadingComprehension,
	QuantitativeComparison,
	MultipleChoiceSingle,
	MultipleChoiceMultiple,
	NumericEntry,
}

// Known reports whether t is a member of the closed type set.
func (t QuestionType) Known() bool {
	for _, k := range QuestionTypes {
		if t == k {
			return true
		}
	}
	return false
}

// Question is one test item. Options and correct answers are polymorphic
// in the source JSON (flat list for most types, per-blank mapping for
// multi-blank Text Completion); UnmarshalJSON splits them into the
// shape-specific fields below.
type Question struct {
	ID       int          `json:"id"`
	Type     QuestionType `json:"type"`
	Question string       `json:"question"`
	Passage  string       `json:"passage,omitempty"`
	Blanks   int          `json:"blanks,omitempty"`

	// Options holds the flat choice list; BlankOptions holds per-blank
	// choice lists for multi-blank Text Completion. At most one is set.
	Options      []string            `json:"-"`
	BlankOptions map[string][]string `json:"-"`

	// CorrectList holds acceptable answers as an ordered list;
	// CorrectBlanks maps blank label to the single correct string for
	// multi-blank Text Completion. At most one is set.
	CorrectList   []string          `json:"-"`
	CorrectBlanks map[string]string `json:"-"`
}

// MultiBlank reports whether the question is a Text Completion item with
// more than one blank, which switches both the answer shape and the
// comparison rule.
func (q Question) MultiBlank() bool {
	return q.Type == TextCompletion && q.Blanks > 1
}

type questionJSON struct {
	ID             int             `json:"id"`
	Type           QuestionType    `json:"type"`
	Question       string          `json:"question"`
	Passage        string          `json:"passage,omitempty"`
	Blanks         int             `json:"blanks,omitempty"`
	Options        json.RawMessage `json:"options,omitempty"`
	CorrectAnswers json.RawMessage `json:"correct_answers,omitempty"`
}

// UnmarshalJSON decodes a question, accepting both option shapes
// (list, per-blank map) and both correct-answer shapes (list, map).
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw questionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.ID = raw.ID
	q.Type = raw.Type
	q.Question = raw.Question
	q.Passage = raw.Passage
	q.Blanks = raw.Blanks
	q.Options = nil
	q.BlankOptions = nil
	q.CorrectList = nil
	q.CorrectBlanks = nil

	if len(raw.Options) > 0 && string(raw.Options) != "null" {
		var list []string
		if err := json.Unmarshal(raw.Options, &list); err == nil {
			q.Options = list
		} else {
			var perBlank map[string][]string
			if err := json.Unmarshal(raw.Options, &perBlank); err != nil {
				return fmt.Errorf("question %d: options must be a list or a per-blank map", raw.ID)
			}
			q.BlankOptions = perBlank
		}
	}

	if len(raw.CorrectAnswers) > 0 && string(raw.CorrectAnswers) != "null" {
		var list []string
		if err := json.Unmarshal(raw.CorrectAnswers, &list); err == nil {
			q.CorrectList = list
		} else {
			var perBlank map[string]string
			if err := json.Unmarshal(raw.CorrectAnswers, &perBlank); err != nil {
				return fmt.Errorf("question %d: correct_answers must be a list or a per-blank map", raw.ID)
			}
			q.CorrectBlanks = perBlank
		}
	}

	return nil
}

// MarshalJSON re-emits the question in the source schema, picking the
// option and correct-answer shape that is populated.
func (q Question) MarshalJSON() ([]byte, error) {
	raw := questionJSON{
		ID:       q.ID,
		Type:     q.Type,
		Question: q.Question,
		Passage:  q.Passage,
		Blanks:   q.Blanks,
	}
	var err error
	switch {
	case q.BlankOptions != nil:
		raw.Options, err = json.Marshal(q.BlankOptions)
	case q.Options != nil:
		raw.Options, err = json.Marshal(q.Options)
	}
	if err != nil {
		return nil, err
	}
	switch {
	case q.CorrectBlanks != nil:
		raw.CorrectAnswers, err = json.Marshal(q.CorrectBlanks)
	case q.CorrectList != nil:
		raw.CorrectAnswers, err = json.Marshal(q.CorrectList)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}

// TestData is a validated test definition. Question order is the display
// and navigation order.
type TestData struct {
	Section        string     `json:"section"`
	TotalQuestions int        `json:"total_questions"`
	Questions      []Question `json:"questions"`
}

// Value is a submitted answer. Exactly one of the three fields is
// meaningful, selected by the owning question's type: Text for
// single-choice and numeric entry, List for multi-select, Blanks for
// multi-blank text completion. The zero Value is the unanswered state
// for every type.
type Value struct {
	Text   string
	List   []string
	Blanks map[string]string
}

// IsEmpty reports whether no answer has been given in any shape.
func (v Value) IsEmpty() bool {
	return v.Text == "" && len(v.List) == 0 && len(v.Blanks) == 0
}

// UnmarshalJSON accepts the three wire shapes: a string, a list of
// strings, or a map from blank label to string.
func (v *Value) UnmarshalJSON(data []byte) error {
	*v = Value{}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v.Text = s
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		v.List = list
		return nil
	}
	var blanks map[string]string
	if err := json.Unmarshal(data, &blanks); err == nil {
		v.Blanks = blanks
		return nil
	}
	return fmt.Errorf("answer must be a string, a list of strings, or a blank map")
}

// MarshalJSON emits the populated shape; an empty value marshals as "".
func (v Value) MarshalJSON() ([]byte, error) {
	switch {
	case v.Blanks != nil:
		return json.Marshal(v.Blanks)
	case v.List != nil:
		return json.Marshal(v.List)
	default:
		return json.Marshal(v.Text)
	}
}

// Answer is the recorded response for one question. The session owns the
// full set, one entry per question in question order, created empty at
// load time and frozen once the session completes.
type Answer struct {
	QuestionID int   `json:"questionId"`
	Value      Value `json:"answer"`
	Correct    bool  `json:"isCorrect"`
	TimeTaken  int   `json:"timeTaken"`
}

// TypeCount is the per-question-type tally frozen into a HistoryEntry
// at completion.
type TypeCount struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
}

// HistoryEntry is an immutable summary of one completed session.
type HistoryEntry struct {
	ID             string                     `json:"id"`
	Date           time.Time                  `json:"date"`
	TestName       string                     `json:"testName"`
	Section        string                     `json:"section"`
	Score          int                        `json:"score"`
	Questions      int                        `json:"questions"`
	CorrectAnswers int                        `json:"correctAnswers"`
	ByType         map[QuestionType]TypeCount `json:"byType,omitempty"`
}

// PlayerConfig holds runtime player parameters set via CLI flags.
type PlayerConfig struct {
	Duration    time.Duration // time budget per test; the session auto-completes at zero
	Lang        string        // UI language for messages (en, ru)
	CORSOrigins []string      // allowed browser origins for the API
}
