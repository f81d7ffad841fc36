package evaluate

import (
	"testing"

	"github.com/pavelanni/mocktest/internal/model"
)

func TestSentenceEquivalence(t *testing.T) {
	q := model.Question{
		ID:          1,
		Type:        model.SentenceEquivalence,
		Options:     []string{"candid", "frank", "evasive", "guarded", "verbose", "terse"},
		CorrectList: []string{"candid", "frank"},
	}

	tests := []struct {
		name     string
		selected []string
		want     bool
	}{
		{"both correct in order", []string{"candid", "frank"}, true},
		{"both correct reversed", []string{"frank", "candid"}, true},
		{"one correct one wrong", []string{"candid", "evasive"}, false},
		{"single selection", []string{"candid"}, false},
		{"no selection", nil, false},
		{"three selections", []string{"candid", "frank", "evasive"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Correct(q, model.Value{List: tt.selected})
			if got != tt.want {
				t.Errorf("Correct(%v) = %v, want %v", tt.selected, got, tt.want)
			}
		})
	}
}

func TestTextCompletionSingleBlank(t *testing.T) {
	q := model.Question{
		ID:          2,
		Type:        model.TextCompletion,
		Blanks:      1,
		Options:     []string{"ephemeral", "enduring", "mundane"},
		CorrectList: []string{"ephemeral", "enduring"},
	}

	if !Correct(q, model.Value{Text: "ephemeral"}) {
		t.Error("first acceptable answer should be correct")
	}
	if !Correct(q, model.Value{Text: "enduring"}) {
		t.Error("second acceptable answer should be correct")
	}
	if Correct(q, model.Value{Text: "mundane"}) {
		t.Error("unlisted answer should be incorrect")
	}
	if Correct(q, model.Value{}) {
		t.Error("empty answer should be incorrect")
	}
}

func TestTextCompletionMultiBlank(t *testing.T) {
	q := model.Question{
		ID:     3,
		Type:   model.TextCompletion,
		Blanks: 2,
		BlankOptions: map[string][]string{
			"1": {"however", "moreover"},
			"2": {"despite", "because"},
		},
		CorrectBlanks: map[string]string{"1": "however", "2": "despite"},
	}

	tests := []struct {
		name   string
		blanks map[string]string
		want   bool
	}{
		{"all blanks correct", map[string]string{"1": "however", "2": "despite"}, true},
		{"missing blank", map[string]string{"1": "however"}, false},
		{"extra key ignored", map[string]string{"1": "however", "2": "despite", "3": "extra"}, true},
		{"one blank wrong", map[string]string{"1": "moreover", "2": "despite"}, false},
		{"empty map", map[string]string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Correct(q, model.Value{Blanks: tt.blanks})
			if got != tt.want {
				t.Errorf("Correct(%v) = %v, want %v", tt.blanks, got, tt.want)
			}
		})
	}
}

func TestExactSingleTypes(t *testing.T) {
	for _, typ := range []model.QuestionType{
		model.ReadingComprehension,
		model.QuantitativeComparison,
		model.MultipleChoiceSingle,
	} {
		q := model.Question{
			ID:          4,
			Type:        typ,
			Options:     []string{"A", "B", "C", "D"},
			CorrectList: []string{"B"},
		}
		if !Correct(q, model.Value{Text: "B"}) {
			t.Errorf("%s: exact match should be correct", typ)
		}
		if Correct(q, model.Value{Text: "A"}) {
			t.Errorf("%s: wrong choice should be incorrect", typ)
		}
		if Correct(q, model.Value{Text: ""}) {
			t.Errorf("%s: empty choice should be incorrect", typ)
		}
	}
}

func TestMultipleChoiceMultiple(t *testing.T) {
	q := model.Question{
		ID:          5,
		Type:        model.MultipleChoiceMultiple,
		Options:     []string{"4", "5", "6", "10", "15"},
		CorrectList: []string{"5", "6", "10", "15"},
	}

	tests := []struct {
		name     string
		selected []string
		want     bool
	}{
		{"same set reordered", []string{"6", "5", "15", "10"}, true},
		{"subset", []string{"5", "6", "10"}, false},
		{"superset", []string{"5", "6", "10", "15", "4"}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Correct(q, model.Value{List: tt.selected})
			if got != tt.want {
				t.Errorf("Correct(%v) = %v, want %v", tt.selected, got, tt.want)
			}
		})
	}
}

func TestNumericEntry(t *testing.T) {
	q := model.Question{
		ID:          6,
		Type:        model.NumericEntry,
		CorrectList: []string{"75"},
	}

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"exact", "75", true},
		{"within tolerance", "75.00001", true},
		{"outside tolerance", "75.01", false},
		{"non-numeric", "seventy-five", false},
		{"empty", "", false},
		{"whitespace padded", " 75 ", true},
		{"negative sign mismatch", "-75", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Correct(q, model.Value{Text: tt.input})
			if got != tt.want {
				t.Errorf("Correct(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestUnknownTypeIncorrect(t *testing.T) {
	q := model.Question{ID: 7, Type: "Analytical Writing", CorrectList: []string{"x"}}
	if Correct(q, model.Value{Text: "x"}) {
		t.Error("unknown question type must evaluate to incorrect")
	}
}

func TestMismatchedShapeIncorrect(t *testing.T) {
	q := model.Question{
		ID:          8,
		Type:        model.MultipleChoiceSingle,
		CorrectList: []string{"A"},
	}
	// A list submitted for a single-choice question is malformed, not fatal.
	if Correct(q, model.Value{List: []string{"A"}}) {
		t.Error("mismatched answer shape must evaluate to incorrect")
	}
}

func TestCorrectIsDeterministic(t *testing.T) {
	q := model.Question{
		ID:          9,
		Type:        model.SentenceEquivalence,
		CorrectList: []string{"a", "b"},
	}
	v := model.Value{List: []string{"b", "a"}}
	first := Correct(q, v)
	second := Correct(q, v)
	if first != second {
		t.Fatalf("Correct not deterministic: %v then %v", first, second)
	}
	if len(v.List) != 2 || v.List[0] != "b" {
		t.Error("Correct mutated its input")
	}
}

func TestEmpty(t *testing.T) {
	tests := []struct {
		name string
		q    model.Question
		chk  func(model.Value) bool
	}{
		{"sentence equivalence gets list", model.Question{Type: model.SentenceEquivalence},
			func(v model.Value) bool { return v.List != nil && len(v.List) == 0 }},
		{"multi answers gets list", model.Question{Type: model.MultipleChoiceMultiple},
			func(v model.Value) bool { return v.List != nil && len(v.List) == 0 }},
		{"multi blank gets map", model.Question{Type: model.TextCompletion, Blanks: 2},
			func(v model.Value) bool { return v.Blanks != nil && len(v.Blanks) == 0 }},
		{"single blank gets string", model.Question{Type: model.TextCompletion, Blanks: 1},
			func(v model.Value) bool { return v.Text == "" && v.List == nil && v.Blanks == nil }},
		{"numeric gets string", model.Question{Type: model.NumericEntry},
			func(v model.Value) bool { return v.Text == "" && v.List == nil && v.Blanks == nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Empty(tt.q)
			if !v.IsEmpty() {
				t.Error("Empty() must produce an unanswered value")
			}
			if !tt.chk(v) {
				t.Errorf("unexpected empty shape: %+v", v)
			}
		})
	}
}
