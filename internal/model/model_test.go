package model

import (
	"encoding/json"
	"testing"
)

func TestQuestionJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"flat options", `{"id":1,"type":"Multiple Choice — Single Answer","question":"q","options":["A","B"],"correct_answers":["B"]}`},
		{"per-blank options", `{"id":2,"type":"Text Completion","question":"q","blanks":2,"options":{"1":["a"],"2":["b"]},"correct_answers":{"1":"a","2":"b"}}`},
		{"no options", `{"id":3,"type":"Numeric Entry","question":"q","correct_answers":["75"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Question
			if err := json.Unmarshal([]byte(tt.doc), &q); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			out, err := json.Marshal(q)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			var again Question
			if err := json.Unmarshal(out, &again); err != nil {
				t.Fatalf("re-Unmarshal: %v", err)
			}
			if again.ID != q.ID || again.Type != q.Type || again.Blanks != q.Blanks {
				t.Errorf("round trip lost fields: %+v vs %+v", again, q)
			}
			if len(again.Options) != len(q.Options) || len(again.BlankOptions) != len(q.BlankOptions) {
				t.Errorf("round trip changed option shape")
			}
			if len(again.CorrectList) != len(q.CorrectList) || len(again.CorrectBlanks) != len(q.CorrectBlanks) {
				t.Errorf("round trip changed answer-key shape")
			}
		})
	}
}

func TestQuestionUnmarshalRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"options as number", `{"id":1,"type":"Numeric Entry","question":"q","options":5}`},
		{"correct_answers as number", `{"id":1,"type":"Numeric Entry","question":"q","correct_answers":5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Question
			if err := json.Unmarshal([]byte(tt.doc), &q); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestValueUnmarshalShapes(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		chk  func(Value) bool
	}{
		{"string", `"B"`, func(v Value) bool { return v.Text == "B" }},
		{"list", `["a","b"]`, func(v Value) bool { return len(v.List) == 2 && v.List[1] == "b" }},
		{"blank map", `{"1":"x","2":"y"}`, func(v Value) bool { return v.Blanks["2"] == "y" }},
		{"empty string", `""`, func(v Value) bool { return v.IsEmpty() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Value
			if err := json.Unmarshal([]byte(tt.doc), &v); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if !tt.chk(v) {
				t.Errorf("decoded value = %+v", v)
			}
		})
	}

	var v Value
	if err := json.Unmarshal([]byte(`42`), &v); err == nil {
		t.Error("expected an error for a numeric answer value")
	}
}

func TestKnownTypes(t *testing.T) {
	for _, typ := range QuestionTypes {
		if !typ.Known() {
			t.Errorf("%s not recognized", typ)
		}
	}
	if QuestionType("Essay").Known() {
		t.Error("unknown type recognized")
	}
	if len(QuestionTypes) != 7 {
		t.Errorf("closed set has %d members, want 7", len(QuestionTypes))
	}
}
