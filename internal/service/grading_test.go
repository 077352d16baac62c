package service

import (
	"math"
	"testing"

	"eduquiz_backend/internal/model"
)

func question(id uint, qtype string, points int, correct string) model.QuizQuestion {
	q := model.QuizQuestion{
		QuestionType:   qtype,
		Points:         points,
		CorrectOptions: correct,
	}
	q.ID = id
	return q
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestGradeObjectiveSingleChoice(t *testing.T) {
	q := question(1, model.QuestionTypeSingleChoice, 5, `["b"]`)

	tests := []struct {
		name     string
		selected []string
		want     float64
	}{
		{"correct", []string{"b"}, 5},
		{"wrong", []string{"a"}, 0},
		{"empty", nil, 0},
		{"multiple selections never score", []string{"a", "b"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gradeObjective(q, AnswerSubmission{QuestionID: 1, SelectedOptions: tt.selected})
			if got != tt.want {
				t.Errorf("gradeObjective() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGradeObjectiveTrueFalse(t *testing.T) {
	q := question(2, model.QuestionTypeTrueFalse, 2, `["true"]`)
	if got := gradeObjective(q, AnswerSubmission{QuestionID: 2, SelectedOptions: []string{"true"}}); got != 2 {
		t.Errorf("correct true/false = %v, want 2", got)
	}
	if got := gradeObjective(q, AnswerSubmission{QuestionID: 2, SelectedOptions: []string{"false"}}); got != 0 {
		t.Errorf("wrong true/false = %v, want 0", got)
	}
}

func TestGradeObjectiveShortAnswer(t *testing.T) {
	q := question(3, model.QuestionTypeShortAnswer, 3, `["Paris", "paris city"]`)

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"exact", "Paris", 3},
		{"case insensitive", "PARIS", 3},
		{"surrounding whitespace", "  paris  ", 3},
		{"second accepted answer", "Paris City", 3},
		{"wrong", "London", 0},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gradeObjective(q, AnswerSubmission{QuestionID: 3, TextContent: tt.text})
			if got != tt.want {
				t.Errorf("gradeObjective(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestGradeObjectiveMultipleChoiceExact(t *testing.T) {
	q := question(4, model.QuestionTypeMultipleChoice, 4, `["a", "c"]`)
	q.Options = `[{"id":"a"},{"id":"b"},{"id":"c"},{"id":"d"}]`

	if got := gradeObjective(q, AnswerSubmission{SelectedOptions: []string{"c", "a"}}); got != 4 {
		t.Errorf("order should not matter, got %v", got)
	}
	// 部分给分未开启时漏选即零分
	if got := gradeObjective(q, AnswerSubmission{SelectedOptions: []string{"a"}}); got != 0 {
		t.Errorf("partial selection without partial credit = %v, want 0", got)
	}
}

func TestGradeObjectiveMultipleChoicePartialCredit(t *testing.T) {
	q := question(5, model.QuestionTypeMultipleChoice, 10, `["a", "b"]`)
	q.Options = `[{"id":"a"},{"id":"b"},{"id":"c"},{"id":"d"}]`
	q.AllowPartialCredit = true

	tests := []struct {
		name     string
		selected []string
		want     float64
	}{
		{"all correct", []string{"a", "b"}, 10},
		{"half correct", []string{"a"}, 5},
		{"hit fully offset by miss", []string{"a", "c"}, 0}, // 1/2 - 1/2
		{"all wrong", []string{"c", "d"}, 0},
		{"misses exceed hits clamp to zero", []string{"a", "c", "d"}, 0},
		{"duplicates counted once", []string{"a", "a"}, 5},
		{"nothing selected", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gradeObjective(q, AnswerSubmission{SelectedOptions: tt.selected})
			if !almostEqual(got, tt.want) {
				t.Errorf("partial credit = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPartialCreditPenaltyFraction(t *testing.T) {
	// 3 个正确项、2 个干扰项：命中 2 个 + 误选 1 个 = 2/3 - 1/2 = 1/6
	q := question(7, model.QuestionTypeMultipleChoice, 12, `["a", "b", "c"]`)
	q.Options = `[{"id":"a"},{"id":"b"},{"id":"c"},{"id":"d"},{"id":"e"}]`
	q.AllowPartialCredit = true

	got := gradeObjective(q, AnswerSubmission{SelectedOptions: []string{"a", "b", "d"}})
	if !almostEqual(got, 2) {
		t.Errorf("partial credit = %v, want 2", got)
	}
}

func TestPartialCreditNoDistractors(t *testing.T) {
	// 干扰项为零时不计罚分项
	q := question(6, model.QuestionTypeMultipleChoice, 6, `["a", "b"]`)
	q.Options = `[{"id":"a"},{"id":"b"}]`
	q.AllowPartialCredit = true

	got := gradeObjective(q, AnswerSubmission{SelectedOptions: []string{"a"}})
	if !almostEqual(got, 3) {
		t.Errorf("no-distractor partial credit = %v, want 3", got)
	}
}

func TestGradeAttempt(t *testing.T) {
	questions := []model.QuizQuestion{
		question(1, model.QuestionTypeSingleChoice, 5, `["b"]`),
		question(2, model.QuestionTypeShortAnswer, 3, `["go"]`),
		question(3, model.QuestionTypeEssay, 10, `[]`),
	}

	answers := []AnswerSubmission{
		{QuestionID: 1, SelectedOptions: []string{"b"}},
		{QuestionID: 2, TextContent: "Go"},
		{QuestionID: 3, TextContent: "long essay text"},
	}

	out := gradeAttempt(questions, answers)

	if out.score != 8 {
		t.Errorf("score = %v, want 8", out.score)
	}
	if out.maxScore != 18 {
		t.Errorf("maxScore = %v, want 18 (includes manual questions)", out.maxScore)
	}
	if !out.needsManual {
		t.Error("essay question should flag needsManual")
	}
	if out.perQuestion[3] != nil {
		t.Error("manual question should have nil awarded points until reviewed")
	}
	if got := out.perQuestion[1]; got == nil || *got != 5 {
		t.Errorf("question 1 awarded = %v, want 5", got)
	}
}

func TestGradeAttemptUnansweredObjectiveScoresZero(t *testing.T) {
	questions := []model.QuizQuestion{
		question(1, model.QuestionTypeSingleChoice, 5, `["a"]`),
		question(2, model.QuestionTypeSingleChoice, 5, `["b"]`),
	}

	out := gradeAttempt(questions, []AnswerSubmission{
		{QuestionID: 1, SelectedOptions: []string{"a"}},
	})

	if out.score != 5 {
		t.Errorf("score = %v, want 5", out.score)
	}
	if out.needsManual {
		t.Error("objective-only quiz should not need manual review")
	}
	if got := out.perQuestion[2]; got == nil || *got != 0 {
		t.Errorf("unanswered question awarded = %v, want 0", got)
	}
}

func TestGradeAttemptManualGradingFlagOverridesType(t *testing.T) {
	q := question(1, model.QuestionTypeShortAnswer, 4, `["answer"]`)
	q.ManualGrading = true

	out := gradeAttempt([]model.QuizQuestion{q}, []AnswerSubmission{
		{QuestionID: 1, TextContent: "answer"},
	})

	if !out.needsManual {
		t.Error("manualGrading question should need review")
	}
	if out.score != 0 {
		t.Errorf("score = %v, manual questions must not auto-score", out.score)
	}
}

func TestEqualStringSets(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want bool
	}{
		{"equal different order", []string{"x", "y"}, []string{"y", "x"}, true},
		{"subset", []string{"x"}, []string{"x", "y"}, false},
		{"superset", []string{"x", "y"}, []string{"x"}, false},
		{"both empty", nil, nil, true},
		{"duplicates collapse", []string{"x", "x"}, []string{"x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := equalStringSets(tt.a, tt.b); got != tt.want {
				t.Errorf("equalStringSets(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDecodeOptionIDs(t *testing.T) {
	ids := decodeOptionIDs(`[{"id":"a","text":"Alpha"},{"id":"b","text":"Beta"}]`)
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("decodeOptionIDs = %v, want [a b]", ids)
	}
	if got := decodeOptionIDs(""); got != nil {
		t.Errorf("empty input = %v, want nil", got)
	}
	if got := decodeOptionIDs("not json"); got != nil {
		t.Errorf("invalid input = %v, want nil", got)
	}
}
