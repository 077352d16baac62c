package service

import (
	"encoding/json"
	"strings"

	"eduquiz_backend/internal/model"
)

// AnswerSubmission 单题作答输入
type AnswerSubmission struct {
	QuestionID      uint     `json:"questionId" binding:"required"`
	SelectedOptions []string `json:"selectedOptions,omitempty"`
	TextContent     string   `json:"textContent,omitempty"`
}

type gradeOutcome struct {
	score       float64
	maxScore    float64
	needsManual bool
	// 每题得分；人工评阅题为 nil，等待教师评分
	perQuestion map[uint]*float64
}

// gradeAttempt 对客观题自动判分。maxScore 含人工评阅题的满分，
// score 仅累计客观题得分，essay/人工题提交时不贡献分数
func gradeAttempt(questions []model.QuizQuestion, answers []AnswerSubmission) gradeOutcome {
	byQuestion := make(map[uint]AnswerSubmission, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	out := gradeOutcome{perQuestion: make(map[uint]*float64, len(questions))}
	for _, q := range questions {
		out.maxScore += float64(q.Points)

		if !q.IsObjective() {
			out.needsManual = true
			out.perQuestion[q.ID] = nil
			continue
		}

		awarded := 0.0
		if a, ok := byQuestion[q.ID]; ok {
			awarded = gradeObjective(q, a)
		}
		out.score += awarded
		v := awarded
		out.perQuestion[q.ID] = &v
	}
	return out
}

func gradeObjective(q model.QuizQuestion, a AnswerSubmission) float64 {
	correct := decodeStringSlice(q.CorrectOptions)

	switch q.QuestionType {
	case model.QuestionTypeSingleChoice, model.QuestionTypeTrueFalse:
		if len(a.SelectedOptions) == 1 && len(correct) == 1 && a.SelectedOptions[0] == correct[0] {
			return float64(q.Points)
		}
		return 0

	case model.QuestionTypeShortAnswer:
		given := strings.TrimSpace(strings.ToLower(a.TextContent))
		for _, accepted := range correct {
			if given == strings.TrimSpace(strings.ToLower(accepted)) {
				return float64(q.Points)
			}
		}
		return 0

	case model.QuestionTypeMultipleChoice:
		if equalStringSets(a.SelectedOptions, correct) {
			return float64(q.Points)
		}
		if q.AllowPartialCredit {
			return partialCredit(q, correct, a.SelectedOptions)
		}
		return 0
	}

	return 0
}

// partialCredit 部分给分：得分 = 满分 * max(0, 选对比例 - 选错比例)。
// 选对比例 = 命中的正确选项数/正确选项总数，
// 选错比例 = 误选的干扰项数/干扰项总数；无干扰项时不计罚分项
func partialCredit(q model.QuizQuestion, correct, selected []string) float64 {
	if len(correct) == 0 {
		return 0
	}

	correctSet := make(map[string]bool, len(correct))
	for _, id := range correct {
		correctSet[id] = true
	}

	totalOptions := len(decodeOptionIDs(q.Options))
	incorrectTotal := totalOptions - len(correct)

	hits, misses := 0, 0
	seen := make(map[string]bool, len(selected))
	for _, id := range selected {
		if seen[id] {
			continue
		}
		seen[id] = true
		if correctSet[id] {
			hits++
		} else {
			misses++
		}
	}

	fraction := float64(hits) / float64(len(correct))
	if incorrectTotal > 0 {
		fraction -= float64(misses) / float64(incorrectTotal)
	}
	if fraction < 0 {
		fraction = 0
	}
	return float64(q.Points) * fraction
}

func equalStringSets(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	if len(set) != len(b) {
		return false
	}
	for _, s := range b {
		if !set[s] {
			return false
		}
	}
	return true
}

func decodeStringSlice(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// decodeOptionIDs 从题目 options JSON（[{id, text}]）提取选项ID
func decodeOptionIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	var options []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return nil
	}
	ids := make([]string, 0, len(options))
	for _, o := range options {
		ids = append(ids, o.ID)
	}
	return ids
}
