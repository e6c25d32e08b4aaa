package quiz

import "strings"

// Proficiency levels.
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

// Result is an evaluated quiz.
type Result struct {
	Score int    `json:"score"`
	Level string `json:"level"`

	// Strong and Weak list the topics answered correctly and incorrectly,
	// in question order.
	Strong []string `json:"strong_topics"`
	Weak   []string `json:"weak_topics"`
}

// Score counts correct answers. answers maps question ID to option key;
// comparison ignores case and surrounding space. Missing answers are wrong.
func Score(answers map[string]string) int {
	n := 0
	for _, q := range bank {
		if isCorrect(q, answers) {
			n++
		}
	}
	return n
}

// LevelFor maps a score to a proficiency level.
func LevelFor(score int) string {
	switch {
	case score <= 3:
		return LevelBeginner
	case score <= 6:
		return LevelIntermediate
	default:
		return LevelAdvanced
	}
}

// Evaluate scores answers and splits topics into strong and weak areas.
func Evaluate(answers map[string]string) Result {
	var r Result
	for _, q := range bank {
		if isCorrect(q, answers) {
			r.Score++
			r.Strong = append(r.Strong, q.Topic)
		} else {
			r.Weak = append(r.Weak, q.Topic)
		}
	}
	r.Level = LevelFor(r.Score)
	return r
}

// ValidLevel reports whether level is one of the known levels.
func ValidLevel(level string) bool {
	switch level {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

func isCorrect(q Question, answers map[string]string) bool {
	return strings.ToLower(strings.TrimSpace(answers[q.ID])) == q.correct
}
