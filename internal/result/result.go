// Package result scores submitted sessions.
package result

import (
	"fmt"
	"math"
	"time"

	"github.com/verte-zerg/wordtally/internal/model"
)

// Calculate scores questions against answers. Unanswered questions count as incorrect.
// answers and questionTimes are aligned with questions; missing entries are treated as
// unanswered and zero time.
func Calculate(questions []model.Question, answers []int, questionTimes []time.Duration, totalSeconds int) model.Result {
	details := make([]model.Detail, 0, len(questions))
	correct := 0
	for i, q := range questions {
		answer := model.Unanswered
		if i < len(answers) {
			answer = answers[i]
		}
		var spent time.Duration
		if i < len(questionTimes) {
			spent = questionTimes[i]
		}
		isCorrect := answer != model.Unanswered && answer == q.CorrectAnswer
		if isCorrect {
			correct++
		}
		var userAnswer *int
		if answer != model.Unanswered {
			v := answer
			userAnswer = &v
		}
		details = append(details, model.Detail{
			QuestionIndex: i,
			QuestionWords: append([]string(nil), q.Words...),
			UserAnswer:    userAnswer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     isCorrect,
			TimeSpent:     int(math.Round(spent.Seconds())),
		})
	}
	return model.Result{
		CorrectCount: correct,
		TotalCount:   model.QuestionCount,
		Accuracy:     round1(float64(correct) / model.QuestionCount * 100),
		AvgTime:      round1(float64(totalSeconds) / model.QuestionCount),
		Details:      details,
	}
}

// FormatOneDecimal renders v with one decimal place.
func FormatOneDecimal(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
