// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Session shape.
const (
	TableSize        = 15
	QuestionCount    = 10
	WordsPerQuestion = 5
	MaxCorrect       = 4
)

// Unanswered marks a question without a selected answer.
const Unanswered = -1

// DefaultUserID owns records when no user is configured.
const DefaultUserID = "default"

// Difficulty selects the distractor policy.
type Difficulty string

// Supported difficulties.
const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties lists the supported difficulties in increasing order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// ParseDifficulty parses a difficulty name case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case Easy:
		return Easy, nil
	case Medium:
		return Medium, nil
	case Hard:
		return Hard, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q (want easy, medium or hard)", s)
	}
}

// Word is a catalog entry with its relations.
type Word struct {
	ID        string
	Text      string
	Category  string
	Active    bool
	Synonyms  []string
	Similar   []string
	CreatedAt time.Time
}

// Question is one generated question.
type Question struct {
	Index          int
	Words          []string
	CorrectAnswer  int
	WordsFromTable []string
	Distractors    []string
}

// Detail is the per-question outcome of a submitted session.
type Detail struct {
	QuestionIndex int      `json:"questionIndex"`
	QuestionWords []string `json:"questionWords"`
	UserAnswer    *int     `json:"userAnswer"`
	CorrectAnswer int      `json:"correctAnswer"`
	IsCorrect     bool     `json:"isCorrect"`
	TimeSpent     int      `json:"timeSpent"`
}

// Result is the scored report of a session.
type Result struct {
	CorrectCount int
	TotalCount   int
	Accuracy     float64
	AvgTime      float64
	Details      []Detail
}

// Record is what a submitted session emits to a record sink.
type Record struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Difficulty   Difficulty `json:"difficulty"`
	TableWords   []string   `json:"tableWords"`
	Accuracy     float64    `json:"accuracy"`
	CorrectCount int        `json:"correctCount"`
	TotalTime    int        `json:"totalTime"`
	AvgTime      float64    `json:"avgTime"`
	Details      []Detail   `json:"details"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// RecordSummary is a stored record without its details.
type RecordSummary struct {
	ID           string
	UserID       string
	Difficulty   Difficulty
	TableWords   []string
	Accuracy     float64
	CorrectCount int
	TotalTime    int
	AvgTime      float64
	CreatedAt    time.Time
}

// RecordFilter narrows record listings.
type RecordFilter struct {
	UserID string
	Since  *time.Time
	Until  *time.Time
	Limit  int
	Offset int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	UserID      string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// OverallStats aggregates every record of a user.
type OverallStats struct {
	Sessions        int
	AvgAccuracy     float64
	AvgTotalTime    float64
	AvgQuestionTime float64
	BestAccuracy    float64
	BestTime        int
}

// RecentStats aggregates the records of the last week.
type RecentStats struct {
	Sessions     int
	AvgAccuracy  float64
	AvgTotalTime float64
}

// DifficultyStats aggregates records of one difficulty.
type DifficultyStats struct {
	Difficulty  Difficulty
	Count       int
	AvgAccuracy float64
}

// UserStats is the stats summary of a user.
type UserStats struct {
	UserID       string
	Overall      OverallStats
	RecentWeek   RecentStats
	ByDifficulty []DifficultyStats
}
