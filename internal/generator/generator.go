// Package generator builds session tables and questions.
package generator

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/verte-zerg/wordtally/internal/catalog"
	"github.com/verte-zerg/wordtally/internal/model"
)

// ErrInvalidTable is returned when a table is not TableSize distinct catalog words.
var ErrInvalidTable = errors.New("invalid table")

// Generator produces randomized tables and questions from a catalog pool.
type Generator struct {
	rnd  *rand.Rand
	pool *catalog.Pool
}

// New returns a Generator seeded with the current time.
func New(pool *catalog.Pool) *Generator {
	return NewWithRand(pool, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand returns a Generator using the given random source.
func NewWithRand(pool *catalog.Pool, rnd *rand.Rand) *Generator {
	return &Generator{rnd: rnd, pool: pool}
}

// Table draws a session table from the pool.
func (g *Generator) Table(size int) ([]string, error) {
	return g.pool.SampleTable(g.rnd, size)
}

// Generate builds QuestionCount questions for the table. Every correct count 0..MaxCorrect
// is used exactly twice; the assignment is fixed before any question is built.
func (g *Generator) Generate(table []string, difficulty model.Difficulty) ([]model.Question, error) {
	tableSet, err := g.validateTable(table)
	if err != nil {
		return nil, err
	}
	if _, err := model.ParseDifficulty(string(difficulty)); err != nil {
		return nil, err
	}

	counts := g.distributeCorrectCounts()
	questions := make([]model.Question, 0, model.QuestionCount)
	for i, k := range counts {
		q, err := g.buildQuestion(i, k, table, tableSet, difficulty)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (g *Generator) validateTable(table []string) (map[string]struct{}, error) {
	if len(table) != model.TableSize {
		return nil, fmt.Errorf("%w: expected %d words, got %d", ErrInvalidTable, model.TableSize, len(table))
	}
	set := make(map[string]struct{}, len(table))
	for _, w := range table {
		if _, ok := set[w]; ok {
			return nil, fmt.Errorf("%w: duplicate word %q", ErrInvalidTable, w)
		}
		if !g.pool.Contains(w) {
			return nil, fmt.Errorf("%w: %q is not a catalog word", ErrInvalidTable, w)
		}
		set[w] = struct{}{}
	}
	return set, nil
}

func (g *Generator) distributeCorrectCounts() []int {
	counts := make([]int, 0, model.QuestionCount)
	for k := 0; k <= model.MaxCorrect; k++ {
		counts = append(counts, k, k)
	}
	g.rnd.Shuffle(len(counts), func(i, j int) {
		counts[i], counts[j] = counts[j], counts[i]
	})
	return counts
}

func (g *Generator) buildQuestion(index, correct int, table []string, tableSet map[string]struct{}, difficulty model.Difficulty) (model.Question, error) {
	fromTable := catalog.TakeRandom(g.rnd, append([]string(nil), table...), correct)

	need := model.WordsPerQuestion - correct
	distractors := g.distractors(fromTable, need, difficulty, tableSet)
	if len(distractors) < need {
		return model.Question{}, fmt.Errorf("%w: question %d needs %d distractors, found %d",
			catalog.ErrInsufficientPool, index+1, need, len(distractors))
	}

	words := make([]string, 0, model.WordsPerQuestion)
	words = append(words, fromTable...)
	words = append(words, distractors...)
	g.rnd.Shuffle(len(words), func(i, j int) {
		words[i], words[j] = words[j], words[i]
	})

	return model.Question{
		Index:          index,
		Words:          words,
		CorrectAnswer:  correct,
		WordsFromTable: fromTable,
		Distractors:    distractors,
	}, nil
}

// distractors applies the difficulty policy. Relations are taken from the chosen table
// words only; every stage excludes the table and everything picked before it.
func (g *Generator) distractors(chosen []string, count int, difficulty model.Difficulty, tableSet map[string]struct{}) []string {
	if count <= 0 {
		return nil
	}
	used := make(map[string]struct{}, len(tableSet)+count)
	for w := range tableSet {
		used[w] = struct{}{}
	}

	var picked []string
	take := func(source func(string) []string) {
		remaining := count - len(picked)
		if remaining <= 0 {
			return
		}
		candidates := relatedWords(chosen, source, used)
		for _, w := range catalog.TakeRandom(g.rnd, candidates, remaining) {
			used[w] = struct{}{}
			picked = append(picked, w)
		}
	}

	switch difficulty {
	case model.Medium:
		take(g.pool.SynonymsOf)
	case model.Hard:
		take(g.pool.SimilarShapeOf)
		take(g.pool.SynonymsOf)
	}
	if remaining := count - len(picked); remaining > 0 {
		picked = append(picked, g.pool.RandomDistractors(g.rnd, remaining, used)...)
	}
	return picked
}

func relatedWords(chosen []string, source func(string) []string, used map[string]struct{}) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, word := range chosen {
		for _, rel := range source(word) {
			if _, ok := used[rel]; ok {
				continue
			}
			if _, ok := seen[rel]; ok {
				continue
			}
			seen[rel] = struct{}{}
			out = append(out, rel)
		}
	}
	return out
}
