// Package catalog holds the word pool sessions draw from.
package catalog

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/verte-zerg/wordtally/internal/model"
)

// DefaultCategory is used for words without a category.
const DefaultCategory = "general"

// ErrInsufficientPool is returned when the catalog cannot supply enough words.
var ErrInsufficientPool = errors.New("insufficient word pool")

// Pool is an immutable snapshot of the word catalog. It is safe for concurrent readers;
// callers supply their own random source.
type Pool struct {
	words    []string
	category map[string]string
	synonyms map[string][]string
	similar  map[string][]string
}

// New builds a pool from catalog entries. Blank and repeated words are dropped.
func New(entries []model.Word) *Pool {
	p := &Pool{
		words:    make([]string, 0, len(entries)),
		category: make(map[string]string, len(entries)),
		synonyms: map[string][]string{},
		similar:  map[string][]string{},
	}
	for _, entry := range entries {
		word := strings.TrimSpace(entry.Text)
		if word == "" {
			continue
		}
		if _, ok := p.category[word]; ok {
			continue
		}
		category := strings.TrimSpace(entry.Category)
		if category == "" {
			category = DefaultCategory
		}
		p.words = append(p.words, word)
		p.category[word] = category
		if syn := cleanList(entry.Synonyms, word); len(syn) > 0 {
			p.synonyms[word] = syn
		}
		if sim := cleanList(entry.Similar, word); len(sim) > 0 {
			p.similar[word] = sim
		}
	}
	return p
}

func cleanList(values []string, self string) []string {
	out := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || v == self {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Len returns the number of catalog words.
func (p *Pool) Len() int {
	return len(p.words)
}

// Words returns the catalog words in insertion order.
func (p *Pool) Words() []string {
	return append([]string(nil), p.words...)
}

// Contains reports whether word is a catalog word.
func (p *Pool) Contains(word string) bool {
	_, ok := p.category[word]
	return ok
}

// Category returns the category of word, or "" when absent.
func (p *Pool) Category(word string) string {
	return p.category[word]
}

// SynonymsOf returns the ordered synonyms of word.
func (p *Pool) SynonymsOf(word string) []string {
	return append([]string{}, p.synonyms[word]...)
}

// SimilarShapeOf returns the ordered visually-similar words of word.
func (p *Pool) SimilarShapeOf(word string) []string {
	return append([]string{}, p.similar[word]...)
}

// SampleTable returns size distinct catalog words in uniformly random order.
func (p *Pool) SampleTable(rnd *rand.Rand, size int) ([]string, error) {
	if size < 0 {
		return nil, fmt.Errorf("table size must be >= 0, got %d", size)
	}
	if len(p.words) < size {
		return nil, fmt.Errorf("%w: need %d words, catalog has %d", ErrInsufficientPool, size, len(p.words))
	}
	shuffled := p.Words()
	rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:size], nil
}

// RandomDistractors draws up to count distinct catalog words outside exclude. A short
// result means the remaining pool is smaller than count.
func (p *Pool) RandomDistractors(rnd *rand.Rand, count int, exclude map[string]struct{}) []string {
	if count <= 0 {
		return nil
	}
	candidates := make([]string, 0, len(p.words))
	for _, w := range p.words {
		if _, ok := exclude[w]; ok {
			continue
		}
		candidates = append(candidates, w)
	}
	return TakeRandom(rnd, candidates, count)
}

// TakeRandom returns up to n elements of values chosen uniformly without replacement,
// in random order. values is reordered in place.
func TakeRandom(rnd *rand.Rand, values []string, n int) []string {
	if n > len(values) {
		n = len(values)
	}
	for i := 0; i < n; i++ {
		j := i + rnd.Intn(len(values)-i)
		values[i], values[j] = values[j], values[i]
	}
	return append([]string(nil), values[:n]...)
}
