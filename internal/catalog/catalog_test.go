package catalog

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/wordtally/internal/model"
)

func testEntries(n int) []model.Word {
	words := make([]model.Word, 0, n)
	for i := 0; i < n; i++ {
		words = append(words, model.Word{Text: fmt.Sprintf("w%02d", i)})
	}
	return words
}

func TestNewDropsBlankAndDuplicateWords(t *testing.T) {
	p := New([]model.Word{
		{Text: "alpha", Synonyms: []string{"a1", " ", "a1", "alpha"}},
		{Text: "  "},
		{Text: "alpha", Category: "other"},
		{Text: "beta", Category: "greek", Similar: []string{"bota"}},
	})
	if p.Len() != 2 {
		t.Fatalf("expected 2 words, got %d", p.Len())
	}
	if got := p.Category("alpha"); got != DefaultCategory {
		t.Fatalf("expected default category for alpha, got %q", got)
	}
	if got := p.Category("beta"); got != "greek" {
		t.Fatalf("expected greek category, got %q", got)
	}
	syn := p.SynonymsOf("alpha")
	if len(syn) != 1 || syn[0] != "a1" {
		t.Fatalf("unexpected synonyms: %v", syn)
	}
	if sim := p.SimilarShapeOf("beta"); len(sim) != 1 || sim[0] != "bota" {
		t.Fatalf("unexpected similar words: %v", sim)
	}
	if got := p.SynonymsOf("missing"); len(got) != 0 {
		t.Fatalf("expected no synonyms for missing word, got %v", got)
	}
}

func TestSampleTable(t *testing.T) {
	p := New(testEntries(40))
	rnd := rand.New(rand.NewSource(1))
	table, err := p.SampleTable(rnd, model.TableSize)
	if err != nil {
		t.Fatalf("SampleTable failed: %v", err)
	}
	if len(table) != model.TableSize {
		t.Fatalf("expected %d words, got %d", model.TableSize, len(table))
	}
	seen := map[string]struct{}{}
	for _, w := range table {
		if !p.Contains(w) {
			t.Fatalf("table word %q not in catalog", w)
		}
		if _, ok := seen[w]; ok {
			t.Fatalf("duplicate table word %q", w)
		}
		seen[w] = struct{}{}
	}
}

func TestSampleTableInsufficientPool(t *testing.T) {
	p := New(testEntries(10))
	_, err := p.SampleTable(rand.New(rand.NewSource(1)), model.TableSize)
	if !errors.Is(err, ErrInsufficientPool) {
		t.Fatalf("expected ErrInsufficientPool, got %v", err)
	}
}

func TestSampleTableIsRoughlyUniform(t *testing.T) {
	p := New(testEntries(4))
	rnd := rand.New(rand.NewSource(7))
	firsts := map[string]int{}
	const rounds = 4000
	for i := 0; i < rounds; i++ {
		table, err := p.SampleTable(rnd, 4)
		if err != nil {
			t.Fatalf("SampleTable failed: %v", err)
		}
		firsts[table[0]]++
	}
	for w, n := range firsts {
		if n < rounds/4-200 || n > rounds/4+200 {
			t.Fatalf("word %s leads %d times out of %d", w, n, rounds)
		}
	}
}

func TestRandomDistractorsExcludes(t *testing.T) {
	p := New(testEntries(8))
	exclude := map[string]struct{}{"w00": {}, "w01": {}, "w02": {}}
	rnd := rand.New(rand.NewSource(3))
	got := p.RandomDistractors(rnd, 3, exclude)
	if len(got) != 3 {
		t.Fatalf("expected 3 distractors, got %d", len(got))
	}
	seen := map[string]struct{}{}
	for _, w := range got {
		if _, ok := exclude[w]; ok {
			t.Fatalf("distractor %q is excluded", w)
		}
		if _, ok := seen[w]; ok {
			t.Fatalf("duplicate distractor %q", w)
		}
		seen[w] = struct{}{}
	}
}

func TestRandomDistractorsShortPool(t *testing.T) {
	p := New(testEntries(4))
	exclude := map[string]struct{}{"w00": {}, "w01": {}}
	got := p.RandomDistractors(rand.New(rand.NewSource(3)), 5, exclude)
	if len(got) != 2 {
		t.Fatalf("expected 2 distractors from a short pool, got %v", got)
	}
	if got := p.RandomDistractors(rand.New(rand.NewSource(3)), 0, nil); len(got) != 0 {
		t.Fatalf("expected no distractors for zero count, got %v", got)
	}
}

func TestDefaults(t *testing.T) {
	words, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults failed: %v", err)
	}
	if len(words) != 105 {
		t.Fatalf("expected 105 default words, got %d", len(words))
	}
	p := New(words)
	if got := p.SynonymsOf("学习"); len(got) != 3 {
		t.Fatalf("expected synonyms for 学习, got %v", got)
	}
}

func TestLoadFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	in := []model.Word{
		{Text: "cat", Category: "animal", Synonyms: []string{"kitty"}, Similar: []string{"cot", "cut"}},
		{Text: "dog"},
	}
	if err := WriteFile(path, in); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	words, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	p := New(words)
	if p.Len() != 2 {
		t.Fatalf("expected 2 words, got %d", p.Len())
	}
	if got := p.SimilarShapeOf("cat"); len(got) != 2 || got[0] != "cot" {
		t.Fatalf("unexpected similar words: %v", got)
	}
	if got := p.Category("dog"); got != DefaultCategory {
		t.Fatalf("expected default category, got %q", got)
	}
}

func TestLoadFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.toml")
	if err := os.WriteFile(path, []byte("# nothing\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected error for empty catalog")
	}
}
