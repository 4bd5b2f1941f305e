package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/wordtally/internal/model"
)

//go:embed defaults.toml
var defaultsTOML string

// File is the TOML catalog format.
type File struct {
	Words []FileWord `toml:"words"`
}

// FileWord is one catalog entry in a TOML catalog file.
type FileWord struct {
	Word     string   `toml:"word"`
	Category string   `toml:"category"`
	Synonyms []string `toml:"synonyms"`
	Similar  []string `toml:"similar"`
}

// LoadFile reads catalog entries from a TOML file.
func LoadFile(path string) ([]model.Word, error) {
	if path == "" {
		return nil, fmt.Errorf("catalog path is empty")
	}
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	words := f.entries()
	if len(words) == 0 {
		return nil, fmt.Errorf("catalog %s has no words", path)
	}
	return words, nil
}

// Defaults returns the built-in catalog.
func Defaults() ([]model.Word, error) {
	var f File
	if _, err := toml.Decode(defaultsTOML, &f); err != nil {
		return nil, fmt.Errorf("failed to decode default catalog: %w", err)
	}
	return f.entries(), nil
}

// WriteFile writes entries as a TOML catalog file.
func WriteFile(path string, words []model.Word) error {
	f := File{Words: make([]FileWord, 0, len(words))}
	for _, w := range words {
		f.Words = append(f.Words, FileWord{
			Word:     w.Text,
			Category: w.Category,
			Synonyms: w.Synonyms,
			Similar:  w.Similar,
		})
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create catalog: %w", err)
	}
	if err := toml.NewEncoder(out).Encode(f); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return out.Close()
}

func (f File) entries() []model.Word {
	words := make([]model.Word, 0, len(f.Words))
	for _, w := range f.Words {
		category := w.Category
		if category == "" {
			category = DefaultCategory
		}
		words = append(words, model.Word{
			Text:     w.Word,
			Category: category,
			Active:   true,
			Synonyms: w.Synonyms,
			Similar:  w.Similar,
		})
	}
	return words
}
