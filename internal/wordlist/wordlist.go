// Package wordlist loads plain-text word lists into catalog entries.
package wordlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/verte-zerg/wordtally/internal/model"
)

// LoadWords reads a word list file. Each non-empty line holds a word, optionally followed
// by tab-separated comma lists of synonyms and similar-looking words. Lines starting with
// '#' are comments.
func LoadWords(path string) ([]model.Word, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	words, err := ReadWords(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}

// ReadWords parses a word list from r.
func ReadWords(r io.Reader) ([]model.Word, error) {
	var words []model.Word
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) > 3 {
			return nil, fmt.Errorf("line %d: expected at most 3 tab-separated fields, got %d", lineNo, len(fields))
		}
		w := model.Word{Text: strings.TrimSpace(fields[0])}
		if w.Text == "" {
			return nil, fmt.Errorf("line %d: missing word", lineNo)
		}
		if len(fields) > 1 {
			w.Synonyms = splitList(fields[1])
		}
		if len(fields) > 2 {
			w.Similar = splitList(fields[2])
		}
		words = append(words, w)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}

func splitList(field string) []string {
	var out []string
	for _, part := range strings.Split(field, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
