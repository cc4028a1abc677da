// Package wordlist loads word lists from files or the built-in English list.
package wordlist

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed words_en.txt
var embeddedEnglish string

// Embedded returns the built-in English word list.
func Embedded() []string {
	words, err := readWords(strings.NewReader(embeddedEnglish))
	if err != nil {
		// The embedded list is non-empty; this only guards against a broken build.
		panic(fmt.Sprintf("wordlist: embedded list: %v", err))
	}
	return words
}

// Load returns the words at path, or the built-in list when path is empty.
func Load(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return Embedded(), nil
	}
	return LoadWords(path)
}

// LoadWords reads one word per line from the provided file path.
func LoadWords(path string) ([]string, error) {
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
	words, err := readWords(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read word list %s: %w", path, err)
	}
	return words, nil
}

func readWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}
