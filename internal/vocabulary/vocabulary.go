// Package vocabulary holds the closed word lists used to recognize vehicle
// models, cities and colors in free text.
package vocabulary

import (
	_ "embed"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabularyYAML []byte

type Vocabulary struct {
	ModelTokens []string `yaml:"model_tokens"`
	Brands      []string `yaml:"brands"`
	Qualifiers  []string `yaml:"qualifiers"`
	Families    []string `yaml:"families"`
	Cities      []string `yaml:"cities"`
	Colors      []string `yaml:"colors"`
}

var (
	defaultVocabulary *Vocabulary
	defaultOnce       sync.Once
	defaultErr        error
)

// Parse decodes a vocabulary document. Every list must be non-empty.
func Parse(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}

	lists := map[string][]string{
		"model_tokens": v.ModelTokens,
		"brands":       v.Brands,
		"qualifiers":   v.Qualifiers,
		"families":     v.Families,
		"cities":       v.Cities,
		"colors":       v.Colors,
	}
	for name, list := range lists {
		if len(list) == 0 {
			return nil, fmt.Errorf("parse vocabulary: %s is empty", name)
		}
	}

	return &v, nil
}

// Default returns the embedded vocabulary. It panics if the embedded
// document is invalid, which can only happen at build time.
func Default() *Vocabulary {
	defaultOnce.Do(func() {
		defaultVocabulary, defaultErr = Parse(defaultVocabularyYAML)
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultVocabulary
}

// Alternation builds a regular expression alternation of the quoted words,
// longest first so that multi-word entries win over their prefixes.
func Alternation(words []string) string {
	sorted := slices.Clone(words)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return len(b) - len(a)
	})

	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(w))
	}
	return strings.Join(quoted, "|")
}
