package inventory

import (
	"regexp"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/joao-fontenele/motormind/internal/domain"
	"github.com/joao-fontenele/motormind/internal/vocabulary"
)

// Matcher finds stocked vehicles whose model resembles a search term.
type Matcher struct {
	brands     *regexp.Regexp
	qualifiers *regexp.Regexp
	families   []string
}

var (
	defaultMatcher *Matcher
	matcherOnce    sync.Once
)

// DefaultMatcher returns a matcher built from the embedded vocabulary.
func DefaultMatcher() *Matcher {
	matcherOnce.Do(func() {
		defaultMatcher = NewMatcher(vocabulary.Default())
	})
	return defaultMatcher
}

func NewMatcher(v *vocabulary.Vocabulary) *Matcher {
	families := make([]string, len(v.Families))
	for i, f := range v.Families {
		families[i] = strings.ToLower(f)
	}

	return &Matcher{
		brands:     regexp.MustCompile(`\b(?:` + vocabulary.Alternation(v.Brands) + `)\b`),
		qualifiers: regexp.MustCompile(`\b(?:` + vocabulary.Alternation(v.Qualifiers) + `)\b`),
		families:   families,
	}
}

func normalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Patterns derives the substrings a model must contain to match term: the
// term itself, its core tokens once brands and qualifiers are removed, and
// any known model family it mentions.
func (m *Matcher) Patterns(term string) []string {
	clean := normalizeTerm(term)
	if clean == "" {
		return nil
	}

	patterns := []string{clean}
	add := func(p string) {
		if !slices.Contains(patterns, p) {
			patterns = append(patterns, p)
		}
	}

	core := m.qualifiers.ReplaceAllString(m.brands.ReplaceAllString(clean, ""), "")
	for _, token := range strings.Fields(core) {
		if utf8.RuneCountInString(token) > 2 {
			add(token)
		}
	}

	for _, family := range m.families {
		if strings.Contains(clean, family) {
			add(family)
		}
	}

	return patterns
}

// FindSimilar returns the in-stock candidates matching any pattern of term,
// most relevant first.
func (m *Matcher) FindSimilar(term string, candidates []domain.Vehicle) []domain.Vehicle {
	patterns := m.Patterns(term)

	matches := []domain.Vehicle{}
	for _, v := range candidates {
		if v.Stock < 1 {
			continue
		}
		model := strings.ToLower(v.Model)
		for _, p := range patterns {
			if strings.Contains(model, p) {
				matches = append(matches, v)
				break
			}
		}
	}

	SortByRelevance(matches, term)
	return matches
}

// SortByRelevance orders vehicles by how closely their model matches term:
// exact match, then prefix, then substring, then alphabetical.
func SortByRelevance(vehicles []domain.Vehicle, term string) {
	clean := normalizeTerm(term)
	slices.SortFunc(vehicles, func(a, b domain.Vehicle) int {
		return compareRelevance(a, b, clean)
	})
}

var relevanceTiers = []func(model, term string) bool{
	func(model, term string) bool { return model == term },
	strings.HasPrefix,
	strings.Contains,
}

// compareRelevance is a strict total order. term must already be normalized.
func compareRelevance(a, b domain.Vehicle, term string) int {
	am, bm := strings.ToLower(a.Model), strings.ToLower(b.Model)

	for _, tier := range relevanceTiers {
		at, bt := tier(am, term), tier(bm, term)
		if at != bt {
			if at {
				return -1
			}
			return 1
		}
	}

	if c := strings.Compare(am, bm); c != 0 {
		return c
	}
	if c := strings.Compare(a.Model, b.Model); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}
