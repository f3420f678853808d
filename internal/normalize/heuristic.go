package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/joao-fontenele/motormind/internal/domain"
	"github.com/joao-fontenele/motormind/internal/vocabulary"
)

// extractor holds the ordered pattern families used when the text carries no
// decodable document. For each family the first matching pattern wins.
type extractor struct {
	model    []*regexp.Regexp
	location []*regexp.Regexp
	color    []*regexp.Regexp
	days     []*regexp.Regexp
}

var (
	defaultExtractor *extractor
	extractorOnce    sync.Once
)

func heuristics() *extractor {
	extractorOnce.Do(func() {
		defaultExtractor = newExtractor(vocabulary.Default())
	})
	return defaultExtractor
}

func newExtractor(v *vocabulary.Vocabulary) *extractor {
	return &extractor{
		model: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:model|bike|vehicle)[\s:]*([a-zA-Z0-9\s]+)`),
			regexp.MustCompile(`(?i)(` + vocabulary.Alternation(v.ModelTokens) + `)`),
		},
		location: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:in|at|location)[\s:]*([a-zA-Z\s]+)`),
			regexp.MustCompile(`(?i)(` + vocabulary.Alternation(v.Cities) + `)`),
		},
		color: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:color|colour)[\s:]*([a-zA-Z\s]+)`),
			regexp.MustCompile(`(?i)(` + vocabulary.Alternation(v.Colors) + `)`),
		},
		days: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:within|in|delivery)[\s:]*(\d+)\s*(?:days?|day)`),
			regexp.MustCompile(`(?i)(\d+)\s*(?:days?|day)\s*(?:delivery|time)`),
			regexp.MustCompile(`(?i)(?:eta|delivery)[\s:]*(\d+)\s*(?:days?|day)`),
			regexp.MustCompile(`(?i)"eta"\s*:\s*"(\d+)\s*day"`),
		},
	}
}

func (e *extractor) parse(text string) domain.AllocationOffer {
	offer := domain.AllocationOffer{CustomerRequest: domain.UnknownRequest()}

	if v, ok := firstCapture(e.model, text); ok {
		offer.Model = v
	}
	if v, ok := firstCapture(e.location, text); ok {
		offer.Location = v
	}
	if v, ok := firstCapture(e.color, text); ok {
		offer.Color = v
	}
	for _, re := range e.days {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if days, err := strconv.Atoi(m[1]); err == nil {
			offer.DeliveryDays = days
			break
		}
	}

	return offer
}

// firstCapture returns the trimmed first group of the first pattern whose
// capture is not blank.
func firstCapture(patterns []*regexp.Regexp, text string) (string, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v := strings.TrimSpace(m[1]); v != "" {
			return v, true
		}
	}
	return "", false
}
