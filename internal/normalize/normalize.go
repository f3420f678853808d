// Package normalize turns untrusted oracle output into canonical request and
// offer records. It never fails: text that cannot be understood yields the
// sentinel values defined in the domain package.
package normalize

import (
	"encoding/json"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/joao-fontenele/motormind/internal/domain"
)

// Tier identifies which parsing strategy produced a record.
type Tier int

const (
	TierDirect Tier = iota + 1
	TierEmbedded
	TierHeuristic
)

func (t Tier) String() string {
	switch t {
	case TierDirect:
		return "direct"
	case TierEmbedded:
		return "embedded"
	case TierHeuristic:
		return "heuristic"
	default:
		return "unknown"
	}
}

// Degraded reports whether the record had to be recovered heuristically.
func (t Tier) Degraded() bool {
	return t == TierHeuristic
}

// Parse canonicalizes raw oracle text. Each tier reparses the whole text;
// fields are never merged across tiers.
func Parse(raw string) (domain.AllocationOffer, Tier) {
	if obj, ok := decodeObject(raw); ok {
		return finalize(fromObject(obj)), TierDirect
	}

	if span := embeddedObject.FindString(raw); span != "" {
		if obj, ok := decodeObject(span); ok {
			return finalize(fromObject(obj)), TierEmbedded
		}
	}

	return finalize(heuristics().parse(raw)), TierHeuristic
}

// Offer returns the canonical allocation offer contained in raw.
func Offer(raw string) domain.AllocationOffer {
	offer, _ := Parse(raw)
	return offer
}

// Request returns the canonical customer request contained in raw.
func Request(raw string) domain.CustomerRequest {
	return Offer(raw).CustomerRequest
}

func decodeObject(text string) (map[string]any, bool) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}

// finalize guarantees every field carries a usable value whatever tier ran.
func finalize(offer domain.AllocationOffer) domain.AllocationOffer {
	offer.Model = canonicalText(offer.Model)
	offer.Location = canonicalText(offer.Location)
	offer.Color = canonicalText(offer.Color)
	if offer.DeliveryDays < 0 {
		offer.DeliveryDays = domain.DefaultDeliveryDays
	}
	offer.UUID = strings.TrimSpace(offer.UUID)
	return offer
}

// canonicalText collapses whitespace and upper-cases the first letter of
// each word, leaving the rest untouched so acronyms such as KTM survive.
func canonicalText(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return domain.Unknown
	}

	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
