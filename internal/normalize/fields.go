package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/joao-fontenele/motormind/internal/domain"
)

// Accepted keys per canonical field, in priority order.
var (
	modelAliases    = []string{"Model", "model", "vehicle", "bike"}
	locationAliases = []string{"location", "Location", "city", "place"}
	colorAliases    = []string{"Color", "color", "colour"}
	uuidAliases     = []string{"uuid", "id", "vehicleId", "vehicle_id"}
	daysAliases     = []string{"deliveryDays", "delivery_days", "days", "delivery"}
)

const etaKey = "eta"

var (
	embeddedObject = regexp.MustCompile(`(?s)\{.*\}`)
	firstInteger   = regexp.MustCompile(`\d+`)
)

func fromObject(obj map[string]any) domain.AllocationOffer {
	offer := domain.AllocationOffer{CustomerRequest: domain.UnknownRequest()}

	if v, ok := firstPresent(obj, modelAliases); ok {
		offer.Model = v
	}
	if v, ok := firstPresent(obj, locationAliases); ok {
		offer.Location = v
	}
	if v, ok := firstPresent(obj, colorAliases); ok {
		offer.Color = v
	}
	if v, ok := firstPresent(obj, uuidAliases); ok {
		offer.UUID = v
	}
	if days, ok := deliveryDays(obj); ok {
		offer.DeliveryDays = days
	}

	return offer
}

// firstPresent returns the first alias holding a non-empty string or a number.
func firstPresent(obj map[string]any, aliases []string) (string, bool) {
	for _, key := range aliases {
		switch v := obj[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s, true
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		}
	}
	return "", false
}

// deliveryDays prefers numeric aliases and falls back to the first integer
// embedded in a free-text eta such as "2 days".
func deliveryDays(obj map[string]any) (int, bool) {
	for _, key := range daysAliases {
		if days, ok := toDays(obj[key]); ok {
			return days, true
		}
	}

	eta, ok := obj[etaKey].(string)
	if !ok {
		return 0, false
	}
	match := firstInteger.FindString(eta)
	if match == "" {
		return 0, false
	}
	days, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return days, true
}

func toDays(v any) (int, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
