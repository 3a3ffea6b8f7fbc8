package sanitizer

import (
	"math"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func SanitizeCustomerName(input string) string {
	return TrimAndNormalize(input)
}

func SanitizeCategory(input string) string {
	p := Pipeline{
		TrimAndNormalize,
		strings.ToLower,
	}
	return p.Apply(input)
}

func SanitizeRoomNumber(input string) string {
	p := Pipeline{
		removeSpaces,
		strings.ToUpper,
	}
	return p.Apply(input)
}

// SanitizePrice rounds to cents. Negative values are kept for validation to reject.
func SanitizePrice(price float64) float64 {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return -1
	}
	return math.Round(price*100) / 100
}
