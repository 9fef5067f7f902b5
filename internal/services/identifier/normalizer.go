// Package identifier canonicalizes user queries into security codes or name fragments.
package identifier

import (
	"strings"
	"unicode"

	"StockPulse/internal/domain/models"
)

// Normalize trims q and zero-pads short all-digit input to the canonical code width.
// Anything else passes through as a name fragment. Normalize never fails and
// Normalize(Normalize(q).Value).Value == Normalize(q).Value.
func Normalize(q string) models.NormalizedIdentifier {
	raw := strings.TrimFunc(q, unicode.IsSpace)
	v := raw
	if isDigits(v) && len(v) < models.CodeWidth {
		v = strings.Repeat("0", models.CodeWidth-len(v)) + v
	}
	return models.NormalizedIdentifier{
		Raw:    raw,
		Value:  v,
		IsCode: len(v) == models.CodeWidth && isDigits(v),
	}
}

// isDigits reports whether s is non-empty and ASCII digits only.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
