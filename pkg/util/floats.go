package util

import (
	"strconv"
	"strings"
)

// ParseOptionalFloat parses s as a float. Upstream placeholders ("", "-", "--", "N/A")
// and unparsable text yield nil.
func ParseOptionalFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "", "-", "--", "N/A":
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return nil
	}
	return &v
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
