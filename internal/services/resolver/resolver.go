// Package resolver picks the snapshot row a normalized query refers to.
package resolver

import (
	"strings"

	"StockPulse/internal/domain/models"
)

// Resolve returns the record matching id. A 6-digit code is first looked up
// exactly; otherwise the first row whose code or name contains the query wins.
// Matching is case-sensitive and follows snapshot order.
func Resolve(snapshot []models.SecurityRecord, id models.NormalizedIdentifier) (models.SecurityRecord, bool) {
	q := id.Value
	if q == "" {
		return models.SecurityRecord{}, false
	}

	if id.IsCode {
		for _, r := range snapshot {
			if r.Code == q {
				return r, true
			}
		}
	}

	for _, r := range snapshot {
		if strings.Contains(r.Code, q) || strings.Contains(r.Name, q) {
			return r, true
		}
	}
	return models.SecurityRecord{}, false
}
