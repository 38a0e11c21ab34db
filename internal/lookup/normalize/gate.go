package normalize

import (
	"regexp"
	"strings"

	"rcgateway/internal/lookup/models"
)

// Data-quality gate. Both checks are pure; the orchestrator treats a record
// failing either one as a soft failure and continues down the chain.

// maskRunPattern matches three or more consecutive x characters, the other
// common redaction style besides asterisks.
var maskRunPattern = regexp.MustCompile(`(?i)x{3,}`)

// maskMarkers are substrings that indicate a deliberately redacted owner
// name: asterisks, bullets, and the mojibake a UTF-8 bullet turns into when
// a provider double-encodes it.
var maskMarkers = []string{"*", "•", "â€¢"}

// IsMaskedName reports whether an owner name has been redacted by the
// provider. Masked records are structurally valid but must not be delivered.
func IsMaskedName(name string) bool {
	for _, marker := range maskMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return maskRunPattern.MatchString(name)
}

// IsComplete reports whether a record carries enough substance to deliver:
// maker and fuel type must both be non-empty.
func IsComplete(rec *models.Record) bool {
	if rec == nil {
		return false
	}
	return rec.Maker != "" && rec.FuelType != ""
}

// Usable combines both gate checks.
func Usable(rec *models.Record) bool {
	return IsComplete(rec) && !IsMaskedName(rec.OwnerName)
}
