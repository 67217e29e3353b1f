package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// TitleKey is the comparison key for titles: trimmed and Unicode case-folded.
// It is shared by duplicate detection and dataset lookups.
func TitleKey(title string) string {
	return cases.Fold().String(strings.TrimSpace(title))
}
