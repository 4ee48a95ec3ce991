package dataprocessing

import (
	"math"
	"strconv"
	"strings"
)

// numericStripper removes the decoration the portal puts on numeric cells:
// thousands separators, percent signs, currency signs, and interior spaces
// (including the non-breaking spaces Excel exports sometimes carry).
var numericStripper = strings.NewReplacer(",", "", "%", "", "$", "", " ", "", " ", "")

// ParseNumericCell coerces one raw spreadsheet cell to a number. A cell that
// is empty, a sentinel marker ("NC", "N/A", "--"), or otherwise non-numeric
// after stripping becomes nil, never zero. Non-finite parses are also nil.
func ParseNumericCell(raw string) *float64 {
	cleaned := numericStripper.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
