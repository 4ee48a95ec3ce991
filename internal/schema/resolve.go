package schema

import (
	"fmt"
	"strings"
)

// maxHeaderScan bounds how many leading rows are searched for the header row.
// Portal extracts put titles and district banners above it, never this deep.
const maxHeaderScan = 10

// Ambiguity records a column rule that matched more than one header cell.
// The leftmost match is used; the rest are surfaced in the quality report.
type Ambiguity struct {
	Field      Field
	Chosen     string
	Candidates []string
}

// Resolution is the outcome of matching one source schema against one sheet.
type Resolution struct {
	HeaderRow   int
	Columns     map[Field]int
	Headers     map[Field]string
	Ambiguities []Ambiguity
}

// SelectSheet picks the sheet to parse. Sheet names are matched
// case-insensitively against the schema's aliases in workbook order; when
// nothing matches, the first sheet is used and fellBack reports it so the
// caller can record the fallback.
func SelectSheet(s SourceSchema, sheetNames []string) (name string, fellBack bool, err error) {
	if len(sheetNames) == 0 {
		return "", false, fmt.Errorf("workbook contains no sheets")
	}
	for _, sheet := range sheetNames {
		lower := strings.ToLower(sheet)
		for _, alias := range s.SheetAliases {
			if strings.Contains(lower, strings.ToLower(alias)) {
				return sheet, false, nil
			}
		}
	}
	return sheetNames[0], true, nil
}

// Resolve scans the leading rows of a sheet for the header row, the first row
// where every required column rule matches at least one cell, and returns the
// fixed field-to-column mapping used for all data rows below it.
func Resolve(s SourceSchema, rows [][]string) (*Resolution, error) {
	limit := len(rows)
	if limit > maxHeaderScan {
		limit = maxHeaderScan
	}

	for i := 0; i < limit; i++ {
		res, ok := resolveHeader(s, rows[i])
		if ok {
			res.HeaderRow = i
			return res, nil
		}
	}
	return nil, fmt.Errorf("no row within the first %d resolves all required columns for %s/%s",
		limit, s.Category, s.Year)
}

// resolveHeader matches the schema's column rules against one candidate
// header row. ok is false when any required field has no matching cell.
func resolveHeader(s SourceSchema, header []string) (*Resolution, bool) {
	res := &Resolution{
		Columns: make(map[Field]int, len(s.Columns)),
		Headers: make(map[Field]string, len(s.Columns)),
	}

	for _, rule := range s.Columns {
		candidates := matchCells(header, rule.Aliases)
		if len(candidates) == 0 {
			if rule.Required {
				return nil, false
			}
			continue
		}

		// Deterministic first match: leftmost column wins.
		chosen := candidates[0]
		res.Columns[rule.Field] = chosen
		res.Headers[rule.Field] = strings.TrimSpace(header[chosen])

		if len(candidates) > 1 {
			names := make([]string, 0, len(candidates))
			for _, c := range candidates {
				names = append(names, strings.TrimSpace(header[c]))
			}
			res.Ambiguities = append(res.Ambiguities, Ambiguity{
				Field:      rule.Field,
				Chosen:     names[0],
				Candidates: names,
			})
		}
	}
	return res, true
}

// matchCells returns the indexes of header cells containing any alias,
// case-insensitively, in column order.
func matchCells(header []string, aliases []string) []int {
	var out []int
	for i, cell := range header {
		lower := strings.ToLower(strings.TrimSpace(cell))
		if lower == "" {
			continue
		}
		for _, alias := range aliases {
			if strings.Contains(lower, strings.ToLower(alias)) {
				out = append(out, i)
				break
			}
		}
	}
	return out
}
