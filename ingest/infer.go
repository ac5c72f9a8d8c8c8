package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

// inferColumnType picks the narrowest type every non-null value of column
// col parses as: int64, then float64, then boolean, falling back to string.
// A column with rows but no values is float64; a column without rows is string.
func inferColumnType(rows [][]string, col int, nulls []string) arrow.DataType {
	allInt, allFloat, allBool := true, true, true
	seen := 0

	for _, row := range rows {
		if col >= len(row) || isNullToken(row[col], nulls) {
			continue
		}
		v := row[col]
		seen++

		if allInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				allInt = false
			}
		}
		if allFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				allFloat = false
			}
		}
		if allBool && !isBoolToken(v) {
			allBool = false
		}
		if !allInt && !allFloat && !allBool {
			return arrow.BinaryTypes.String
		}
	}

	switch {
	case seen == 0 && len(rows) > 0:
		return arrow.PrimitiveTypes.Float64
	case seen == 0:
		return arrow.BinaryTypes.String
	case allInt:
		return arrow.PrimitiveTypes.Int64
	case allFloat:
		return arrow.PrimitiveTypes.Float64
	case allBool:
		return arrow.FixedWidthTypes.Boolean
	}
	return arrow.BinaryTypes.String
}

func isNullToken(v string, nulls []string) bool {
	for _, n := range nulls {
		if v == n {
			return true
		}
	}
	return false
}

// isBoolToken accepts the spellings of true/false that are unambiguous
// booleans; "1", "0", "t" and "f" are left to the other types.
func isBoolToken(v string) bool {
	switch v {
	case "true", "True", "TRUE", "false", "False", "FALSE":
		return true
	}
	return false
}

// normalizeHeader makes column names non-empty and unique. Empty names become
// "Unnamed: <i>" and repeats get a ".<n>" suffix.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))

	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		candidate := name
		for n := 1; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s.%d", name, n)
		}
		used[candidate] = true
		out[i] = candidate
	}
	return out
}
