// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package filter parses the preview search box into row filters.
//
// A query is a list of conditions joined with AND / OR (case-insensitive,
// AND binds tighter than OR):
//
//	region = north and sales >= 100 or returned = true
//
// Supported operators are =, !=, >, <, >=, <= and ~ (contains). A bare word
// without an operator searches every column.
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"dataviz/datatable"
)

// Op is a comparison operator.
type Op int

const (
	OpEqual Op = iota
	OpNotEqual
	OpGreater
	OpLess
	OpGreaterEqual
	OpLessEqual
	OpContains
)

var opSymbols = []struct {
	op     Op
	symbol string
}{
	// longest symbols first so ">=" is not read as ">"
	{OpGreaterEqual, ">="},
	{OpLessEqual, "<="},
	{OpNotEqual, "!="},
	{OpEqual, "="},
	{OpGreater, ">"},
	{OpLess, "<"},
	{OpContains, "~"},
}

func (op Op) String() string {
	for _, s := range opSymbols {
		if s.op == op {
			return s.symbol
		}
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// LogicOp represents a logical operator for combining filters.
type LogicOp int

const (
	// LogicAND requires all filters to pass.
	LogicAND LogicOp = iota
	// LogicOR requires at least one filter to pass.
	LogicOR
)

// String returns the string representation of a LogicOp.
func (op LogicOp) String() string {
	switch op {
	case LogicAND:
		return "AND"
	case LogicOR:
		return "OR"
	default:
		return fmt.Sprintf("unknown(%d)", op)
	}
}

// Condition compares one column against a literal. An empty Column searches
// every column for Value.
type Condition struct {
	Column string
	Op     Op
	Value  string
}

// Composite combines filters with AND or OR logic.
type Composite struct {
	Filters []datatable.Filter
	Logic   LogicOp
}

var (
	_ datatable.Filter = Condition{}
	_ datatable.Filter = (*Composite)(nil)
)

// All returns a filter that passes when every filter passes.
func All(filters ...datatable.Filter) *Composite {
	return &Composite{Filters: filters, Logic: LogicAND}
}

// Any returns a filter that passes when at least one filter passes.
func Any(filters ...datatable.Filter) *Composite {
	return &Composite{Filters: filters, Logic: LogicOR}
}

// Evaluate implements datatable.Filter.
func (f *Composite) Evaluate(row []datatable.Value, columnNames []string) (bool, error) {
	if len(f.Filters) == 0 {
		return true, nil
	}

	switch f.Logic {
	case LogicAND:
		for _, sub := range f.Filters {
			passes, err := sub.Evaluate(row, columnNames)
			if err != nil || !passes {
				return false, err
			}
		}
		return true, nil
	case LogicOR:
		for _, sub := range f.Filters {
			passes, err := sub.Evaluate(row, columnNames)
			if err != nil {
				return false, err
			}
			if passes {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("%w: unknown logic operator %d", datatable.ErrInvalidFilter, f.Logic)
	}
}

// Description implements datatable.Filter.
func (f *Composite) Description() string {
	if len(f.Filters) == 0 {
		return "empty filter"
	}
	parts := make([]string, len(f.Filters))
	for i, sub := range f.Filters {
		parts[i] = sub.Description()
	}
	return "(" + strings.Join(parts, " "+f.Logic.String()+" ") + ")"
}

// Evaluate implements datatable.Filter.
func (c Condition) Evaluate(row []datatable.Value, columnNames []string) (bool, error) {
	if c.Column == "" {
		needle := strings.ToLower(c.Value)
		for _, cell := range row {
			if strings.Contains(strings.ToLower(cell.Formatted), needle) {
				return true, nil
			}
		}
		return false, nil
	}

	col := indexOf(columnNames, c.Column)
	if col < 0 || col >= len(row) {
		return false, fmt.Errorf("%w: unknown column: %s", datatable.ErrInvalidFilter, c.Column)
	}
	cell := row[col]
	if cell.IsNull {
		return c.Op == OpNotEqual, nil
	}

	if c.Op == OpContains {
		return strings.Contains(strings.ToLower(cell.Formatted), strings.ToLower(c.Value)), nil
	}

	cmp := compareCell(cell, c.Value)
	switch c.Op {
	case OpEqual:
		return cmp == 0, nil
	case OpNotEqual:
		return cmp != 0, nil
	case OpGreater:
		return cmp > 0, nil
	case OpLess:
		return cmp < 0, nil
	case OpGreaterEqual:
		return cmp >= 0, nil
	case OpLessEqual:
		return cmp <= 0, nil
	}
	return false, fmt.Errorf("%w: unknown operator %d", datatable.ErrInvalidFilter, c.Op)
}

// Description implements datatable.Filter.
func (c Condition) Description() string {
	if c.Column == "" {
		return fmt.Sprintf("any ~ %q", c.Value)
	}
	return fmt.Sprintf("%s %s %q", c.Column, c.Op, c.Value)
}

// compareCell compares numerically when the cell is numeric and the literal
// parses as a number, and case-insensitively as text otherwise.
func compareCell(cell datatable.Value, literal string) int {
	if f, ok := cell.Float(); ok {
		if lit, err := strconv.ParseFloat(strings.TrimSpace(literal), 64); err == nil {
			switch {
			case f < lit:
				return -1
			case f > lit:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(strings.ToLower(cell.Formatted), strings.ToLower(literal))
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return i
		}
	}
	return -1
}

// Parse turns a query string into a filter over the given columns.
// An empty query returns a nil filter, which keeps every row.
func Parse(query string, columns []string) (datatable.Filter, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	parts := splitByLogicOps(query)
	var (
		groups  []datatable.Filter
		current []datatable.Filter
		expect  = true // expecting a condition, not an operator
	)

	for _, part := range parts {
		if part.isOperator {
			if expect {
				return nil, fmt.Errorf("%w: unexpected %s", datatable.ErrInvalidFilter, part.text)
			}
			if part.text == "OR" {
				groups = append(groups, group(current))
				current = nil
			}
			expect = true
			continue
		}

		cond, err := parseCondition(part.text, columns)
		if err != nil {
			return nil, err
		}
		current = append(current, cond)
		expect = false
	}

	if expect {
		return nil, fmt.Errorf("%w: query ends with an operator", datatable.ErrInvalidFilter)
	}
	groups = append(groups, group(current))

	if len(groups) == 1 {
		return groups[0], nil
	}
	return Any(groups...), nil
}

func group(conds []datatable.Filter) datatable.Filter {
	if len(conds) == 1 {
		return conds[0]
	}
	return All(conds...)
}

type queryPart struct {
	text       string
	isOperator bool
}

// splitByLogicOps splits the query on whitespace-delimited AND/OR outside
// quotes, keeping the operators as parts of their own.
func splitByLogicOps(query string) []queryPart {
	var (
		parts   []queryPart
		current strings.Builder
		quote   rune
	)

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			parts = append(parts, queryPart{text: s})
		}
		current.Reset()
	}

	for _, field := range splitKeepingSpaces(query) {
		if quote == 0 && !isSpace(field) {
			if up := strings.ToUpper(field); up == "AND" || up == "OR" {
				flush()
				parts = append(parts, queryPart{text: up, isOperator: true})
				continue
			}
		}
		for _, r := range field {
			switch {
			case quote == 0 && (r == '"' || r == '\''):
				quote = r
			case r == quote:
				quote = 0
			}
		}
		current.WriteString(field)
	}
	flush()
	return parts
}

// splitKeepingSpaces splits s into alternating runs of spaces and non-spaces.
func splitKeepingSpaces(s string) []string {
	var (
		out   []string
		start int
	)
	for i := 1; i <= len(s); i++ {
		if i == len(s) || isSpace(s[i:i+1]) != isSpace(s[i-1:i]) {
			out = append(out, s[start:i])
			start = i
		}
	}
	return out
}

func isSpace(s string) bool {
	return strings.TrimSpace(s) == ""
}

func parseCondition(text string, columns []string) (Condition, error) {
	for _, s := range opSymbols {
		idx := strings.Index(text, s.symbol)
		if idx <= 0 {
			continue
		}
		column := strings.TrimSpace(text[:idx])
		value := strings.Trim(strings.TrimSpace(text[idx+len(s.symbol):]), "\"'")

		if indexOf(columns, column) < 0 {
			return Condition{}, fmt.Errorf("%w: unknown column: %s", datatable.ErrInvalidFilter, column)
		}
		return Condition{Column: columns[indexOf(columns, column)], Op: s.op, Value: value}, nil
	}

	return Condition{Op: OpContains, Value: strings.Trim(text, "\"'")}, nil
}
