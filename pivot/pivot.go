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

// Package pivot summarizes one column of a dataset per distinct value of
// another.
package pivot

import (
	"errors"
	"fmt"
)

// Agg is an aggregation function.
type Agg int

const (
	AggMean Agg = iota
	AggSum
	AggCount
)

var aggNames = []string{
	AggMean:  "mean",
	AggSum:   "sum",
	AggCount: "count",
}

func (a Agg) String() string {
	if a < 0 || int(a) >= len(aggNames) {
		return fmt.Sprintf("Agg(%d)", int(a))
	}
	return aggNames[a]
}

// NeedsNumeric reports whether the aggregation only applies to numbers.
func (a Agg) NeedsNumeric() bool {
	return a == AggMean || a == AggSum
}

// Aggs returns the aggregation names in menu order.
func Aggs() []string {
	names := make([]string, len(aggNames))
	copy(names, aggNames)
	return names
}

// ParseAgg looks up an aggregation by name.
func ParseAgg(name string) (Agg, error) {
	for i, n := range aggNames {
		if n == name {
			return Agg(i), nil
		}
	}
	return 0, fmt.Errorf("unknown aggregation %q", name)
}

// Spec describes a pivot: Value aggregated with Agg for every distinct
// value of Index.
type Spec struct {
	Index string
	Value string
	Agg   Agg
}

// Rejection is a validation warning: the pivot cannot be computed as asked
// but nothing failed. It is reported to the user instead of a result.
type Rejection struct {
	Column string
	Agg    Agg
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("cannot use %s on non-numeric data in column %q", r.Agg, r.Column)
}

// IsRejected reports whether err is, or wraps, a Rejection.
func IsRejected(err error) bool {
	var r *Rejection
	return errors.As(err, &r)
}
