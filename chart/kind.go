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

package chart

import "fmt"

// Kind is a plot type.
type Kind int

const (
	KindLine Kind = iota
	KindBar
	KindScatter
	KindDistribution
	KindCount
)

var kindNames = []string{
	KindLine:         "Line Plot",
	KindBar:          "Bar Chart",
	KindScatter:      "Scatter Plot",
	KindDistribution: "Distribution Plot",
	KindCount:        "Count Plot",
}

// String returns the display name of the plot type.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// NeedsY reports whether the plot type draws a y column. Distribution and
// count plots derive y from x.
func (k Kind) NeedsY() bool {
	return k == KindLine || k == KindBar || k == KindScatter
}

// Kinds returns the display names of all plot types in menu order.
func Kinds() []string {
	names := make([]string, len(kindNames))
	copy(names, kindNames)
	return names
}

// ParseKind looks up a plot type by display name.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}
