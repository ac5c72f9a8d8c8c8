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

// Package datatable provides the canonical in-memory table that every
// uploaded file is normalized into, backed by an Arrow record.
package datatable

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// DataType represents the physical type of the data in a column.
type DataType int

const (
	// TypeString represents string data.
	TypeString DataType = iota
	// TypeInt represents integer data (any size).
	TypeInt
	// TypeFloat represents floating-point data (any precision).
	TypeFloat
	// TypeBool represents boolean data.
	TypeBool
)

// String returns the string representation of a DataType.
func (dt DataType) String() string {
	switch dt {
	case TypeString:
		return "String"
	case TypeInt:
		return "Int"
	case TypeFloat:
		return "Float"
	case TypeBool:
		return "Bool"
	default:
		return fmt.Sprintf("Unknown(%d)", dt)
	}
}

// Kind returns the semantic kind carried by columns of this type.
func (dt DataType) Kind() Kind {
	switch dt {
	case TypeInt, TypeFloat:
		return KindNumeric
	case TypeBool:
		return KindCategorical
	default:
		return KindText
	}
}

// Kind is the semantic type of a column. It is decided once when a file is
// normalized and carried with the dataset from then on.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
	KindCategorical
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindNumeric:
		return "Numeric"
	case KindCategorical:
		return "Categorical"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Value is a typed container for cell values.
// It holds the raw value, type information, and a pre-formatted string for display.
type Value struct {
	// Raw holds the underlying value: int64, float64, bool or string
	// depending on Type.
	Raw interface{}

	// Type indicates the data type of this value.
	Type DataType

	// IsNull indicates whether this value is null/nil.
	IsNull bool

	// Formatted is a pre-formatted string representation for display.
	Formatted string
}

// NewValue creates a new Value from a raw value and type.
func NewValue(raw interface{}, dataType DataType) Value {
	if raw == nil {
		return NewNullValue(dataType)
	}

	return Value{
		Raw:       raw,
		Type:      dataType,
		IsNull:    false,
		Formatted: formatValue(raw),
	}
}

// NewNullValue creates a null value of the specified type.
func NewNullValue(dataType DataType) Value {
	return Value{
		Raw:       nil,
		Type:      dataType,
		IsNull:    true,
		Formatted: "",
	}
}

// Float returns the value as a float64 when it is numeric and not null.
func (v Value) Float() (float64, bool) {
	if v.IsNull {
		return 0, false
	}
	switch raw := v.Raw.(type) {
	case int64:
		return float64(raw), true
	case float64:
		return raw, true
	}
	return 0, false
}

// Compare orders two values by the natural ordering of their type.
// Numbers compare numerically, false sorts before true and strings compare
// lexicographically. Nulls sort last.
func Compare(a, b Value) int {
	switch {
	case a.IsNull && b.IsNull:
		return 0
	case a.IsNull:
		return 1
	case b.IsNull:
		return -1
	}

	if ai, ok := a.Raw.(int64); ok {
		if bi, ok := b.Raw.(int64); ok {
			return cmp.Compare(ai, bi)
		}
	}

	if af, ok := a.Float(); ok {
		if bf, ok := b.Float(); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}

	if ab, ok := a.Raw.(bool); ok {
		if bb, ok := b.Raw.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			}
			return 1
		}
	}

	return strings.Compare(a.Formatted, b.Formatted)
}

// formatValue converts a raw value to a formatted string.
func formatValue(raw interface{}) string {
	switch v := raw.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", raw)
	}
}

// Metadata holds optional metadata about a data source.
type Metadata map[string]interface{}

// Metadata keys set by the normalizer.
const (
	MetaSourceName = "source"
	MetaFormat     = "format"
)
