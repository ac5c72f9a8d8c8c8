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

package datatable

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// dataTypeOf maps an Arrow type onto the column types a dataset carries.
func dataTypeOf(dt arrow.DataType) (DataType, error) {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return TypeInt, nil
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return TypeFloat, nil
	case arrow.BOOL:
		return TypeBool, nil
	case arrow.STRING, arrow.LARGE_STRING:
		return TypeString, nil
	default:
		return TypeString, fmt.Errorf("%w: %s", ErrUnsupportedType, dt)
	}
}

// valueAt returns the typed value of an Arrow column at a specific position.
// Integers are widened to int64 and floats to float64.
func valueAt(col arrow.Array, pos int, dt DataType) Value {
	if col.IsNull(pos) {
		return NewNullValue(dt)
	}

	switch c := col.(type) {
	case *array.String:
		return NewValue(c.Value(pos), dt)
	case *array.LargeString:
		return NewValue(c.Value(pos), dt)
	case *array.Boolean:
		return NewValue(c.Value(pos), dt)
	case *array.Int8:
		return NewValue(int64(c.Value(pos)), dt)
	case *array.Int16:
		return NewValue(int64(c.Value(pos)), dt)
	case *array.Int32:
		return NewValue(int64(c.Value(pos)), dt)
	case *array.Int64:
		return NewValue(c.Value(pos), dt)
	case *array.Uint8:
		return NewValue(int64(c.Value(pos)), dt)
	case *array.Uint16:
		return NewValue(int64(c.Value(pos)), dt)
	case *array.Uint32:
		return NewValue(int64(c.Value(pos)), dt)
	case *array.Uint64:
		return NewValue(int64(c.Value(pos)), dt)
	case *array.Float16:
		return NewValue(float64(c.Value(pos).Float32()), dt)
	case *array.Float32:
		return NewValue(float64(c.Value(pos)), dt)
	case *array.Float64:
		return NewValue(c.Value(pos), dt)
	default:
		return NewValue(col.ValueStr(pos), TypeString)
	}
}
