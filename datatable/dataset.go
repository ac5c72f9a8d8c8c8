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

// Dataset is an immutable table of named, equal-length columns backed by a
// single Arrow record. Column names are unique and every column carries the
// Kind decided when the dataset was built.
type Dataset struct {
	rec   arrow.Record
	names []string
	index map[string]int
	types []DataType
	meta  Metadata
}

// New wraps an Arrow record into a Dataset. The record is retained; call
// Release when the dataset is no longer needed.
func New(rec arrow.Record, meta Metadata) (*Dataset, error) {
	if rec == nil {
		return nil, ErrNoDataSource
	}

	fields := rec.Schema().Fields()
	d := &Dataset{
		rec:   rec,
		names: make([]string, len(fields)),
		index: make(map[string]int, len(fields)),
		types: make([]DataType, len(fields)),
		meta:  Metadata{},
	}

	for i, field := range fields {
		if field.Name == "" {
			return nil, fmt.Errorf("%w: column %d", ErrEmptyColumnName, i)
		}
		if _, exists := d.index[field.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, field.Name)
		}
		dt, err := dataTypeOf(field.Type)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", field.Name, err)
		}
		d.names[i] = field.Name
		d.index[field.Name] = i
		d.types[i] = dt
	}

	for k, v := range meta {
		d.meta[k] = v
	}

	rec.Retain()
	return d, nil
}

// Release releases the underlying Arrow record.
func (d *Dataset) Release() {
	if d != nil && d.rec != nil {
		d.rec.Release()
		d.rec = nil
	}
}

// RowCount implements DataSource.
func (d *Dataset) RowCount() int {
	return int(d.rec.NumRows())
}

// ColumnCount implements DataSource.
func (d *Dataset) ColumnCount() int {
	return len(d.names)
}

// ColumnName implements DataSource.
func (d *Dataset) ColumnName(col int) (string, error) {
	if col < 0 || col >= len(d.names) {
		return "", ErrInvalidColumn
	}
	return d.names[col], nil
}

// ColumnType returns the data type of column col.
func (d *Dataset) ColumnType(col int) (DataType, error) {
	if col < 0 || col >= len(d.types) {
		return TypeString, ErrInvalidColumn
	}
	return d.types[col], nil
}

// ColumnKind returns the semantic kind of the column at the given index.
func (d *Dataset) ColumnKind(col int) (Kind, error) {
	dt, err := d.ColumnType(col)
	if err != nil {
		return KindText, err
	}
	return dt.Kind(), nil
}

// Columns returns the column names in order.
func (d *Dataset) Columns() []string {
	names := make([]string, len(d.names))
	copy(names, d.names)
	return names
}

// Column returns the index of the named column.
func (d *Dataset) Column(name string) (int, error) {
	col, ok := d.index[name]
	if !ok {
		return -1, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	return col, nil
}

// KindOf returns the semantic kind of the named column.
func (d *Dataset) KindOf(name string) (Kind, error) {
	col, err := d.Column(name)
	if err != nil {
		return KindText, err
	}
	return d.types[col].Kind(), nil
}

// Cell returns the value at row, col.
func (d *Dataset) Cell(row, col int) (Value, error) {
	if row < 0 || row >= d.RowCount() {
		return Value{}, ErrInvalidRow
	}
	if col < 0 || col >= len(d.names) {
		return Value{}, ErrInvalidColumn
	}
	return valueAt(d.rec.Column(col), row, d.types[col]), nil
}

// Row implements DataSource.
func (d *Dataset) Row(row int) ([]Value, error) {
	if row < 0 || row >= d.RowCount() {
		return nil, ErrInvalidRow
	}
	values := make([]Value, len(d.names))
	for col := range d.names {
		values[col] = valueAt(d.rec.Column(col), row, d.types[col])
	}
	return values, nil
}

// Metadata returns the dataset metadata.
func (d *Dataset) Metadata() Metadata {
	return d.meta
}

// Float returns the numeric value of a cell. The second result is false
// when the cell is null, out of range or not numeric.
func (d *Dataset) Float(row, col int) (float64, bool) {
	v, err := d.Cell(row, col)
	if err != nil {
		return 0, false
	}
	return v.Float()
}

// Text returns the display form of a cell, or "" if it is null or out of range.
func (d *Dataset) Text(row, col int) string {
	v, err := d.Cell(row, col)
	if err != nil {
		return ""
	}
	return v.Formatted
}

// Record returns the backing Arrow record. It stays owned by the dataset.
func (d *Dataset) Record() arrow.Record {
	return d.rec
}

// Table returns an Arrow table view of the dataset. The caller must release it.
func (d *Dataset) Table() arrow.Table {
	return array.NewTableFromRecords(d.rec.Schema(), []arrow.Record{d.rec})
}
