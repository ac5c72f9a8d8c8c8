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

package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	arrowcsv "github.com/apache/arrow-go/v18/arrow/csv"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// candidate separators in tie-break order
var separators = []rune{',', ';', '\t', '|'}

// detectSeparator picks the separator occurring most often on the first line.
// Comma wins ties and is used when no candidate occurs.
func detectSeparator(data []byte) rune {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	if !scanner.Scan() {
		return ','
	}
	firstLine := scanner.Text()

	detected, maxCount := ',', 0
	for _, sep := range separators {
		if count := strings.Count(firstLine, string(sep)); count > maxCount {
			detected, maxCount = sep, count
		}
	}
	return detected
}

// readCSV reads delimited text into a grid of strings, header first.
func readCSV(data []byte, fileName string, cfg Config) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, fail(fileName, "read csv", ErrDecode, "content is not valid UTF-8")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fail(fileName, "read csv", ErrEmpty, "file is empty")
	}

	sep := cfg.Delimiter
	if sep == 0 {
		sep = detectSeparator(data)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sep
	r.LazyQuotes = cfg.LazyQuotes

	grid, err := r.ReadAll()
	if err != nil {
		return nil, &Error{File: fileName, Op: "read csv", Err: fmt.Errorf("%w: %v", ErrCorrupt, err)}
	}
	return grid, nil
}

// writeCanonical serializes a grid as comma-separated text.
func writeCanonical(grid [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(grid); err != nil {
		return nil, fmt.Errorf("failed to write canonical CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// materialize parses canonical CSV text into a single Arrow record. Column
// types are inferred from every value of the column and then handed to the
// Arrow CSV reader. The caller must release the record.
func materialize(canonical []byte, cfg Config) (arrow.Record, error) {
	grid, err := csv.NewReader(bytes.NewReader(canonical)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read canonical CSV: %w", err)
	}
	if len(grid) == 0 {
		return nil, ErrEmpty
	}

	header := grid[0]
	fields := make([]arrow.Field, len(header))
	for i, name := range header {
		fields[i] = arrow.Field{
			Name:     name,
			Type:     inferColumnType(grid[1:], i, cfg.NullValues),
			Nullable: true,
		}
	}
	schema := arrow.NewSchema(fields, nil)

	r := arrowcsv.NewReader(bytes.NewReader(canonical), schema,
		arrowcsv.WithHeader(true),
		arrowcsv.WithChunk(-1),
		arrowcsv.WithNullReader(true, cfg.NullValues...),
		arrowcsv.WithAllocator(cfg.Allocator),
	)
	defer r.Release()

	if !r.Next() {
		if r.Err() != nil {
			return nil, fmt.Errorf("failed to read arrow record: %w", r.Err())
		}
		// header only
		b := array.NewRecordBuilder(cfg.Allocator, schema)
		defer b.Release()
		return b.NewRecord(), nil
	}
	if r.Err() != nil {
		return nil, fmt.Errorf("failed to read arrow record: %w", r.Err())
	}

	rec := r.Record()
	rec.Retain()
	return rec, nil
}
