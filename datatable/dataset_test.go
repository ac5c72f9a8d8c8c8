package datatable

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(t *testing.T) arrow.Record {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "region", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "sales", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "ratio", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "active", Type: arrow.FixedWidthTypes.Boolean, Nullable: true},
	}, nil)

	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()
	b.Field(0).(*array.StringBuilder).AppendValues([]string{"A", "A", "B"}, nil)
	b.Field(1).(*array.Int64Builder).AppendValues([]int64{10, 20, 5}, []bool{true, true, true})
	b.Field(2).(*array.Float64Builder).AppendValues([]float64{0.5, 0, 1.25}, []bool{true, false, true})
	b.Field(3).(*array.BooleanBuilder).AppendValues([]bool{true, false, true}, nil)
	return b.NewRecord()
}

func TestNew(t *testing.T) {
	rec := sampleRecord(t)
	defer rec.Release()

	ds, err := New(rec, Metadata{MetaSourceName: "sales.csv"})
	require.NoError(t, err)
	defer ds.Release()

	assert.Equal(t, 3, ds.RowCount())
	assert.Equal(t, 4, ds.ColumnCount())
	assert.Equal(t, []string{"region", "sales", "ratio", "active"}, ds.Columns())
	assert.Equal(t, "sales.csv", ds.Metadata()[MetaSourceName])

	kinds := map[string]Kind{
		"region": KindText,
		"sales":  KindNumeric,
		"ratio":  KindNumeric,
		"active": KindCategorical,
	}
	for name, want := range kinds {
		got, err := ds.KindOf(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}

func TestNewRejectsDuplicateColumns(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "a", Type: arrow.PrimitiveTypes.Int64},
		{Name: "a", Type: arrow.PrimitiveTypes.Int64},
	}, nil)
	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()
	rec := b.NewRecord()
	defer rec.Release()

	_, err := New(rec, nil)
	assert.ErrorIs(t, err, ErrDuplicateColumn)

	_, err = New(nil, nil)
	assert.ErrorIs(t, err, ErrNoDataSource)
}

func TestCells(t *testing.T) {
	rec := sampleRecord(t)
	defer rec.Release()
	ds, err := New(rec, nil)
	require.NoError(t, err)
	defer ds.Release()

	v, err := ds.Cell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(20), v.Raw)
	assert.Equal(t, "20", v.Formatted)

	v, err = ds.Cell(1, 2)
	require.NoError(t, err)
	assert.True(t, v.IsNull)

	f, ok := ds.Float(2, 2)
	assert.True(t, ok)
	assert.Equal(t, 1.25, f)

	_, ok = ds.Float(0, 0)
	assert.False(t, ok, "string cells are not numeric")

	assert.Equal(t, "true", ds.Text(0, 3))
	assert.Equal(t, "", ds.Text(9, 0))

	_, err = ds.Cell(3, 0)
	assert.ErrorIs(t, err, ErrInvalidRow)
	_, err = ds.Cell(0, 4)
	assert.ErrorIs(t, err, ErrInvalidColumn)

	_, err = ds.Column("missing")
	assert.ErrorIs(t, err, ErrColumnNotFound)

	row, err := ds.Row(2)
	require.NoError(t, err)
	assert.Equal(t, "B", row[0].Formatted)
}

func TestTable(t *testing.T) {
	rec := sampleRecord(t)
	defer rec.Release()
	ds, err := New(rec, nil)
	require.NoError(t, err)
	defer ds.Release()

	tbl := ds.Table()
	defer tbl.Release()
	assert.Equal(t, int64(3), tbl.NumRows())
	assert.Equal(t, int64(4), tbl.NumCols())
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"ints", NewValue(int64(1), TypeInt), NewValue(int64(2), TypeInt), -1},
		{"large ints", NewValue(int64(1<<53+1), TypeInt), NewValue(int64(1<<53), TypeInt), 1},
		{"int and float", NewValue(int64(2), TypeInt), NewValue(1.5, TypeFloat), 1},
		{"equal", NewValue(2.0, TypeFloat), NewValue(int64(2), TypeInt), 0},
		{"bools", NewValue(false, TypeBool), NewValue(true, TypeBool), -1},
		{"strings", NewValue("b", TypeString), NewValue("a", TypeString), 1},
		{"null last", NewNullValue(TypeInt), NewValue(int64(0), TypeInt), 1},
		{"both null", NewNullValue(TypeString), NewNullValue(TypeString), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
		})
	}
}

func TestFilterRows(t *testing.T) {
	rec := sampleRecord(t)
	defer rec.Release()
	ds, err := New(rec, nil)
	require.NoError(t, err)
	defer ds.Release()

	rows, err := FilterRows(ds, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, rows)

	_, err = FilterRows(nil, nil)
	assert.ErrorIs(t, err, ErrNoDataSource)
}
