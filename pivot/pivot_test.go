package pivot

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataviz/datatable"
	"dataviz/ingest"
)

func load(t *testing.T, csv string) *datatable.Dataset {
	t.Helper()
	ds, err := ingest.Normalize([]byte(csv), "pivot.csv")
	require.NoError(t, err)
	t.Cleanup(ds.Release)
	return ds
}

// table flattens a two-column result into index -> value.
func table(t *testing.T, ds *datatable.Dataset) ([]interface{}, []interface{}) {
	t.Helper()
	require.Equal(t, 2, ds.ColumnCount())
	var keys, values []interface{}
	for r := 0; r < ds.RowCount(); r++ {
		row, err := ds.Row(r)
		require.NoError(t, err)
		keys = append(keys, row[0].Raw)
		values = append(values, row[1].Raw)
	}
	return keys, values
}

func TestSalesExample(t *testing.T) {
	ds := load(t, "region,sales\nA,10\nA,20\nB,5\n")

	tests := []struct {
		agg  Agg
		want []interface{}
	}{
		{AggSum, []interface{}{int64(30), int64(5)}},
		{AggCount, []interface{}{int64(2), int64(1)}},
		{AggMean, []interface{}{15.0, 5.0}},
	}
	for _, tt := range tests {
		t.Run(tt.agg.String(), func(t *testing.T) {
			out, err := Build(ds, Spec{Index: "region", Value: "sales", Agg: tt.agg})
			require.NoError(t, err)
			defer out.Release()

			assert.Equal(t, []string{"region", "sales"}, out.Columns())
			keys, values := table(t, out)
			assert.Equal(t, []interface{}{"A", "B"}, keys)
			assert.Equal(t, tt.want, values)
		})
	}
}

func TestRejection(t *testing.T) {
	ds := load(t, "region,note,flag\nA,x,true\nB,y,false\n")

	for _, agg := range []Agg{AggMean, AggSum} {
		for _, col := range []string{"note", "flag"} {
			spec := Spec{Index: "region", Value: col, Agg: agg}
			err := Check(ds, spec)
			require.Error(t, err)
			assert.True(t, IsRejected(err), "%s of %s", agg, col)

			out, err := Build(ds, spec)
			assert.Nil(t, out)
			assert.True(t, IsRejected(err))
			assert.True(t, IsRejected(fmt.Errorf("wrapped: %w", err)))
		}
	}

	out, err := Build(ds, Spec{Index: "region", Value: "note", Agg: AggCount})
	require.NoError(t, err)
	defer out.Release()
	_, values := table(t, out)
	assert.Equal(t, []interface{}{int64(1), int64(1)}, values)
}

func TestCheckErrors(t *testing.T) {
	ds := load(t, "a,b\n1,2\n")

	err := Check(ds, Spec{Index: "zz", Value: "b", Agg: AggSum})
	assert.ErrorIs(t, err, datatable.ErrColumnNotFound)
	assert.False(t, IsRejected(err))

	err = Check(ds, Spec{Index: "a", Value: "zz", Agg: AggCount})
	assert.ErrorIs(t, err, datatable.ErrColumnNotFound)

	assert.Error(t, Check(ds, Spec{Index: "a", Value: "b", Agg: Agg(9)}))
	assert.ErrorIs(t, Check(nil, Spec{}), datatable.ErrNoDataSource)
}

func TestSortedByIndex(t *testing.T) {
	ds := load(t, "year,label,score\n2021,b,1.5\n2019,a,2\n2020,c,\n2019,a,4\n,d,8\n2021,b,2.5\n")

	out, err := Build(ds, Spec{Index: "year", Value: "score", Agg: AggMean})
	require.NoError(t, err)
	defer out.Release()
	keys, values := table(t, out)
	// 2020 has no score so it has no mean
	assert.Equal(t, []interface{}{int64(2019), int64(2021)}, keys)
	assert.Equal(t, []interface{}{3.0, 2.0}, values)

	out, err = Build(ds, Spec{Index: "label", Value: "score", Agg: AggSum})
	require.NoError(t, err)
	defer out.Release()
	keys, values = table(t, out)
	assert.Equal(t, []interface{}{"a", "b", "c", "d"}, keys)
	assert.Equal(t, []interface{}{6.0, 4.0, 0.0, 8.0}, values)

	out, err = Build(ds, Spec{Index: "year", Value: "score", Agg: AggCount})
	require.NoError(t, err)
	defer out.Release()
	keys, values = table(t, out)
	assert.Equal(t, []interface{}{int64(2019), int64(2020), int64(2021)}, keys)
	assert.Equal(t, []interface{}{int64(2), int64(1), int64(2)}, values)
}

func TestBoolAndSelfIndex(t *testing.T) {
	ds := load(t, "ok,n\ntrue,1\nfalse,2\ntrue,3\n")

	out, err := Build(ds, Spec{Index: "ok", Value: "n", Agg: AggSum})
	require.NoError(t, err)
	defer out.Release()
	keys, values := table(t, out)
	assert.Equal(t, []interface{}{false, true}, keys)
	assert.Equal(t, []interface{}{int64(2), int64(4)}, values)

	out, err = Build(ds, Spec{Index: "n", Value: "n", Agg: AggCount})
	require.NoError(t, err)
	defer out.Release()
	assert.Equal(t, []string{"n", "n_count"}, out.Columns())
}

func TestParseAgg(t *testing.T) {
	assert.Equal(t, []string{"mean", "sum", "count"}, Aggs())
	for _, name := range Aggs() {
		agg, err := ParseAgg(name)
		require.NoError(t, err)
		assert.Equal(t, name, agg.String())
	}
	_, err := ParseAgg("median")
	assert.Error(t, err)
}

func TestLargeIntegers(t *testing.T) {
	ds := load(t, "id,n\n"+
		"9007199254740993,1\n"+
		"9007199254740992,2\n"+
		"9007199254740993,3\n")

	out, err := Build(ds, Spec{Index: "id", Value: "n", Agg: AggCount})
	require.NoError(t, err)
	defer out.Release()
	keys, values := table(t, out)
	assert.Equal(t, []interface{}{int64(9007199254740992), int64(9007199254740993)}, keys)
	assert.Equal(t, []interface{}{int64(1), int64(2)}, values)

	big := load(t, "g,n\na,9223372036854775807\na,1\nb,2\n")
	out, err = Build(big, Spec{Index: "g", Value: "n", Agg: AggSum})
	require.NoError(t, err)
	defer out.Release()
	typ, err := out.ColumnType(1)
	require.NoError(t, err)
	assert.Equal(t, datatable.TypeFloat, typ)
	_, values = table(t, out)
	assert.Equal(t, []interface{}{9223372036854775808.0, 2.0}, values)
}
