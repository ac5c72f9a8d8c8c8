package pivot

import (
	"fmt"
	"log"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"dataviz/datatable"
)

// group is the rows sharing one index value.
type group struct {
	key  datatable.Value
	rows []int
}

// Check validates spec against ds without aggregating. A mean or sum over a
// column that is not numeric returns a *Rejection.
func Check(ds *datatable.Dataset, spec Spec) error {
	if ds == nil {
		return datatable.ErrNoDataSource
	}
	if spec.Agg < AggMean || spec.Agg > AggCount {
		return fmt.Errorf("unknown aggregation %d", int(spec.Agg))
	}
	if _, err := ds.Column(spec.Index); err != nil {
		return err
	}
	kind, err := ds.KindOf(spec.Value)
	if err != nil {
		return err
	}
	if spec.Agg.NeedsNumeric() && kind != datatable.KindNumeric {
		return &Rejection{Column: spec.Value, Agg: spec.Agg}
	}
	return nil
}

// Build computes the pivot. The result has the index column followed by the
// aggregated column, one row per distinct non-null index value in ascending
// order. Rows with a null index are left out; null values are skipped by
// mean and sum and a group with no values left has no mean. The caller must
// release the result.
func Build(ds *datatable.Dataset, spec Spec) (*datatable.Dataset, error) {
	if err := Check(ds, spec); err != nil {
		return nil, err
	}

	icol, _ := ds.Column(spec.Index)
	vcol, _ := ds.Column(spec.Value)

	groups, err := groupBy(ds, icol)
	if err != nil {
		return nil, err
	}

	indexType, _ := ds.ColumnType(icol)
	valueType, _ := ds.ColumnType(vcol)
	resultType := aggregateType(spec.Agg, valueType)

	keys := make([]datatable.Value, 0, len(groups))
	results := make([]datatable.Value, 0, len(groups))
	for _, g := range groups {
		result, ok := aggregate(ds, vcol, g.rows, spec.Agg, valueType)
		if !ok {
			continue
		}
		// an integer sum that overflowed comes back as float64
		if result.Type != resultType {
			resultType = datatable.TypeFloat
		}
		keys = append(keys, g.key)
		results = append(results, result)
	}
	if resultType == datatable.TypeFloat {
		for i, r := range results {
			if n, ok := r.Raw.(int64); ok {
				results[i] = datatable.NewValue(float64(n), datatable.TypeFloat)
			}
		}
	}

	valueName := spec.Value
	if valueName == spec.Index {
		valueName = fmt.Sprintf("%s_%s", spec.Value, spec.Agg)
	}

	schema := arrow.NewSchema([]arrow.Field{
		{Name: spec.Index, Type: arrowType(indexType), Nullable: true},
		{Name: valueName, Type: arrowType(resultType), Nullable: true},
	}, nil)

	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	for i, key := range keys {
		appendValue(b.Field(0), key)
		appendValue(b.Field(1), results[i])
	}

	rec := b.NewRecord()
	defer rec.Release()

	out, err := datatable.New(rec, datatable.Metadata{
		datatable.MetaSourceName: fmt.Sprintf("%s of %s by %s", spec.Agg, spec.Value, spec.Index),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build pivot table: %w", err)
	}

	log.Printf("Pivot %s(%s) by %s: %d groups", spec.Agg, spec.Value, spec.Index, out.RowCount())
	return out, nil
}

// groupBy groups row indices by the value of col, sorted by that value.
func groupBy(ds *datatable.Dataset, col int) ([]group, error) {
	grouped := make(map[string]int)
	var groups []group

	for r := 0; r < ds.RowCount(); r++ {
		key, err := ds.Cell(r, col)
		if err != nil {
			return nil, err
		}
		if key.IsNull {
			continue
		}
		pos, exists := grouped[key.Formatted]
		if !exists {
			pos = len(groups)
			grouped[key.Formatted] = pos
			groups = append(groups, group{key: key})
		}
		groups[pos].rows = append(groups[pos].rows, r)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return datatable.Compare(groups[i].key, groups[j].key) < 0
	})
	return groups, nil
}

// aggregateType is the type of the aggregated column.
func aggregateType(agg Agg, valueType datatable.DataType) datatable.DataType {
	switch agg {
	case AggCount:
		return datatable.TypeInt
	case AggSum:
		if valueType == datatable.TypeInt {
			return datatable.TypeInt
		}
	}
	return datatable.TypeFloat
}

// sumInt adds the int64 values of col over rows. ok is false on overflow.
func sumInt(ds *datatable.Dataset, col int, rows []int) (sum int64, ok bool) {
	for _, r := range rows {
		v, _ := ds.Cell(r, col)
		n, isInt := v.Raw.(int64)
		if !isInt || v.IsNull {
			continue
		}
		next := sum + n
		if (n > 0 && next < sum) || (n < 0 && next > sum) {
			return 0, false
		}
		sum = next
	}
	return sum, true
}

// aggregate applies agg to the value column over rows. ok is false when the
// group has no mean.
func aggregate(ds *datatable.Dataset, col int, rows []int, agg Agg, valueType datatable.DataType) (datatable.Value, bool) {
	if agg == AggCount {
		return datatable.NewValue(int64(len(rows)), datatable.TypeInt), true
	}

	if agg == AggSum && valueType == datatable.TypeInt {
		if sum, ok := sumInt(ds, col, rows); ok {
			return datatable.NewValue(sum, datatable.TypeInt), true
		}
	}

	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		if f, ok := ds.Float(r, col); ok {
			values = append(values, f)
		}
	}

	if agg == AggSum {
		return datatable.NewValue(floats.Sum(values), datatable.TypeFloat), true
	}
	if len(values) == 0 {
		return datatable.Value{}, false
	}
	return datatable.NewValue(stat.Mean(values, nil), datatable.TypeFloat), true
}

func arrowType(dt datatable.DataType) arrow.DataType {
	switch dt {
	case datatable.TypeInt:
		return arrow.PrimitiveTypes.Int64
	case datatable.TypeFloat:
		return arrow.PrimitiveTypes.Float64
	case datatable.TypeBool:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

func appendValue(b array.Builder, v datatable.Value) {
	if v.IsNull {
		b.AppendNull()
		return
	}
	switch bld := b.(type) {
	case *array.Int64Builder:
		bld.Append(v.Raw.(int64))
	case *array.Float64Builder:
		bld.Append(v.Raw.(float64))
	case *array.BooleanBuilder:
		bld.Append(v.Raw.(bool))
	case *array.StringBuilder:
		bld.Append(v.Formatted)
	default:
		b.AppendNull()
	}
}
