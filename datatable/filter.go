package datatable

// DataSource is the row access FilterRows needs.
type DataSource interface {
	RowCount() int
	ColumnCount() int
	// ColumnName returns ErrInvalidColumn if col is out of range.
	ColumnName(col int) (string, error)
	// Row returns ErrInvalidRow if row is out of range.
	Row(row int) ([]Value, error)
}

var _ DataSource = (*Dataset)(nil)

// Filter decides whether a row is kept.
type Filter interface {
	// Evaluate reports whether the row passes. columnNames is parallel to row.
	Evaluate(row []Value, columnNames []string) (bool, error)

	// Description returns a human-readable form of the filter.
	Description() string
}

// FilterRows returns the indices of the rows of ds that pass f, in order.
// A nil filter keeps every row.
func FilterRows(ds DataSource, f Filter) ([]int, error) {
	if ds == nil {
		return nil, ErrNoDataSource
	}

	rows := make([]int, 0, ds.RowCount())
	if f == nil {
		for i := 0; i < ds.RowCount(); i++ {
			rows = append(rows, i)
		}
		return rows, nil
	}

	names := make([]string, ds.ColumnCount())
	for col := range names {
		name, err := ds.ColumnName(col)
		if err != nil {
			return nil, err
		}
		names[col] = name
	}

	for i := 0; i < ds.RowCount(); i++ {
		row, err := ds.Row(i)
		if err != nil {
			return nil, err
		}
		keep, err := f.Evaluate(row, names)
		if err != nil {
			return nil, err
		}
		if keep {
			rows = append(rows, i)
		}
	}
	return rows, nil
}
