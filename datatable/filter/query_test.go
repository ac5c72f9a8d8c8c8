package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataviz/datatable"
)

var columns = []string{"region", "sales", "returned"}

func row(region string, sales interface{}, returned bool) []datatable.Value {
	s := datatable.NewNullValue(datatable.TypeInt)
	if sales != nil {
		s = datatable.NewValue(sales, datatable.TypeInt)
	}
	return []datatable.Value{
		datatable.NewValue(region, datatable.TypeString),
		s,
		datatable.NewValue(returned, datatable.TypeBool),
	}
}

func TestParseEmpty(t *testing.T) {
	f, err := Parse("   ", columns)
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestParseAndEvaluate(t *testing.T) {
	tests := []struct {
		query string
		row   []datatable.Value
		want  bool
	}{
		{"region = north", row("North", int64(10), false), true},
		{"region = north", row("South", int64(10), false), false},
		{"sales >= 100", row("North", int64(100), false), true},
		{"sales > 100", row("North", int64(99), false), false},
		{"sales < 9.5", row("North", int64(9), false), true},
		{"sales != 3", row("North", nil, false), true},
		{"sales = 3", row("North", nil, false), false},
		{"region ~ ort", row("North", int64(1), false), true},
		{"region = south and sales > 5", row("South", int64(6), false), true},
		{"region = south and sales > 5", row("South", int64(4), false), false},
		{"region = east OR returned = true", row("West", int64(1), true), true},
		{"region = east or region = west and sales > 10", row("West", int64(1), false), false},
		{"region = \"new york\"", row("New York", int64(1), false), true},
		{"york", row("New York", int64(1), false), true},
		{"york", row("Boston", int64(1), false), false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			f, err := Parse(tt.query, columns)
			require.NoError(t, err)
			got, err := f.Evaluate(tt.row, columns)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, q := range []string{"price > 3", "and region = x", "region = x or"} {
		_, err := Parse(q, columns)
		assert.ErrorIs(t, err, datatable.ErrInvalidFilter, q)
	}
}

func TestParseColumnCase(t *testing.T) {
	f, err := Parse("REGION = north", columns)
	require.NoError(t, err)
	c, ok := f.(Condition)
	require.True(t, ok)
	assert.Equal(t, "region", c.Column)
	assert.Equal(t, `region = "north"`, c.Description())
}

func TestComposite(t *testing.T) {
	yes := Condition{Column: "region", Op: OpEqual, Value: "north"}
	no := Condition{Column: "region", Op: OpEqual, Value: "south"}
	r := row("north", int64(1), false)

	pass, err := All(yes, no).Evaluate(r, columns)
	require.NoError(t, err)
	assert.False(t, pass)

	pass, err = Any(yes, no).Evaluate(r, columns)
	require.NoError(t, err)
	assert.True(t, pass)

	pass, err = All().Evaluate(r, columns)
	require.NoError(t, err)
	assert.True(t, pass)

	assert.Equal(t, `(region = "north" OR region = "south")`, Any(yes, no).Description())
}
