package render

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/quickwit-mcp/pkg/client"
)

func hits(raw ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(raw))
	for i, r := range raw {
		out[i] = json.RawMessage(r)
	}
	return out
}

func TestTable_CollapsedObjectRow(t *testing.T) {
	tbl := NewTable()
	tbl.SetHits(hits(`{"z": "last", "a": 1.50, "b": true, "c": null, "d": {"x": [1, 2]}, "timestamp_nanos": 1700000000123456789}`))

	rows := tbl.Rows()
	require.Len(t, rows, 1)
	row := rows[0]
	assert.True(t, row.Collapsed)
	assert.Empty(t, row.JSON)
	assert.Equal(t, []Field{
		{Key: "a", Value: "1.50"},
		{Key: "b", Value: "true"},
		{Key: "c", Value: "null"},
		{Key: "d", Value: `{"x":[1,2]}`},
		{Key: "timestamp_nanos", Value: "1700000000123456789"},
		{Key: "z", Value: "last"},
	}, row.Fields)
	assert.Equal(t, "2023/11/14", row.Date)
	assert.Equal(t, "22:13:20", row.Time)
}

func TestTable_ScalarAndExpandedRows(t *testing.T) {
	tbl := NewTable(WithTimestampField(""))
	tbl.SetHits(hits(`"plain <text>"`, `{"b": 2, "a": "x"}`))

	rows := tbl.Rows()
	assert.Equal(t, `"plain <text>"`, rows[0].Scalar)
	assert.Empty(t, rows[1].Date)

	tbl.SetCollapseAll(false)
	rows = tbl.Rows()
	assert.False(t, rows[0].Collapsed)
	assert.Equal(t, `"plain <text>"`, rows[0].JSON)
	assert.Equal(t, "{\n  \"a\": \"x\",\n  \"b\": 2\n}", rows[1].JSON)
	assert.Nil(t, rows[1].Fields)
}

func TestTable_RowOverrideAndGlobalToggle(t *testing.T) {
	tbl := NewTable()
	tbl.SetHits(hits(`1`, `2`, `3`))

	tbl.SetCollapseAll(true)
	require.NoError(t, tbl.ToggleRow(1))
	assert.False(t, tbl.Collapsed(1), "row override expands a single row")
	assert.True(t, tbl.Collapsed(0))
	assert.True(t, tbl.Collapsed(2))

	// Every global change forces all rows to match it.
	tbl.SetCollapseAll(false)
	for i := range 3 {
		assert.False(t, tbl.Collapsed(i))
	}
	tbl.SetCollapseAll(true)
	for i := range 3 {
		assert.True(t, tbl.Collapsed(i))
	}

	// Toggling twice restores the row.
	require.NoError(t, tbl.ToggleRow(2))
	require.NoError(t, tbl.ToggleRow(2))
	assert.True(t, tbl.Collapsed(2))

	tbl.ToggleCollapseAll()
	assert.False(t, tbl.CollapseAll())
}

func TestTable_ToggleRowOutOfRange(t *testing.T) {
	tbl := NewTable()
	tbl.SetHits(hits(`1`))
	assert.Error(t, tbl.ToggleRow(1))
	assert.Error(t, tbl.ToggleRow(-1))
}

func TestTable_NewHitsResetOverrides(t *testing.T) {
	tbl := NewTable()
	tbl.SetHits(hits(`1`, `2`))
	require.NoError(t, tbl.ToggleRow(0))

	tbl.SetHits(hits(`3`, `4`))
	assert.True(t, tbl.Collapsed(0))
	assert.Equal(t, 2, tbl.Len())
}

func TestTable_RowOrderFollowsResponse(t *testing.T) {
	tbl := NewTable()
	tbl.SetHits(hits(`"c"`, `"a"`, `"b"`))

	var got []string
	for _, r := range tbl.Rows() {
		got = append(got, r.Scalar)
	}
	assert.Equal(t, []string{`"c"`, `"a"`, `"b"`}, got)
}

func TestHitCount(t *testing.T) {
	assert.Equal(t, "0 hits found in 0.00 seconds", HitCount(nil))
	assert.Equal(t, "1,234 hits found in 0.02 seconds", HitCount(&client.QueryResponse{
		NumHits:           1234,
		ElapsedTimeMicros: 21_000,
	}))
}

func TestFieldValue(t *testing.T) {
	assert.Equal(t, "false", FieldValue(false))
	assert.Equal(t, `["a"]`, FieldValue([]any{"a"}))
	assert.Equal(t, "42", FieldValue(json.Number("42")))
}
