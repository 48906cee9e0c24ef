// Package render turns a search response into the rows of the hit viewer.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/usestring/quickwit-mcp/pkg/client"
)

// DefaultTimestampField is the hit field the row date/time is read from.
const DefaultTimestampField = "timestamp_nanos"

// Field is one key/value pair of a collapsed object hit.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Row is the rendered form of a single hit.
type Row struct {
	Index     int     `json:"index"`
	Collapsed bool    `json:"collapsed"`
	Fields    []Field `json:"fields,omitzero"` // collapsed object hits
	Scalar    string  `json:"scalar,omitempty"` // collapsed non-object hits
	JSON      string  `json:"json,omitempty"`   // expanded hits
	Date      string  `json:"date,omitempty"`
	Time      string  `json:"time,omitempty"`
}

// Table holds the hits of the last response and the expand/collapse flags.
// A global collapse-all flag applies to every row; toggling one row records
// an override that lasts until the next global change. Table is not safe for
// concurrent use.
type Table struct {
	hits           []json.RawMessage
	collapseAll    bool
	overrides      *roaring.Bitmap
	timestampField string
}

// Option configures a Table.
type Option func(*Table)

// WithTimestampField sets the nanosecond timestamp field used for row dates.
// An empty name disables the date/time columns.
func WithTimestampField(name string) Option {
	return func(t *Table) {
		t.timestampField = name
	}
}

// NewTable creates an empty table with every row collapsed.
func NewTable(opts ...Option) *Table {
	t := &Table{
		collapseAll:    true,
		overrides:      roaring.New(),
		timestampField: DefaultTimestampField,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetHits replaces the hits wholesale. Row overrides are reset so every row
// starts at the global flag.
func (t *Table) SetHits(hits []json.RawMessage) {
	t.hits = hits
	t.overrides.Clear()
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.hits)
}

// CollapseAll returns the global flag.
func (t *Table) CollapseAll() bool {
	return t.collapseAll
}

// SetCollapseAll sets the global flag and forces every row to match it.
func (t *Table) SetCollapseAll(v bool) {
	t.collapseAll = v
	t.overrides.Clear()
}

// ToggleCollapseAll flips the global flag, forcing every row to match.
func (t *Table) ToggleCollapseAll() {
	t.SetCollapseAll(!t.collapseAll)
}

// ToggleRow flips row i independently of the global flag.
func (t *Table) ToggleRow(i int) error {
	if i < 0 || i >= len(t.hits) {
		return fmt.Errorf("row %d out of range [0, %d)", i, len(t.hits))
	}
	x := uint32(i)
	if t.overrides.Contains(x) {
		t.overrides.Remove(x)
	} else {
		t.overrides.Add(x)
	}
	return nil
}

// Collapsed reports whether row i is collapsed.
func (t *Table) Collapsed(i int) bool {
	return t.collapseAll != t.overrides.Contains(uint32(i))
}

// Rows renders every hit in response order.
func (t *Table) Rows() []Row {
	rows := make([]Row, len(t.hits))
	for i, raw := range t.hits {
		rows[i] = t.renderRow(i, raw)
	}
	return rows
}

func (t *Table) renderRow(i int, raw json.RawMessage) Row {
	row := Row{Index: i, Collapsed: t.Collapsed(i)}

	value, err := decode(raw)
	if err != nil {
		row.Scalar = string(raw)
		return row
	}

	obj, isObject := value.(map[string]any)
	if isObject && t.timestampField != "" {
		row.Date, row.Time = dateParts(obj[t.timestampField])
	}

	switch {
	case !row.Collapsed:
		row.JSON = pretty(value)
	case isObject:
		row.Fields = flatten(obj)
	default:
		row.Scalar = compact(value)
	}
	return row
}

func decode(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// flatten lists the top-level fields of an object hit sorted by key.
func flatten(obj map[string]any) []Field {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, len(keys))
	for i, k := range keys {
		fields[i] = Field{Key: k, Value: FieldValue(obj[k])}
	}
	return fields
}

// FieldValue renders a decoded JSON value for a key/value summary: strings
// unquoted, numbers verbatim, booleans, "null", and compact JSON otherwise.
func FieldValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	case nil:
		return "null"
	default:
		return compact(val)
	}
}

func compact(v any) string {
	return strings.TrimSuffix(encode(v, ""), "\n")
}

func pretty(v any) string {
	return strings.TrimSuffix(encode(v, "  "), "\n")
}

func encode(v any, indent string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return buf.String()
}

// dateParts splits a nanosecond epoch (number) or RFC 3339 (string) value
// into "YYYY/MM/DD" and "HH:MM:SS" in UTC.
func dateParts(v any) (string, string) {
	var ts time.Time
	switch val := v.(type) {
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return "", ""
		}
		ts = time.Unix(0, n)
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, val)
		if err != nil {
			return "", ""
		}
		ts = parsed
	default:
		return "", ""
	}
	ts = ts.UTC()
	return ts.Format("2006/01/02"), ts.Format("15:04:05")
}

var printer = message.NewPrinter(language.English)

// HitCount renders the summary line above the hits, e.g.
// "1,234 hits found in 0.02 seconds".
func HitCount(resp *client.QueryResponse) string {
	var n int64
	var micros float64
	if resp != nil {
		n = resp.NumHits
		micros = resp.ElapsedTimeMicros
	}
	return printer.Sprintf("%d hits found in %.2f seconds", n, micros/1_000_000)
}
