// Package timerange resolves the editor's relative time presets and custom
// intervals into the lower bound sent with a search.
package timerange

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the active variant of a Range.
type Kind int

// Range variants in menu order.
const (
	Last15Min Kind = iota
	Last30Min
	Last1Hour
	Last7Days
	Last30Days
	Last3Months
	LastYear
	Custom
)

// DisplayLayout is the layout of custom bounds, both for display and input.
const DisplayLayout = "2006/01/02 15:04:05"

// ErrInvalidRange is returned for unknown presets and malformed custom bounds.
var ErrInvalidRange = errors.New("invalid time range")

var presetOffsets = map[Kind]time.Duration{
	Last15Min:   15 * time.Minute,
	Last30Min:   30 * time.Minute,
	Last1Hour:   time.Hour,
	Last7Days:   7 * 24 * time.Hour,
	Last30Days:  30 * 24 * time.Hour,
	Last3Months: 90 * 24 * time.Hour,
	LastYear:    365 * 24 * time.Hour,
}

var labels = map[Kind]string{
	Last15Min:   "Last 15 min",
	Last30Min:   "Last 30 min",
	Last1Hour:   "Last 1 hour",
	Last7Days:   "Last 7 days",
	Last30Days:  "Last 30 days",
	Last3Months: "Last 3 months",
	LastYear:    "Last year",
	Custom:      "Custom",
}

var shortKeys = map[string]Kind{
	"15m": Last15Min,
	"30m": Last30Min,
	"1h":  Last1Hour,
	"7d":  Last7Days,
	"30d": Last30Days,
	"3M":  Last3Months,
	"90d": Last3Months,
	"1y":  LastYear,
}

// Range is a now-anchored preset or an absolute custom interval. Exactly one
// variant is active; Start and End are only meaningful for Custom.
type Range struct {
	Kind  Kind
	Start time.Time
	End   time.Time
}

// Preset returns a range of the given preset kind.
func Preset(k Kind) *Range {
	return &Range{Kind: k}
}

// NewCustom returns a custom range. start must not be after end.
func NewCustom(start, end time.Time) (*Range, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange,
			start.UTC().Format(DisplayLayout), end.UTC().Format(DisplayLayout))
	}
	return &Range{Kind: Custom, Start: start, End: end}, nil
}

// Presets returns every preset in menu order.
func Presets() []*Range {
	out := make([]*Range, 0, len(presetOffsets))
	for k := Last15Min; k < Custom; k++ {
		out = append(out, Preset(k))
	}
	return out
}

// Offset returns the fixed duration of a preset, zero for Custom.
func (r Range) Offset() time.Duration {
	return presetOffsets[r.Kind]
}

// Resolve returns the lower bound of the range as epoch seconds, evaluated
// against now. Presets subtract their offset from now; Custom returns Start.
func (r Range) Resolve(now time.Time) int64 {
	if r.Kind == Custom {
		return r.Start.Unix()
	}
	return now.Add(-presetOffsets[r.Kind]).Unix()
}

// Label is the menu label; "Custom" for custom ranges.
func (r Range) Label() string {
	return labels[r.Kind]
}

// String renders presets by label and custom ranges as "<start> - <end>".
func (r Range) String() string {
	if r.Kind == Custom {
		return r.Start.UTC().Format(DisplayLayout) + " - " + r.End.UTC().Format(DisplayLayout)
	}
	return labels[r.Kind]
}

// StartParam is the start_timestamp parameter for r, or "" when no range is
// selected.
func StartParam(r *Range, now time.Time) string {
	if r == nil {
		return ""
	}
	return strconv.FormatInt(r.Resolve(now), 10)
}

// EndParam is the end_timestamp parameter. The editor only filters on the
// lower bound, so this is always empty, custom ranges included.
func EndParam(r *Range) string {
	return ""
}

// Describe renders an optional range the way the editor button does.
func Describe(r *Range) string {
	if r == nil {
		return "No date range"
	}
	return r.String()
}

// Parse resolves a preset from its label ("Last 7 days") or a short key
// ("7d"). Labels are matched case-insensitively; short keys are exact since
// "3M" and "30m" differ only by case. "" and "none" yield a nil range.
func Parse(s string) (*Range, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") || strings.EqualFold(s, "No date range") {
		return nil, nil
	}
	if k, ok := shortKeys[s]; ok {
		return Preset(k), nil
	}
	for k := Last15Min; k < Custom; k++ {
		if strings.EqualFold(labels[k], s) {
			return Preset(k), nil
		}
	}
	return nil, fmt.Errorf("%w: unknown preset %q", ErrInvalidRange, s)
}

// ParseCustom builds a custom range from two "yyyy/mm/dd hh:mm:ss" UTC bounds.
func ParseCustom(start, end string) (*Range, error) {
	s, err := time.ParseInLocation(DisplayLayout, strings.TrimSpace(start), time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: start: %v", ErrInvalidRange, err)
	}
	e, err := time.ParseInLocation(DisplayLayout, strings.TrimSpace(end), time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: end: %v", ErrInvalidRange, err)
	}
	return NewCustom(s, e)
}
