// Package query runs jq expressions over search hits.
package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
	lru "github.com/hashicorp/golang-lru/v2"
)

const compiledCacheSize = 64

// Engine compiles and executes jq expressions. Compiled expressions are
// kept in a small LRU. Safe for concurrent use.
type Engine struct {
	compiled *lru.Cache[string, *gojq.Code]
}

// NewEngine creates a new query engine.
func NewEngine() *Engine {
	c, _ := lru.New[string, *gojq.Code](compiledCacheSize)
	return &Engine{compiled: c}
}

// Options control a query run.
type Options struct {
	// Slurp runs the expression once over the array of all hits instead of
	// once per hit.
	Slurp       bool
	Deduplicate bool
	// MaxResults caps the collected values; 0 means no cap.
	MaxResults int
}

// Result contains the values produced by a query.
type Result struct {
	Values         []any    `json:"values"`
	Errors         []string `json:"errors,omitempty"`
	RawCount       int      `json:"raw_count"`
	MatchedIndices []int    `json:"matched_indices,omitempty"` // hits that produced at least one value
	Truncated      bool     `json:"truncated,omitempty"`
}

func (e *Engine) compile(expression string) (*gojq.Code, error) {
	if code, ok := e.compiled.Get(expression); ok {
		return code, nil
	}
	q, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	e.compiled.Add(expression, code)
	return code, nil
}

// ValidateExpression checks that expression compiles without running it.
func (e *Engine) ValidateExpression(expression string) error {
	_, err := e.compile(expression)
	return err
}

// QueryHits runs expression over hits. Hits that are not valid JSON and
// runtime errors are reported in Result.Errors, labeled hit[i], and do not
// stop the run. Only an invalid expression fails the call.
func (e *Engine) QueryHits(hits []json.RawMessage, expression string, opts Options) (*Result, error) {
	code, err := e.compile(expression)
	if err != nil {
		return nil, err
	}

	r := &runner{
		opts:       opts,
		result:     &Result{Values: make([]any, 0)},
		seen:       make(map[string]bool),
		seenErrors: make(map[string]bool),
	}

	if opts.Slurp {
		all := make([]any, 0, len(hits))
		for i, hit := range hits {
			v, err := decode(hit)
			if err != nil {
				r.addError(fmt.Sprintf("hit[%d]: invalid JSON: %v", i, err))
				continue
			}
			all = append(all, v)
		}
		r.run(code, all, "hits", -1)
		return r.result, nil
	}

	for i, hit := range hits {
		if r.full() {
			r.result.Truncated = true
			break
		}
		label := fmt.Sprintf("hit[%d]", i)
		v, err := decode(hit)
		if err != nil {
			r.addError(fmt.Sprintf("%s: invalid JSON: %v", label, err))
			continue
		}
		r.run(code, v, label, i)
	}
	return r.result, nil
}

type runner struct {
	opts       Options
	result     *Result
	seen       map[string]bool
	seenErrors map[string]bool
}

func (r *runner) full() bool {
	return r.opts.MaxResults > 0 && len(r.result.Values) >= r.opts.MaxResults
}

func (r *runner) addError(msg string) {
	if r.seenErrors[msg] {
		return
	}
	r.seenErrors[msg] = true
	r.result.Errors = append(r.result.Errors, msg)
}

func (r *runner) run(code *gojq.Code, input any, label string, index int) {
	matched := false
	iter := code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			r.addError(formatJQError(label, err))
			continue
		}
		if v == nil {
			continue
		}
		if r.full() {
			r.result.Truncated = true
			break
		}

		r.result.RawCount++
		if !matched && index >= 0 {
			matched = true
			r.result.MatchedIndices = append(r.result.MatchedIndices, index)
		}
		if r.opts.Deduplicate {
			key := valueKey(v)
			if r.seen[key] {
				continue
			}
			r.seen[key] = true
		}
		r.result.Values = append(r.result.Values, v)
	}
}

// decode parses a hit keeping integers exact, so nanosecond timestamps
// survive the round trip through jq.
func decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return normalizeNumbers(v), nil
}

func normalizeNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i)
		}
		f, _ := val.Float64()
		return f
	case []any:
		for i := range val {
			val[i] = normalizeNumbers(val[i])
		}
		return val
	case map[string]any:
		for k := range val {
			val[k] = normalizeNumbers(val[k])
		}
		return val
	default:
		return v
	}
}

// formatJQError adds hints to common runtime errors. gojq returns these as
// plain errors, so the hints are matched on the message text.
func formatJQError(label string, err error) string {
	var haltErr *gojq.HaltError
	if errors.As(err, &haltErr) {
		if haltErr.Value() == nil {
			return fmt.Sprintf("%s: query halted", label)
		}
		return fmt.Sprintf("%s: query halted with: %v", label, haltErr.Value())
	}

	msg := err.Error()
	var hint string
	switch {
	case strings.Contains(msg, "cannot iterate over: null"):
		hint = " (the field may be missing from this hit)"
	case strings.Contains(msg, "cannot index") && strings.Contains(msg, "with"):
		hint = " (field not found or wrong type)"
	case strings.Contains(msg, "object") && strings.Contains(msg, "cannot be iterated"):
		hint = " (expected array but got object, try removing '[]')"
	case strings.Contains(msg, "array") && strings.Contains(msg, "cannot be indexed"):
		hint = " (expected object but got array, try adding '[]')"
	}
	return fmt.Sprintf("%s: %s%s", label, msg, hint)
}

func valueKey(v any) string {
	switch val := v.(type) {
	case string:
		return "s:" + val
	case int, float64:
		return fmt.Sprintf("n:%v", val)
	case bool:
		return fmt.Sprintf("b:%v", val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("?:%v", val)
		}
		return "j:" + string(b)
	}
}
