package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Validator validates JSON documents against a compiled schema.
type Validator struct {
	schema *jsonschema.Schema
}

// HitError lists the failures of one hit.
type HitError struct {
	Index  int      `json:"index"`
	Errors []string `json:"errors"`
}

// Report is the outcome of validating a batch of hits.
type Report struct {
	Valid   bool       `json:"valid"`
	Checked int        `json:"checked"`
	Invalid int        `json:"invalid"`
	Hits    []HitError `json:"hits,omitempty"`
}

// NewValidator compiles a derived schema.
func NewValidator(s *invopop.Schema) (*Validator, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	return NewValidatorFromJSON(raw)
}

// NewValidatorFromJSON compiles a raw JSON Schema document.
func NewValidatorFromJSON(raw []byte) (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing JSON Schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("hit.json", doc); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	compiled, err := compiler.Compile("hit.json")
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// Validate checks a single JSON document and returns its failures, or nil.
func (v *Validator) Validate(data []byte) []string {
	value, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return []string{fmt.Sprintf("invalid JSON: %s", err)}
	}
	return extractValidationErrors(v.schema.Validate(value))
}

// ValidateHits checks every hit; indices follow response order.
func (v *Validator) ValidateHits(hits []json.RawMessage) *Report {
	r := &Report{Valid: true, Checked: len(hits)}
	for i, hit := range hits {
		if errs := v.Validate(hit); len(errs) > 0 {
			r.Valid = false
			r.Invalid++
			r.Hits = append(r.Hits, HitError{Index: i, Errors: errs})
		}
	}
	return r
}

func extractValidationErrors(err error) []string {
	if err == nil {
		return nil
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		return extractDetailedErrors(validationErr)
	}
	return []string{err.Error()}
}

var printer = message.NewPrinter(language.English)

// extractDetailedErrors flattens the error tree into "path: message" lines,
// deduplicated and sorted by path.
func extractDetailedErrors(err *jsonschema.ValidationError) []string {
	byPath := make(map[string][]string)
	collectErrors(err, byPath)

	paths := make([]string, 0, len(byPath))
	for p := range byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var out []string
	for _, p := range paths {
		seen := make(map[string]bool)
		for _, msg := range byPath[p] {
			if seen[msg] {
				continue
			}
			seen[msg] = true
			if p != "" {
				out = append(out, p+": "+msg)
			} else {
				out = append(out, msg)
			}
		}
	}
	return out
}

// collectErrors gathers leaf errors, skipping reference wrappers.
func collectErrors(err *jsonschema.ValidationError, byPath map[string][]string) {
	path := ""
	if len(err.InstanceLocation) > 0 {
		path = "/" + strings.Join(err.InstanceLocation, "/")
	}
	if err.ErrorKind != nil && len(err.Causes) == 0 {
		msg := err.ErrorKind.LocalizedString(printer)
		if !strings.HasPrefix(msg, "$ref ") && !strings.HasPrefix(msg, "doesn't validate with") {
			byPath[path] = append(byPath[path], msg)
		}
	}
	for _, cause := range err.Causes {
		collectErrors(cause, byPath)
	}
}

// ToMap converts a derived schema to a generic map for JSON output.
func ToMap(s *invopop.Schema) (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
