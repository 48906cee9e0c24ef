// Package location models the page address of a console session: the query
// string that mirrors the editor state and the history stack it is pushed to.
package location

import (
	"net/url"
	"strings"
	"sync"
)

// Location is the narrow page-location adapter the editor depends on.
type Location interface {
	// ReadParams returns the query parameters of the current entry.
	ReadParams() url.Values
	// PushParams appends a history entry whose query string is rawQuery
	// (with or without a leading '?') without navigating.
	PushParams(rawQuery string)
}

// Memory is an in-process history stack. The zero value starts on an empty
// address. It is safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	entries []string
	current int
}

// NewMemory creates a history whose first entry is the query string of
// rawURL. rawURL may be a full URL, a path with a query or a bare query.
func NewMemory(rawURL string) (*Memory, error) {
	query, err := queryOf(rawURL)
	if err != nil {
		return nil, err
	}
	return &Memory{entries: []string{query}}, nil
}

func queryOf(rawURL string) (string, error) {
	if rawURL == "" {
		return "", nil
	}
	if !strings.Contains(rawURL, "?") && !strings.Contains(rawURL, "/") && strings.Contains(rawURL, "=") {
		rawURL = "?" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return u.RawQuery, nil
}

// ReadParams implements Location.
func (m *Memory) ReadParams() url.Values {
	// Malformed pairs are skipped; the well-formed ones are still returned.
	values, _ := url.ParseQuery(m.Current())
	return values
}

// PushParams implements Location. Forward entries are dropped, as a browser
// does when a new entry is pushed after navigating back.
func (m *Memory) PushParams(rawQuery string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		m.entries = []string{""}
	}
	m.entries = append(m.entries[:m.current+1], strings.TrimPrefix(rawQuery, "?"))
	m.current = len(m.entries) - 1
}

// Current returns the raw query string of the current entry, without '?'.
func (m *Memory) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		return ""
	}
	return m.entries[m.current]
}

// Back moves to the previous entry. It reports false at the oldest entry.
func (m *Memory) Back() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == 0 {
		return false
	}
	m.current--
	return true
}

// Forward moves to the next entry. It reports false at the newest entry.
func (m *Memory) Forward() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current+1 >= len(m.entries) {
		return false
	}
	m.current++
	return true
}

// Len returns the number of history entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
