package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
)

// Search request defaults and limits.
const (
	DefaultMaxHits = 20
	MinMaxHits     = 1
	MaxMaxHits     = 1000
)

// HistoryWriter receives the query string of every executed search, so the
// caller's page location can mirror it without navigating.
type HistoryWriter interface {
	PushParams(rawQuery string)
}

// QueryRequest is a search request against a single index.
// Nil optional fields are omitted from the wire; empty strings are sent empty.
type QueryRequest struct {
	IndexID        string
	Query          string
	MaxHits        int
	SortField      *string
	StartTimestamp *string
	EndTimestamp   *string
}

// Params serializes the request parameters in a fixed order:
// query, max_hits, sort_by_field, start_timestamp, end_timestamp.
func (r *QueryRequest) Params() string {
	var b strings.Builder
	b.WriteString("query=")
	b.WriteString(EncodeComponent(r.Query))
	b.WriteString("&max_hits=")
	b.WriteString(strconv.Itoa(r.MaxHits))
	if r.SortField != nil {
		b.WriteString("&sort_by_field=")
		b.WriteString(EncodeComponent(*r.SortField))
	}
	if r.StartTimestamp != nil {
		b.WriteString("&start_timestamp=")
		b.WriteString(EncodeComponent(*r.StartTimestamp))
	}
	if r.EndTimestamp != nil {
		b.WriteString("&end_timestamp=")
		b.WriteString(EncodeComponent(*r.EndTimestamp))
	}
	return b.String()
}

// Path returns the backend search path including the query string.
func (r *QueryRequest) Path() string {
	return "/api/v1/" + EncodeComponent(r.IndexID) + "/search?" + r.Params()
}

// LocationQuery returns the page query string mirroring this request,
// with a leading '?'.
func (r *QueryRequest) LocationQuery() string {
	return "?index=" + EncodeComponent(r.IndexID) + "&" + r.Params()
}

// Validate checks the request bounds.
func (r *QueryRequest) Validate() error {
	if r.IndexID == "" {
		return fmt.Errorf("index id is required")
	}
	if r.MaxHits < MinMaxHits || r.MaxHits > MaxMaxHits {
		return fmt.Errorf("max_hits %d out of range [%d, %d]", r.MaxHits, MinMaxHits, MaxMaxHits)
	}
	return nil
}

// EncodeComponent percent-encodes s keeping only the RFC 3986 unreserved
// characters, with spaces as %20.
func EncodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Search executes a search request. Unlike QueryBuilder.Execute it never
// touches a history writer.
func (c *Client) Search(ctx context.Context, req *QueryRequest) (*QueryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var resp QueryResponse
	if err := c.get(ctx, "/api/v1/{index}/search", req.Path(), &resp); err != nil {
		return nil, fmt.Errorf("searching index %q: %w", req.IndexID, err)
	}
	return &resp, nil
}

// QueryBuilder accumulates a search request. Only Execute performs I/O.
type QueryBuilder struct {
	client  *Client
	req     QueryRequest
	history HistoryWriter
}

// Query starts a search request against indexID with default settings.
func (c *Client) Query(indexID string) *QueryBuilder {
	return &QueryBuilder{
		client: c,
		req: QueryRequest{
			IndexID: indexID,
			MaxHits: DefaultMaxHits,
		},
	}
}

// WithQuery sets the query text.
func (b *QueryBuilder) WithQuery(query string) *QueryBuilder {
	b.req.Query = query
	return b
}

// WithMaxHits sets the maximum number of hits returned.
func (b *QueryBuilder) WithMaxHits(maxHits int) *QueryBuilder {
	b.req.MaxHits = maxHits
	return b
}

// WithSortField sets the field results are sorted by.
func (b *QueryBuilder) WithSortField(field string) *QueryBuilder {
	b.req.SortField = &field
	return b
}

// WithTimeRange sets both timestamp bounds.
func (b *QueryBuilder) WithTimeRange(start, end string) *QueryBuilder {
	b.req.StartTimestamp = &start
	b.req.EndTimestamp = &end
	return b
}

// WithStartTimestamp sets the lower timestamp bound.
func (b *QueryBuilder) WithStartTimestamp(start string) *QueryBuilder {
	b.req.StartTimestamp = &start
	return b
}

// WithEndTimestamp sets the upper timestamp bound.
func (b *QueryBuilder) WithEndTimestamp(end string) *QueryBuilder {
	b.req.EndTimestamp = &end
	return b
}

// WithHistory mirrors the executed request into h.
func (b *QueryBuilder) WithHistory(h HistoryWriter) *QueryBuilder {
	b.history = h
	return b
}

// Request returns a copy of the accumulated request.
func (b *QueryBuilder) Request() QueryRequest {
	return b.req
}

// Execute sends the search and, before waiting on the response, pushes the
// request's parameters to the history writer. Errors are returned untouched;
// there is no retry.
func (b *QueryBuilder) Execute(ctx context.Context) (*QueryResponse, error) {
	req := b.req
	if err := req.Validate(); err != nil {
		return nil, err
	}

	slog.Info("executing search", slog.String("path", req.Path()))

	if b.history != nil {
		b.history.PushParams(req.LocationQuery())
	}

	return b.client.Search(ctx, &req)
}
