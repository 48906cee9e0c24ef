// Package client provides a Go SDK for the Quickwit REST API.
//
// The client covers the read-only surface an administrative console needs:
// cluster identity, index metadata and statistics, splits and search.
//
// # Quick Start
//
// Create a client and list indexes:
//
//	c := client.New()
//	indexes, err := c.ListIndexes(ctx)
//
// Use custom configuration:
//
//	c := client.New(
//	    client.WithBaseURL("http://quickwit:7280"),
//	    client.WithHTTPClient(customHTTPClient),
//	)
//
// # Searching
//
// Searches are built with a fluent builder that starts from an index id and
// defaults (20 hits, no sort, no time bounds):
//
//	resp, err := c.Query("logs").
//	    WithQuery("error AND level:5").
//	    WithMaxHits(50).
//	    WithSortField("timestamp_nanos").
//	    WithStartTimestamp("1700000000").
//	    Execute(ctx)
//
// Parameters are serialized in a fixed order (query, max_hits, sort_by_field,
// start_timestamp, end_timestamp) and optional ones are only sent when set.
// Attach a HistoryWriter with WithHistory to mirror each executed search
// into a page location.
//
// # Errors
//
// Transport failures are reported as *NetworkError, bodies that do not match
// the expected shape as *DecodeError and HTTP error statuses as *APIError.
// Use errors.As to tell them apart. No call is ever retried.
package client
