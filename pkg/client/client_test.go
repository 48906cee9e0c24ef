package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"index not found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const indexJSON = `{
  "index_config": {
    "index_id": "logs",
    "index_uri": "s3://bucket/logs",
    "doc_mapping": {
      "field_mappings": [{"name": "body", "type": "text"}, {"name": "timestamp_nanos", "type": "datetime"}],
      "timestamp_field": "timestamp_nanos"
    }
  },
  "create_timestamp": 1700000000,
  "sources": [{"version": "0.8", "source_id": "_ingest-api-source", "num_pipelines": 1, "enabled": true, "source_type": "ingest-api", "input_format": "json"}]
}`

func TestClient_ListIndexes(t *testing.T) {
	srv := newTestServer(t, map[string]string{"/api/v1/indexes": "[" + indexJSON + "]"})
	c := New(WithBaseURL(srv.URL + "/"))

	indexes, err := c.ListIndexes(context.Background())
	require.NoError(t, err)
	require.Len(t, indexes, 1)

	sum := indexes[0].Summary()
	assert.Equal(t, "logs", sum.IndexID)
	assert.Equal(t, "s3://bucket/logs", sum.IndexURI)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), sum.CreatedAt)
	assert.Equal(t, 1, sum.SourceCount)
	assert.Equal(t, "timestamp_nanos", sum.TimestampField)
	assert.Equal(t, []FieldMapping{{Name: "body", Type: "text"}, {Name: "timestamp_nanos", Type: "datetime"}}, sum.FieldMappings)
}

func TestClient_ReadEndpoints(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/api/v1/cluster":               `{"cluster_id":"qw-dev"}`,
		"/api/v1/indexing":              `{"num_staged_splits":4}`,
		"/api/v1/indexes/logs":          indexJSON,
		"/api/v1/indexes/logs/describe": `{"num_published_docs":10,"size_published_docs_uncompressed":2048,"num_published_splits":2,"size_published_splits":1024}`,
		"/api/v1/indexes/logs/splits":   `{"splits":[{"split_state":"Published"},{"split_state":"MarkedForDeletion"},{"split_state":"MarkedForDeletion"},{"split_state":"Staged"}],"total_count":4}`,
	})
	c := New(WithBaseURL(srv.URL))
	ctx := context.Background()

	cluster, err := c.GetCluster(ctx)
	require.NoError(t, err)
	assert.Equal(t, "qw-dev", cluster.ClusterID)

	stats, err := c.GetIndexingStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.StagedSplits())

	index, err := c.GetIndex(ctx, "logs")
	require.NoError(t, err)
	assert.Equal(t, "logs", index.IndexConfig.IndexID)

	desc, err := c.DescribeIndex(ctx, "logs")
	require.NoError(t, err)
	assert.Equal(t, IndexDescription{
		PublishedDocCount:              10,
		PublishedDocsUncompressedBytes: 2048,
		PublishedSplitCount:            2,
		PublishedSplitsBytes:           1024,
	}, *desc)

	splits, err := c.ListSplits(ctx, "logs")
	require.NoError(t, err)
	assert.Equal(t, 2, splits.MarkedForDeletionCount())
	require.NotNil(t, splits.TotalCount)
	assert.Equal(t, uint64(4), *splits.TotalCount)
}

func TestIndexingStats_MissingCount(t *testing.T) {
	srv := newTestServer(t, map[string]string{"/api/v1/indexing": `{}`})
	stats, err := New(WithBaseURL(srv.URL)).GetIndexingStats(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stats.NumStagedSplits)
	assert.Equal(t, int64(0), stats.StagedSplits())
}

func TestClient_APIError(t *testing.T) {
	srv := newTestServer(t, nil)
	_, err := New(WithBaseURL(srv.URL)).DescribeIndex(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "index not found", apiErr.Message)
}

func TestClient_DecodeError(t *testing.T) {
	srv := newTestServer(t, map[string]string{"/api/v1/cluster": `["not","an","object"]`})
	_, err := New(WithBaseURL(srv.URL)).GetCluster(context.Background())
	require.Error(t, err)

	var decErr *DecodeError
	assert.True(t, errors.As(err, &decErr))
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(WithBaseURL(url)).ListIndexes(context.Background())
	require.Error(t, err)

	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}

type recordedCall struct {
	route  string
	status int
	err    error
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (o *recordingObserver) ObserveRequest(method, route string, status int, elapsed time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, recordedCall{route: route, status: status, err: err})
}

func TestClient_Observer(t *testing.T) {
	srv := newTestServer(t, map[string]string{"/api/v1/indexes/logs/describe": `{"num_published_docs":1}`})
	obs := &recordingObserver{}
	c := New(WithBaseURL(srv.URL), WithObserver(obs))

	_, err := c.DescribeIndex(context.Background(), "logs")
	require.NoError(t, err)
	_, err = c.ListSplits(context.Background(), "logs")
	require.Error(t, err)

	require.Len(t, obs.calls, 2)
	assert.Equal(t, "/api/v1/indexes/{id}/describe", obs.calls[0].route)
	assert.Equal(t, http.StatusOK, obs.calls[0].status)
	assert.NoError(t, obs.calls[0].err)
	assert.Equal(t, "/api/v1/indexes/{id}/splits", obs.calls[1].route)
	assert.Equal(t, http.StatusNotFound, obs.calls[1].status)
	assert.Error(t, obs.calls[1].err)
}

func TestClient_IndexIDEncoding(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.EscapedPath())
		mu.Unlock()
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	c := New(WithBaseURL(srv.URL))
	ctx := context.Background()

	id := "a b/c+d"
	_, err := c.GetIndex(ctx, id)
	require.NoError(t, err)
	_, err = c.DescribeIndex(ctx, id)
	require.NoError(t, err)
	_, err = c.ListSplits(ctx, id)
	require.NoError(t, err)
	req := c.Query(id).Request()
	_, err = c.Search(ctx, &req)
	require.NoError(t, err)

	enc := EncodeComponent(id)
	assert.Equal(t, "a%20b%2Fc%2Bd", enc)
	assert.Equal(t, []string{
		"/api/v1/indexes/" + enc,
		"/api/v1/indexes/" + enc + "/describe",
		"/api/v1/indexes/" + enc + "/splits",
		"/api/v1/" + enc + "/search",
	}, paths)
}
