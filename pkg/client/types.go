package client

import (
	"encoding/json"
	"time"
)

// Cluster is the response of GET /api/v1/cluster.
type Cluster struct {
	ClusterID string `json:"cluster_id"`
}

// IndexingStats is the response of GET /api/v1/indexing.
type IndexingStats struct {
	NumStagedSplits *int64 `json:"num_staged_splits,omitempty"`
}

// StagedSplits returns the staged split count, zero when the backend omits it.
func (s *IndexingStats) StagedSplits() int64 {
	if s == nil || s.NumStagedSplits == nil {
		return 0
	}
	return *s.NumStagedSplits
}

// Index is the full index metadata returned by the indexes endpoints.
type Index struct {
	IndexConfig     IndexConfig `json:"index_config"`
	CreateTimestamp int64       `json:"create_timestamp"`
	Sources         []Source    `json:"sources"`
}

// IndexConfig holds the static configuration of an index.
type IndexConfig struct {
	IndexID    string     `json:"index_id"`
	IndexURI   string     `json:"index_uri"`
	DocMapping DocMapping `json:"doc_mapping"`
}

// DocMapping describes the field schema of an index.
type DocMapping struct {
	FieldMappings  []FieldMapping `json:"field_mappings"`
	TimestampField string         `json:"timestamp_field,omitempty"`
}

// FieldMapping is a single field of a doc mapping.
type FieldMapping struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Source is an ingestion source attached to an index.
type Source struct {
	Version      string `json:"version"`
	SourceID     string `json:"source_id"`
	NumPipelines uint32 `json:"num_pipelines"`
	Enabled      bool   `json:"enabled"`
	SourceType   string `json:"source_type"`
	InputFormat  string `json:"input_format"`
}

// IndexSummary is the flattened view of an Index used by the console.
type IndexSummary struct {
	IndexID        string         `json:"index_id"`
	IndexURI       string         `json:"index_uri"`
	CreatedAt      time.Time      `json:"created_at"`
	FieldMappings  []FieldMapping `json:"field_mappings"`
	TimestampField string         `json:"timestamp_field,omitempty"`
	SourceCount    int            `json:"source_count"`
}

// Summary flattens the index metadata.
func (idx *Index) Summary() IndexSummary {
	fields := idx.IndexConfig.DocMapping.FieldMappings
	if fields == nil {
		fields = []FieldMapping{}
	}
	return IndexSummary{
		IndexID:        idx.IndexConfig.IndexID,
		IndexURI:       idx.IndexConfig.IndexURI,
		CreatedAt:      time.Unix(idx.CreateTimestamp, 0).UTC(),
		FieldMappings:  fields,
		TimestampField: idx.IndexConfig.DocMapping.TimestampField,
		SourceCount:    len(idx.Sources),
	}
}

// IndexDescription holds the published statistics of an index.
type IndexDescription struct {
	PublishedDocCount              uint64 `json:"num_published_docs"`
	PublishedDocsUncompressedBytes uint64 `json:"size_published_docs_uncompressed"`
	PublishedSplitCount            uint32 `json:"num_published_splits"`
	PublishedSplitsBytes           uint64 `json:"size_published_splits"`
}

// SplitState is the lifecycle state of a split.
type SplitState string

// Split states as serialized by Quickwit.
const (
	SplitStaged            SplitState = "Staged"
	SplitPublished         SplitState = "Published"
	SplitMarkedForDeletion SplitState = "MarkedForDeletion"
)

// Split is one shard of indexed data. Only the state is decoded.
type Split struct {
	SplitState SplitState `json:"split_state"`
}

// ListSplitsResponse is the response of GET /api/v1/indexes/{id}/splits.
type ListSplitsResponse struct {
	Splits     []Split `json:"splits"`
	TotalCount *uint64 `json:"total_count,omitempty"`
}

// MarkedForDeletionCount counts the splits waiting for garbage collection.
func (r *ListSplitsResponse) MarkedForDeletionCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, s := range r.Splits {
		if s.SplitState == SplitMarkedForDeletion {
			n++
		}
	}
	return n
}

// QueryResponse is the response of a search request. Hits are kept as raw
// JSON since documents are schemaless.
type QueryResponse struct {
	ElapsedTimeMicros float64           `json:"elapsed_time_micros"`
	Hits              []json.RawMessage `json:"hits"`
	NumHits           int64             `json:"num_hits"`
}
