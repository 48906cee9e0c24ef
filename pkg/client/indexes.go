package client

import (
	"context"
	"fmt"
)

// GetCluster retrieves the cluster identity.
func (c *Client) GetCluster(ctx context.Context) (*Cluster, error) {
	var cluster Cluster
	if err := c.get(ctx, "/api/v1/cluster", "/api/v1/cluster", &cluster); err != nil {
		return nil, fmt.Errorf("getting cluster: %w", err)
	}
	return &cluster, nil
}

// ListIndexes retrieves the metadata of every index.
func (c *Client) ListIndexes(ctx context.Context) ([]Index, error) {
	var indexes []Index
	if err := c.get(ctx, "/api/v1/indexes", "/api/v1/indexes", &indexes); err != nil {
		return nil, fmt.Errorf("listing indexes: %w", err)
	}
	return indexes, nil
}

// GetIndexingStats retrieves cluster-wide indexing statistics.
func (c *Client) GetIndexingStats(ctx context.Context) (*IndexingStats, error) {
	var stats IndexingStats
	if err := c.get(ctx, "/api/v1/indexing", "/api/v1/indexing", &stats); err != nil {
		return nil, fmt.Errorf("getting indexing stats: %w", err)
	}
	return &stats, nil
}

// indexPath returns the metadata path of an index, encoded like the search
// path.
func indexPath(indexID string) string {
	return "/api/v1/indexes/" + EncodeComponent(indexID)
}

// GetIndex retrieves the metadata of a single index.
func (c *Client) GetIndex(ctx context.Context, indexID string) (*Index, error) {
	path := indexPath(indexID)
	var index Index
	if err := c.get(ctx, "/api/v1/indexes/{id}", path, &index); err != nil {
		return nil, fmt.Errorf("getting index %q: %w", indexID, err)
	}
	return &index, nil
}

// DescribeIndex retrieves the published statistics of an index.
func (c *Client) DescribeIndex(ctx context.Context, indexID string) (*IndexDescription, error) {
	path := indexPath(indexID) + "/describe"
	var desc IndexDescription
	if err := c.get(ctx, "/api/v1/indexes/{id}/describe", path, &desc); err != nil {
		return nil, fmt.Errorf("describing index %q: %w", indexID, err)
	}
	return &desc, nil
}

// ListSplits retrieves the splits of an index.
func (c *Client) ListSplits(ctx context.Context, indexID string) (*ListSplitsResponse, error) {
	path := indexPath(indexID) + "/splits"
	var splits ListSplitsResponse
	if err := c.get(ctx, "/api/v1/indexes/{id}/splits", path, &splits); err != nil {
		return nil, fmt.Errorf("listing splits of index %q: %w", indexID, err)
	}
	return &splits, nil
}
