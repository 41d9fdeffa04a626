// Package graph is the narrow read/write gateway to the Neo4j store holding
// the jQAssistant scan. Every query in this repository is a compile-time
// constant Cypher string plus parameters; the gateway stays agnostic of what
// the queries mean.
package graph

import (
	"context"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	apperrors "github.com/2015xli/jqassistant-graph-rag/internal/errors"
)

// Counters reports the write effects of a query, mirroring the driver's
// summary counters.
type Counters struct {
	NodesCreated         int
	NodesDeleted         int
	PropertiesSet        int
	LabelsAdded          int
	LabelsRemoved        int
	RelationshipsCreated int
	RelationshipsDeleted int
}

// Total returns the sum of all counters; zero means the query was a no-op.
func (c Counters) Total() int {
	return c.NodesCreated + c.NodesDeleted + c.PropertiesSet + c.LabelsAdded +
		c.LabelsRemoved + c.RelationshipsCreated + c.RelationshipsDeleted
}

// Client wraps the Neo4j driver with query helpers and error mapping. Safe
// for concurrent use; each query acquires its own session.
type Client struct {
	driver   neo4j.DriverWithContext
	logger   *slog.Logger
	database string
	timeout  time.Duration
}

// NewClient creates a Neo4j client and verifies connectivity (fail fast on
// startup). Failure to connect surfaces as a GraphUnavailable error.
func NewClient(ctx context.Context, uri, user, password string) (*Client, error) {
	if uri == "" || user == "" {
		return nil, apperrors.ConfigErrorf("neo4j credentials missing: uri=%s, user=%s", uri, user)
	}

	driver, err := neo4j.NewDriverWithContext(uri,
		neo4j.BasicAuth(user, password, ""),
		func(config *neo4j.Config) {
			config.MaxConnectionPoolSize = 50
			config.ConnectionAcquisitionTimeout = 60 * time.Second
			config.MaxConnectionLifetime = 3600 * time.Second
			config.SocketConnectTimeout = 5 * time.Second
			config.SocketKeepalive = true
		})
	if err != nil {
		return nil, apperrors.GraphUnavailable(err, "failed to create neo4j driver")
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, apperrors.GraphUnavailable(err, "failed to connect to neo4j at "+uri)
	}

	logger := slog.Default().With("component", "graph")
	logger.Info("neo4j client connected", "uri", uri, "user", user)

	return &Client{
		driver:   driver,
		logger:   logger,
		database: "neo4j",
		timeout:  120 * time.Second,
	}, nil
}

// Close closes the driver connection.
func (c *Client) Close(ctx context.Context) error {
	if err := c.driver.Close(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.KindGraphUnavailable, "failed to close neo4j driver")
	}
	c.logger.Info("neo4j client closed")
	return nil
}

// HealthCheck verifies connectivity.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.driver.VerifyConnectivity(ctx); err != nil {
		return apperrors.GraphUnavailable(err, "neo4j health check failed")
	}
	return nil
}

// Read executes a read-only Cypher query and returns the records as maps.
func (c *Client) Read(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	queryCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := neo4j.ExecuteQuery(queryCtx, c.driver, query, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(c.database),
		neo4j.ExecuteQueryWithReadersRouting())
	if err != nil {
		return nil, apperrors.GraphQueryError(err, "read query failed")
	}

	records := make([]map[string]any, 0, len(result.Records))
	for _, record := range result.Records {
		records = append(records, record.AsMap())
	}

	c.logger.Debug("read query executed", "record_count", len(records))
	return records, nil
}

// Write executes a write Cypher query and returns the summary counters.
// Write queries are serialized per logical pass by the caller; the gateway
// itself only guarantees session-level safety.
func (c *Client) Write(ctx context.Context, query string, params map[string]any) (Counters, error) {
	queryCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := neo4j.ExecuteQuery(queryCtx, c.driver, query, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(c.database))
	if err != nil {
		return Counters{}, apperrors.GraphQueryError(err, "write query failed")
	}

	sc := result.Summary.Counters()
	counters := Counters{
		NodesCreated:         sc.NodesCreated(),
		NodesDeleted:         sc.NodesDeleted(),
		PropertiesSet:        sc.PropertiesSet(),
		LabelsAdded:          sc.LabelsAdded(),
		LabelsRemoved:        sc.LabelsRemoved(),
		RelationshipsCreated: sc.RelationshipsCreated(),
		RelationshipsDeleted: sc.RelationshipsDeleted(),
	}

	c.logger.Debug("write query executed",
		"properties_set", counters.PropertiesSet,
		"labels_added", counters.LabelsAdded,
		"relationships_created", counters.RelationshipsCreated)
	return counters, nil
}
