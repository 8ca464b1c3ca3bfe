// Package dh wraps the Deephaven Go client. All connection, session,
// and wire handling belongs to the client library; this package only
// resolves worker names to connection parameters and keeps opened
// sessions around for reuse.
package dh

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"

	"github.com/apache/arrow/go/v8/arrow"
	dhclient "github.com/deephaven/deephaven-core/go/pkg/client"

	"github.com/michaelbrown/dhmcp/internal/workers"
)

// TableSchema is the schema of one table: column name → column type.
type TableSchema struct {
	Table  string            `json:"table"`
	Schema map[string]string `json:"schema"`
}

// Manager opens Deephaven sessions on demand and caches them per
// resolved worker name. A session that fails a call is evicted so the
// next call redials.
type Manager struct {
	cfg      *workers.Config
	mu       sync.Mutex
	sessions map[string]*dhclient.Client
}

// NewManager creates a Manager over a loaded worker configuration.
func NewManager(cfg *workers.Config) *Manager {
	return &Manager{
		cfg:      cfg,
		sessions: make(map[string]*dhclient.Client),
	}
}

// session returns a cached or freshly dialed client for the named
// worker (empty name means the configured default).
func (m *Manager) session(ctx context.Context, worker string) (*dhclient.Client, string, error) {
	w, resolved, err := m.cfg.Resolve(worker)
	if err != nil {
		return nil, "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.sessions[resolved]; ok {
		return c, resolved, nil
	}

	opts, err := sessionOptions(w)
	if err != nil {
		return nil, "", fmt.Errorf("worker %s: %w", resolved, err)
	}
	if w.Host == "" || w.Port == 0 {
		return nil, "", fmt.Errorf("worker %s must specify host and port", resolved)
	}

	authType, authToken := auth(w)
	log.Printf("Opening Deephaven session for worker %s (%s)", resolved, w.Addr())
	c, err := dhclient.NewClient(ctx, w.Host, strconv.Itoa(w.Port), authType, authToken, opts...)
	if err != nil {
		return nil, "", fmt.Errorf("connecting to worker %s (%s): %w", resolved, w.Addr(), err)
	}

	m.sessions[resolved] = c
	return c, resolved, nil
}

// sessionOptions translates worker parameters into client options.
func sessionOptions(w workers.Worker) ([]dhclient.ClientOption, error) {
	// The Go client dials plaintext gRPC; TLS workers stay in the
	// config schema but cannot be served.
	if w.UseTLS {
		return nil, fmt.Errorf("use_tls is not supported by the Deephaven Go client")
	}

	sessionType := w.SessionType
	if sessionType == "" {
		sessionType = "python"
	}

	return []dhclient.ClientOption{
		dhclient.WithConsole(sessionType),
	}, nil
}

// auth returns the authentication type and token for a worker,
// defaulting to anonymous access.
func auth(w workers.Worker) (authType, authToken string) {
	authType = w.AuthType
	if authType == "" {
		authType = "Anonymous"
	}
	return authType, w.AuthToken
}

// evict drops a session whose call failed and closes it, so the next
// call dials a fresh one.
func (m *Manager) evict(worker string, c *dhclient.Client) {
	m.mu.Lock()
	if m.sessions[worker] == c {
		delete(m.sessions, worker)
	}
	m.mu.Unlock()
	c.Close()
}

// ListTables returns the names of the tables the worker exposes.
func (m *Manager) ListTables(ctx context.Context, worker string) ([]string, error) {
	c, resolved, err := m.session(ctx, worker)
	if err != nil {
		return nil, err
	}

	tables, err := c.ListOpenableTables(ctx)
	if err != nil {
		m.evict(resolved, c)
		return nil, fmt.Errorf("listing tables on worker %s: %w", resolved, err)
	}
	return tables, nil
}

// TableSchemas returns the schema of every table the worker exposes.
func (m *Manager) TableSchemas(ctx context.Context, worker string) ([]TableSchema, error) {
	c, resolved, err := m.session(ctx, worker)
	if err != nil {
		return nil, err
	}

	tables, err := c.ListOpenableTables(ctx)
	if err != nil {
		m.evict(resolved, c)
		return nil, fmt.Errorf("listing tables on worker %s: %w", resolved, err)
	}

	schemas := make([]TableSchema, 0, len(tables))
	for _, table := range tables {
		schema, err := m.tableSchema(ctx, c, table)
		if err != nil {
			m.evict(resolved, c)
			return nil, fmt.Errorf("reading schema of %s on worker %s: %w", table, resolved, err)
		}
		schemas = append(schemas, TableSchema{Table: table, Schema: schema})
	}
	return schemas, nil
}

// tableSchema snapshots a table and reads column names and types off
// the Arrow schema.
func (m *Manager) tableSchema(ctx context.Context, c *dhclient.Client, table string) (map[string]string, error) {
	handle, err := c.OpenTable(ctx, table)
	if err != nil {
		return nil, err
	}
	defer handle.Release(ctx)

	rec, err := handle.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	defer rec.Release()

	return recordSchema(rec), nil
}

// recordSchema flattens an Arrow record's schema into column name → type.
func recordSchema(rec arrow.Record) map[string]string {
	schema := make(map[string]string)
	for _, field := range rec.Schema().Fields() {
		schema[field.Name] = field.Type.Name()
	}
	return schema
}

// Close closes every cached session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, c := range m.sessions {
		c.Close()
		delete(m.sessions, name)
	}
}
