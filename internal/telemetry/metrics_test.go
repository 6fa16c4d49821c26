package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraconstructs/skillshare/internal/config"
	"github.com/uptrace/bun"
)

// With no meter provider installed these run against the noop implementation;
// the tests pin that recording never panics and Init stays inert.

func TestInit_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Init(context.Background(), config.ObservabilityConfig{ServiceName: "test"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestServerMetrics_Record(t *testing.T) {
	m, err := NewServerMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RequestStarted(ctx)
	m.RecordRequest(ctx, "GET", "/api/posts", "200", 1.5)
	m.RecordRequest(ctx, "GET", "/api/posts", "503", 1.5)
	m.RequestFinished(ctx)
}

func TestDatabaseMetrics_QueryHook(t *testing.T) {
	m, err := NewDatabaseMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	event := &bun.QueryEvent{Query: "SELECT 1", StartTime: time.Now()}
	ctx = m.BeforeQuery(ctx, event)
	m.AfterQuery(ctx, event)

	event.Err = sql.ErrNoRows
	m.AfterQuery(ctx, event)
}

func TestAuthMetrics_Record(t *testing.T) {
	m, err := NewAuthMetrics()
	require.NoError(t, err)
	m.RecordAuth(context.Background(), true, "")
	m.RecordAuth(context.Background(), false, "expired")
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, isNoRows(sql.ErrNoRows))
	assert.False(t, isNoRows(errors.New("boom")))
}
