package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{ServiceName: "framez-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	ctx, span := StartSpan(context.Background(), "PostService", "GetFeed", attribute.Int("limit", 10))
	assert.NotNil(t, ctx)
	span.AddAttributes(attribute.Bool("cached", false))
	span.End(errors.New("boom"))
}

func TestTrackQuery(t *testing.T) {
	done := TrackQuery("select_probe", "posts")
	done()
	assert.GreaterOrEqual(t, testutil.CollectAndCount(DatabaseQueryLatency, "framez_database_query_latency_seconds"), 1)
}
