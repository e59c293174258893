package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingua/cmsinit/internal/config"
)

func TestInitProvider_UnreachableCollector(t *testing.T) {
	// The gRPC dial is non-blocking, so setup succeeds with no collector.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := InitProvider(ctx, config.TelemetryConfig{
		OTLPEndpoint: "localhost:19999",
		OTLPInsecure: true,
		ServiceName:  "cmsinit-test",
	})
	require.NoError(t, err)
	require.NotNil(t, p)

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer shutCancel()
	assert.NoError(t, p.Shutdown(shutCtx))
}

func TestInitProvider_EmptyEndpoint(t *testing.T) {
	_, err := InitProvider(context.Background(), config.TelemetryConfig{ServiceName: "cmsinit-test"})
	assert.Error(t, err)
}
