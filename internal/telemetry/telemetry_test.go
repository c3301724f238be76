package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewProvider registers on the default Prometheus registry, so the
// whole file shares one instance.
var provider = NewProvider()

func TestProvider_RecordsWithoutPanic(t *testing.T) {
	provider.RecordClassification("news", 2, 3*time.Millisecond)
	provider.RecordDomainMatch("music")
	provider.RecordKeywordMatch(time.Millisecond)
	provider.RecordAnalysis(1, 3, 10*time.Millisecond)
	provider.RecordFetch("news", nil)
	provider.RecordFetch("news", errors.New("boom"))
	provider.RecordQuotaExhausted("scholar")
	provider.RecordItemsCollected("news", 5)
	provider.RecordArticleGenerated("mock")
}

func TestProvider_StartSpan(t *testing.T) {
	ctx, span := provider.StartSpan(context.Background(), "test-span")
	require.NotNil(t, span)
	assert.NotNil(t, ctx)
	span.End()
}

func TestProvider_Handler(t *testing.T) {
	assert.NotNil(t, provider.Handler())
}
