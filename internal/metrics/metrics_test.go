package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCacheLookup(t *testing.T) {
	before := testutil.ToFloat64(CacheLookups.WithLabelValues("mood", CacheHit))
	RecordCacheLookup("mood", CacheHit)
	RecordCacheLookup("mood", CacheHit)
	after := testutil.ToFloat64(CacheLookups.WithLabelValues("mood", CacheHit))
	if after-before != 2 {
		t.Fatalf("expected 2 hits recorded, got %v", after-before)
	}
}

func TestRecordProducerRun(t *testing.T) {
	okBefore := testutil.ToFloat64(ProducerRuns.WithLabelValues("discover", OutcomeOK))
	failBefore := testutil.ToFloat64(ProducerRuns.WithLabelValues("discover", OutcomeFailed))

	RecordProducerRun("discover", nil)
	RecordProducerRun("discover", errors.New("boom"))

	if got := testutil.ToFloat64(ProducerRuns.WithLabelValues("discover", OutcomeOK)) - okBefore; got != 1 {
		t.Errorf("ok runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ProducerRuns.WithLabelValues("discover", OutcomeFailed)) - failBefore; got != 1 {
		t.Errorf("failed runs = %v, want 1", got)
	}
}

func TestRecordProviderFetch(t *testing.T) {
	before := testutil.ToFloat64(ProviderRequests.WithLabelValues("openai", "rate_limited"))
	RecordProviderFetch("openai", "rate_limited", 150*time.Millisecond)
	if got := testutil.ToFloat64(ProviderRequests.WithLabelValues("openai", "rate_limited")) - before; got != 1 {
		t.Fatalf("got %v, want 1", got)
	}
}

func TestSetBreakerState(t *testing.T) {
	SetBreakerState("anthropic", 2)
	if got := testutil.ToFloat64(BreakerState.WithLabelValues("anthropic")); got != 2 {
		t.Fatalf("got %v, want 2", got)
	}
}
