package recommend

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/doeshing/reelai/internal/domain"
	"github.com/doeshing/reelai/internal/infrastructure/cache"
	"github.com/doeshing/reelai/internal/metrics"
	"github.com/doeshing/reelai/internal/pkg/logger"
)

func result(titles ...string) domain.RecommendationResult {
	recs := make([]domain.Recommendation, len(titles))
	for i, title := range titles {
		recs[i] = domain.Recommendation{Title: title, MediaType: domain.MediaMovie}
	}
	return domain.RecommendationResult{Results: recs, Provider: "stub"}
}

func countingProducer(calls *atomic.Int32, value domain.RecommendationResult, err error) Producer[domain.RecommendationResult] {
	return func(context.Context) (domain.RecommendationResult, error) {
		calls.Add(1)
		return value, err
	}
}

func TestLoader_HitWithinTTLSkipsProducer(t *testing.T) {
	loader := NewLoader[domain.RecommendationResult](cache.NewMemoryStore(0), logger.NewNop(), time.Second)
	var calls atomic.Int32
	produce := countingProducer(&calls, result("Up"), nil)

	first, err := loader.GetCached(context.Background(), "mood:cozy:recommendations", time.Hour, produce)
	if err != nil {
		t.Fatalf("first GetCached: %v", err)
	}
	second, err := loader.GetCached(context.Background(), "mood:cozy:recommendations", time.Hour, produce)
	if err != nil {
		t.Fatalf("second GetCached: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("producer called %d times, want 1", calls.Load())
	}
	if second.Results[0].Title != first.Results[0].Title {
		t.Fatalf("cached value differs: %+v vs %+v", second, first)
	}
}

func TestLoader_ConcurrentMissesShareOneComputation(t *testing.T) {
	loader := NewLoader[domain.RecommendationResult](cache.NewMemoryStore(0), logger.NewNop(), 5*time.Second)
	var calls atomic.Int32
	gate := make(chan struct{})
	produce := func(context.Context) (domain.RecommendationResult, error) {
		calls.Add(1)
		<-gate
		return result("Heat", "Collateral"), nil
	}

	const callers = 25
	var wg sync.WaitGroup
	errs := make([]error, callers)
	got := make([]domain.RecommendationResult, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], errs[i] = loader.GetCached(context.Background(), "discover:movie:abc", time.Hour, produce)
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("producer called %d times, want 1", calls.Load())
	}
	for i := range errs {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if len(got[i].Results) != 2 {
			t.Fatalf("caller %d got %+v", i, got[i])
		}
	}
}

func TestLoader_CoalescedMetricCountsOnlyFollowers(t *testing.T) {
	loader := NewLoader[domain.RecommendationResult](cache.NewMemoryStore(0), logger.NewNop(), 5*time.Second)
	gate := make(chan struct{})
	produce := func(context.Context) (domain.RecommendationResult, error) {
		<-gate
		return result("Arrival"), nil
	}
	before := testutil.ToFloat64(metrics.CoalescedWaiters.WithLabelValues("blend"))

	const callers = 4
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := loader.GetCached(context.Background(), "blend:all:abc", time.Hour, produce); err != nil {
				t.Errorf("GetCached: %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	got := testutil.ToFloat64(metrics.CoalescedWaiters.WithLabelValues("blend")) - before
	if got != callers-1 {
		t.Fatalf("coalesced waiters = %v, want %d", got, callers-1)
	}
}

func TestLoader_ProducerFailureLeavesKeyAbsent(t *testing.T) {
	store := newRecordingStore()
	loader := NewLoader[domain.RecommendationResult](store, logger.NewNop(), time.Second)
	var calls atomic.Int32
	boom := &domain.ExhaustedError{LastKind: domain.KindTimeout}

	_, err := loader.GetCached(context.Background(), "blend:all:k", time.Hour, countingProducer(&calls, domain.RecommendationResult{}, boom))
	if !errors.Is(err, domain.ErrAllProvidersExhausted) {
		t.Fatalf("expected exhaustion error, got %v", err)
	}
	if store.has("blend:all:k") {
		t.Fatal("failure must not be cached")
	}

	got, err := loader.GetCached(context.Background(), "blend:all:k", time.Hour, countingProducer(&calls, result("Arrival"), nil))
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if calls.Load() != 2 || got.Results[0].Title != "Arrival" {
		t.Fatalf("expected a fresh computation, calls=%d got=%+v", calls.Load(), got)
	}
	if store.ttl("blend:all:k") != time.Hour {
		t.Fatalf("stored ttl = %v, want 1h", store.ttl("blend:all:k"))
	}
}

func TestLoader_StoreDownStillServesFreshResult(t *testing.T) {
	store := &brokenStore{}
	loader := NewLoader[domain.RecommendationResult](store, logger.NewNop(), time.Second)
	var calls atomic.Int32

	got, err := loader.GetCached(context.Background(), "mood:dark:recommendations", time.Hour, countingProducer(&calls, result("Se7en"), nil))
	if err != nil {
		t.Fatalf("expected no error with a failing store, got %v", err)
	}
	if got.Results[0].Title != "Se7en" {
		t.Fatalf("unexpected result %+v", got)
	}
	if store.sets.Load() != 1 {
		t.Fatalf("expected one write attempt, got %d", store.sets.Load())
	}
}

func TestLoader_EmptyResultIsNotStored(t *testing.T) {
	store := newRecordingStore()
	loader := NewLoader[domain.RecommendationResult](store, logger.NewNop(), time.Second)
	var calls atomic.Int32

	got, err := loader.GetCached(context.Background(), "discover:all:e", time.Hour, countingProducer(&calls, domain.RecommendationResult{Provider: "heuristic"}, nil))
	if err != nil {
		t.Fatalf("GetCached: %v", err)
	}
	if !got.Empty() {
		t.Fatalf("expected empty result, got %+v", got)
	}
	if store.has("discover:all:e") {
		t.Fatal("empty results must not be cached")
	}
}

func TestLoader_AbandoningCallerDoesNotCancelComputation(t *testing.T) {
	store := newRecordingStore()
	loader := NewLoader[domain.RecommendationResult](store, logger.NewNop(), 5*time.Second)
	gate := make(chan struct{})
	var producerCtxErr atomic.Value
	produce := func(ctx context.Context) (domain.RecommendationResult, error) {
		<-gate
		if err := ctx.Err(); err != nil {
			producerCtxErr.Store(err)
		}
		return result("Drive"), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := loader.GetCached(ctx, "mood:cozy:recommendations", time.Hour, produce)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("abandoning caller got %v, want context.Canceled", err)
	}

	close(gate)
	deadline := time.Now().Add(2 * time.Second)
	for !store.has("mood:cozy:recommendations") {
		if time.Now().After(deadline) {
			t.Fatal("shared computation did not complete after caller left")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if v := producerCtxErr.Load(); v != nil {
		t.Fatalf("producer context was cancelled: %v", v)
	}
}

func TestLoader_ProducerPanicBecomesError(t *testing.T) {
	loader := NewLoader[domain.RecommendationResult](newRecordingStore(), logger.NewNop(), time.Second)
	_, err := loader.GetCached(context.Background(), "discover:all:p", time.Hour, func(context.Context) (domain.RecommendationResult, error) {
		panic("adapter bug")
	})
	if err == nil {
		t.Fatal("expected an error from a panicking producer")
	}
}

func TestLoader_ExpiredEntryIsRecomputed(t *testing.T) {
	store := newRecordingStore()
	loader := NewLoader[domain.RecommendationResult](store, logger.NewNop(), time.Second)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	loader.now = func() time.Time { return base }
	var calls atomic.Int32
	produce := countingProducer(&calls, result("Jaws"), nil)

	if _, err := loader.GetCached(context.Background(), "discover:movie:t", time.Minute, produce); err != nil {
		t.Fatalf("GetCached: %v", err)
	}
	// recordingStore has no TTL of its own, so only the entry timestamp expires it.
	loader.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := loader.GetCached(context.Background(), "discover:movie:t", time.Minute, produce); err != nil {
		t.Fatalf("GetCached: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("producer called %d times, want 2", calls.Load())
	}
}

func TestLoader_InvalidateReturnsKeyToAbsent(t *testing.T) {
	loader := NewLoader[domain.RecommendationResult](cache.NewMemoryStore(0), logger.NewNop(), time.Second)
	var calls atomic.Int32
	produce := countingProducer(&calls, result("Alien"), nil)
	ctx := context.Background()

	if _, err := loader.GetCached(ctx, "mood:dark:recommendations", time.Hour, produce); err != nil {
		t.Fatalf("GetCached: %v", err)
	}
	if err := loader.Invalidate(ctx, "mood:dark:recommendations"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := loader.Peek(ctx, "mood:dark:recommendations"); ok {
		t.Fatal("key still present after Invalidate")
	}
	if _, err := loader.GetCached(ctx, "mood:dark:recommendations", time.Hour, produce); err != nil {
		t.Fatalf("GetCached: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("producer called %d times, want 2", calls.Load())
	}
}
