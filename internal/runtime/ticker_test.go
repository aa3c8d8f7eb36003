package runtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/arung-agamani/streamgraph/internal/core/graph"
	"github.com/arung-agamani/streamgraph/internal/core/registry"
)

func TestMetricsTickerCollectsImmediatelyAndPeriodically(t *testing.T) {
	g := graph.New(registry.New(), nil)

	var mu sync.Mutex
	count := 0
	ticker := NewMetricsTicker(g, func(graph.Metrics) {
		mu.Lock()
		count++
		mu.Unlock()
	}, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		ticker.Run(ctx)
		close(done)
	}()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if count < 2 {
		t.Fatalf("expected at least 2 collections, got %d", count)
	}
}

func TestMetricsTickerRunningReflectsLoopState(t *testing.T) {
	g := graph.New(registry.New(), nil)
	ticker := NewMetricsTicker(g, nil, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ticker.Run(ctx)
		close(done)
	}()

	deadline := time.After(time.Second)
	for !ticker.Running() {
		select {
		case <-deadline:
			t.Fatal("ticker never reported running")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	<-done
	if ticker.Running() {
		t.Fatal("expected ticker to report not running after Run returns")
	}
}
