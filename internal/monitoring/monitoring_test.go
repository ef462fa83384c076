package monitoring

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type flakyEmbedder struct {
	fail atomic.Bool
}

func (f *flakyEmbedder) Name() string { return "flaky" }

func (f *flakyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.fail.Load() {
		return nil, errors.New("unavailable")
	}
	return []float32{1}, nil
}

func TestCheckEmbedder(t *testing.T) {
	e := &flakyEmbedder{}
	if !CheckEmbedder(context.Background(), e) {
		t.Error("CheckEmbedder() = false for a working embedder")
	}
	e.fail.Store(true)
	if CheckEmbedder(context.Background(), e) {
		t.Error("CheckEmbedder() = true for a failing embedder")
	}
}

func TestMonitorEmbedderHealth(t *testing.T) {
	e := &flakyEmbedder{}
	e.fail.Store(true)

	var healthy atomic.Bool
	healthy.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		MonitorEmbedderHealth(ctx, e, time.Millisecond, &healthy)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for healthy.Load() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if healthy.Load() {
		t.Fatal("monitor never marked the embedder unhealthy")
	}

	e.fail.Store(false)
	for !healthy.Load() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !healthy.Load() {
		t.Error("monitor never marked the embedder healthy again")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("monitor did not stop after cancel")
	}
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	if m.GetAvgLatency() != 0 {
		t.Error("average latency of no requests should be 0")
	}

	m.RecordRequest(10*time.Millisecond, false)
	m.RecordRequest(30*time.Millisecond, true)
	m.RecordAnalysis(true)
	m.RecordAnalysis(false)
	m.RecordCacheHit()

	snap := m.Snapshot()
	if snap.Requests != 2 || snap.Errors != 1 || snap.Analyses != 2 || snap.AnalysisFailures != 1 || snap.CacheHits != 1 {
		t.Errorf("Snapshot() = %+v", snap)
	}
	if snap.AvgLatencyMs != 20 {
		t.Errorf("AvgLatencyMs = %v, want 20", snap.AvgLatencyMs)
	}
}
