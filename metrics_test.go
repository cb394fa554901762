package adminauth

import (
	"context"
	"sync"
	"testing"
)

func TestMetricsIncAndSnapshot(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const workers = 8
	const perWorker = 100
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.Inc(MetricBeginLoginSuccess)
			}
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	if got := snap.Counters[MetricBeginLoginSuccess]; got != workers*perWorker {
		t.Fatalf("expected %d, got %d", workers*perWorker, got)
	}
	if got := snap.Counters[MetricRefreshFailure]; got != 0 {
		t.Fatalf("expected untouched counter to be zero, got %d", got)
	}
}

func TestMetricsDisabled(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricLogout)
	if snap := m.Snapshot(); len(snap.Counters) != 0 {
		t.Fatalf("disabled metrics must report nothing, got %v", snap.Counters)
	}
}

func TestEngineCountsLoginOutcomes(t *testing.T) {
	engine, _, identity, mailer := newTestEngine(t, testConfig())
	seedAccount(t, identity, "admin@clinic.example", RoleAdmin)

	loginForTokens(t, engine, mailer, "admin@clinic.example", RoleAdmin)
	if _, err := engine.BeginLogin(context.Background(), "ghost@clinic.example", RoleAdmin); err == nil {
		t.Fatal("expected failure")
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricBeginLoginSuccess] != 1 {
		t.Fatalf("begin success: %d", snap.Counters[MetricBeginLoginSuccess])
	}
	if snap.Counters[MetricBeginLoginFailure] != 1 {
		t.Fatalf("begin failure: %d", snap.Counters[MetricBeginLoginFailure])
	}
	if snap.Counters[MetricVerifyLoginSuccess] != 1 {
		t.Fatalf("verify success: %d", snap.Counters[MetricVerifyLoginSuccess])
	}
}
