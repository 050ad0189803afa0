package detect

import (
	"sync"
	"testing"
)

func TestGate_ProbesExactlyOnce(t *testing.T) {
	probe := NewMockProbe(true)
	gate := NewGate(probe.Probe)

	// 初回確認前は未確認
	if got := gate.State(); got != AvailabilityUnknown {
		t.Errorf("Expected unknown before first probe, got %s", got)
	}

	// 何度呼んでも実際の確認は1回だけ
	for i := 0; i < 10; i++ {
		if !gate.Available() {
			t.Fatal("Expected gate to report available")
		}
	}

	if got := probe.CallCount(); got != 1 {
		t.Errorf("Expected exactly 1 probe call, got %d", got)
	}

	if got := gate.State(); got != AvailabilityAvailable {
		t.Errorf("Expected available state, got %s", got)
	}
}

func TestGate_UnavailableIsCached(t *testing.T) {
	probe := NewMockProbe(false)
	gate := NewGate(probe.Probe)

	// 利用不可の結果もキャッシュされ、再確認は行われない
	for i := 0; i < 5; i++ {
		if gate.Available() {
			t.Fatal("Expected gate to report unavailable")
		}
	}

	if got := probe.CallCount(); got != 1 {
		t.Errorf("Expected exactly 1 probe call, got %d", got)
	}

	if got := gate.State(); got != AvailabilityUnavailable {
		t.Errorf("Expected unavailable state, got %s", got)
	}
}

func TestGate_ConcurrentProbesOnce(t *testing.T) {
	probe := NewMockProbe(true)
	gate := NewGate(probe.Probe)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gate.Available()
		}()
	}
	wg.Wait()

	if got := probe.CallCount(); got != 1 {
		t.Errorf("Expected exactly 1 probe call under concurrency, got %d", got)
	}
}

func TestGate_StateDoesNotProbe(t *testing.T) {
	probe := NewMockProbe(true)
	gate := NewGate(probe.Probe)

	// Stateは確認を実行しない
	_ = gate.State()
	_ = gate.State()

	if got := probe.CallCount(); got != 0 {
		t.Errorf("Expected State not to probe, got %d calls", got)
	}
}
