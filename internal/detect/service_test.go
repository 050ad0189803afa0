package detect

import (
	"errors"
	"testing"
)

func TestService_EnableLoadsModel(t *testing.T) {
	gate := NewGate(NewMockProbe(true).Probe)
	model := NewMockModel(nil)
	service := NewService(gate, NewLoader(gate, "models/test.onnx", NewMockLoader(model).Load))

	if service.Enabled() {
		t.Fatal("Expected detection to start disabled")
	}

	// 初回有効化でモデルが読み込まれる
	justLoaded, err := service.Enable()
	if err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if !justLoaded {
		t.Error("Expected the model to be loaded on first enable")
	}
	if !service.Enabled() {
		t.Error("Expected detection to be enabled")
	}

	active, ok := service.ActiveModel()
	if !ok || active != model {
		t.Error("Expected the loaded model to be active")
	}

	// 2回目の有効化は読み込みを行わない
	justLoaded, err = service.Enable()
	if err != nil {
		t.Fatalf("Second enable failed: %v", err)
	}
	if justLoaded {
		t.Error("Expected no reload on second enable")
	}
}

func TestService_EnableUnavailable(t *testing.T) {
	gate := NewGate(NewMockProbe(false).Probe)
	service := NewService(gate, NewLoader(gate, "models/test.onnx", NewMockLoader(nil).Load))

	_, err := service.Enable()
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Expected ErrUnavailable, got %v", err)
	}
	if service.Enabled() {
		t.Error("Expected detection to remain disabled after failure")
	}
}

func TestService_DisableKeepsModel(t *testing.T) {
	gate := NewGate(NewMockProbe(true).Probe)
	model := NewMockModel(nil)
	mockLoader := NewMockLoader(model)
	service := NewService(gate, NewLoader(gate, "models/test.onnx", mockLoader.Load))

	if _, err := service.Enable(); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}

	// 無効化してもモデルは保持される
	service.Disable()
	if service.Enabled() {
		t.Error("Expected detection to be disabled")
	}
	if _, ok := service.ActiveModel(); ok {
		t.Error("Expected no active model while disabled")
	}

	status := service.Status()
	if !status.ModelLoaded {
		t.Error("Expected the model to stay loaded while disabled")
	}

	// 再有効化は読み込み済みモデルを再利用する
	justLoaded, err := service.Enable()
	if err != nil {
		t.Fatalf("Re-enable failed: %v", err)
	}
	if justLoaded {
		t.Error("Expected re-enable to reuse the loaded model")
	}
	if got := mockLoader.CallCount(); got != 1 {
		t.Errorf("Expected exactly 1 load, got %d", got)
	}
}

func TestService_StatusProbesWhenUnknown(t *testing.T) {
	probe := NewMockProbe(true)
	gate := NewGate(probe.Probe)
	service := NewService(gate, NewLoader(gate, "models/test.onnx", NewMockLoader(nil).Load))

	// Availabilityは確認を行わない
	if got := service.Availability(); got != AvailabilityUnknown {
		t.Errorf("Expected unknown availability, got %s", got)
	}
	if got := probe.CallCount(); got != 0 {
		t.Errorf("Expected no probe from Availability, got %d", got)
	}

	// Statusは未確認の場合に確認を実行する
	status := service.Status()
	if !status.Available {
		t.Error("Expected status to report available")
	}
	if status.Enabled || status.ModelLoaded {
		t.Error("Expected detection to be disabled and unloaded initially")
	}
	if got := probe.CallCount(); got != 1 {
		t.Errorf("Expected exactly 1 probe from Status, got %d", got)
	}
}
