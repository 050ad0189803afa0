package camera

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
)

func TestManager_AcquireOpensOnce(t *testing.T) {
	ctx := context.Background()
	device := NewMockDevice(image.NewRGBA(image.Rect(0, 0, 640, 480)))
	opener := NewMockOpener(device)
	manager := NewManager(opener.Open)

	// 1回目のAcquireでオープンされる
	acquired, ok := manager.Acquire(ctx)
	if !ok {
		t.Fatal("Acquire failed")
	}
	if acquired != device {
		t.Error("Expected the mock device to be returned")
	}

	// 2回目以降は既存のハンドルが返る
	acquired2, ok := manager.Acquire(ctx)
	if !ok {
		t.Fatal("Second Acquire failed")
	}
	if acquired2 != device {
		t.Error("Expected the same device on second acquire")
	}

	if got := opener.OpenCount(); got != 1 {
		t.Errorf("Expected 1 physical open, got %d", got)
	}
}

func TestManager_ConcurrentAcquireOpensOnce(t *testing.T) {
	ctx := context.Background()
	device := NewMockDevice(image.NewRGBA(image.Rect(0, 0, 640, 480)))
	opener := NewMockOpener(device)
	manager := NewManager(opener.Open)

	// N個のゴルーチンから同時にAcquireしても物理オープンは1回だけ
	const goroutines = 20
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := manager.Acquire(ctx); !ok {
				t.Error("Acquire failed")
			}
		}()
	}
	wg.Wait()

	if got := opener.OpenCount(); got != 1 {
		t.Errorf("Expected exactly 1 physical open across %d goroutines, got %d", goroutines, got)
	}
}

func TestManager_AcquireFailure(t *testing.T) {
	ctx := context.Background()
	opener := NewMockOpener(nil)
	opener.SetError(errors.New("デバイスが利用できません"))
	manager := NewManager(opener.Open)

	// オープン失敗時は(nil, false)が返り、状態は「ハンドルなし」のまま
	if _, ok := manager.Acquire(ctx); ok {
		t.Fatal("Expected Acquire to fail")
	}

	// 失敗後の再試行では再度オープンが試みられる
	device := NewMockDevice(image.NewRGBA(image.Rect(0, 0, 640, 480)))
	opener.SetError(nil)
	opener.SetDevice(device)

	if _, ok := manager.Acquire(ctx); !ok {
		t.Fatal("Expected Acquire to succeed after the device recovered")
	}

	if got := opener.OpenCount(); got != 2 {
		t.Errorf("Expected 2 open attempts, got %d", got)
	}
}

func TestManager_ReleaseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	device := NewMockDevice(image.NewRGBA(image.Rect(0, 0, 640, 480)))
	opener := NewMockOpener(device)
	manager := NewManager(opener.Open)

	// ハンドルがない状態でのReleaseは何もしない
	manager.Release()
	if got := device.CloseCount(); got != 0 {
		t.Errorf("Expected no close before acquire, got %d", got)
	}

	if _, ok := manager.Acquire(ctx); !ok {
		t.Fatal("Acquire failed")
	}

	// Releaseでクローズされ、2回目以降は何もしない
	manager.Release()
	manager.Release()
	if got := device.CloseCount(); got != 1 {
		t.Errorf("Expected exactly 1 close, got %d", got)
	}

	// Release後のAcquireは再オープンする
	if _, ok := manager.Acquire(ctx); !ok {
		t.Fatal("Acquire after release failed")
	}
	if got := opener.OpenCount(); got != 2 {
		t.Errorf("Expected reopen after release, got %d opens", got)
	}
}
