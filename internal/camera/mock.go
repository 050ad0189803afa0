package camera

import (
	"context"
	"image"
	"sync"
)

// MockDevice はテスト用のカメラデバイス実装
type MockDevice struct {
	mu         sync.Mutex
	frame      image.Image
	readErr    error
	readCount  int
	closeCount int
}

// NewMockDevice は新しいMockDeviceを作成する
// 指定された画像を毎フレーム返す
func NewMockDevice(frame image.Image) *MockDevice {
	return &MockDevice{frame: frame}
}

// Read は設定されたフレームまたはエラーを返す
func (m *MockDevice) Read(_ context.Context) (image.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.readCount++
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.frame, nil
}

// Close はクローズ回数を記録する
func (m *MockDevice) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeCount++
	return nil
}

// SetReadError はテスト用にRead失敗を設定する
func (m *MockDevice) SetReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// ReadCount はReadが呼ばれた回数を返す
func (m *MockDevice) ReadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readCount
}

// CloseCount はCloseが呼ばれた回数を返す
func (m *MockDevice) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCount
}

// MockOpener はテスト用のOpener実装
// 物理オープンの回数を記録する
type MockOpener struct {
	mu        sync.Mutex
	device    Device
	err       error
	openCount int
}

// NewMockOpener は新しいMockOpenerを作成する
func NewMockOpener(device Device) *MockOpener {
	return &MockOpener{device: device}
}

// Open はOpenerとして使用するためのメソッド
func (o *MockOpener) Open(_ context.Context) (Device, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.openCount++
	if o.err != nil {
		return nil, o.err
	}
	return o.device, nil
}

// SetDevice はオープン成功時に返すデバイスを設定する
func (o *MockOpener) SetDevice(device Device) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.device = device
}

// SetError はテスト用にオープン失敗を設定する
func (o *MockOpener) SetError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.err = err
}

// OpenCount は物理オープンが試行された回数を返す
func (o *MockOpener) OpenCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.openCount
}
