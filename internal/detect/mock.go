package detect

import (
	"image"
	"sync"
)

// MockProbe はテスト用の利用可能性確認関数
// 確認が実行された回数を記録する
type MockProbe struct {
	mu        sync.Mutex
	available bool
	callCount int
}

// NewMockProbe は新しいMockProbeを作成する
func NewMockProbe(available bool) *MockProbe {
	return &MockProbe{available: available}
}

// Probe はProbeFuncとして使用するためのメソッド
func (p *MockProbe) Probe() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.callCount++
	return p.available
}

// CallCount は確認が実行された回数を返す
func (p *MockProbe) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.callCount
}

// MockModel はテスト用のModel実装
type MockModel struct {
	mu          sync.Mutex
	annotateErr error
	annotated   image.Image
	callCount   int
	closed      bool
}

// NewMockModel は新しいMockModelを作成する
// annotatedがnilの場合、Annotateは入力画像をそのまま返す
func NewMockModel(annotated image.Image) *MockModel {
	return &MockModel{annotated: annotated}
}

// Annotate は設定された画像またはエラーを返す
func (m *MockModel) Annotate(img image.Image) (image.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCount++
	if m.annotateErr != nil {
		return nil, m.annotateErr
	}
	if m.annotated == nil {
		return img, nil
	}
	return m.annotated, nil
}

// Close はモデルをクローズ済みにする
func (m *MockModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// SetAnnotateError はテスト用に推論失敗を設定する
func (m *MockModel) SetAnnotateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.annotateErr = err
}

// CallCount は推論が実行された回数を返す
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Closed はCloseが呼ばれたかどうかを返す
func (m *MockModel) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// MockLoader はテスト用のモデル読み込み実装
// 指定されたエラーを先頭から順に返し、使い切った後は成功する
type MockLoader struct {
	mu        sync.Mutex
	model     Model
	failures  []error
	callCount int
}

// NewMockLoader は新しいMockLoaderを作成する
// failuresが空の場合、Loadは常に成功してmodelを返す
func NewMockLoader(model Model, failures ...error) *MockLoader {
	return &MockLoader{model: model, failures: failures}
}

// Load はLoadFuncとして使用するためのメソッド
func (l *MockLoader) Load(_ string) (Model, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.callCount++
	if len(l.failures) > 0 {
		err := l.failures[0]
		l.failures = l.failures[1:]
		return nil, err
	}
	return l.model, nil
}

// CallCount は読み込みが試行された回数を返す
func (l *MockLoader) CallCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.callCount
}
