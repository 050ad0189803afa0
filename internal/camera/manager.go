package camera

import (
	"context"
	"log"
	"sync"
)

// Manager はプロセス内で唯一のカメラハンドルを管理する
// 全てのアクセスはミューテックスで直列化され、
// 物理デバイスのオープンは「ハンドルなし」の期間につき最大1回となる
type Manager struct {
	mu     sync.Mutex
	device Device
	opener Opener
}

// NewManager は新しいManagerを作成する
func NewManager(opener Opener) *Manager {
	return &Manager{
		opener: opener,
	}
}

// Acquire はカメラハンドルを取得する
// ハンドルが未作成の場合はデバイスを開く。オープンに失敗した場合は
// 状態を変更せず(nil, false)を返す。既にハンドルが存在する場合はそのまま返す
func (m *Manager) Acquire(ctx context.Context) (Device, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		device, err := m.opener(ctx)
		if err != nil {
			log.Printf("カメラを開けませんでした: %v", err)
			return nil, false
		}
		m.device = device
	}

	return m.device, true
}

// Release はカメラハンドルを解放する
// ハンドルが存在しない場合は何もしない。複数回呼び出しても安全
func (m *Manager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		if err := m.device.Close(); err != nil {
			log.Printf("カメラのクローズに失敗: %v", err)
		}
		m.device = nil
	}
}
