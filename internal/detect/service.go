package detect

import "sync/atomic"

// Status は物体検出の現在の状態を表す
type Status struct {
	Available   bool // 検出ライブラリが利用可能か
	Enabled     bool // 検出が有効か
	ModelLoaded bool // モデルが読み込み済みか
}

// Service はGate・Loader・有効フラグを束ねた物体検出のファサード
// 有効フラグはモデルの読み込み状態とは独立しており、フレームが
// 注釈されるのは有効かつモデル読み込み済みの場合のみ
type Service struct {
	gate    *Gate
	loader  *Loader
	enabled atomic.Bool
}

// NewService は新しいServiceを作成する
func NewService(gate *Gate, loader *Loader) *Service {
	return &Service{
		gate:   gate,
		loader: loader,
	}
}

// Enable は物体検出を有効にする
// モデルが未読み込みの場合は読み込みを行う（ブロックする可能性がある）。
// justLoadedはこの呼び出しでモデルが読み込まれた場合にtrue
func (s *Service) Enable() (justLoaded bool, err error) {
	_, justLoaded, err = s.loader.EnsureLoaded()
	if err != nil {
		return false, err
	}

	s.enabled.Store(true)
	return justLoaded, nil
}

// Disable は物体検出を無効にする
// モデルは解放されず、再有効化時に再利用される
func (s *Service) Disable() {
	s.enabled.Store(false)
}

// Enabled は検出が有効かどうかを返す
func (s *Service) Enabled() bool {
	return s.enabled.Load()
}

// ActiveModel は推論に使用すべきモデルを返す
// 検出が有効かつモデルが読み込み済みの場合のみ(model, true)を返す
func (s *Service) ActiveModel() (Model, bool) {
	if !s.enabled.Load() {
		return nil, false
	}
	return s.loader.Loaded()
}

// Availability は確認を行わずに利用可能性の三値を返す
func (s *Service) Availability() Availability {
	return s.gate.State()
}

// Status は現在の状態を返す
// 利用可能性が未確認の場合はこの呼び出しで確認される
func (s *Service) Status() Status {
	available := s.gate.Available()
	_, loaded := s.loader.Loaded()

	return Status{
		Available:   available,
		Enabled:     s.enabled.Load(),
		ModelLoaded: loaded,
	}
}

// Close は保持しているモデルを解放する
func (s *Service) Close() error {
	s.enabled.Store(false)
	return s.loader.Close()
}
