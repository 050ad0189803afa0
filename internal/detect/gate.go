package detect

import (
	"log"
	"sync"
)

// Availability は検出ライブラリの利用可能性を表す三値
type Availability int

const (
	// AvailabilityUnknown は未確認の状態（最初の確認前のみ）
	AvailabilityUnknown Availability = iota
	// AvailabilityAvailable は検出ライブラリが利用可能
	AvailabilityAvailable
	// AvailabilityUnavailable は検出ライブラリが利用不可
	AvailabilityUnavailable
)

// String はAvailabilityの文字列表現を返す
func (a Availability) String() string {
	switch a {
	case AvailabilityAvailable:
		return "available"
	case AvailabilityUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// ProbeFunc は検出ライブラリの利用可能性を確認する関数の型
type ProbeFunc func() bool

// Gate は検出ライブラリの利用可能性を一度だけ確認してキャッシュする
// ライブラリの有無は実行中に変化しないため、結果はプロセスの
// 生存期間を通して不変となる
type Gate struct {
	mu    sync.Mutex
	state Availability
	probe ProbeFunc
}

// NewGate は新しいGateを作成する
// probeがnilの場合はビルド構成に応じたデフォルトの確認関数を使用する
func NewGate(probe ProbeFunc) *Gate {
	if probe == nil {
		probe = runtimeProbe
	}
	return &Gate{probe: probe}
}

// Available は検出ライブラリが利用可能かどうかを返す
// 初回呼び出し時のみ実際の確認を行い、以降はキャッシュを返す
func (g *Gate) Available() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == AvailabilityUnknown {
		log.Println("物体検出ライブラリの利用可能性を確認中...")
		if g.probe() {
			g.state = AvailabilityAvailable
			log.Println("物体検出ライブラリが利用可能です")
		} else {
			g.state = AvailabilityUnavailable
			log.Println("物体検出ライブラリが利用できません。物体検出機能は無効になります")
		}
	}

	return g.state == AvailabilityAvailable
}

// State は確認を行わずに現在の状態を返す
func (g *Gate) State() Availability {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}
