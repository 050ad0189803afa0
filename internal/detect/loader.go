package detect

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

// ErrUnavailable は検出ライブラリが利用できないことを表すエラー
var ErrUnavailable = errors.New("物体検出ライブラリが利用できません")

// LoadFunc はモデルファイルを読み込む関数の型
// 読み込みは同期的で、モデルのデシリアライズに時間がかかる場合がある
type LoadFunc func(path string) (Model, error)

// Loader は推論モデルの遅延読み込みを担う
// 読み込みはミューテックスで直列化され、同時の有効化リクエストが
// モデルを二重に読み込むことはない。読み込み失敗はキャッシュされず、
// 次回の呼び出しで再試行される
type Loader struct {
	mu    sync.Mutex
	gate  *Gate
	path  string
	load  LoadFunc
	model Model
}

// NewLoader は新しいLoaderを作成する
// loadがnilの場合はビルド構成に応じたデフォルトの読み込み関数を使用する
func NewLoader(gate *Gate, path string, load LoadFunc) *Loader {
	if load == nil {
		load = loadModel
	}
	return &Loader{
		gate: gate,
		path: path,
		load: load,
	}
}

// EnsureLoaded はモデルが読み込み済みであることを保証する
// 既に読み込み済みの場合は何もしない。justLoadedはこの呼び出しで
// 読み込みが行われた場合にtrueとなる
func (l *Loader) EnsureLoaded() (model Model, justLoaded bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.model != nil {
		return l.model, false, nil
	}

	if !l.gate.Available() {
		return nil, false, ErrUnavailable
	}

	log.Printf("物体検出モデルの読み込みを開始しています: %s", l.path)
	loaded, err := l.load(l.path)
	if err != nil {
		// 失敗をキャッシュしない。アーティファクトが後から配置された
		// 場合に次回の有効化で再試行できるようにする
		log.Printf("物体検出モデルの読み込みに失敗しました: %v", err)
		return nil, false, fmt.Errorf("物体検出モデルの読み込みに失敗: %w", err)
	}

	l.model = loaded
	log.Printf("物体検出モデルを正常に読み込みました: %s", l.path)
	return l.model, true, nil
}

// Loaded は読み込み済みのモデルを返す
// 未読み込みの場合は(nil, false)を返し、読み込みは行わない
func (l *Loader) Loaded() (Model, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.model == nil {
		return nil, false
	}
	return l.model, true
}

// Close は読み込み済みのモデルを解放する
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.model == nil {
		return nil
	}

	err := l.model.Close()
	l.model = nil
	return err
}
