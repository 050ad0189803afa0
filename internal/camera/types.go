package camera

import (
	"context"
	"image"
)

// Device はオープン済みのカメラデバイスを表すインターフェース
type Device interface {
	// Read は次の1フレームを読み取る
	Read(ctx context.Context) (image.Image, error)

	// Close はデバイスを解放する
	Close() error
}

// Opener はカメラデバイスを開く関数の型
// オープンに失敗した場合はエラーを返し、ハンドルは作成されない
type Opener func(ctx context.Context) (Device, error)

// Settings はカメラの設定を表す
type Settings struct {
	Device string // デバイスパス（例: /dev/video0）
	FPS    int    // フレームレート
	Width  int    // 画像幅
	Height int    // 画像高さ
}
