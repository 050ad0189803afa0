package detect

import "image"

// Detection は1件の検出結果を表す
type Detection struct {
	Box        image.Rectangle // 元画像上の矩形
	Label      string          // クラス名
	Confidence float32         // 信頼度 (0.0-1.0)
}

// Model は読み込み済みの推論モデルを表すインターフェース
type Model interface {
	// Annotate はフレームに対して推論を実行し、検出結果を描画した
	// 新しい画像を返す
	Annotate(img image.Image) (image.Image, error)

	// Close はモデルが保持するリソースを解放する
	Close() error
}
