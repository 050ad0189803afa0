// Package detect 物体検出機能の管理を担う
//
// # 責務
// - 検出ライブラリの利用可能性の一度きりの確認とキャッシュ
// - 推論モデルの遅延読み込み（初回有効化時）
// - 検出の有効/無効フラグの管理
// - フレームへの検出結果の描画
//
// # 仕様
// - Gate: 利用可能性を三値（未確認/利用可能/利用不可）で保持。確認は
//   プロセスの生存期間につき最大1回で、結果は不変
// - Loader: モデルの読み込みをミューテックスで直列化。読み込み失敗は
//   キャッシュされず、次回の有効化で再試行される
// - Service: Gate・Loader・有効フラグを束ねたファサード
// - 実モデルはgocvのDNNモジュールでONNX形式のYOLOモデルを実行する。
//   OpenCVが導入された環境で -tags cv を付けてビルドした場合のみ有効
package detect
