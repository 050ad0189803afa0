// Package stream フレーム生成パイプラインを担う
//
// # 責務
// - ストリーミング状態（Idle/Streaming）の管理
// - カメラからのフレーム取得・推論・JPEGエンコードのループ
// - 固定レートのスロットリング（約30FPS）
// - 停止中のプレースホルダーフレームの生成
//
// # 仕様
// - Start/Stopは冪等。状態遷移が起きたかどうかを返す
// - フレーム列はチャンネルとして提供され、ストリーミングフラグを
//   毎イテレーション確認する協調的キャンセルで終了する
// - カメラの取得・読み取りに失敗した時点でフレーム列は終了する。
//   途中からの再開はできず、再度Startした列は最初から生成される
// - 推論の失敗はログに記録し、元のフレームをそのまま配信する。
//   検出の失敗がストリームを止めることはない
package stream
