// Package camera カメラデバイスのライフサイクル管理を担う
//
// # 責務
// - プロセス内で唯一のカメラハンドルの保持と排他制御
// - ハンドルの遅延オープンと明示的な解放
// - V4L2デバイスからのリアルタイム画像取得
//
// # 使い分け
// このパッケージは以下の場合に使用する：
// - カメラデバイスを複数ゴルーチンから安全に共有したい
// - カメラのオープン・クローズを一箇所に集約したい
// - V4L2デバイスから連続フレームを取得したい
//
// # 仕様
// - Manager: ハンドルの取得（Acquire）と解放（Release）をミューテックスで直列化
// - FFmpegDevice: ffmpeg経由でのMJPEGストリームキャプチャ
// - デバイスのオープンは最初のAcquire時に一度だけ行われる
// - デバイスを直接開くことは禁止。必ずManagerを経由すること
//
// # 前提要件
//   - ffmpeg: 画像キャプチャとストリーミングに使用
//     Ubuntu/Debian: sudo apt install ffmpeg
//     Red Hat/Fedora: sudo dnf install ffmpeg
//   - videoグループへの参加: デバイスアクセス権限
//     sudo usermod -a -G video $USER
package camera
