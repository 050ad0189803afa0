// Package server は、HTTPサーバーとストリーミング配信を管理します。
//
// このパッケージは、HTTPサーバーの起動、ルーティング、
// MJPEGストリームの配信、物体検出の制御APIを担当します。
//
// 責務:
//   - HTTPサーバーの起動と管理
//   - ストリーミングの開始・停止API
//   - 物体検出の有効化・無効化API
//   - MJPEGマルチパートストリームの配信
//   - ヘルスチェックと状態報告
//
// 仕様:
//   - ルーティングはgin-gonic/ginを使用
//   - フロントエンドからのアクセスを許可するためCORSを有効化
//   - グレースフルシャットダウンに対応
//   - シャットダウン時にカメラハンドルを必ず解放する
package server
