package stream

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"monomi/internal/camera"
	"monomi/internal/detect"
)

// 停止中に返すプレースホルダー画像のサイズ
const (
	placeholderWidth  = 640
	placeholderHeight = 480
)

// Pipeline はカメラからフレームを取り出して配信用のJPEG列を生成する
type Pipeline struct {
	cameras   *camera.Manager
	detection *detect.Service
	interval  time.Duration

	streaming atomic.Bool

	placeholderOnce sync.Once
	placeholderJPEG []byte
}

// NewPipeline は新しいPipelineを作成する
// intervalはフレーム間の固定スロットリング間隔（約30FPSなら33ms）
func NewPipeline(cameras *camera.Manager, detection *detect.Service, interval time.Duration) *Pipeline {
	return &Pipeline{
		cameras:   cameras,
		detection: detection,
		interval:  interval,
	}
}

// Start はストリーミングを開始する
// 既にストリーミング中の場合は状態を変更せずfalseを返す
func (p *Pipeline) Start() bool {
	return p.streaming.CompareAndSwap(false, true)
}

// Stop はストリーミングを停止する
// 既に停止中の場合は状態を変更せずfalseを返す
// 停止は協調的で、生成ループは次のイテレーションでフラグを観測して終了する
func (p *Pipeline) Stop() bool {
	return p.streaming.CompareAndSwap(true, false)
}

// IsStreaming は現在ストリーミング中かどうかを返す
func (p *Pipeline) IsStreaming() bool {
	return p.streaming.Load()
}

// Frames はエンコード済みJPEGフレームの列を返す
// 停止中は黒いプレースホルダーを1枚だけ送出して終了する。
// ストリーミング中はフラグが降ろされるか、カメラの取得・読み取りに
// 失敗するまでフレームを送出し続ける
func (p *Pipeline) Frames(ctx context.Context) <-chan []byte {
	frames := make(chan []byte)

	go func() {
		defer close(frames)

		if !p.streaming.Load() {
			// 停止中は黒い画像を1枚だけ返す
			if placeholder := p.placeholder(); placeholder != nil {
				select {
				case frames <- placeholder:
				case <-ctx.Done():
				}
			}
			return
		}

		p.produce(ctx, frames)
	}()

	return frames
}

// produce はストリーミング中のフレーム生成ループ
func (p *Pipeline) produce(ctx context.Context, frames chan<- []byte) {
	for p.streaming.Load() {
		if ctx.Err() != nil {
			return
		}

		device, ok := p.cameras.Acquire(ctx)
		if !ok {
			// カメラが開けない場合はフレーム列を終了する
			return
		}

		img, err := device.Read(ctx)
		if err != nil {
			// 読み取りに失敗したハンドルは解放し、次回のStartで再オープンさせる
			log.Printf("フレームの読み取りに失敗しました: %v", err)
			p.cameras.Release()
			return
		}

		if model, active := p.detection.ActiveModel(); active {
			annotated, err := model.Annotate(img)
			if err != nil {
				// 推論の失敗でストリームは止めず、元のフレームをそのまま配信する
				log.Printf("物体検出推論エラー: %v", err)
			} else {
				img = annotated
			}
		}

		encoded, err := encodeJPEG(img)
		if err != nil {
			// エンコードに失敗したフレームは配信せずスキップする
			log.Printf("フレームのエンコードに失敗しました: %v", err)
		} else {
			select {
			case frames <- encoded:
			case <-ctx.Done():
				return
			}
		}

		// 固定レートのスロットリング
		select {
		case <-time.After(p.interval):
		case <-ctx.Done():
			return
		}
	}
}

// placeholder は停止中に配信する黒いプレースホルダーJPEGを返す
// 画像は初回アクセス時に一度だけ生成される
func (p *Pipeline) placeholder() []byte {
	p.placeholderOnce.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))
		encoded, err := encodeJPEG(img)
		if err != nil {
			log.Printf("プレースホルダー画像の生成に失敗: %v", err)
			return
		}
		p.placeholderJPEG = encoded
	})
	return p.placeholderJPEG
}

// encodeJPEG は画像をJPEGバイト列にエンコードする
func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
