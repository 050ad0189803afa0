package camera

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os/exec"
	"strconv"
)

// JPEGの開始マーカー（SOI）と終了マーカー（EOI）
var (
	jpegSOI = []byte{0xFF, 0xD8}
	jpegEOI = []byte{0xFF, 0xD9}
)

// FFmpegDevice はffmpeg経由でV4L2デバイスからMJPEGストリームを取得するDevice実装
// プロセスはオープン時に起動し、Closeされるまでフレームを出力し続ける
type FFmpegDevice struct {
	settings Settings

	cmd    *exec.Cmd
	stdout io.ReadCloser
	cancel context.CancelFunc

	// ストリーム解析用バッファ
	frameBuffer bytes.Buffer
	readBuffer  []byte
}

// NewFFmpegOpener は設定からFFmpegDeviceを開くOpenerを作成する
func NewFFmpegOpener(settings Settings) Opener {
	return func(ctx context.Context) (Device, error) {
		return OpenFFmpegDevice(ctx, settings)
	}
}

// OpenFFmpegDevice はffmpegプロセスを起動してデバイスを開く
// プロセスの寿命はリクエストではなくハンドルに紐づくため、
// 渡されたコンテキストとは独立して管理する
func OpenFFmpegDevice(_ context.Context, settings Settings) (Device, error) {
	procCtx, cancel := context.WithCancel(context.Background())

	cmd := exec.CommandContext(procCtx,
		"ffmpeg",
		"-f", "v4l2",
		"-video_size", fmt.Sprintf("%dx%d", settings.Width, settings.Height),
		"-r", strconv.Itoa(settings.FPS),
		"-i", settings.Device,
		"-f", "image2pipe",
		"-c:v", "mjpeg",
		"-q:v", "3",
		"-",
	)
	cmd.Stderr = io.Discard

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("stdoutパイプの作成に失敗: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("ffmpegの起動に失敗: %w", err)
	}

	return &FFmpegDevice{
		settings:   settings,
		cmd:        cmd,
		stdout:     stdout,
		cancel:     cancel,
		readBuffer: make([]byte, 1024*1024), // 1MBバッファ
	}, nil
}

// Read はストリームから次の1フレームを読み取ってデコードする
func (d *FFmpegDevice) Read(ctx context.Context) (image.Image, error) {
	frame, err := d.nextJPEG(ctx)
	if err != nil {
		return nil, err
	}

	img, err := jpeg.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("JPEG画像のデコードに失敗: %w", err)
	}

	return img, nil
}

// nextJPEG はストリームから次の完全なJPEGフレームを切り出す
func (d *FFmpegDevice) nextJPEG(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// バッファに完全なフレームがあるか確認
		data := d.frameBuffer.Bytes()
		startIdx := bytes.Index(data, jpegSOI)
		if startIdx >= 0 {
			endIdx := bytes.Index(data[startIdx+2:], jpegEOI)
			if endIdx >= 0 {
				// マーカーのサイズを含めてフレームを抽出
				endIdx += startIdx + 2 + 2
				frame := make([]byte, endIdx-startIdx)
				copy(frame, data[startIdx:endIdx])

				// 処理済みデータを削除
				remaining := append([]byte(nil), data[endIdx:]...)
				d.frameBuffer.Reset()
				d.frameBuffer.Write(remaining)

				return frame, nil
			}
		}

		// フレームが揃っていないので続きを読み込む
		n, err := d.stdout.Read(d.readBuffer)
		if n > 0 {
			d.frameBuffer.Write(d.readBuffer[:n])
		}
		if err != nil {
			return nil, fmt.Errorf("フレーム読み取りエラー: %w", err)
		}
	}
}

// Close はffmpegプロセスを終了してデバイスを解放する
func (d *FFmpegDevice) Close() error {
	d.cancel()
	_ = d.cmd.Wait() // コンテキストキャンセルによる終了エラーは無視
	return nil
}
