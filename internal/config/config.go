package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Camera    CameraConfig    `yaml:"camera"`
	Detection DetectionConfig `yaml:"detection"`
}

// ServerConfig はHTTPサーバーの設定
type ServerConfig struct {
	Host string `yaml:"host"` // リッスンするホスト
	Port int    `yaml:"port"` // リッスンするポート番号

	// タイムアウト設定
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // 読み込みタイムアウト
	WriteTimeout time.Duration `yaml:"write_timeout"` // 書き込みタイムアウト
}

// CameraConfig はカメラ関連の設定
type CameraConfig struct {
	Device string `yaml:"device"` // デバイスパス (例: /dev/video0)
	FPS    int    `yaml:"fps"`    // キャプチャのフレームレート
	Width  int    `yaml:"width"`  // 画像幅
	Height int    `yaml:"height"` // 画像高さ

	// ストリーミングのフレーム間隔（約30FPSなら33ms）
	FrameInterval time.Duration `yaml:"frame_interval"`
}

// DetectionConfig は物体検出関連の設定
type DetectionConfig struct {
	ModelPath     string  `yaml:"model_path"`     // モデルファイルのパス
	ConfThreshold float32 `yaml:"conf_threshold"` // 検出の信頼度しきい値
	NMSThreshold  float32 `yaml:"nms_threshold"`  // NMSのしきい値
}

// Load は設定を読み込む
// デフォルト値をベースに、設定ファイル（任意）と環境変数で上書きする
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile は指定された設定ファイルから設定を読み込む
// pathが空の場合はデフォルト値と環境変数のみを使用する
func LoadFile(path string) (*Config, error) {
	// デフォルト設定を作成
	cfg := &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         5000,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 0, // ストリーミング用にタイムアウト無効化
		},
		Camera: CameraConfig{
			Device:        "/dev/video0",
			FPS:           30,
			Width:         640,
			Height:        480,
			FrameInterval: 33 * time.Millisecond,
		},
		Detection: DetectionConfig{
			ModelPath:     "models/yolo11n.onnx",
			ConfThreshold: 0.25,
			NMSThreshold:  0.45,
		},
	}

	// 設定ファイルがあれば読み込んで上書き
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("設定ファイルの解析に失敗: %w", err)
		}
	}

	// 環境変数でホストとポートを上書き
	cfg.Server.Host = getEnvOrDefault("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvAsIntOrDefault("PORT", cfg.Server.Port)

	// 設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("無効なポート番号: %d", c.Server.Port)
	}

	if c.Camera.Device == "" {
		return fmt.Errorf("カメラデバイスが指定されていません")
	}

	if c.Camera.FPS <= 0 || c.Camera.FPS > 60 {
		return fmt.Errorf("無効なFPS値: %d", c.Camera.FPS)
	}

	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return fmt.Errorf("無効な解像度: %dx%d", c.Camera.Width, c.Camera.Height)
	}

	if c.Camera.FrameInterval <= 0 {
		return fmt.Errorf("無効なフレーム間隔: %v", c.Camera.FrameInterval)
	}

	if c.Detection.ModelPath == "" {
		return fmt.Errorf("モデルファイルのパスが指定されていません")
	}

	return nil
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// getEnvOrDefault は環境変数を取得し、設定されていない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は環境変数を整数として取得し、設定されていない場合はデフォルト値を返す
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}
