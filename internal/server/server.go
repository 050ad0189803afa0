package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"monomi/internal/camera"
	"monomi/internal/config"
	"monomi/internal/detect"
	"monomi/internal/stream"

	"github.com/gin-gonic/gin"
)

// 物体検出モデルの入力サイズ
const detectionInputSize = 640

// Server はHTTPサーバーを管理する構造体
type Server struct {
	config     *config.Config
	engine     *gin.Engine
	httpServer *http.Server

	cameras   *camera.Manager
	detection *detect.Service
	pipeline  *stream.Pipeline
}

// New は新しいServerインスタンスを作成する
func New(cfg *config.Config) *Server {
	cameras := camera.NewManager(camera.NewFFmpegOpener(camera.Settings{
		Device: cfg.Camera.Device,
		FPS:    cfg.Camera.FPS,
		Width:  cfg.Camera.Width,
		Height: cfg.Camera.Height,
	}))

	gate := detect.NewGate(nil)
	loader := detect.NewLoader(gate, cfg.Detection.ModelPath,
		detect.NewYOLOLoadFunc(detectionInputSize, cfg.Detection.ConfThreshold, cfg.Detection.NMSThreshold))
	detection := detect.NewService(gate, loader)

	pipeline := stream.NewPipeline(cameras, detection, cfg.Camera.FrameInterval)

	return newServer(cfg, cameras, detection, pipeline)
}

// newServer は依存を注入してServerを組み立てる
func newServer(cfg *config.Config, cameras *camera.Manager, detection *detect.Service, pipeline *stream.Pipeline) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	s := &Server{
		config: cfg,
		engine: engine,
		httpServer: &http.Server{
			Addr:         cfg.ServerAddress(),
			Handler:      engine,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		cameras:   cameras,
		detection: detection,
		pipeline:  pipeline,
	}

	s.setupRoutes()
	return s
}

// setupRoutes はHTTPルートを設定する
func (s *Server) setupRoutes() {
	h := &handler{
		pipeline:  s.pipeline,
		detection: s.detection,
	}

	// ストリーミングエンドポイント
	s.engine.GET("/video_feed", h.handleVideoFeed)
	s.engine.POST("/start_stream", h.handleStartStream)
	s.engine.POST("/stop_stream", h.handleStopStream)

	// 物体検出エンドポイント
	s.engine.POST("/enable_object_detection", h.handleEnableObjectDetection)
	s.engine.POST("/disable_object_detection", h.handleDisableObjectDetection)
	s.engine.GET("/object_detection_status", h.handleObjectDetectionStatus)

	// ヘルスチェックエンドポイント
	s.engine.GET("/health", h.handleHealth)
}

// Start はサーバーを起動する
// 終了時にはカメラハンドルと検出モデルを必ず解放する
func (s *Server) Start(ctx context.Context) error {
	// 正常終了・シグナル・エラーのいずれの経路でもリソースを解放する
	defer func() {
		s.pipeline.Stop()
		s.cameras.Release()
		if err := s.detection.Close(); err != nil {
			log.Printf("検出モデルの解放に失敗: %v", err)
		}
		log.Println("リソースを解放しました")
	}()

	// シャットダウン用のチャンネル
	shutdownCh := make(chan error, 1)

	// サーバーを別ゴルーチンで起動
	go func() {
		log.Printf("HTTPサーバーを起動しています: %s", s.config.ServerAddress())
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			shutdownCh <- fmt.Errorf("サーバーの起動に失敗: %w", err)
		}
	}()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// コンテキストかシグナルを待つ
	select {
	case <-ctx.Done():
		log.Println("コンテキストがキャンセルされました")
	case sig := <-sigCh:
		log.Printf("シグナルを受信しました: %v", sig)
	case err := <-shutdownCh:
		return err
	}

	// 配信中の接続を終了させてからグレースフルシャットダウンする
	s.pipeline.Stop()
	return s.Shutdown()
}

// Shutdown はサーバーをグレースフルにシャットダウンする
func (s *Server) Shutdown() error {
	log.Println("サーバーをシャットダウンしています...")

	// 5秒のタイムアウトを設定
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("サーバーのシャットダウンに失敗: %w", err)
	}

	log.Println("サーバーが正常にシャットダウンされました")
	return nil
}
