package server

import (
	"errors"
	"log"
	"net/http"

	"monomi/internal/detect"
	"monomi/internal/stream"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StreamStatusResponse はストリーミング開始/停止エンドポイントのレスポンス
type StreamStatusResponse struct {
	Status string `json:"status"`
}

// DetectionToggleResponse は物体検出の有効/無効エンドポイントのレスポンス
type DetectionToggleResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthResponse はヘルスチェックエンドポイントのレスポンス
type HealthResponse struct {
	Status                   string `json:"status"`
	ObjectDetectionAvailable bool   `json:"object_detection_available"`
	Streaming                bool   `json:"streaming"`
}

// DetectionStatusResponse は物体検出状態エンドポイントのレスポンス
type DetectionStatusResponse struct {
	Available   bool `json:"available"`
	Enabled     bool `json:"enabled"`
	ModelLoaded bool `json:"model_loaded"`
}

// handler は各エンドポイントの実装を保持する
type handler struct {
	pipeline  *stream.Pipeline
	detection *detect.Service
}

// handleStartStream はストリーミングを開始する
func (h *handler) handleStartStream(c *gin.Context) {
	if h.pipeline.Start() {
		c.JSON(http.StatusOK, StreamStatusResponse{Status: "started"})
	} else {
		c.JSON(http.StatusOK, StreamStatusResponse{Status: "already_streaming"})
	}
}

// handleStopStream はストリーミングを停止する
func (h *handler) handleStopStream(c *gin.Context) {
	if h.pipeline.Stop() {
		c.JSON(http.StatusOK, StreamStatusResponse{Status: "stopped"})
	} else {
		c.JSON(http.StatusOK, StreamStatusResponse{Status: "already_stopped"})
	}
}

// handleEnableObjectDetection は物体検出を有効にする
// モデルが未読み込みの場合はこのリクエスト内で読み込みを行う
func (h *handler) handleEnableObjectDetection(c *gin.Context) {
	justLoaded, err := h.detection.Enable()
	if err != nil {
		message := "物体検出モデルの読み込みに失敗しました"
		if errors.Is(err, detect.ErrUnavailable) {
			message = "物体検出ライブラリがインストールされていません"
		}
		log.Printf("物体検出の有効化に失敗しました: %v", err)
		c.JSON(http.StatusOK, DetectionToggleResponse{
			Status:  "error",
			Message: message,
		})
		return
	}

	message := "物体検出を有効にしました"
	if justLoaded {
		message = "物体検出を有効にしました（モデル読み込み完了）"
	}
	log.Println("物体検出が有効になりました")
	c.JSON(http.StatusOK, DetectionToggleResponse{
		Status:  "enabled",
		Message: message,
	})
}

// handleDisableObjectDetection は物体検出を無効にする
func (h *handler) handleDisableObjectDetection(c *gin.Context) {
	h.detection.Disable()
	c.JSON(http.StatusOK, DetectionToggleResponse{
		Status:  "disabled",
		Message: "物体検出を無効にしました",
	})
}

// handleHealth はヘルスチェックエンドポイント
// 利用可能性の確認は行わず、未確認の場合はfalseとして報告する
func (h *handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:                   "healthy",
		ObjectDetectionAvailable: h.detection.Availability() == detect.AvailabilityAvailable,
		Streaming:                h.pipeline.IsStreaming(),
	})
}

// handleObjectDetectionStatus は物体検出の状態を返す
// 利用可能性が未確認の場合はこのリクエストで確認される
func (h *handler) handleObjectDetectionStatus(c *gin.Context) {
	status := h.detection.Status()
	c.JSON(http.StatusOK, DetectionStatusResponse{
		Available:   status.Available,
		Enabled:     status.Enabled,
		ModelLoaded: status.ModelLoaded,
	})
}

// handleVideoFeed はMJPEGストリーミングエンドポイント
// 停止中は黒いプレースホルダーを1枚だけ配信して終了する
func (h *handler) handleVideoFeed(c *gin.Context) {
	sessionID := uuid.New().String()
	log.Printf("ストリーミング接続を開始します: session=%s", sessionID)
	defer log.Printf("ストリーミング接続を終了します: session=%s", sessionID)

	// レスポンスヘッダーを設定
	c.Header("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	writer := c.Writer
	flusher, ok := writer.(http.Flusher)
	if !ok {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	// クライアント切断を検知するためのコンテキスト
	clientGone := c.Request.Context().Done()
	frames := h.pipeline.Frames(c.Request.Context())

	for {
		select {
		case <-clientGone:
			// クライアントが切断された
			return

		case frame, ok := <-frames:
			if !ok {
				// フレーム列が終了した
				return
			}

			// マルチパートの1チャンクとしてフレームを書き込む
			if _, err := writer.Write([]byte("--frame\r\n")); err != nil {
				return
			}
			if _, err := writer.Write([]byte("Content-Type: image/jpeg\r\n\r\n")); err != nil {
				return
			}
			if _, err := writer.Write(frame); err != nil {
				return
			}
			if _, err := writer.Write([]byte("\r\n")); err != nil {
				return
			}

			flusher.Flush()
		}
	}
}

// corsMiddleware はフロントエンドからのアクセスを許可するCORSミドルウェア
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
