//go:build cv

package detect

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// 検出結果の描画色
var boxColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}

// runtimeProbe はOpenCV入りビルドでは常に利用可能を返す
func runtimeProbe() bool {
	return true
}

// loadModel はデフォルト設定でYOLOモデルを読み込む
func loadModel(path string) (Model, error) {
	return NewYOLOLoadFunc(640, 0.25, 0.45)(path)
}

// NewYOLOLoadFunc はONNX形式のYOLOモデルを読み込むLoadFuncを作成する
func NewYOLOLoadFunc(inputSize int, confThreshold, nmsThreshold float32) LoadFunc {
	return func(path string) (Model, error) {
		net := gocv.ReadNetFromONNX(path)
		if net.Empty() {
			return nil, fmt.Errorf("モデルファイルを読み込めません: %s", path)
		}

		if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
			_ = net.Close()
			return nil, fmt.Errorf("バックエンドの設定に失敗: %w", err)
		}
		if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
			_ = net.Close()
			return nil, fmt.Errorf("ターゲットの設定に失敗: %w", err)
		}

		return &yoloModel{
			net:           net,
			inputSize:     inputSize,
			confThreshold: confThreshold,
			nmsThreshold:  nmsThreshold,
		}, nil
	}
}

// yoloModel はgocvのDNNモジュールでYOLOモデルを実行するModel実装
type yoloModel struct {
	net           gocv.Net
	inputSize     int
	confThreshold float32
	nmsThreshold  float32
}

// Annotate は推論を実行し、検出結果を描画した新しい画像を返す
func (m *yoloModel) Annotate(img image.Image) (image.Image, error) {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("画像の変換に失敗: %w", err)
	}
	defer src.Close()

	detections, err := m.detect(&src)
	if err != nil {
		return nil, err
	}

	for _, d := range detections {
		gocv.Rectangle(&src, d.Box, boxColor, 2)
		label := fmt.Sprintf("%s %.2f", d.Label, d.Confidence)
		origin := image.Pt(d.Box.Min.X, max(d.Box.Min.Y-5, 10))
		gocv.PutText(&src, label, origin, gocv.FontHersheySimplex, 0.5, boxColor, 1)
	}

	annotated, err := src.ToImage()
	if err != nil {
		return nil, fmt.Errorf("画像の変換に失敗: %w", err)
	}

	return annotated, nil
}

// detect はフレームに対して推論を実行して検出結果を返す
func (m *yoloModel) detect(src *gocv.Mat) ([]Detection, error) {
	blob := gocv.BlobFromImage(*src, 1.0/255.0,
		image.Pt(m.inputSize, m.inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	m.net.SetInput(blob, "")
	output := m.net.Forward("")
	defer output.Close()

	if output.Empty() {
		return nil, fmt.Errorf("推論結果が空です")
	}

	// YOLOのONNX出力は [1, 4+クラス数, ボックス数]。
	// 行ごとに処理できるよう [ボックス数, 4+クラス数] へ転置する
	sizes := output.Size()
	if len(sizes) != 3 {
		return nil, fmt.Errorf("予期しない出力形状: %v", sizes)
	}
	reshaped := output.Reshape(1, sizes[1])
	defer reshaped.Close()
	transposed := gocv.NewMat()
	defer transposed.Close()
	gocv.Transpose(reshaped, &transposed)

	scaleX := float32(src.Cols()) / float32(m.inputSize)
	scaleY := float32(src.Rows()) / float32(m.inputSize)

	var boxes []image.Rectangle
	var scores []float32
	var classIDs []int

	for i := 0; i < transposed.Rows(); i++ {
		row := transposed.RowRange(i, i+1)
		classScores := row.ColRange(4, transposed.Cols())
		_, maxVal, _, maxLoc := gocv.MinMaxLoc(classScores)
		confidence := maxVal

		if confidence >= m.confThreshold {
			// 中心座標とサイズを元画像のスケールに変換
			cx := row.GetFloatAt(0, 0) * scaleX
			cy := row.GetFloatAt(0, 1) * scaleY
			w := row.GetFloatAt(0, 2) * scaleX
			h := row.GetFloatAt(0, 3) * scaleY

			left := int(cx - w/2)
			top := int(cy - h/2)
			boxes = append(boxes, image.Rect(left, top, left+int(w), top+int(h)))
			scores = append(scores, confidence)
			classIDs = append(classIDs, maxLoc.X)
		}

		classScores.Close()
		row.Close()
	}

	if len(boxes) == 0 {
		return nil, nil
	}

	// 重複した矩形をNMSで除去
	indices := gocv.NMSBoxes(boxes, scores, m.confThreshold, m.nmsThreshold)

	detections := make([]Detection, 0, len(indices))
	for _, idx := range indices {
		label := fmt.Sprintf("class_%d", classIDs[idx])
		if classIDs[idx] < len(cocoClassNames) {
			label = cocoClassNames[classIDs[idx]]
		}
		detections = append(detections, Detection{
			Box:        boxes[idx],
			Label:      label,
			Confidence: scores[idx],
		})
	}

	return detections, nil
}

// Close はネットワークを解放する
func (m *yoloModel) Close() error {
	return m.net.Close()
}

// cocoClassNames はCOCOデータセットの80クラス名
var cocoClassNames = []string{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train",
	"truck", "boat", "traffic light", "fire hydrant", "stop sign",
	"parking meter", "bench", "bird", "cat", "dog", "horse", "sheep", "cow",
	"elephant", "bear", "zebra", "giraffe", "backpack", "umbrella", "handbag",
	"tie", "suitcase", "frisbee", "skis", "snowboard", "sports ball", "kite",
	"baseball bat", "baseball glove", "skateboard", "surfboard",
	"tennis racket", "bottle", "wine glass", "cup", "fork", "knife", "spoon",
	"bowl", "banana", "apple", "sandwich", "orange", "broccoli", "carrot",
	"hot dog", "pizza", "donut", "cake", "chair", "couch", "potted plant",
	"bed", "dining table", "toilet", "tv", "laptop", "mouse", "remote",
	"keyboard", "cell phone", "microwave", "oven", "toaster", "sink",
	"refrigerator", "book", "clock", "vase", "scissors", "teddy bear",
	"hair drier", "toothbrush",
}
