//go:build !cv

package detect

// OpenCVなしのビルドでは物体検出は常に利用不可となる
// 有効にするにはOpenCVを導入した上で -tags cv を付けてビルドする

// runtimeProbe はOpenCVなしビルドでは常に利用不可を返す
func runtimeProbe() bool {
	return false
}

// loadModel はOpenCVなしビルドでは常に失敗する
func loadModel(_ string) (Model, error) {
	return nil, ErrUnavailable
}

// NewYOLOLoadFunc はOpenCVなしビルドでは常に失敗するLoadFuncを返す
func NewYOLOLoadFunc(_ int, _, _ float32) LoadFunc {
	return func(_ string) (Model, error) {
		return nil, ErrUnavailable
	}
}
