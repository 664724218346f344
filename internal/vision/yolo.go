// Package vision работает с OpenCV: YOLO-модель в формате ONNX, отладочная
// разметка кадров и поиск границ тропинки и зданий.
package vision

import (
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"

	"gamepilot/internal/detector"
)

// Порог уверенности до NMS. Итоговый порог задает вызывающий.
const minScore = 0.05

// YOLO модель обнаружения объектов YOLOv8, экспортированная в ONNX
type YOLO struct {
	net        gocv.Net
	classNames []string
	inputSize  int
	nms        float32
}

// LoadYOLO загружает модель. classNames задают порядок классов, как при обучении.
func LoadYOLO(path string, classNames []string, inputSize int, nms float32) (*YOLO, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("файл модели %s: %w", path, err)
	}
	net := gocv.ReadNetFromONNX(path)
	if net.Empty() {
		return nil, fmt.Errorf("не удалось прочитать модель %s", path)
	}
	if inputSize <= 0 {
		inputSize = 640
	}
	return &YOLO{net: net, classNames: classNames, inputSize: inputSize, nms: nms}, nil
}

// Loader возвращает detector.ModelLoader для адаптера
func Loader(path string, classNames []string, inputSize int, nms float32) detector.ModelLoader {
	return func() (detector.Model, error) {
		return LoadYOLO(path, classNames, inputSize, nms)
	}
}

// Infer прогоняет изображение через сеть и возвращает рамки после NMS
func (y *YOLO) Infer(img image.Image) ([]detector.Raw, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("конвертация кадра: %w", err)
	}
	defer mat.Close()

	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(y.inputSize, y.inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	y.net.SetInput(blob, "")
	out := y.net.Forward("")
	defer out.Close()

	dims := out.Size()
	if len(dims) != 3 {
		return nil, fmt.Errorf("неожиданная форма выхода %v", dims)
	}
	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("чтение выхода: %w", err)
	}

	b := img.Bounds()
	scale := [2]float64{
		float64(b.Dx()) / float64(y.inputSize),
		float64(b.Dy()) / float64(y.inputSize),
	}
	raws := decodeYOLO(data, dims[1], dims[2], scale, y.classNames)
	if len(raws) == 0 {
		return nil, nil
	}

	boxes := make([]image.Rectangle, len(raws))
	scores := make([]float32, len(raws))
	for i, r := range raws {
		boxes[i] = r.Box
		scores[i] = float32(r.Confidence)
	}
	keep := gocv.NMSBoxes(boxes, scores, minScore, y.nms)

	kept := make([]detector.Raw, 0, len(keep))
	for _, i := range keep {
		r := raws[i]
		r.Box = r.Box.Add(b.Min)
		kept = append(kept, r)
	}
	return kept, nil
}

// Close освобождает сеть
func (y *YOLO) Close() error {
	return y.net.Close()
}

// decodeYOLO разбирает тензор [1, 4+C, N]: по каждому якорю cx, cy, w, h и C оценок классов
func decodeYOLO(data []float32, rows, anchors int, scale [2]float64, classNames []string) []detector.Raw {
	classes := rows - 4
	if classes <= 0 || len(data) < rows*anchors {
		return nil
	}

	var raws []detector.Raw
	for i := 0; i < anchors; i++ {
		best, bestScore := -1, float32(0)
		for c := 0; c < classes; c++ {
			if s := data[(4+c)*anchors+i]; s > bestScore {
				best, bestScore = c, s
			}
		}
		if best < 0 || bestScore < minScore {
			continue
		}

		cx, cy := float64(data[i]), float64(data[anchors+i])
		w, h := float64(data[2*anchors+i]), float64(data[3*anchors+i])
		box := image.Rect(
			int((cx-w/2)*scale[0]), int((cy-h/2)*scale[1]),
			int((cx+w/2)*scale[0]), int((cy+h/2)*scale[1]),
		)

		name := fmt.Sprintf("class_%d", best)
		if best < len(classNames) {
			name = classNames[best]
		}
		raws = append(raws, detector.Raw{
			ClassID:    best,
			ClassName:  name,
			Confidence: float64(bestScore),
			Box:        box,
		})
	}
	return raws
}
