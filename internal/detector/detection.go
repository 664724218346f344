// Package detector превращает сырые ответы модели в список распознанных объектов.
package detector

import (
	"encoding/json"
	"image"
)

// Detection один распознанный объект в кадре
type Detection struct {
	ClassName  string
	Category   string
	Confidence float64
	BBox       image.Rectangle
	Center     image.Point
}

// detectionJSON формат детекции в JSON: bbox [x1,y1,x2,y2], center [x,y]
type detectionJSON struct {
	ClassName  string  `json:"class_name"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	BBox       [4]int  `json:"bbox"`
	Center     [2]int  `json:"center"`
}

func (d Detection) MarshalJSON() ([]byte, error) {
	return json.Marshal(detectionJSON{
		ClassName:  d.ClassName,
		Category:   d.Category,
		Confidence: d.Confidence,
		BBox:       [4]int{d.BBox.Min.X, d.BBox.Min.Y, d.BBox.Max.X, d.BBox.Max.Y},
		Center:     [2]int{d.Center.X, d.Center.Y},
	})
}

func (d *Detection) UnmarshalJSON(data []byte) error {
	var w detectionJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*d = Detection{
		ClassName:  w.ClassName,
		Category:   w.Category,
		Confidence: w.Confidence,
		BBox:       image.Rect(w.BBox[0], w.BBox[1], w.BBox[2], w.BBox[3]),
		Center:     image.Pt(w.Center[0], w.Center[1]),
	}
	return nil
}

// Raw ответ модели до фильтрации
type Raw struct {
	ClassID    int
	ClassName  string
	Confidence float64
	Box        image.Rectangle
}

// NewDetection строит Detection из рамки и метки
func NewDetection(label string, confidence float64, box image.Rectangle) Detection {
	box = box.Canon()
	return Detection{
		ClassName:  label,
		Category:   Categorize(label),
		Confidence: confidence,
		BBox:       box,
		Center: image.Point{
			X: (box.Min.X + box.Max.X) / 2,
			Y: (box.Min.Y + box.Max.Y) / 2,
		},
	}
}
