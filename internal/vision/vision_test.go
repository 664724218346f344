package vision

import (
	"image"
	"testing"
)

func TestDecodeYOLO(t *testing.T) {
	// 2 класса, 3 якоря
	const anchors = 3
	data := make([]float32, 6*anchors)
	set := func(row, i int, v float32) { data[row*anchors+i] = v }

	// якорь 0: chicken 0.9 в центре (320, 320) размером 100x50
	set(0, 0, 320)
	set(1, 0, 320)
	set(2, 0, 100)
	set(3, 0, 50)
	set(4, 0, 0.9)
	set(5, 0, 0.1)
	// якорь 1: слишком слабый
	set(4, 1, 0.01)
	// якорь 2: tree 0.6
	set(0, 2, 100)
	set(1, 2, 100)
	set(2, 2, 20)
	set(3, 2, 40)
	set(5, 2, 0.6)

	raws := decodeYOLO(data, 6, anchors, [2]float64{2, 1}, []string{"chicken", "tree"})
	if len(raws) != 2 {
		t.Fatalf("ожидалось 2 рамки, получено %d", len(raws))
	}
	if raws[0].ClassName != "chicken" || raws[0].Box != image.Rect(540, 295, 740, 345) {
		t.Errorf("неожиданная первая рамка %+v", raws[0])
	}
	if raws[1].ClassName != "tree" || raws[1].ClassID != 1 {
		t.Errorf("неожиданная вторая рамка %+v", raws[1])
	}
}

func TestDecodeYOLOUnknownClass(t *testing.T) {
	data := make([]float32, 5)
	data[4] = 0.8
	raws := decodeYOLO(data, 5, 1, [2]float64{1, 1}, nil)
	if len(raws) != 1 || raws[0].ClassName != "class_0" {
		t.Errorf("класс без имени должен получить служебное имя: %+v", raws)
	}
}

func TestDecodeYOLOBadShape(t *testing.T) {
	if raws := decodeYOLO(make([]float32, 4), 4, 1, [2]float64{1, 1}, nil); raws != nil {
		t.Errorf("без классов рамок быть не может: %+v", raws)
	}
}
