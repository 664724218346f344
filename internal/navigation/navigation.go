// Package navigation решает, куда повернуть персонажа по результатам распознавания.
// Сам ввод выполняют сценарии игр, здесь только чистая логика.
package navigation

import (
	"image"
	"math"

	"gamepilot/internal/detector"
)

// Turn направление манёвра
type Turn string

const (
	Forward Turn = "forward"
	Left    Turn = "left"
	Right   Turn = "right"
)

// Opposite противоположный поворот
func (t Turn) Opposite() Turn {
	switch t {
	case Left:
		return Right
	case Right:
		return Left
	}
	return Forward
}

// Decision результат анализа кадра
type Decision struct {
	Action    Turn
	Reason    string
	Count     int
	Proximity string
	Offset    float64
}

// Chooser источник случайности для выбора стороны
type Chooser interface {
	IntBetween(lo, hi int) int
}

func center(size image.Point) image.Point {
	return image.Pt(size.X/2, size.Y/2)
}

func dist(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// side раскладывает объекты по левой, центральной и правой полосе
func side(d detector.Detection, cx, band int) Turn {
	switch {
	case d.Center.X < cx-band:
		return Left
	case d.Center.X > cx+band:
		return Right
	}
	return Forward
}
