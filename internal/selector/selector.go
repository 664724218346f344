// Package selector выбирает цель среди распознанных объектов.
package selector

import (
	"image"
	"math"

	"gamepilot/internal/coords"
	"gamepilot/internal/detector"
)

// DefaultReference предполагаемый центр экрана, где стоит персонаж
var DefaultReference = image.Point{X: 640, Y: 360}

// Target выбранный объект и его экранные координаты
type Target struct {
	Detection detector.Detection
	Screen    image.Point
}

// Distance евклидово расстояние между точками
func Distance(a, b image.Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Hypot(dx, dy)
}

// ByCategory объекты указанной категории
func ByCategory(dets []detector.Detection, category string) []detector.Detection {
	var out []detector.Detection
	for _, d := range dets {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

// Nearest ближайший к ref объект; false для пустого списка
func Nearest(dets []detector.Detection, ref image.Point) (detector.Detection, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, d := range dets {
		if dist := Distance(d.Center, ref); dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best < 0 {
		return detector.Detection{}, false
	}
	return dets[best], true
}

// Select ближайший к ref объект категории category.
// false означает "нечего делать в этом цикле", а не ошибку.
func Select(dets []detector.Detection, category string, ref image.Point) (detector.Detection, bool) {
	return Nearest(ByCategory(dets, category), ref)
}

// Group раскладывает объекты по категориям
func Group(dets []detector.Detection) map[string][]detector.Detection {
	out := make(map[string][]detector.Detection)
	for _, d := range dets {
		out[d.Category] = append(out[d.Category], d)
	}
	return out
}

// NewTarget переводит центр объекта в координаты устройства ввода
func NewTarget(d detector.Detection, mapper coords.Mapper, outer image.Rectangle) Target {
	return Target{Detection: d, Screen: mapper.ToDevice(d.Center, outer)}
}
