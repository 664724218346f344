package navigation

import (
	"image"
	"math"
	"time"
)

// Параметры удержания на тропинке
const (
	PathTolerance   = 30
	FootOffset      = 12
	EdgeSearchRange = 50
	DarkThreshold   = 80
	MinPathWidth    = 50
	PathCooldown    = 300 * time.Millisecond
)

// SteerDuration длительность подруливания по величине смещения
func SteerDuration(offset float64) time.Duration {
	offset = math.Abs(offset)
	switch {
	case offset > 60:
		return 400 * time.Millisecond
	case offset > 40:
		return 300 * time.Millisecond
	}
	return 200 * time.Millisecond
}

// PathCorrection решает, нужно ли подруливать. offset это положение персонажа
// минус центр тропинки, положительное значит персонаж правее.
func PathCorrection(offset float64, reason string) Decision {
	switch {
	case offset > PathTolerance:
		return Decision{Action: Left, Reason: reason + "too_far_right", Offset: offset}
	case offset < -PathTolerance:
		return Decision{Action: Right, Reason: reason + "too_far_left", Offset: -offset}
	}
	return Decision{Action: Forward, Reason: reason + "centered", Offset: math.Abs(offset)}
}

// FollowPath ищет края тропинки на карте границ на уровне ног персонажа.
// Если краев не видно, сканирует строку полутонового кадра в поисках темного асфальта.
func FollowPath(edges, gray *image.Gray) Decision {
	if edges == nil {
		return Decision{Action: Forward, Reason: "no_frame"}
	}
	b := edges.Bounds()
	cx := b.Min.X + b.Dx()/2
	feetY := b.Min.Y + b.Dy()/2 + FootOffset

	left, okL := findEdge(edges, feetY, cx, -1)
	right, okR := findEdge(edges, feetY, cx, 1)
	if okL && okR {
		return PathCorrection(float64(cx)-float64(left+right)/2, "")
	}
	if gray == nil {
		return Decision{Action: Forward, Reason: "fallback_no_frame"}
	}
	return scanDarkRow(gray, cx, feetY)
}

// findEdge идет от центра к краю кадра и возвращает первый столбец с границей в полосе ±EdgeSearchRange
func findEdge(edges *image.Gray, y, cx, dir int) (int, bool) {
	b := edges.Bounds()
	y0 := max(b.Min.Y, y-EdgeSearchRange)
	y1 := min(b.Max.Y, y+EdgeSearchRange)

	for x := cx; x > b.Min.X && x < b.Max.X; x += dir {
		for yy := y0; yy < y1; yy++ {
			if edges.GrayAt(x, yy).Y != 0 {
				return x, true
			}
		}
	}
	return 0, false
}

func scanDarkRow(gray *image.Gray, cx, y int) Decision {
	b := gray.Bounds()
	if y < b.Min.Y || y >= b.Max.Y {
		return Decision{Action: Forward, Reason: "fallback_centered"}
	}
	first, last, count := -1, -1, 0
	for x := b.Min.X; x < b.Max.X; x++ {
		if gray.GrayAt(x, y).Y < DarkThreshold {
			if first < 0 {
				first = x
			}
			last = x
			count++
		}
	}
	if count <= MinPathWidth {
		return Decision{Action: Forward, Reason: "fallback_centered"}
	}
	d := PathCorrection(float64(cx)-float64(first+last)/2, "fallback_")
	if d.Action == Forward {
		d.Offset = 0
	}
	return d
}
