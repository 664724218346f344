package navigation

import (
	"image"
	"time"

	"gamepilot/internal/detector"
)

// Пороги близости зданий при полете на паутине
const (
	DangerDistance = 150
	CloseDistance  = 250
	MediumDistance = 400
	SwingBand      = 80

	BuildingConfidence = 0.5
)

// Тайминги манёвра раскачки
const (
	SwingTurn     = time.Second
	SwingForward  = time.Second
	SwingCooldown = time.Second
)

// buildingContext объекты, рядом с которыми обычно стоят здания
var buildingContext = map[string]bool{
	"person":        true,
	"car":           true,
	"truck":         true,
	"bus":           true,
	"motorcycle":    true,
	"bicycle":       true,
	"traffic light": true,
	"stop sign":     true,
	"bench":         true,
	"chair":         true,
}

// Buildings отбирает детекции, указывающие на здание рядом
func Buildings(dets []detector.Detection) []detector.Detection {
	var out []detector.Detection
	for _, d := range dets {
		if (buildingContext[d.ClassName] || d.Category == "building") && d.Confidence > BuildingConfidence {
			out = append(out, d)
		}
	}
	return out
}

// Swing выбирает поворот при раскачке. lastTurn нужен, чтобы чередовать стороны
// при препятствии прямо по курсу.
func Swing(buildings []detector.Detection, size image.Point, lastTurn Turn) Decision {
	if len(buildings) == 0 {
		return Decision{Action: Forward, Reason: "no_buildings"}
	}
	c := center(size)

	var centerAll, centerClose, leftAll, leftClose, rightAll, rightClose, relevant int
	for _, b := range buildings {
		d := dist(b.Center, c)
		if d > MediumDistance {
			continue
		}
		relevant++
		isClose := d <= CloseDistance
		switch side(b, c.X, SwingBand) {
		case Left:
			leftAll++
			if isClose {
				leftClose++
			}
		case Right:
			rightAll++
			if isClose {
				rightClose++
			}
		default:
			centerAll++
			if isClose {
				centerClose++
			}
		}
	}

	switch {
	case relevant == 0:
		return Decision{Action: Forward, Reason: "no_close_buildings"}
	case centerClose > 0:
		return alternate(lastTurn, "center_danger", centerClose, "danger")
	case centerAll > 1:
		return alternate(lastTurn, "center_blocked", centerAll, "medium")
	case leftClose > rightClose:
		return Decision{Action: Right, Reason: "avoid_close_left", Count: leftClose, Proximity: "close"}
	case rightClose > leftClose:
		return Decision{Action: Left, Reason: "avoid_close_right", Count: rightClose, Proximity: "close"}
	case leftAll > rightAll+1:
		return Decision{Action: Right, Reason: "steer_away_left", Count: leftAll, Proximity: "medium"}
	case rightAll > leftAll+1:
		return Decision{Action: Left, Reason: "steer_away_right", Count: rightAll, Proximity: "medium"}
	}
	return Decision{Action: Forward, Reason: "clear_path", Count: relevant, Proximity: "safe"}
}

// alternate поворачивает в сторону, противоположную прошлому повороту.
// Без прошлого поворота продолжаем лететь прямо.
func alternate(lastTurn Turn, reason string, count int, proximity string) Decision {
	turn := lastTurn.Opposite()
	if turn == Forward {
		return Decision{Action: Forward, Reason: "initial_" + reason, Count: count, Proximity: proximity}
	}
	return Decision{Action: turn, Reason: reason + "_" + string(turn), Count: count, Proximity: proximity}
}
