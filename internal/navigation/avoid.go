package navigation

import (
	"image"
	"time"

	"gamepilot/internal/detector"
)

// Параметры обхода препятствий при ходьбе
const (
	ObstacleConfidence = 0.4
	ObstacleRadius     = 200
	ObstacleBand       = 60
)

// Тайминги манёвра обхода
const (
	AvoidTurn     = 300 * time.Millisecond
	AvoidForward  = 200 * time.Millisecond
	AvoidCooldown = 500 * time.Millisecond
	WalkStep      = 100 * time.Millisecond
	WalkPause     = 50 * time.Millisecond
)

// obstacleClasses то, что мешает идти по парку
var obstacleClasses = map[string]bool{
	"person": true,
	"bench":  true,
	"chair":  true,
	"bottle": true,
	"cup":    true,
	"car":    true,
	"truck":  true,
}

// Obstacles отбирает из детекций препятствия
func Obstacles(dets []detector.Detection) []detector.Detection {
	var out []detector.Detection
	for _, d := range dets {
		if obstacleClasses[d.ClassName] && d.Confidence > ObstacleConfidence {
			out = append(out, d)
		}
	}
	return out
}

// Avoid выбирает манёвр по препятствиям рядом с центром кадра
func Avoid(obstacles []detector.Detection, size image.Point, rng Chooser) Decision {
	c := center(size)

	var left, right, middle, close int
	for _, o := range obstacles {
		if dist(o.Center, c) > ObstacleRadius {
			continue
		}
		close++
		switch side(o, c.X, ObstacleBand) {
		case Left:
			left++
		case Right:
			right++
		default:
			middle++
		}
	}

	switch {
	case close == 0:
		return Decision{Action: Forward, Reason: "no_close_obstacles"}
	case middle > 0:
		turn := Left
		if rng.IntBetween(0, 1) == 1 {
			turn = Right
		}
		return Decision{Action: turn, Reason: "center_blocked_" + string(turn), Count: middle}
	case left > right:
		return Decision{Action: Right, Reason: "avoid_left_obstacles", Count: left}
	case right > left:
		return Decision{Action: Left, Reason: "avoid_right_obstacles", Count: right}
	}
	return Decision{Action: Forward, Reason: "balanced_obstacles", Count: close}
}
