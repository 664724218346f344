package navigation

import (
	"image"
	"image/color"
	"testing"
	"time"

	"gamepilot/internal/detector"
)

var frame = image.Pt(1280, 720) // центр (640, 360)

type fixedChooser int

func (f fixedChooser) IntBetween(lo, hi int) int { return int(f) }

func at(label string, x, y int, conf float64) detector.Detection {
	return detector.NewDetection(label, conf, image.Rect(x-10, y-10, x+10, y+10))
}

func TestObstacles(t *testing.T) {
	dets := []detector.Detection{
		at("person", 600, 360, 0.9),
		at("bench", 600, 360, 0.3),
		at("tree", 600, 360, 0.9),
		at("cup", 600, 360, 0.41),
	}
	got := Obstacles(dets)
	if len(got) != 2 || got[0].ClassName != "person" || got[1].ClassName != "cup" {
		t.Errorf("неожиданные препятствия %+v", got)
	}
}

func TestAvoid(t *testing.T) {
	tests := []struct {
		name      string
		obstacles []detector.Detection
		rng       fixedChooser
		want      Turn
	}{
		{"пусто", nil, 0, Forward},
		{"далеко", []detector.Detection{at("person", 640, 600, 0.9)}, 0, Forward},
		{"по центру влево", []detector.Detection{at("person", 680, 360, 0.9)}, 0, Left},
		{"по центру вправо", []detector.Detection{at("person", 600, 360, 0.9)}, 1, Right},
		{"слева", []detector.Detection{at("bench", 500, 360, 0.9)}, 0, Right},
		{"справа", []detector.Detection{at("bench", 780, 360, 0.9)}, 0, Left},
		{"поровну", []detector.Detection{at("bench", 500, 360, 0.9), at("car", 780, 360, 0.9)}, 0, Forward},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Avoid(tt.obstacles, frame, tt.rng)
			if got.Action != tt.want {
				t.Errorf("ожидалось %s, получено %s (%s)", tt.want, got.Action, got.Reason)
			}
		})
	}
}

func TestSwing(t *testing.T) {
	danger := []detector.Detection{at("car", 650, 400, 0.9)}

	if d := Swing(nil, frame, ""); d.Action != Forward {
		t.Errorf("без зданий летим прямо, получено %s", d.Action)
	}
	if d := Swing(danger, frame, ""); d.Action != Forward || d.Reason != "initial_center_danger" {
		t.Errorf("первая опасность без прошлого поворота: %+v", d)
	}
	if d := Swing(danger, frame, Left); d.Action != Right || d.Proximity != "danger" {
		t.Errorf("после левого поворота ожидался правый: %+v", d)
	}
	if d := Swing(danger, frame, Right); d.Action != Left {
		t.Errorf("после правого поворота ожидался левый: %+v", d)
	}

	closeLeft := []detector.Detection{at("bus", 440, 360, 0.9)}
	if d := Swing(closeLeft, frame, ""); d.Action != Right || d.Proximity != "close" {
		t.Errorf("здание близко слева: %+v", d)
	}

	mediumRight := []detector.Detection{
		at("person", 950, 360, 0.9),
		at("person", 960, 300, 0.9),
	}
	if d := Swing(mediumRight, frame, ""); d.Action != Left || d.Reason != "steer_away_right" {
		t.Errorf("два здания справа на средней дистанции: %+v", d)
	}

	far := []detector.Detection{at("person", 100, 100, 0.9)}
	if d := Swing(far, frame, Left); d.Action != Forward || d.Reason != "no_close_buildings" {
		t.Errorf("далекие здания не важны: %+v", d)
	}
}

func TestBuildings(t *testing.T) {
	dets := []detector.Detection{
		at("traffic light", 0, 0, 0.8),
		at("bank", 0, 0, 0.8),
		at("person", 0, 0, 0.4),
		at("chicken", 0, 0, 0.9),
	}
	if got := Buildings(dets); len(got) != 2 {
		t.Errorf("ожидалось 2 здания, получено %d", len(got))
	}
}

func TestSteerDuration(t *testing.T) {
	cases := map[float64]time.Duration{
		31:  200 * time.Millisecond,
		-45: 300 * time.Millisecond,
		61:  400 * time.Millisecond,
	}
	for offset, want := range cases {
		if got := SteerDuration(offset); got != want {
			t.Errorf("смещение %.0f: ожидалось %v, получено %v", offset, want, got)
		}
	}
}

func TestPathCorrection(t *testing.T) {
	if d := PathCorrection(30, ""); d.Action != Forward {
		t.Errorf("смещение 30 в допуске: %+v", d)
	}
	if d := PathCorrection(45, ""); d.Action != Left || d.Offset != 45 {
		t.Errorf("персонаж правее центра: %+v", d)
	}
	if d := PathCorrection(-70, ""); d.Action != Right || d.Offset != 70 {
		t.Errorf("персонаж левее центра: %+v", d)
	}
}

func grayImage(w, h int, fill uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = fill
	}
	return img
}

func TestFollowPathEdges(t *testing.T) {
	edges := grayImage(400, 200, 0)
	// ноги на y = 112, края тропинки на x = 150 и x = 330
	for y := 100; y < 120; y++ {
		edges.SetGray(150, y, color.Gray{Y: 255})
		edges.SetGray(330, y, color.Gray{Y: 255})
	}
	d := FollowPath(edges, nil)
	// центр тропинки 240, персонаж 200, смещение -40
	if d.Action != Right || d.Offset != 40 {
		t.Errorf("ожидался поворот вправо на 40, получено %+v", d)
	}
}

func TestFollowPathFallback(t *testing.T) {
	edges := grayImage(400, 200, 0)
	gray := grayImage(400, 200, 200)
	for x := 0; x < 100; x++ {
		gray.SetGray(x, 112, color.Gray{Y: 20})
	}
	d := FollowPath(edges, gray)
	// темная полоса 0..99, центр 49.5, смещение 150.5
	if d.Action != Left || d.Reason != "fallback_too_far_right" {
		t.Errorf("ожидалось подруливание влево по запасному скану, получено %+v", d)
	}

	narrow := grayImage(400, 200, 200)
	for x := 0; x < 30; x++ {
		narrow.SetGray(x, 112, color.Gray{Y: 20})
	}
	if d := FollowPath(edges, narrow); d.Action != Forward {
		t.Errorf("узкая полоса не тропинка: %+v", d)
	}
}
