package selector

import (
	"image"
	"math"
	"math/rand"
	"testing"

	"gamepilot/internal/coords"
	"gamepilot/internal/detector"
)

func det(label string, x, y int) detector.Detection {
	return detector.NewDetection(label, 0.9, image.Rect(x-5, y-5, x+5, y+5))
}

func TestSelectNearestOfCategory(t *testing.T) {
	dets := []detector.Detection{
		det("chicken", 100, 100),
		det("oak tree", 630, 350),
		det("chicken", 600, 400),
		det("chicken", 1200, 700),
	}
	got, ok := Select(dets, "chicken", DefaultReference)
	if !ok {
		t.Fatal("ожидалась цель")
	}
	if got.Center != image.Pt(600, 400) {
		t.Errorf("Expected (600,400), got %v", got.Center)
	}
}

func TestSelectEmpty(t *testing.T) {
	if _, ok := Select(nil, "chicken", DefaultReference); ok {
		t.Error("пустой список не должен давать цель")
	}
	dets := []detector.Detection{det("oak tree", 1, 1)}
	if _, ok := Select(dets, "chicken", DefaultReference); ok {
		t.Error("объекты другой категории не должны давать цель")
	}
}

func TestSelectMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	labels := []string{"chicken", "tree", "rock", "goblin"}
	for round := 0; round < 200; round++ {
		n := rng.Intn(12)
		dets := make([]detector.Detection, 0, n)
		for i := 0; i < n; i++ {
			dets = append(dets, det(labels[rng.Intn(len(labels))], rng.Intn(1280), rng.Intn(720)))
		}
		ref := image.Pt(rng.Intn(1280), rng.Intn(720))

		got, ok := Select(dets, "chicken", ref)

		best := math.Inf(1)
		found := false
		for _, d := range dets {
			if d.Category != "chicken" {
				continue
			}
			found = true
			if dist := Distance(d.Center, ref); dist < best {
				best = dist
			}
		}
		if ok != found {
			t.Fatalf("раунд %d: ok=%v, ожидалось %v", round, ok, found)
		}
		if ok && Distance(got.Center, ref) != best {
			t.Fatalf("раунд %d: выбран не ближайший объект", round)
		}
	}
}

func TestGroup(t *testing.T) {
	g := Group([]detector.Detection{det("chicken", 1, 1), det("chicken", 2, 2), det("bank", 3, 3)})
	if len(g["chicken"]) != 2 || len(g["building"]) != 1 {
		t.Errorf("неожиданная группировка %v", g)
	}
}

func TestNewTarget(t *testing.T) {
	d := det("chicken", 200, 150)
	tg := NewTarget(d, coords.NewMapper(coords.DefaultOffset), image.Rect(10, 20, 1306, 819))
	if tg.Screen != image.Pt(218, 201) {
		t.Errorf("Expected (218,201), got %v", tg.Screen)
	}
}
