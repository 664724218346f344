package timing

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := Sleep(ctx, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ожидалась context.Canceled, получено %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Sleep не прервался по отмене")
	}
}

func TestRandDurationWithinRange(t *testing.T) {
	g := NewRand(1)
	rg := Range{Min: 50 * time.Millisecond, Max: 150 * time.Millisecond}
	for i := 0; i < 1000; i++ {
		d := g.Duration(rg)
		if d < rg.Min || d > rg.Max {
			t.Fatalf("длительность %v вне интервала %v..%v", d, rg.Min, rg.Max)
		}
	}
}

func TestRandIntBetween(t *testing.T) {
	g := NewRand(2)
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		v := g.IntBetween(-2, 2)
		if v < -2 || v > 2 {
			t.Fatalf("значение %d вне [-2, 2]", v)
		}
		seen[v] = true
	}
	if len(seen) != 5 {
		t.Errorf("ожидались все 5 значений, получено %v", seen)
	}
}
