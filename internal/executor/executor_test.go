package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"testing"
	"time"

	"gamepilot/internal/input"
	"gamepilot/internal/logger"
	"gamepilot/internal/timing"
	"gamepilot/internal/window"
)

type fakeDevice struct {
	mu     sync.Mutex
	events []string
	moves  []image.Point
	cursor image.Point
}

func (d *fakeDevice) record(e string) error {
	d.mu.Lock()
	d.events = append(d.events, e)
	d.mu.Unlock()
	return nil
}

func (d *fakeDevice) KeyDown(key string) error       { return d.record("down:" + key) }
func (d *fakeDevice) KeyUp(key string) error         { return d.record("up:" + key) }
func (d *fakeDevice) MouseDown(b input.Button) error { return d.record("mdown:" + string(b)) }
func (d *fakeDevice) MouseUp(b input.Button) error   { return d.record("mup:" + string(b)) }
func (d *fakeDevice) Close() error                   { return nil }
func (d *fakeDevice) CursorPos() (int, int, error)   { return d.cursor.X, d.cursor.Y, nil }
func (d *fakeDevice) SetStick(s input.Stick, x, y int) error {
	return d.record(fmt.Sprintf("stick:%s:%d:%d", s, x, y))
}
func (d *fakeDevice) MoveMouse(x, y int) error {
	d.mu.Lock()
	d.moves = append(d.moves, image.Pt(x, y))
	d.cursor = image.Pt(x, y)
	d.mu.Unlock()
	return d.record("move")
}

func (d *fakeDevice) snapshot() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.events...)
}

type fakeSleeper struct {
	mu     sync.Mutex
	slept  []time.Duration
	failAt int // номер паузы (с 1), на которой вернуть отмену
}

func (s *fakeSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slept = append(s.slept, d)
	if s.failAt > 0 && len(s.slept) == s.failAt {
		return context.Canceled
	}
	return ctx.Err()
}

func (s *fakeSleeper) durations() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.slept...)
}

type fakeFocus struct{ err error }

func (f fakeFocus) EnsureFocused(context.Context) error { return f.err }

func newTestExecutor(focusErr error) (*Executor, *fakeDevice, *fakeSleeper) {
	dev := &fakeDevice{cursor: image.Pt(100, 100)}
	sl := &fakeSleeper{}
	e := NewExecutor(dev, fakeFocus{err: focusErr}, logger.NewWriterLogger(&bytes.Buffer{}), timing.NewRand(7))
	e.sleep = sl.sleep
	return e, dev, sl
}

func inRange(d time.Duration, r timing.Range) bool {
	return d >= r.Min && d <= r.Max
}

func TestHold(t *testing.T) {
	e, dev, sl := newTestExecutor(nil)
	if err := e.Hold(context.Background(), "w", time.Second); err != nil {
		t.Fatal(err)
	}

	events := dev.snapshot()
	if len(events) != 2 || events[0] != "down:w" || events[1] != "up:w" {
		t.Errorf("неожиданные события %v", events)
	}
	slept := sl.durations()
	if len(slept) != 3 {
		t.Fatalf("ожидалось 3 паузы, получено %v", slept)
	}
	if !inRange(slept[0], HumanDelay) {
		t.Errorf("задержка перед вводом %v вне %v", slept[0], HumanDelay)
	}
	if slept[1] != time.Second {
		t.Errorf("удержание %v, ожидалась 1s", slept[1])
	}
	if !inRange(slept[2], ReleaseDelay) {
		t.Errorf("задержка после ввода %v вне %v", slept[2], ReleaseDelay)
	}
}

func TestHoldMouseKey(t *testing.T) {
	e, dev, _ := newTestExecutor(nil)
	if err := e.Press(context.Background(), "right_click"); err != nil {
		t.Fatal(err)
	}
	events := dev.snapshot()
	if len(events) != 2 || events[0] != "mdown:right" || events[1] != "mup:right" {
		t.Errorf("right_click должен идти в кнопку мыши, получено %v", events)
	}
}

func TestActionWithoutFocus(t *testing.T) {
	e, dev, _ := newTestExecutor(errors.New("фон"))
	err := e.Hold(context.Background(), "w", time.Second)
	if !errors.Is(err, ErrNotFocused) {
		t.Fatalf("ожидалась ErrNotFocused, получено %v", err)
	}
	if len(dev.snapshot()) != 0 {
		t.Error("без фокуса на устройство ничего не должно уходить")
	}
	if err := e.Click(context.Background(), image.Pt(10, 10), HumanClick); !errors.Is(err, ErrNotFocused) {
		t.Errorf("клик без фокуса: %v", err)
	}
}

func TestFocusLostKeepsCause(t *testing.T) {
	e, _, _ := newTestExecutor(window.ErrFocusFailed)
	err := e.Press(context.Background(), "w")
	if !errors.Is(err, ErrNotFocused) || !errors.Is(err, window.ErrFocusFailed) {
		t.Fatalf("ожидались ErrNotFocused и ErrFocusFailed, получено %v", err)
	}
	if !FocusLost(err) {
		t.Error("исчерпанные стратегии фокуса должны завершать команду")
	}
	if FocusLost(ErrNotFocused) {
		t.Error("ErrNotFocused без причины не считается потерей окна")
	}
	if !FocusLost(fmt.Errorf("%w: %w", ErrNotFocused, window.ErrNotFound)) {
		t.Error("пропавшее окно должно завершать команду")
	}
}

func TestHoldReleasesOnCancel(t *testing.T) {
	e, dev, sl := newTestExecutor(nil)
	sl.failAt = 2 // отмена во время удержания
	err := e.Hold(context.Background(), "space", time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ожидалась отмена, получено %v", err)
	}
	events := dev.snapshot()
	if len(events) != 2 || events[1] != "up:space" {
		t.Errorf("клавиша должна быть отпущена, события %v", events)
	}
}

func TestCombo(t *testing.T) {
	e, dev, sl := newTestExecutor(nil)
	keys := []string{"shift", "w", "space"}
	if err := e.Combo(context.Background(), keys, 1500*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	events := dev.snapshot()
	if len(events) != 6 {
		t.Fatalf("ожидалось 6 событий, получено %v", events)
	}
	for _, k := range keys {
		down, up := -1, -1
		for i, ev := range events {
			switch ev {
			case "down:" + k:
				down = i
			case "up:" + k:
				up = i
			}
		}
		if down < 0 || up < 0 || down > up {
			t.Errorf("%s: нажатие %d, отпускание %d", k, down, up)
		}
	}

	holds := 0
	for _, d := range sl.durations() {
		if d == 1500*time.Millisecond {
			holds++
		}
	}
	if holds != len(keys) {
		t.Errorf("каждая клавиша держится отдельно: %d удержаний", holds)
	}
}

func TestSequence(t *testing.T) {
	e, dev, sl := newTestExecutor(nil)
	steps := []Step{
		{Key: "w", For: 3 * time.Second},
		{Key: "space", At: time.Second, For: time.Second},
	}
	if err := e.Sequence(context.Background(), steps); err != nil {
		t.Fatal(err)
	}
	if len(dev.snapshot()) != 4 {
		t.Errorf("ожидалось 4 события, получено %v", dev.snapshot())
	}
	seen := map[time.Duration]int{}
	for _, d := range sl.durations() {
		seen[d]++
	}
	if seen[time.Second] != 2 || seen[3*time.Second] != 1 {
		t.Errorf("неожиданные паузы %v", sl.durations())
	}
	if got := SequenceDuration(steps); got != 3*time.Second {
		t.Errorf("длительность сценария %v", got)
	}
}

func TestStick(t *testing.T) {
	e, dev, _ := newTestExecutor(nil)
	if err := e.Stick(context.Background(), input.LeftStick, 0, 16383, time.Second); err != nil {
		t.Fatal(err)
	}
	events := dev.snapshot()
	if len(events) != 2 || events[0] != "stick:left:0:16383" || events[1] != "stick:left:0:0" {
		t.Errorf("неожиданные события %v", events)
	}
}

func TestHumanClickJitter(t *testing.T) {
	target := image.Pt(500, 300)
	for i := 0; i < 50; i++ {
		e, dev, sl := newTestExecutor(nil)
		e.rng = timing.NewRand(int64(i))
		if err := e.Click(context.Background(), target, HumanClick); err != nil {
			t.Fatal(err)
		}

		if n := len(dev.moves); n < GlideStepsMin || n > GlideStepsMax {
			t.Fatalf("число шагов подведения %d вне [%d, %d]", n, GlideStepsMin, GlideStepsMax)
		}
		last := dev.moves[len(dev.moves)-1]
		if abs(last.X-target.X) > HumanOffset || abs(last.Y-target.Y) > HumanOffset {
			t.Errorf("смещение клика %v больше ±%d", last, HumanOffset)
		}

		slept := sl.durations()
		steps := len(dev.moves)
		for _, d := range slept[:steps] {
			if !inRange(d, GlideStepDelay) {
				t.Errorf("пауза шага %v вне %v", d, GlideStepDelay)
			}
		}
		if !inRange(slept[steps], SettleDelay) {
			t.Errorf("пауза перед нажатием %v вне %v", slept[steps], SettleDelay)
		}
		if !inRange(slept[len(slept)-1], ReleaseDelay) {
			t.Errorf("пауза после клика %v вне %v", slept[len(slept)-1], ReleaseDelay)
		}
	}
}

func TestFastClickJitter(t *testing.T) {
	target := image.Pt(640, 360)
	for i := 0; i < 50; i++ {
		e, dev, sl := newTestExecutor(nil)
		e.rng = timing.NewRand(int64(i))
		if err := e.Click(context.Background(), target, FastClick); err != nil {
			t.Fatal(err)
		}
		if len(dev.moves) != 1 {
			t.Fatalf("быстрый клик двигает курсор один раз, получено %d", len(dev.moves))
		}
		p := dev.moves[0]
		if abs(p.X-target.X) > FastOffset || abs(p.Y-target.Y) > FastOffset {
			t.Errorf("смещение быстрого клика %v больше ±%d", p, FastOffset)
		}
		slept := sl.durations()
		if len(slept) != 2 || slept[0] != FastMoveDelay || slept[1] != FastPress {
			t.Errorf("паузы быстрого клика %v", slept)
		}
	}
}

func TestGlidePath(t *testing.T) {
	path := GlidePath(image.Pt(0, 0), image.Pt(100, 50), 4)
	if len(path) != 4 {
		t.Fatalf("ожидалось 4 точки, получено %d", len(path))
	}
	if path[3] != image.Pt(100, 50) {
		t.Errorf("последняя точка %v", path[3])
	}
	if path[0] != image.Pt(25, 12) {
		t.Errorf("первая точка %v", path[0])
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestMergeSteps(t *testing.T) {
	steps := []Step{
		{Key: "w", At: 0, For: 2 * time.Second},
		{Key: "space", At: time.Second, For: 100 * time.Millisecond},
		{Key: "w", At: time.Second, For: 3 * time.Second},
		{Key: "w", At: 4 * time.Second, For: time.Second},
		{Key: "w", At: 6 * time.Second, For: time.Second},
	}
	got := MergeSteps(steps)
	want := []Step{
		{Key: "w", At: 0, For: 5 * time.Second},
		{Key: "w", At: 6 * time.Second, For: time.Second},
		{Key: "space", At: time.Second, For: 100 * time.Millisecond},
	}
	if len(got) != len(want) {
		t.Fatalf("ожидалось %v, получено %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("шаг %d: ожидалось %+v, получено %+v", i, want[i], got[i])
		}
	}
	if SequenceDuration(got) != SequenceDuration(steps) {
		t.Error("склейка не меняет длительность сценария")
	}
}

func TestSequenceMergesSameKey(t *testing.T) {
	e, dev, _ := newTestExecutor(nil)
	steps := []Step{
		{Key: "w", For: 2 * time.Second},
		{Key: "w", At: time.Second, For: 2 * time.Second},
	}
	if err := e.Sequence(context.Background(), steps); err != nil {
		t.Fatal(err)
	}
	events := dev.snapshot()
	if len(events) != 2 || events[0] != "down:w" || events[1] != "up:w" {
		t.Errorf("ожидалось одно удержание w, получено %v", events)
	}
}
