// Package gamestest подделки окружения для тестов наборов команд.
package gamestest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"sort"
	"strings"
	"sync"
	"time"

	"gamepilot/internal/detector"
	"gamepilot/internal/executor"
	"gamepilot/internal/games"
	"gamepilot/internal/input"
	"gamepilot/internal/logger"
	"gamepilot/internal/loop"
	"gamepilot/internal/pipeline"
	"gamepilot/internal/screenshot"
	"gamepilot/internal/selector"
	"gamepilot/internal/timing"
)

// Input записывает действия в виде строк
type Input struct {
	mu    sync.Mutex
	Calls []string
	Err   error
}

func (f *Input) rec(format string, args ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, fmt.Sprintf(format, args...))
	return f.Err
}

func (f *Input) Press(_ context.Context, key string) error { return f.rec("press %s", key) }
func (f *Input) Hold(_ context.Context, key string, d time.Duration) error {
	return f.rec("hold %s %v", key, d)
}
func (f *Input) Combo(_ context.Context, keys []string, d time.Duration) error {
	return f.rec("combo %s %v", strings.Join(keys, "+"), d)
}
func (f *Input) Sequence(_ context.Context, steps []executor.Step) error {
	return f.rec("sequence %d %v", len(steps), executor.SequenceDuration(steps))
}
func (f *Input) Stick(_ context.Context, s input.Stick, x, y int, d time.Duration) error {
	return f.rec("stick %s %d %d %v", s, x, y, d)
}
func (f *Input) Click(_ context.Context, p image.Point, style executor.ClickStyle) error {
	return f.rec("click %s %d %d", style, p.X, p.Y)
}
func (f *Input) Neutral() error { return f.rec("neutral") }

// Snapshot копия записанных действий
func (f *Input) Snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...)
}

// Count сколько действий начинается с prefix
func (f *Input) Count(prefix string) int {
	n := 0
	for _, c := range f.Snapshot() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Scanner отдает кадры по очереди; после конца очереди повторяет последний
type Scanner struct {
	mu     sync.Mutex
	Frames [][]detector.Detection
	Err    error
	Scans  int
	mapper func(image.Point) image.Point
}

// NewScanner создает подделку, которая переводит точки кадра сдвигом offset
func NewScanner(offset image.Point, frames ...[]detector.Detection) *Scanner {
	return &Scanner{Frames: frames, mapper: func(p image.Point) image.Point { return p.Add(offset) }}
}

func (s *Scanner) Capture(ctx context.Context) (*screenshot.Frame, error) {
	scan, err := s.Scan(ctx, 0)
	if err != nil {
		return nil, err
	}
	return scan.Frame, nil
}

func (s *Scanner) Scan(_ context.Context, threshold float64) (*pipeline.Scan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Scans++
	if s.Err != nil {
		return nil, s.Err
	}
	var dets []detector.Detection
	if len(s.Frames) > 0 {
		i := min(s.Scans-1, len(s.Frames)-1)
		for _, d := range s.Frames[i] {
			if d.Confidence >= threshold {
				dets = append(dets, d)
			}
		}
	}
	return &pipeline.Scan{
		Frame:      &screenshot.Frame{Image: image.NewRGBA(image.Rect(0, 0, 1280, 720))},
		Detections: dets,
	}, nil
}

func (s *Scanner) Target(scan *pipeline.Scan, category string) (selector.Target, error) {
	d, ok := selector.Select(scan.Detections, category, selector.DefaultReference)
	if !ok {
		return selector.Target{}, fmt.Errorf("%w: %s", pipeline.ErrNothingFound, category)
	}
	return selector.Target{Detection: d, Screen: s.mapper(d.Center)}, nil
}

func (s *Scanner) Find(ctx context.Context, category string, threshold float64) (selector.Target, error) {
	scan, err := s.Scan(ctx, threshold)
	if err != nil {
		return selector.Target{}, err
	}
	return s.Target(scan, category)
}

// Count число снятых кадров
func (s *Scanner) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Scans
}

// Sleeper запоминает паузы и не ждет
type Sleeper struct {
	mu    sync.Mutex
	Slept []time.Duration
}

func (s *Sleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.Slept = append(s.Slept, d)
	s.mu.Unlock()
	return ctx.Err()
}

// Total суммарное время пауз
func (s *Sleeper) Total() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var t time.Duration
	for _, d := range s.Slept {
		t += d
	}
	return t
}

// Env окружение с подделками и настоящим контроллером сессий
type Env struct {
	*games.Env
	FakeInput   *Input
	FakeScanner *Scanner
	Sleeper     *Sleeper
	Controller  *loop.Controller
	Log         *bytes.Buffer
}

// NewEnv собирает тестовое окружение
func NewEnv(scanner *Scanner) *Env {
	if scanner == nil {
		scanner = NewScanner(image.Point{})
	}
	buf := &bytes.Buffer{}
	lg := logger.NewWriterLogger(&syncWriter{w: buf})
	in := &Input{}
	sl := &Sleeper{}
	ctrl := loop.NewController(lg, nil)
	return &Env{
		Env: &games.Env{
			Base:    context.Background(),
			Input:   in,
			Scanner: scanner,
			Loops:   ctrl,
			Logger:  lg,
			Rand:    timing.NewRand(1),
			Sleep:   sl.Sleep,
		},
		FakeInput:   in,
		FakeScanner: scanner,
		Sleeper:     sl,
		Controller:  ctrl,
		Log:         buf,
	}
}

type syncWriter struct {
	mu sync.Mutex
	w  *bytes.Buffer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Sorted отсортированная копия строк
func Sorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

// At детекция размером 20x20 с центром в (x, y)
func At(label string, x, y int, conf float64) detector.Detection {
	return detector.NewDetection(label, conf, image.Rect(x-10, y-10, x+10, y+10))
}
