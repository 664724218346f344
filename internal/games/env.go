// Package games содержит общее окружение для наборов команд отдельных игр.
package games

import (
	"context"
	"image"
	"time"

	"gamepilot/internal/detector"
	"gamepilot/internal/executor"
	"gamepilot/internal/input"
	"gamepilot/internal/logger"
	"gamepilot/internal/loop"
	"gamepilot/internal/pipeline"
	"gamepilot/internal/screenshot"
	"gamepilot/internal/selector"
	"gamepilot/internal/timing"
)

// Input действия, доступные наборам команд
type Input interface {
	Press(ctx context.Context, key string) error
	Hold(ctx context.Context, key string, d time.Duration) error
	Combo(ctx context.Context, keys []string, d time.Duration) error
	Sequence(ctx context.Context, steps []executor.Step) error
	Stick(ctx context.Context, s input.Stick, x, y int, d time.Duration) error
	Click(ctx context.Context, p image.Point, style executor.ClickStyle) error
	Neutral() error
}

// Scanner распознавание объектов в окне игры
type Scanner interface {
	Capture(ctx context.Context) (*screenshot.Frame, error)
	Scan(ctx context.Context, threshold float64) (*pipeline.Scan, error)
	Target(scan *pipeline.Scan, category string) (selector.Target, error)
	Find(ctx context.Context, category string, threshold float64) (selector.Target, error)
}

// Loops контроллер непрерывных сессий
type Loops interface {
	Start(parent context.Context, kind, game string, cycle loop.Cycle) error
	Stop() error
	Active() (loop.Stats, bool)
}

// ScanSink получает результаты "scan objects" для отладки и журнала
type ScanSink func(scan *pipeline.Scan)

// Env все, что нужно наборам команд
type Env struct {
	// Base родительский контекст для фоновых сессий: они переживают команду, которая их запустила
	Base    context.Context
	Input   Input
	Scanner Scanner
	Loops   Loops
	Logger  *logger.LoggerManager
	Rand    *timing.Rand
	Sleep   timing.Sleeper
	OnScan  ScanSink
}

// Wait прерываемая пауза
func (e *Env) Wait(ctx context.Context, d time.Duration) error {
	if e.Sleep == nil {
		return timing.Sleep(ctx, d)
	}
	return e.Sleep(ctx, d)
}

// WaitRandom прерываемая пауза случайной длительности
func (e *Env) WaitRandom(ctx context.Context, r timing.Range) error {
	return e.Wait(ctx, e.Rand.Duration(r))
}

// StopLoops останавливает активную сессию, если она есть
func (e *Env) StopLoops(context.Context) error {
	if stats, ok := e.Loops.Active(); ok {
		e.Logger.Info("🛑 Останавливаем %s", stats.Kind)
	} else {
		e.Logger.Info("ℹ️ Нет активной сессии")
	}
	return e.Loops.Stop()
}

// Counts число объектов по категориям
func Counts(dets []detector.Detection) map[string]int {
	out := make(map[string]int)
	for cat, list := range selector.Group(dets) {
		out[cat] = len(list)
	}
	return out
}
