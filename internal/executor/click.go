package executor

import (
	"context"
	"fmt"
	"image"
	"time"

	"go.uber.org/multierr"

	"gamepilot/internal/input"
	"gamepilot/internal/timing"
)

// ClickStyle манера клика
type ClickStyle int

const (
	// HumanClick плавное подведение курсора и случайные паузы
	HumanClick ClickStyle = iota
	// FastClick для боя: прямой перенос курсора и короткое нажатие
	FastClick
)

func (s ClickStyle) String() string {
	if s == FastClick {
		return "fast"
	}
	return "human"
}

// Параметры джиттера кликов
const (
	HumanOffset   = 2
	FastOffset    = 1
	GlideStepsMin = 3
	GlideStepsMax = 7
)

var (
	GlideStepDelay = timing.Range{Min: 10 * time.Millisecond, Max: 30 * time.Millisecond}
	SettleDelay    = timing.Range{Min: 50 * time.Millisecond, Max: 150 * time.Millisecond}
	HumanPress     = timing.Range{Min: 30 * time.Millisecond, Max: 80 * time.Millisecond}
	FastMoveDelay  = 10 * time.Millisecond
	FastPress      = 5 * time.Millisecond
)

// Click кликает левой кнопкой по экранной точке
func (e *Executor) Click(ctx context.Context, p image.Point, style ClickStyle) error {
	return e.ClickButton(ctx, p, input.ButtonLeft, style)
}

// ClickButton кликает указанной кнопкой по экранной точке
func (e *Executor) ClickButton(ctx context.Context, p image.Point, b input.Button, style ClickStyle) error {
	if err := e.ensureFocused(ctx); err != nil {
		return err
	}

	var err error
	switch style {
	case FastClick:
		err = e.fastClick(ctx, e.jitter(p, FastOffset), b)
	default:
		err = e.humanClick(ctx, e.jitter(p, HumanOffset), b)
	}
	if err != nil {
		return err
	}
	e.logger.Debug("🖱️ Клик (%s) %s в (%d, %d)", style, b, p.X, p.Y)
	return nil
}

func (e *Executor) jitter(p image.Point, max int) image.Point {
	return image.Pt(p.X+e.rng.IntBetween(-max, max), p.Y+e.rng.IntBetween(-max, max))
}

func (e *Executor) humanClick(ctx context.Context, target image.Point, b input.Button) error {
	x, y, err := e.device.CursorPos()
	if err != nil {
		return fmt.Errorf("положение курсора: %w", err)
	}
	for _, pt := range GlidePath(image.Pt(x, y), target, e.rng.IntBetween(GlideStepsMin, GlideStepsMax)) {
		if err := e.device.MoveMouse(pt.X, pt.Y); err != nil {
			return fmt.Errorf("перемещение курсора: %w", err)
		}
		if err := e.sleep(ctx, e.rng.Duration(GlideStepDelay)); err != nil {
			return err
		}
	}
	if err := e.sleep(ctx, e.rng.Duration(SettleDelay)); err != nil {
		return err
	}
	if err := e.press(ctx, b, e.rng.Duration(HumanPress)); err != nil {
		return err
	}
	return e.sleep(ctx, e.rng.Duration(ReleaseDelay))
}

func (e *Executor) fastClick(ctx context.Context, target image.Point, b input.Button) error {
	if err := e.device.MoveMouse(target.X, target.Y); err != nil {
		return fmt.Errorf("перемещение курсора: %w", err)
	}
	if err := e.sleep(ctx, FastMoveDelay); err != nil {
		return err
	}
	return e.press(ctx, b, FastPress)
}

func (e *Executor) press(ctx context.Context, b input.Button, d time.Duration) error {
	if err := e.device.MouseDown(b); err != nil {
		return fmt.Errorf("нажатие %s: %w", b, err)
	}
	waitErr := e.sleep(ctx, d)
	if err := e.device.MouseUp(b); err != nil {
		return multierr.Append(waitErr, fmt.Errorf("отпускание %s: %w", b, err))
	}
	return waitErr
}

// GlidePath промежуточные точки от from к to, последняя совпадает с to
func GlidePath(from, to image.Point, steps int) []image.Point {
	if steps < 1 {
		steps = 1
	}
	path := make([]image.Point, steps)
	for i := 1; i <= steps; i++ {
		path[i-1] = image.Pt(
			from.X+(to.X-from.X)*i/steps,
			from.Y+(to.Y-from.Y)*i/steps,
		)
	}
	return path
}
