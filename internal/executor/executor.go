// Package executor превращает команды и цели в отсчитанные по времени
// нажатия клавиш, клики и движения стиков.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"gamepilot/internal/input"
	"gamepilot/internal/logger"
	"gamepilot/internal/timing"
	"gamepilot/internal/window"
)

// ErrNotFocused действие не выполнено, окно игры не в фокусе
var ErrNotFocused = errors.New("окно игры не в фокусе, действие не выполнено")

// TapDuration длительность обычного нажатия
const TapDuration = 100 * time.Millisecond

// Человеческие задержки вокруг ввода
var (
	HumanDelay   = timing.Range{Min: 50 * time.Millisecond, Max: 150 * time.Millisecond}
	ReleaseDelay = timing.Range{Min: 100 * time.Millisecond, Max: 200 * time.Millisecond}
)

// Focuser проверяет фокус окна перед каждым действием
type Focuser interface {
	EnsureFocused(ctx context.Context) error
}

// Executor выполняет действия на устройстве ввода
type Executor struct {
	device input.Device
	focus  Focuser
	logger *logger.LoggerManager
	rng    *timing.Rand
	sleep  timing.Sleeper
}

// NewExecutor создает новый экземпляр Executor
func NewExecutor(device input.Device, focus Focuser, loggerManager *logger.LoggerManager, rng *timing.Rand) *Executor {
	return &Executor{
		device: device,
		focus:  focus,
		logger: loggerManager,
		rng:    rng,
		sleep:  timing.Sleep,
	}
}

// Device устройство, через которое идет ввод
func (e *Executor) Device() input.Device {
	return e.device
}

func (e *Executor) ensureFocused(ctx context.Context) error {
	if e.focus == nil {
		return nil
	}
	if err := e.focus.EnsureFocused(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %w", ErrNotFocused, err)
	}
	return nil
}

// FocusLost true, если все стратегии фокусировки исчерпаны или окно игры пропало.
// После такой ошибки команда и непрерывная сессия завершаются.
func FocusLost(err error) bool {
	return errors.Is(err, window.ErrFocusFailed) || errors.Is(err, window.ErrNotFound)
}

func (e *Executor) down(key string) error {
	if b, ok := input.MouseButtonForKey(key); ok {
		return e.device.MouseDown(b)
	}
	return e.device.KeyDown(key)
}

func (e *Executor) up(key string) error {
	if b, ok := input.MouseButtonForKey(key); ok {
		return e.device.MouseUp(b)
	}
	return e.device.KeyUp(key)
}

// holdKey держит клавишу d. Клавиша отпускается даже при отмене контекста.
func (e *Executor) holdKey(ctx context.Context, key string, d time.Duration) error {
	if err := e.down(key); err != nil {
		return fmt.Errorf("нажатие %s: %w", key, err)
	}
	waitErr := e.sleep(ctx, d)
	if err := e.up(key); err != nil {
		return multierr.Append(waitErr, fmt.Errorf("отпускание %s: %w", key, err))
	}
	return waitErr
}

// Press короткое нажатие клавиши
func (e *Executor) Press(ctx context.Context, key string) error {
	return e.Hold(ctx, key, TapDuration)
}

// Hold удерживает клавишу заданное время
func (e *Executor) Hold(ctx context.Context, key string, d time.Duration) error {
	if err := e.ensureFocused(ctx); err != nil {
		return err
	}
	if err := e.sleep(ctx, e.rng.Duration(HumanDelay)); err != nil {
		return err
	}
	if err := e.holdKey(ctx, key, d); err != nil {
		return err
	}
	e.logger.Debug("⌨️ %s %.1fs", key, d.Seconds())
	return e.sleep(ctx, e.rng.Duration(ReleaseDelay))
}

// Stick отклоняет стик, держит d и возвращает его в нейтраль
func (e *Executor) Stick(ctx context.Context, s input.Stick, x, y int, d time.Duration) error {
	if err := e.ensureFocused(ctx); err != nil {
		return err
	}
	if err := e.sleep(ctx, e.rng.Duration(HumanDelay)); err != nil {
		return err
	}
	if err := e.device.SetStick(s, x, y); err != nil {
		return fmt.Errorf("стик %s: %w", s, err)
	}
	waitErr := e.sleep(ctx, d)
	if err := e.device.SetStick(s, 0, 0); err != nil {
		return multierr.Append(waitErr, fmt.Errorf("нейтраль стика %s: %w", s, err))
	}
	if waitErr != nil {
		return waitErr
	}
	e.logger.Debug("🕹️ %s стик (%d, %d) %.1fs", s, x, y, d.Seconds())
	return e.sleep(ctx, e.rng.Duration(ReleaseDelay))
}

// Neutral сбрасывает оба стика
func (e *Executor) Neutral() error {
	return multierr.Combine(
		e.device.SetStick(input.LeftStick, 0, 0),
		e.device.SetStick(input.RightStick, 0, 0),
	)
}
