package runescape

import (
	"context"
	"errors"
	"image"
	"time"

	"gamepilot/internal/commands"
	"gamepilot/internal/executor"
	"gamepilot/internal/loop"
	"gamepilot/internal/pipeline"
	"gamepilot/internal/screenshot"
	"gamepilot/internal/timing"
)

// Виды непрерывных сессий
const (
	KindHunt    = "hunt chickens"
	KindWoodcut = "auto woodcut"
	KindMine    = "auto mine"
)

// Параметры непрерывных сессий
const (
	HuntInterval    = 7 * time.Second
	HuntAttempts    = 2
	WoodcutAttempts = 2
	MaxFailures     = 5
	BreakChance     = 0.1
)

var (
	ChopTime    = timing.Range{Min: 4 * time.Second, Max: 8 * time.Second}
	FailWait    = timing.Range{Min: 2 * time.Second, Max: 4 * time.Second}
	RescanWait  = timing.Range{Min: 3 * time.Second, Max: 5 * time.Second}
	BreakTime   = timing.Range{Min: time.Second, Max: 3 * time.Second}
	DropWait    = timing.Range{Min: time.Second, Max: 2 * time.Second}
	MinedWait   = timing.Range{Min: 8 * time.Second, Max: 15 * time.Second}
	NoRockWait  = timing.Range{Min: 3 * time.Second, Max: 5 * time.Second}
	NoFrameWait = 100 * time.Millisecond
)

// WoodcutRotation породы, которые перебирает "auto woodcut"
var WoodcutRotation = []string{"tree", "oak tree", "willow tree"}

// pan поворот камеры стрелкой
type pan struct {
	key string
	d   time.Duration
}

// cameraPans поворот на 90 градусов около 0.5с, на 45 около 0.25с
var cameraPans = []pan{
	{"right", 500 * time.Millisecond},
	{"left", 500 * time.Millisecond},
	{"up", 250 * time.Millisecond},
	{"down", 250 * time.Millisecond},
	{"right", 250 * time.Millisecond},
	{"left", 250 * time.Millisecond},
}

func (b *bot) start(kind string, cycle func() loop.Cycle) commands.Func {
	return func(context.Context) error {
		if err := b.env.Loops.Start(b.env.Base, kind, Game, cycle()); err != nil {
			return err
		}
		b.env.Logger.Info("🏹 %s запущен, stop или End для остановки", kind)
		return nil
	}
}

func (b *bot) startTimed(kind string, cycle func(time.Duration) loop.Cycle) commands.ParamFunc {
	return func(_ context.Context, minutes int) error {
		d := time.Duration(minutes) * time.Minute
		if err := b.env.Loops.Start(b.env.Base, kind, Game, cycle(d)); err != nil {
			return err
		}
		b.env.Logger.Info("⏱️ %s на %v", kind, d)
		return nil
	}
}

// soft true для ошибок, после которых сессия продолжается.
// Исчерпанный фокус или пропавшее окно завершают сессию.
func soft(err error) bool {
	if executor.FocusLost(err) {
		return false
	}
	return errors.Is(err, pipeline.ErrNothingFound) ||
		errors.Is(err, screenshot.ErrNoFrame) ||
		errors.Is(err, executor.ErrNotFocused)
}

// expired true, если время сессии вышло
func (b *bot) expired(s *loop.Session, d time.Duration) bool {
	return b.now().Sub(s.Stats().StartedAt) >= d
}

// proxy позиция ближайшей курицы как замена позиции персонажа, который всегда в центре
func (b *bot) proxy(ctx context.Context) (image.Point, bool) {
	scan, err := b.env.Scanner.Scan(ctx, ChickenThreshold)
	if err != nil {
		return image.Point{}, false
	}
	t, err := b.env.Scanner.Target(scan, "chicken")
	if err != nil {
		return loop.NoTargetProxy, true
	}
	return loop.Proxy(t.Screen), true
}

func (b *bot) huntCycle() loop.Cycle {
	return func(ctx context.Context, s *loop.Session) error {
		if p, ok := b.proxy(ctx); ok && s.Stuck.Observe(p) {
			b.env.Logger.Info("🔄 Персонаж застрял, поворачиваем камеру")
			if err := b.panCamera(ctx); err != nil && !soft(err) {
				return err
			}
		}

		err := b.attackChicken(ctx, HuntAttempts)
		switch {
		case err == nil:
			s.AddSuccess()
			st := s.Stats()
			b.env.Logger.Info("✅ Атака %d/%d", st.Successes, st.Cycles)
		case soft(err):
			b.env.Logger.Info("❌ В этом раунде кур нет: %s", pipeline.Describe(err))
		default:
			return err
		}
		return b.env.Wait(ctx, b.interval)
	}
}

func (b *bot) panCamera(ctx context.Context) error {
	p := cameraPans[b.env.Rand.IntBetween(0, len(cameraPans)-1)]
	b.env.Logger.Info("📹 Камера %s", p.key)
	return b.env.Input.Hold(ctx, p.key, p.d)
}

func (b *bot) woodcutCycle(d time.Duration) loop.Cycle {
	failures, index := 0, 0
	return func(ctx context.Context, s *loop.Session) error {
		if b.expired(s, d) {
			return loop.ErrFinished
		}

		full, err := b.checks.InventoryFull(ctx)
		if err != nil {
			return err
		}
		if full {
			b.env.Logger.Info("📦 Инвентарь полон, освобождаем место")
			if err := b.env.WaitRandom(ctx, DropWait); err != nil {
				return err
			}
		}

		species := WoodcutRotation[index%len(WoodcutRotation)]
		err = b.chop(ctx, species, WoodcutAttempts)
		switch {
		case err == nil:
			failures = 0
			index++
			s.AddSuccess()
			if err := b.env.WaitRandom(ctx, ChopTime); err != nil {
				return err
			}
		case soft(err):
			failures++
			b.env.Logger.Info("❌ Не удалось срубить %s (%d подряд)", species, failures)
			wait := FailWait
			if failures >= MaxFailures {
				b.env.Logger.Warn("🚨 Слишком много неудач, осматриваемся")
				b.scanArea(ctx, "tree")
				failures = 0
				wait = RescanWait
			}
			if err := b.env.WaitRandom(ctx, wait); err != nil {
				return err
			}
		default:
			return err
		}

		if b.env.Rand.Chance(BreakChance) {
			b.env.Logger.Info("😴 Короткий перерыв")
			return b.env.WaitRandom(ctx, BreakTime)
		}
		return nil
	}
}

func (b *bot) mineCycle(d time.Duration) loop.Cycle {
	return func(ctx context.Context, s *loop.Session) error {
		if b.expired(s, d) {
			return loop.ErrFinished
		}
		err := b.click(ctx, "rock", TargetThreshold)
		switch {
		case err == nil:
			s.AddSuccess()
			b.env.Logger.Info("⛏️ Добываем руду")
			if err := b.env.WaitRandom(ctx, MineWait); err != nil {
				return err
			}
			return b.env.WaitRandom(ctx, MinedWait)
		case errors.Is(err, screenshot.ErrNoFrame):
			return b.env.Wait(ctx, NoFrameWait)
		case soft(err):
			return b.env.WaitRandom(ctx, NoRockWait)
		}
		return err
	}
}
