package spiderman

import (
	"context"
	"errors"
	"image"
	"time"

	"gamepilot/internal/commands"
	"gamepilot/internal/detector"
	"gamepilot/internal/executor"
	"gamepilot/internal/games"
	"gamepilot/internal/loop"
	"gamepilot/internal/navigation"
	"gamepilot/internal/screenshot"
)

// Виды непрерывных сессий
const (
	KindAutoWalk   = "auto walk"
	KindPathFollow = "path follow"
	KindAutoSwing  = "auto swing"
)

// Пауза после пустого кадра и шаг кадров раскачки
const (
	RetryDelay = 100 * time.Millisecond
	SwingFrame = time.Second / 30
)

// Vision функции компьютерного зрения, которые нужны сценариям
type Vision interface {
	PathMaps(img image.Image) (edges, gray *image.Gray, err error)
	BuildingEdges(img image.Image) ([]detector.Detection, error)
}

type auto struct {
	env *games.Env
	vis Vision
}

func newAuto(env *games.Env, vis Vision) *auto {
	return &auto{env: env, vis: vis}
}

// start запускает фоновую сессию от базового контекста, а не от контекста команды
func (a *auto) start(kind string, factory func() loop.Cycle) commands.Func {
	return func(context.Context) error {
		if err := a.env.Loops.Start(a.env.Base, kind, Game, factory()); err != nil {
			return err
		}
		a.env.Logger.Info("🕷️ %s запущен, End или Esc для остановки", kind)
		return nil
	}
}

func (a *auto) stop(ctx context.Context) error {
	return a.env.StopLoops(ctx)
}

// skip true для ошибок, после которых цикл просто повторяется
func (a *auto) skip(ctx context.Context, err error) (bool, error) {
	if executor.FocusLost(err) {
		return false, err
	}
	if errors.Is(err, screenshot.ErrNoFrame) || errors.Is(err, executor.ErrNotFocused) {
		a.env.Logger.Debug("⏳ Пропуск цикла: %v", err)
		return true, a.env.Wait(ctx, RetryDelay)
	}
	return false, err
}

// walkCycle шаг вперед или обход препятствия
func (a *auto) walkCycle() loop.Cycle {
	cooldown := loop.NewCooldown(navigation.AvoidCooldown)
	return func(ctx context.Context, s *loop.Session) error {
		scan, err := a.env.Scanner.Scan(ctx, navigation.ObstacleConfidence)
		if err != nil {
			if ok, werr := a.skip(ctx, err); ok {
				return werr
			}
			return err
		}

		obstacles := navigation.Obstacles(scan.Detections)
		if len(obstacles) > 0 && cooldown.Ready() {
			d := navigation.Avoid(obstacles, scan.Frame.Size(), a.env.Rand)
			if d.Action != navigation.Forward {
				a.env.Logger.Info("🚧 %s: поворот %s (%d)", d.Reason, d.Action, d.Count)
				if err := a.avoid(ctx, d.Action); err != nil {
					_, err = a.skip(ctx, err)
					return err
				}
				cooldown.Mark()
				s.AddSuccess()
				return nil
			}
		}

		if err := a.env.Input.Hold(ctx, KeyForward, navigation.WalkStep); err != nil {
			_, err = a.skip(ctx, err)
			return err
		}
		s.AddSuccess()
		return a.env.Wait(ctx, navigation.WalkPause)
	}
}

func (a *auto) avoid(ctx context.Context, turn navigation.Turn) error {
	if err := a.env.Input.Hold(ctx, turnKey(turn == navigation.Left), navigation.AvoidTurn); err != nil {
		return err
	}
	return a.env.Input.Hold(ctx, KeyForward, navigation.AvoidForward)
}

// pathCycle шаг шагом по тропинке с подруливанием по краям
func (a *auto) pathCycle() loop.Cycle {
	cooldown := loop.NewCooldown(navigation.PathCooldown)
	return func(ctx context.Context, s *loop.Session) error {
		frame, err := a.env.Scanner.Capture(ctx)
		if err != nil {
			if ok, werr := a.skip(ctx, err); ok {
				return werr
			}
			return err
		}
		edges, gray, err := a.vis.PathMaps(frame.Image)
		if err != nil {
			a.env.Logger.Warn("⚠️ Карта тропинки: %v", err)
		}
		d := navigation.FollowPath(edges, gray)

		keys := []string{KeyWalk, KeyForward}
		hold := RetryDelay
		if d.Action != navigation.Forward && cooldown.Ready() {
			keys = append(keys, turnKey(d.Action == navigation.Left))
			hold = navigation.SteerDuration(d.Offset)
			a.env.Logger.Debug("🛤️ %s: %s на %v", d.Reason, d.Action, hold)
			cooldown.Mark()
		}
		if err := a.env.Input.Combo(ctx, keys, hold); err != nil {
			_, err = a.skip(ctx, err)
			return err
		}
		s.AddSuccess()
		return nil
	}
}

// SwingManeuver поворот с раскачкой: сторона и shift 1с, затем вперед 1с, shift отпускается последним
func SwingManeuver(turn navigation.Turn) []executor.Step {
	return []executor.Step{
		{Key: turnKey(turn == navigation.Left), At: 0, For: navigation.SwingTurn},
		{Key: KeySwing, At: 0, For: navigation.SwingTurn + navigation.SwingForward},
		{Key: KeyForward, At: navigation.SwingTurn, For: navigation.SwingForward},
	}
}

// swingCycle уклонение от зданий во время раскачки
func (a *auto) swingCycle() loop.Cycle {
	cooldown := loop.NewCooldown(navigation.SwingCooldown)
	last := navigation.Forward
	return func(ctx context.Context, s *loop.Session) error {
		scan, err := a.env.Scanner.Scan(ctx, navigation.BuildingConfidence)
		if err != nil {
			if ok, werr := a.skip(ctx, err); ok {
				return werr
			}
			return err
		}

		buildings := navigation.Buildings(scan.Detections)
		if extra, err := a.vis.BuildingEdges(scan.Frame.Image); err != nil {
			a.env.Logger.Warn("⚠️ Контуры зданий: %v", err)
		} else {
			buildings = append(buildings, extra...)
		}

		d := navigation.Swing(buildings, scan.Frame.Size(), last)
		if d.Action == navigation.Forward || !cooldown.Ready() {
			return a.env.Wait(ctx, SwingFrame)
		}

		a.env.Logger.Info("🏢 %s (%s, %d): раскачка %s", d.Reason, d.Proximity, d.Count, d.Action)
		if err := a.env.Input.Sequence(ctx, SwingManeuver(d.Action)); err != nil {
			_, err = a.skip(ctx, err)
			return err
		}
		last = d.Action
		cooldown.Mark()
		s.AddSuccess()
		return nil
	}
}
