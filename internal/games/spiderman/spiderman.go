// Package spiderman набор команд Spider-Man: Miles Morales.
package spiderman

import (
	"context"
	"time"

	"gamepilot/internal/commands"
	"gamepilot/internal/executor"
	"gamepilot/internal/games"
)

// Game идентификатор набора
const Game = "spiderman"

// Длительности удержаний
const (
	WalkFor   = 3 * time.Second
	JogFor    = time.Second
	LookFor   = 500 * time.Millisecond
	HoldFor   = time.Second
	SelectFor = 500 * time.Millisecond
)

// SuperJump разгон, спринт с зарядкой прыжка и отпускание прыжка за 0.5с до конца спринта
var SuperJump = []executor.Step{
	{Key: KeyForward, At: 0, For: 3500 * time.Millisecond},
	{Key: KeySwing, At: 1500 * time.Millisecond, For: 2 * time.Second},
	{Key: KeyJump, At: 1500 * time.Millisecond, For: 1500 * time.Millisecond},
}

// WebSwingCombo спринт вперед 10с, прыжок на первой секунде и сброс раскачки на пятой
var WebSwingCombo = []executor.Step{
	{Key: KeyForward, At: 0, For: 10 * time.Second},
	{Key: KeySwing, At: 0, For: 5 * time.Second},
	{Key: KeyJump, At: time.Second, For: time.Second},
	{Key: KeySwing, At: 7 * time.Second, For: 3 * time.Second},
}

type binder struct {
	env *games.Env
}

func (b binder) press(key string) commands.Func {
	return func(ctx context.Context) error { return b.env.Input.Press(ctx, key) }
}

func (b binder) hold(key string, d time.Duration) commands.Func {
	return func(ctx context.Context) error { return b.env.Input.Hold(ctx, key, d) }
}

func (b binder) combo(d time.Duration, keys ...string) commands.Func {
	return func(ctx context.Context) error { return b.env.Input.Combo(ctx, keys, d) }
}

func (b binder) sequence(name string, steps []executor.Step) commands.Func {
	return func(ctx context.Context) error {
		b.env.Logger.Info("🕸️ %s (%v)", name, executor.SequenceDuration(steps))
		return b.env.Input.Sequence(ctx, steps)
	}
}

// Build собирает набор spiderman. vis нужен сценариям auto swing и path follow.
func Build(env *games.Env, vis Vision) commands.Binding {
	b := binder{env: env}
	a := newAuto(env, vis)

	movement := commands.Set{}.
		Add("walk forward", commands.Movement, b.combo(WalkFor, KeyWalk, KeyForward)).
		Add("walk backward", commands.Movement, b.combo(WalkFor, KeyWalk, KeyBackward)).
		Add("walk left", commands.Movement, b.combo(WalkFor, KeyWalk, KeyLeft)).
		Add("walk right", commands.Movement, b.combo(WalkFor, KeyWalk, KeyRight)).
		Add("run forward", commands.Movement, b.hold(KeyForward, JogFor)).
		Add("jog forward", commands.Movement, b.hold(KeyForward, JogFor)).
		Add("jog backward", commands.Movement, b.hold(KeyBackward, JogFor)).
		Add("jog left", commands.Movement, b.hold(KeyLeft, JogFor)).
		Add("jog right", commands.Movement, b.hold(KeyRight, JogFor)).
		Add("sprint", commands.Movement, b.hold(KeySwing, HoldFor))

	camera := commands.Set{}.
		Add("look left", commands.Camera, b.hold(KeyCameraLeft, LookFor)).
		Add("look right", commands.Camera, b.hold(KeyCameraRight, LookFor)).
		Add("look up", commands.Camera, b.hold(KeyCameraUp, LookFor)).
		Add("look down", commands.Camera, b.hold(KeyCameraDown, LookFor))

	combat := commands.Set{}.
		Add("jump", commands.Combat, b.press(KeyJump)).
		Add("attack", commands.Combat, b.press(KeyAttack)).
		Add("dodge", commands.Combat, b.press(KeyDodge)).
		Add("web strike", commands.Combat, b.press(KeyWebStrike)).
		Add("swing", commands.Combat, b.hold(KeySwing, HoldFor)).
		Add("aim", commands.Combat, b.hold(KeyAim, HoldFor)).
		Add("shoot gadget", commands.Combat, b.press(KeyGadget)).
		Add("gadget select", commands.Combat, b.hold(KeyGadget, SelectFor)).
		Add("venom", commands.Combat, b.press(KeyAim)).
		Add("camouflage", commands.Combat, b.press(KeyCamouflage)).
		Add("heal", commands.Combat, b.press(KeyHeal)).
		Add("shortcut 1", commands.Combat, b.press(KeyShortcut1)).
		Add("shortcut 2", commands.Combat, b.press(KeyShortcut2)).
		Add("scan", commands.Combat, b.press(KeyMap)).
		Add("perch", commands.Combat, b.press(KeyPerch)).
		Add("dive", commands.Combat, b.press(KeyPerch))

	special := commands.Set{}.
		Add("zip to point", commands.Special, b.hold(KeyZip, HoldFor)).
		Add("venom jump", commands.Special, b.combo(executor.TapDuration, KeyAim, KeyJump)).
		Add("venom punch", commands.Special, b.combo(executor.TapDuration, KeyAim, KeyAttack)).
		Add("venom dash", commands.Special, b.combo(executor.TapDuration, KeyAim, KeyDodge)).
		Add("venom smash", commands.Special, b.combo(executor.TapDuration, KeyAim, KeyWebStrike)).
		Add("mega venom blast", commands.Special, b.combo(executor.TapDuration, KeyAim, KeyAttack, KeyJump)).
		Add("finisher", commands.Special, b.press(KeyFinisher))

	additional := commands.Set{}.
		Add("scan environment", commands.Utility, b.press(KeyMap)).
		Add("web yank", commands.Utility, b.hold(KeyYank, HoldFor)).
		Add("trick mode", commands.Utility, b.press(KeyAirTrick)).
		AddDetached("stop", commands.Utility, a.stop)

	scenarios := commands.Set{}.
		Add("super jump", commands.Scenario, b.sequence("Супер прыжок", SuperJump)).
		Add("web swing combo", commands.Scenario, b.sequence("Комбо раскачки", WebSwingCombo)).
		Add("auto walk", commands.Scenario, a.start(KindAutoWalk, a.walkCycle)).
		AddDetached("stop auto walk", commands.Scenario, a.stop).
		Add("path follow", commands.Scenario, a.start(KindPathFollow, a.pathCycle)).
		AddDetached("stop path follow", commands.Scenario, a.stop).
		Add("auto swing", commands.Scenario, a.start(KindAutoSwing, a.swingCycle)).
		AddDetached("stop auto swing", commands.Scenario, a.stop)

	return commands.Binding{
		Game:    Game,
		Actions: commands.Merge(movement, camera, combat, special, additional, scenarios),
	}
}
