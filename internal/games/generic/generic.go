// Package generic набор команд для любой игры с геймпадом, в том числе GTA V.
package generic

import (
	"context"
	"time"

	"gamepilot/internal/commands"
	"gamepilot/internal/games"
	"gamepilot/internal/input"
)

const (
	Walk = 16383
	Run  = input.AxisMax

	WalkFor = time.Second
	LookFor = 500 * time.Millisecond
	JumpFor = 100 * time.Millisecond

	// JumpKey кнопка A геймпада в раскладке клавиатуры
	JumpKey = "space"
)

func stick(env *games.Env, s input.Stick, x, y int, d time.Duration) commands.Func {
	return func(ctx context.Context) error {
		return env.Input.Stick(ctx, s, x, y, d)
	}
}

// Build собирает набор generic
func Build(env *games.Env) commands.Binding {
	movement := commands.Set{}.
		Add("walk forward", commands.Movement, stick(env, input.LeftStick, 0, Walk, WalkFor)).
		Add("walk backward", commands.Movement, stick(env, input.LeftStick, 0, -Walk, WalkFor)).
		Add("walk left", commands.Movement, stick(env, input.LeftStick, -Walk, 0, WalkFor)).
		Add("walk right", commands.Movement, stick(env, input.LeftStick, Walk, 0, WalkFor)).
		Add("run forward", commands.Movement, stick(env, input.LeftStick, 0, Run, WalkFor)).
		Add("jump", commands.Movement, func(ctx context.Context) error {
			return env.Input.Hold(ctx, JumpKey, JumpFor)
		})

	camera := commands.Set{}.
		Add("look left", commands.Camera, stick(env, input.RightStick, -Walk, 0, LookFor)).
		Add("look right", commands.Camera, stick(env, input.RightStick, Walk, 0, LookFor)).
		Add("look up", commands.Camera, stick(env, input.RightStick, 0, Walk, LookFor)).
		Add("look down", commands.Camera, stick(env, input.RightStick, 0, -Walk, LookFor))

	utility := commands.Set{}.
		AddDetached("stop", commands.Utility, func(ctx context.Context) error {
			if err := env.StopLoops(ctx); err != nil {
				return err
			}
			return env.Input.Neutral()
		})

	return commands.Binding{
		Game:    commands.Generic,
		Actions: commands.Merge(movement, camera, utility),
	}
}
