// Package robot реализует input.Device через robotgo.
package robot

import (
	"github.com/go-vgo/robotgo"

	"gamepilot/internal/input"
)

var keyAliases = map[string]string{
	"escape": "esc",
	"return": "enter",
	"lshift": "shift",
	"lctrl":  "ctrl",
	"lalt":   "alt",
}

// Device эмуляция ввода на уровне ОС
type Device struct {
	sticks *input.StickEmulator
}

// New создает новый экземпляр Device
func New() *Device {
	d := &Device{}
	d.sticks = input.NewStickEmulator(d, nil)
	return d
}

func keyName(key string) string {
	if alias, ok := keyAliases[key]; ok {
		return alias
	}
	return key
}

func (d *Device) KeyDown(key string) error {
	return robotgo.KeyDown(keyName(key))
}

func (d *Device) KeyUp(key string) error {
	return robotgo.KeyUp(keyName(key))
}

func (d *Device) MouseDown(b input.Button) error {
	return robotgo.Toggle(string(b))
}

func (d *Device) MouseUp(b input.Button) error {
	return robotgo.Toggle(string(b), "up")
}

func (d *Device) MoveMouse(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func (d *Device) CursorPos() (int, int, error) {
	x, y := robotgo.Location()
	return x, y, nil
}

// SetStick стики эмулируются клавишами WASD и стрелками
func (d *Device) SetStick(s input.Stick, x, y int) error {
	return d.sticks.SetStick(s, x, y)
}

// Close возвращает оба стика в нейтраль
func (d *Device) Close() error {
	if err := d.sticks.SetStick(input.LeftStick, 0, 0); err != nil {
		return err
	}
	return d.sticks.SetStick(input.RightStick, 0, 0)
}
