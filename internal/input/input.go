// Package input описывает устройство ввода, через которое бот жмет клавиши и двигает мышь.
package input

// Button кнопка мыши
type Button string

const (
	ButtonLeft  Button = "left"
	ButtonRight Button = "right"
)

// Stick аналоговый стик геймпада
type Stick string

const (
	LeftStick  Stick = "left"
	RightStick Stick = "right"
)

// AxisMax предельное значение оси стика
const AxisMax = 32767

// Device устройство ввода
type Device interface {
	KeyDown(key string) error
	KeyUp(key string) error
	MouseDown(b Button) error
	MouseUp(b Button) error
	MoveMouse(x, y int) error
	CursorPos() (x, y int, err error)
	SetStick(s Stick, x, y int) error
	Close() error
}

// MouseButtonForKey сопоставляет псевдоклавиши left_click/right_click кнопкам мыши
func MouseButtonForKey(key string) (Button, bool) {
	switch key {
	case "left_click", "lmb":
		return ButtonLeft, true
	case "right_click", "rmb":
		return ButtonRight, true
	}
	return "", false
}
