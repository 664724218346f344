package input

import "sync"

// StickKeys клавиши, которыми эмулируется стик
type StickKeys struct {
	Up, Down, Left, Right string
}

// DefaultStickKeys WASD для левого стика и стрелки для правого
var DefaultStickKeys = map[Stick]StickKeys{
	LeftStick:  {Up: "w", Down: "s", Left: "a", Right: "d"},
	RightStick: {Up: "up", Down: "down", Left: "left", Right: "right"},
}

// deadzone значения оси, ниже которых клавиша не нажимается
const deadzone = AxisMax / 4

// KeyPresser минимальный набор для эмуляции стика клавишами
type KeyPresser interface {
	KeyDown(key string) error
	KeyUp(key string) error
}

// StickEmulator переводит положение стика в удерживаемые клавиши
type StickEmulator struct {
	mu    sync.Mutex
	keys  map[Stick]StickKeys
	held  map[Stick]map[string]bool
	press KeyPresser
}

// NewStickEmulator создает новый экземпляр StickEmulator
func NewStickEmulator(press KeyPresser, keys map[Stick]StickKeys) *StickEmulator {
	if keys == nil {
		keys = DefaultStickKeys
	}
	return &StickEmulator{keys: keys, held: make(map[Stick]map[string]bool), press: press}
}

// KeysFor клавиши, соответствующие положению стика; y > 0 означает вперед
func KeysFor(k StickKeys, x, y int) []string {
	var out []string
	switch {
	case y > deadzone:
		out = append(out, k.Up)
	case y < -deadzone:
		out = append(out, k.Down)
	}
	switch {
	case x > deadzone:
		out = append(out, k.Right)
	case x < -deadzone:
		out = append(out, k.Left)
	}
	return out
}

// SetStick отпускает лишние клавиши и нажимает недостающие
func (e *StickEmulator) SetStick(s Stick, x, y int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	want := make(map[string]bool)
	for _, k := range KeysFor(e.keys[s], x, y) {
		want[k] = true
	}
	held := e.held[s]
	if held == nil {
		held = make(map[string]bool)
		e.held[s] = held
	}

	for k := range held {
		if !want[k] {
			if err := e.press.KeyUp(k); err != nil {
				return err
			}
			delete(held, k)
		}
	}
	for k := range want {
		if !held[k] {
			if err := e.press.KeyDown(k); err != nil {
				return err
			}
			held[k] = true
		}
	}
	return nil
}
