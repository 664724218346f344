//go:build !windows

package interrupt

import (
	hook "github.com/robotn/gohook"
)

// monitorHotkeys мониторит горячие клавиши через gohook
func (im *InterruptManager) monitorHotkeys() error {
	codes := make(map[uint16]string, len(im.keys))
	for name := range im.keys {
		if code, ok := hook.Keycode[name]; ok {
			codes[code] = name
		}
	}

	evChan := hook.Start()
	defer hook.End()

	for ev := range evChan {
		if ev.Kind != hook.KeyDown {
			continue
		}
		if name, ok := codes[ev.Keycode]; ok {
			im.handleKey(name)
		}
	}
	return nil
}
