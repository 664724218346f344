//go:build windows

package interrupt

import (
	"github.com/moutend/go-hook/pkg/keyboard"
	"github.com/moutend/go-hook/pkg/types"
)

var vkNames = map[types.VKCode]string{
	types.VK_END:    "end",
	types.VK_ESCAPE: "esc",
	types.VK_PAUSE:  "pause",
	types.VK_F12:    "f12",
}

// monitorHotkeys мониторит горячие клавиши через низкоуровневый хук клавиатуры
func (im *InterruptManager) monitorHotkeys() error {
	eventChan := make(chan types.KeyboardEvent, 100)
	if err := keyboard.Install(nil, eventChan); err != nil {
		return err
	}
	defer keyboard.Uninstall()

	for event := range eventChan {
		if event.Message != types.WM_KEYDOWN {
			continue
		}
		if name, ok := vkNames[event.VKCode]; ok {
			im.handleKey(name)
		}
	}
	return nil
}
