//go:build windows

package window

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procEnumWindows              = user32.NewProc("EnumWindows")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
	procGetWindowTextLengthW     = user32.NewProc("GetWindowTextLengthW")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procIsWindow                 = user32.NewProc("IsWindow")
	procIsIconic                 = user32.NewProc("IsIconic")
	procShowWindow               = user32.NewProc("ShowWindow")
	procSetForegroundWindow      = user32.NewProc("SetForegroundWindow")
	procBringWindowToTop         = user32.NewProc("BringWindowToTop")
	procSetActiveWindow          = user32.NewProc("SetActiveWindow")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procAttachThreadInput        = user32.NewProc("AttachThreadInput")
	procGetWindowRect            = user32.NewProc("GetWindowRect")
	procSetCursorPos             = user32.NewProc("SetCursorPos")
	procMouseEvent               = user32.NewProc("mouse_event")
)

const (
	swRestore           = 9
	mouseEventLeftDown  = 0x0002
	mouseEventLeftUp    = 0x0004
	clickPressDuration  = 50 * time.Millisecond
	clickMoveSettleTime = 100 * time.Millisecond
)

type winRect struct {
	Left, Top, Right, Bottom int32
}

// EnumWindows вызывает один и тот же callback, поэтому список собирается под мьютексом
var (
	enumMu       sync.Mutex
	enumResult   []Info
	enumCallback = syscall.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		if visible, _, _ := procIsWindowVisible.Call(hwnd); visible == 0 {
			return 1
		}
		if title := windowText(hwnd); title != "" {
			enumResult = append(enumResult, Info{ID: hwnd, Title: title})
		}
		return 1
	})
)

type win32Platform struct{}

// NewPlatform возвращает реализацию Platform поверх user32.dll
func NewPlatform() Platform {
	return win32Platform{}
}

func (win32Platform) Windows() ([]Info, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumResult = nil
	r, _, err := procEnumWindows.Call(enumCallback, 0)
	if r == 0 {
		return nil, fmt.Errorf("EnumWindows: %v", err)
	}
	out := make([]Info, len(enumResult))
	copy(out, enumResult)
	return out, nil
}

func (win32Platform) IsWindow(id uintptr) bool {
	r, _, _ := procIsWindow.Call(id)
	return r != 0
}

func (win32Platform) IsIconic(id uintptr) bool {
	r, _, _ := procIsIconic.Call(id)
	return r != 0
}

func (win32Platform) Restore(id uintptr) error {
	procShowWindow.Call(id, swRestore)
	return nil
}

func (win32Platform) SetForeground(id uintptr) error {
	if r, _, err := procSetForegroundWindow.Call(id); r == 0 {
		return fmt.Errorf("SetForegroundWindow: %v", err)
	}
	return nil
}

func (win32Platform) BringToTop(id uintptr) error {
	if r, _, err := procBringWindowToTop.Call(id); r == 0 {
		return fmt.Errorf("BringWindowToTop: %v", err)
	}
	return nil
}

// ForceForeground присоединяет ввод текущего потока к потоку окна игры
func (p win32Platform) ForceForeground(id uintptr) error {
	current := windows.GetCurrentThreadId()
	target, _, _ := procGetWindowThreadProcessId.Call(id, 0)
	if target == 0 {
		return errors.New("GetWindowThreadProcessId вернул 0")
	}

	attached := uint32(target) != current
	if attached {
		procAttachThreadInput.Call(uintptr(current), target, 1)
		defer procAttachThreadInput.Call(uintptr(current), target, 0)
	}

	procSetForegroundWindow.Call(id)
	procSetActiveWindow.Call(id)
	procBringWindowToTop.Call(id)
	return nil
}

func (win32Platform) Foreground() uintptr {
	r, _, _ := procGetForegroundWindow.Call()
	return r
}

func (win32Platform) Rect(id uintptr) (image.Rectangle, error) {
	var r winRect
	if ok, _, err := procGetWindowRect.Call(id, uintptr(unsafe.Pointer(&r))); ok == 0 {
		return image.Rectangle{}, fmt.Errorf("GetWindowRect: %v", err)
	}
	return image.Rect(int(r.Left), int(r.Top), int(r.Right), int(r.Bottom)), nil
}

func (win32Platform) ClickAt(x, y int) error {
	if r, _, err := procSetCursorPos.Call(uintptr(x), uintptr(y)); r == 0 {
		return fmt.Errorf("SetCursorPos: %v", err)
	}
	time.Sleep(clickMoveSettleTime)
	procMouseEvent.Call(mouseEventLeftDown, uintptr(x), uintptr(y), 0, 0)
	time.Sleep(clickPressDuration)
	procMouseEvent.Call(mouseEventLeftUp, uintptr(x), uintptr(y), 0, 0)
	return nil
}

func windowText(hwnd uintptr) string {
	n, _, _ := procGetWindowTextLengthW.Call(hwnd)
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf)
}
