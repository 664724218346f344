//go:build !windows

package window

import (
	"errors"
	"image"
)

var errUnsupported = errors.New("управление окнами поддерживается только в Windows")

type unsupportedPlatform struct{}

// NewPlatform на других ОС окна не перечисляются
func NewPlatform() Platform {
	return unsupportedPlatform{}
}

func (unsupportedPlatform) Windows() ([]Info, error)      { return nil, errUnsupported }
func (unsupportedPlatform) IsWindow(uintptr) bool         { return false }
func (unsupportedPlatform) IsIconic(uintptr) bool         { return false }
func (unsupportedPlatform) Restore(uintptr) error         { return errUnsupported }
func (unsupportedPlatform) SetForeground(uintptr) error   { return errUnsupported }
func (unsupportedPlatform) BringToTop(uintptr) error      { return errUnsupported }
func (unsupportedPlatform) ForceForeground(uintptr) error { return errUnsupported }
func (unsupportedPlatform) Foreground() uintptr           { return 0 }
func (unsupportedPlatform) Rect(uintptr) (image.Rectangle, error) {
	return image.Rectangle{}, errUnsupported
}
func (unsupportedPlatform) ClickAt(int, int) error { return errUnsupported }
