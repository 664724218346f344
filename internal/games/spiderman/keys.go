package spiderman

// Раскладка клавиатуры Spider-Man: Miles Morales для ПК
const (
	KeyForward  = "w"
	KeyBackward = "s"
	KeyLeft     = "a"
	KeyRight    = "d"
	KeyJump     = "space"
	KeySwing    = "shift"
	KeyZip      = "c"
	KeyPerch    = "x"
	KeyAirTrick = "t"
	KeyWalk     = "alt"

	KeyAttack     = "left_click"
	KeyWebStrike  = "f"
	KeyDodge      = "ctrl"
	KeyYank       = "q"
	KeyAim        = "right_click"
	KeyCamouflage = "r"
	KeyFinisher   = "2"
	KeyHeal       = "1"
	KeyGadget     = "e"
	KeyMap        = "tab"
	KeyShortcut1  = "p"
	KeyShortcut2  = "g"

	KeyCameraLeft  = "left"
	KeyCameraRight = "right"
	KeyCameraUp    = "up"
	KeyCameraDown  = "down"
)

// turnKey клавиша поворота для решения навигации
func turnKey(left bool) string {
	if left {
		return KeyLeft
	}
	return KeyRight
}
