package window

import (
	"image"
	"time"
)

type focusStrategy struct {
	name     string
	settle   time.Duration
	attempts func(h Handle) []func() error
}

func (m *Manager) strategies() []focusStrategy {
	return []focusStrategy{
		{
			name:   "restore+foreground",
			settle: 100 * time.Millisecond,
			attempts: func(h Handle) []func() error {
				return []func() error{func() error {
					if m.platform.IsIconic(h.ID) {
						if err := m.platform.Restore(h.ID); err != nil {
							return err
						}
					}
					if err := m.platform.SetForeground(h.ID); err != nil {
						return err
					}
					return m.platform.BringToTop(h.ID)
				}}
			},
		},
		{
			name:   "attach-thread-input",
			settle: 200 * time.Millisecond,
			attempts: func(h Handle) []func() error {
				return []func() error{func() error {
					return m.platform.ForceForeground(h.ID)
				}}
			},
		},
		{
			name:   "click-to-focus",
			settle: 300 * time.Millisecond,
			attempts: func(h Handle) []func() error {
				rect, err := m.platform.Rect(h.ID)
				if err != nil {
					rect = h.Rect
				}
				var out []func() error
				for _, p := range clickPoints(rect) {
					p := p
					out = append(out, func() error { return m.platform.ClickAt(p.X, p.Y) })
				}
				return out
			},
		},
	}
}

// clickPoints центр окна, затем точки верхней левой и верхней правой четверти
func clickPoints(r image.Rectangle) []image.Point {
	w, h := r.Dx(), r.Dy()
	return []image.Point{
		{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2},
		{X: r.Min.X + w/4, Y: r.Min.Y + h/4},
		{X: r.Min.X + 3*w/4, Y: r.Min.Y + h/4},
	}
}
