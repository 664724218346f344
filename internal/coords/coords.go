// Package coords переводит координаты кадра в координаты экрана.
package coords

import "image"

// Offset рамка окна: левая граница, заголовок и суммарная обрезка по осям
type Offset struct {
	Left         int
	Top          int
	BorderWidth  int
	BorderHeight int
}

// DefaultOffset рамка стандартного окна Windows
var DefaultOffset = Offset{Left: 8, Top: 31, BorderWidth: 16, BorderHeight: 39}

// Mapper переводит точки кадра в координаты устройства ввода
type Mapper struct {
	offset Offset
}

// NewMapper создает новый экземпляр Mapper
func NewMapper(offset Offset) Mapper {
	return Mapper{offset: offset}
}

// Offset возвращает рамку окна
func (m Mapper) Offset() Offset {
	return m.offset
}

// ClientRect клиентская область окна по внешнему прямоугольнику
func (m Mapper) ClientRect(outer image.Rectangle) image.Rectangle {
	x := outer.Min.X + m.offset.Left
	y := outer.Min.Y + m.offset.Top
	w := outer.Dx() - m.offset.BorderWidth
	h := outer.Dy() - m.offset.BorderHeight
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return image.Rect(x, y, x+w, y+h)
}

// ToDevice переводит точку кадра в экранные координаты
func (m Mapper) ToDevice(p image.Point, outer image.Rectangle) image.Point {
	return image.Point{
		X: outer.Min.X + m.offset.Left + p.X,
		Y: outer.Min.Y + m.offset.Top + p.Y,
	}
}

// ToLocal обратное преобразование из экранных координат в координаты кадра
func (m Mapper) ToLocal(p image.Point, outer image.Rectangle) image.Point {
	return image.Point{
		X: p.X - outer.Min.X - m.offset.Left,
		Y: p.Y - outer.Min.Y - m.offset.Top,
	}
}
