package screenshot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/kbinani/screenshot"

	"gamepilot/internal/coords"
	"gamepilot/internal/logger"
	"gamepilot/internal/timing"
	"gamepilot/internal/window"
)

var ErrNoFrame = errors.New("не удалось получить кадр окна")

// Frame неизменяемый снимок клиентской области окна
type Frame struct {
	Image      *image.RGBA
	Window     window.Handle
	Client     image.Rectangle
	CapturedAt time.Time
}

// Size ширина и высота кадра
func (f *Frame) Size() image.Point {
	return f.Image.Bounds().Size()
}

// Center центр кадра в локальных координатах
func (f *Frame) Center() image.Point {
	s := f.Size()
	return image.Point{X: s.X / 2, Y: s.Y / 2}
}

// Geometry источник актуального прямоугольника окна
type Geometry interface {
	Geometry(h window.Handle) (image.Rectangle, error)
}

// CaptureFunc снимает прямоугольник экрана
type CaptureFunc func(bounds image.Rectangle) (*image.RGBA, error)

// FrameSource делает снимки клиентской области окна игры
type FrameSource struct {
	geometry Geometry
	mapper   coords.Mapper
	capture  CaptureFunc
	logger   *logger.LoggerManager
	rng      *timing.Rand
	sleep    timing.Sleeper
	backoff  timing.Range
}

// NewFrameSource создает новый экземпляр FrameSource
func NewFrameSource(geometry Geometry, mapper coords.Mapper, loggerManager *logger.LoggerManager) *FrameSource {
	return &FrameSource{
		geometry: geometry,
		mapper:   mapper,
		capture:  screenshot.CaptureRect,
		logger:   loggerManager,
		rng:      timing.NewRand(time.Now().UnixNano()),
		sleep:    timing.Sleep,
		backoff:  timing.Range{Min: 100 * time.Millisecond, Max: 300 * time.Millisecond},
	}
}

// Capture снимает клиентскую область окна. Возвращает nil при любой ошибке.
func (s *FrameSource) Capture(h window.Handle) *Frame {
	outer, err := s.geometry.Geometry(h)
	if err != nil {
		s.logger.Debug("📷 Нет геометрии окна: %v", err)
		return nil
	}
	client := s.mapper.ClientRect(outer)
	if client.Empty() {
		s.logger.Debug("📷 Пустая клиентская область %v (окно свернуто?)", client)
		return nil
	}

	img, err := s.capture(client)
	if err != nil || img == nil {
		s.logger.Debug("📷 Ошибка захвата %v: %v", client, err)
		return nil
	}

	h.Rect = outer
	return &Frame{
		Image:      img,
		Window:     h,
		Client:     client,
		CapturedAt: time.Now(),
	}
}

// CaptureWithRetry повторяет захват до attempts раз со случайной паузой между попытками
func (s *FrameSource) CaptureWithRetry(ctx context.Context, h window.Handle, attempts int) (*Frame, error) {
	for i := 1; i <= attempts; i++ {
		if f := s.Capture(h); f != nil {
			return f, nil
		}
		if i < attempts {
			if err := s.sleep(ctx, s.rng.Duration(s.backoff)); err != nil {
				return nil, err
			}
		}
	}
	s.logger.Warn("📷 Кадр не получен после %d попыток", attempts)
	return nil, ErrNoFrame
}

// SavePNG сохраняет изображение в файл, создавая каталог
func SavePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("ошибка создания каталога: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ошибка создания файла: %w", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("ошибка кодирования PNG: %w", err)
	}
	return nil
}
