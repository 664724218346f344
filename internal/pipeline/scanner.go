// Package pipeline связывает окно, захват кадра, детектор и выбор цели в один проход.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"

	"gamepilot/internal/coords"
	"gamepilot/internal/detector"
	"gamepilot/internal/executor"
	"gamepilot/internal/logger"
	"gamepilot/internal/loop"
	"gamepilot/internal/screenshot"
	"gamepilot/internal/selector"
	"gamepilot/internal/window"
)

// ErrNothingFound в кадре нет объектов нужной категории. Это не сбой захвата.
var ErrNothingFound = errors.New("объект не найден")

// Windows источник окна игры. Refresh заново ищет окно, если прежнее закрыто.
type Windows interface {
	Refresh() (window.Handle, error)
}

// Frames источник кадров
type Frames interface {
	CaptureWithRetry(ctx context.Context, h window.Handle, attempts int) (*screenshot.Frame, error)
}

// Detector распознавание объектов
type Detector interface {
	Enabled() bool
	Detect(img image.Image, threshold float64) []detector.Detection
}

// Scan результат одного прохода
type Scan struct {
	Frame      *screenshot.Frame
	Detections []detector.Detection
}

// Scanner один проход "кадр, детекции, цель"
type Scanner struct {
	windows   Windows
	frames    Frames
	detector  Detector
	mapper    coords.Mapper
	attempts  int
	reference image.Point
	logger    *logger.LoggerManager
}

// NewScanner создает новый экземпляр Scanner
func NewScanner(windows Windows, frames Frames, det Detector, mapper coords.Mapper, attempts int, loggerManager *logger.LoggerManager) *Scanner {
	if attempts < 1 {
		attempts = 1
	}
	return &Scanner{
		windows:   windows,
		frames:    frames,
		detector:  det,
		mapper:    mapper,
		attempts:  attempts,
		reference: selector.DefaultReference,
		logger:    loggerManager,
	}
}

// SetReference меняет точку, к которой ищется ближайшая цель
func (s *Scanner) SetReference(p image.Point) {
	s.reference = p
}

// Capture снимает кадр окна игры без распознавания
func (s *Scanner) Capture(ctx context.Context) (*screenshot.Frame, error) {
	h, err := s.windows.Refresh()
	if err != nil {
		return nil, err
	}
	return s.frames.CaptureWithRetry(ctx, h, s.attempts)
}

// Scan снимает кадр и распознает все объекты с уверенностью от threshold
func (s *Scanner) Scan(ctx context.Context, threshold float64) (*Scan, error) {
	if !s.detector.Enabled() {
		return nil, detector.ErrDetectorDisabled
	}
	frame, err := s.Capture(ctx)
	if err != nil {
		return nil, err
	}
	return &Scan{Frame: frame, Detections: s.detector.Detect(frame.Image, threshold)}, nil
}

// Target выбирает ближайший объект категории и переводит его в экранные координаты
func (s *Scanner) Target(scan *Scan, category string) (selector.Target, error) {
	d, ok := selector.Select(scan.Detections, category, s.reference)
	if !ok {
		return selector.Target{}, fmt.Errorf("%w: %s", ErrNothingFound, category)
	}
	return selector.NewTarget(d, s.mapper, scan.Frame.Window.Rect), nil
}

// Find проход целиком: кадр, детекции и ближайшая цель категории
func (s *Scanner) Find(ctx context.Context, category string, threshold float64) (selector.Target, error) {
	scan, err := s.Scan(ctx, threshold)
	if err != nil {
		return selector.Target{}, err
	}
	t, err := s.Target(scan, category)
	if err != nil {
		s.logger.Debug("🔍 %s не найден среди %d объектов", category, len(scan.Detections))
		return t, err
	}
	s.logger.Info("🎯 %s (%.2f) в (%d, %d)", t.Detection.ClassName, t.Detection.Confidence, t.Screen.X, t.Screen.Y)
	return t, nil
}

// Describe переводит ошибку прохода в понятную оператору причину
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, window.ErrNotFound):
		return "окно игры не найдено"
	case errors.Is(err, screenshot.ErrNoFrame):
		return "не удалось получить кадр"
	case errors.Is(err, detector.ErrDetectorDisabled):
		return "детектор недоступен"
	case errors.Is(err, ErrNothingFound):
		return "объект не найден"
	case errors.Is(err, window.ErrFocusFailed), errors.Is(err, executor.ErrNotFocused):
		return "не удалось перевести фокус"
	case errors.Is(err, loop.ErrSessionActive):
		return "уже запущена другая сессия, сначала stop"
	case errors.Is(err, context.Canceled):
		return "отменено"
	}
	return err.Error()
}
