// Package window находит окно игры, переводит на него фокус и отдает его геометрию.
package window

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"gamepilot/internal/logger"
	"gamepilot/internal/timing"
)

var (
	ErrNotFound    = errors.New("окно игры не найдено")
	ErrFocusFailed = errors.New("не удалось перевести фокус на окно игры")
)

// Handle ссылка на окно игры
type Handle struct {
	ID    uintptr
	Title string
	Rect  image.Rectangle
}

// Valid true, если ссылка указывает на окно
func (h Handle) Valid() bool {
	return h.ID != 0
}

// Info видимое окно верхнего уровня
type Info struct {
	ID    uintptr
	Title string
}

// Platform вызовы ОС, нужные менеджеру окон
type Platform interface {
	Windows() ([]Info, error)
	IsWindow(id uintptr) bool
	IsIconic(id uintptr) bool
	Restore(id uintptr) error
	SetForeground(id uintptr) error
	BringToTop(id uintptr) error
	ForceForeground(id uintptr) error
	Foreground() uintptr
	Rect(id uintptr) (image.Rectangle, error)
	ClickAt(x, y int) error
}

// Options задержки и число попыток фокусировки
type Options struct {
	FocusAttempts   int
	FocusRetryDelay time.Duration
	InputSettle     time.Duration
	WaitPoll        time.Duration
}

// Manager хранит текущее окно игры и управляет фокусом
type Manager struct {
	platform Platform
	matcher  TitleMatcher
	opts     Options
	logger   *logger.LoggerManager
	sleep    timing.Sleeper

	mu      sync.Mutex
	current Handle
}

// NewManager создает новый экземпляр Manager
func NewManager(platform Platform, matcher TitleMatcher, opts Options, loggerManager *logger.LoggerManager) *Manager {
	if opts.FocusAttempts < 1 {
		opts.FocusAttempts = 1
	}
	return &Manager{
		platform: platform,
		matcher:  matcher,
		opts:     opts,
		logger:   loggerManager,
		sleep:    timing.Sleep,
	}
}

// Current последнее найденное окно
func (m *Manager) Current() Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Locate перебирает видимые окна и возвращает первое подходящее
func (m *Manager) Locate() (Handle, error) {
	windows, err := m.platform.Windows()
	if err != nil {
		return Handle{}, fmt.Errorf("перечисление окон: %w", err)
	}

	var matches []Info
	for _, w := range windows {
		if m.matcher.Match(w.Title) {
			matches = append(matches, w)
		}
	}
	if len(matches) == 0 {
		m.setCurrent(Handle{})
		return Handle{}, ErrNotFound
	}
	if len(matches) > 1 {
		m.logger.Warn("⚠️ Найдено %d подходящих окон, используем первое: %q", len(matches), matches[0].Title)
	}

	h := Handle{ID: matches[0].ID, Title: matches[0].Title}
	if rect, err := m.platform.Rect(h.ID); err == nil {
		h.Rect = rect
	}
	m.setCurrent(h)
	m.logger.Debug("🪟 Окно игры: %q %v", h.Title, h.Rect)
	return h, nil
}

// Refresh возвращает текущее окно, если оно еще существует, иначе ищет окно заново
func (m *Manager) Refresh() (Handle, error) {
	h := m.Current()
	if h.Valid() && m.platform.IsWindow(h.ID) {
		return h, nil
	}
	if h.Valid() {
		m.logger.Warn("⚠️ Окно %q закрыто, ищем игру заново", h.Title)
	}
	return m.Locate()
}

// WaitForWindow опрашивает список окон, пока не появится игра
func (m *Manager) WaitForWindow(ctx context.Context) (Handle, error) {
	for {
		h, err := m.Locate()
		if err == nil {
			return h, nil
		}
		if !errors.Is(err, ErrNotFound) {
			m.logger.LogError(err, "Ошибка поиска окна")
		}
		if err := m.sleep(ctx, m.opts.WaitPoll); err != nil {
			return Handle{}, err
		}
	}
}

// Geometry актуальный внешний прямоугольник окна
func (m *Manager) Geometry(h Handle) (image.Rectangle, error) {
	if !h.Valid() || !m.platform.IsWindow(h.ID) {
		return image.Rectangle{}, ErrNotFound
	}
	rect, err := m.platform.Rect(h.ID)
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("получение прямоугольника окна: %w", err)
	}
	m.mu.Lock()
	if m.current.ID == h.ID {
		m.current.Rect = rect
	}
	m.mu.Unlock()
	return rect, nil
}

// IsFocused true, если окно сейчас на переднем плане
func (m *Manager) IsFocused(h Handle) bool {
	return h.Valid() && m.platform.Foreground() == h.ID
}

// Focus пробует стратегии фокусировки по очереди до первой успешной
func (m *Manager) Focus(ctx context.Context, h Handle) bool {
	if !h.Valid() {
		return false
	}
	for _, s := range m.strategies() {
		for i, attempt := range s.attempts(h) {
			if err := attempt(); err != nil {
				m.logger.Debug("   %s (%d): %v", s.name, i+1, err)
				continue
			}
			if err := m.sleep(ctx, s.settle); err != nil {
				return false
			}
			if m.IsFocused(h) {
				m.logger.Debug("🎯 Фокус получен методом %q", s.name)
				return true
			}
		}
		m.logger.Debug("   метод %q не сработал", s.name)
	}
	m.logger.Warn("❌ Все методы фокусировки не сработали для %q", h.Title)
	return false
}

// EnsureFocused проверяет фокус перед действием и при необходимости восстанавливает его
func (m *Manager) EnsureFocused(ctx context.Context) error {
	h, err := m.Refresh()
	if err != nil {
		return err
	}
	if m.IsFocused(h) {
		return nil
	}

	for attempt := 1; attempt <= m.opts.FocusAttempts; attempt++ {
		m.logger.Debug("🔄 Попытка фокусировки %d/%d", attempt, m.opts.FocusAttempts)
		if m.Focus(ctx, h) {
			return m.sleep(ctx, m.opts.InputSettle)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt < m.opts.FocusAttempts {
			if err := m.sleep(ctx, m.opts.FocusRetryDelay); err != nil {
				return err
			}
		}
	}
	return ErrFocusFailed
}

func (m *Manager) setCurrent(h Handle) {
	m.mu.Lock()
	m.current = h
	m.mu.Unlock()
}
