// Package interrupt слушает глобальные горячие клавиши и превращает их в сигнал отмены.
package interrupt

import (
	"strings"
	"sync"

	"gamepilot/internal/logger"
)

// DefaultCancelKeys клавиши, останавливающие активную сессию
var DefaultCancelKeys = []string{"end", "esc"}

// InterruptManager управляет прерываниями и горячими клавишами
type InterruptManager struct {
	cancelChan    chan struct{}
	keys          map[string]bool
	loggerManager *logger.LoggerManager

	once sync.Once
}

// NewInterruptManager создает новый менеджер прерываний
func NewInterruptManager(keys []string, loggerManager *logger.LoggerManager) *InterruptManager {
	if len(keys) == 0 {
		keys = DefaultCancelKeys
	}
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[normalizeKey(k)] = true
	}
	return &InterruptManager{
		cancelChan:    make(chan struct{}),
		keys:          set,
		loggerManager: loggerManager,
	}
}

// StartMonitoring запускает мониторинг горячих клавиш. Повторные вызовы игнорируются.
func (im *InterruptManager) StartMonitoring() {
	im.once.Do(func() {
		go func() {
			if err := im.monitorHotkeys(); err != nil {
				im.loggerManager.LogError(err, "Горячие клавиши недоступны")
			}
		}()
	})
}

// CancelChan канал сигналов отмены. Сигнал получает только тот, кто ждет его в момент нажатия.
func (im *InterruptManager) CancelChan() <-chan struct{} {
	return im.cancelChan
}

// Trigger отправляет сигнал отмены, если его кто-то ждет
func (im *InterruptManager) Trigger() bool {
	select {
	case im.cancelChan <- struct{}{}:
		return true
	default:
		return false
	}
}

// handleKey обрабатывает нажатие клавиши по имени
func (im *InterruptManager) handleKey(name string) bool {
	if !im.keys[normalizeKey(name)] {
		return false
	}
	if im.Trigger() {
		im.loggerManager.Info("🛑 Нажата %s, останавливаем сессию", name)
		return true
	}
	return false
}

func normalizeKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	if k == "escape" {
		return "esc"
	}
	return k
}
