package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// SaveEvery история сохраняется на диск каждые SaveEvery команд
const SaveEvery = 5

// History история команд между запусками
type History struct {
	path  string
	limit int

	mu      sync.Mutex
	entries []string
	unsaved int
}

// ExpandHome раскрывает "~" в начале пути
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// LoadHistory читает файл истории. Отсутствующий файл создается пустым.
func LoadHistory(path string, limit int) (*History, error) {
	if limit <= 0 {
		limit = 100
	}
	h := &History{path: ExpandHome(path), limit: limit}

	file, err := os.Open(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return h, h.Save()
	}
	if err != nil {
		return h, fmt.Errorf("ошибка открытия истории: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			h.entries = append(h.entries, line)
		}
	}
	h.trim()
	return h, scanner.Err()
}

// Add добавляет команду; каждые SaveEvery команд история пишется на диск
func (h *History) Add(cmd string) error {
	h.mu.Lock()
	h.entries = append(h.entries, cmd)
	h.trim()
	h.unsaved++
	due := h.unsaved >= SaveEvery
	h.mu.Unlock()

	if due {
		return h.Save()
	}
	return nil
}

// Save записывает последние limit команд
func (h *History) Save() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return fmt.Errorf("ошибка создания каталога истории: %w", err)
	}
	data := strings.Join(h.entries, "\n")
	if data != "" {
		data += "\n"
	}
	if err := os.WriteFile(h.path, []byte(data), 0644); err != nil {
		return fmt.Errorf("ошибка записи истории: %w", err)
	}
	h.unsaved = 0
	return nil
}

// Entries копия истории, старые команды первыми
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...)
}

func (h *History) Path() string { return h.path }

func (h *History) Limit() int { return h.limit }

func (h *History) trim() {
	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = append([]string(nil), h.entries[over:]...)
	}
}
