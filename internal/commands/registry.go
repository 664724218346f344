package commands

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gamepilot/internal/logger"
	"gamepilot/internal/window"
)

// Generic набор команд по умолчанию
const Generic = "generic"

type rule struct {
	fragment string
	game     string
}

// Registry хранит наборы команд игр и активный набор
type Registry struct {
	logger  *logger.LoggerManager
	deny    window.TitleMatcher
	rules   []rule
	builder map[string]Builder

	mu     sync.RWMutex
	active Binding
}

// NewRegistry создает новый экземпляр Registry. deny отсекает заголовки лаунчеров.
func NewRegistry(deny window.TitleMatcher, loggerManager *logger.LoggerManager) *Registry {
	return &Registry{
		logger:  loggerManager,
		deny:    deny,
		builder: make(map[string]Builder),
	}
}

// Register добавляет игру: фрагменты заголовка проверяются в порядке регистрации
func (r *Registry) Register(game string, build Builder, fragments ...string) {
	r.builder[game] = build
	for _, f := range fragments {
		r.rules = append(r.rules, rule{fragment: strings.ToLower(f), game: game})
	}
}

// Alias сопоставляет фрагменты заголовка уже зарегистрированному набору
func (r *Registry) Alias(game string, fragments ...string) {
	for _, f := range fragments {
		r.rules = append(r.rules, rule{fragment: strings.ToLower(f), game: game})
	}
}

// DetectGame идентификатор игры по заголовку окна, первое совпадение побеждает
func (r *Registry) DetectGame(title string) string {
	t := strings.ToLower(title)
	if t == "" || r.deny.Denied(t) {
		return Generic
	}
	for _, rl := range r.rules {
		if strings.Contains(t, rl.fragment) {
			return rl.game
		}
	}
	return Generic
}

// Bind целиком заменяет активный набор. Неизвестная игра получает generic.
func (r *Registry) Bind(game string) string {
	build, ok := r.builder[game]
	if !ok {
		build, ok = r.builder[Generic]
	}
	b := Binding{Game: Generic, Actions: Set{}}
	if ok {
		b = build()
	}
	if b.Game == "" {
		b.Game = game
	}

	r.mu.Lock()
	r.active = b
	r.mu.Unlock()

	r.logger.Info("🎮 Загружены команды %s: %d", b.Game, len(b.Actions)+len(b.Params))
	return b.Game
}

// BindForTitle определяет игру по заголовку и загружает ее команды
func (r *Registry) BindForTitle(title string) string {
	return r.Bind(r.DetectGame(title))
}

// Game активная игра
func (r *Registry) Game() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active.Game
}

// Names отсортированный список команд активного набора
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.active.Actions)+len(r.active.Params))
	for name := range r.active.Actions {
		names = append(names, name)
	}
	for _, p := range r.active.Params {
		names = append(names, p.Prefix+" [n]")
	}
	sort.Strings(names)
	return names
}

// ByKind команды активного набора указанного вида
func (r *Registry) ByKind(kind Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for name, a := range r.active.Actions {
		if a.Kind == kind {
			names = append(names, name)
		}
	}
	for _, p := range r.active.Params {
		if p.Kind == kind {
			names = append(names, p.Prefix+" [n]")
		}
	}
	sort.Strings(names)
	return names
}

// Lookup находит действие по тексту команды
func (r *Registry) Lookup(text string) (Action, bool, error) {
	cmd := Normalize(text)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if a, ok := r.active.Actions[cmd]; ok {
		return a, true, nil
	}
	for _, p := range r.active.Params {
		p := p
		if cmd == p.Prefix {
			return Action{Kind: p.Kind, Run: func(ctx context.Context) error { return p.Run(ctx, p.Default) }}, true, nil
		}
		rest, ok := strings.CutPrefix(cmd, p.Prefix+" ")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n <= 0 {
			return Action{}, true, fmt.Errorf("%s: ожидалось положительное число, получено %q", p.Prefix, rest)
		}
		return Action{Kind: p.Kind, Run: func(ctx context.Context) error { return p.Run(ctx, n) }}, true, nil
	}
	return Action{}, false, nil
}

// Dispatch выполняет команду. Неизвестная команда возвращает false без ошибки.
func (r *Registry) Dispatch(ctx context.Context, text string) (bool, error) {
	a, ok, err := r.Lookup(text)
	if !ok || err != nil {
		return ok, err
	}
	return true, a.Run(ctx)
}
