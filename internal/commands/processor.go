package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"gamepilot/internal/logger"
	"gamepilot/internal/pipeline"
	"gamepilot/internal/window"
)

// Focus окно игры, которому адресованы команды
type Focus interface {
	Current() window.Handle
	Locate() (window.Handle, error)
	WaitForWindow(ctx context.Context) (window.Handle, error)
	EnsureFocused(ctx context.Context) error
}

// SpecialFunc служебная команда процессора
type SpecialFunc func(ctx context.Context) error

var exitCommands = map[string]bool{"exit": true, "quit": true, "q": true}

// IsExit true для exit, quit и q
func IsExit(text string) bool {
	return exitCommands[Normalize(text)]
}

// Processor разбирает введенные строки: служебные команды выполняет сам,
// остальные передает в активный набор игры
type Processor struct {
	registry *Registry
	focus    Focus
	history  *History
	out      io.Writer
	logger   *logger.LoggerManager
	specials map[string]SpecialFunc

	// mu команды из консоли и удаленной очереди выполняются по одной
	mu sync.Mutex

	// OnCommand вызывается после каждой игровой команды, например для журнала в БД
	OnCommand func(game, command string, ok bool, reason string)
}

// NewProcessor создает новый экземпляр Processor. history может быть nil.
func NewProcessor(registry *Registry, focus Focus, history *History, loggerManager *logger.LoggerManager) *Processor {
	p := &Processor{
		registry: registry,
		focus:    focus,
		history:  history,
		out:      os.Stdout,
		logger:   loggerManager,
	}
	p.specials = map[string]SpecialFunc{
		"help":     p.help,
		"commands": p.help,
		"list":     p.help,
		"refocus":  p.refocus,
		"history":  p.historyStats,
		"save":     p.saveHistory,
		"wait":     p.wait,
	}
	return p
}

// SetOutput меняет вывод для справки и статистики
func (p *Processor) SetOutput(w io.Writer) {
	p.out = w
}

// AddSpecial регистрирует служебную команду
func (p *Processor) AddSpecial(name string, fn SpecialFunc) {
	p.specials[Normalize(name)] = fn
}

// Specials список служебных команд
func (p *Processor) Specials() []string {
	names := make([]string, 0, len(p.specials)+len(exitCommands))
	for name := range p.specials {
		names = append(names, name)
	}
	for name := range exitCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Process выполняет одну строку. Возвращает false для неизвестной или неуспешной команды.
func (p *Processor) Process(ctx context.Context, text string) bool {
	cmd := Normalize(text)
	if cmd == "" {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if fn, ok := p.specials[cmd]; ok {
		if err := fn(ctx); err != nil {
			p.logger.Error("❌ %s: %s", cmd, pipeline.Describe(err))
			return false
		}
		return true
	}

	act, ok, err := p.registry.Lookup(cmd)
	if !ok && p.syncGame() {
		act, ok, err = p.registry.Lookup(cmd)
	}
	if !ok {
		fmt.Fprintf(p.out, "Unknown command: %s\nType 'help' to see available commands\n", cmd)
		return false
	}
	if err != nil {
		p.report(cmd, false, err.Error())
		return false
	}

	if !act.Detached {
		if !p.focus.Current().Valid() {
			if _, err := p.focus.Locate(); err != nil {
				p.report(cmd, false, "окно игры не найдено, запустите игру")
				return false
			}
		}
		if err := p.focus.EnsureFocused(ctx); err != nil {
			p.report(cmd, false, pipeline.Describe(err))
			return false
		}
		// окно могло смениться на другую игру
		if p.syncGame() {
			act, ok, err = p.registry.Lookup(cmd)
			if !ok || err != nil {
				p.report(cmd, false, fmt.Sprintf("команда недоступна для %s", p.registry.Game()))
				return false
			}
		}
	}

	if err := act.Run(ctx); err != nil {
		p.report(cmd, false, pipeline.Describe(err))
		return false
	}
	p.report(cmd, true, "")

	if p.history != nil {
		if err := p.history.Add(cmd); err != nil {
			p.logger.LogError(err, "Ошибка сохранения истории")
		}
	}
	return true
}

func (p *Processor) report(cmd string, ok bool, reason string) {
	if ok {
		p.logger.Info("✅ %s", cmd)
	} else {
		p.logger.Warn("❌ %s: %s", cmd, reason)
	}
	if p.OnCommand != nil {
		p.OnCommand(p.registry.Game(), cmd, ok, reason)
	}
}

// Rebind загружает команды для игры в текущем окне
func (p *Processor) Rebind() string {
	return p.registry.BindForTitle(p.focus.Current().Title)
}

// syncGame перезагружает команды, если текущее окно принадлежит другой игре.
// Без окна пытается найти его. Возвращает true, если набор сменился.
func (p *Processor) syncGame() bool {
	h := p.focus.Current()
	if !h.Valid() {
		var err error
		if h, err = p.focus.Locate(); err != nil || !h.Valid() {
			return false
		}
	}
	game := p.registry.DetectGame(h.Title)
	if game == p.registry.Game() {
		return false
	}
	p.logger.Info("🔄 Окно сменилось на %s, перезагружаем команды", h.Title)
	p.registry.Bind(game)
	return true
}

func (p *Processor) help(context.Context) error {
	fmt.Fprintf(p.out, "\nИгра: %s\n", p.registry.Game())
	for k := Movement; k <= Utility; k++ {
		if names := p.registry.ByKind(k); len(names) > 0 {
			fmt.Fprintf(p.out, "  %-9s %s\n", k.String()+":", strings.Join(names, ", "))
		}
	}
	fmt.Fprintf(p.out, "  служебные: %s\n\n", strings.Join(p.Specials(), ", "))
	return nil
}

func (p *Processor) refocus(ctx context.Context) error {
	if _, err := p.focus.Locate(); err != nil {
		return err
	}
	if err := p.focus.EnsureFocused(ctx); err != nil {
		return err
	}
	p.syncGame()
	p.logger.Info("🎯 Окно игры в фокусе: %s", p.focus.Current().Title)
	return nil
}

func (p *Processor) historyStats(context.Context) error {
	if p.history == nil {
		fmt.Fprintln(p.out, "История команд отключена")
		return nil
	}
	fmt.Fprintf(p.out, "Команд в истории: %d (лимит %d)\nФайл: %s\n",
		len(p.history.Entries()), p.history.Limit(), p.history.Path())
	return nil
}

func (p *Processor) saveHistory(context.Context) error {
	if p.history == nil {
		return nil
	}
	if err := p.history.Save(); err != nil {
		return err
	}
	p.logger.Info("💾 История команд сохранена")
	return nil
}

func (p *Processor) wait(ctx context.Context) error {
	p.logger.Info("⏳ Ждем запуска игры...")
	h, err := p.focus.WaitForWindow(ctx)
	if err != nil {
		return err
	}
	p.logger.Info("🪟 Найдена игра: %s", h.Title)
	p.Rebind()
	return nil
}
