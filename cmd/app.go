package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gamepilot/internal/commands"
	"gamepilot/internal/config"
	"gamepilot/internal/database"
	"gamepilot/internal/executor"
	"gamepilot/internal/games"
	"gamepilot/internal/games/generic"
	"gamepilot/internal/games/runescape"
	"gamepilot/internal/games/spiderman"
	"gamepilot/internal/logger"
	"gamepilot/internal/loop"
	"gamepilot/internal/metrics"
	"gamepilot/internal/pipeline"
	"gamepilot/internal/timing"
	"gamepilot/internal/vision"
	"gamepilot/internal/window"
)

const prompt = "Game> "

// Наборы команд в порядке проверки заголовка окна
var gameList = []string{spiderman.Game, runescape.Game, "gta5", commands.Generic}

type app struct {
	cfg        config.Config
	logger     *logger.LoggerManager
	windows    *window.Manager
	registry   *commands.Registry
	processor  *commands.Processor
	controller *loop.Controller
	metrics    *metrics.Metrics
	db         *database.DatabaseManager
}

// wire регистрирует игры и подключает журнал к процессору и контроллеру
func (a *app) wire(ctx context.Context, exec *executor.Executor, scanner *pipeline.Scanner, rng *timing.Rand) {
	env := &games.Env{
		Base:    ctx,
		Input:   exec,
		Scanner: scanner,
		Loops:   a.controller,
		Logger:  a.logger,
		Rand:    rng,
		Sleep:   timing.Sleep,
		OnScan:  a.onScan,
	}

	a.registry.Register(commands.Generic, func() commands.Binding { return generic.Build(env) })
	a.registry.Register(spiderman.Game, func() commands.Binding {
		return spiderman.Build(env, vision.Edges{})
	}, "spider-man", "spiderman")
	a.registry.Register(runescape.Game, func() commands.Binding {
		return runescape.Build(env, runescape.Options{HuntInterval: a.cfg.Loop.HuntInterval})
	}, "runescape", "old school")
	a.registry.Register("gta5", func() commands.Binding {
		b := generic.Build(env)
		b.Game = "gta5"
		return b
	}, "grand theft auto", "gta")
	a.registry.Bind(commands.Generic)

	a.processor.AddSpecial("games", a.listGames)
	a.processor.AddSpecial("status", a.status)
	a.processor.OnCommand = a.onCommand
	a.controller.OnExit(a.onExit)
}

// attach ждет окно игры и загружает ее команды
func (a *app) attach(ctx context.Context) {
	h, err := a.windows.Locate()
	if err != nil {
		a.logger.Info("⏳ Ждем запуска игры... (Ctrl+C для выхода)")
		if h, err = a.windows.WaitForWindow(ctx); err != nil {
			return
		}
	}
	a.logger.Info("🪟 Найдена игра: %s", h.Title)
	if err := a.windows.EnsureFocused(ctx); err != nil {
		a.logger.Warn("⚠️ %s", pipeline.Describe(err))
	}
	a.processor.Rebind()
}

// repl читает команды до exit или отмены ctx
func (a *app) repl(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	a.logger.Info("💡 Введите 'help' для списка команд, 'exit' для выхода")
	for {
		fmt.Print(prompt)
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			if commands.IsExit(line) {
				return nil
			}
			a.processor.Process(ctx, line)
		}
	}
}

func (a *app) listGames(context.Context) error {
	current := a.registry.Game()
	for _, g := range gameList {
		mark := " "
		if g == current {
			mark = "*"
		}
		fmt.Printf(" %s %s\n", mark, g)
	}
	return nil
}

func (a *app) status(ctx context.Context) error {
	h := a.windows.Current()
	fmt.Printf("Игра: %s\n", a.registry.Game())
	if h.Valid() {
		fmt.Printf("Окно: %s %v\n", h.Title, h.Rect)
	} else {
		fmt.Println("Окно: не найдено")
	}
	fmt.Printf("Цикл: %s\n", a.controller.State())
	if s, ok := a.controller.Active(); ok {
		fmt.Printf("Сессия: %s, циклов %d, успешных %d, идет %s\n",
			s.Kind, s.Cycles, s.Successes, time.Since(s.StartedAt).Round(time.Second))
	}
	if a.db != nil {
		st, err := a.db.GetStatus(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Статус в БД: %s\n", st.CurrentStatus)
	}
	return nil
}

func (a *app) onCommand(game, command string, ok bool, reason string) {
	a.metrics.ObserveCommand(game, ok)
	if a.db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.db.LogCommand(ctx, game, command, ok, reason); err != nil {
		a.logger.LogError(err, "Ошибка записи команды в журнал")
	}
}

func (a *app) onExit(stats loop.Stats, runErr error) {
	a.metrics.ObserveSession(stats)
	if a.db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := a.db.SaveSession(ctx, stats, runErr); err != nil {
		a.logger.LogError(err, "Ошибка сохранения сессии")
	}
}

// onScan сохраняет размеченный кадр "scan objects" в debug и в БД
func (a *app) onScan(scan *pipeline.Scan) {
	a.metrics.ObserveScan(scan)

	if dir := a.cfg.Capture.DebugDir; dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			a.logger.LogError(err, "Ошибка создания папки debug")
		} else {
			name := filepath.Join(dir, fmt.Sprintf("scan_%s.png", scan.Frame.CapturedAt.Format("20060102_150405")))
			if err := vision.SaveAnnotated(name, scan.Frame.Image, scan.Detections); err != nil {
				a.logger.LogError(err, "Ошибка сохранения размеченного кадра")
			} else {
				a.logger.Debug("🖼️ Кадр сохранен: %s", name)
			}
		}
	}

	if a.db == nil {
		return
	}
	png, err := vision.EncodeAnnotated(scan.Frame.Image, scan.Detections)
	if err != nil {
		a.logger.LogError(err, "Ошибка кодирования кадра")
		return
	}
	a.db.SaveScanAsync(a.registry.Game(), scan, png)
}
