package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/multierr"

	"gamepilot/internal/arduino"
	"gamepilot/internal/commands"
	"gamepilot/internal/config"
	"gamepilot/internal/coords"
	"gamepilot/internal/database"
	"gamepilot/internal/detector"
	"gamepilot/internal/executor"
	"gamepilot/internal/input"
	"gamepilot/internal/input/robot"
	"gamepilot/internal/interrupt"
	"gamepilot/internal/logger"
	"gamepilot/internal/loop"
	"gamepilot/internal/metrics"
	"gamepilot/internal/pipeline"
	"gamepilot/internal/remote"
	"gamepilot/internal/screenshot"
	"gamepilot/internal/timing"
	"gamepilot/internal/vision"
	"gamepilot/internal/window"
)

func main() {
	configPath := flag.String("config", "", "путь к файлу конфигурации")
	flag.Parse()

	// init конфигурации
	c, err := config.InitConfig(*configPath)
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	// Инициализация логгера
	loggerManager, err := logger.NewLoggerManager(c.LogFilePath)
	if err != nil {
		log.Fatal("Error initializing logger: ", err)
	}
	defer loggerManager.Close()
	loggerManager.SetDebug(c.Debug)

	loggerManager.Info("🚀 Запуск GamePilot")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, c, loggerManager); err != nil {
		loggerManager.LogError(err, "Аварийное завершение")
		os.Exit(1)
	}
	loggerManager.Info("👋 Работа завершена")
}

func openDevice(c config.Config, loggerManager *logger.LoggerManager) (input.Device, error) {
	if c.Input.Backend != "arduino" {
		loggerManager.Info("⌨️ Ввод через robotgo")
		return robot.New(), nil
	}
	name, err := arduino.ResolvePort(c.Input.Port)
	if err != nil {
		return nil, err
	}
	port, err := arduino.InitializePort(name, c.Input.BaudRate, c.Input.AckTimeout)
	if err != nil {
		return nil, err
	}
	loggerManager.Info("🔌 Arduino подключен к %s", name)
	return arduino.NewDevice(port, loggerManager), nil
}

// openDatabase возвращает nil, если журнал отключен или MySQL недоступен
func openDatabase(ctx context.Context, c config.Config, loggerManager *logger.LoggerManager) *database.DatabaseManager {
	if !c.Database.Enabled {
		return nil
	}
	db, err := database.Open(ctx, c.Database)
	if err != nil {
		loggerManager.LogError(err, "База данных недоступна, журнал отключен")
		return nil
	}
	dbManager := database.NewDatabaseManager(db, loggerManager)
	if err := dbManager.EnsureSchema(ctx); err != nil {
		loggerManager.LogError(err, "Ошибка создания схемы, журнал отключен")
		db.Close()
		return nil
	}
	loggerManager.Info("✅ Успешное подключение к базе данных")
	return dbManager
}

func run(ctx context.Context, c config.Config, loggerManager *logger.LoggerManager) (err error) {
	device, err := openDevice(c, loggerManager)
	if err != nil {
		return err
	}

	windows := window.NewManager(
		window.NewPlatform(),
		window.NewTitleMatcher(c.Window.Allow, c.Window.Deny),
		window.Options{
			FocusAttempts:   c.Window.FocusAttempts,
			FocusRetryDelay: c.Window.FocusRetryDelay,
			InputSettle:     c.Window.InputSettle,
			WaitPoll:        c.Window.WaitPoll,
		},
		loggerManager,
	)
	mapper := coords.NewMapper(coords.Offset{
		Left:         c.Window.BorderLeft,
		Top:          c.Window.TitleBar,
		BorderWidth:  c.Window.BorderWidth,
		BorderHeight: c.Window.BorderHeight,
	})
	frames := screenshot.NewFrameSource(windows, mapper, loggerManager)

	det := detector.NewAdapter(
		vision.Loader(c.Detector.ModelPath, c.Detector.ClassNames, c.Detector.InputSize, c.Detector.NMSThreshold),
		loggerManager,
	)
	scanner := pipeline.NewScanner(windows, frames, det, mapper, c.Capture.Attempts, loggerManager)

	rng := timing.NewRand(time.Now().UnixNano())
	exec := executor.NewExecutor(device, windows, loggerManager, rng)

	// Инициализация менеджера прерываний
	interruptManager := interrupt.NewInterruptManager(c.Loop.CancelKeys, loggerManager)
	interruptManager.StartMonitoring()

	controller := loop.NewController(loggerManager, interruptManager)
	controller.SetStuckParams(c.Loop.StuckTolerance, c.Loop.StuckThreshold)

	stats := metrics.New()
	dbManager := openDatabase(ctx, c, loggerManager)

	history, err := commands.LoadHistory(c.History.Path, c.History.Limit)
	if err != nil {
		loggerManager.LogError(err, "Ошибка чтения истории команд")
	}

	registry := commands.NewRegistry(window.NewTitleMatcher(nil, c.Window.Deny), loggerManager)
	processor := commands.NewProcessor(registry, windows, history, loggerManager)

	app := &app{
		cfg:        c,
		logger:     loggerManager,
		windows:    windows,
		registry:   registry,
		processor:  processor,
		controller: controller,
		metrics:    stats,
		db:         dbManager,
	}
	app.wire(ctx, exec, scanner, rng)

	var background conc.WaitGroup
	bgCtx, cancelBackground := context.WithCancel(ctx)

	if c.Metrics.Listen != "" {
		background.Go(func() {
			loggerManager.Info("📈 Метрики на %s/metrics", c.Metrics.Listen)
			if err := stats.Serve(bgCtx, c.Metrics.Listen); err != nil {
				loggerManager.LogError(err, "Ошибка сервера метрик")
			}
		})
	}
	if dbManager != nil {
		poller := remote.NewPoller(dbManager, processor, c.Database.PollInterval, loggerManager)
		background.Go(func() { poller.Run(bgCtx) })
	}

	defer func() {
		cancelBackground()
		if stopErr := controller.Stop(); stopErr != nil {
			loggerManager.LogError(stopErr, "Ошибка остановки сессии")
		}
		background.Wait()
		if history != nil {
			err = multierr.Append(err, history.Save())
		}
		if dbManager != nil {
			dbManager.WaitForAsyncOperations()
			err = multierr.Append(err, dbManager.DB().Close())
		}
		err = multierr.Combine(err, exec.Neutral(), device.Close(), det.Close())
	}()

	app.attach(ctx)
	return app.repl(ctx, os.Stdin)
}
