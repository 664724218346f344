package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// WindowConfig настройки поиска и фокусировки окна игры
type WindowConfig struct {
	Allow           []string      `mapstructure:"allow"`
	Deny            []string      `mapstructure:"deny"`
	BorderLeft      int           `mapstructure:"border_left"`
	TitleBar        int           `mapstructure:"title_bar"`
	BorderWidth     int           `mapstructure:"border_width"`
	BorderHeight    int           `mapstructure:"border_height"`
	FocusAttempts   int           `mapstructure:"focus_attempts"`
	FocusRetryDelay time.Duration `mapstructure:"focus_retry_delay"`
	InputSettle     time.Duration `mapstructure:"input_settle"`
	WaitPoll        time.Duration `mapstructure:"wait_poll"`
}

// CaptureConfig настройки захвата кадра
type CaptureConfig struct {
	Attempts int    `mapstructure:"attempts"`
	DebugDir string `mapstructure:"debug_dir"`
}

// DetectorConfig настройки YOLO модели
type DetectorConfig struct {
	ModelPath    string   `mapstructure:"model_path"`
	ClassNames   []string `mapstructure:"class_names"`
	InputSize    int      `mapstructure:"input_size"`
	NMSThreshold float32  `mapstructure:"nms_threshold"`
}

// InputConfig настройки устройства ввода
type InputConfig struct {
	Backend    string        `mapstructure:"backend"` // robotgo или arduino
	Port       string        `mapstructure:"port"`    // COM-порт или auto
	BaudRate   int           `mapstructure:"baud_rate"`
	AckTimeout time.Duration `mapstructure:"ack_timeout"`
}

// LoopConfig настройки циклов охоты и ходьбы
type LoopConfig struct {
	HuntInterval   time.Duration `mapstructure:"hunt_interval"`
	StuckTolerance float64       `mapstructure:"stuck_tolerance"`
	StuckThreshold int           `mapstructure:"stuck_threshold"`
	CancelKeys     []string      `mapstructure:"cancel_keys"`
}

// DatabaseConfig настройки MySQL для журнала сессий
type DatabaseConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	Name         string        `mapstructure:"name"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// MetricsConfig адрес /metrics. Пустой адрес отключает сервер.
type MetricsConfig struct {
	Listen string `mapstructure:"listen"`
}

// HistoryConfig настройки истории команд
type HistoryConfig struct {
	Path  string `mapstructure:"path"`
	Limit int    `mapstructure:"limit"`
}

// Основная структура конфигурации
type Config struct {
	LogFilePath string         `mapstructure:"log_file_path"`
	Debug       bool           `mapstructure:"debug"`
	Window      WindowConfig   `mapstructure:"window"`
	Capture     CaptureConfig  `mapstructure:"capture"`
	Detector    DetectorConfig `mapstructure:"detector"`
	Input       InputConfig    `mapstructure:"input"`
	Loop        LoopConfig     `mapstructure:"loop"`
	Database    DatabaseConfig `mapstructure:"database"`
	History     HistoryConfig  `mapstructure:"history"`
	Metrics     MetricsConfig  `mapstructure:"metrics"`
}

var defaultAllow = []string{
	"grand theft auto", "gta", "forza", "assassin", "call of duty", "fifa",
	"nba", "madden", "minecraft", "fallout", "elder scrolls", "witcher",
	"cyberpunk", "red dead", "spider-man", "batman", "tomb raider",
	"runescape", "old school", "rockstar",
	"steam -", "epic games -", "origin -", "uplay -", "battle.net -",
}

var defaultDeny = []string{
	"steam$", "epic games launcher", "origin launcher", "uplay launcher", "battle.net launcher",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_file_path", "logs/gamepilot.log")
	v.SetDefault("debug", false)

	v.SetDefault("window.allow", defaultAllow)
	v.SetDefault("window.deny", defaultDeny)
	v.SetDefault("window.border_left", 8)
	v.SetDefault("window.title_bar", 31)
	v.SetDefault("window.border_width", 16)
	v.SetDefault("window.border_height", 39)
	v.SetDefault("window.focus_attempts", 3)
	v.SetDefault("window.focus_retry_delay", time.Second)
	v.SetDefault("window.input_settle", 500*time.Millisecond)
	v.SetDefault("window.wait_poll", 3*time.Second)

	v.SetDefault("capture.attempts", 3)
	v.SetDefault("capture.debug_dir", "debug")

	v.SetDefault("detector.model_path", "models/runescape.onnx")
	v.SetDefault("detector.class_names", []string{"chicken", "tree", "oak tree", "willow tree", "rock", "person", "bank"})
	v.SetDefault("detector.input_size", 640)
	v.SetDefault("detector.nms_threshold", 0.45)

	v.SetDefault("input.backend", "robotgo")
	v.SetDefault("input.port", "auto")
	v.SetDefault("input.baud_rate", 9600)
	v.SetDefault("input.ack_timeout", 2*time.Second)

	v.SetDefault("loop.hunt_interval", 7*time.Second)
	v.SetDefault("loop.stuck_tolerance", 50.0)
	v.SetDefault("loop.stuck_threshold", 2)
	v.SetDefault("loop.cancel_keys", []string{"end", "esc"})

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "gamepilot")
	v.SetDefault("database.poll_interval", 2*time.Second)

	v.SetDefault("history.path", "~/.game_command_history")
	v.SetDefault("history.limit", 100)

	v.SetDefault("metrics.listen", "")
}

// InitConfig читает config.yaml (или файл path), переменные окружения GAMEPILOT_*
// и значения по умолчанию. Отсутствие файла не ошибка.
var InitConfig = func(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("GAMEPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return config, fmt.Errorf("ошибка чтения конфигурации: %w", err)
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}
	return config, config.Validate()
}

// Validate проверяет значения, без которых бот не может работать
func (c Config) Validate() error {
	switch c.Input.Backend {
	case "robotgo", "arduino":
	default:
		return fmt.Errorf("неизвестный backend ввода: %q", c.Input.Backend)
	}
	if c.Window.FocusAttempts < 1 {
		return fmt.Errorf("window.focus_attempts должен быть >= 1")
	}
	if c.Capture.Attempts < 1 {
		return fmt.Errorf("capture.attempts должен быть >= 1")
	}
	if c.Loop.StuckThreshold < 1 {
		return fmt.Errorf("loop.stuck_threshold должен быть >= 1")
	}
	return nil
}
