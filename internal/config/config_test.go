package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInitConfigDefaultsWithoutFile(t *testing.T) {
	cfg, err := InitConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if cfg.Window.BorderLeft != 8 || cfg.Window.TitleBar != 31 {
		t.Errorf("ожидались отступы 8/31, получено %d/%d", cfg.Window.BorderLeft, cfg.Window.TitleBar)
	}
	if cfg.Loop.HuntInterval != 7*time.Second {
		t.Errorf("ожидался интервал 7s, получено %v", cfg.Loop.HuntInterval)
	}
	if cfg.History.Limit != 100 {
		t.Errorf("ожидался лимит истории 100, получено %d", cfg.History.Limit)
	}
	if cfg.Input.Backend != "robotgo" {
		t.Errorf("ожидался backend robotgo, получено %q", cfg.Input.Backend)
	}
}

func TestInitConfigReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
input:
  backend: arduino
  port: COM5
  baud_rate: 115200
loop:
  hunt_interval: 3s
window:
  allow: ["my game"]
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if cfg.Input.Backend != "arduino" || cfg.Input.Port != "COM5" || cfg.Input.BaudRate != 115200 {
		t.Errorf("неожиданные настройки ввода: %+v", cfg.Input)
	}
	if cfg.Loop.HuntInterval != 3*time.Second {
		t.Errorf("ожидался интервал 3s, получено %v", cfg.Loop.HuntInterval)
	}
	if len(cfg.Window.Allow) != 1 || cfg.Window.Allow[0] != "my game" {
		t.Errorf("неожиданный allow-list: %v", cfg.Window.Allow)
	}
	if cfg.Window.TitleBar != 31 {
		t.Errorf("значение по умолчанию потеряно: %d", cfg.Window.TitleBar)
	}
}

func TestInitConfigEnvOverride(t *testing.T) {
	t.Setenv("GAMEPILOT_DATABASE_PASSWORD", "secret")
	cfg, err := InitConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if cfg.Database.Password != "secret" {
		t.Errorf("ожидался пароль из окружения, получено %q", cfg.Database.Password)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("input:\n  backend: joystick\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := InitConfig(path); err == nil {
		t.Error("ожидалась ошибка для неизвестного backend")
	}
}
