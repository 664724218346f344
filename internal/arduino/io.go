package arduino

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/tarm/serial"

	"gamepilot/internal/input"
	"gamepilot/internal/logger"
)

const ackResponse = "received"

// InitializePort открывает последовательный порт Arduino
func InitializePort(name string, baud int, readTimeout time.Duration) (*serial.Port, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        name,
		Baud:        baud,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: readTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия порта %s: %w", name, err)
	}
	return port, nil
}

// Device HID-эмуляция клавиатуры, мыши и геймпада на Arduino.
// Каждая команда отправляется строкой и подтверждается ответом "received".
type Device struct {
	mu     sync.Mutex
	port   io.ReadWriteCloser
	reader *bufio.Reader
	logger *logger.LoggerManager

	// Arduino не умеет сообщать положение курсора, помним последнее
	cursorX, cursorY int
}

// NewDevice создает новый экземпляр Device поверх открытого порта
func NewDevice(port io.ReadWriteCloser, loggerManager *logger.LoggerManager) *Device {
	return &Device{
		port:   port,
		reader: bufio.NewReader(port),
		logger: loggerManager,
	}
}

func (d *Device) send(format string, args ...interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	message := fmt.Sprintf(format, args...)
	if _, err := d.port.Write([]byte(message + "\n")); err != nil {
		return fmt.Errorf("ошибка записи в Arduino: %w", err)
	}
	if _, err := d.waitForResponse(ackResponse); err != nil {
		return fmt.Errorf("команда %q: %w", message, err)
	}
	return nil
}

func (d *Device) waitForResponse(expected string) (string, error) {
	line, err := d.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("ошибка чтения из Arduino: %w", err)
	}
	response := strings.TrimSpace(line)
	if response != expected {
		return "", fmt.Errorf("неожиданный ответ: '%s'", response)
	}
	return response, nil
}

func (d *Device) KeyDown(key string) error {
	return d.send("key_down:%s", key)
}

func (d *Device) KeyUp(key string) error {
	return d.send("key_up:%s", key)
}

func (d *Device) MouseDown(b input.Button) error {
	return d.send("mouse_down:%s", b)
}

func (d *Device) MouseUp(b input.Button) error {
	return d.send("mouse_up:%s", b)
}

func (d *Device) MoveMouse(x, y int) error {
	if err := d.send("move:%d,%d", x, y); err != nil {
		return err
	}
	d.mu.Lock()
	d.cursorX, d.cursorY = x, y
	d.mu.Unlock()
	return nil
}

func (d *Device) CursorPos() (int, int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cursorX, d.cursorY, nil
}

func (d *Device) SetStick(s input.Stick, x, y int) error {
	return d.send("stick:%s,%d,%d", s, x, y)
}

// Close возвращает стики в нейтраль и закрывает порт
func (d *Device) Close() error {
	for _, s := range []input.Stick{input.LeftStick, input.RightStick} {
		if err := d.SetStick(s, 0, 0); err != nil {
			d.logger.LogError(err, "Ошибка сброса стика")
		}
	}
	return d.port.Close()
}
