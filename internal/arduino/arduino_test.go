package arduino

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"go.bug.st/serial/enumerator"

	"gamepilot/internal/input"
	"gamepilot/internal/logger"
)

// fakePort отвечает заранее заданными строками и запоминает записанное
type fakePort struct {
	written bytes.Buffer
	replies *strings.Reader
	closed  bool
}

func newFakePort(replies string) *fakePort {
	return &fakePort{replies: strings.NewReader(replies)}
}

func (p *fakePort) Read(b []byte) (int, error)  { return p.replies.Read(b) }
func (p *fakePort) Write(b []byte) (int, error) { return p.written.Write(b) }
func (p *fakePort) Close() error                { p.closed = true; return nil }

var _ io.ReadWriteCloser = (*fakePort)(nil)

func testLogger() *logger.LoggerManager {
	return logger.NewWriterLogger(&bytes.Buffer{})
}

func TestDeviceProtocol(t *testing.T) {
	port := newFakePort(strings.Repeat("received\r\n", 5))
	d := NewDevice(port, testLogger())

	steps := []func() error{
		func() error { return d.KeyDown("w") },
		func() error { return d.KeyUp("w") },
		func() error { return d.MoveMouse(640, 360) },
		func() error { return d.MouseDown(input.ButtonLeft) },
		func() error { return d.SetStick(input.LeftStick, 0, 16383) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("шаг %d: %v", i, err)
		}
	}

	want := "key_down:w\nkey_up:w\nmove:640,360\nmouse_down:left\nstick:left,0,16383\n"
	if port.written.String() != want {
		t.Errorf("Expected %q, got %q", want, port.written.String())
	}
	if x, y, _ := d.CursorPos(); x != 640 || y != 360 {
		t.Errorf("курсор должен быть (640,360), получено (%d,%d)", x, y)
	}
}

func TestDeviceUnexpectedResponse(t *testing.T) {
	d := NewDevice(newFakePort("busy\n"), testLogger())
	if err := d.KeyDown("space"); err == nil || !strings.Contains(err.Error(), "busy") {
		t.Errorf("ожидалась ошибка неожиданного ответа, получено %v", err)
	}
}

func TestDeviceNoResponse(t *testing.T) {
	d := NewDevice(newFakePort(""), testLogger())
	if err := d.KeyDown("space"); err == nil {
		t.Error("ожидалась ошибка при отсутствии ответа")
	}
}

func TestCloseNeutralizesSticks(t *testing.T) {
	port := newFakePort("received\nreceived\n")
	d := NewDevice(port, testLogger())
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if !port.closed {
		t.Error("порт должен быть закрыт")
	}
	if port.written.String() != "stick:left,0,0\nstick:right,0,0\n" {
		t.Errorf("неожиданные команды %q", port.written.String())
	}
}

func TestPickArduino(t *testing.T) {
	ports := []*enumerator.PortDetails{
		{Name: "COM1", IsUSB: false},
		{Name: "COM3", IsUSB: true, VID: "0403", Product: "FT232R"},
		{Name: "COM7", IsUSB: true, VID: "2341", PID: "8036"},
	}
	name, ok := pickArduino(ports)
	if !ok || name != "COM7" {
		t.Errorf("ожидался COM7, получено %q %v", name, ok)
	}
	if _, ok := pickArduino(ports[:2]); ok {
		t.Error("без Arduino порт не должен находиться")
	}
}

func TestResolvePortConfigured(t *testing.T) {
	name, err := ResolvePort("COM4")
	if err != nil || name != "COM4" {
		t.Errorf("ожидался COM4, получено %q %v", name, err)
	}
}
