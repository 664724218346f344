package screenshot

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gamepilot/internal/coords"
	"gamepilot/internal/logger"
	"gamepilot/internal/window"
)

type fakeGeometry struct {
	rect image.Rectangle
	err  error
}

func (g fakeGeometry) Geometry(window.Handle) (image.Rectangle, error) { return g.rect, g.err }

func newTestSource(g Geometry, capture CaptureFunc) (*FrameSource, *[]time.Duration) {
	s := NewFrameSource(g, coords.NewMapper(coords.DefaultOffset), logger.NewWriterLogger(&bytes.Buffer{}))
	s.capture = capture
	var slept []time.Duration
	s.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return s, &slept
}

func TestCaptureClientArea(t *testing.T) {
	var got image.Rectangle
	s, _ := newTestSource(fakeGeometry{rect: image.Rect(100, 100, 1396, 899)}, func(b image.Rectangle) (*image.RGBA, error) {
		got = b
		return image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy())), nil
	})

	f := s.Capture(window.Handle{ID: 1, Title: "RuneScape"})
	if f == nil {
		t.Fatal("ожидался кадр")
	}
	want := image.Rect(108, 131, 108+1280, 131+760)
	if got != want {
		t.Errorf("захвачена область %v, ожидалась %v", got, want)
	}
	if f.Size() != image.Pt(1280, 760) {
		t.Errorf("неожиданный размер кадра %v", f.Size())
	}
	if f.Window.Rect != image.Rect(100, 100, 1396, 899) {
		t.Errorf("кадр должен хранить геометрию окна, получено %v", f.Window.Rect)
	}
}

func TestCaptureReturnsNilOnFailure(t *testing.T) {
	s, _ := newTestSource(fakeGeometry{rect: image.Rect(0, 0, 800, 600)}, func(image.Rectangle) (*image.RGBA, error) {
		return nil, errors.New("gpu busy")
	})
	if f := s.Capture(window.Handle{ID: 1}); f != nil {
		t.Error("ожидался nil при ошибке захвата")
	}

	s2, _ := newTestSource(fakeGeometry{err: window.ErrNotFound}, nil)
	if f := s2.Capture(window.Handle{ID: 1}); f != nil {
		t.Error("ожидался nil без геометрии окна")
	}
}

func TestCaptureWithRetryExhausted(t *testing.T) {
	calls := 0
	s, slept := newTestSource(fakeGeometry{rect: image.Rect(0, 0, 800, 600)}, func(image.Rectangle) (*image.RGBA, error) {
		calls++
		return nil, errors.New("minimized")
	})

	f, err := s.CaptureWithRetry(context.Background(), window.Handle{ID: 1}, 3)
	if f != nil || !errors.Is(err, ErrNoFrame) {
		t.Fatalf("ожидалась ErrNoFrame, получено %v, %v", f, err)
	}
	if calls != 3 {
		t.Errorf("ожидалось 3 попытки, получено %d", calls)
	}
	if len(*slept) != 2 {
		t.Errorf("ожидалось 2 паузы, получено %d", len(*slept))
	}
	for _, d := range *slept {
		if d < 100*time.Millisecond || d > 300*time.Millisecond {
			t.Errorf("пауза %v вне 100..300ms", d)
		}
	}
}

func TestCaptureWithRetrySucceedsLater(t *testing.T) {
	calls := 0
	s, _ := newTestSource(fakeGeometry{rect: image.Rect(0, 0, 800, 600)}, func(b image.Rectangle) (*image.RGBA, error) {
		calls++
		if calls < 2 {
			return nil, errors.New("busy")
		}
		return image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy())), nil
	})
	f, err := s.CaptureWithRetry(context.Background(), window.Handle{ID: 1}, 3)
	if err != nil || f == nil {
		t.Fatalf("ожидался кадр со второй попытки: %v", err)
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug", "frame.png")
	if err := SavePNG(path, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("файл не создан: %v", err)
	}
}
