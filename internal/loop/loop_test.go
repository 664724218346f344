package loop

import (
	"bytes"
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"gamepilot/internal/logger"
)

func testController(signals CancelSource) *Controller {
	return NewController(logger.NewWriterLogger(&bytes.Buffer{}), signals)
}

// blockingCycle ждет отмены и сигналит о первом входе
func blockingCycle(started chan<- struct{}) Cycle {
	var once sync.Once
	return func(ctx context.Context, s *Session) error {
		once.Do(func() { close(started) })
		<-ctx.Done()
		return ctx.Err()
	}
}

func TestStopOnIdleIsNoop(t *testing.T) {
	c := testController(nil)
	if err := c.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := c.Stop(); err != nil {
		t.Fatal(err)
	}
	if c.State() != Idle {
		t.Errorf("ожидалось Idle, получено %s", c.State())
	}
}

func TestStartStop(t *testing.T) {
	c := testController(nil)
	var exitStats Stats
	exited := make(chan struct{})
	c.OnExit(func(s Stats, err error) {
		exitStats = s
		if err != nil {
			t.Errorf("неожиданная ошибка %v", err)
		}
		close(exited)
	})

	started := make(chan struct{})
	if err := c.Start(context.Background(), "hunt", "runescape", blockingCycle(started)); err != nil {
		t.Fatal(err)
	}
	<-started
	if c.State() != Running {
		t.Fatalf("ожидалось Running, получено %s", c.State())
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Stop(); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if c.State() != Idle {
		t.Errorf("после Stop ожидалось Idle, получено %s", c.State())
	}
	<-exited
	if exitStats.Reason != ReasonStopped || exitStats.Kind != "hunt" || exitStats.Cycles != 1 {
		t.Errorf("неожиданная статистика %+v", exitStats)
	}
}

func TestSecondSessionRejected(t *testing.T) {
	c := testController(nil)
	started := make(chan struct{})
	if err := c.Start(context.Background(), "hunt", "runescape", blockingCycle(started)); err != nil {
		t.Fatal(err)
	}
	<-started

	err := c.Start(context.Background(), "woodcut", "runescape", func(context.Context, *Session) error { return nil })
	if !errors.Is(err, ErrSessionActive) {
		t.Fatalf("ожидалась ErrSessionActive, получено %v", err)
	}
	stats, ok := c.Active()
	if !ok || stats.Kind != "hunt" || c.State() != Running {
		t.Errorf("первая сессия должна продолжать работу: %+v %s", stats, c.State())
	}
	c.Stop()
}

func TestCycleErrorEndsSession(t *testing.T) {
	c := testController(nil)
	boom := errors.New("boom")
	var gotErr error
	c.OnExit(func(_ Stats, err error) { gotErr = err })

	if err := c.Start(context.Background(), "mine", "runescape", func(context.Context, *Session) error { return boom }); err != nil {
		t.Fatal(err)
	}
	c.Wait()
	if !errors.Is(gotErr, boom) {
		t.Errorf("ожидалась ошибка цикла, получено %v", gotErr)
	}
	if c.State() != Idle {
		t.Errorf("ожидалось Idle, получено %s", c.State())
	}
	// после ошибки можно запустить новую сессию
	if err := c.Start(context.Background(), "mine", "runescape", func(context.Context, *Session) error { return ErrFinished }); err != nil {
		t.Errorf("новая сессия должна стартовать: %v", err)
	}
	c.Wait()
}

func TestPanicEndsSessionOnly(t *testing.T) {
	c := testController(nil)
	var stats Stats
	var gotErr error
	c.OnExit(func(s Stats, err error) { stats, gotErr = s, err })

	c.Start(context.Background(), "swing", "spiderman", func(context.Context, *Session) error {
		panic("сломалось")
	})
	c.Wait()
	if gotErr == nil || stats.Reason != ReasonError {
		t.Errorf("паника должна завершить сессию с ошибкой: %v %+v", gotErr, stats)
	}
	if c.State() != Idle {
		t.Errorf("ожидалось Idle, получено %s", c.State())
	}
}

func TestFinishedSession(t *testing.T) {
	c := testController(nil)
	var stats Stats
	c.OnExit(func(s Stats, _ error) { stats = s })

	c.Start(context.Background(), "woodcut", "runescape", func(_ context.Context, s *Session) error {
		s.AddSuccess()
		if s.Cycle() == 3 {
			return ErrFinished
		}
		return nil
	})
	c.Wait()
	if stats.Cycles != 3 || stats.Successes != 3 || stats.Reason != ReasonFinished {
		t.Errorf("неожиданная статистика %+v", stats)
	}
}

type chanSignals chan struct{}

func (c chanSignals) CancelChan() <-chan struct{} { return c }

func TestCancelKeyStopsSession(t *testing.T) {
	signals := make(chanSignals, 1)
	c := testController(signals)
	var stats Stats
	c.OnExit(func(s Stats, _ error) { stats = s })

	started := make(chan struct{})
	c.Start(context.Background(), "walk", "spiderman", blockingCycle(started))
	<-started
	signals <- struct{}{}
	c.Wait()

	if stats.Reason != ReasonCancelKey {
		t.Errorf("ожидалась причина %s, получено %s", ReasonCancelKey, stats.Reason)
	}
}

func TestStuckDetector(t *testing.T) {
	d := NewStuckDetector(DefaultStuckTolerance, DefaultStuckThreshold)
	p := image.Pt(300, 200)

	if d.Observe(p) {
		t.Fatal("первое наблюдение не может сработать")
	}
	if d.Observe(p) {
		t.Fatal("один повтор меньше порога")
	}
	if !d.Observe(image.Pt(310, 205)) {
		t.Fatal("второй повтор в пределах допуска должен сработать")
	}
	if d.Repeats() != 0 {
		t.Errorf("после срабатывания счетчик сбрасывается, получено %d", d.Repeats())
	}

	d.Observe(p)
	if d.Repeats() != 1 {
		t.Fatalf("ожидался 1 повтор, получено %d", d.Repeats())
	}
	if d.Observe(image.Pt(600, 200)) || d.Repeats() != 0 {
		t.Error("движение сбрасывает счетчик")
	}
}

func TestStuckDetectorExactCount(t *testing.T) {
	for _, threshold := range []int{1, 2, 4} {
		d := NewStuckDetector(DefaultStuckTolerance, threshold)
		fired := 0
		for i := 0; i <= threshold*3; i++ {
			if d.Observe(NoTargetProxy) {
				fired++
			}
		}
		if fired != 3 {
			t.Errorf("порог %d: ожидалось 3 срабатывания, получено %d", threshold, fired)
		}
	}
}

func TestProxy(t *testing.T) {
	if got := Proxy(image.Pt(345, 678)); got != image.Pt(300, 600) {
		t.Errorf("ожидалось (300,600), получено %v", got)
	}
	d := NewStuckDetector(DefaultStuckTolerance, 1)
	d.Observe(Proxy(image.Pt(310, 250)))
	if !d.Observe(Proxy(image.Pt(390, 299))) {
		t.Error("позиции в одной ячейке считаются повтором")
	}
	if d.Observe(Proxy(image.Pt(410, 250))) {
		t.Error("соседняя ячейка не повтор")
	}
}

func TestProxyNegative(t *testing.T) {
	cases := map[image.Point]image.Point{
		image.Pt(-1, -99):   image.Pt(-100, -100),
		image.Pt(-100, 0):   image.Pt(-100, 0),
		image.Pt(-101, 99):  image.Pt(-200, 0),
		image.Pt(-250, -50): image.Pt(-300, -100),
	}
	for in, want := range cases {
		if got := Proxy(in); got != want {
			t.Errorf("%v: ожидалось %v, получено %v", in, want, got)
		}
	}
	if Proxy(image.Pt(-40, 10)) == Proxy(image.Pt(40, 10)) {
		t.Error("точки по разные стороны от нуля в разных ячейках")
	}
}

func TestCooldown(t *testing.T) {
	now := time.Unix(1000, 0)
	c := NewCooldown(500 * time.Millisecond)
	c.now = func() time.Time { return now }

	if !c.Ready() {
		t.Fatal("новый интервал готов сразу")
	}
	c.Mark()
	now = now.Add(200 * time.Millisecond)
	if c.Ready() || c.Remaining() != 300*time.Millisecond {
		t.Errorf("ожидалось ожидание 300ms, осталось %v", c.Remaining())
	}
	now = now.Add(300 * time.Millisecond)
	if !c.Ready() {
		t.Error("интервал должен истечь")
	}
}
