// Package loop запускает непрерывные циклы "найти цель, выполнить действие"
// и гарантирует, что одновременно активна только одна сессия.
package loop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"gamepilot/internal/logger"
)

var (
	ErrSessionActive = errors.New("уже запущена другая сессия")
	// ErrFinished цикл сообщает, что сессия выполнила свою задачу
	ErrFinished = errors.New("сессия завершена")
)

// State состояние контроллера
type State int

const (
	Idle State = iota
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return "idle"
	}
}

// Причины остановки сессии
const (
	ReasonStopped   = "stopped"
	ReasonCancelKey = "cancel_key"
	ReasonFinished  = "finished"
	ReasonError     = "error"
)

// Cycle один проход цикла. Ошибка, кроме ErrFinished, завершает сессию.
type Cycle func(ctx context.Context, s *Session) error

// CancelSource источник сигналов отмены, например горячих клавиш
type CancelSource interface {
	CancelChan() <-chan struct{}
}

// ExitFunc вызывается после завершения каждой сессии
type ExitFunc func(stats Stats, err error)

// Controller владеет единственной активной сессией
type Controller struct {
	logger  *logger.LoggerManager
	signals CancelSource

	stuckTolerance float64
	stuckThreshold int

	mu      sync.Mutex
	state   State
	session *Session
	cancel  context.CancelFunc
	done    chan struct{}
	onExit  ExitFunc
}

// NewController создает новый экземпляр Controller. signals может быть nil.
func NewController(loggerManager *logger.LoggerManager, signals CancelSource) *Controller {
	return &Controller{
		logger:         loggerManager,
		signals:        signals,
		stuckTolerance: DefaultStuckTolerance,
		stuckThreshold: DefaultStuckThreshold,
	}
}

// SetStuckParams задает допуск и порог детектора застревания для новых сессий
func (c *Controller) SetStuckParams(tolerance float64, threshold int) {
	c.mu.Lock()
	c.stuckTolerance, c.stuckThreshold = tolerance, threshold
	c.mu.Unlock()
}

// OnExit задает обработчик завершения сессий
func (c *Controller) OnExit(fn ExitFunc) {
	c.mu.Lock()
	c.onExit = fn
	c.mu.Unlock()
}

// State текущее состояние
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Active статистика активной сессии
func (c *Controller) Active() (Stats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Stats{}, false
	}
	return c.session.Stats(), true
}

// Start запускает сессию kind. Пока другая сессия не вернулась в Idle, старт отклоняется.
func (c *Controller) Start(parent context.Context, kind, game string, cycle Cycle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Idle {
		return fmt.Errorf("%w: %s", ErrSessionActive, c.session.Kind)
	}

	ctx, cancel := context.WithCancel(parent)
	s := newSession(kind, game, NewStuckDetector(c.stuckTolerance, c.stuckThreshold))
	c.state = Running
	c.session = s
	c.cancel = cancel
	c.done = make(chan struct{})

	c.logger.Info("▶️ Запуск сессии %s (%s)", kind, game)
	go c.run(ctx, cancel, s, cycle, c.done)
	return nil
}

// Stop останавливает сессию и ждет завершения воркера. На Idle ничего не делает.
// Не вызывать из самого цикла.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if c.state == Idle {
		c.mu.Unlock()
		return nil
	}
	c.session.setReason(ReasonStopped)
	c.cancel()
	done := c.done
	c.mu.Unlock()

	<-done
	return nil
}

// Wait ждет завершения текущей сессии
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, s *Session, cycle Cycle, done chan struct{}) {
	var listener conc.WaitGroup
	listener.Go(func() { c.listen(ctx, cancel, s) })

	var runErr error
	var worker conc.WaitGroup
	worker.Go(func() { runErr = c.cycles(ctx, s, cycle) })
	if r := worker.WaitAndRecover(); r != nil {
		runErr = fmt.Errorf("паника в цикле %s: %v", s.Kind, r.Value)
	}
	if runErr != nil {
		s.setReason(ReasonError)
	}

	c.setState(Stopping)
	cancel()
	listener.Wait()

	stats := s.finish()
	if runErr != nil {
		c.logger.LogError(runErr, fmt.Sprintf("Сессия %s остановлена с ошибкой", s.Kind))
	} else {
		c.logger.Info("⏹️ Сессия %s завершена (%s): %d/%d успешных циклов",
			s.Kind, stats.Reason, stats.Successes, stats.Cycles)
	}

	c.mu.Lock()
	c.state = Idle
	c.session = nil
	c.cancel = nil
	onExit := c.onExit
	c.mu.Unlock()

	if onExit != nil {
		onExit(stats, runErr)
	}
	close(done)
}

func (c *Controller) cycles(ctx context.Context, s *Session, cycle Cycle) error {
	for ctx.Err() == nil {
		n := s.nextCycle()
		c.logger.Debug("🔁 %s: цикл #%d", s.Kind, n)

		err := cycle(ctx, s)
		switch {
		case errors.Is(err, ErrFinished):
			s.setReason(ReasonFinished)
			return nil
		case ctx.Err() != nil:
			return nil
		case err != nil:
			return err
		}
	}
	return nil
}

// listen переводит сигналы отмены в отмену контекста сессии
func (c *Controller) listen(ctx context.Context, cancel context.CancelFunc, s *Session) {
	if c.signals == nil {
		return
	}
	select {
	case <-ctx.Done():
	case <-c.signals.CancelChan():
		c.logger.Info("🛑 Клавиша отмены: останавливаем %s", s.Kind)
		s.setReason(ReasonCancelKey)
		cancel()
	}
}

func (c *Controller) setState(st State) {
	c.mu.Lock()
	c.state = st
	c.mu.Unlock()
}

// Stats итог сессии
type Stats struct {
	Kind      string
	Game      string
	Cycles    int
	Successes int
	StartedAt time.Time
	StoppedAt time.Time
	Reason    string
}

// Session состояние одной непрерывной операции
type Session struct {
	Kind string
	Game string

	mu         sync.Mutex
	cycles     int
	successes  int
	lastAction time.Time
	startedAt  time.Time
	stoppedAt  time.Time
	reason     string

	// Stuck хранит позиционный прокси между циклами
	Stuck *StuckDetector
}

// NewSession сессия вне контроллера, например для пошагового прогона цикла
func NewSession(kind, game string) *Session {
	return newSession(kind, game, NewStuckDetector(DefaultStuckTolerance, DefaultStuckThreshold))
}

func newSession(kind, game string, stuck *StuckDetector) *Session {
	return &Session{
		Kind:      kind,
		Game:      game,
		startedAt: time.Now(),
		Stuck:     stuck,
	}
}

func (s *Session) nextCycle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycles++
	return s.cycles
}

// Cycle номер текущего цикла
func (s *Session) Cycle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycles
}

// AddSuccess отмечает успешное действие. Действие без фокуса успехом не считается.
func (s *Session) AddSuccess() {
	s.mu.Lock()
	s.successes++
	s.lastAction = time.Now()
	s.mu.Unlock()
}

// LastAction время последнего успешного действия
func (s *Session) LastAction() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAction
}

// setReason запоминает первую причину остановки
func (s *Session) setReason(r string) {
	s.mu.Lock()
	if s.reason == "" {
		s.reason = r
	}
	s.mu.Unlock()
}

func (s *Session) finish() Stats {
	s.mu.Lock()
	s.stoppedAt = time.Now()
	if s.reason == "" {
		s.reason = ReasonFinished
	}
	s.mu.Unlock()
	return s.Stats()
}

// Stats снимок счетчиков
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Kind:      s.Kind,
		Game:      s.Game,
		Cycles:    s.cycles,
		Successes: s.successes,
		StartedAt: s.startedAt,
		StoppedAt: s.stoppedAt,
		Reason:    s.reason,
	}
}
