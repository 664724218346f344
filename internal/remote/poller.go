// Package remote выполняет команды, поставленные в очередь actions из другой машины.
package remote

import (
	"context"
	"fmt"
	"time"

	"gamepilot/internal/commands"
	"gamepilot/internal/logger"
)

// DefaultInterval период опроса очереди
const DefaultInterval = 2 * time.Second

// Результаты выполнения действия
const (
	ResultOK      = "ok"
	ResultFailed  = "failed"
	ResultIgnored = "ignored"
)

// Queue очередь удаленных действий
type Queue interface {
	GetLatestUnexecutedAction(ctx context.Context) (string, int, error)
	MarkActionAsExecuted(ctx context.Context, id int, result string) error
	UpdateStatus(ctx context.Context, status string) error
}

// Runner исполнитель текстовых команд
type Runner interface {
	Process(ctx context.Context, text string) bool
}

// Poller опрашивает очередь и передает действия процессору команд
type Poller struct {
	queue    Queue
	runner   Runner
	interval time.Duration
	logger   *logger.LoggerManager
}

// NewPoller создает новый экземпляр Poller
func NewPoller(queue Queue, runner Runner, interval time.Duration, loggerManager *logger.LoggerManager) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{queue: queue, runner: runner, interval: interval, logger: loggerManager}
}

// Run опрашивает очередь до отмены ctx. Ошибки базы не останавливают опрос.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("📡 Удаленные команды: опрос каждые %v", p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.Poll(ctx); err != nil && ctx.Err() == nil {
				p.logger.LogError(err, "Ошибка опроса удаленных команд")
			}
		}
	}
}

// Poll выполняет одно действие из очереди. false значит очередь пуста.
func (p *Poller) Poll(ctx context.Context) (bool, error) {
	action, id, err := p.queue.GetLatestUnexecutedAction(ctx)
	if err != nil {
		return false, err
	}
	if id == 0 {
		return false, nil
	}

	p.logger.Info("📨 Удаленная команда #%d: %s", id, action)
	result := ResultIgnored
	switch {
	case commands.IsExit(action):
		p.logger.Warn("⚠️ Выход из консоли удаленно не выполняется")
	case p.runner.Process(ctx, action):
		result = ResultOK
	default:
		result = ResultFailed
	}

	if err := p.queue.MarkActionAsExecuted(ctx, id, result); err != nil {
		return true, err
	}
	if err := p.queue.UpdateStatus(ctx, fmt.Sprintf("%s: %s", commands.Normalize(action), result)); err != nil {
		return true, err
	}
	return true, nil
}
