// Package timing содержит прерываемые паузы и случайные задержки.
package timing

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Sleeper пауза, прерываемая отменой контекста
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep ждет d или отмены ctx
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Range интервал случайной задержки [Min, Max]
type Range struct {
	Min time.Duration
	Max time.Duration
}

// Rand потокобезопасный генератор для джиттера
type Rand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand создает генератор с заданным seed
func NewRand(seed int64) *Rand {
	return &Rand{r: rand.New(rand.NewSource(seed))}
}

// Duration случайная длительность из интервала
func (g *Rand) Duration(rg Range) time.Duration {
	if rg.Max <= rg.Min {
		return rg.Min
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return rg.Min + time.Duration(g.r.Int63n(int64(rg.Max-rg.Min)+1))
}

// IntBetween случайное целое из [lo, hi]
func (g *Rand) IntBetween(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return lo + g.r.Intn(hi-lo+1)
}

// Chance возвращает true с вероятностью p
func (g *Rand) Chance(p float64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.r.Float64() < p
}
