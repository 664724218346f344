package loop

import (
	"image"
	"math"
	"sync"
	"time"
)

const (
	DefaultStuckTolerance = 50
	DefaultStuckThreshold = 2
	// ProxyBucket размер ячейки, до которой огрубляется позиция цели
	ProxyBucket = 100
)

// NoTargetProxy прокси для кадра, в котором нет ни одной цели
var NoTargetProxy = image.Pt(999*ProxyBucket, 999*ProxyBucket)

// Proxy огрубляет экранную позицию ближайшей цели до ячейки ProxyBucket.
// Округление вниз, поэтому отрицательные координаты не попадают в ячейку нуля.
func Proxy(p image.Point) image.Point {
	return image.Pt(floorBucket(p.X), floorBucket(p.Y))
}

func floorBucket(v int) int {
	q := v / ProxyBucket
	if v%ProxyBucket != 0 && v < 0 {
		q--
	}
	return q * ProxyBucket
}

// StuckDetector срабатывает, когда прокси не меняется Threshold циклов подряд
type StuckDetector struct {
	Tolerance float64
	Threshold int

	mu      sync.Mutex
	last    image.Point
	hasLast bool
	repeats int
}

// NewStuckDetector создает новый экземпляр StuckDetector
func NewStuckDetector(tolerance float64, threshold int) *StuckDetector {
	if threshold < 1 {
		threshold = 1
	}
	return &StuckDetector{Tolerance: tolerance, Threshold: threshold}
}

// Observe учитывает очередной прокси. true означает, что нужно корректирующее действие;
// после срабатывания счетчик обнуляется.
func (d *StuckDetector) Observe(p image.Point) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	similar := d.hasLast && distance(p, d.last) < d.Tolerance
	d.last, d.hasLast = p, true
	if !similar {
		d.repeats = 0
		return false
	}
	d.repeats++
	if d.repeats >= d.Threshold {
		d.repeats = 0
		return true
	}
	return false
}

// Repeats текущее число повторов подряд
func (d *StuckDetector) Repeats() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.repeats
}

// Reset забывает историю
func (d *StuckDetector) Reset() {
	d.mu.Lock()
	d.hasLast = false
	d.repeats = 0
	d.mu.Unlock()
}

func distance(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// Cooldown минимальный интервал между действиями одного вида
type Cooldown struct {
	Interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last time.Time
}

// NewCooldown создает новый экземпляр Cooldown
func NewCooldown(interval time.Duration) *Cooldown {
	return &Cooldown{Interval: interval, now: time.Now}
}

// Ready true, если интервал с последнего действия истек
func (c *Cooldown) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last.IsZero() || c.now().Sub(c.last) >= c.Interval
}

// Remaining сколько осталось ждать
func (c *Cooldown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last.IsZero() {
		return 0
	}
	if left := c.Interval - c.now().Sub(c.last); left > 0 {
		return left
	}
	return 0
}

// Mark отмечает выполненное действие
func (c *Cooldown) Mark() {
	c.mu.Lock()
	c.last = c.now()
	c.mu.Unlock()
}
