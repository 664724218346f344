// Package metrics счетчики команд, сессий и сканов для Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gamepilot/internal/loop"
	"gamepilot/internal/pipeline"
)

// Metrics набор метрик бота на собственном реестре
type Metrics struct {
	registry *prometheus.Registry

	commands   *prometheus.CounterVec
	sessions   *prometheus.CounterVec
	cycles     *prometheus.CounterVec
	successes  *prometheus.CounterVec
	detections *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// New создает и регистрирует метрики
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamepilot",
			Name:      "commands_total",
			Help:      "Выполненные команды по игре и результату.",
		}, []string{"game", "success"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamepilot",
			Name:      "sessions_total",
			Help:      "Завершенные сессии по виду и причине остановки.",
		}, []string{"kind", "reason"}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamepilot",
			Name:      "session_cycles_total",
			Help:      "Циклы завершенных сессий.",
		}, []string{"kind"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamepilot",
			Name:      "session_successes_total",
			Help:      "Успешные циклы завершенных сессий.",
		}, []string{"kind"}),
		detections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamepilot",
			Name:      "detections_total",
			Help:      "Распознанные объекты по категориям.",
		}, []string{"category"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gamepilot",
			Name:      "session_duration_seconds",
			Help:      "Длительность сессий.",
			Buckets:   []float64{10, 30, 60, 300, 900, 1800, 3600},
		}, []string{"kind"}),
	}
	m.registry.MustRegister(m.commands, m.sessions, m.cycles, m.successes, m.detections, m.duration)
	return m
}

// ObserveCommand учитывает команду
func (m *Metrics) ObserveCommand(game string, ok bool) {
	m.commands.WithLabelValues(game, strconv.FormatBool(ok)).Inc()
}

// ObserveSession учитывает завершенную сессию
func (m *Metrics) ObserveSession(stats loop.Stats) {
	m.sessions.WithLabelValues(stats.Kind, stats.Reason).Inc()
	m.cycles.WithLabelValues(stats.Kind).Add(float64(stats.Cycles))
	m.successes.WithLabelValues(stats.Kind).Add(float64(stats.Successes))
	if !stats.StoppedAt.IsZero() {
		m.duration.WithLabelValues(stats.Kind).Observe(stats.StoppedAt.Sub(stats.StartedAt).Seconds())
	}
}

// ObserveScan учитывает объекты скана
func (m *Metrics) ObserveScan(scan *pipeline.Scan) {
	for _, d := range scan.Detections {
		m.detections.WithLabelValues(d.Category).Inc()
	}
}

// Handler отдает метрики в формате Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve поднимает /metrics на addr до отмены ctx
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
