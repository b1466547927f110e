package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics - метрики обработки сообщений бота
type Metrics struct {
	registry *prometheus.Registry
	messages *prometheus.CounterVec
	duration *prometheus.HistogramVec
	sessions prometheus.Gauge
}

// NewMetrics регистрирует коллекторы в собственном реестре
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	messages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_messages_total",
		Help: "Total number of incoming text messages by dispatch route",
	}, []string{"route"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bot_handler_duration_seconds",
		Help:    "Duration of message handling in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bot_sessions_active",
		Help: "Number of sessions kept in memory",
	})

	registry.MustRegister(messages, duration, sessions)

	return &Metrics{
		registry: registry,
		messages: messages,
		duration: duration,
		sessions: sessions,
	}
}

// ObserveMessage учитывает одно обработанное сообщение
func (m *Metrics) ObserveMessage(route string, d time.Duration) {
	m.messages.WithLabelValues(route).Inc()
	m.duration.WithLabelValues(route).Observe(d.Seconds())
}

// SetSessions обновляет число сессий
func (m *Metrics) SetSessions(count int) {
	m.sessions.Set(float64(count))
}

// Handler отдаёт метрики в формате Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve поднимает HTTP-сервер метрик и останавливает его при отмене ctx
func (m *Metrics) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shutdown metrics server", zap.Error(err))
		}
	}()

	logger.Info("Metrics server started", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics: %w", err)
	}
	return nil
}
