package telemetry

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	labelEntity = "entity"
	labelID     = "id"
	labelName   = "name"
	labelState  = "state"
	labelTo     = "to"
)

// Metrics — Prometheus метрики CLI.
//
// Регистрируются в собственном реестре, а не в глобальном:
// одна команда — один реестр.
type Metrics struct {
	Registry *prometheus.Registry

	// APIRequests — запросы к backend'у по методу и коду ответа.
	APIRequests *prometheus.CounterVec

	// APIRequestDuration — длительность запросов к backend'у.
	APIRequestDuration *prometheus.HistogramVec

	// APIInFlight — запросы в процессе выполнения.
	APIInFlight prometheus.Gauge

	// EntityState — текущее состояние сущности (state-set: 1 у текущего состояния).
	EntityState *prometheus.GaugeVec

	// StatusChanges — число наблюдённых переходов по типу сущности и новому состоянию.
	StatusChanges *prometheus.CounterVec

	// WatchTicks — число опросов watch.
	WatchTicks prometheus.Counter

	// WatchErrors — опросы, завершившиеся ошибкой.
	WatchErrors prometheus.Counter

	mu     sync.Mutex
	states map[string]entityLabels
}

// entityLabels — изменяемые метки серии garden_entity_state.
type entityLabels struct {
	name  string
	state string
}

// NewMetrics создаёт и регистрирует метрики в новом реестре.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		APIRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "garden_api_requests_total",
				Help: "Total HTTP requests sent to the garden API",
			},
			[]string{"code", "method"},
		),
		APIRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "garden_api_request_duration_seconds",
				Help:    "Duration of garden API requests in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		APIInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "garden_api_requests_in_flight",
			Help: "Garden API requests currently in flight",
		}),
		EntityState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "garden_entity_state",
				Help: "Current state of a watched plant or worker (1 for the active state)",
			},
			[]string{labelEntity, labelID, labelName, labelState},
		),
		StatusChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "garden_status_changes_total",
				Help: "Observed status transitions by entity kind and new state",
			},
			[]string{labelEntity, labelTo},
		),
		WatchTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "garden_watch_ticks_total",
			Help: "Total watch polling ticks",
		}),
		WatchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "garden_watch_errors_total",
			Help: "Watch polling ticks that failed",
		}),
		states: make(map[string]entityLabels),
	}

	m.Registry.MustRegister(
		m.APIRequests,
		m.APIRequestDuration,
		m.APIInFlight,
		m.EntityState,
		m.StatusChanges,
		m.WatchTicks,
		m.WatchErrors,
	)
	return m
}

// InstrumentTransport оборачивает RoundTripper счётчиками запросов.
func (m *Metrics) InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	return promhttp.InstrumentRoundTripperInFlight(m.APIInFlight,
		promhttp.InstrumentRoundTripperCounter(m.APIRequests,
			promhttp.InstrumentRoundTripperDuration(m.APIRequestDuration, next),
		),
	)
}

// SetState выставляет текущее состояние сущности.
// Серия с прежним именем или состоянием удаляется.
func (m *Metrics) SetState(entity string, id int, name, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := entity + "/" + strconv.Itoa(id)
	next := entityLabels{name: name, state: state}
	if prev, ok := m.states[key]; ok && prev != next {
		m.deleteEntity(entity, id)
	}
	m.states[key] = next
	m.EntityState.WithLabelValues(entity, strconv.Itoa(id), name, state).Set(1)
}

// Forget удаляет все серии сущности, пропавшей из опроса.
func (m *Metrics) Forget(entity string, id int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.states, entity+"/"+strconv.Itoa(id))
	m.deleteEntity(entity, id)
}

func (m *Metrics) deleteEntity(entity string, id int) {
	m.EntityState.DeletePartialMatch(prometheus.Labels{
		labelEntity: entity,
		labelID:     strconv.Itoa(id),
	})
}

// RecordChange увеличивает счётчик переходов.
func (m *Metrics) RecordChange(entity, to string) {
	m.StatusChanges.WithLabelValues(entity, to).Inc()
}

// Handler возвращает HTTP handler для /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
