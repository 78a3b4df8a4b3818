package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "nestflow"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		},
		[]string{"route", "code"},
	)

	reservationOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservation_outcomes_total",
			Help:      "Reservation attempts and status changes by outcome.",
		},
		[]string{"outcome"},
	)

	ledgerTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_tasks_total",
			Help:      "Ledger sync tasks by type and result.",
		},
		[]string{"task_type", "result"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Property details cache lookups.",
		},
		[]string{"result"},
	)

	domainEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_events_total",
			Help:      "Domain events published on the in-process bus.",
		},
		[]string{"event"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, reservationOutcomes, ledgerTasks, cacheLookups, domainEvents)
	})
}

// IncHTTP counts one finished request.
func IncHTTP(route string, code int) {
	httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// IncReservation counts outcomes such as created, conflict, confirmed or cancelled.
func IncReservation(outcome string) {
	reservationOutcomes.WithLabelValues(outcome).Inc()
}

func IncLedgerTask(taskType, result string) {
	ledgerTasks.WithLabelValues(taskType, result).Inc()
}

func IncCache(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

func IncEvent(eventType string) {
	domainEvents.WithLabelValues(eventType).Inc()
}
