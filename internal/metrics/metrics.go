// Package metrics exposes Prometheus collectors for the vacancy crawler.
// The crawler is a short-lived batch job, so collectors are pushed to a
// Pushgateway once a sweep finishes instead of being scraped.
package metrics

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Vacancy persistence outcomes.
const (
	OutcomeInserted  = "inserted"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

var (
	apiRequestsTotal        *prometheus.CounterVec
	apiRequestDuration      *prometheus.HistogramVec
	tokenRefreshTotal       *prometheus.CounterVec
	pagesFetchedTotal       prometheus.Counter
	vacanciesStoredTotal    *prometheus.CounterVec
	notificationsTotal      *prometheus.CounterVec
	lastRunDurationSeconds  prometheus.Gauge
	lastRunSuccessTimestamp prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		apiRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hh_api_requests_total",
				Help: "Total number of upstream API requests, labeled by route and status code.",
			},
			[]string{"route", "code"},
		)

		apiRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hh_api_request_duration_seconds",
				Help:    "Histogram of upstream API latencies, labeled by route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"route"},
		)

		tokenRefreshTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hh_token_refresh_total",
				Help: "Total number of access token refresh attempts, labeled by result.",
			},
			[]string{"result"},
		)

		pagesFetchedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "hh_pages_fetched_total",
				Help: "Total number of vacancy result pages fetched.",
			},
		)

		vacanciesStoredTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hh_vacancies_stored_total",
				Help: "Total number of vacancies processed by the store, labeled by area and outcome.",
			},
			[]string{"area", "outcome"},
		)

		notificationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hh_notifications_total",
				Help: "Total number of progress notifications, labeled by result.",
			},
			[]string{"result"},
		)

		lastRunDurationSeconds = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "hh_last_run_duration_seconds",
				Help: "Duration of the most recent sweep.",
			},
		)

		lastRunSuccessTimestamp = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "hh_last_run_success_timestamp_seconds",
				Help: "Unix time of the most recent sweep that ran to completion.",
			},
		)
	})
}

// ObserveAPIRequest counts an upstream request. code 0 marks a transport failure.
func ObserveAPIRequest(route string, code int, duration time.Duration) {
	Init()
	apiRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	apiRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// ObserveTokenRefresh counts a refresh attempt.
func ObserveTokenRefresh(success bool) {
	Init()
	result := "failure"
	if success {
		result = "success"
	}
	tokenRefreshTotal.WithLabelValues(result).Inc()
}

// ObservePage counts one fetched result page.
func ObservePage() {
	Init()
	pagesFetchedTotal.Inc()
}

// ObserveVacancies adds n vacancies with the given outcome for an area.
func ObserveVacancies(area, outcome string, n int) {
	Init()
	if n <= 0 {
		return
	}
	vacanciesStoredTotal.WithLabelValues(area, outcome).Add(float64(n))
}

// ObserveNotification counts a notification delivery attempt.
func ObserveNotification(err error) {
	Init()
	result := "sent"
	if err != nil {
		result = "failed"
	}
	notificationsTotal.WithLabelValues(result).Inc()
}

// ObserveRun records the duration of a sweep and, when it completed, the
// completion time.
func ObserveRun(duration time.Duration, completed bool, at time.Time) {
	Init()
	lastRunDurationSeconds.Set(duration.Seconds())
	if completed {
		lastRunSuccessTimestamp.Set(float64(at.Unix()))
	}
}

// Push sends every registered collector to the Pushgateway at url under job.
func Push(ctx context.Context, url, job string) error {
	Init()
	pusher := push.New(url, job).Gatherer(prometheus.DefaultGatherer)
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
