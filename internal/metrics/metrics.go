// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AttendanceOutcomes counts workflow runs by terminal state.
	AttendanceOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rollcall_attendance_outcomes_total",
		Help: "Attendance workflow runs by outcome.",
	}, []string{"outcome"})

	// Registrations counts successful registration batches.
	Registrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rollcall_registrations_total",
		Help: "Successful student registrations.",
	})

	// Logins counts successful logins.
	Logins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rollcall_logins_total",
		Help: "Successful student logins.",
	})
)
