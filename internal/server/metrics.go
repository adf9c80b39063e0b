package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bigform_http_requests_total",
			Help: "Total number of HTTP requests by method and status code",
		},
		[]string{"method", "code"},
	)

	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bigform_submissions_total",
			Help: "Form submissions by outcome",
		},
		[]string{"result"},
	)

	resumeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bigform_resume_bytes",
			Help:    "Size of uploaded resume files in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)

	unknownFieldsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bigform_unknown_fields_total",
			Help: "Posted form fields ignored because they are not part of the form schema",
		},
	)
)

// Submission outcomes used as the result label.
const (
	resultAccepted   = "accepted"
	resultBadRequest = "bad_request"
	resultTooLarge   = "too_large"
)
