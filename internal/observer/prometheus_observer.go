package observer

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// Scan outcomes used as the outcome label
const (
	OutcomeDetected = "detected"
	OutcomeNotFound = "not_found"
	OutcomeFailed   = "failed"
)

// PrometheusObserver turns scan events into Prometheus metrics
type PrometheusObserver struct {
	scans           *prometheus.CounterVec
	attempts        *prometheus.CounterVec
	duration        prometheus.Histogram
	profileLookups  *prometheus.CounterVec
	languageUpdates prometheus.Counter
}

// NewPrometheusObserver creates the collectors and registers them on reg
func NewPrometheusObserver(reg prometheus.Registerer) (*PrometheusObserver, error) {
	o := &PrometheusObserver{
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "student_scanner_scans_total",
			Help: "Barcode scans by outcome.",
		}, []string{"outcome"}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "student_scanner_decode_attempts_total",
			Help: "Decode attempts made by the fallback chain.",
		}, []string{"attempt"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "student_scanner_scan_duration_seconds",
			Help:    "Time spent scanning one photo.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		profileLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "student_scanner_profile_lookups_total",
			Help: "Student record lookups by result.",
		}, []string{"result"}),
		languageUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "student_scanner_language_updates_total",
			Help: "Language preference updates applied.",
		}),
	}

	for _, c := range []prometheus.Collector{o.scans, o.attempts, o.duration, o.profileLookups, o.languageUpdates} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// OnEvent updates the collectors for the event
func (o *PrometheusObserver) OnEvent(_ context.Context, event ScanEvent) {
	switch event.EventType {
	case BarcodeDetected:
		o.observeScan(OutcomeDetected, event)
	case BarcodeNotFound:
		o.observeScan(OutcomeNotFound, event)
	case ScanFailed:
		o.observeScan(OutcomeFailed, event)
	case ProfileLookup:
		if event.Result != "" {
			o.profileLookups.WithLabelValues(event.Result).Inc()
		}
	case LanguageUpdated:
		if event.Success {
			o.languageUpdates.Inc()
		}
	}
}

func (o *PrometheusObserver) observeScan(outcome string, event ScanEvent) {
	o.scans.WithLabelValues(outcome).Inc()
	for _, attempt := range event.Attempts {
		o.attempts.WithLabelValues(attempt).Inc()
	}
	o.duration.Observe(event.ProcessingTime.Seconds())
}

// GetObserverName returns the observer name
func (o *PrometheusObserver) GetObserverName() string {
	return "prometheus_observer"
}
