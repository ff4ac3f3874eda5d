package observer

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	name   string
	mu     sync.Mutex
	events []ScanEvent
}

func (r *recordingObserver) OnEvent(_ context.Context, event ScanEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingObserver) GetObserverName() string { return r.name }

func (r *recordingObserver) Events() []ScanEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ScanEvent(nil), r.events...)
}

type panickingObserver struct{}

func (panickingObserver) OnEvent(context.Context, ScanEvent) { panic("boom") }
func (panickingObserver) GetObserverName() string            { return "panicking" }

func TestEventPublisher_NotifiesAllObservers(t *testing.T) {
	publisher := NewEventPublisher()
	first := &recordingObserver{name: "first"}
	second := &recordingObserver{name: "second"}
	publisher.Subscribe(first)
	publisher.Subscribe(panickingObserver{})
	publisher.Subscribe(second)

	publisher.NotifyObservers(context.Background(), ScanEvent{EventType: BarcodeDetected, Barcode: "STU1"})
	publisher.Wait()

	for _, obs := range []*recordingObserver{first, second} {
		events := obs.Events()
		require.Len(t, events, 1, obs.name)
		assert.Equal(t, "STU1", events[0].Barcode)
		assert.False(t, events[0].Timestamp.IsZero(), "timestamp is filled in")
	}
}

func TestEventPublisher_Unsubscribe(t *testing.T) {
	publisher := NewEventPublisher()
	obs := &recordingObserver{name: "only"}
	publisher.Subscribe(obs)
	publisher.Unsubscribe(obs)

	publisher.NotifyObservers(context.Background(), ScanEvent{EventType: ScanStarted})
	publisher.Wait()

	assert.Empty(t, obs.Events())
}

func TestEventPublisher_IgnoresCancellation(t *testing.T) {
	publisher := NewEventPublisher()
	obs := &recordingObserver{name: "ctx"}
	var seen error
	publisher.Subscribe(observerFunc(func(ctx context.Context, e ScanEvent) {
		seen = ctx.Err()
		obs.OnEvent(ctx, e)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	publisher.NotifyObservers(ctx, ScanEvent{EventType: ScanFailed})
	publisher.Wait()

	assert.NoError(t, seen)
	assert.Len(t, obs.Events(), 1)
}

type observerFunc func(context.Context, ScanEvent)

func (f observerFunc) OnEvent(ctx context.Context, e ScanEvent) { f(ctx, e) }
func (f observerFunc) GetObserverName() string                  { return "func" }

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)

	NewLoggingObserver(log).OnEvent(context.Background(), ScanEvent{
		EventType:      BarcodeDetected,
		RequestID:      "req-1",
		Barcode:        "STU12345",
		Attempts:       []string{"direct", "grayscale"},
		ProcessingTime: 5 * time.Millisecond,
		Success:        true,
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Barcode detected", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "STU12345", entry["barcode"])
	assert.Equal(t, []interface{}{"direct", "grayscale"}, entry["attempts"])
}

func TestLoggingObserver_FailureIsError(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	NewLoggingObserver(log).OnEvent(context.Background(), ScanEvent{
		EventType:    ScanFailed,
		ErrorMessage: "image payload is not valid base64",
	})

	out := buf.String()
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, "not valid base64")
}

func TestPrometheusObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := NewPrometheusObserver(reg)
	require.NoError(t, err)
	ctx := context.Background()

	obs.OnEvent(ctx, ScanEvent{EventType: BarcodeDetected, Attempts: []string{"direct"}, ProcessingTime: 10 * time.Millisecond})
	obs.OnEvent(ctx, ScanEvent{EventType: BarcodeNotFound, Attempts: []string{"direct", "grayscale"}})
	obs.OnEvent(ctx, ScanEvent{EventType: ScanFailed})
	obs.OnEvent(ctx, ScanEvent{EventType: ProfileLookup, Result: ResultFound})
	obs.OnEvent(ctx, ScanEvent{EventType: ProfileLookup, Result: ResultNotFound})
	obs.OnEvent(ctx, ScanEvent{EventType: LanguageUpdated, Success: true})
	obs.OnEvent(ctx, ScanEvent{EventType: ScanStarted})

	assert.Equal(t, 1.0, testutil.ToFloat64(obs.scans.WithLabelValues(OutcomeDetected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.scans.WithLabelValues(OutcomeNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.scans.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, 2.0, testutil.ToFloat64(obs.attempts.WithLabelValues("direct")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.attempts.WithLabelValues("grayscale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.profileLookups.WithLabelValues(ResultFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.languageUpdates))

	expected := `
# HELP student_scanner_profile_lookups_total Student record lookups by result.
# TYPE student_scanner_profile_lookups_total counter
student_scanner_profile_lookups_total{result="found"} 1
student_scanner_profile_lookups_total{result="not_found"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "student_scanner_profile_lookups_total"))
}

func TestPrometheusObserver_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusObserver(reg)
	require.NoError(t, err)

	_, err = NewPrometheusObserver(reg)
	assert.Error(t, err)
}
