package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop reasons for outbound frames.
const (
	DropNotOpen = "not_open"
	DropBusy    = "busy"
)

// Ignore reasons for inbound frames.
const (
	IgnoredMalformed   = "malformed"
	IgnoredUnknownType = "unknown_type"
	IgnoredBinary      = "binary_frame"
)

var (
	// Session metrics
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hyprlingo_active_sessions",
		Help: "Number of sessions currently streaming",
	})

	sessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyprlingo_sessions_started_total",
		Help: "Sessions that reached the active state",
	})

	sessionsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hyprlingo_sessions_failed_total",
		Help: "Sessions that failed to start or ended on a transport error",
	}, []string{"stage"}) // stage: "connect", "capture", "transport"

	sessionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hyprlingo_session_duration_seconds",
		Help:    "Wall-clock length of active sessions",
		Buckets: []float64{5, 15, 30, 60, 300, 900, 1800, 3600},
	})

	// Audio metrics
	framesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyprlingo_frames_sent_total",
		Help: "PCM frames written to the recognizer",
	})

	framesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hyprlingo_frames_dropped_total",
		Help: "PCM frames dropped by the backpressure policy",
	}, []string{"reason"})

	audioBytesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyprlingo_audio_bytes_sent_total",
		Help: "PCM bytes written to the recognizer",
	})

	// Inbound metrics
	inboundMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hyprlingo_inbound_messages_total",
		Help: "Inbound events applied, by kind",
	}, []string{"kind"})

	inboundIgnored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hyprlingo_inbound_ignored_total",
		Help: "Inbound frames ignored by the fail-open dispatcher",
	}, []string{"reason"})

	transportErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyprlingo_transport_errors_total",
		Help: "Connections that ended with an error",
	})

	languageLockStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hyprlingo_language_lock_status",
		Help: "Language lock status (0=detecting, 1=mismatch, 2=final)",
	})
)

// SessionMetrics tracks one session from connect to teardown.
type SessionMetrics struct {
	sessionID string
	activeAt  time.Time
}

func NewSessionMetrics(sessionID string) *SessionMetrics {
	return &SessionMetrics{sessionID: sessionID}
}

// RecordActive marks the session as streaming.
func (m *SessionMetrics) RecordActive() {
	m.activeAt = time.Now()
	activeSessions.Inc()
	sessionsStarted.Inc()
}

// RecordEnd closes out an active session. It is a no-op for sessions that
// never became active.
func (m *SessionMetrics) RecordEnd() {
	if m.activeAt.IsZero() {
		return
	}
	activeSessions.Dec()
	sessionDuration.Observe(time.Since(m.activeAt).Seconds())
	m.activeAt = time.Time{}
}

func (m *SessionMetrics) RecordFailed(stage string) {
	sessionsFailed.WithLabelValues(stage).Inc()
}

func RecordFrameSent(bytes int) {
	framesSent.Inc()
	audioBytesSent.Add(float64(bytes))
}

func RecordFrameDropped(reason string) {
	framesDropped.WithLabelValues(reason).Inc()
}

func RecordInbound(kind string) {
	inboundMessages.WithLabelValues(kind).Inc()
}

func RecordIgnored(reason string) {
	inboundIgnored.WithLabelValues(reason).Inc()
}

func RecordTransportError() {
	transportErrors.Inc()
}

func SetLockStatus(status int) {
	languageLockStatus.Set(float64(status))
}
