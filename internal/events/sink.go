package events

import (
	"context"
	"encoding/json"

	"github.com/tessara-dev/adms-core/internal/infrastructure/logging"
	"github.com/tessara-dev/adms-core/internal/infrastructure/mqtt"
)

// Sink receives emitted events.
//
// Emission is strictly fire-and-forget: sinks swallow and log their own
// failures, so a broken broker or time-series store can never fail a
// protocol request. Components receive a Sink via their constructor; there
// is no package-level emitter.
type Sink interface {
	Emit(ctx context.Context, e Event)
}

// Nop is a sink that discards everything. Useful default and test double.
type Nop struct{}

// Emit discards the event.
func (Nop) Emit(context.Context, Event) {}

// LogSink writes events to the structured log.
type LogSink struct {
	logger *logging.Logger
}

// NewLogSink creates a sink that logs events at info level.
func NewLogSink(logger *logging.Logger) *LogSink {
	return &LogSink{logger: logger.With("component", "events")}
}

// Emit logs the event with its fields flattened into log attributes.
func (s *LogSink) Emit(_ context.Context, e Event) {
	args := []any{
		"event_id", e.ID,
		"event_type", string(e.Type),
	}
	if e.DeviceSN != "" {
		args = append(args, "device_sn", e.DeviceSN)
	}
	for k, v := range e.Fields {
		args = append(args, k, v)
	}
	s.logger.Info("fleet event", args...)
}

// Publisher is the slice of the MQTT client that MQTTSink needs.
type Publisher interface {
	PublishEvent(topic string, payload []byte) error
}

// MQTTSink publishes events to the fleet topic hierarchy.
//
// Each event goes to two topics: the fleet-wide adms/event/{type} and, when
// the event concerns a device, adms/device/{sn}/event/{type}.
type MQTTSink struct {
	pub    Publisher
	logger *logging.Logger
}

// NewMQTTSink creates a sink that publishes events as JSON.
func NewMQTTSink(pub Publisher, logger *logging.Logger) *MQTTSink {
	return &MQTTSink{
		pub:    pub,
		logger: logger.With("component", "events.mqtt"),
	}
}

// Emit publishes the event. Publish failures are logged and dropped.
func (s *MQTTSink) Emit(_ context.Context, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		s.logger.Error("marshalling event", "event_type", string(e.Type), "error", err)
		return
	}

	topics := mqtt.Topics{}
	if err := s.pub.PublishEvent(topics.Event(string(e.Type)), payload); err != nil {
		s.logger.Warn("publishing fleet event", "event_type", string(e.Type), "error", err)
	}

	if e.DeviceSN == "" {
		return
	}
	if err := s.pub.PublishEvent(topics.DeviceEvent(e.DeviceSN, string(e.Type)), payload); err != nil {
		s.logger.Warn("publishing device event",
			"event_type", string(e.Type),
			"device_sn", e.DeviceSN,
			"error", err,
		)
	}
}

// AttendanceWriter is the slice of the InfluxDB client that InfluxSink needs.
type AttendanceWriter interface {
	WriteAttendance(deviceSN, userID string, verifyMode, status int)
}

// InfluxSink mirrors attendance.recorded events as time-series points.
// All other event types pass through untouched.
type InfluxSink struct {
	writer AttendanceWriter
}

// NewInfluxSink creates a sink that feeds the attendance measurement.
func NewInfluxSink(writer AttendanceWriter) *InfluxSink {
	return &InfluxSink{writer: writer}
}

// Emit writes a point for attendance.recorded events.
func (s *InfluxSink) Emit(_ context.Context, e Event) {
	if e.Type != TypeAttendanceRecorded {
		return
	}

	userID, _ := e.Fields["user_id"].(string)
	verifyMode, _ := e.Fields["verify_mode"].(int)
	status, _ := e.Fields["status"].(int)

	s.writer.WriteAttendance(e.DeviceSN, userID, verifyMode, status)
}

// Multi fans an event out to several sinks in order.
type Multi []Sink

// Emit delivers the event to every sink.
func (m Multi) Emit(ctx context.Context, e Event) {
	for _, s := range m {
		s.Emit(ctx, e)
	}
}
