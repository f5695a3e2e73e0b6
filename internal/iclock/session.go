package iclock

import (
	"context"

	"github.com/tessara-dev/adms-core/internal/attendance"
	"github.com/tessara-dev/adms-core/internal/command"
	"github.com/tessara-dev/adms-core/internal/device"
	"github.com/tessara-dev/adms-core/internal/events"
	"github.com/tessara-dev/adms-core/internal/infrastructure/logging"
)

// Session implements the push-protocol conversation with a terminal.
//
// There is no per-connection state: every request is self-contained, and all
// coordination between requests lives in the repositories. Internal failures
// never reach the device; the device always receives a well-formed
// plain-text reply, and problems surface through logs and events instead.
type Session struct {
	devices    device.Repository
	commands   command.Repository
	attendance attendance.Repository
	sink       events.Sink
	logger     *logging.Logger

	// correlationWindow bounds how many sent commands are considered when
	// matching an acknowledgment.
	correlationWindow int
}

// NewSession wires a protocol session over the given repositories.
func NewSession(
	devices device.Repository,
	commands command.Repository,
	att attendance.Repository,
	sink events.Sink,
	logger *logging.Logger,
	correlationWindow int,
) *Session {
	return &Session{
		devices:           devices,
		commands:          commands,
		attendance:        att,
		sink:              sink,
		logger:            logger.With("component", "iclock"),
		correlationWindow: correlationWindow,
	}
}

// Poll handles a command poll: refresh the device, drain its queue and
// serialize the batch (or the OK sentinel when the queue is empty).
func (s *Session) Poll(ctx context.Context, sn, addr string) string {
	s.registerContact(ctx, sn, addr, nil, nil)
	return s.drainAndSerialize(ctx, sn)
}

// PushData handles a data push. The endpoint doubles as a poll: whatever the
// body carried, the reply is the device's pending command batch.
//
// Bodies starting with the option sentinel are negotiation chatter and carry
// no records. Bodies with the attendance marker are ingested with partial
// success; malformed lines are skipped, never fatal.
func (s *Session) PushData(ctx context.Context, sn, addr string, model, firmware *string, body string) string {
	s.registerContact(ctx, sn, addr, model, firmware)

	switch {
	case IsOptionRequest(body):
		s.logger.Debug("option request", "device_sn", sn)

	case HasAttendance(body):
		stored, skipped, err := s.attendance.Ingest(ctx, sn, body)
		if err != nil {
			s.logger.Error("ingesting attendance", "device_sn", sn, "error", err)
		}
		s.logger.Info("attendance processed", "device_sn", sn, "stored", len(stored), "skipped", skipped)
		for _, rec := range stored {
			s.sink.Emit(ctx, events.New(events.TypeAttendanceRecorded, sn, map[string]any{
				"record_id":   rec.ID,
				"user_id":     rec.UserID,
				"timestamp":   rec.Timestamp,
				"verify_mode": rec.VerifyMode,
				"status":      rec.Status,
			}))
		}
		if skipped > 0 {
			s.sink.Emit(ctx, events.New(events.TypeAttendanceSkipped, sn, map[string]any{
				"skipped": skipped,
			}))
		}
	}

	return s.drainAndSerialize(ctx, sn)
}

// Acknowledge handles a command acknowledgment.
//
// The echoed command text is correlated against the recent sent window. On a
// match the command resolves to completed or failed per the success token; on
// a miss the acknowledgment is logged and discarded without touching any
// command. The reply is always OK; a terminal cannot act on an error.
//
// cmdID is accepted because devices send it, but ignored: fleet firmware does
// not reliably round-trip the ID, so text matching is the behaviour devices
// actually exercise.
func (s *Session) Acknowledge(ctx context.Context, sn, addr, cmdText, response, cmdID string) string {
	s.registerContact(ctx, sn, addr, nil, nil)

	if cmdText == "" {
		s.logger.Warn("acknowledgment without command text", "device_sn", sn, "cmd_id", cmdID)
		return ResponseOK
	}

	recent, err := s.commands.RecentSent(ctx, sn, s.correlationWindow)
	if err != nil {
		s.logger.Error("loading correlation window", "device_sn", sn, "error", err)
		return ResponseOK
	}

	matched, ok := command.Match(cmdText, recent)
	if !ok {
		s.logger.Warn("no matching command for acknowledgment",
			"device_sn", sn,
			"cmd", cmdText,
			"window_size", len(recent),
		)
		s.sink.Emit(ctx, events.New(events.TypeCorrelationMiss, sn, map[string]any{
			"cmd":      cmdText,
			"response": response,
		}))
		return ResponseOK
	}

	completed := IsSuccessToken(response)
	if err := s.commands.Resolve(ctx, matched.ID, completed, response); err != nil {
		s.logger.Error("resolving command", "device_sn", sn, "command_id", matched.ID, "error", err)
		return ResponseOK
	}

	eventType := events.TypeCommandFailed
	if completed {
		eventType = events.TypeCommandCompleted
	}
	s.sink.Emit(ctx, events.New(eventType, sn, map[string]any{
		"command_id": matched.ID,
		"command":    matched.Text,
		"response":   response,
	}))

	s.logger.Info("command resolved",
		"device_sn", sn,
		"command_id", matched.ID,
		"completed", completed,
	)
	return ResponseOK
}

// PushTemplate handles a fingerprint/face template push. The binary payload
// is accepted and discarded; only the device contact is recorded.
func (s *Session) PushTemplate(ctx context.Context, sn, addr string) string {
	s.registerContact(ctx, sn, addr, nil, nil)
	s.logger.Info("template data received", "device_sn", sn)
	return ResponseOK
}

// registerContact records the device contact and emits the matching event.
func (s *Session) registerContact(ctx context.Context, sn, addr string, model, firmware *string) {
	created, err := s.devices.RegisterOrRefresh(ctx, sn, addr, model, firmware)
	if err != nil {
		s.logger.Error("registering device", "device_sn", sn, "error", err)
		return
	}

	if created {
		s.logger.Info("device registered", "device_sn", sn, "addr", addr)
		s.sink.Emit(ctx, events.New(events.TypeDeviceRegistered, sn, map[string]any{
			"addr": addr,
		}))
		return
	}
	s.sink.Emit(ctx, events.New(events.TypeDeviceSeen, sn, nil))
}

// drainAndSerialize consumes the device's queued commands and renders the
// wire body.
func (s *Session) drainAndSerialize(ctx context.Context, sn string) string {
	drained, err := s.commands.DrainForPoll(ctx, sn)
	if err != nil {
		s.logger.Error("draining command queue", "device_sn", sn, "error", err)
		return ResponseOK
	}

	for _, c := range drained {
		s.sink.Emit(ctx, events.New(events.TypeCommandSent, sn, map[string]any{
			"command_id": c.ID,
			"command":    c.Text,
		}))
	}

	if len(drained) > 0 {
		s.logger.Info("commands sent", "device_sn", sn, "count", len(drained))
	}
	return SerializeCommands(drained)
}
