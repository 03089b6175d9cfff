package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/JakeFAU/realtime-progress/internal/progress"
)

// LogSink writes one structured log line per event. Progress steps log at
// Debug; completions log at Info.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch using structured fields.
func (s *LogSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		fields := []zap.Field{
			zap.String("client_id", evt.ClientID),
			zap.Stringer("job_id", evt.JobUUID()),
			zap.String("stage", string(evt.Stage)),
			zap.Int("percent", evt.Percent),
			zap.Int("step", evt.Step),
		}
		if evt.Stage == progress.StageDone {
			s.logger.Info("job completed", append(fields, zap.Duration("dur", evt.Dur))...)
			continue
		}
		s.logger.Debug("job progress", fields...)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
