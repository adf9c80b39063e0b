package server

import (
	"context"

	"bigform/internal/logger"
)

// SubmissionSink receives every accepted submission. Errors are reported by
// the handler but never fail the request.
type SubmissionSink interface {
	Record(ctx context.Context, sub *SubmittedForm) error
}

// LogSink writes each submission as one structured log entry.
type LogSink struct {
	log logger.Logger
}

func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Record(ctx context.Context, sub *SubmittedForm) error {
	fields := sub.logFields()
	fields["request_id"] = RequestIDFromContext(ctx)
	s.log.Info("form_submitted", fields)
	return nil
}
