// Package email delivers workflow notifications to users. The default
// dispatcher only logs the message; a real SMTP or provider-backed
// implementation can replace it behind the same interface.
package email

import (
	"context"
	"log/slog"

	"github.com/example/room-booking/internal/application"
)

// LogDispatcher writes outgoing mail to the structured log instead of
// sending it.
type LogDispatcher struct {
	logger *slog.Logger
}

// NewLogDispatcher constructs a dispatcher writing to the given logger. A nil
// logger falls back to slog.Default.
func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogDispatcher{logger: logger}
}

// SendPriorityRequestSubmitted logs the submission notice that would be
// mailed to administrators.
func (d *LogDispatcher) SendPriorityRequestSubmitted(ctx context.Context, request application.PriorityRequest) error {
	d.logger.InfoContext(ctx, "email dispatched",
		"template", "priority_request_submitted",
		"request_id", request.ID,
		"requester_id", request.RequesterID,
		"conflict_booking_id", request.ConflictBookingID,
	)
	return nil
}

// SendPriorityRequestResolved logs the decision notice that would be mailed
// to the requester.
func (d *LogDispatcher) SendPriorityRequestResolved(ctx context.Context, request application.PriorityRequest) error {
	d.logger.InfoContext(ctx, "email dispatched",
		"template", "priority_request_resolved",
		"request_id", request.ID,
		"requester_id", request.RequesterID,
		"status", request.Status,
	)
	return nil
}
