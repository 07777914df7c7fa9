package notify

import (
	"context"
	"log/slog"

	"signature/internal/app/policies"
)

// LogNotifier records notifications in the application log. It is used when
// no broker is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) ReservationRequested(ctx context.Context, notice policies.ReservationNotice) error {
	n.logger().InfoContext(ctx, "reservation notification",
		"reservation_id", notice.ReservationID,
		"accommodation", notice.AccommodationName,
		"guest_email", notice.GuestEmail,
		"nights", notice.Nights,
		"total", notice.TotalPrice,
	)
	return nil
}

func (n LogNotifier) PackRequested(ctx context.Context, notice policies.PackRequestNotice) error {
	n.logger().InfoContext(ctx, "pack request notification", "request_id", notice.RequestID, "pack", notice.PackName, "email", notice.Email)
	return nil
}

func (n LogNotifier) logger() *slog.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return slog.Default()
}

var _ policies.Notifier = LogNotifier{}
