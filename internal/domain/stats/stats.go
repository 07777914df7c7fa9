package stats

import "signature/internal/domain/reservation"

// Dashboard aggregates reservation figures for the admin overview.
// Revenue and commission only count confirmed stays; PendingCommission is the
// commission of confirmed stays whose payment is still pending.
type Dashboard struct {
	TotalReservations     int
	PendingReservations   int
	ConfirmedReservations int
	CancelledReservations int
	TotalRevenue          int64
	TotalCommission       int64
	PendingCommission     int64
	NewPackRequests       int
}

func Compute(reservations []*reservation.Reservation) Dashboard {
	var d Dashboard
	for _, r := range reservations {
		d.TotalReservations++
		switch r.Status {
		case reservation.StatusPending:
			d.PendingReservations++
		case reservation.StatusCancelled:
			d.CancelledReservations++
		case reservation.StatusConfirmed:
			d.ConfirmedReservations++
			d.TotalRevenue += r.Price.Total.Amount
			d.TotalCommission += r.Price.CommissionAmount.Amount
			if r.PaymentStatus == reservation.PaymentPending {
				d.PendingCommission += r.Price.CommissionAmount.Amount
			}
		}
	}
	return d
}
