package stats

import (
	"testing"

	"signature/internal/domain/pricing"
	"signature/internal/domain/reservation"
	"signature/internal/domain/shared/money"
)

func res(status reservation.Status, payment reservation.PaymentStatus, total, commission int64) *reservation.Reservation {
	return &reservation.Reservation{
		Status:        status,
		PaymentStatus: payment,
		Price:         pricing.Breakdown{Total: money.FCFA(total), CommissionAmount: money.FCFA(commission)},
	}
}

func TestCompute(t *testing.T) {
	d := Compute([]*reservation.Reservation{
		res(reservation.StatusPending, reservation.PaymentPending, 100000, 10000),
		res(reservation.StatusConfirmed, reservation.PaymentPending, 300000, 30000),
		res(reservation.StatusConfirmed, reservation.PaymentPaid, 200000, 20000),
		res(reservation.StatusCancelled, reservation.PaymentCancelled, 50000, 5000),
	})
	want := Dashboard{
		TotalReservations:     4,
		PendingReservations:   1,
		ConfirmedReservations: 2,
		CancelledReservations: 1,
		TotalRevenue:          500000,
		TotalCommission:       50000,
		PendingCommission:     30000,
	}
	if d != want {
		t.Fatalf("dashboard = %+v, want %+v", d, want)
	}
}
