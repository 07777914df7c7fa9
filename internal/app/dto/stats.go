package dto

import domainstats "signature/internal/domain/stats"

type AdminStats struct {
	TotalReservations     int   `json:"total_reservations"`
	PendingReservations   int   `json:"pending_reservations"`
	ConfirmedReservations int   `json:"confirmed_reservations"`
	CancelledReservations int   `json:"cancelled_reservations"`
	TotalRevenue          int64 `json:"total_revenue"`
	TotalCommission       int64 `json:"total_commission"`
	PendingPayment        int64 `json:"pending_payment"`
	NewPackRequests       int   `json:"new_pack_requests"`
}

func MapStats(d domainstats.Dashboard) AdminStats {
	return AdminStats{
		TotalReservations:     d.TotalReservations,
		PendingReservations:   d.PendingReservations,
		ConfirmedReservations: d.ConfirmedReservations,
		CancelledReservations: d.CancelledReservations,
		TotalRevenue:          d.TotalRevenue,
		TotalCommission:       d.TotalCommission,
		PendingPayment:        d.PendingCommission,
		NewPackRequests:       d.NewPackRequests,
	}
}
