package reservations

import (
	"signature/internal/app/commands"
	"signature/internal/app/queries"
)

// Register binds every reservation use case on the given registries.
func Register(cmds *commands.Registry, qs *queries.Registry, create *CreateReservationHandler, status *StatusHandler, reads *QueryHandler) {
	commands.Register[CreateReservationCommand, *CreateReservationResult](cmds, createReservationKey, create)
	commands.Register(cmds, confirmReservationKey, ConfirmHandler(status))
	commands.Register(cmds, cancelReservationKey, CancelHandler(status))
	commands.Register(cmds, updatePaymentStatusKey, PaymentHandler(status))

	queries.Register(qs, getReservationKey, GetHandler(reads))
	queries.Register(qs, listReservationsKey, ListHandler(reads))
	queries.Register(qs, adminStatsKey, StatsHandler(reads))
}
