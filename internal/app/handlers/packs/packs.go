package packs

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"signature/internal/app/commands"
	"signature/internal/app/dto"
	"signature/internal/app/handlers/support"
	"signature/internal/app/outbox"
	"signature/internal/app/policies"
	"signature/internal/app/queries"
	"signature/internal/app/uow"
	domainaccommodation "signature/internal/domain/accommodation"
	domainpack "signature/internal/domain/pack"
)

const (
	requestPackKey       = "pack.request"
	resolvePackKey       = "pack.request.status"
	upsertPackKey        = "pack.upsert"
	listPacksKey         = "pack.list"
	listPackRequestsKey  = "pack.request.list"
	notificationDeadline = 15 * time.Second
)

type RequestPackCommand struct {
	PackName  string `validate:"required"`
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Email     string `validate:"required,email"`
	Phone     string `validate:"required"`
	EventDate *time.Time
	Guests    *int `validate:"omitempty,gt=0"`
	Message   string
	PromoCode string
}

func (RequestPackCommand) Key() string { return requestPackKey }

type UpdatePackRequestStatusCommand struct {
	RequestID string `validate:"required"`
	Status    string `validate:"required,oneof=processed cancelled"`
}

func (UpdatePackRequestStatusCommand) Key() string         { return resolvePackKey }
func (UpdatePackRequestStatusCommand) RequiresAdmin() bool { return true }

type UpsertPackCommand struct {
	ID               string
	Name             string `validate:"required"`
	PackType         string
	ShortDescription string
	Description      string
	AccommodationIDs []string
	Featured         bool
	Active           bool
}

func (UpsertPackCommand) Key() string         { return upsertPackKey }
func (UpsertPackCommand) RequiresAdmin() bool { return true }

type ListPacksQuery struct{}

func (ListPacksQuery) Key() string { return listPacksKey }

type ListPackRequestsQuery struct {
	Status string `validate:"omitempty,oneof=new processed cancelled"`
}

func (ListPackRequestsQuery) Key() string         { return listPackRequestsKey }
func (ListPackRequestsQuery) RequiresAdmin() bool { return true }

type Handler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Notifier   policies.Notifier
	Logger     *slog.Logger
	Now        func() time.Time
	NewID      func() string
}

func (h *Handler) Request(ctx context.Context, cmd RequestPackCommand) (*dto.PackRequest, error) {
	req, err := domainpack.NewRequest(domainpack.RequestParams{
		ID:        domainpack.RequestID(h.newID()),
		PackName:  cmd.PackName,
		FirstName: cmd.FirstName,
		LastName:  cmd.LastName,
		Email:     cmd.Email,
		Phone:     cmd.Phone,
		EventDate: cmd.EventDate,
		Guests:    cmd.Guests,
		Message:   cmd.Message,
		PromoCode: cmd.PromoCode,
		CreatedAt: support.Clock(h.Now),
	})
	if err != nil {
		return nil, err
	}
	unit, ctx, finish, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	if err := unit.Packs().SaveRequest(ctx, req); err != nil {
		return nil, finish(err)
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, req.PullEvents()); err != nil {
		return nil, finish(err)
	}
	out := dto.MapPackRequest(req)
	uow.AfterCommit(ctx, func() { h.notify(ctx, out) })
	if err := finish(nil); err != nil {
		return nil, err
	}
	h.logger().InfoContext(ctx, "pack request received", "request_id", req.ID, "pack", req.PackName)
	return &out, nil
}

func (h *Handler) notify(ctx context.Context, r dto.PackRequest) {
	if h.Notifier == nil {
		return
	}
	notice := policies.PackRequestNotice{
		RequestID: r.ID,
		PackName:  r.PackName,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		EventDate: r.EventDate,
		Guests:    r.Guests,
		Message:   r.Message,
		PromoCode: r.PromoCode,
	}
	support.Go(ctx, h.logger(), "notify pack requested", notificationDeadline, func(ctx context.Context) error {
		return h.Notifier.PackRequested(ctx, notice)
	})
}

func (h *Handler) Resolve(ctx context.Context, cmd UpdatePackRequestStatusCommand) (*dto.PackRequest, error) {
	unit, ctx, finish, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	req, err := unit.Packs().RequestByID(ctx, domainpack.RequestID(cmd.RequestID))
	if err != nil {
		return nil, finish(err)
	}
	if err := req.Resolve(domainpack.RequestStatus(cmd.Status), support.Clock(h.Now)); err != nil {
		return nil, finish(err)
	}
	if err := unit.Packs().SaveRequest(ctx, req); err != nil {
		return nil, finish(err)
	}
	if err := finish(nil); err != nil {
		return nil, err
	}
	out := dto.MapPackRequest(req)
	return &out, nil
}

// Upsert creates or replaces a catalogue entry. The slug follows the name.
func (h *Handler) Upsert(ctx context.Context, cmd UpsertPackCommand) (*dto.Pack, error) {
	id := strings.TrimSpace(cmd.ID)
	if id == "" {
		id = h.newID()
	}
	status := domainpack.StatusInactive
	if cmd.Active {
		status = domainpack.StatusActive
	}
	ids := make([]domainaccommodation.ID, 0, len(cmd.AccommodationIDs))
	for _, a := range cmd.AccommodationIDs {
		ids = append(ids, domainaccommodation.ID(a))
	}
	now := support.Clock(h.Now)
	p := &domainpack.Pack{
		ID:               domainpack.ID(id),
		Name:             strings.TrimSpace(cmd.Name),
		Slug:             domainaccommodation.Slugify(cmd.Name),
		PackType:         cmd.PackType,
		ShortDescription: cmd.ShortDescription,
		Description:      cmd.Description,
		AccommodationIDs: ids,
		Featured:         cmd.Featured,
		Status:           status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	unit, ctx, finish, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	if err := unit.Packs().Save(ctx, p); err != nil {
		return nil, finish(err)
	}
	if err := finish(nil); err != nil {
		return nil, err
	}
	out := dto.MapPack(p)
	return &out, nil
}

func (h *Handler) List(ctx context.Context, _ ListPacksQuery) (dto.PackCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PackCollection{}, err
	}
	defer cleanup()
	items, err := unit.Packs().ListActive(ctx)
	if err != nil {
		return dto.PackCollection{}, err
	}
	return dto.MapPacks(items), nil
}

func (h *Handler) ListRequests(ctx context.Context, q ListPackRequestsQuery) (dto.PackRequestCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PackRequestCollection{}, err
	}
	defer cleanup()
	items, err := unit.Packs().ListRequests(ctx, domainpack.RequestStatus(q.Status))
	if err != nil {
		return dto.PackRequestCollection{}, err
	}
	return dto.MapPackRequests(items), nil
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *Handler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

func Register(cmds *commands.Registry, qs *queries.Registry, h *Handler) {
	commands.Register(cmds, requestPackKey, commands.HandlerFunc[RequestPackCommand, *dto.PackRequest](h.Request))
	commands.Register(cmds, resolvePackKey, commands.HandlerFunc[UpdatePackRequestStatusCommand, *dto.PackRequest](h.Resolve))
	commands.Register(cmds, upsertPackKey, commands.HandlerFunc[UpsertPackCommand, *dto.Pack](h.Upsert))
	queries.Register(qs, listPacksKey, queries.HandlerFunc[ListPacksQuery, dto.PackCollection](h.List))
	queries.Register(qs, listPackRequestsKey, queries.HandlerFunc[ListPackRequestsQuery, dto.PackRequestCollection](h.ListRequests))
}
