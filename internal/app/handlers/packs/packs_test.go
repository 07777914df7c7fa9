package packs

import (
	"context"
	"errors"
	"testing"
	"time"

	"signature/internal/app/outbox"
	"signature/internal/app/policies"
	domainpack "signature/internal/domain/pack"
	"signature/internal/infra/storage/memory"
)

type packNotifier struct {
	packs chan policies.PackRequestNotice
}

func (packNotifier) ReservationRequested(context.Context, policies.ReservationNotice) error {
	return nil
}

func (n packNotifier) PackRequested(_ context.Context, notice policies.PackRequestNotice) error {
	n.packs <- notice
	return nil
}

func newHandler() (*Handler, *memory.Outbox, packNotifier) {
	store := memory.NewStore()
	box := memory.NewOutbox(store)
	notifier := packNotifier{packs: make(chan policies.PackRequestNotice, 1)}
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return &Handler{
		UoWFactory: store,
		Outbox:     box,
		Encoder:    outbox.JSONEventEncoder{},
		Notifier:   notifier,
		Now:        func() time.Time { return now },
	}, box, notifier
}

func TestRequestIsStoredAndAnnounced(t *testing.T) {
	h, box, notifier := newHandler()
	ctx := context.Background()
	guests := 30
	req, err := h.Request(ctx, RequestPackCommand{
		PackName:  "Mariage",
		FirstName: "Awa",
		LastName:  "Ngono",
		Email:     "awa@example.com",
		Phone:     "+237600000000",
		Guests:    &guests,
		PromoCode: "wedding",
	})
	if err != nil {
		t.Fatal(err)
	}
	if req.Status != string(domainpack.RequestNew) || req.Guests == nil || *req.Guests != 30 {
		t.Fatalf("request = %+v", req)
	}
	if recs := box.Records(); len(recs) != 1 || recs[0].Name != "pack.request_received" {
		t.Fatalf("outbox = %+v", recs)
	}
	select {
	case n := <-notifier.packs:
		if n.RequestID != req.ID || n.PackName != "Mariage" {
			t.Fatalf("notice = %+v", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pack notification not sent")
	}

	if _, err := h.Resolve(ctx, UpdatePackRequestStatusCommand{RequestID: req.ID, Status: "processed"}); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Resolve(ctx, UpdatePackRequestStatusCommand{RequestID: req.ID, Status: "cancelled"}); !errors.Is(err, domainpack.ErrInvalidTransition) {
		t.Fatalf("second resolve err = %v", err)
	}
	if _, err := h.Resolve(ctx, UpdatePackRequestStatusCommand{RequestID: "nope", Status: "processed"}); !errors.Is(err, domainpack.ErrRequestNotFound) {
		t.Fatalf("missing err = %v", err)
	}

	open, err := h.ListRequests(ctx, ListPackRequestsQuery{Status: "new"})
	if err != nil {
		t.Fatal(err)
	}
	if len(open.Items) != 0 {
		t.Fatalf("open requests = %+v", open.Items)
	}
}

func TestRequestNeedsContact(t *testing.T) {
	h, box, _ := newHandler()
	_, err := h.Request(context.Background(), RequestPackCommand{PackName: "Mariage", FirstName: "Awa"})
	if !errors.Is(err, domainpack.ErrInvalidContact) {
		t.Fatalf("err = %v", err)
	}
	if len(box.Records()) != 0 {
		t.Fatal("rejected request left an outbox record")
	}
}

func TestListShowsActivePacksOnly(t *testing.T) {
	h, _, _ := newHandler()
	ctx := context.Background()
	for _, cmd := range []UpsertPackCommand{
		{ID: "p1", Name: "Séjour Détente", Active: true},
		{ID: "p2", Name: "Anniversaire", Active: true, Featured: true},
		{ID: "p3", Name: "Archivé"},
	} {
		if _, err := h.Upsert(ctx, cmd); err != nil {
			t.Fatal(err)
		}
	}
	list, err := h.List(ctx, ListPacksQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Items) != 2 || list.Items[0].ID != "p2" || list.Items[1].Slug != "sejour-detente" {
		t.Fatalf("packs = %+v", list.Items)
	}
}
