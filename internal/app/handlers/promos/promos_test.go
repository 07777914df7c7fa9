package promos

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	domainpromo "signature/internal/domain/promo"
	"signature/internal/infra/storage/memory"
)

func newHandler() *Handler {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	return &Handler{
		UoWFactory: memory.NewStore(),
		Now:        func() time.Time { return now },
		NewID: func() string {
			n++
			return fmt.Sprintf("promo-%d", n)
		},
	}
}

func TestPromoLifecycle(t *testing.T) {
	h := newHandler()
	ctx := context.Background()

	created, err := h.Create(ctx, CreatePromoCodeCommand{Code: " welcome ", DiscountType: "fixed", DiscountValue: 15000})
	if err != nil {
		t.Fatal(err)
	}
	if created.Code != "WELCOME" || !created.Active || created.UsedCount != 0 {
		t.Fatalf("created = %+v", created)
	}
	if _, err := h.Create(ctx, CreatePromoCodeCommand{Code: "Welcome", DiscountType: "percent", DiscountValue: 5}); !errors.Is(err, domainpromo.ErrDuplicateCode) {
		t.Fatalf("duplicate err = %v", err)
	}

	v, err := h.Validate(ctx, ValidatePromoCodeQuery{Code: "welcome", BasePrice: 10000})
	if err != nil {
		t.Fatal(err)
	}
	if !v.Valid || v.DiscountAmount != 10000 {
		t.Fatalf("fixed discount capped at base: %+v", v)
	}

	if _, err := h.Toggle(ctx, TogglePromoCodeCommand{ID: created.ID, Active: false}); err != nil {
		t.Fatal(err)
	}
	v, _ = h.Validate(ctx, ValidatePromoCodeQuery{Code: "WELCOME", BasePrice: 10000})
	if v.Valid || v.Reason != string(domainpromo.ReasonInactive) {
		t.Fatalf("inactive validation = %+v", v)
	}

	if _, err := h.Delete(ctx, DeletePromoCodeCommand{ID: created.ID}); err != nil {
		t.Fatal(err)
	}
	v, _ = h.Validate(ctx, ValidatePromoCodeQuery{Code: "WELCOME", BasePrice: 10000})
	if v.Reason != string(domainpromo.ReasonInvalid) {
		t.Fatalf("deleted validation = %+v", v)
	}
	list, err := h.List(ctx, ListPromoCodesQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Items) != 0 {
		t.Fatalf("list = %+v", list.Items)
	}
}

func TestValidateReportsFirstFailingRule(t *testing.T) {
	h := newHandler()
	ctx := context.Background()
	past := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	if _, err := h.Create(ctx, CreatePromoCodeCommand{Code: "OLD", DiscountType: "percent", DiscountValue: 20, ExpiresAt: &past}); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		code string
		want domainpromo.Reason
	}{
		{"", domainpromo.ReasonEmpty},
		{"   ", domainpromo.ReasonEmpty},
		{"missing", domainpromo.ReasonInvalid},
		{"old", domainpromo.ReasonExpired},
	}
	for _, tc := range cases {
		v, err := h.Validate(ctx, ValidatePromoCodeQuery{Code: tc.code, BasePrice: 50000})
		if err != nil {
			t.Fatalf("%q: %v", tc.code, err)
		}
		if v.Valid || v.Reason != string(tc.want) || v.Error == "" {
			t.Fatalf("%q: validation = %+v, want %q", tc.code, v, tc.want)
		}
	}
}

func TestCreateRejectsInvalidDiscount(t *testing.T) {
	h := newHandler()
	_, err := h.Create(context.Background(), CreatePromoCodeCommand{Code: "BIG", DiscountType: "percent", DiscountValue: 150})
	if !errors.Is(err, domainpromo.ErrInvalidDiscount) {
		t.Fatalf("err = %v", err)
	}
}
