package pack

import (
	"errors"
	"testing"
	"time"
)

func TestNewRequestAndResolve(t *testing.T) {
	zero := 0
	now := time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)
	r, err := NewRequest(RequestParams{
		ID: "pr-1", PackName: "Pack Mariage", FirstName: "Jean", LastName: "Mbarga",
		Email: "jean@example.cm", Phone: "690000000", Guests: &zero, PromoCode: " noel ", CreatedAt: now,
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.Status != RequestNew || r.Guests != nil || r.PromoCode != "noel" {
		t.Fatalf("unexpected request: %+v", r)
	}
	if evs := r.PullEvents(); len(evs) != 1 {
		t.Fatalf("expected one event, got %d", len(evs))
	}
	if err := r.Resolve(RequestNew, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("resolving to new must fail, got %v", err)
	}
	if err := r.Resolve(RequestProcessed, now); err != nil {
		t.Fatal(err)
	}
	if err := r.Resolve(RequestCancelled, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("processed is terminal, got %v", err)
	}
}

func TestNewRequestValidation(t *testing.T) {
	if _, err := NewRequest(RequestParams{PackName: " "}); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	_, err := NewRequest(RequestParams{PackName: "P", FirstName: "a", LastName: "b", Phone: "1", Email: "nope"})
	if !errors.Is(err, ErrInvalidContact) {
		t.Fatalf("expected ErrInvalidContact, got %v", err)
	}
}
