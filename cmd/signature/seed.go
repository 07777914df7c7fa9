package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"signature/internal/app/bootstrap"
	"signature/internal/app/commands"
	"signature/internal/app/dto"
	accommodationapp "signature/internal/app/handlers/accommodations"
	packapp "signature/internal/app/handlers/packs"
	promoapp "signature/internal/app/handlers/promos"
	"signature/internal/app/services/auth"
	domainauth "signature/internal/domain/auth"
	domainpromo "signature/internal/domain/promo"
)

type seedFile struct {
	Accommodations []accommodationFixture `json:"accommodations"`
	PromoCodes     []promoFixture         `json:"promo_codes"`
	Packs          []packFixture          `json:"packs"`
}

type accommodationFixture struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Location       string  `json:"location"`
	PricePerNight  int64   `json:"price_per_night"`
	CommissionRate float64 `json:"commission_rate"`
	Capacity       int     `json:"capacity"`
	Active         *bool   `json:"active"`
	Featured       bool    `json:"featured"`
}

type promoFixture struct {
	Code          string     `json:"code"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue float64    `json:"discount_value"`
	ExpiresAt     *time.Time `json:"expires_at"`
	MaxUses       *int       `json:"max_uses"`
}

type packFixture struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	PackType         string   `json:"pack_type"`
	ShortDescription string   `json:"short_description"`
	Description      string   `json:"description"`
	AccommodationIDs []string `json:"accommodation_ids"`
	Featured         bool     `json:"featured"`
	Active           bool     `json:"active"`
}

// loadSeed imports a catalogue through the command bus so every fixture goes
// through the same validation as the admin API. Existing promo codes are kept.
func loadSeed(ctx context.Context, path string, buses bootstrap.Buses, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("seed file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read seed: %w", err)
	}
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("decode seed: %w", err)
	}

	ctx = auth.WithPrincipal(ctx, auth.Principal{Subject: "seed", Role: domainauth.RoleAdmin})
	for _, fx := range seed.Accommodations {
		cmd := accommodationapp.UpsertAccommodationCommand{
			ID:             fx.ID,
			Name:           fx.Name,
			Type:           fx.Type,
			Location:       fx.Location,
			PricePerNight:  fx.PricePerNight,
			CommissionRate: fx.CommissionRate,
			Capacity:       fx.Capacity,
			Active:         fx.Active,
			Featured:       fx.Featured,
		}
		if _, err := commands.Dispatch[accommodationapp.UpsertAccommodationCommand, *accommodationapp.Result](ctx, buses.Commands, cmd); err != nil {
			logger.Error("accommodation fixture rejected", "id", fx.ID, "name", fx.Name, "error", err)
			continue
		}
	}
	for _, fx := range seed.PromoCodes {
		cmd := promoapp.CreatePromoCodeCommand{
			Code:          fx.Code,
			DiscountType:  fx.DiscountType,
			DiscountValue: fx.DiscountValue,
			ExpiresAt:     fx.ExpiresAt,
			MaxUses:       fx.MaxUses,
		}
		_, err := commands.Dispatch[promoapp.CreatePromoCodeCommand, *dto.PromoCode](ctx, buses.Commands, cmd)
		switch {
		case errors.Is(err, domainpromo.ErrDuplicateCode):
		case err != nil:
			logger.Error("promo fixture rejected", "code", fx.Code, "error", err)
		}
	}
	for _, fx := range seed.Packs {
		cmd := packapp.UpsertPackCommand{
			ID:               fx.ID,
			Name:             fx.Name,
			PackType:         fx.PackType,
			ShortDescription: fx.ShortDescription,
			Description:      fx.Description,
			AccommodationIDs: fx.AccommodationIDs,
			Featured:         fx.Featured,
			Active:           fx.Active,
		}
		if _, err := commands.Dispatch[packapp.UpsertPackCommand, *dto.Pack](ctx, buses.Commands, cmd); err != nil {
			logger.Error("pack fixture rejected", "id", fx.ID, "name", fx.Name, "error", err)
		}
	}
	logger.Info("seed imported", "path", path,
		"accommodations", len(seed.Accommodations),
		"promo_codes", len(seed.PromoCodes),
		"packs", len(seed.Packs),
	)
	return nil
}
