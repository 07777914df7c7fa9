package jobs

import (
	"context"
	"log/slog"
	"time"

	"signature/internal/app/handlers/support"
	"signature/internal/app/uow"
)

// PromoReport lists active codes that can no longer be applied.
type PromoReport struct {
	Expired   []string
	Exhausted []string
}

// PromoReportJob logs active promo codes that have expired or hit their
// usage ceiling so an admin can switch them off.
type PromoReportJob struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
	Now        func() time.Time
}

func (PromoReportJob) Name() string { return "promos.report" }

func (j PromoReportJob) Run(ctx context.Context) error {
	report, err := j.Build(ctx)
	if err != nil {
		return err
	}
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if len(report.Expired) == 0 && len(report.Exhausted) == 0 {
		return nil
	}
	logger.InfoContext(ctx, "stale promo codes still active", "expired", report.Expired, "exhausted", report.Exhausted)
	return nil
}

func (j PromoReportJob) Build(ctx context.Context) (PromoReport, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, j.UoWFactory)
	if err != nil {
		return PromoReport{}, err
	}
	defer cleanup()
	codes, err := unit.Promos().List(ctx)
	if err != nil {
		return PromoReport{}, err
	}
	now := time.Now()
	if j.Now != nil {
		now = j.Now()
	}
	var report PromoReport
	for _, c := range codes {
		if !c.Active {
			continue
		}
		switch {
		case c.Expired(now):
			report.Expired = append(report.Expired, c.Code)
		case c.Exhausted():
			report.Exhausted = append(report.Exhausted, c.Code)
		}
	}
	return report, nil
}
