package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	appoutbox "signature/internal/app/outbox"
)

const (
	outboxNew     = "NEW"
	outboxClaimed = "CLAIMED"
	outboxSent    = "SENT"
	outboxFailed  = "FAILED"
)

const claimTimeout = 5 * time.Minute

type OutboxStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewOutboxStore(db *gorm.DB) *OutboxStore {
	return &OutboxStore{db: db, now: time.Now}
}

// Add writes through the unit's transaction when ctx carries one.
func (s *OutboxStore) Add(ctx context.Context, record appoutbox.EventRecord) error {
	now := s.now().UTC()
	m := outboxModel{
		ID:          record.ID,
		Name:        record.Name,
		Payload:     record.Payload,
		OccurredAt:  record.OccurredAt,
		Aggregate:   record.Aggregate,
		Headers:     record.Headers,
		State:       outboxNew,
		NextAttempt: now,
		CreatedAt:   now,
	}
	return conn(ctx, s.db).Create(&m).Error
}

// Claim locks one due row with SKIP LOCKED so parallel relays never pick the
// same record.
func (s *OutboxStore) Claim(ctx context.Context, workerID string) (*appoutbox.PendingRecord, error) {
	now := s.now().UTC()
	var claimed *outboxModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m outboxModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("(state IN ? AND next_attempt_at <= ?) OR (state = ? AND claimed_at <= ?)",
				[]string{outboxNew, outboxFailed}, now, outboxClaimed, now.Add(-claimTimeout)).
			Order("occurred_at").
			Take(&m).Error
		if err != nil {
			return err
		}
		if err := tx.Model(&outboxModel{}).Where("id = ?", m.ID).Updates(map[string]any{
			"state":      outboxClaimed,
			"claimed_by": workerID,
			"claimed_at": now,
		}).Error; err != nil {
			return err
		}
		claimed = &m
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &appoutbox.PendingRecord{
		EventRecord: appoutbox.EventRecord{
			ID:         claimed.ID,
			Name:       claimed.Name,
			Payload:    claimed.Payload,
			OccurredAt: claimed.OccurredAt.UTC(),
			Aggregate:  claimed.Aggregate,
			Headers:    claimed.Headers,
		},
		Attempts: claimed.Attempts,
	}, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&outboxModel{}).Where("id = ?", id).Updates(map[string]any{
		"state":   outboxSent,
		"sent_at": s.now().UTC(),
	}).Error
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	return s.db.WithContext(ctx).Model(&outboxModel{}).Where("id = ?", id).Updates(map[string]any{
		"state":           outboxFailed,
		"next_attempt_at": next.UTC(),
		"last_error":      errMsg,
		"attempts":        gorm.Expr("attempts + 1"),
	}).Error
}

var (
	_ appoutbox.Outbox     = (*OutboxStore)(nil)
	_ appoutbox.RelayStore = (*OutboxStore)(nil)
)
