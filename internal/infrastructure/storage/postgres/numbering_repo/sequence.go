package numbering_repo

import (
	"context"
	"fmt"

	"kamesan/internal/domain/numbering"
	"kamesan/internal/infrastructure/storage/postgres"
)

// SequenceRepo implements numbering.SequenceRepository.
//
// The increment is a single upsert with RETURNING, serialized by the row
// lock the UPDATE takes: concurrent callers each get a distinct value, and
// a racing first insert for a new period resolves through the unique
// constraint on (document_type, period_key) instead of failing.
type SequenceRepo struct {
	txm *postgres.TxManager
}

// Ensure compile-time interface compliance.
var _ numbering.SequenceRepository = (*SequenceRepo)(nil)

// NewSequenceRepo creates a sequence repository.
func NewSequenceRepo(txm *postgres.TxManager) *SequenceRepo {
	return &SequenceRepo{txm: txm}
}

// Increment advances the counter for (docType, periodKey) and returns the
// new value. Runs on the in-context transaction when one is open, so the
// increment commits or rolls back together with the caller's work.
func (r *SequenceRepo) Increment(ctx context.Context, docType numbering.DocumentType, periodKey string) (int64, error) {
	sql := `
		INSERT INTO numbering_sequences (document_type, period_key, current_sequence, updated_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (document_type, period_key)
		DO UPDATE SET current_sequence = numbering_sequences.current_sequence + 1,
		              updated_at = now()
		RETURNING current_sequence
	`

	querier := r.txm.GetQuerier(ctx)
	var seq int64
	if err := querier.QueryRow(ctx, sql, docType, periodKey).Scan(&seq); err != nil {
		return 0, fmt.Errorf("increment sequence %s/%s: %w", docType, periodKey, err)
	}

	return seq, nil
}

// Current reads the counter without modifying it, zero when absent.
func (r *SequenceRepo) Current(ctx context.Context, docType numbering.DocumentType, periodKey string) (int64, error) {
	sql := `
		SELECT COALESCE(
			(SELECT current_sequence FROM numbering_sequences
			 WHERE document_type = $1 AND period_key = $2), 0)
	`

	querier := r.txm.GetQuerier(ctx)
	var seq int64
	if err := querier.QueryRow(ctx, sql, docType, periodKey).Scan(&seq); err != nil {
		return 0, fmt.Errorf("read sequence %s/%s: %w", docType, periodKey, err)
	}

	return seq, nil
}
