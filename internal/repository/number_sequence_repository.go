package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NumberSequenceRepository handles per-company document number sequences.
// Each company keeps one row per sequence kind; increments happen under a
// row lock so concurrent issuers never observe the same value.
type NumberSequenceRepository struct {
	db *gorm.DB
}

// NewNumberSequenceRepository creates a new NumberSequenceRepository
func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// Next atomically increments and returns the next number for a company/kind.
// A missing sequence row is created starting at 1.
func (r *NumberSequenceRepository) Next(ctx context.Context, companyID uuid.UUID, kind domain.SequenceKind) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		next, err = r.NextInTx(tx, companyID, kind)
		return err
	})
	return next, err
}

// NextInTx is the transaction-scoped variant of Next, for callers that need
// the number issued inside a larger transaction.
func (r *NumberSequenceRepository) NextInTx(tx *gorm.DB, companyID uuid.UUID, kind domain.SequenceKind) (int64, error) {
	var seq domain.NumberSequence

	result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("company_id = ? AND kind = ?", companyID, kind).
		First(&seq)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		seq = domain.NumberSequence{
			CompanyID: companyID,
			Kind:      kind,
			LastValue: 1,
		}
		if err := tx.Create(&seq).Error; err != nil {
			return 0, fmt.Errorf("failed to create number sequence: %w", err)
		}
		return 1, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get number sequence: %w", result.Error)
	}

	next := seq.LastValue + 1
	if err := tx.Model(&seq).Updates(map[string]interface{}{
		"last_value": next,
		"updated_at": time.Now().UTC(),
	}).Error; err != nil {
		return 0, fmt.Errorf("failed to increment number sequence: %w", err)
	}
	return next, nil
}
