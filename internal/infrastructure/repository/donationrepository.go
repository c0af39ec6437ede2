package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fundhive/fundhive/internal/domain/donation"
	"github.com/fundhive/fundhive/internal/infrastructure/persistence/mappers"
	"github.com/fundhive/fundhive/internal/infrastructure/persistence/models"
	"github.com/fundhive/fundhive/internal/shared/db"
	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
)

type DonationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

func (r *DonationRepository) Create(ctx context.Context, d *donation.Donation) error {
	model := mappers.DonationToModel(d)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("donation order id already exists", d.OrderID())
		}
		return fmt.Errorf("failed to create donation: %w", err)
	}

	// Write back the auto-generated ID to the domain object
	return d.SetID(model.ID)
}

func (r *DonationRepository) Update(ctx context.Context, d *donation.Donation) error {
	model := mappers.DonationToModel(d)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.DonationModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(map[string]interface{}{
			"transaction_id": model.TransactionID,
			"status":         model.Status,
			"completed_at":   model.CompletedAt,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update donation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewConflictError("donation was modified concurrently", fmt.Sprintf("id=%d", model.ID))
	}
	return nil
}

func (r *DonationRepository) SetTransactionID(ctx context.Context, id uint, transactionID string) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.DonationModel{}).
		Where("id = ? AND (transaction_id IS NULL OR transaction_id = '')", id).
		Update("transaction_id", transactionID)
	if result.Error != nil {
		return fmt.Errorf("failed to set donation transaction id: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *DonationRepository) GetByID(ctx context.Context, id uint) (*donation.Donation, error) {
	return r.first(ctx, "failed to get donation", "id = ?", id)
}

func (r *DonationRepository) GetByOrderID(ctx context.Context, orderID string) (*donation.Donation, error) {
	return r.first(ctx, "failed to get donation by order_id", "order_id = ?", orderID)
}

func (r *DonationRepository) GetByTransactionID(ctx context.Context, gateway, transactionID string) (*donation.Donation, error) {
	if transactionID == "" {
		return nil, apperrors.NewNotFoundError("donation not found")
	}
	return r.first(ctx, "failed to get donation by transaction_id", "gateway = ? AND transaction_id = ?", gateway, transactionID)
}

func (r *DonationRepository) first(ctx context.Context, failure string, query string, args ...interface{}) (*donation.Donation, error) {
	var model models.DonationModel

	if err := db.GetTxFromContext(ctx, r.db).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("donation not found")
		}
		return nil, fmt.Errorf("%s: %w", failure, err)
	}

	return mappers.DonationToDomain(&model)
}

func (r *DonationRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*donation.Donation, error) {
	var rows []models.DonationModel

	q := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND created_at < ?", string(donation.StatusPending), cutoff).
		Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending donations: %w", err)
	}

	return mappers.DonationsToDomain(rows)
}

func (r *DonationRepository) ListBackerUserIDs(ctx context.Context, campaignID uint) ([]uint, error) {
	var ids []uint

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.DonationModel{}).
		Where("campaign_id = ? AND user_id <> 0 AND status IN ?", campaignID,
			[]string{string(donation.StatusCompleted), string(donation.StatusBacked)}).
		Distinct().
		Order("user_id ASC").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list campaign backers: %w", err)
	}

	return ids, nil
}

// TransitionLedger persists the idempotency ledger in donation_transition_logs.
type TransitionLedger struct {
	db *gorm.DB
}

func NewTransitionLedger(db *gorm.DB) *TransitionLedger {
	return &TransitionLedger{db: db}
}

func (l *TransitionLedger) Append(ctx context.Context, entry donation.LedgerEntry) error {
	if err := db.GetTxFromContext(ctx, l.db).Create(mappers.LedgerEntryToModel(entry)).Error; err != nil {
		if apperrors.IsDuplicateError(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return donation.ErrAlreadyRecorded
		}
		return fmt.Errorf("failed to append transition log: %w", err)
	}
	return nil
}
