package referral

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/decker-labs/decker-backend/internal/models"
)

var (
	// ErrInvalidProof means the supplied signature did not verify as finalized.
	ErrInvalidProof = errors.New("proof signature not finalized")
	// ErrNothingToClaim means the referrer has no pending referral records.
	ErrNothingToClaim = errors.New("no pending referrals to claim")
)

// Verifier checks a proof reference against the chain.
type Verifier interface {
	VerifySignature(ctx context.Context, sig string) (bool, error)
}

// Ledger owns referral records and the per-wallet claim tracker.
type Ledger struct {
	db       *gorm.DB
	verifier Verifier
	logger   *log.Logger
}

func NewLedger(db *gorm.DB, verifier Verifier, logger *log.Logger) *Ledger {
	return &Ledger{db: db, verifier: verifier, logger: logger}
}

// CreateIfAbsent records a pending referral for a wallet that has never been
// referred before. The referred-wallet unique index arbitrates concurrent
// first-referral attempts; the loser's conflict is a no-op, first referrer
// wins permanently.
func (l *Ledger) CreateIfAbsent(ctx context.Context, referrer, referred string) error {
	rec := models.Referral{
		ReferrerWallet: referrer,
		ReferredWallet: referred,
		Status:         models.ReferralStatusPending,
		BonusAmount:    models.DefaultReferralBonus,
	}
	err := l.db.WithContext(ctx).Create(&rec).Error
	if err == nil || errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return fmt.Errorf("create referral: %w", err)
}

// PendingBonus sums the bonuses of all pending records for a referrer.
func (l *Ledger) PendingBonus(ctx context.Context, referrer string) (int64, error) {
	var total int64
	err := l.db.WithContext(ctx).Model(&models.Referral{}).
		Where("referrer_wallet = ? AND status = ?", referrer, models.ReferralStatusPending).
		Select("COALESCE(SUM(bonus_amount), 0)").Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum pending bonus: %w", err)
	}
	return total, nil
}

// Claim verifies the proof and moves every pending record for the referrer
// to claimed in one batch, attaching the proof signature. Returns the total
// bonus amount transitioned.
func (l *Ledger) Claim(ctx context.Context, referrer, txSig string) (int64, error) {
	finalized, err := l.verifier.VerifySignature(ctx, txSig)
	if err != nil {
		return 0, fmt.Errorf("verify proof: %w", err)
	}
	if !finalized {
		return 0, ErrInvalidProof
	}

	var total int64
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Referral{}).
			Where("referrer_wallet = ? AND status = ?", referrer, models.ReferralStatusPending).
			Count(&count).Error; err != nil {
			return fmt.Errorf("count pending: %w", err)
		}
		if count == 0 {
			return ErrNothingToClaim
		}
		if err := tx.Model(&models.Referral{}).
			Where("referrer_wallet = ? AND status = ?", referrer, models.ReferralStatusPending).
			Select("COALESCE(SUM(bonus_amount), 0)").Scan(&total).Error; err != nil {
			return fmt.Errorf("sum pending: %w", err)
		}
		result := tx.Model(&models.Referral{}).
			Where("referrer_wallet = ? AND status = ?", referrer, models.ReferralStatusPending).
			Updates(map[string]interface{}{
				"status": models.ReferralStatusClaimed,
				"tx_sig": txSig,
			})
		if result.Error != nil {
			return fmt.Errorf("transition referrals: %w", result.Error)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	l.logger.Printf("claimed %d in referral bonuses for %s", total, referrer)
	return total, nil
}
