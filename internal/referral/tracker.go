package referral

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/decker-labs/decker-backend/internal/models"
)

// ClaimedAmount returns how much has already been paid out to a wallet,
// zero when no claim record exists.
func (l *Ledger) ClaimedAmount(ctx context.Context, wallet string) (int64, error) {
	var claim models.Claim
	err := l.db.WithContext(ctx).First(&claim, "wallet = ?", wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("lookup claim: %w", err)
	}
	return claim.ClaimedAmount, nil
}

// RecordClaim adds a disbursed amount to the wallet's claim record,
// creating the record on first disbursement. The running total is what
// eligibility checks deduct.
func (l *Ledger) RecordClaim(ctx context.Context, wallet string, amount int64, txSig string) error {
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var claim models.Claim
		err := tx.First(&claim, "wallet = ?", wallet).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			claim = models.Claim{
				Wallet:        wallet,
				ClaimedAmount: amount,
				TxSig:         txSig,
				ClaimedAt:     time.Now().UTC(),
			}
			if err := tx.Create(&claim).Error; err != nil {
				return fmt.Errorf("create claim: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("lookup claim: %w", err)
		}
		updates := map[string]interface{}{
			"claimed_amount": claim.ClaimedAmount + amount,
			"tx_sig":         txSig,
			"claimed_at":     time.Now().UTC(),
		}
		if err := tx.Model(&claim).Updates(updates).Error; err != nil {
			return fmt.Errorf("update claim: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return nil
}
