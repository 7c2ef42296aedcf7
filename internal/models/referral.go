package models

import "time"

const (
	ReferralStatusPending = "pending"
	ReferralStatusClaimed = "claimed"
)

// DefaultReferralBonus is granted per referred wallet.
const DefaultReferralBonus int64 = 300

type Referral struct {
	ID             uint   `gorm:"primaryKey"`
	ReferrerWallet string `gorm:"index"`
	ReferredWallet string `gorm:"uniqueIndex"`
	Status         string `gorm:"index;default:pending"`
	BonusAmount    int64
	TxSig          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
