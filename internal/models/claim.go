package models

import "time"

// Claim records how much a wallet has already been paid out, so repeated
// eligibility checks report the remaining balance instead of the gross total.
type Claim struct {
	ID            uint   `gorm:"primaryKey"`
	Wallet        string `gorm:"uniqueIndex"`
	ClaimedAmount int64
	TxSig         string
	ClaimedAt     time.Time
}
