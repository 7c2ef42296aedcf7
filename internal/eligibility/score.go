package eligibility

import "github.com/decker-labs/decker-backend/internal/allowlist"

const (
	// OGBonus is the flat bonus for wallets on the OG list.
	OGBonus int64 = 15000
	// RoleHolderBonus is the flat bonus for wallets holding the role flag.
	RoleHolderBonus int64 = 15000
)

type tierBand struct {
	level        int
	minVolumeUSD float64
	reward       int64
}

// Evaluated top-down, first match wins; bands are closed at the lower bound.
var tierTable = []tierBand{
	{1, 3_000_000, 25000},
	{2, 500_000, 15000},
	{3, 250_000, 7000},
	{4, 30_000, 3000},
	{5, 1_000, 1500},
}

// TierFor maps a USD volume to its tier and base reward. Level 0 means no
// tier qualified.
func TierFor(volumeUSD float64) (level int, reward int64) {
	for _, band := range tierTable {
		if volumeUSD >= band.minVolumeUSD {
			return band.level, band.reward
		}
	}
	return 0, 0
}

// Result is the composed eligibility answer for one wallet.
type Result struct {
	Wallet               string
	VolumeUSD            float64
	Tier                 int // 0 = none
	Reward               int64
	Eligible             bool
	RelevantTxCount      int
	IsOGHolder           bool
	TotalWithOG          int64
	IsDegenBonusHolder   bool
	DegenBonus           int64
	IsRoleHolder         bool
	FinalTotal           int64
	AlreadyClaimed       int64
	ReferralPendingBonus int64
}

// Score composes the tier reward with the allow-list bonuses and deducts
// what the wallet has already been paid. All bonuses are additive and
// independent of tier; a wallet on any list is eligible even with no tier.
func Score(wallet string, volumeUSD float64, lists *allowlist.Snapshot, alreadyClaimed int64) Result {
	tier, reward := TierFor(volumeUSD)

	isOG := lists.IsOG(wallet)
	totalWithOG := reward
	if isOG {
		totalWithOG += OGBonus
	}

	degenBonus, isDegen := lists.DegenBonus(wallet)
	isRole := lists.IsRoleHolder(wallet)

	finalTotal := totalWithOG + degenBonus
	if isRole {
		finalTotal += RoleHolderBonus
	}
	finalTotal -= alreadyClaimed
	if finalTotal < 0 {
		finalTotal = 0
	}

	return Result{
		Wallet:             wallet,
		VolumeUSD:          volumeUSD,
		Tier:               tier,
		Reward:             reward,
		Eligible:           tier != 0 || lists.OnAnyList(wallet),
		IsOGHolder:         isOG,
		TotalWithOG:        totalWithOG,
		IsDegenBonusHolder: isDegen,
		DegenBonus:         degenBonus,
		IsRoleHolder:       isRole,
		FinalTotal:         finalTotal,
		AlreadyClaimed:     alreadyClaimed,
	}
}
