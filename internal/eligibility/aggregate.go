package eligibility

import (
	"strings"

	"github.com/decker-labs/decker-backend/internal/helius"
)

const (
	lamportsPerSOL = 1_000_000_000
	// SolToUSD is a fixed conversion rate; activity scoring does not need
	// an oracle-accurate price.
	SolToUSD = 100
)

// Normalize canonicalizes a wallet address. Every lookup and storage key
// downstream assumes this has been applied exactly once.
func Normalize(wallet string) string {
	return strings.ToLower(strings.TrimSpace(wallet))
}

// AggregateVolume sums the USD value of every native transfer touching the
// normalized target wallet, inbound and outbound alike, and counts them.
// Both directions count: the figure approximates activity, not net balance.
func AggregateVolume(wallet string, txs []helius.Transaction) (volumeUSD float64, count int) {
	for _, tx := range txs {
		for _, transfer := range tx.NativeTransfers {
			if strings.ToLower(transfer.ToUserAccount) == wallet ||
				strings.ToLower(transfer.FromUserAccount) == wallet {
				solAmount := float64(transfer.Amount) / lamportsPerSOL
				volumeUSD += solAmount * SolToUSD
				count++
			}
		}
	}
	return volumeUSD, count
}
