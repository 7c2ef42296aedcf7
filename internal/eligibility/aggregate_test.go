package eligibility

import (
	"testing"

	"github.com/decker-labs/decker-backend/internal/helius"
)

func TestAggregateVolumeCountsBothDirections(t *testing.T) {
	txs := []helius.Transaction{
		{Signature: "s1", NativeTransfers: []helius.NativeTransfer{
			{FromUserAccount: "other", ToUserAccount: "walletx", Amount: 10 * lamportsPerSOL},
		}},
		{Signature: "s2", NativeTransfers: []helius.NativeTransfer{
			{FromUserAccount: "walletx", ToUserAccount: "other", Amount: 5 * lamportsPerSOL},
			{FromUserAccount: "a", ToUserAccount: "b", Amount: 99 * lamportsPerSOL},
		}},
	}

	volume, count := AggregateVolume("walletx", txs)
	if volume != 1500 {
		t.Fatalf("expected 15 SOL * 100 = 1500 USD, got %v", volume)
	}
	if count != 2 {
		t.Fatalf("expected 2 matching transfers, got %d", count)
	}
}

func TestAggregateVolumeCaseInsensitive(t *testing.T) {
	txs := []helius.Transaction{
		{NativeTransfers: []helius.NativeTransfer{
			{FromUserAccount: "other", ToUserAccount: "WalletX", Amount: lamportsPerSOL},
		}},
	}

	volume, count := AggregateVolume("walletx", txs)
	if count != 1 || volume != 100 {
		t.Fatalf("mixed-case account must match: volume=%v count=%d", volume, count)
	}
}

func TestAggregateVolumeEmptyHistory(t *testing.T) {
	volume, count := AggregateVolume("walletx", nil)
	if volume != 0 || count != 0 {
		t.Fatalf("expected zeros, got volume=%v count=%d", volume, count)
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  WalletX "); got != "walletx" {
		t.Fatalf("Normalize = %q", got)
	}
	if got := Normalize("   "); got != "" {
		t.Fatalf("blank input must normalize to empty, got %q", got)
	}
}
