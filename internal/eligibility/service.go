package eligibility

import (
	"context"
	"errors"
	"log"

	"github.com/decker-labs/decker-backend/internal/allowlist"
	"github.com/decker-labs/decker-backend/internal/helius"
)

// ErrMissingWallet means the request carried no wallet address.
var ErrMissingWallet = errors.New("missing wallet address")

// TxCache is the per-wallet history cache consulted before the upstream.
type TxCache interface {
	Get(ctx context.Context, wallet string) ([]helius.Transaction, bool, error)
	Put(ctx context.Context, wallet string, txs []helius.Transaction) error
}

// HistoryFetcher crawls the upstream provider, best-effort.
type HistoryFetcher interface {
	FetchAll(ctx context.Context, wallet string) []helius.Transaction
}

// ReferralStore is the slice of the referral ledger the eligibility flow needs.
type ReferralStore interface {
	CreateIfAbsent(ctx context.Context, referrer, referred string) error
	PendingBonus(ctx context.Context, referrer string) (int64, error)
	ClaimedAmount(ctx context.Context, wallet string) (int64, error)
}

// Service answers eligibility requests. Store and upstream failures degrade
// to a best-effort answer; only missing input surfaces as an error.
type Service struct {
	cache     TxCache
	fetcher   HistoryFetcher
	referrals ReferralStore
	lists     *allowlist.Holder
	logger    *log.Logger
}

func NewService(cache TxCache, fetcher HistoryFetcher, referrals ReferralStore, lists *allowlist.Holder, logger *log.Logger) *Service {
	return &Service{
		cache:     cache,
		fetcher:   fetcher,
		referrals: referrals,
		lists:     lists,
		logger:    logger,
	}
}

// CheckEligibility normalizes the wallet, records a first-time referral when
// a distinct referrer is presented, loads history cache-first, and composes
// the scored result.
func (s *Service) CheckEligibility(ctx context.Context, walletRaw, referrerRaw string) (Result, error) {
	wallet := Normalize(walletRaw)
	if wallet == "" {
		return Result{}, ErrMissingWallet
	}

	if referrer := Normalize(referrerRaw); referrer != "" && referrer != wallet {
		if err := s.referrals.CreateIfAbsent(ctx, referrer, wallet); err != nil {
			s.logger.Printf("failed to record referral %s -> %s: %v", referrer, wallet, err)
		}
	}

	txs := s.loadHistory(ctx, wallet)
	volumeUSD, count := AggregateVolume(wallet, txs)

	claimed, err := s.referrals.ClaimedAmount(ctx, wallet)
	if err != nil {
		s.logger.Printf("failed to read claimed amount for %s: %v", wallet, err)
		claimed = 0
	}

	result := Score(wallet, volumeUSD, s.lists.Current(), claimed)
	result.RelevantTxCount = count

	pending, err := s.referrals.PendingBonus(ctx, wallet)
	if err != nil {
		s.logger.Printf("failed to read pending referral bonus for %s: %v", wallet, err)
		pending = 0
	}
	result.ReferralPendingBonus = pending

	return result, nil
}

type historyOutcome int

const (
	historyHit historyOutcome = iota
	historyMiss
	historyDegraded
)

// loadHistory is the single cache-aside path: hit serves the cached set,
// miss crawls upstream and writes back, a cache failure degrades to a
// crawl without failing the request.
func (s *Service) loadHistory(ctx context.Context, wallet string) []helius.Transaction {
	outcome := historyMiss
	txs, hit, err := s.cache.Get(ctx, wallet)
	if err != nil {
		s.logger.Printf("cache read failed for %s: %v", wallet, err)
		outcome = historyDegraded
	} else if hit {
		outcome = historyHit
	}

	if outcome == historyHit {
		return txs
	}

	txs = s.fetcher.FetchAll(ctx, wallet)
	if err := s.cache.Put(ctx, wallet, txs); err != nil {
		s.logger.Printf("cache write failed for %s: %v", wallet, err)
	}
	return txs
}
