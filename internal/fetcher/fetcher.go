package fetcher

import (
	"context"
	"log"
	"time"

	"github.com/decker-labs/decker-backend/internal/helius"
)

// PageGetter retrieves one page of transaction history for a wallet.
// An empty before cursor means "from the top".
type PageGetter interface {
	GetPage(ctx context.Context, wallet, before string) ([]helius.Transaction, error)
}

// Policy bounds the crawl. Backoff maps a 1-based attempt number to the
// pause before the next try.
type Policy struct {
	MaxPages    int
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxPages:    10,
		MaxAttempts: 5,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(attempt) * 500 * time.Millisecond
		},
	}
}

// Fetcher walks a wallet's history page by page, cursoring on the last
// signature of each page. It never reads or writes the cache; callers own
// that, so a forced refresh can reuse it as-is.
type Fetcher struct {
	provider PageGetter
	policy   Policy
	logger   *log.Logger
}

func New(provider PageGetter, policy Policy, logger *log.Logger) *Fetcher {
	if policy.MaxPages <= 0 {
		policy.MaxPages = DefaultPolicy().MaxPages
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultPolicy().MaxAttempts
	}
	if policy.Backoff == nil {
		policy.Backoff = DefaultPolicy().Backoff
	}
	return &Fetcher{provider: provider, policy: policy, logger: logger}
}

// FetchAll returns everything it could collect, best-effort. A page whose
// retry budget is spent halts the crawl and whatever has accumulated is
// returned; upstream transience never surfaces as an error.
func (f *Fetcher) FetchAll(ctx context.Context, wallet string) []helius.Transaction {
	var all []helius.Transaction
	before := ""

	for page := 0; page < f.policy.MaxPages; page++ {
		txs, ok := f.fetchPage(ctx, wallet, before, page)
		if !ok {
			f.logger.Printf("giving up on page %d for %s, keeping %d transactions", page+1, wallet, len(all))
			break
		}
		if len(txs) == 0 {
			break // end of history
		}
		all = append(all, txs...)
		before = txs[len(txs)-1].Signature
	}

	return all
}

func (f *Fetcher) fetchPage(ctx context.Context, wallet, before string, page int) ([]helius.Transaction, bool) {
	for attempt := 1; attempt <= f.policy.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, false
		}
		txs, err := f.provider.GetPage(ctx, wallet, before)
		if err == nil {
			return txs, true
		}
		f.logger.Printf("page %d fetch failed (attempt %d) for %s: %v", page+1, attempt, wallet, err)
		if attempt < f.policy.MaxAttempts {
			time.Sleep(f.policy.Backoff(attempt))
		}
	}
	return nil, false
}
