package fetcher

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/decker-labs/decker-backend/internal/helius"
)

type pageResult struct {
	txs []helius.Transaction
	err error
}

// scriptedProvider replays canned responses in call order and records the
// cursor of each call.
type scriptedProvider struct {
	results []pageResult
	cursors []string
	calls   int
}

func (p *scriptedProvider) GetPage(ctx context.Context, wallet, before string) ([]helius.Transaction, error) {
	p.cursors = append(p.cursors, before)
	if p.calls >= len(p.results) {
		return nil, nil
	}
	r := p.results[p.calls]
	p.calls++
	return r.txs, r.err
}

func tx(sig string) helius.Transaction {
	return helius.Transaction{Signature: sig}
}

func testPolicy(attempts int) Policy {
	return Policy{
		MaxPages:    10,
		MaxAttempts: attempts,
		Backoff:     func(int) time.Duration { return 0 },
	}
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestFetchAllCursorsOnLastSignature(t *testing.T) {
	provider := &scriptedProvider{results: []pageResult{
		{txs: []helius.Transaction{tx("a"), tx("b")}},
		{txs: []helius.Transaction{tx("c")}},
		{txs: nil},
	}}
	f := New(provider, testPolicy(5), quietLogger())

	all := f.FetchAll(context.Background(), "wallet1")
	if len(all) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(all))
	}
	want := []string{"", "b", "c"}
	for i, cursor := range provider.cursors {
		if cursor != want[i] {
			t.Fatalf("call %d used cursor %q, want %q", i, cursor, want[i])
		}
	}
}

func TestFetchAllEmptyPageHaltsLoop(t *testing.T) {
	provider := &scriptedProvider{results: []pageResult{
		{txs: []helius.Transaction{tx("a")}},
		{txs: []helius.Transaction{tx("b")}},
		{txs: []helius.Transaction{}},
		{txs: []helius.Transaction{tx("never")}},
	}}
	f := New(provider, testPolicy(5), quietLogger())

	all := f.FetchAll(context.Background(), "wallet1")
	if len(all) != 2 {
		t.Fatalf("expected only pages 1-2 aggregated, got %d transactions", len(all))
	}
	if provider.calls != 3 {
		t.Fatalf("expected 3 page calls, got %d", provider.calls)
	}
}

func TestFetchAllReturnsPartialOnExhaustedRetries(t *testing.T) {
	boom := errors.New("upstream down")
	provider := &scriptedProvider{results: []pageResult{
		{txs: []helius.Transaction{tx("a"), tx("b")}},
		{err: boom}, {err: boom}, {err: boom},
	}}
	f := New(provider, testPolicy(3), quietLogger())

	all := f.FetchAll(context.Background(), "wallet1")
	if len(all) != 2 {
		t.Fatalf("expected the partial first page, got %d transactions", len(all))
	}
	if provider.calls != 4 {
		t.Fatalf("expected 1 success + 3 failed attempts, got %d calls", provider.calls)
	}
}

func TestFetchAllRetriesWithinBudget(t *testing.T) {
	provider := &scriptedProvider{results: []pageResult{
		{err: errors.New("flaky")},
		{err: errors.New("flaky")},
		{txs: []helius.Transaction{tx("a")}},
		{txs: nil},
	}}
	f := New(provider, testPolicy(5), quietLogger())

	all := f.FetchAll(context.Background(), "wallet1")
	if len(all) != 1 {
		t.Fatalf("expected the retried page to land, got %d transactions", len(all))
	}
}

func TestFetchAllRespectsMaxPages(t *testing.T) {
	var results []pageResult
	for i := 0; i < 20; i++ {
		results = append(results, pageResult{txs: []helius.Transaction{tx("s")}})
	}
	provider := &scriptedProvider{results: results}
	policy := testPolicy(5)
	policy.MaxPages = 4
	f := New(provider, policy, quietLogger())

	all := f.FetchAll(context.Background(), "wallet1")
	if len(all) != 4 {
		t.Fatalf("expected MaxPages pages of 1 tx, got %d", len(all))
	}
}
