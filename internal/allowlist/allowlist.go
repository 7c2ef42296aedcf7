package allowlist

import (
	"strings"
	"sync/atomic"
)

// Snapshot is an immutable view of the three curated lists. Handlers read a
// snapshot without locking; reload builds a fresh one and swaps it in.
type Snapshot struct {
	degenBonus  map[string]int64
	og          map[string]struct{}
	roleHolders map[string]struct{}
}

func NewSnapshot(degenBonus map[string]int64, og, roleHolders []string) *Snapshot {
	s := &Snapshot{
		degenBonus:  make(map[string]int64, len(degenBonus)),
		og:          make(map[string]struct{}, len(og)),
		roleHolders: make(map[string]struct{}, len(roleHolders)),
	}
	for wallet, amount := range degenBonus {
		s.degenBonus[normalize(wallet)] = amount
	}
	for _, wallet := range og {
		s.og[normalize(wallet)] = struct{}{}
	}
	for _, wallet := range roleHolders {
		s.roleHolders[normalize(wallet)] = struct{}{}
	}
	return s
}

// DegenBonus returns the wallet's personal bonus amount and whether the
// wallet is on the list at all. Listed wallets with a malformed amount
// carry a zero bonus but still count as listed.
func (s *Snapshot) DegenBonus(wallet string) (int64, bool) {
	amount, ok := s.degenBonus[wallet]
	return amount, ok
}

func (s *Snapshot) IsOG(wallet string) bool {
	_, ok := s.og[wallet]
	return ok
}

func (s *Snapshot) IsRoleHolder(wallet string) bool {
	_, ok := s.roleHolders[wallet]
	return ok
}

// OnAnyList reports membership on at least one of the three lists.
func (s *Snapshot) OnAnyList(wallet string) bool {
	if _, ok := s.degenBonus[wallet]; ok {
		return true
	}
	return s.IsOG(wallet) || s.IsRoleHolder(wallet)
}

func normalize(wallet string) string {
	return strings.ToLower(strings.TrimSpace(wallet))
}

// Holder publishes the current snapshot to concurrent readers.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

func NewHolder(s *Snapshot) *Holder {
	h := &Holder{}
	h.current.Store(s)
	return h
}

func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Swap replaces the published snapshot in one step.
func (h *Holder) Swap(s *Snapshot) {
	h.current.Store(s)
}
