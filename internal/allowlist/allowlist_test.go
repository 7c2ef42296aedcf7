package allowlist

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshotNormalizesWallets(t *testing.T) {
	s := NewSnapshot(
		map[string]int64{" WalletA ": 5000},
		[]string{"WALLETB"},
		[]string{"walletc"},
	)

	amount, ok := s.DegenBonus("walleta")
	require.True(t, ok)
	require.Equal(t, int64(5000), amount)

	require.True(t, s.IsOG("walletb"))
	require.True(t, s.IsRoleHolder("walletc"))
	require.False(t, s.IsOG("walleta"))
}

func TestSnapshotOnAnyList(t *testing.T) {
	s := NewSnapshot(map[string]int64{"a": 0}, []string{"b"}, []string{"c"})

	for _, wallet := range []string{"a", "b", "c"} {
		require.True(t, s.OnAnyList(wallet), wallet)
	}
	require.False(t, s.OnAnyList("d"))
}

func TestLoadFromLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "degen.csv")
	csvData := "wallet,amount\nWalletA,5000\nwalletb,not-a-number\n,100\nwalletc\n"
	require.NoError(t, os.WriteFile(path, []byte(csvData), 0o644))

	s := Load(context.Background(), Sources{DegenBonusCSV: path}, quietLogger())

	amount, ok := s.DegenBonus("walleta")
	require.True(t, ok)
	require.Equal(t, int64(5000), amount)

	// Malformed amount keeps the wallet listed with a zero bonus.
	amount, ok = s.DegenBonus("walletb")
	require.True(t, ok)
	require.Zero(t, amount)

	// Row without a wallet is skipped.
	_, ok = s.DegenBonus("")
	require.False(t, ok)

	// Row without an amount column still lists the wallet.
	_, ok = s.DegenBonus("walletc")
	require.True(t, ok)
}

func TestLoadFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "wallet\nOGWallet1\nogwallet2\n")
	}))
	defer server.Close()

	s := Load(context.Background(), Sources{OGListCSV: server.URL}, quietLogger())

	require.True(t, s.IsOG("ogwallet1"))
	require.True(t, s.IsOG("ogwallet2"))
}

func TestLoadFailedSourceYieldsEmptyList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := Load(context.Background(), Sources{
		OGListCSV:     server.URL,
		RoleHolderCSV: filepath.Join(t.TempDir(), "missing.csv"),
	}, quietLogger())

	require.False(t, s.IsOG("anything"))
	require.False(t, s.IsRoleHolder("anything"))
}

func TestHolderSwap(t *testing.T) {
	first := NewSnapshot(nil, []string{"a"}, nil)
	second := NewSnapshot(nil, []string{"b"}, nil)

	h := NewHolder(first)
	require.True(t, h.Current().IsOG("a"))

	h.Swap(second)
	require.False(t, h.Current().IsOG("a"))
	require.True(t, h.Current().IsOG("b"))
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}
