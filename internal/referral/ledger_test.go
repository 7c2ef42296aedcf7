package referral

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/decker-labs/decker-backend/internal/models"
)

type fakeVerifier struct {
	finalized bool
	err       error
}

func (v *fakeVerifier) VerifySignature(ctx context.Context, sig string) (bool, error) {
	return v.finalized, v.err
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Referral{}, &models.Claim{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newTestLedger(t *testing.T, verifier Verifier) *Ledger {
	t.Helper()
	if verifier == nil {
		verifier = &fakeVerifier{finalized: true}
	}
	return NewLedger(setupTestDB(t), verifier, log.New(io.Discard, "", 0))
}

func TestCreateIfAbsentFirstReferrerWins(t *testing.T) {
	ledger := newTestLedger(t, nil)
	ctx := context.Background()

	require.NoError(t, ledger.CreateIfAbsent(ctx, "referrer1", "walletx"))
	// Second referrer for the same wallet is silently ignored.
	require.NoError(t, ledger.CreateIfAbsent(ctx, "referrer2", "walletx"))

	var recs []models.Referral
	require.NoError(t, ledger.db.Find(&recs, "referred_wallet = ?", "walletx").Error)
	require.Len(t, recs, 1)
	require.Equal(t, "referrer1", recs[0].ReferrerWallet)
	require.Equal(t, models.ReferralStatusPending, recs[0].Status)
	require.Equal(t, models.DefaultReferralBonus, recs[0].BonusAmount)
}

func TestPendingBonusSumsOnlyPending(t *testing.T) {
	ledger := newTestLedger(t, nil)
	ctx := context.Background()

	require.NoError(t, ledger.CreateIfAbsent(ctx, "referrer1", "w1"))
	require.NoError(t, ledger.CreateIfAbsent(ctx, "referrer1", "w2"))
	require.NoError(t, ledger.CreateIfAbsent(ctx, "referrer2", "w3"))

	total, err := ledger.PendingBonus(ctx, "referrer1")
	require.NoError(t, err)
	require.Equal(t, 2*models.DefaultReferralBonus, total)

	total, err = ledger.PendingBonus(ctx, "nobody")
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestClaimTransitionsAllPending(t *testing.T) {
	ledger := newTestLedger(t, nil)
	ctx := context.Background()

	require.NoError(t, ledger.CreateIfAbsent(ctx, "referrer1", "w1"))
	require.NoError(t, ledger.CreateIfAbsent(ctx, "referrer1", "w2"))

	total, err := ledger.Claim(ctx, "referrer1", "sig123")
	require.NoError(t, err)
	require.Equal(t, 2*models.DefaultReferralBonus, total)

	var recs []models.Referral
	require.NoError(t, ledger.db.Find(&recs, "referrer_wallet = ?", "referrer1").Error)
	require.Len(t, recs, 2)
	for _, rec := range recs {
		require.Equal(t, models.ReferralStatusClaimed, rec.Status)
		require.Equal(t, "sig123", rec.TxSig)
	}

	// Claiming is one-way: a repeat claim finds nothing.
	_, err = ledger.Claim(ctx, "referrer1", "sig456")
	require.ErrorIs(t, err, ErrNothingToClaim)
}

func TestClaimWithUnverifiedProofMutatesNothing(t *testing.T) {
	ledger := newTestLedger(t, &fakeVerifier{finalized: false})
	ctx := context.Background()

	require.NoError(t, ledger.CreateIfAbsent(ctx, "referrer1", "w1"))

	_, err := ledger.Claim(ctx, "referrer1", "badsig")
	require.ErrorIs(t, err, ErrInvalidProof)

	var rec models.Referral
	require.NoError(t, ledger.db.First(&rec, "referred_wallet = ?", "w1").Error)
	require.Equal(t, models.ReferralStatusPending, rec.Status)
	require.Empty(t, rec.TxSig)
}

func TestClaimVerifierErrorSurfaces(t *testing.T) {
	boom := errors.New("rpc down")
	ledger := newTestLedger(t, &fakeVerifier{err: boom})

	_, err := ledger.Claim(context.Background(), "referrer1", "sig")
	require.ErrorIs(t, err, boom)
}

func TestClaimNothingPending(t *testing.T) {
	ledger := newTestLedger(t, nil)

	_, err := ledger.Claim(context.Background(), "referrer1", "sig")
	require.ErrorIs(t, err, ErrNothingToClaim)
}

func TestRecordClaimAccumulates(t *testing.T) {
	ledger := newTestLedger(t, nil)
	ctx := context.Background()

	amount, err := ledger.ClaimedAmount(ctx, "walletx")
	require.NoError(t, err)
	require.Zero(t, amount)

	require.NoError(t, ledger.RecordClaim(ctx, "walletx", 4000, "sig1"))
	require.NoError(t, ledger.RecordClaim(ctx, "walletx", 1500, "sig2"))

	amount, err = ledger.ClaimedAmount(ctx, "walletx")
	require.NoError(t, err)
	require.Equal(t, int64(5500), amount)

	// Still a single record per wallet.
	var count int64
	require.NoError(t, ledger.db.Model(&models.Claim{}).Where("wallet = ?", "walletx").Count(&count).Error)
	require.Equal(t, int64(1), count)
}
