package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/decker-labs/decker-backend/internal/eligibility"
	"github.com/decker-labs/decker-backend/internal/referral"
)

// EligibilityChecker answers the main eligibility query.
type EligibilityChecker interface {
	CheckEligibility(ctx context.Context, wallet, referrer string) (eligibility.Result, error)
}

// ReferralClaims is the claim-flow slice of the referral ledger.
type ReferralClaims interface {
	Claim(ctx context.Context, referrer, txSig string) (int64, error)
	RecordClaim(ctx context.Context, wallet string, amount int64, txSig string) error
}

// ProofVerifier gates disbursement recording on chain finality.
type ProofVerifier interface {
	VerifySignature(ctx context.Context, sig string) (bool, error)
}

type Server struct {
	checker   EligibilityChecker
	referrals ReferralClaims
	verifier  ProofVerifier
	logger    *log.Logger
}

func NewServer(checker EligibilityChecker, referrals ReferralClaims, verifier ProofVerifier, logger *log.Logger) *Server {
	return &Server{
		checker:   checker,
		referrals: referrals,
		verifier:  verifier,
		logger:    logger,
	}
}

func (s *Server) Router() *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/check-eligibility", s.checkEligibility)
	router.POST("/claim-referral", s.claimReferral)
	router.POST("/record-claim", s.recordClaim)

	return router
}

func (s *Server) checkEligibility(c *gin.Context) {
	wallet := c.Query("wallet")
	referrer := c.Query("referrer")

	result, err := s.checker.CheckEligibility(c.Request.Context(), wallet, referrer)
	if err != nil {
		if errors.Is(err, eligibility.ErrMissingWallet) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing wallet address"})
			return
		}
		s.logger.Printf("eligibility check failed for %q: %v", wallet, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var tier interface{} = "None"
	if result.Tier != 0 {
		tier = result.Tier
	}

	c.JSON(http.StatusOK, gin.H{
		"wallet":               result.Wallet,
		"volumeUSD":            fmt.Sprintf("%.2f", result.VolumeUSD),
		"tier":                 tier,
		"reward":               result.Reward,
		"eligible":             result.Eligible,
		"relevantTxCount":      result.RelevantTxCount,
		"isOGHolder":           result.IsOGHolder,
		"totalWithOG":          result.TotalWithOG,
		"isDegenBonusHolder":   result.IsDegenBonusHolder,
		"degenBonus":           result.DegenBonus,
		"isRoleHolder":         result.IsRoleHolder,
		"finalTotal":           result.FinalTotal,
		"alreadyClaimed":       result.AlreadyClaimed,
		"referralPendingBonus": result.ReferralPendingBonus,
	})
}

type claimReferralRequest struct {
	ReferrerWallet string `json:"referrerWallet"`
	TxSig          string `json:"txSig"`
}

func (s *Server) claimReferral(c *gin.Context) {
	var req claimReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing parameters"})
		return
	}
	referrer := eligibility.Normalize(req.ReferrerWallet)
	if referrer == "" || req.TxSig == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing parameters"})
		return
	}

	claimed, err := s.referrals.Claim(c.Request.Context(), referrer, req.TxSig)
	switch {
	case errors.Is(err, referral.ErrInvalidProof):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proof"})
	case errors.Is(err, referral.ErrNothingToClaim):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to claim"})
	case err != nil:
		s.logger.Printf("referral claim failed for %s: %v", referrer, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	default:
		c.JSON(http.StatusOK, gin.H{"claimedAmount": claimed})
	}
}

type recordClaimRequest struct {
	Wallet string `json:"wallet"`
	Amount int64  `json:"amount"`
	TxSig  string `json:"txSig"`
}

func (s *Server) recordClaim(c *gin.Context) {
	var req recordClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing parameters"})
		return
	}
	wallet := eligibility.Normalize(req.Wallet)
	if wallet == "" || req.TxSig == "" || req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing parameters"})
		return
	}

	finalized, err := s.verifier.VerifySignature(c.Request.Context(), req.TxSig)
	if err != nil {
		s.logger.Printf("proof verification failed for %s: %v", req.TxSig, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if !finalized {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proof"})
		return
	}

	if err := s.referrals.RecordClaim(c.Request.Context(), wallet, req.Amount, req.TxSig); err != nil {
		s.logger.Printf("failed to record claim for %s: %v", wallet, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
