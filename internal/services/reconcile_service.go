package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/Deivitto/MetalFun/internal/metal"
	"github.com/Deivitto/MetalFun/internal/models"
	"gorm.io/gorm"
)

// ReconcileService keeps local coins consistent with the external token
// registry. The registry and the local store are independently writable, so
// reconciliation is a best-effort, idempotent upsert that self-heals on the
// next poll rather than a transactional join.
type ReconcileService interface {
	// SyncAllTokens pulls the full registry token list and upserts a local
	// coin for every completed token. One bad token never aborts the batch.
	SyncAllTokens(ctx context.Context) (*metal.TokenList, error)

	// ResolveJob polls a pending creation job and, on a terminal status,
	// resolves the local placeholder coin tracking it.
	ResolveJob(ctx context.Context, jobID string) (*metal.JobStatus, error)

	// SubmitCreation issues the creation request to the registry and, on
	// success, registers a local placeholder coin for the returned job.
	// Placeholder bookkeeping failures are logged, never surfaced.
	SubmitCreation(ctx context.Context, req metal.CreateTokenRequest) (*metal.CreateJob, error)
}

type reconcileService struct {
	client metal.Client
	coins  CoinService
}

func NewReconcileService(client metal.Client, coins CoinService) ReconcileService {
	return &reconcileService{client: client, coins: coins}
}

func (s *reconcileService) SyncAllTokens(ctx context.Context) (*metal.TokenList, error) {
	list, err := s.client.ListAllTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list registry tokens: %w", err)
	}

	for i := range list.Tokens {
		token := &list.Tokens[i]
		if token.Status != metal.TokenStatusCompleted || token.Address == "" {
			continue
		}

		details, err := s.client.GetToken(ctx, token.Address)
		if err != nil {
			log.Printf("skipping token %s: failed to fetch details: %v", token.Symbol, err)
			continue
		}
		// Callers get the enriched view, not the sparse list entry.
		list.Tokens[i] = *details

		if err := s.upsertToken(details); err != nil {
			log.Printf("skipping token %s: %v", details.Symbol, err)
		}
	}

	return list, nil
}

// upsertToken merges the registry's view of a token into the local store,
// matching by symbol first, then by registry address to survive symbol drift.
func (s *reconcileService) upsertToken(token *metal.Token) error {
	coin, err := s.coins.GetCoinBySymbol(token.Symbol)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		coin, err = s.coins.GetCoinByTokenAddress(token.Address)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if coin != nil {
		_, err := s.coins.UpdateCoin(coin.ID, s.tokenStatsUpdate(token, coin))
		if err != nil {
			return fmt.Errorf("failed to update coin %d: %w", coin.ID, err)
		}
		log.Printf("updated coin for registry token %s", token.Symbol)
		return nil
	}

	_, err = s.coins.CreateCoin(CreateCoinRequest{
		Name:        token.Name,
		Symbol:      token.Symbol,
		Description: fmt.Sprintf("%s token on Metal", token.Name),
		Image:       "",
		CreatedBy:   createdByOrUnknown(token.OwnerAddress, token.MerchantAddress),
		IsMigrated:  true,
		Tags:        []string{"metal"},
		MarketCap:   int64(token.MarketCap),
		HolderCount: token.Holders,
		Price:       formatTokenPrice(token.Price),
		Volume24h:   strconv.FormatFloat(token.Volume24h, 'f', -1, 64),
		Metadata:    tokenMetadata(token),
	})
	if err != nil {
		return fmt.Errorf("failed to create coin: %w", err)
	}
	log.Printf("created coin for registry token %s", token.Symbol)
	return nil
}

func (s *reconcileService) ResolveJob(ctx context.Context, jobID string) (*metal.JobStatus, error) {
	status, err := s.client.GetJobStatus(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch job status: %w", err)
	}

	switch status.Status {
	case metal.TokenStatusCompleted:
		s.resolveCompletedJob(ctx, jobID, status)
	case metal.TokenStatusFailed:
		s.resolveFailedJob(jobID, status)
	}
	// Pending stays pending; the caller polls again later.

	return status, nil
}

// resolveCompletedJob is a two-phase update: stamp the address and clear the
// pending flag first, then best-effort overwrite the stats from a full detail
// fetch. A failed detail fetch leaves the coin partially resolved until the
// next full sync repairs it.
func (s *reconcileService) resolveCompletedJob(ctx context.Context, jobID string, status *metal.JobStatus) {
	if status.Token == nil || status.Token.Address == "" {
		log.Printf("job %s completed without a token address", jobID)
		return
	}

	coin, err := s.coins.GetCoinByJobID(jobID)
	if err != nil {
		log.Printf("no pending coin found for job %s: %v", jobID, err)
		return
	}

	metadata := models.CoinMetadata{}
	if coin.Metadata != nil {
		metadata = *coin.Metadata
	}
	metadata.Address = status.Token.Address
	metadata.PendingTokenCreation = false
	if _, err := s.coins.UpdateCoin(coin.ID, CoinUpdate{Metadata: &metadata}); err != nil {
		log.Printf("failed to stamp address on coin %d for job %s: %v", coin.ID, jobID, err)
		return
	}

	details, err := s.client.GetToken(ctx, status.Token.Address)
	if err != nil {
		log.Printf("job %s resolved but detail fetch failed, stats stay stale: %v", jobID, err)
		return
	}
	if _, err := s.coins.UpdateCoin(coin.ID, s.tokenStatsUpdate(details, coin)); err != nil {
		log.Printf("failed to refresh stats on coin %d for job %s: %v", coin.ID, jobID, err)
	}
}

// resolveFailedJob records the failure on the placeholder coin. The coin is
// retained so the user can see what went wrong.
func (s *reconcileService) resolveFailedJob(jobID string, status *metal.JobStatus) {
	coin, err := s.coins.GetCoinByJobID(jobID)
	if err != nil {
		log.Printf("no pending coin found for failed job %s: %v", jobID, err)
		return
	}

	metadata := models.CoinMetadata{}
	if coin.Metadata != nil {
		metadata = *coin.Metadata
	}
	metadata.PendingTokenCreation = false
	metadata.CreationFailed = true
	metadata.FailureReason = status.Error
	if metadata.FailureReason == "" {
		metadata.FailureReason = "token creation failed"
	}
	if _, err := s.coins.UpdateCoin(coin.ID, CoinUpdate{Metadata: &metadata}); err != nil {
		log.Printf("failed to record failure on coin %d for job %s: %v", coin.ID, jobID, err)
	}
}

func (s *reconcileService) SubmitCreation(ctx context.Context, req metal.CreateTokenRequest) (*metal.CreateJob, error) {
	job, err := s.client.CreateToken(ctx, req)
	if err != nil {
		return nil, err
	}

	if _, err := s.coins.GetCoinBySymbol(req.Symbol); err == nil {
		log.Printf("coin with symbol %s already exists, skipping placeholder", req.Symbol)
		return job, nil
	}

	_, err = s.coins.CreateCoin(CreateCoinRequest{
		Name:        req.Name,
		Symbol:      req.Symbol,
		Description: fmt.Sprintf("%s token on Metal", req.Name),
		CreatedBy:   createdByOrUnknown(req.MerchantAddress),
		Tags:        []string{"metal"},
		Price:       "0",
		Metadata: &models.CoinMetadata{
			Name:                 req.Name,
			Symbol:               req.Symbol,
			MerchantAddress:      req.MerchantAddress,
			JobID:                job.ID,
			PendingTokenCreation: true,
		},
	})
	if err != nil {
		// Local bookkeeping must never block the creation flow.
		log.Printf("failed to create placeholder coin for job %s: %v", job.ID, err)
	}

	return job, nil
}

// tokenStatsUpdate builds the merge-update applied when the registry's view
// of a token lands on an existing coin. previousHolderCount snapshots the
// pre-update value so trending captures one-step growth.
func (s *reconcileService) tokenStatsUpdate(token *metal.Token, coin *models.Coin) CoinUpdate {
	price := formatTokenPrice(token.Price)
	marketCap := coin.MarketCap
	if token.MarketCap != 0 {
		marketCap = int64(token.MarketCap)
	}
	holderCount := coin.HolderCount
	if token.Holders != 0 {
		holderCount = token.Holders
	}
	previousHolderCount := coin.HolderCount

	return CoinUpdate{
		Price:               &price,
		MarketCap:           &marketCap,
		HolderCount:         &holderCount,
		PreviousHolderCount: &previousHolderCount,
		Metadata:            tokenMetadata(token),
	}
}

func tokenMetadata(token *metal.Token) *models.CoinMetadata {
	return &models.CoinMetadata{
		Address:               token.Address,
		Name:                  token.Name,
		Symbol:                token.Symbol,
		MerchantAddress:       token.MerchantAddress,
		TotalSupply:           token.TotalSupply,
		MerchantSupply:        token.MerchantSupply,
		Price:                 token.Price,
		RemainingRewardSupply: token.RemainingSupply(),
		StartingRewardSupply:  token.StartingSupply(),
	}
}

func formatTokenPrice(price float64) string {
	if price == 0 {
		return "0"
	}
	return strconv.FormatFloat(price, 'f', -1, 64)
}

// createdByOrUnknown picks the first non-empty address candidate.
func createdByOrUnknown(candidates ...string) string {
	for _, candidate := range candidates {
		if candidate != "" {
			return candidate
		}
	}
	return "Unknown"
}
