package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Deivitto/MetalFun/internal/metal"
	"github.com/Deivitto/MetalFun/internal/models"
	"github.com/Deivitto/MetalFun/internal/services"
)

// fakeMetalClient serves canned registry responses.
type fakeMetalClient struct {
	tokens    []metal.Token
	details   map[string]*metal.Token
	jobs      map[string]*metal.JobStatus
	createJob *metal.CreateJob

	listErr    error
	detailErr  map[string]error
	createErr  error
	jobErr     error
	tokenCalls int
}

func (f *fakeMetalClient) ListAllTokens(ctx context.Context) (*metal.TokenList, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &metal.TokenList{Tokens: f.tokens}, nil
}

func (f *fakeMetalClient) GetToken(ctx context.Context, address string) (*metal.Token, error) {
	f.tokenCalls++
	if err := f.detailErr[address]; err != nil {
		return nil, err
	}
	token, ok := f.details[address]
	if !ok {
		return nil, &metal.APIError{StatusCode: 404, Body: "not found"}
	}
	return token, nil
}

func (f *fakeMetalClient) CreateToken(ctx context.Context, req metal.CreateTokenRequest) (*metal.CreateJob, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createJob, nil
}

func (f *fakeMetalClient) GetJobStatus(ctx context.Context, jobID string) (*metal.JobStatus, error) {
	if f.jobErr != nil {
		return nil, f.jobErr
	}
	status, ok := f.jobs[jobID]
	if !ok {
		return nil, &metal.APIError{StatusCode: 404, Body: "unknown job"}
	}
	return status, nil
}

func (f *fakeMetalClient) CreateLiquidity(ctx context.Context, tokenAddress string) (*metal.LiquidityResult, error) {
	return &metal.LiquidityResult{Success: true}, nil
}

func (f *fakeMetalClient) ProvisionWallet(ctx context.Context, userID string) (*metal.Wallet, error) {
	return &metal.Wallet{Address: "0xwallet"}, nil
}

type ReconcileServiceTestSuite struct {
	suite.Suite
	db          services.DBService
	coinService services.CoinService
}

func (suite *ReconcileServiceTestSuite) SetupSuite() {
	db, err := services.NewSqliteDBService(":memory:")
	suite.Require().NoError(err)
	suite.db = db

	suite.coinService = services.NewCoinService(db.GetDB())
}

func (suite *ReconcileServiceTestSuite) TearDownSuite() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *ReconcileServiceTestSuite) SetupTest() {
	suite.db.GetDB().Where("1 = 1").Delete(&models.Coin{})
}

func completedToken(symbol, address string) metal.Token {
	return metal.Token{
		Name:    symbol + " Token",
		Symbol:  symbol,
		Address: address,
		Status:  metal.TokenStatusCompleted,
	}
}

func (suite *ReconcileServiceTestSuite) TestSyncAllTokens() {
	suite.Run("Creates coins for unknown tokens", func() {
		client := &fakeMetalClient{
			tokens: []metal.Token{completedToken("NEW", "0xN1")},
			details: map[string]*metal.Token{
				"0xN1": {
					Name: "NEW Token", Symbol: "NEW", Address: "0xN1",
					Status: metal.TokenStatusCompleted,
					Price:  0.5, MarketCap: 2000, Holders: 17,
					OwnerAddress:    "0xowner",
					MerchantAddress: "0xmerchant",
				},
			},
		}
		reconciler := services.NewReconcileService(client, suite.coinService)

		list, err := reconciler.SyncAllTokens(context.Background())
		suite.NoError(err)

		coin, err := suite.coinService.GetCoinBySymbol("NEW")
		suite.Require().NoError(err)
		suite.Equal(int64(2000), coin.MarketCap)
		suite.Equal(17, coin.HolderCount)
		suite.Equal("0.5", coin.Price)
		suite.Equal("0xowner", coin.CreatedBy)
		suite.True(coin.IsMigrated)
		suite.Contains(coin.Tags, "metal")
		suite.Require().NotNil(coin.Metadata)
		suite.Equal("0xN1", coin.Metadata.Address)

		// The returned list carries the detail view, not the sparse entry.
		suite.Require().Len(list.Tokens, 1)
		suite.Equal(17, list.Tokens[0].Holders)
		suite.Equal(float64(2000), list.Tokens[0].MarketCap)
	})

	suite.Run("Attribution falls back to the merchant address", func() {
		client := &fakeMetalClient{
			tokens: []metal.Token{completedToken("MRC", "0xM1")},
			details: map[string]*metal.Token{
				"0xM1": {
					Name: "MRC Token", Symbol: "MRC", Address: "0xM1",
					Status:          metal.TokenStatusCompleted,
					MerchantAddress: "0xmerchant",
				},
			},
		}
		reconciler := services.NewReconcileService(client, suite.coinService)

		_, err := reconciler.SyncAllTokens(context.Background())
		suite.NoError(err)

		coin, err := suite.coinService.GetCoinBySymbol("MRC")
		suite.Require().NoError(err)
		suite.Equal("0xmerchant", coin.CreatedBy)
	})

	suite.Run("Updates an existing coin and snapshots holder count", func() {
		existing, err := suite.coinService.CreateCoin(services.CreateCoinRequest{
			Name: "Known", Symbol: "KNW", Description: "already local",
			CreatedBy: "tester", HolderCount: 10, MarketCap: 100,
		})
		suite.Require().NoError(err)

		client := &fakeMetalClient{
			tokens: []metal.Token{completedToken("KNW", "0xK1")},
			details: map[string]*metal.Token{
				"0xK1": {
					Name: "Known", Symbol: "KNW", Address: "0xK1",
					Status: metal.TokenStatusCompleted,
					Price:  1.25, MarketCap: 900, Holders: 25,
				},
			},
		}
		reconciler := services.NewReconcileService(client, suite.coinService)

		_, err = reconciler.SyncAllTokens(context.Background())
		suite.NoError(err)

		coin, err := suite.coinService.GetCoin(existing.ID)
		suite.Require().NoError(err)
		suite.Equal(int64(900), coin.MarketCap)
		suite.Equal(25, coin.HolderCount)
		suite.Equal(10, coin.PreviousHolderCount)
		suite.Equal("1.25", coin.Price)
	})

	suite.Run("Matches by address when the symbol drifted", func() {
		drifted, err := suite.coinService.CreateCoin(services.CreateCoinRequest{
			Name: "Drifted", Symbol: "OLD", Description: "renamed upstream",
			CreatedBy: "tester",
			Metadata:  &models.CoinMetadata{Address: "0xD1"},
		})
		suite.Require().NoError(err)

		client := &fakeMetalClient{
			tokens: []metal.Token{completedToken("RENAMED", "0xD1")},
			details: map[string]*metal.Token{
				"0xD1": {
					Name: "Renamed", Symbol: "RENAMED", Address: "0xD1",
					Status: metal.TokenStatusCompleted, Holders: 3,
				},
			},
		}
		reconciler := services.NewReconcileService(client, suite.coinService)

		_, err = reconciler.SyncAllTokens(context.Background())
		suite.NoError(err)

		// The drifted coin got updated instead of a duplicate appearing.
		_, err = suite.coinService.GetCoinBySymbol("RENAMED")
		suite.Error(err)
		coin, err := suite.coinService.GetCoin(drifted.ID)
		suite.NoError(err)
		suite.Equal(3, coin.HolderCount)
	})

	suite.Run("Pending and failed tokens are skipped", func() {
		client := &fakeMetalClient{
			tokens: []metal.Token{
				{Symbol: "WIP", Status: metal.TokenStatusPending},
				{Symbol: "BRK", Status: metal.TokenStatusFailed},
				{Symbol: "NOADDR", Status: metal.TokenStatusCompleted},
			},
		}
		reconciler := services.NewReconcileService(client, suite.coinService)

		_, err := reconciler.SyncAllTokens(context.Background())
		suite.NoError(err)
		suite.Zero(client.tokenCalls)

		for _, symbol := range []string{"WIP", "BRK", "NOADDR"} {
			_, err := suite.coinService.GetCoinBySymbol(symbol)
			suite.Error(err)
		}
	})

	suite.Run("A failing detail fetch does not abort the batch", func() {
		client := &fakeMetalClient{
			tokens: []metal.Token{
				completedToken("BAD", "0xB1"),
				completedToken("GOOD", "0xG1"),
			},
			details: map[string]*metal.Token{
				"0xG1": {
					Name: "GOOD Token", Symbol: "GOOD", Address: "0xG1",
					Status: metal.TokenStatusCompleted,
				},
			},
			detailErr: map[string]error{"0xB1": errors.New("registry hiccup")},
		}
		reconciler := services.NewReconcileService(client, suite.coinService)

		_, err := reconciler.SyncAllTokens(context.Background())
		suite.NoError(err)

		_, err = suite.coinService.GetCoinBySymbol("GOOD")
		suite.NoError(err)
		_, err = suite.coinService.GetCoinBySymbol("BAD")
		suite.Error(err)
	})

	suite.Run("Sync is idempotent", func() {
		client := &fakeMetalClient{
			tokens: []metal.Token{completedToken("IDM", "0xI1")},
			details: map[string]*metal.Token{
				"0xI1": {
					Name: "IDM Token", Symbol: "IDM", Address: "0xI1",
					Status: metal.TokenStatusCompleted, Holders: 5,
				},
			},
		}
		reconciler := services.NewReconcileService(client, suite.coinService)

		for i := 0; i < 3; i++ {
			_, err := reconciler.SyncAllTokens(context.Background())
			suite.Require().NoError(err)
		}

		coins, err := suite.coinService.SearchCoins("IDM", true)
		suite.NoError(err)
		suite.Len(coins, 1)
	})

	suite.Run("Registry outage surfaces", func() {
		client := &fakeMetalClient{listErr: errors.New("connection refused")}
		reconciler := services.NewReconcileService(client, suite.coinService)

		_, err := reconciler.SyncAllTokens(context.Background())
		suite.Error(err)
	})
}

func (suite *ReconcileServiceTestSuite) TestSubmitCreation() {
	suite.Run("Creates a placeholder coin", func() {
		client := &fakeMetalClient{createJob: &metal.CreateJob{ID: "job-1"}}
		reconciler := services.NewReconcileService(client, suite.coinService)

		job, err := reconciler.SubmitCreation(context.Background(), metal.CreateTokenRequest{
			Name: "Fresh", Symbol: "FRS", MerchantAddress: "0xmerchant",
		})
		suite.NoError(err)
		suite.Equal("job-1", job.ID)

		coin, err := suite.coinService.GetCoinBySymbol("FRS")
		suite.Require().NoError(err)
		suite.Equal(int64(0), coin.MarketCap)
		suite.Equal(0, coin.HolderCount)
		suite.Require().NotNil(coin.Metadata)
		suite.True(coin.Metadata.PendingTokenCreation)
		suite.Equal("job-1", coin.Metadata.JobID)
	})

	suite.Run("Existing symbol gets no second placeholder", func() {
		client := &fakeMetalClient{createJob: &metal.CreateJob{ID: "job-2"}}
		reconciler := services.NewReconcileService(client, suite.coinService)

		_, err := reconciler.SubmitCreation(context.Background(), metal.CreateTokenRequest{
			Name: "Fresh Again", Symbol: "FRS", MerchantAddress: "0xmerchant",
		})
		suite.NoError(err)

		coins, err := suite.coinService.SearchCoins("FRS", true)
		suite.NoError(err)
		suite.Len(coins, 1)
		// The original placeholder still tracks the first job.
		suite.Equal("job-1", coins[0].Metadata.JobID)
	})

	suite.Run("Registry rejection surfaces", func() {
		client := &fakeMetalClient{createErr: &metal.APIError{StatusCode: 400, Body: "bad symbol"}}
		reconciler := services.NewReconcileService(client, suite.coinService)

		_, err := reconciler.SubmitCreation(context.Background(), metal.CreateTokenRequest{
			Name: "Broken", Symbol: "BRKN", MerchantAddress: "0xmerchant",
		})
		suite.Error(err)
	})
}

func (suite *ReconcileServiceTestSuite) TestResolveJob() {
	createPlaceholder := func(symbol, jobID string) *models.Coin {
		coin, err := suite.coinService.CreateCoin(services.CreateCoinRequest{
			Name: symbol, Symbol: symbol, Description: "placeholder",
			CreatedBy: "0xmerchant",
			Metadata: &models.CoinMetadata{
				JobID:                jobID,
				PendingTokenCreation: true,
			},
		})
		suite.Require().NoError(err)
		return coin
	}

	suite.Run("Completed job resolves the placeholder", func() {
		placeholder := createPlaceholder("CPL", "job-ok")
		client := &fakeMetalClient{
			jobs: map[string]*metal.JobStatus{
				"job-ok": {
					Status: metal.TokenStatusCompleted,
					Token:  &metal.Token{Address: "0xC1", Symbol: "CPL"},
				},
			},
			details: map[string]*metal.Token{
				"0xC1": {
					Name: "CPL", Symbol: "CPL", Address: "0xC1",
					Status: metal.TokenStatusCompleted,
					Price:  0.1, MarketCap: 50, Holders: 2,
				},
			},
		}
		reconciler := services.NewReconcileService(client, suite.coinService)

		status, err := reconciler.ResolveJob(context.Background(), "job-ok")
		suite.NoError(err)
		suite.Equal(metal.TokenStatusCompleted, status.Status)

		coin, err := suite.coinService.GetCoin(placeholder.ID)
		suite.Require().NoError(err)
		suite.Require().NotNil(coin.Metadata)
		suite.Equal("0xC1", coin.Metadata.Address)
		suite.False(coin.Metadata.PendingTokenCreation)
		suite.Equal(int64(50), coin.MarketCap)
		suite.Equal(2, coin.HolderCount)
	})

	suite.Run("Detail fetch failure leaves a partially resolved coin", func() {
		placeholder := createPlaceholder("PRT", "job-partial")
		client := &fakeMetalClient{
			jobs: map[string]*metal.JobStatus{
				"job-partial": {
					Status: metal.TokenStatusCompleted,
					Token:  &metal.Token{Address: "0xP1", Symbol: "PRT"},
				},
			},
			detailErr: map[string]error{"0xP1": errors.New("registry hiccup")},
		}
		reconciler := services.NewReconcileService(client, suite.coinService)

		_, err := reconciler.ResolveJob(context.Background(), "job-partial")
		suite.NoError(err)

		coin, err := suite.coinService.GetCoin(placeholder.ID)
		suite.Require().NoError(err)
		suite.Equal("0xP1", coin.Metadata.Address)
		suite.False(coin.Metadata.PendingTokenCreation)
		// Stats are stale until the next full sync.
		suite.Equal(int64(0), coin.MarketCap)
	})

	suite.Run("Failed job records the reason and keeps the coin", func() {
		placeholder := createPlaceholder("FLD", "job-fail")
		client := &fakeMetalClient{
			jobs: map[string]*metal.JobStatus{
				"job-fail": {
					Status: metal.TokenStatusFailed,
					Error:  "insufficient merchant balance",
				},
			},
		}
		reconciler := services.NewReconcileService(client, suite.coinService)

		status, err := reconciler.ResolveJob(context.Background(), "job-fail")
		suite.NoError(err)
		suite.Equal(metal.TokenStatusFailed, status.Status)

		coin, err := suite.coinService.GetCoin(placeholder.ID)
		suite.Require().NoError(err)
		suite.True(coin.Metadata.CreationFailed)
		suite.False(coin.Metadata.PendingTokenCreation)
		suite.Equal("insufficient merchant balance", coin.Metadata.FailureReason)
	})

	suite.Run("Pending job is a no-op", func() {
		placeholder := createPlaceholder("WIP", "job-wait")
		client := &fakeMetalClient{
			jobs: map[string]*metal.JobStatus{
				"job-wait": {Status: metal.TokenStatusPending},
			},
		}
		reconciler := services.NewReconcileService(client, suite.coinService)

		status, err := reconciler.ResolveJob(context.Background(), "job-wait")
		suite.NoError(err)
		suite.Equal(metal.TokenStatusPending, status.Status)

		coin, err := suite.coinService.GetCoin(placeholder.ID)
		suite.Require().NoError(err)
		suite.True(coin.Metadata.PendingTokenCreation)
	})
}

func TestReconcileServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconcileServiceTestSuite))
}
