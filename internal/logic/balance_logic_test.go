package logic

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/blues/efs/internal/chain"
	"github.com/blues/efs/internal/model"
	"github.com/blues/efs/internal/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeStateReader 按活动ID返回预置状态或错误
type fakeStateReader struct {
	states map[int64]*model.CampaignChainState
	errs   map[int64]error
}

func (f *fakeStateReader) ReadState(ctx context.Context, chainId int64, contractAddress, version string, campaignId int64) (*model.CampaignChainState, error) {
	if err, exists := f.errs[campaignId]; exists {
		return nil, err
	}
	if state, exists := f.states[campaignId]; exists {
		return state, nil
	}
	return nil, chain.ErrCampaignNotFound
}

// fakeLedger 固定台账合计
type fakeLedger struct {
	gross       map[int64]int64
	tips        map[int64]int64
	distributed map[int64]int64
	err         error
}

func (f *fakeLedger) GetPurchaseTotals(campaignId, chainId int64) (*big.Int, *big.Int, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return big.NewInt(f.gross[campaignId]), big.NewInt(f.tips[campaignId]), nil
}

func (f *fakeLedger) GetDistributedTotals(campaignId int64) (*big.Int, *big.Int, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return big.NewInt(f.distributed[campaignId]), big.NewInt(0), nil
}

// unitConverter 1 最小单位 = 1 USD，置信度 1
type unitConverter struct{}

func (unitConverter) Display(ctx context.Context, amountNative *big.Int, chainId int64, maxAge time.Duration) (float64, float64, error) {
	value, _ := new(big.Float).SetInt(amountNative).Float64()
	return value, 1.0, nil
}

func seedCampaign(t *testing.T, db *gorm.DB, campaignId, chainId int64, testnet bool) {
	t.Helper()
	require.NoError(t, db.Create(&model.CampaignModel{
		CampaignId:           campaignId,
		ChainId:              chainId,
		ContractAddress:      "0xabc",
		ContractVersion:      "v7",
		IsTestnet:            testnet,
		NativeCurrencySymbol: "ETH",
		Active:               true,
	}).Error)
}

func newBalanceLogicForTest(db *gorm.DB, reader ChainStateReader, ledger LedgerReader) *BalanceLogic {
	engine := reconcile.NewEngine(1, unitConverter{}, 5*time.Minute)
	return NewBalanceLogic(db, reader, engine, ledger, 4)
}

func TestGetBalancesEveryCampaignRepresented(t *testing.T) {
	db := newTestDB(t)
	seedCampaign(t, db, 1, 1, false)
	seedCampaign(t, db, 2, 1, false)

	reader := &fakeStateReader{
		states: map[int64]*model.CampaignChainState{
			1: {GrossRaisedNative: big.NewInt(1000), TipsReceivedNative: big.NewInt(10)},
		},
		errs: map[int64]error{
			2: fmt.Errorf("%w: node down", chain.ErrRpcUnavailable),
		},
	}
	ledger := &fakeLedger{
		gross:       map[int64]int64{1: 1000, 2: 700},
		tips:        map[int64]int64{1: 10, 2: 7},
		distributed: map[int64]int64{1: 400},
	}

	logic := newBalanceLogicForTest(db, reader, ledger)
	balances, err := logic.GetBalances(context.Background(), BalanceFilters{})
	require.NoError(t, err)
	require.Len(t, balances, 2)

	// 链读成功：链上为权威来源
	first := balances[0]
	assert.Equal(t, int64(1), first.Campaign.CampaignId)
	assert.Equal(t, model.FinancialSourceOnchain, first.Financials.SourceUsed)
	assert.Equal(t, int64(600), first.Pending.PendingFundsNative.Int64())
	assert.Empty(t, first.ChainError)

	// 链读失败：转台账来源并带上错误分类，不丢活动
	second := balances[1]
	assert.Equal(t, int64(2), second.Campaign.CampaignId)
	assert.Empty(t, second.ErrorTag)
	assert.Equal(t, model.FinancialSourceLedger, second.Financials.SourceUsed)
	assert.Equal(t, int64(700), second.Financials.GrossRaisedNative.Int64())
	assert.Equal(t, "rpc_unavailable", second.ChainError)
}

func TestGetBalancesLedgerErrorTagged(t *testing.T) {
	db := newTestDB(t)
	seedCampaign(t, db, 1, 1, false)

	reader := &fakeStateReader{states: map[int64]*model.CampaignChainState{}}
	ledger := &fakeLedger{err: errors.New("db gone")}

	logic := newBalanceLogicForTest(db, reader, ledger)
	balances, err := logic.GetBalances(context.Background(), BalanceFilters{})
	require.NoError(t, err)
	require.Len(t, balances, 1)

	assert.Equal(t, "ledger_error", balances[0].ErrorTag)
	assert.Equal(t, "db gone", balances[0].ErrorReason)
	assert.Nil(t, balances[0].Financials)
}

func TestGetBalancesChainFilter(t *testing.T) {
	db := newTestDB(t)
	seedCampaign(t, db, 1, 1, false)
	seedCampaign(t, db, 2, 137, false)
	seedCampaign(t, db, 3, 11155111, true)

	reader := &fakeStateReader{}
	ledger := &fakeLedger{gross: map[int64]int64{1: 1, 2: 2, 3: 3}}
	logic := newBalanceLogicForTest(db, reader, ledger)

	chainId := int64(137)
	balances, err := logic.GetBalances(context.Background(), BalanceFilters{ChainId: &chainId})
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, int64(2), balances[0].Campaign.CampaignId)

	testnet := true
	balances, err = logic.GetBalances(context.Background(), BalanceFilters{IsTestnet: &testnet})
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, int64(3), balances[0].Campaign.CampaignId)
}

func TestGetBalancesPendingFundsFilter(t *testing.T) {
	db := newTestDB(t)
	seedCampaign(t, db, 1, 1, false)
	seedCampaign(t, db, 2, 1, false)

	reader := &fakeStateReader{
		states: map[int64]*model.CampaignChainState{
			1: {GrossRaisedNative: big.NewInt(1000), TipsReceivedNative: big.NewInt(0)},
			2: {GrossRaisedNative: big.NewInt(500), TipsReceivedNative: big.NewInt(0)},
		},
	}
	ledger := &fakeLedger{
		gross:       map[int64]int64{1: 1000, 2: 500},
		distributed: map[int64]int64{1: 400, 2: 500}, // 活动2已全额拨付
	}

	logic := newBalanceLogicForTest(db, reader, ledger)
	balances, err := logic.GetBalances(context.Background(), BalanceFilters{HasPendingFunds: true})
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, int64(1), balances[0].Campaign.CampaignId)
}

func TestGetBalancesSummary(t *testing.T) {
	db := newTestDB(t)
	seedCampaign(t, db, 1, 1, false)
	seedCampaign(t, db, 2, 1, false)

	reader := &fakeStateReader{
		states: map[int64]*model.CampaignChainState{
			// 活动1 链上与台账差 10%，应计为漂移
			1: {GrossRaisedNative: big.NewInt(1100), TipsReceivedNative: big.NewInt(0)},
			2: {GrossRaisedNative: big.NewInt(500), TipsReceivedNative: big.NewInt(20)},
		},
	}
	ledger := &fakeLedger{
		gross:       map[int64]int64{1: 1000, 2: 500},
		tips:        map[int64]int64{2: 20},
		distributed: map[int64]int64{1: 100},
	}

	logic := newBalanceLogicForTest(db, reader, ledger)
	summary, err := logic.GetBalancesSummary(context.Background(), BalanceFilters{})
	require.NoError(t, err)

	assert.Equal(t, 2, summary["totalCampaigns"])
	assert.Equal(t, 1, summary["driftedCampaigns"])
	assert.Equal(t, 0, summary["erroredCampaigns"])
	// 1100-100 + 500-0
	assert.Equal(t, "1500", summary["totalPendingFunds"])
	assert.Equal(t, "20", summary["totalPendingTips"])
}

func TestChainErrorTagClassification(t *testing.T) {
	assert.Equal(t, "campaign_not_found", chainErrorTag(fmt.Errorf("%w: 5", chain.ErrCampaignNotFound)))
	assert.Equal(t, "decode_error", chainErrorTag(fmt.Errorf("%w: shape", chain.ErrDecode)))
	assert.Equal(t, "rpc_unavailable", chainErrorTag(chain.ErrRpcUnavailable))
	assert.Equal(t, "chain_error", chainErrorTag(errors.New("mystery")))
}
