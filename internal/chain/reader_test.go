package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRpc struct {
	callResult []byte
	callErr    error
	receipt    *types.Receipt
	receiptErr error
	blockNum   uint64
	blockErr   error
}

func (m *mockRpc) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return m.callResult, m.callErr
}

func (m *mockRpc) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return m.receipt, m.receiptErr
}

func (m *mockRpc) BlockNumber(ctx context.Context) (uint64, error) {
	return m.blockNum, m.blockErr
}

func newTestReader(client RpcClient) *Reader {
	return &Reader{
		getClient: func(chainId int64) (RpcClient, error) { return client, nil },
		timeout:   time.Second,
	}
}

func packCampaignV7(t *testing.T, raised, tips int64, minted uint32, active, closed bool) []byte {
	t.Helper()
	outputs := decoders["v7"].abi.Methods["campaigns"].Outputs
	data, err := outputs.Pack(
		testCreator,
		"ipfs://meta-9",
		big.NewInt(raised),
		big.NewInt(tips),
		minted,
		uint32(100),
		active,
		closed,
	)
	require.NoError(t, err)
	return data
}

func TestReadStateDecodesV7(t *testing.T) {
	client := &mockRpc{
		callResult: packCampaignV7(t, 5000, 120, 7, true, false),
		blockNum:   999,
	}
	reader := newTestReader(client)

	state, err := reader.ReadState(context.Background(), 1, "0xabc", "v7", 9)
	require.NoError(t, err)

	assert.Equal(t, int64(5000), state.GrossRaisedNative.Int64())
	assert.Equal(t, int64(120), state.TipsReceivedNative.Int64())
	assert.Equal(t, int64(7), state.EditionsMinted)
	assert.True(t, state.Active)
	assert.False(t, state.Closed)
	assert.Equal(t, int64(999), state.ReadAtBlock)
}

func TestReadStateBlockNumberBestEffort(t *testing.T) {
	client := &mockRpc{
		callResult: packCampaignV7(t, 1, 0, 0, true, false),
		blockErr:   errors.New("method not supported"),
	}
	reader := newTestReader(client)

	state, err := reader.ReadState(context.Background(), 1, "0xabc", "v7", 9)
	require.NoError(t, err)
	assert.Equal(t, int64(0), state.ReadAtBlock)
}

func TestReadStateEmptyResultIsNotFound(t *testing.T) {
	reader := newTestReader(&mockRpc{callResult: nil})

	_, err := reader.ReadState(context.Background(), 1, "0xabc", "v7", 42)
	assert.ErrorIs(t, err, ErrCampaignNotFound)
}

func TestReadStateRevertIsNotFound(t *testing.T) {
	reader := newTestReader(&mockRpc{callErr: errors.New("execution reverted")})

	_, err := reader.ReadState(context.Background(), 1, "0xabc", "v7", 42)
	assert.ErrorIs(t, err, ErrCampaignNotFound)
}

func TestReadStateTimeoutIsRpcUnavailable(t *testing.T) {
	reader := newTestReader(&mockRpc{callErr: context.DeadlineExceeded})

	_, err := reader.ReadState(context.Background(), 1, "0xabc", "v7", 42)
	assert.ErrorIs(t, err, ErrRpcUnavailable)
}

func TestReadStateUnsupportedVersion(t *testing.T) {
	reader := newTestReader(&mockRpc{})

	_, err := reader.ReadState(context.Background(), 1, "0xabc", "v99", 42)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestCampaignCount(t *testing.T) {
	outputs := decoders["v7"].abi.Methods["campaignCount"].Outputs
	data, err := outputs.Pack(big.NewInt(17))
	require.NoError(t, err)

	reader := newTestReader(&mockRpc{callResult: data})
	count, err := reader.CampaignCount(context.Background(), 1, "0xabc", "v7")
	require.NoError(t, err)
	assert.Equal(t, int64(17), count)
}

func TestTransactionReceiptNotYetAvailable(t *testing.T) {
	reader := newTestReader(&mockRpc{receiptErr: ethereum.NotFound})

	receipt, err := reader.TransactionReceipt(context.Background(), 1, "0xdead")
	require.NoError(t, err)
	assert.Nil(t, receipt)
}

func TestParseCreationEvent(t *testing.T) {
	reader := newTestReader(&mockRpc{})
	event := decoders["v7"].abi.Events["CampaignCreated"]

	receipt := &types.Receipt{Logs: []*types.Log{
		{Topics: []common.Hash{common.HexToHash("0x01")}}, // 无关日志
		{Topics: []common.Hash{
			event.ID,
			common.BigToHash(big.NewInt(12)),
			common.BytesToHash(testCreator.Bytes()),
		}},
	}}

	campaignId, ok := reader.ParseCreationEvent("v7", receipt)
	require.True(t, ok)
	assert.Equal(t, int64(12), campaignId)
}

func TestParseCreationEventOldVersionsHaveNone(t *testing.T) {
	reader := newTestReader(&mockRpc{})

	receipt := &types.Receipt{Logs: []*types.Log{}}
	_, ok := reader.ParseCreationEvent("v5", receipt)
	assert.False(t, ok)

	_, ok = reader.ParseCreationEvent("v7", receipt)
	assert.False(t, ok)
}
