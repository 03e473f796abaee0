package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/blues/efs/internal/logger"
	"github.com/blues/efs/internal/model"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// DefaultReadTimeout 单次链读取超时，调用方不允许被挂死的 RPC 节点阻塞
const DefaultReadTimeout = 8 * time.Second

// RpcClient 读取器需要的 RPC 能力，*ethclient.Client 天然满足
type RpcClient interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// Reader 链上活动状态读取器，把各版本合约的原始布局规范化为统一形状
type Reader struct {
	getClient func(chainId int64) (RpcClient, error)
	timeout   time.Duration
}

// NewReader 创建读取器
func NewReader(manager *Manager, timeout time.Duration) *Reader {
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	return &Reader{
		getClient: func(chainId int64) (RpcClient, error) {
			return manager.GetClient(chainId)
		},
		timeout: timeout,
	}
}

// ReadState 读取单个活动的规范化资金状态
func (r *Reader) ReadState(ctx context.Context, chainId int64, contractAddress, version string, campaignId int64) (*model.CampaignChainState, error) {
	record, readAtBlock, err := r.readCampaign(ctx, chainId, contractAddress, version, campaignId)
	if err != nil {
		return nil, err
	}

	state := record.State
	state.ReadAtBlock = readAtBlock
	return &state, nil
}

// ReadCampaign 读取完整活动记录（含 metadataURI，确认兜底扫描需要）
func (r *Reader) ReadCampaign(ctx context.Context, chainId int64, contractAddress, version string, campaignId int64) (*CampaignRecord, error) {
	record, _, err := r.readCampaign(ctx, chainId, contractAddress, version, campaignId)
	return record, err
}

// readCampaign 单次 eth_call + 版本解码
func (r *Reader) readCampaign(ctx context.Context, chainId int64, contractAddress, version string, campaignId int64) (*CampaignRecord, int64, error) {
	decoder, err := decoderFor(version)
	if err != nil {
		return nil, 0, err
	}

	client, err := r.getClient(chainId)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRpcUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	data, err := decoder.abi.Pack("campaigns", new(big.Int).SetInt64(campaignId))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	addr := common.HexToAddress(contractAddress)
	res, err := client.CallContract(ctx, ethereum.CallMsg{To: &addr, Data: data}, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: campaign %d on chain %d: %v",
			classifyCallError(err), campaignId, chainId, err)
	}
	if len(res) == 0 {
		return nil, 0, fmt.Errorf("%w: campaign %d on chain %d", ErrCampaignNotFound, campaignId, chainId)
	}

	vals, err := decoder.abi.Unpack("campaigns", res)
	if err != nil {
		logger.Error("Failed to unpack campaign %d (version %s) on chain %d: %v",
			campaignId, version, chainId, err)
		return nil, 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	record, err := decoder.decode(vals)
	if err != nil {
		logger.Error("Failed to decode campaign %d (version %s) on chain %d: %v",
			campaignId, version, chainId, err)
		return nil, 0, err
	}

	// 区块号尽力而为，失败不影响状态本身
	readAtBlock := int64(0)
	if blockNum, err := client.BlockNumber(ctx); err == nil {
		readAtBlock = int64(blockNum)
	}

	return record, readAtBlock, nil
}

// CampaignCount 读取合约当前的活动总数
func (r *Reader) CampaignCount(ctx context.Context, chainId int64, contractAddress, version string) (int64, error) {
	decoder, err := decoderFor(version)
	if err != nil {
		return 0, err
	}

	client, err := r.getClient(chainId)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRpcUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	data, err := decoder.abi.Pack("campaignCount")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	addr := common.HexToAddress(contractAddress)
	res, err := client.CallContract(ctx, ethereum.CallMsg{To: &addr, Data: data}, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: campaignCount on chain %d: %v", classifyCallError(err), chainId, err)
	}

	vals, err := decoder.abi.Unpack("campaignCount", res)
	if err != nil || len(vals) != 1 {
		return 0, fmt.Errorf("%w: campaignCount: %v", ErrDecode, err)
	}

	count, err := asBigInt(vals[0])
	if err != nil {
		return 0, err
	}
	return count.Int64(), nil
}

// TransactionReceipt 获取交易回执，回执尚未生成时返回 (nil, nil)
func (r *Reader) TransactionReceipt(ctx context.Context, chainId int64, txHash string) (*types.Receipt, error) {
	client, err := r.getClient(chainId)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRpcUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	receipt, err := client.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: receipt %s on chain %d: %v", ErrRpcUnavailable, txHash, chainId, err)
	}
	return receipt, nil
}

// ParseCreationEvent 从回执日志中解出 CampaignCreated 的活动ID。
// 旧版本合约（v5/v6）不发该事件，返回 ok=false 由调用方走兜底扫描。
func (r *Reader) ParseCreationEvent(version string, receipt *types.Receipt) (int64, bool) {
	decoder, err := decoderFor(version)
	if err != nil {
		return 0, false
	}

	event, exists := decoder.abi.Events["CampaignCreated"]
	if !exists {
		return 0, false
	}

	for _, log := range receipt.Logs {
		if len(log.Topics) < 2 || log.Topics[0] != event.ID {
			continue
		}
		campaignId := new(big.Int).SetBytes(log.Topics[1].Bytes())
		return campaignId.Int64(), true
	}
	return 0, false
}
