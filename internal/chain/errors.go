package chain

import (
	"context"
	"errors"
	"strings"
)

// 链读取错误分类
var (
	// ErrRpcUnavailable 节点不可达或超时，可重试
	ErrRpcUnavailable = errors.New("rpc unavailable")
	// ErrCampaignNotFound 活动索引越界，终态不重试
	ErrCampaignNotFound = errors.New("campaign not found on chain")
	// ErrDecode 返回数据形状不符合版本定义，按版本兼容缺陷记录
	ErrDecode = errors.New("failed to decode campaign state")
)

// classifyCallError 将底层 RPC 错误归入错误分类
func classifyCallError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrRpcUnavailable
	}
	// 索引越界时合约会 revert
	if strings.Contains(err.Error(), "execution reverted") ||
		strings.Contains(err.Error(), "out of bounds") {
		return ErrCampaignNotFound
	}
	return ErrRpcUnavailable
}
