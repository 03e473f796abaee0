package logic

import (
	"context"
	"errors"
	"fmt"

	"github.com/blues/efs/internal/chain"
	"github.com/blues/efs/internal/logger"
	"github.com/blues/efs/internal/model"
	"github.com/ethereum/go-ethereum/core/types"
	"gorm.io/gorm"
)

// ConfirmState 确认状态机的对外状态
type ConfirmState string

const (
	ConfirmStatePending   ConfirmState = "pending"   // 回执未出，稍后重试，不算失败
	ConfirmStateConfirmed ConfirmState = "confirmed" // 终态
	ConfirmStateFailed    ConfirmState = "failed"    // 终态
	// ConfirmStateAmbiguous 回执里没有创建事件（旧版合约不发事件），转入兜底扫描
	ConfirmStateAmbiguous ConfirmState = "ambiguous_no_event"
)

// ConfirmOutcome 单次确认的结果
type ConfirmOutcome struct {
	SubmissionId int64        `json:"submission_id"`
	State        ConfirmState `json:"state"`
	CampaignId   *int64       `json:"campaign_id,omitempty"`
	Ambiguous    bool         `json:"ambiguous"` // 是否走过兜底扫描
	Reason       string       `json:"reason"`
}

// CampaignChainReader 确认流程需要的链读取能力
type CampaignChainReader interface {
	ReadCampaign(ctx context.Context, chainId int64, contractAddress, version string, campaignId int64) (*chain.CampaignRecord, error)
	CampaignCount(ctx context.Context, chainId int64, contractAddress, version string) (int64, error)
	TransactionReceipt(ctx context.Context, chainId int64, txHash string) (*types.Receipt, error)
	ParseCreationEvent(version string, receipt *types.Receipt) (int64, bool)
}

// SubmissionLogic 活动创建申请的交易确认状态机。
// 幂等：对已确认或已失败的申请重复调用不产生第二次写入。
type SubmissionLogic struct {
	db          *gorm.DB
	reader      CampaignChainReader
	scanLimit   int                                 // 兜底扫描最多回看的活动数
	chainInfoFn func(chainId int64) (string, bool) // chainId -> (币种符号, 是否测试网)
}

// NewSubmissionLogic 创建确认逻辑
func NewSubmissionLogic(db *gorm.DB, reader CampaignChainReader, scanLimit int, chainInfo func(chainId int64) (string, bool)) *SubmissionLogic {
	if scanLimit <= 0 {
		scanLimit = 50
	}
	return &SubmissionLogic{db: db, reader: reader, scanLimit: scanLimit, chainInfoFn: chainInfo}
}

// VerifySubmission 推进单个申请的确认状态
func (s *SubmissionLogic) VerifySubmission(ctx context.Context, submissionId int64) (*ConfirmOutcome, error) {
	var submission model.SubmissionModel
	if err := s.db.First(&submission, submissionId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("submission %d not found", submissionId)
		}
		return nil, fmt.Errorf("failed to load submission %d: %w", submissionId, err)
	}

	// 终态直接返回当前结论，不再写库
	switch submission.Status {
	case model.SubmissionStatusConfirmed:
		return &ConfirmOutcome{
			SubmissionId: submission.Id,
			State:        ConfirmStateConfirmed,
			CampaignId:   submission.CampaignId,
			Reason:       "already confirmed",
		}, nil
	case model.SubmissionStatusFailed:
		return &ConfirmOutcome{
			SubmissionId: submission.Id,
			State:        ConfirmStateFailed,
			Reason:       "terminal failure, manual intervention required",
		}, nil
	}

	if submission.TxHash == "" {
		return &ConfirmOutcome{
			SubmissionId: submission.Id,
			State:        ConfirmStatePending,
			Reason:       "no creation transaction submitted yet",
		}, nil
	}

	receipt, err := s.reader.TransactionReceipt(ctx, submission.ChainId, submission.TxHash)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		// 回执未出不是错误，调用方稍后重试
		return &ConfirmOutcome{
			SubmissionId: submission.Id,
			State:        ConfirmStatePending,
			Reason:       "receipt not yet available",
		}, nil
	}

	if receipt.Status == types.ReceiptStatusFailed {
		// 交易回滚：清掉创建交易信息，申请回到发交易前的状态可重试
		if err := s.resetSubmission(&submission); err != nil {
			return nil, err
		}
		return &ConfirmOutcome{
			SubmissionId: submission.Id,
			State:        ConfirmStateFailed,
			Reason:       "creation transaction reverted, submission reset for retry",
		}, nil
	}

	// 首选：从回执日志解出创建事件
	if campaignId, ok := s.reader.ParseCreationEvent(submission.ContractVersion, receipt); ok {
		if err := s.confirmSubmission(ctx, &submission, campaignId); err != nil {
			return nil, err
		}
		return &ConfirmOutcome{
			SubmissionId: submission.Id,
			State:        ConfirmStateConfirmed,
			CampaignId:   &campaignId,
			Reason:       "campaign creation event decoded from receipt",
		}, nil
	}

	// 兜底：从最新索引往回扫 metadata URI
	logger.Warn("No creation event in receipt for submission %d (version %s), scanning campaign list",
		submission.Id, submission.ContractVersion)
	return s.resolveByScan(ctx, &submission)
}

// resolveByScan 兜底扫描：从最新活动往回找 metadata URI 相同的活动
func (s *SubmissionLogic) resolveByScan(ctx context.Context, submission *model.SubmissionModel) (*ConfirmOutcome, error) {
	count, err := s.reader.CampaignCount(ctx, submission.ChainId, submission.ContractAddress, submission.ContractVersion)
	if err != nil {
		return nil, err
	}

	scanned := 0
	for campaignId := count - 1; campaignId >= 0 && scanned < s.scanLimit; campaignId-- {
		scanned++

		record, err := s.reader.ReadCampaign(ctx,
			submission.ChainId, submission.ContractAddress, submission.ContractVersion, campaignId)
		if err != nil {
			logger.Warn("Scan read failed at campaign %d for submission %d: %v",
				campaignId, submission.Id, err)
			continue
		}

		if record.MetadataURI == submission.MetadataURI {
			if err := s.confirmSubmission(ctx, submission, campaignId); err != nil {
				return nil, err
			}
			return &ConfirmOutcome{
				SubmissionId: submission.Id,
				State:        ConfirmStateConfirmed,
				CampaignId:   &campaignId,
				Ambiguous:    true,
				Reason:       fmt.Sprintf("resolved by metadata URI scan at index %d", campaignId),
			}, nil
		}
	}

	// 扫描穷尽仍无匹配：终态失败，需要人工介入
	if err := s.db.Model(submission).
		Update("status", model.SubmissionStatusFailed).Error; err != nil {
		return nil, fmt.Errorf("failed to mark submission %d failed: %w", submission.Id, err)
	}
	return &ConfirmOutcome{
		SubmissionId: submission.Id,
		State:        ConfirmStateFailed,
		Ambiguous:    true,
		Reason:       fmt.Sprintf("no matching metadata URI in last %d campaigns, manual intervention required", scanned),
	}, nil
}

// confirmSubmission 确认申请并落规范化活动记录。
// 活动字段来自重新读取的链上状态，不做推测性写入。
func (s *SubmissionLogic) confirmSubmission(ctx context.Context, submission *model.SubmissionModel, campaignId int64) error {
	record, err := s.reader.ReadCampaign(ctx,
		submission.ChainId, submission.ContractAddress, submission.ContractVersion, campaignId)
	if err != nil {
		return fmt.Errorf("failed to read confirmed campaign %d: %w", campaignId, err)
	}

	chainCfg := s.chainInfo(submission.ChainId)

	return s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":      model.SubmissionStatusConfirmed,
			"campaign_id": campaignId,
		}
		if err := tx.Model(submission).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to confirm submission %d: %w", submission.Id, err)
		}

		campaign := model.CampaignModel{
			CampaignId:           campaignId,
			ChainId:              submission.ChainId,
			ContractAddress:      submission.ContractAddress,
			ContractVersion:      submission.ContractVersion,
			IsTestnet:            chainCfg.testnet,
			NativeCurrencySymbol: chainCfg.symbol,
			EditionsMinted:       record.State.EditionsMinted,
			Active:               record.State.Active,
			Closed:               record.State.Closed,
		}
		if err := tx.Where("campaign_id = ? AND chain_id = ?", campaignId, submission.ChainId).
			FirstOrCreate(&campaign).Error; err != nil {
			return fmt.Errorf("failed to create campaign record %d: %w", campaignId, err)
		}
		return nil
	})
}

// resetSubmission 回滚后的申请重置：清创建交易哈希，状态回 pending
func (s *SubmissionLogic) resetSubmission(submission *model.SubmissionModel) error {
	updates := map[string]interface{}{
		"tx_hash":     "",
		"campaign_id": nil,
		"status":      model.SubmissionStatusPending,
	}
	if err := s.db.Model(submission).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to reset submission %d: %w", submission.Id, err)
	}
	return nil
}

// ConfirmPendingSubmissions 批量推进所有待确认申请（定时任务入口）
func (s *SubmissionLogic) ConfirmPendingSubmissions(ctx context.Context) {
	var submissions []model.SubmissionModel
	err := s.db.Where("status = ? AND tx_hash <> ''", model.SubmissionStatusPending).
		Find(&submissions).Error
	if err != nil {
		logger.Error("Failed to fetch pending submissions: %v", err)
		return
	}

	for _, submission := range submissions {
		outcome, err := s.VerifySubmission(ctx, submission.Id)
		if err != nil {
			logger.Error("Failed to verify submission %d: %v", submission.Id, err)
			continue
		}
		if outcome.State != ConfirmStatePending {
			logger.Info("Submission %d verification outcome: %s (%s)",
				submission.Id, outcome.State, outcome.Reason)
		}
	}
}

// chainMeta 链的币种与网络属性
type chainMeta struct {
	symbol  string
	testnet bool
}

func (s *SubmissionLogic) chainInfo(chainId int64) chainMeta {
	if s.chainInfoFn != nil {
		symbol, testnet := s.chainInfoFn(chainId)
		return chainMeta{symbol: symbol, testnet: testnet}
	}
	return chainMeta{}
}
