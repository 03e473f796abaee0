package model

import (
	"time"
)

// SubmissionModel 活动创建申请（建链交易已提交，等待确认出 campaign_id）
type SubmissionModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title           string `json:"title"`
	MetadataURI     string `json:"metadata_uri" gorm:"not null"`
	SubmitterAddr   string `json:"submitter_addr"`
	ChainId         int64  `json:"chain_id" gorm:"not null"`
	ContractAddress string `json:"contract_address"`
	ContractVersion string `json:"contract_version"`

	// 建链交易信息（失败回滚时清空 tx_hash 以便重试）
	TxHash     string           `json:"tx_hash"`
	CampaignId *int64           `json:"campaign_id"` // 确认后回填
	Status     SubmissionStatus `json:"status" gorm:"default:'pending'"`
}

// SubmissionStatus 申请确认状态
type SubmissionStatus string

const (
	SubmissionStatusPending   SubmissionStatus = "pending"   // 交易已发出，等待回执
	SubmissionStatusConfirmed SubmissionStatus = "confirmed" // 链上活动已确认
	SubmissionStatusFailed    SubmissionStatus = "failed"    // 终态，需要人工介入
)

// TableName 自定义表名
func (SubmissionModel) TableName() string {
	return "submission"
}
