package model

import (
	"time"
)

// DistributionRecordModel 拨付记录（append-only，累计值通过求和派生，不维护可变计数器）
type DistributionRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId   int64            `json:"campaign_id" gorm:"not null;index"`
	AmountNative string           `json:"amount_native" gorm:"type:numeric(78,0);not null"`
	Kind         DistributionKind `json:"kind" gorm:"not null"`
	Recipient    string           `json:"recipient" gorm:"not null"`
	TxHash       string           `json:"tx_hash"`
	ExecutedAt   time.Time        `json:"executed_at"`
}

// DistributionKind 拨付类型
type DistributionKind string

const (
	DistributionKindFunds DistributionKind = "funds" // 筹款拨付
	DistributionKindTips  DistributionKind = "tips"  // 小费拨付
)

// TableName 自定义表名
func (DistributionRecordModel) TableName() string {
	return "distribution_record"
}
