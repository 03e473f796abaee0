package model

import (
	"time"
)

// PurchaseRecordModel 购买台账记录（append-only，回填进程可插入历史记录但不修改金额）
type PurchaseRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId int64 `json:"campaign_id" gorm:"not null;index"`
	ChainId    int64 `json:"chain_id" gorm:"not null"`

	// 金额使用最小单位整数，numeric(78,0) 容纳 uint256
	AmountNative  string  `json:"amount_native" gorm:"type:numeric(78,0);not null"`
	AmountDisplay float64 `json:"amount_display"`
	TipNative     string  `json:"tip_native" gorm:"type:numeric(78,0);default:0"`
	TipDisplay    float64 `json:"tip_display"`
	Quantity      int64   `json:"quantity" gorm:"default:1"`
	BuyerAddress  string  `json:"buyer_address"`
	TxHash        string  `json:"tx_hash" gorm:"uniqueIndex"`
	BlockNum      int64   `json:"block_num"`
}

// TableName 自定义表名
func (PurchaseRecordModel) TableName() string {
	return "purchase_record"
}
