package model

import (
	"time"
)

// CampaignModel 版号众筹活动模型（链上合约的规范化记录）
type CampaignModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 链上标识（campaign_id 在单条链内唯一）
	CampaignId      int64  `json:"campaign_id" gorm:"not null;uniqueIndex:idx_campaign_chain"`
	ChainId         int64  `json:"chain_id" gorm:"not null;uniqueIndex:idx_campaign_chain"`
	ContractAddress string `json:"contract_address" gorm:"not null"`
	ContractVersion string `json:"contract_version" gorm:"not null"` // v5, v6, v7, v8
	IsTestnet       bool   `json:"is_testnet" gorm:"default:false"`

	// 链原生币种
	NativeCurrencySymbol string `json:"native_currency_symbol" gorm:"not null"`

	// 版号信息
	MaxEditions    int64 `json:"max_editions"`
	EditionsMinted int64 `json:"editions_minted"`

	// 状态（只通过重新读取链上状态更新，不做推测性写入；只关闭不删除）
	Active bool `json:"active" gorm:"default:true"`
	Closed bool `json:"closed" gorm:"default:false"`
}

// TableName 自定义表名
func (CampaignModel) TableName() string {
	return "campaign"
}
