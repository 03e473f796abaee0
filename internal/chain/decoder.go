package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/blues/efs/internal/model"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// CampaignRecord 解码后的链上活动记录
type CampaignRecord struct {
	State       model.CampaignChainState
	MetadataURI string
	Creator     common.Address
}

// DecodeFunc 把单个合约版本 campaigns getter 的位置参数映射到规范形状。
// 旧版本缺少的字段用既定默认值补齐：tips=0，closed=false，maxEditions=0。
type DecodeFunc func(vals []interface{}) (*CampaignRecord, error)

// versionDecoder 单版本的 ABI 与解码器
type versionDecoder struct {
	abi    abi.ABI
	decode DecodeFunc
}

// v5: campaigns(id) -> (creator, metadataURI, raised, minted, active)
// 无小费字段，无关闭标记
const abiJSONV5 = `[
	{"name":"campaigns","type":"function","stateMutability":"view",
		"inputs":[{"name":"","type":"uint256"}],
		"outputs":[
			{"name":"creator","type":"address"},
			{"name":"metadataURI","type":"string"},
			{"name":"raised","type":"uint256"},
			{"name":"minted","type":"uint32"},
			{"name":"active","type":"bool"}]},
	{"name":"campaignCount","type":"function","stateMutability":"view",
		"inputs":[],"outputs":[{"name":"","type":"uint256"}]}
]`

// v6: 增加 tips
const abiJSONV6 = `[
	{"name":"campaigns","type":"function","stateMutability":"view",
		"inputs":[{"name":"","type":"uint256"}],
		"outputs":[
			{"name":"creator","type":"address"},
			{"name":"metadataURI","type":"string"},
			{"name":"raised","type":"uint256"},
			{"name":"tips","type":"uint256"},
			{"name":"minted","type":"uint32"},
			{"name":"active","type":"bool"}]},
	{"name":"campaignCount","type":"function","stateMutability":"view",
		"inputs":[],"outputs":[{"name":"","type":"uint256"}]}
]`

// v7: 增加 maxEditions、closed，开始发出 CampaignCreated 事件
const abiJSONV7 = `[
	{"name":"campaigns","type":"function","stateMutability":"view",
		"inputs":[{"name":"","type":"uint256"}],
		"outputs":[
			{"name":"creator","type":"address"},
			{"name":"metadataURI","type":"string"},
			{"name":"raised","type":"uint256"},
			{"name":"tips","type":"uint256"},
			{"name":"minted","type":"uint32"},
			{"name":"maxEditions","type":"uint32"},
			{"name":"active","type":"bool"},
			{"name":"closed","type":"bool"}]},
	{"name":"campaignCount","type":"function","stateMutability":"view",
		"inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"anonymous":false,"name":"CampaignCreated","type":"event",
		"inputs":[
			{"indexed":true,"name":"campaignId","type":"uint256"},
			{"indexed":true,"name":"creator","type":"address"},
			{"indexed":false,"name":"metadataURI","type":"string"}]}
]`

// v8: 增加 immediatePayout 标记
const abiJSONV8 = `[
	{"name":"campaigns","type":"function","stateMutability":"view",
		"inputs":[{"name":"","type":"uint256"}],
		"outputs":[
			{"name":"creator","type":"address"},
			{"name":"metadataURI","type":"string"},
			{"name":"raised","type":"uint256"},
			{"name":"tips","type":"uint256"},
			{"name":"minted","type":"uint32"},
			{"name":"maxEditions","type":"uint32"},
			{"name":"active","type":"bool"},
			{"name":"closed","type":"bool"},
			{"name":"immediatePayout","type":"bool"}]},
	{"name":"campaignCount","type":"function","stateMutability":"view",
		"inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"anonymous":false,"name":"CampaignCreated","type":"event",
		"inputs":[
			{"indexed":true,"name":"campaignId","type":"uint256"},
			{"indexed":true,"name":"creator","type":"address"},
			{"indexed":false,"name":"metadataURI","type":"string"}]}
]`

var decoders = map[string]versionDecoder{
	"v5": {abi: mustParseABI(abiJSONV5), decode: decodeV5},
	"v6": {abi: mustParseABI(abiJSONV6), decode: decodeV6},
	"v7": {abi: mustParseABI(abiJSONV7), decode: decodeV7},
	"v8": {abi: mustParseABI(abiJSONV8), decode: decodeV8},
}

// decoderFor 按版本标签查找解码器，新增版本只需注册一个解码器
func decoderFor(version string) (versionDecoder, error) {
	d, ok := decoders[strings.ToLower(version)]
	if !ok {
		return versionDecoder{}, fmt.Errorf("%w: unsupported contract version %s", ErrDecode, version)
	}
	return d, nil
}

// SupportedVersions 当前支持的合约版本
func SupportedVersions() []string {
	return []string{"v5", "v6", "v7", "v8"}
}

func mustParseABI(abiJSON string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic(fmt.Sprintf("invalid builtin ABI: %v", err))
	}
	return parsed
}

// decodeV5 v5 解码：无 tips、无 closed
func decodeV5(vals []interface{}) (*CampaignRecord, error) {
	if len(vals) != 5 {
		return nil, fmt.Errorf("%w: v5 expects 5 fields, got %d", ErrDecode, len(vals))
	}
	creator, err := asAddress(vals[0])
	if err != nil {
		return nil, err
	}
	uri, err := asString(vals[1])
	if err != nil {
		return nil, err
	}
	raised, err := asBigInt(vals[2])
	if err != nil {
		return nil, err
	}
	minted, err := asUint32(vals[3])
	if err != nil {
		return nil, err
	}
	active, err := asBool(vals[4])
	if err != nil {
		return nil, err
	}

	return &CampaignRecord{
		State: model.CampaignChainState{
			GrossRaisedNative:  raised,
			TipsReceivedNative: new(big.Int), // v5 合约不记录小费
			EditionsMinted:     minted,
			Active:             active,
			Closed:             false, // v5 无关闭标记
		},
		MetadataURI: uri,
		Creator:     creator,
	}, nil
}

// decodeV6 v6 解码：有 tips、无 closed
func decodeV6(vals []interface{}) (*CampaignRecord, error) {
	if len(vals) != 6 {
		return nil, fmt.Errorf("%w: v6 expects 6 fields, got %d", ErrDecode, len(vals))
	}
	creator, err := asAddress(vals[0])
	if err != nil {
		return nil, err
	}
	uri, err := asString(vals[1])
	if err != nil {
		return nil, err
	}
	raised, err := asBigInt(vals[2])
	if err != nil {
		return nil, err
	}
	tips, err := asBigInt(vals[3])
	if err != nil {
		return nil, err
	}
	minted, err := asUint32(vals[4])
	if err != nil {
		return nil, err
	}
	active, err := asBool(vals[5])
	if err != nil {
		return nil, err
	}

	return &CampaignRecord{
		State: model.CampaignChainState{
			GrossRaisedNative:  raised,
			TipsReceivedNative: tips,
			EditionsMinted:     minted,
			Active:             active,
			Closed:             false,
		},
		MetadataURI: uri,
		Creator:     creator,
	}, nil
}

// decodeV7 v7 解码：完整字段
func decodeV7(vals []interface{}) (*CampaignRecord, error) {
	if len(vals) != 8 {
		return nil, fmt.Errorf("%w: v7 expects 8 fields, got %d", ErrDecode, len(vals))
	}
	return decodeFull(vals)
}

// decodeV8 v8 解码：末尾多一个 immediatePayout 标记，规范形状不关心
func decodeV8(vals []interface{}) (*CampaignRecord, error) {
	if len(vals) != 9 {
		return nil, fmt.Errorf("%w: v8 expects 9 fields, got %d", ErrDecode, len(vals))
	}
	return decodeFull(vals[:8])
}

// decodeFull v7/v8 共用的前 8 个字段
func decodeFull(vals []interface{}) (*CampaignRecord, error) {
	creator, err := asAddress(vals[0])
	if err != nil {
		return nil, err
	}
	uri, err := asString(vals[1])
	if err != nil {
		return nil, err
	}
	raised, err := asBigInt(vals[2])
	if err != nil {
		return nil, err
	}
	tips, err := asBigInt(vals[3])
	if err != nil {
		return nil, err
	}
	minted, err := asUint32(vals[4])
	if err != nil {
		return nil, err
	}
	active, err := asBool(vals[6])
	if err != nil {
		return nil, err
	}
	closed, err := asBool(vals[7])
	if err != nil {
		return nil, err
	}

	return &CampaignRecord{
		State: model.CampaignChainState{
			GrossRaisedNative:  raised,
			TipsReceivedNative: tips,
			EditionsMinted:     minted,
			Active:             active,
			Closed:             closed,
		},
		MetadataURI: uri,
		Creator:     creator,
	}, nil
}

// 位置参数类型转换，形状不符一律归为 ErrDecode

func asBigInt(v interface{}) (*big.Int, error) {
	value, ok := v.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: expected uint256, got %T", ErrDecode, v)
	}
	return value, nil
}

func asUint32(v interface{}) (int64, error) {
	value, ok := v.(uint32)
	if !ok {
		return 0, fmt.Errorf("%w: expected uint32, got %T", ErrDecode, v)
	}
	return int64(value), nil
}

func asBool(v interface{}) (bool, error) {
	value, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: expected bool, got %T", ErrDecode, v)
	}
	return value, nil
}

func asString(v interface{}) (string, error) {
	value, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected string, got %T", ErrDecode, v)
	}
	return value, nil
}

func asAddress(v interface{}) (common.Address, error) {
	value, ok := v.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: expected address, got %T", ErrDecode, v)
	}
	return value, nil
}
